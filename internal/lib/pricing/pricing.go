// Package pricing реализует расчёт итоговой стоимости покупки плана.
//
// Правило единое для создания checkout-сессии и для обработки callback:
// сумма всегда пересчитывается на сервере из цены плана, клиентской сумме
// доверять нельзя.
package pricing

import (
	"fmt"
	"math"

	"github.com/campusvitality/brokerage/internal/models"
)

// Total возвращает итоговую стоимость в центах.
//
// Месячная покупка: цена за месяц * количество месяцев, без округления.
// Годовая покупка: цена за месяц * 12 * количество лет со скидкой 10%,
// результат округляется до цента стандартным округлением.
func Total(priceCents int64, duration int, durationUnit string) (int64, error) {
	const op = "pricing.Total"
	if priceCents < 0 {
		return 0, fmt.Errorf("%s: negative price", op)
	}
	if duration < 1 {
		return 0, fmt.Errorf("%s: duration must be at least 1", op)
	}
	switch durationUnit {
	case models.DurationMonthly:
		return priceCents * int64(duration), nil
	case models.DurationYearly:
		return int64(math.Round(float64(priceCents) * 12 * float64(duration) * 0.9)), nil
	default:
		return 0, fmt.Errorf("%s: unknown duration unit %q", op, durationUnit)
	}
}

// DurationLabel возвращает человеко-читаемую подпись длительности для инвойса,
// например "3 month(s)" или "1 year(s)".
func DurationLabel(duration int, durationUnit string) string {
	if durationUnit == models.DurationYearly {
		return fmt.Sprintf("%d year(s)", duration)
	}
	return fmt.Sprintf("%d month(s)", duration)
}

// DollarsToCents конвертирует цену в долларах из входного запроса в центы.
func DollarsToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// FormatDollars возвращает сумму в центах в виде строки долларов, например "1296.00".
func FormatDollars(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}
