// Package invoice генерирует PDF-счета по оплаченным бронированиям.
package invoice

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/campusvitality/brokerage/internal/lib/pricing"
	"github.com/campusvitality/brokerage/internal/models"
)

const companyName = "Campus Vitality™"

// Generator пишет счета в заданную директорию.
type Generator struct {
	dir string
}

// NewGenerator создаёт генератор и директорию для счетов.
func NewGenerator(dir string) (*Generator, error) {
	const op = "invoice.NewGenerator"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Generator{dir: dir}, nil
}

// Path возвращает путь файла счёта для платежа. Имя детерминировано,
// повторная генерация перезаписывает файл.
func (g *Generator) Path(paymentID string) string {
	return filepath.Join(g.dir, "invoice_"+paymentID+".pdf")
}

// Generate создаёт PDF-счёт по бронированию и возвращает путь к файлу.
func (g *Generator) Generate(booking *models.Booking, plan *models.Plan, user *models.User) (string, error) {
	const op = "invoice.Generate"

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(companyName), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	writeRow := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, tr(value), "", 1, "L", false, 0, "")
	}

	writeRow("Customer Name:", orNA(user.Name))
	writeRow("Email:", orNA(user.Email))
	writeRow("Phone:", orNA(user.Phone))
	writeRow("Booking ID:", booking.ID)
	writeRow("Plan Name:", plan.Name)
	writeRow("Service Provider:", plan.ServiceProvider)
	writeRow("Plan Price:", "$"+pricing.FormatDollars(plan.PriceCents))
	writeRow("Payment Status:", booking.PaymentStatus)
	// Дата формирования документа, не дата оплаты: при повторной
	// генерации счёт получает свежую отметку.
	writeRow("Date:", time.Now().Format("2006-01-02"))
	writeRow("Start Date:", booking.StartDate.Format("2006-01-02"))
	writeRow("Duration:", pricing.DurationLabel(booking.Duration, booking.DurationUnit))
	writeRow("Total Paid:", "$"+pricing.FormatDollars(booking.AmountPaidCents))

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6,
		tr("Your insurance copy will be sent by the concerned company in 2-3 working days."),
		"", "L", false)

	path := g.Path(booking.PaymentID)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return path, nil
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
