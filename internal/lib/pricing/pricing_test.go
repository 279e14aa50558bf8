package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvitality/brokerage/internal/models"
)

func TestTotal(t *testing.T) {
	tests := []struct {
		name         string
		priceCents   int64
		duration     int
		durationUnit string
		want         int64
		wantErr      bool
	}{
		{
			name:         "yearly with 10 percent discount, $120 per month",
			priceCents:   12000,
			duration:     1,
			durationUnit: models.DurationYearly,
			want:         129600, // 120 * 12 * 0.9 = $1296.00
		},
		{
			name:         "monthly, $50 for 3 months",
			priceCents:   5000,
			duration:     3,
			durationUnit: models.DurationMonthly,
			want:         15000, // $150.00
		},
		{
			name:         "yearly two years",
			priceCents:   9999,
			duration:     2,
			durationUnit: models.DurationYearly,
			want:         215978, // round(9999 * 24 * 0.9)
		},
		{
			name:         "yearly rounding to nearest cent",
			priceCents:   101,
			duration:     1,
			durationUnit: models.DurationYearly,
			want:         1091, // round(1090.8)
		},
		{
			name:         "monthly single month",
			priceCents:   12000,
			duration:     1,
			durationUnit: models.DurationMonthly,
			want:         12000,
		},
		{
			name:         "zero price is allowed",
			priceCents:   0,
			duration:     5,
			durationUnit: models.DurationMonthly,
			want:         0,
		},
		{
			name:         "negative price rejected",
			priceCents:   -100,
			duration:     1,
			durationUnit: models.DurationMonthly,
			wantErr:      true,
		},
		{
			name:         "zero duration rejected",
			priceCents:   100,
			duration:     0,
			durationUnit: models.DurationMonthly,
			wantErr:      true,
		},
		{
			name:         "unknown duration unit rejected",
			priceCents:   100,
			duration:     1,
			durationUnit: "weekly",
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Total(tt.priceCents, tt.duration, tt.durationUnit)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDurationLabel(t *testing.T) {
	assert.Equal(t, "3 month(s)", DurationLabel(3, models.DurationMonthly))
	assert.Equal(t, "1 year(s)", DurationLabel(1, models.DurationYearly))
}

func TestDollarsToCents(t *testing.T) {
	assert.Equal(t, int64(12000), DollarsToCents(120))
	assert.Equal(t, int64(9999), DollarsToCents(99.99))
	assert.Equal(t, int64(10), DollarsToCents(0.1))
}

func TestFormatDollars(t *testing.T) {
	assert.Equal(t, "1296.00", FormatDollars(129600))
	assert.Equal(t, "0.05", FormatDollars(5))
}
