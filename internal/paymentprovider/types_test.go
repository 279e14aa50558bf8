package paymentprovider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMetadataRoundTrip(t *testing.T) {
	meta := SessionMetadata{
		PlanID:       "5dd4a268-61c9-4bbd-9126-c155ecd8132b",
		UserID:       "b4b8a2a0-2c43-47ba-a51c-0cb2a1a2f2f0",
		StartDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Duration:     2,
		DurationUnit: "yearly",
	}

	parsed, err := ParseSessionMetadata(meta.ToMap())
	require.NoError(t, err)
	assert.Equal(t, meta, parsed)
}

func TestParseSessionMetadata(t *testing.T) {
	valid := func() map[string]string {
		return map[string]string{
			"planId":       "5dd4a268-61c9-4bbd-9126-c155ecd8132b",
			"userId":       "b4b8a2a0-2c43-47ba-a51c-0cb2a1a2f2f0",
			"startDate":    "2026-09-01",
			"duration":     "6",
			"durationType": "monthly",
		}
	}

	tests := []struct {
		name    string
		mutate  func(m map[string]string)
		wantErr bool
	}{
		{
			name:   "valid monthly",
			mutate: func(_ map[string]string) {},
		},
		{
			name:   "valid yearly",
			mutate: func(m map[string]string) { m["durationType"] = "yearly" },
		},
		{
			name:    "missing plan id",
			mutate:  func(m map[string]string) { delete(m, "planId") },
			wantErr: true,
		},
		{
			name:    "plan id not a uuid",
			mutate:  func(m map[string]string) { m["planId"] = "plan-42" },
			wantErr: true,
		},
		{
			name:    "missing user id",
			mutate:  func(m map[string]string) { delete(m, "userId") },
			wantErr: true,
		},
		{
			name:    "bad start date",
			mutate:  func(m map[string]string) { m["startDate"] = "01/09/2026" },
			wantErr: true,
		},
		{
			name:    "duration not a number",
			mutate:  func(m map[string]string) { m["duration"] = "six" },
			wantErr: true,
		},
		{
			name:    "duration below one",
			mutate:  func(m map[string]string) { m["duration"] = "0" },
			wantErr: true,
		},
		{
			name:    "unknown duration type",
			mutate:  func(m map[string]string) { m["durationType"] = "weekly" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)

			parsed, err := ParseSessionMetadata(m)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, m["planId"], parsed.PlanID)
			assert.Equal(t, 6, parsed.Duration)
		})
	}
}
