package paymentprovider

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Ключи метаданных сессии оплаты. По ним вебхук восстанавливает
// параметры покупки при сверке.
const (
	metadataPlanIDKey       = "planId"
	metadataUserIDKey       = "userId"
	metadataStartDateKey    = "startDate"
	metadataDurationKey     = "duration"
	metadataDurationTypeKey = "durationType"
)

const startDateLayout = "2006-01-02"

// SessionMetadata параметры покупки, прикреплённые к сессии оплаты.
type SessionMetadata struct {
	PlanID       string
	UserID       string
	StartDate    time.Time
	Duration     int
	DurationUnit string
}

// ToMap сериализует метаданные в формат платёжного шлюза.
func (m SessionMetadata) ToMap() map[string]string {
	return map[string]string{
		metadataPlanIDKey:       m.PlanID,
		metadataUserIDKey:       m.UserID,
		metadataStartDateKey:    m.StartDate.Format(startDateLayout),
		metadataDurationKey:     strconv.Itoa(m.Duration),
		metadataDurationTypeKey: m.DurationUnit,
	}
}

// ParseSessionMetadata разбирает метаданные сессии. Любое отсутствующее
// или некорректное поле приводит к ошибке: такие события уходят в
// dead letter, а не обрабатываются частично.
func ParseSessionMetadata(raw map[string]string) (SessionMetadata, error) {
	var result SessionMetadata

	planID, ok := raw[metadataPlanIDKey]
	if !ok || planID == "" {
		return result, fmt.Errorf("metadata: missing %s", metadataPlanIDKey)
	}
	if _, err := uuid.Parse(planID); err != nil {
		return result, fmt.Errorf("metadata: invalid %s: %w", metadataPlanIDKey, err)
	}

	userID, ok := raw[metadataUserIDKey]
	if !ok || userID == "" {
		return result, fmt.Errorf("metadata: missing %s", metadataUserIDKey)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return result, fmt.Errorf("metadata: invalid %s: %w", metadataUserIDKey, err)
	}

	startDateRaw, ok := raw[metadataStartDateKey]
	if !ok {
		return result, fmt.Errorf("metadata: missing %s", metadataStartDateKey)
	}
	startDate, err := time.Parse(startDateLayout, startDateRaw)
	if err != nil {
		return result, fmt.Errorf("metadata: invalid %s: %w", metadataStartDateKey, err)
	}

	durationRaw, ok := raw[metadataDurationKey]
	if !ok {
		return result, fmt.Errorf("metadata: missing %s", metadataDurationKey)
	}
	duration, err := strconv.Atoi(durationRaw)
	if err != nil || duration < 1 {
		return result, fmt.Errorf("metadata: invalid %s: %q", metadataDurationKey, durationRaw)
	}

	durationUnit, ok := raw[metadataDurationTypeKey]
	if !ok || (durationUnit != "monthly" && durationUnit != "yearly") {
		return result, fmt.Errorf("metadata: invalid %s: %q", metadataDurationTypeKey, durationUnit)
	}

	result.PlanID = planID
	result.UserID = userID
	result.StartDate = startDate
	result.Duration = duration
	result.DurationUnit = durationUnit
	return result, nil
}
