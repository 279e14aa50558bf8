package models

import "time"

// Plan представляет страховой план, опубликованный sales-пользователем.
// Цена хранится в центах за месяц.
type Plan struct {
	ID              string    // Уникальный идентификатор плана
	Name            string    // Название плана
	Description     string    // Описание
	PriceCents      int64     // Цена за месяц в центах
	Features        []string  // Список включённых опций
	ServiceProvider string    // Название страховой компании
	Discontinued    bool      // Снят ли план с продажи
	CreatedBy       string    // UID sales-пользователя, создавшего план
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PlanView — представление плана для JSON-ответов. Цена отдаётся в долларах.
type PlanView struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	Features        []string  `json:"features"`
	ServiceProvider string    `json:"service_provider"`
	Discontinued    bool      `json:"discontinued"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewPlanView строит PlanView из доменной модели.
func NewPlanView(p *Plan) PlanView {
	return PlanView{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           float64(p.PriceCents) / 100,
		Features:        p.Features,
		ServiceProvider: p.ServiceProvider,
		Discontinued:    p.Discontinued,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// NewPlanViews строит список представлений.
func NewPlanViews(plans []*Plan) []PlanView {
	views := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		views = append(views, NewPlanView(p))
	}
	return views
}

// DummyPlan используется для приёма данных плана из JSON-запроса.
// Цена приходит в долларах и конвертируется в центы на границе.
type DummyPlan struct {
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	Price           float64  `json:"price" validate:"required,gt=0"` // Цена в долларах за месяц
	Features        []string `json:"features" validate:"required,min=1"`
	ServiceProvider string   `json:"service_provider" validate:"required"`
}

// UpdatePlanRequest используется для частичного обновления плана его создателем.
type UpdatePlanRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price" validate:"omitempty,gt=0"`
	Features        []string `json:"features"`
	ServiceProvider *string  `json:"service_provider"`
	Discontinued    *bool    `json:"discontinued"`
}
