// Package models содержит доменные структуры приложения: пользователи,
// страховые планы, бронирования, а также DTO для приёма данных из JSON-запросов.
package models

import "time"

// Роли пользователей. Роль неизменяема после регистрации.
const (
	RoleStudent = "student"
	RoleSales   = "sales"
	RoleAdmin   = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                      string     // Уникальный идентификатор пользователя
	Username                 string     // Имя пользователя (уникальное)
	Email                    string     // Электронная почта (уникальная)
	PasswordHash             string     // Хэш пароля пользователя
	Name                     string     // Полное имя
	Phone                    string     // Телефон
	Address                  string     // Адрес
	Role                     string     // Роль: student, sales или admin
	IsEmailVerified          bool       // Подтверждена ли почта
	EmailVerificationToken   *string    // Токен подтверждения почты
	EmailVerificationExpires *time.Time // Срок действия токена подтверждения
	PasswordResetToken       *string    // Токен сброса пароля
	PasswordResetExpires     *time.Time // Срок действия токена сброса
	Student                  *StudentDetails
	CreatedAt                time.Time
}

// StudentDetails содержит студенческий профиль, заполняется только для роли student.
type StudentDetails struct {
	IsVerified          bool   // Подтверждён ли студент администратором
	CollegeID           string // Идентификатор в учебном заведении, уникален среди заполненных
	CollegeName         string // Название учебного заведения
	DegreeType          string // Тип степени: bachelors, masters, phd
	GraduationMonth     string // Месяц выпуска
	GraduationYear      int    // Год выпуска
	AdmissionLetterPath string // Путь загруженного письма о зачислении
}

// RegisterRequest используется для приёма данных регистрации из multipart-формы.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,alphanum"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	Name            string `json:"name" validate:"required"`
	Phone           string `json:"phone" validate:"required"`
	Address         string `json:"address"`
	Role            string `json:"role" validate:"required,oneof=student sales admin"`
	CollegeID       string `json:"college_id"`
	CollegeName     string `json:"college_name"`
	DegreeType      string `json:"degree_type" validate:"omitempty,oneof=bachelors masters phd"`
	GraduationMonth string `json:"graduation_month"`
	GraduationYear  int    `json:"graduation_year" validate:"omitempty,gte=1900,lte=2100"`
}

// UserView — представление пользователя для JSON-ответов.
// Хэш пароля и токены наружу не отдаются.
type UserView struct {
	UID             string           `json:"uid"`
	Username        string           `json:"username"`
	Email           string           `json:"email"`
	Name            string           `json:"name"`
	Phone           string           `json:"phone,omitempty"`
	Address         string           `json:"address,omitempty"`
	Role            string           `json:"role"`
	IsEmailVerified bool             `json:"is_email_verified"`
	Student         *StudentDetailsView `json:"student,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// StudentDetailsView — представление студенческого профиля для JSON-ответов.
type StudentDetailsView struct {
	IsVerified      bool   `json:"is_verified"`
	CollegeID       string `json:"college_id"`
	CollegeName     string `json:"college_name"`
	DegreeType      string `json:"degree_type"`
	GraduationMonth string `json:"graduation_month"`
	GraduationYear  int    `json:"graduation_year"`
}

// NewUserView строит UserView из доменной модели.
func NewUserView(u *User) UserView {
	view := UserView{
		UID:             u.UID,
		Username:        u.Username,
		Email:           u.Email,
		Name:            u.Name,
		Phone:           u.Phone,
		Address:         u.Address,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
	}
	if u.Student != nil {
		view.Student = &StudentDetailsView{
			IsVerified:      u.Student.IsVerified,
			CollegeID:       u.Student.CollegeID,
			CollegeName:     u.Student.CollegeName,
			DegreeType:      u.Student.DegreeType,
			GraduationMonth: u.Student.GraduationMonth,
			GraduationYear:  u.Student.GraduationYear,
		}
	}
	return view
}

// NewUserViews строит список представлений.
func NewUserViews(users []*User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, NewUserView(u))
	}
	return views
}

// UpdateUserRequest используется для частичного обновления профиля.
// Роль и загруженное письмо о зачислении не изменяются.
type UpdateUserRequest struct {
	Email           string `json:"email" validate:"omitempty,email"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	CollegeName     string `json:"college_name"`
	DegreeType      string `json:"degree_type" validate:"omitempty,oneof=bachelors masters phd"`
	GraduationMonth string `json:"graduation_month"`
	GraduationYear  int    `json:"graduation_year" validate:"omitempty,gte=1900,lte=2100"`
}
