package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/campusvitality/brokerage/internal/models"
)

const userColumns = `uid, username, email, password_hash, name, phone, address, role,
			      is_email_verified, email_verification_token, email_verification_expires,
			      password_reset_token, password_reset_expires,
			      is_student_verified, college_id, college_name, degree_type,
			      graduation_month, graduation_year, admission_letter_path, created_at`

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		collegeID, collegeName, degreeType, gradMonth, letterPath *string
		gradYear                                                  *int
		isStudentVerified                                         bool
	)
	if user.Student != nil {
		isStudentVerified = user.Student.IsVerified
		collegeID = &user.Student.CollegeID
		collegeName = &user.Student.CollegeName
		if user.Student.DegreeType != "" {
			degreeType = &user.Student.DegreeType
		}
		if user.Student.GraduationMonth != "" {
			gradMonth = &user.Student.GraduationMonth
		}
		if user.Student.GraduationYear != 0 {
			gradYear = &user.Student.GraduationYear
		}
		letterPath = &user.Student.AdmissionLetterPath
	}

	var newUID string
	query := `INSERT INTO users (username, email, password_hash, name, phone, address, role,
			      is_student_verified, college_id, college_name, degree_type,
			      graduation_month, graduation_year, admission_letter_path)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Name, user.Phone, user.Address,
		user.Role, isStudentVerified, collegeID, collegeName, degreeType,
		gradMonth, gradYear, letterPath).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	var (
		emailToken, resetToken                                    sql.NullString
		emailExpires, resetExpires                                sql.NullTime
		isStudentVerified                                         sql.NullBool
		collegeID, collegeName, degreeType, gradMonth, letterPath sql.NullString
		gradYear                                                  sql.NullInt64
		address, phone, name                                      sql.NullString
	)
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.PasswordHash, &name, &phone, &address,
		&u.Role, &u.IsEmailVerified, &emailToken, &emailExpires, &resetToken, &resetExpires,
		&isStudentVerified, &collegeID, &collegeName, &degreeType,
		&gradMonth, &gradYear, &letterPath, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Name = name.String
	u.Phone = phone.String
	u.Address = address.String
	if emailToken.Valid {
		u.EmailVerificationToken = &emailToken.String
	}
	if emailExpires.Valid {
		u.EmailVerificationExpires = &emailExpires.Time
	}
	if resetToken.Valid {
		u.PasswordResetToken = &resetToken.String
	}
	if resetExpires.Valid {
		u.PasswordResetExpires = &resetExpires.Time
	}
	if u.Role == models.RoleStudent {
		u.Student = &models.StudentDetails{
			IsVerified:          isStudentVerified.Bool,
			CollegeID:           collegeID.String,
			CollegeName:         collegeName.String,
			DegreeType:          degreeType.String,
			GraduationMonth:     gradMonth.String,
			GraduationYear:      int(gradYear.Int64),
			AdmissionLetterPath: letterPath.String,
		}
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username = $1 AND deleted_at IS NULL`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1 AND deleted_at IS NULL`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по электронной почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1 AND deleted_at IS NULL`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsersByRole возвращает всех пользователей с указанной ролью.
func (s *Storage) ListUsersByRole(ctx context.Context, role string) ([]*models.User, error) {
	const op = "storage.ListUsersByRole"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE role = $1 AND deleted_at IS NULL
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser обновляет изменяемые поля профиля. Роль, пароль и загруженное
// письмо о зачислении этим методом не трогаются.
func (s *Storage) UpdateUser(ctx context.Context, uid string, req models.UpdateUserRequest) (*models.User, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET email = COALESCE(NULLIF($1, ''), email),
			      name = COALESCE(NULLIF($2, ''), name),
			      phone = COALESCE(NULLIF($3, ''), phone),
			      address = COALESCE(NULLIF($4, ''), address),
			      college_name = COALESCE(NULLIF($5, ''), college_name),
			      degree_type = COALESCE(NULLIF($6, ''), degree_type),
			      graduation_month = COALESCE(NULLIF($7, ''), graduation_month),
			      graduation_year = COALESCE(NULLIF($8, 0), graduation_year),
			      updated_at = now()
			  WHERE uid = $9 AND deleted_at IS NULL
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		req.Email, req.Name, req.Phone, req.Address,
		req.CollegeName, req.DegreeType, req.GraduationMonth, req.GraduationYear, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SetStudentVerification выставляет флаг подтверждения студента. Только для роли student.
func (s *Storage) SetStudentVerification(ctx context.Context, uid string, verified bool) (int, error) {
	const op = "storage.SetStudentVerification"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_student_verified = $1, updated_at = now()
			  WHERE uid = $2 AND role = 'student' AND deleted_at IS NULL`
	result, err := s.DB.ExecContext(ctx, query, verified, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetEmailVerificationToken сохраняет токен подтверждения почты и срок его действия.
func (s *Storage) SetEmailVerificationToken(ctx context.Context, uid, tok string, expires time.Time) error {
	const op = "storage.SetEmailVerificationToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET email_verification_token = $1, email_verification_expires = $2, updated_at = now()
			  WHERE uid = $3 AND deleted_at IS NULL`
	if _, err := s.DB.ExecContext(ctx, query, tok, expires, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// VerifyEmailByToken подтверждает почту по действующему токену и очищает его.
// Возвращает ErrNotFound, если токен не найден или просрочен.
func (s *Storage) VerifyEmailByToken(ctx context.Context, tok string) error {
	const op = "storage.VerifyEmailByToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_email_verified = true,
			      email_verification_token = NULL,
			      email_verification_expires = NULL,
			      updated_at = now()
			  WHERE email_verification_token = $1
			    AND email_verification_expires > now()
			    AND deleted_at IS NULL`
	result, err := s.DB.ExecContext(ctx, query, tok)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// SetPasswordResetToken сохраняет токен сброса пароля и срок его действия.
func (s *Storage) SetPasswordResetToken(ctx context.Context, uid, tok string, expires time.Time) error {
	const op = "storage.SetPasswordResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_reset_token = $1, password_reset_expires = $2, updated_at = now()
			  WHERE uid = $3 AND deleted_at IS NULL`
	if _, err := s.DB.ExecContext(ctx, query, tok, expires, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetPasswordByToken меняет хэш пароля по действующему токену сброса и очищает токен.
// Возвращает ErrNotFound, если токен не найден или просрочен.
func (s *Storage) ResetPasswordByToken(ctx context.Context, tok, passwordHash string) error {
	const op = "storage.ResetPasswordByToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1,
			      password_reset_token = NULL,
			      password_reset_expires = NULL,
			      updated_at = now()
			  WHERE password_reset_token = $2
			    AND password_reset_expires > now()
			    AND deleted_at IS NULL`
	result, err := s.DB.ExecContext(ctx, query, passwordHash, tok)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteSalesUser мягко удаляет sales-пользователя и в той же транзакции
// помечает все созданные им планы снятыми с продажи. Возвращает id
// затронутых планов.
func (s *Storage) DeleteSalesUser(ctx context.Context, uid string) ([]string, error) {
	const op = "storage.DeleteSalesUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET deleted_at = now(), updated_at = now()
		 WHERE uid = $1 AND role = 'sales' AND deleted_at IS NULL`, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	rows, err := tx.QueryContext(ctx,
		`UPDATE plans SET discontinued = true, updated_at = now()
		 WHERE created_by = $1
		 RETURNING id`, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var planIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		planIDs = append(planIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return planIDs, nil
}
