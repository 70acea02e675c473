package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/saps-platform/case-management/internal/rbac"
	"github.com/saps-platform/case-management/internal/user"
)

// UserRepository implements user.Repository on sqlx.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID                int64     `db:"id"`
	Email             string    `db:"email"`
	FullName          string    `db:"full_name"`
	PasswordHash      string    `db:"password_hash"`
	SAPSRole          string    `db:"saps_role"`
	Province          string    `db:"province"`
	Station           string    `db:"station"`
	BadgeNumber       string    `db:"badge_number"`
	ProfilePictureURL string    `db:"profile_picture_url"`
	ProfileComplete   bool      `db:"profile_complete"`
	IsActive          bool      `db:"is_active"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

const userColumns = `id, email, full_name, password_hash, saps_role, province, station,
	badge_number, profile_picture_url, profile_complete, is_active, created_at, updated_at`

func (r *UserRepository) GetByID(userID int64) (*user.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.Get(&row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return toDomain(&row), nil
}

func (r *UserRepository) UpdateProfile(u *user.User) error {
	query := `UPDATE users
		SET full_name = $1, saps_role = $2, province = $3, station = $4,
			badge_number = $5, profile_picture_url = $6, profile_complete = $7, updated_at = $8
		WHERE id = $9`

	result, err := r.db.Exec(query,
		u.FullName, string(u.SAPSRole), u.Province, u.Station,
		u.BadgeNumber, u.ProfilePictureURL, u.ProfileComplete, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListByRoles(roles []rbac.Role) ([]*user.User, error) {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	query, args, err := sqlx.In(
		`SELECT `+userColumns+` FROM users WHERE saps_role IN (?) ORDER BY full_name`, names)
	if err != nil {
		return nil, err
	}

	var rows []userRow
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	result := make([]*user.User, len(rows))
	for i := range rows {
		result[i] = toDomain(&rows[i])
	}
	return result, nil
}

func toDomain(row *userRow) *user.User {
	return &user.User{
		ID:                row.ID,
		Email:             row.Email,
		FullName:          row.FullName,
		PasswordHash:      row.PasswordHash,
		SAPSRole:          rbac.Role(row.SAPSRole),
		Province:          row.Province,
		Station:           row.Station,
		BadgeNumber:       row.BadgeNumber,
		ProfilePictureURL: row.ProfilePictureURL,
		ProfileComplete:   row.ProfileComplete,
		IsActive:          row.IsActive,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
