package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository - интерфейс для работы с профилями.
type ProfileRepository interface {
	GetProfileByID(ctx context.Context, profileID string) (*models.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	ListProfilesByType(ctx context.Context, profileType models.ProfileType) ([]models.Profile, error)
	EditProfile(ctx context.Context, profileID string, updateFields map[string]string) (*models.Profile, error)
}

// Поля, которые хранятся в учётной записи, а не в профиле.
var userFields = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"email":      true,
}

// ProfileFields - поля профиля, доступные для изменения.
var ProfileFields = map[string]bool{
	"first_name":    true,
	"last_name":     true,
	"email":         true,
	"file":          true,
	"location":      true,
	"tel":           true,
	"description":   true,
	"working_hours": true,
}

// PostgresProfileRepository - реализация ProfileRepository для базы данных.
type PostgresProfileRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProfileRepository создаёт новый экземпляр PostgresProfileRepository.
func NewPostgresProfileRepository(db *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{DB: db}
}

const selectProfile = `
	SELECT p.id, p.user_id, u.username, u.first_name, u.last_name, u.email,
	       p.file, p.location, p.tel, p.description, p.working_hours, p.type, p.created_at
	FROM profile p
	JOIN users u ON u.id = p.user_id`

// GetProfileByID возвращает профиль по идентификатору.
func (r *PostgresProfileRepository) GetProfileByID(ctx context.Context, profileID string) (*models.Profile, error) {
	profile, err := scanProfile(r.DB.QueryRow(ctx, selectProfile+` WHERE p.id = $1`, profileID))
	if err != nil {
		return nil, wrapError("failed to select profile", err)
	}
	return profile, nil
}

// GetProfileByUserID возвращает профиль учётной записи.
func (r *PostgresProfileRepository) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := scanProfile(r.DB.QueryRow(ctx, selectProfile+` WHERE p.user_id = $1`, userID))
	if err != nil {
		return nil, wrapError("failed to select profile", err)
	}
	return profile, nil
}

// ListProfilesByType возвращает все профили заданного типа.
func (r *PostgresProfileRepository) ListProfilesByType(ctx context.Context, profileType models.ProfileType) ([]models.Profile, error) {
	rows, err := r.DB.Query(ctx, selectProfile+` WHERE p.type = $1 ORDER BY u.username`, profileType)
	if err != nil {
		return nil, wrapError("failed to select profiles", err)
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

// EditProfile меняет поля профиля и учётной записи в одной транзакции.
func (r *PostgresProfileRepository) EditProfile(ctx context.Context, profileID string, updateFields map[string]string) (*models.Profile, error) {
	var profileUpdates, userUpdates []string
	var profileArgs, userArgs []interface{}

	for field, value := range updateFields {
		if !ProfileFields[field] {
			return nil, fmt.Errorf("field %s cannot be updated", field)
		}
		if userFields[field] {
			userArgs = append(userArgs, value)
			userUpdates = append(userUpdates, fmt.Sprintf("%s = $%d", field, len(userArgs)))
			continue
		}
		profileArgs = append(profileArgs, value)
		profileUpdates = append(profileUpdates, fmt.Sprintf("%s = $%d", field, len(profileArgs)))
	}

	err := pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		if len(profileUpdates) > 0 {
			query := `UPDATE profile SET ` + strings.Join(profileUpdates, ", ") + fmt.Sprintf(" WHERE id = $%d", len(profileArgs)+1)
			tag, err := tx.Exec(ctx, query, append(profileArgs, profileID)...)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return pgx.ErrNoRows
			}
		}

		if len(userUpdates) > 0 {
			query := `UPDATE users SET ` + strings.Join(userUpdates, ", ") +
				fmt.Sprintf(" WHERE id = (SELECT user_id FROM profile WHERE id = $%d)", len(userArgs)+1)
			tag, err := tx.Exec(ctx, query, append(userArgs, profileID)...)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return pgx.ErrNoRows
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapError("failed to update profile", err)
	}
	return r.GetProfileByID(ctx, profileID)
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Username,
		&profile.FirstName,
		&profile.LastName,
		&profile.Email,
		&profile.File,
		&profile.Location,
		&profile.Tel,
		&profile.Description,
		&profile.WorkingHours,
		&profile.Type,
		&profile.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
