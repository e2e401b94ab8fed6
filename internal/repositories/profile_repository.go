package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/utils"
)

type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
	CountProfiles(ctx context.Context) (int, error)
	RecentSignups(ctx context.Context, limit int) ([]models.RecentSignup, error)
}

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepo(db *sql.DB) ProfileRepository {
	return &profileRepository{DB: db}
}

func (r *profileRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, full_name, email, phone, avatar_url, shipping_address, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	profile := &models.Profile{}

	var addressJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&profile.ID, &profile.FullName, &profile.Email, &profile.Phone, &profile.AvatarURL, &addressJSON, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &profile.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
		}
	}

	return profile, nil
}

// UpsertProfile writes the editable fields. Role is only set when the row is
// created; later upserts leave it alone.
func (r *profileRepository) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	addressJSON, err := json.Marshal(profile.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	if profile.Role == "" {
		profile.Role = models.RoleUser
	}

	profile.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO profiles (id, full_name, email, phone, avatar_url, shipping_address, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8)
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name, email = EXCLUDED.email, phone = EXCLUDED.phone,
			avatar_url = EXCLUDED.avatar_url, shipping_address = EXCLUDED.shipping_address, updated_at = EXCLUDED.updated_at
		RETURNING role, created_at
	`

	err = r.DB.QueryRowContext(dbCtx, query, profile.ID, profile.FullName, profile.Email, profile.Phone, profile.AvatarURL, addressJSON, profile.Role, profile.UpdatedAt).Scan(&profile.Role, &profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert the profile: %w", err)
	}

	return nil
}

func (r *profileRepository) CountProfiles(ctx context.Context) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var count int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	return count, nil
}

func (r *profileRepository) RecentSignups(ctx context.Context, limit int) ([]models.RecentSignup, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT full_name, created_at
		FROM profiles
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(dbCtx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups: %w", err)
	}

	defer rows.Close()

	signups := []models.RecentSignup{}

	for rows.Next() {
		var signup models.RecentSignup
		if err := rows.Scan(&signup.FullName, &signup.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signup: %w", err)
		}

		signups = append(signups, signup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signups: %w", err)
	}

	return signups, nil
}
