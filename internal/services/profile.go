package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	appErrors "github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	repository "github.com/shopease/storefront/internal/repositories"
)

const defaultProfileName = "New User"

type ProfileService interface {
	GetProfile(ctx context.Context, claims *models.Claims) (*models.Profile, error)
	UpdateProfile(ctx context.Context, claims *models.Claims, req *models.UpdateProfileRequest) (*models.Profile, error)
}

type profileService struct {
	repo     repository.ProfileRepository
	sanitize *bluemonday.Policy
}

func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &profileService{repo: repo, sanitize: bluemonday.StrictPolicy()}
}

// GetProfile returns the stored profile, or defaults built from the token when
// the user has none yet.
func (s *profileService) GetProfile(ctx context.Context, claims *models.Claims) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultProfile(claims), nil
		}
		return nil, appErrors.DatabaseError("Failed to get profile").WithError(err)
	}

	return profile, nil
}

// UpdateProfile applies the fields present in req; absent ones keep their
// current value.
func (s *profileService) UpdateProfile(ctx context.Context, claims *models.Claims, req *models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, claims)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(s.sanitize.Sanitize(*req.FullName))
		if name == "" {
			return nil, appErrors.AddValidationError("full_name", "must not be empty")
		}
		profile.FullName = name
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.ShippingAddress != nil {
		profile.ShippingAddress = req.ShippingAddress
	}

	if profile.Email == "" {
		profile.Email = claims.Email
	}

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, appErrors.DatabaseError("Failed to update profile").WithError(err)
	}

	return profile, nil
}

func defaultProfile(claims *models.Claims) *models.Profile {
	name := strings.TrimSpace(claims.FullName)
	if name == "" {
		name = defaultProfileName
	}

	return &models.Profile{
		ID:       claims.UserID,
		FullName: name,
		Email:    claims.Email,
		Role:     models.RoleUser,
	}
}
