package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	appErrors "github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/repositories/mocks"
	service "github.com/shopease/storefront/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	claims := &models.Claims{UserID: "user-1", Email: "asha@example.com", FullName: "Asha"}

	t.Run("Success - Stored profile", func(t *testing.T) {
		mockRepo := mocks.NewProfileRepository(t)
		profiles := service.NewProfileService(mockRepo)
		stored := &models.Profile{ID: "user-1", FullName: "Asha Rao", Role: models.RoleAdmin}
		mockRepo.On("GetProfile", mock.Anything, "user-1").Return(stored, nil).Once()

		profile, err := profiles.GetProfile(ctx, claims)

		require.NoError(t, err)
		assert.Equal(t, stored, profile)
	})

	t.Run("Success - Defaults from the token", func(t *testing.T) {
		mockRepo := mocks.NewProfileRepository(t)
		profiles := service.NewProfileService(mockRepo)
		mockRepo.On("GetProfile", mock.Anything, "user-1").Return(nil, sql.ErrNoRows).Once()

		profile, err := profiles.GetProfile(ctx, claims)

		require.NoError(t, err)
		assert.Equal(t, "Asha", profile.FullName)
		assert.Equal(t, "asha@example.com", profile.Email)
		assert.Equal(t, models.RoleUser, profile.Role)
	})

	t.Run("Success - Defaults without a name", func(t *testing.T) {
		mockRepo := mocks.NewProfileRepository(t)
		profiles := service.NewProfileService(mockRepo)
		mockRepo.On("GetProfile", mock.Anything, "user-2").Return(nil, sql.ErrNoRows).Once()

		profile, err := profiles.GetProfile(ctx, &models.Claims{UserID: "user-2"})

		require.NoError(t, err)
		assert.Equal(t, "New User", profile.FullName)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		mockRepo := mocks.NewProfileRepository(t)
		profiles := service.NewProfileService(mockRepo)
		mockRepo.On("GetProfile", mock.Anything, "user-1").Return(nil, errors.New("db down")).Once()

		profile, err := profiles.GetProfile(ctx, claims)

		assert.Nil(t, profile)
		assertAppErrorCode(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	claims := &models.Claims{UserID: "user-1", Email: "asha@example.com"}

	t.Run("Success - Missing fields keep current values", func(t *testing.T) {
		// Arrange
		mockRepo := mocks.NewProfileRepository(t)
		profiles := service.NewProfileService(mockRepo)
		stored := &models.Profile{ID: "user-1", FullName: "Asha", Phone: "9876543210", AvatarURL: "https://cdn.example.com/a.png"}
		mockRepo.On("GetProfile", mock.Anything, "user-1").Return(stored, nil).Once()
		mockRepo.On("UpsertProfile", mock.Anything, mock.AnythingOfType("*models.Profile")).Return(nil).Once()

		// Act
		profile, err := profiles.UpdateProfile(ctx, claims, &models.UpdateProfileRequest{FullName: ptr("  <i>Asha Rao</i> ")})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", profile.FullName)
		assert.Equal(t, "9876543210", profile.Phone)
		assert.Equal(t, "https://cdn.example.com/a.png", profile.AvatarURL)
		assert.Equal(t, "asha@example.com", profile.Email)
	})

	t.Run("Success - New user gets a profile", func(t *testing.T) {
		mockRepo := mocks.NewProfileRepository(t)
		profiles := service.NewProfileService(mockRepo)
		address := validAddress()
		mockRepo.On("GetProfile", mock.Anything, "user-1").Return(nil, sql.ErrNoRows).Once()
		mockRepo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
			return p.ID == "user-1" && p.FullName == "New User" && p.ShippingAddress.City == "Pune"
		})).Return(nil).Once()

		profile, err := profiles.UpdateProfile(ctx, claims, &models.UpdateProfileRequest{ShippingAddress: &address})

		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, profile.Role)
	})

	t.Run("Failure - Blank name", func(t *testing.T) {
		mockRepo := mocks.NewProfileRepository(t)
		profiles := service.NewProfileService(mockRepo)
		mockRepo.On("GetProfile", mock.Anything, "user-1").Return(&models.Profile{ID: "user-1", FullName: "Asha"}, nil).Once()

		profile, err := profiles.UpdateProfile(ctx, claims, &models.UpdateProfileRequest{FullName: ptr("<b></b>")})

		assert.Nil(t, profile)
		assertAppErrorCode(t, err, appErrors.ErrCodeValidation)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		mockRepo := mocks.NewProfileRepository(t)
		profiles := service.NewProfileService(mockRepo)
		mockRepo.On("GetProfile", mock.Anything, "user-1").Return(&models.Profile{ID: "user-1"}, nil).Once()
		mockRepo.On("UpsertProfile", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

		profile, err := profiles.UpdateProfile(ctx, claims, &models.UpdateProfileRequest{Phone: ptr("9876543210")})

		assert.Nil(t, profile)
		assertAppErrorCode(t, err, appErrors.ErrCodeDatabaseError)
	})
}
