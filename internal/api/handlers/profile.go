package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopease/storefront/internal/api/middleware"
	"github.com/shopease/storefront/internal/models"
	service "github.com/shopease/storefront/internal/services"
	"github.com/shopease/storefront/internal/utils"
	"github.com/shopease/storefront/internal/utils/response"
)

type ProfileHandler struct {
	profileService service.ProfileService
	validator      *validator.Validate
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, validator: validator.New()}
}

func (h *ProfileHandler) GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		profile, err := h.profileService.GetProfile(r.Context(), claims)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to get profile", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, profile)
	}
}

func (h *ProfileHandler) UpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req models.UpdateProfileRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid profile update input")
			return
		}

		profile, err := h.profileService.UpdateProfile(r.Context(), claims, &req)
		if err != nil {
			logger.Error("Failed to update profile", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Profile updated")
		response.Success(w, http.StatusOK, profile)
	}
}
