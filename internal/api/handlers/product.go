package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopease/storefront/internal/api/middleware"
	"github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	service "github.com/shopease/storefront/internal/services"
	"github.com/shopease/storefront/internal/utils"
	"github.com/shopease/storefront/internal/utils/response"
)

type ProductHandler struct {
	catalog   service.CatalogService
	validator *validator.Validate
}

func NewProductHandler(catalog service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog, validator: validator.New()}
}

// SearchProducts lists the catalogue filtered by the q query parameter.
func (h *ProductHandler) SearchProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		products, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			logger.Error("Failed to search products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseProductID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id").WithDetail(err.Error()))
			return
		}

		product, err := h.catalog.GetProduct(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.ProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create product input")
			return
		}

		product, err := h.catalog.CreateProduct(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to create product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product created successfully", slog.Int64("productId", product.ID))
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseProductID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id").WithDetail(err.Error()))
			return
		}

		var req models.ProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update product input")
			return
		}

		product, err := h.catalog.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			logger.Error("Failed to update product", slog.Int64("productId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product updated successfully", slog.Int64("productId", id))
		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseProductID(r, "id")
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id").WithDetail(err.Error()))
			return
		}

		if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
			logger.Error("Failed to delete product", slog.Int64("productId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product deleted", slog.Int64("productId", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
