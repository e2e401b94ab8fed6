package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopease/storefront/internal/cache"
	appErrors "github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/models"
	repository "github.com/shopease/storefront/internal/repositories"
	"golang.org/x/sync/singleflight"
)

type CatalogService interface {
	Search(ctx context.Context, term string) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type catalogService struct {
	repo     repository.ProductRepository
	cache    cache.Cache
	ttl      time.Duration
	sanitize *bluemonday.Policy
	group    singleflight.Group
}

// NewCatalogService caches search results and single products for ttl. A zero
// ttl uses the cache's default.
func NewCatalogService(repo repository.ProductRepository, cache cache.Cache, ttl time.Duration) CatalogService {
	return &catalogService{
		repo:     repo,
		cache:    cache,
		ttl:      ttl,
		sanitize: bluemonday.StrictPolicy(),
	}
}

// normalizeTerm strips markup and surrounding space from a search term.
func (s *catalogService) normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(s.sanitize.Sanitize(term)))
}

func (s *catalogService) Search(ctx context.Context, term string) ([]*models.Product, error) {
	term = s.normalizeTerm(term)
	key := cache.Key(cache.ProductSearchKeyPrefix, term)

	v, err, _ := s.group.Do(key, func() (any, error) {
		var cached []*models.Product

		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			slog.Warn("Product search cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		if found {
			return cached, nil
		}

		products, err := s.repo.SearchProducts(ctx, term)
		if err != nil {
			return nil, appErrors.DatabaseError("Failed to fetch products").WithError(err)
		}

		if err := s.cache.Set(ctx, key, products, s.ttl); err != nil {
			slog.Warn("Product search cache write failed", slog.String("key", key), slog.Any("error", err))
		}

		return products, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]*models.Product), nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	key := cache.Key(cache.ProductKeyPrefix, strconv.FormatInt(id, 10))

	v, err, _ := s.group.Do(key, func() (any, error) {
		var cached models.Product

		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			slog.Warn("Product cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		if found {
			return &cached, nil
		}

		product, err := s.repo.GetProductByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.NotFoundError("Product not found").WithError(err)
			}
			return nil, appErrors.DatabaseError("Failed to get product").WithError(err)
		}

		if err := s.cache.Set(ctx, key, product, s.ttl); err != nil {
			slog.Warn("Product cache write failed", slog.String("key", key), slog.Any("error", err))
		}

		return product, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.Product), nil
}

func (s *catalogService) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	if !req.Price.IsPositive() {
		return nil, appErrors.AddValidationError("price", "must be greater than 0")
	}

	product := &models.Product{}
	applyProductRequest(product, req)

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	s.invalidate(ctx, product.ID)

	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int64, req *models.ProductRequest) (*models.Product, error) {
	if !req.Price.IsPositive() {
		return nil, appErrors.AddValidationError("price", "must be greater than 0")
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to get product").WithError(err)
	}

	applyProductRequest(product, req)

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidate(ctx, id)

	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Product not found").WithError(err)
		}
		return appErrors.DatabaseError("Failed to delete product").WithError(err)
	}

	s.invalidate(ctx, id)

	return nil
}

// invalidate drops the product and every cached search, since any of them may
// list it.
func (s *catalogService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, cache.Key(cache.ProductKeyPrefix, strconv.FormatInt(id, 10))); err != nil {
		slog.Warn("Failed to invalidate product cache", slog.Int64("product_id", id), slog.Any("error", err))
	}

	if err := s.cache.DeletePrefix(ctx, cache.ProductSearchKeyPrefix); err != nil {
		slog.Warn("Failed to invalidate product search cache", slog.Any("error", err))
	}
}

func applyProductRequest(product *models.Product, req *models.ProductRequest) {
	product.Title = strings.TrimSpace(req.Title)
	product.Description = req.Description
	product.Price = req.Price
	product.Brand = strings.TrimSpace(req.Brand)
	product.Category = strings.ToLower(strings.TrimSpace(req.Category))
	product.Thumbnail = req.Thumbnail
	product.Stock = req.Stock

	product.Images = req.Images
	if product.Images == nil {
		product.Images = []string{}
	}
}
