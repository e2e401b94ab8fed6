package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopease/storefront/internal/models"
	"github.com/shopease/storefront/internal/utils"
)

type ProductRepository interface {
	SearchProducts(ctx context.Context, term string) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, title, description, price, brand, category, thumbnail, images, rating, stock, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}

	var imagesJSON []byte

	err := row.Scan(&product.ID, &product.Title, &product.Description, &product.Price, &product.Brand, &product.Category, &product.Thumbnail, &imagesJSON, &product.Rating, &product.Stock, &product.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product images: %w", err)
		}
	}

	if product.Images == nil {
		product.Images = []string{}
	}

	return product, nil
}

// SearchProducts lists all products, or those whose title, description,
// category or brand contains term (case-insensitive) when term is set.
func (r *productRepository) SearchProducts(ctx context.Context, term string) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var (
		rows *sql.Rows
		err  error
	)

	if term == "" {
		query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
		rows, err = r.DB.QueryContext(dbCtx, query)
	} else {
		query := `SELECT ` + productColumns + ` FROM products
			WHERE title ILIKE $1 OR description ILIKE $1 OR category ILIKE $1 OR brand ILIKE $1
			ORDER BY created_at DESC`
		rows, err = r.DB.QueryContext(dbCtx, query, "%"+escapeLike(term)+"%")
	}

	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	defer rows.Close()

	products := []*models.Product{}

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	imagesJSON, err := marshalImages(product.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (title, description, price, brand, category, thumbnail, images, stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.Title, product.Description, product.Price, product.Brand, product.Category, product.Thumbnail, imagesJSON, product.Stock).Scan(&product.ID, &product.CreatedAt)
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	imagesJSON, err := marshalImages(product.Images)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET title = $1, description = $2, price = $3, brand = $4, category = $5, thumbnail = $6, images = $7, stock = $8
		WHERE id = $9
	`

	result, err := r.DB.ExecContext(dbCtx, query, product.Title, product.Description, product.Price, product.Brand, product.Category, product.Thumbnail, imagesJSON, product.Stock, product.ID)
	if err != nil {
		return fmt.Errorf("failed to update the product: %w", err)
	}

	return requireAffected(result)
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete the product: %w", err)
	}

	return requireAffected(result)
}

func marshalImages(images []string) ([]byte, error) {
	if images == nil {
		images = []string{}
	}

	data, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product images: %w", err)
	}

	return data, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func escapeLike(term string) string {
	out := make([]rune, 0, len(term))

	for _, r := range term {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}

	return string(out)
}
