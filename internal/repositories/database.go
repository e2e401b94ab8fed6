package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"github.com/shopease/storefront/internal/config"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Repositories struct {
	DB       *sql.DB
	Cart     CartRepository
	Wishlist WishlistRepository
	Product  ProductRepository
	Order    OrderRepository
	Profile  ProfileRepository
}

func New(ctx context.Context, cfg *config.Config) (*Repositories, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test the connection to make sure DB is reachable
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := InitSchema(ctx, db, cfg.Sync.FeedChannel); err != nil {
		db.Close()
		return nil, err
	}

	return NewFromDB(db), nil
}

// NewFromDB wires every repository onto an already opened handle.
func NewFromDB(db *sql.DB) *Repositories {
	return &Repositories{
		DB:       db,
		Cart:     NewCartRepo(db),
		Wishlist: NewWishlistRepo(db),
		Product:  NewProductRepo(db),
		Order:    NewOrderRepo(db),
		Profile:  NewProfileRepo(db),
	}
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

// InitSchema creates the storefront tables and the trigger that publishes
// cart and wishlist updates on feedChannel.
func InitSchema(ctx context.Context, db *sql.DB, feedChannel string) error {
	if _, err := db.ExecContext(ctx, SchemaSQL(feedChannel)); err != nil {
		return fmt.Errorf("failed to execute schema creation: %w", err)
	}

	return nil
}

// Payloads above the NOTIFY limit are sent without the record; listeners
// then read the row themselves.
func SchemaSQL(feedChannel string) string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS profiles (
		id VARCHAR(255) PRIMARY KEY,
		full_name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(20) NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		shipping_address JSONB,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL,
		brand VARCHAR(100) NOT NULL DEFAULT '',
		category VARCHAR(100) NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		images JSONB NOT NULL DEFAULT '[]'::jsonb,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		stock INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS carts (
		user_id VARCHAR(255) PRIMARY KEY,
		items JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS wishlists (
		user_id VARCHAR(255) PRIMARY KEY,
		product_ids JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		items JSONB NOT NULL,
		total_amount NUMERIC(12,2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'orderplaced',
		shipping_address JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE OR REPLACE FUNCTION notify_row_change() RETURNS trigger AS $$
	DECLARE
		payload TEXT;
	BEGIN
		payload := json_build_object('table', TG_TABLE_NAME, 'event', TG_OP, 'user_id', NEW.user_id, 'record', row_to_json(NEW))::text;
		IF octet_length(payload) > 7900 THEN
			payload := json_build_object('table', TG_TABLE_NAME, 'event', TG_OP, 'user_id', NEW.user_id)::text;
		END IF;
		PERFORM pg_notify(%[1]s, payload);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;

	DROP TRIGGER IF EXISTS carts_notify_update ON carts;
	CREATE TRIGGER carts_notify_update AFTER UPDATE ON carts
		FOR EACH ROW EXECUTE FUNCTION notify_row_change();

	DROP TRIGGER IF EXISTS wishlists_notify_update ON wishlists;
	CREATE TRIGGER wishlists_notify_update AFTER UPDATE ON wishlists
		FOR EACH ROW EXECUTE FUNCTION notify_row_change();
	`, pq.QuoteLiteral(feedChannel))
}
