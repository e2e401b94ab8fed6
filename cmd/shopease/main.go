package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopease/storefront/internal/api/handlers"
	"github.com/shopease/storefront/internal/api/middleware"
	"github.com/shopease/storefront/internal/cache"
	"github.com/shopease/storefront/internal/config"
	"github.com/shopease/storefront/internal/feed"
	"github.com/shopease/storefront/internal/health"
	"github.com/shopease/storefront/internal/localstore"
	"github.com/shopease/storefront/internal/metrics"
	repository "github.com/shopease/storefront/internal/repositories"
	service "github.com/shopease/storefront/internal/services"
	"github.com/shopease/storefront/internal/session"
	"github.com/shopease/storefront/internal/syncer"
	"github.com/shopease/storefront/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const feedPingInterval = 90 * time.Second

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, &cfg.Otel, cfg.Env)
	if err != nil {
		slog.Error("❌ Error initializing tracing", slog.Any("error", err))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.Any("error", err))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.Any("error", err))
		os.Exit(1)
	}

	redisCache := cache.NewRedisCache(redisClient, &cfg.Cache)
	defer redisCache.Close()

	// Change feed
	listener, err := feed.NewListener(cfg.Database.GetDSN(), cfg.Sync.FeedChannel, cfg.Sync.MinReconnect, cfg.Sync.MaxReconnect, logger)
	if err != nil {
		slog.Error("❌ Error opening the change feed", slog.Any("error", err))
		os.Exit(1)
	}
	defer listener.Close()

	hub := feed.NewHub(listener.Notify, feed.WithPinger(listener, feedPingInterval), feed.WithLogger(logger))
	go hub.Run(ctx)

	// Sessions
	store := localstore.New(redisCache, cfg.Sync.LocalStoreTTL, logger)
	breaker := syncer.NewBreaker("remote-store", cfg.Sync.BreakerFailures, cfg.Sync.BreakerCooldown, logger)
	sessions := session.NewManager(session.Deps{
		Store:     store,
		Carts:     breaker.Carts(repos.Cart),
		Wishlists: breaker.Wishlists(repos.Wishlist),
		Feed:      hub,
		SyncOptions: []syncer.Option{
			syncer.WithDebounce(cfg.Sync.Debounce),
			syncer.WithWriteTimeout(cfg.Sync.WriteTimeout),
		},
		Logger: logger,
	}, cfg.Sync.SessionIdleTTL)
	defer func() {
		sessions.Flush()
		sessions.Close()
	}()

	go sessions.Run(ctx)

	catalogService := service.NewCatalogService(repos.Product, redisCache, cfg.Cache.DefaultTTL)
	orderService := service.NewOrderService(repos.Order, repos.Profile)
	profileService := service.NewProfileService(repos.Profile)

	cartHandler := handlers.NewCartHandler(sessions, catalogService)
	wishlistHandler := handlers.NewWishlistHandler(sessions)
	productHandler := handlers.NewProductHandler(catalogService)
	orderHandler := handlers.NewOrderHandler(orderService, sessions)
	profileHandler := handlers.NewProfileHandler(profileService)
	themeHandler := handlers.NewThemeHandler(store)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))
	limited := middleware.RateLimit(repository.NewRateLimitRepo(redisClient, cfg.RateConfig))

	healthChecker, err := health.NewHealthHandler(cfg, &health.Endpoints{Feed: listener})
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	optional := authMiddleware.Optional
	required := authMiddleware.Authenticate
	admin := func(h http.Handler) http.HandlerFunc {
		return authMiddleware.Authenticate(authMiddleware.RequireAdmin(h))
	}

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/cart", optional(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", optional(limited(cartHandler.AddItem())))
	routerMux.HandleFunc("PATCH /api/v1/cart/items/{productId}", optional(limited(cartHandler.UpdateQuantity())))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{productId}", optional(limited(cartHandler.RemoveItem())))
	routerMux.HandleFunc("DELETE /api/v1/cart", optional(limited(cartHandler.ClearCart())))
	routerMux.HandleFunc("GET /api/v1/wishlist", optional(wishlistHandler.GetWishlist()))
	routerMux.HandleFunc("POST /api/v1/wishlist/{productId}/toggle", optional(limited(wishlistHandler.Toggle())))
	routerMux.HandleFunc("GET /api/v1/wishlist/{productId}", optional(wishlistHandler.IsInWishlist()))
	routerMux.HandleFunc("DELETE /api/v1/wishlist", required(limited(wishlistHandler.Clear())))
	routerMux.HandleFunc("GET /api/v1/products", optional(productHandler.SearchProducts()))
	routerMux.HandleFunc("GET /api/v1/products/{id}", optional(productHandler.GetProduct()))
	routerMux.HandleFunc("GET /api/v1/theme", themeHandler.GetTheme())
	routerMux.HandleFunc("POST /api/v1/theme/toggle", themeHandler.ToggleTheme())
	routerMux.HandleFunc("POST /api/v1/orders", required(limited(orderHandler.PlaceOrder())))
	routerMux.HandleFunc("GET /api/v1/orders", required(orderHandler.ListMyOrders()))
	routerMux.HandleFunc("GET /api/v1/profile", required(profileHandler.GetProfile()))
	routerMux.HandleFunc("PUT /api/v1/profile", required(profileHandler.UpdateProfile()))
	routerMux.HandleFunc("GET /api/v1/admin/orders", admin(orderHandler.ListAllOrders()))
	routerMux.HandleFunc("PATCH /api/v1/admin/orders/{id}/status", admin(orderHandler.UpdateOrderStatus()))
	routerMux.HandleFunc("DELETE /api/v1/admin/orders/{id}", admin(orderHandler.DeleteOrder()))
	routerMux.HandleFunc("GET /api/v1/admin/stats", admin(orderHandler.Dashboard()))
	routerMux.HandleFunc("POST /api/v1/admin/products", admin(productHandler.CreateProduct()))
	routerMux.HandleFunc("PUT /api/v1/admin/products/{id}", admin(productHandler.UpdateProduct()))
	routerMux.HandleFunc("DELETE /api/v1/admin/products/{id}", admin(productHandler.DeleteProduct()))
	routerMux.Handle("GET /health", healthChecker.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining; metrics sits right on the mux to read r.Pattern
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.ClientID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recover(handler)
	handler = otelhttp.NewHandler(handler, "shopease")

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.Any("error", err))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		slog.Error("⚠️ Failed to flush traces", slog.Any("error", err))
	}

}
