package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/velorahq/velora-backend/internal/config"
	"github.com/velorahq/velora-backend/internal/media"
	"github.com/velorahq/velora-backend/internal/modules/auth"
	"github.com/velorahq/velora-backend/internal/modules/cart"
	"github.com/velorahq/velora-backend/internal/modules/catalog"
	"github.com/velorahq/velora-backend/internal/modules/inventory"
	"github.com/velorahq/velora-backend/internal/modules/order"
	"github.com/velorahq/velora-backend/internal/modules/product"
	"github.com/velorahq/velora-backend/internal/modules/user"
	"github.com/velorahq/velora-backend/internal/modules/wishlist"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("opening database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("pinging database", zap.Error(err))
	}
	logger.Info("connected to database")

	// ── Media pipeline ──────────────────────────────────────
	localStore, err := media.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		logger.Fatal("creating upload directory", zap.Error(err))
	}

	var remoteStore media.RemoteStore
	if cfg.CloudinaryURL != "" {
		remoteStore, err = media.NewCloudinaryStore(cfg.CloudinaryURL)
		if err != nil {
			logger.Fatal("configuring remote image store", zap.Error(err))
		}
	} else {
		logger.Warn("CLOUDINARY_URL not set, images stay local-only")
	}

	mediaRepo := media.NewPostgresRepository(db)
	uploader := media.NewUploader(remoteStore, mediaRepo, localStore, logger,
		cfg.UploadQueueSize, time.Duration(cfg.UploadTimeout)*time.Second)
	resolver := media.NewResolver(cfg.RemoteHost, cfg.PlaceholderURL, localStore)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// Serve the locally stored uploads so LocalPath URLs resolve.
	router.Handle(cfg.UploadURLPrefix+"/*",
		http.StripPrefix(cfg.UploadURLPrefix+"/", http.FileServer(http.Dir(localStore.Dir()))))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","upload_queue":%d}`, uploader.Stats())
	})

	// ── Phase 1: Identity ───────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo, cfg.JWTSecret)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Phase 2: Catalog & Products ─────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo, catalogService, uploader, resolver,
		localStore, remoteStore, cfg.UploadFolder, logger)
	product.NewHandler(productService, cfg.JWTSecret).RegisterRoutes(router)

	// ── Phase 3: Inventory ──────────────────────────────────
	inventoryRepo := inventory.NewPostgresRepository(db)
	ledger := inventory.NewLedger(inventoryRepo, logger)
	inventory.NewHandler(ledger).RegisterRoutes(router)

	// ── Phase 4: Cart & Wishlist ────────────────────────────
	cartRepo := cart.NewPostgresRepository(db)
	cartService := cart.NewService(cartRepo, ledger, logger)
	cart.NewHandler(cartService, cfg.JWTSecret).RegisterRoutes(router)

	wishlistRepo := wishlist.NewPostgresRepository(db)
	wishlistService := wishlist.NewService(wishlistRepo, cartService)
	wishlist.NewHandler(wishlistService, cfg.JWTSecret).RegisterRoutes(router)

	// ── Phase 5: Orders ─────────────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, ledger, logger)
	order.NewHandler(orderService, cfg.JWTSecret).RegisterRoutes(router)

	// ── Start server ────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}

	// Finish replicating whatever is already queued before exiting.
	uploader.Shutdown(true)
	logger.Info("stopped")
}
