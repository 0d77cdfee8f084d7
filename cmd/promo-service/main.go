package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/api"
	"github.com/Cheertaboi/restaurant-promo-engine/internal/api/middleware"
	"github.com/Cheertaboi/restaurant-promo-engine/internal/cache"
	"github.com/Cheertaboi/restaurant-promo-engine/internal/config"
	"github.com/Cheertaboi/restaurant-promo-engine/internal/repository"
	"github.com/Cheertaboi/restaurant-promo-engine/internal/service"
	"github.com/Cheertaboi/restaurant-promo-engine/pkg/db"
)

type stores struct {
	promotions service.PromotionRepo
	items      service.MenuItemRepo
	usages     service.UsageRepo
	rules      service.PriceRuleRepo
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	st, closeStores, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("open stores", "error", err)
		os.Exit(1)
	}
	defer closeStores()

	engineCfg := service.Config{
		DefaultMaxSelectable: cfg.DefaultMaxSelectable,
		MaxGiftUnits:         cfg.MaxGiftUnits,
		Location:             cfg.Location,
	}
	var opts []service.Option
	if cfg.Redis.Addr != "" {
		redisClient, err := db.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Error("redis connect", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		opts = append(opts, service.WithDisplayCatalog(
			cache.NewCatalogCache(redisClient, st.promotions, cfg.CatalogCacheTTL, logger),
		))
		logger.Info("catalog cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.CatalogCacheTTL)
	}

	promotions := service.NewPromotionService(logger, engineCfg, st.promotions, st.items, st.usages, opts...)
	pricing := service.NewPricingService(st.rules)

	r := chi.NewRouter()
	r.Use(middleware.Logger(logger))
	r.Mount("/", api.NewRouter(logger, promotions, pricing))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("http server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	logger.Info("starting promo-service", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("listen", "error", err)
		os.Exit(1)
	}

	<-idleConnsClosed
	logger.Info("server stopped")
}

// openStores serves the YAML catalog when CATALOG_FILE is set and Postgres
// otherwise.
func openStores(cfg *config.Config, logger *slog.Logger) (stores, func(), error) {
	if cfg.CatalogFile != "" {
		catalog, err := repository.LoadFileCatalog(cfg.CatalogFile)
		if err != nil {
			return stores{}, nil, fmt.Errorf("load catalog file: %w", err)
		}
		logger.Info("serving file catalog", "path", cfg.CatalogFile)
		return stores{promotions: catalog, items: catalog, usages: catalog, rules: catalog}, func() {}, nil
	}

	conn, err := db.NewPostgresConnection(cfg.Postgres)
	if err != nil {
		return stores{}, nil, err
	}
	closeDB := func() {
		if err := conn.Close(); err != nil {
			logger.Error("close database", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.RunMigrations(ctx, conn, cfg.MigrationsDir, logger); err != nil {
		closeDB()
		return stores{}, nil, fmt.Errorf("run migrations: %w", err)
	}

	return postgresStores(conn, logger), closeDB, nil
}

func postgresStores(conn *sql.DB, logger *slog.Logger) stores {
	return stores{
		promotions: repository.NewPromotionRepo(conn, logger),
		items:      repository.NewItemRepo(conn),
		usages:     repository.NewUsageRepo(conn),
		rules:      repository.NewPriceRuleRepo(conn),
	}
}
