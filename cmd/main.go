// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arcana_lab/internal/catalog"
	"arcana_lab/internal/config"
	"arcana_lab/internal/handlers"
	"arcana_lab/internal/logging"
	"arcana_lab/internal/repository"
	"arcana_lab/internal/service"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.Log.Level)
	slog.SetDefault(logger)
	log.Println("Log Config Loaded...")

	slog.Info("Application starting...", slog.String("app", config.AppName), slog.String("version", config.AppVersion))

	// 1. DB 接続
	db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			slog.Error("Error migrating database", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("Database migrated")
	}

	deck, err := catalog.Default()
	if err != nil {
		slog.Error("Error loading embedded deck", slog.Any("error", err))
		os.Exit(1)
	}
	loc, err := cfg.App.Location()
	if err != nil {
		slog.Error("Error loading timezone", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Dependency Injection
	cardRepo := repository.NewGormCardRepository()
	drawRepo := repository.NewGormDrawRepository()

	generator := service.NewReadingGenerator(cfg.OpenAI, logger)

	cardService := service.NewCardService(db, cardRepo, deck, logger)
	drawService := service.NewDrawService(db, cardRepo, drawRepo, generator, service.DrawSettings{
		PromptVersion: cfg.App.PromptVersion,
		Location:      loc,
	}, logger)
	historyService := service.NewHistoryService(db, drawRepo, logger)

	// 3. Router
	router := handlers.NewRouter(handlers.RouterDeps{
		Logger:                 logger,
		DB:                     db,
		CORS:                   cfg.CORS,
		BasePath:               cfg.App.PublicBasePath,
		DrawRateLimitPerMinute: cfg.App.DrawRateLimitPerMinute,
		RequestTimeout:         cfg.OpenAI.Timeout + 30*time.Second,
		CardService:            cardService,
		DrawService:            drawService,
		HistoryService:         historyService,
	})

	// 4. Start Server
	server := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// 抽選作成はリーディング生成を待つ
		WriteTimeout: cfg.OpenAI.Timeout + 40*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
