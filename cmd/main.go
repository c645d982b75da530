package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"leukemia-bot/config"
	telegram "leukemia-bot/internal/api"
	app "leukemia-bot/internal/application"
	"leukemia-bot/internal/container"
	"leukemia-bot/internal/domain/port"
	"leukemia-bot/internal/httpserver"
	"leukemia-bot/internal/infrastructure/backend"
	"leukemia-bot/internal/infrastructure/predictor"
	"leukemia-bot/internal/infrastructure/storage"
	"leukemia-bot/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := config.InitLogger(cfg.LogLevel, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище пользователей: Postgres если задан DATABASE_URL, иначе память
	var (
		userRepo port.UserRepository = storage.NewMemoryUserRepository()
		db       *sql.DB
	)
	if cfg.DatabaseURL != "" {
		db, err = openDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pg := storage.NewPostgresUserRepository(db)
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		userRepo = pg
	}

	previews := storage.NewMemoryPreviewStore()
	backendClient := backend.New(cfg.BackendAPIURL, cfg.RequestTimeout)

	// Собираем сервисы приложения
	appContainer := container.New(userRepo, cfg.Variant(), app.AnalysisDeps{
		Classifier:    predictor.New(cfg.PredictionAPIURL, cfg.PredictionPath, cfg.RequestTimeout),
		Renderer:      vision.NewThumbnailer(cfg.PreviewMaxSide),
		Previews:      previews,
		Directory:     backendClient,
		Reports:       backendClient,
		MaxImageBytes: cfg.MaxImageBytes,
		Timeout:       cfg.RequestTimeout,
		Logger:        logger,
	})
	defer appContainer.AnalysisService.Close(context.Background())

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, cfg.MaxImageBytes, logger)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	var pinger httpserver.Pinger
	if db != nil {
		pinger = db
	}
	health := httpserver.New(cfg.HTTPAddr, pinger, previews, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return health.Run(gctx) })
	g.Go(func() error { return bot.Run(gctx) })

	logger.Info("bot is running", "prediction_api", cfg.PredictionAPIURL, "backend_api", cfg.BackendAPIURL, "model", cfg.Variant())
	if err := g.Wait(); err != nil {
		logger.Error("bot stopped with error", "error", err)
		return
	}
	logger.Info("bot stopped")
}

func openDatabase(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("connected to database")
	return db, nil
}
