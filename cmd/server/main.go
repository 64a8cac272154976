package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/expenseflow/ems-core/internal/attachment"
	"github.com/expenseflow/ems-core/internal/config"
	"github.com/expenseflow/ems-core/internal/export"
	httpadapter "github.com/expenseflow/ems-core/internal/interfaces/http"
	"github.com/expenseflow/ems-core/internal/lifecycle"
	"github.com/expenseflow/ems-core/internal/refdata"
	"github.com/expenseflow/ems-core/internal/repository"
	"github.com/expenseflow/ems-core/internal/storage"
	"github.com/expenseflow/ems-core/pkg/database"
	"github.com/expenseflow/ems-core/pkg/utils"
)

func main() {
	gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense management service",
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	for _, dir := range []string{cfg.Storage.AttachmentDir, cfg.Export.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	requestRepo := repository.NewRequestRepository(db.DB, logger)
	lineRepo := repository.NewExpenseLineRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	attachmentRepo := repository.NewAttachmentRepository(db.DB, logger)
	referenceRepo := repository.NewReferenceRepository(db.DB, logger)

	fileStore := storage.NewLocalFileStorage(cfg.Storage.AttachmentDir, logger)
	attachments := attachment.NewManager(fileStore, attachmentRepo, logger)

	reference := refdata.NewCache(referenceRepo, logger)
	if err := reference.Load(context.Background()); err != nil {
		logger.Fatal("Failed to load reference data", zap.Error(err))
	}

	controller := lifecycle.NewController(
		requestRepo,
		lineRepo,
		historyRepo,
		attachments,
		reference,
		logger,
	)

	exporter := export.NewExporter(cfg.Export.OutputDir, cfg.Export.CompanyName, logger)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		MaxUploadSize: cfg.Storage.MaxFileSizeMB << 20,
	}, controller, reference, attachments, exporter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
