package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"expense-ledger/internal/auth"
	"expense-ledger/internal/config"
	apphttp "expense-ledger/internal/http"
	"expense-ledger/internal/repository/sqlite"
	"expense-ledger/internal/service"
	"expense-ledger/internal/session"
	"expense-ledger/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.SessionSecret) == "" {
		logger.Fatalf("session secret is required")
	}
	if strings.TrimSpace(cfg.Database.Path) == "" {
		logger.Fatalf("database path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(cfg.Database.Path); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	userRepo := sqlite.NewUserRepository(db)
	expenseRepo := sqlite.NewExpenseRepository(db)

	authService := service.NewAuthService(userRepo, auth.NewBcryptHasher())
	expenseService := service.NewExpenseService(expenseRepo)
	reportService := service.NewReportService(expenseRepo)
	exportService := service.NewExportService()

	sessionTTL := time.Duration(cfg.Auth.SessionTTLMinutes) * time.Minute
	sessions := session.NewManager(cfg.Auth.SessionSecret, sessionTTL)
	store := session.NewStore(sessionTTL)

	archiver, err := buildArchiver(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup archiver: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		authService,
		expenseService,
		reportService,
		exportService,
		sessions,
		store,
		archiver,
		storage.ArchiveOptions{
			Bucket:    cfg.Archive.Bucket,
			KeyPrefix: cfg.Archive.KeyPrefix,
		},
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildArchiver sets up the optional S3 export archive. Without a bucket the
// feature stays off.
func buildArchiver(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Archiver, error) {
	if cfg.Archive.Bucket == "" {
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Archive.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving csv exports to s3 bucket %s (region %s)", cfg.Archive.Bucket, cfg.Archive.Region)
	return storage.NewS3Archiver(client), nil
}
