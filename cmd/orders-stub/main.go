package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anithaparamashivam/oas-e2e/common/logger"
	"github.com/anithaparamashivam/oas-e2e/config"
	"github.com/anithaparamashivam/oas-e2e/fixtures"
	aws_pkg "github.com/anithaparamashivam/oas-e2e/pkg/aws"
	"github.com/anithaparamashivam/oas-e2e/stub"
	"github.com/anithaparamashivam/oas-e2e/stub/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	awsCfg, err := aws_pkg.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	var cwWriter *aws_pkg.CloudWatchLogsClient
	if cfg.CloudWatchEnabled {
		cwWriter, err = aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, "orders-stub")
		if err != nil {
			log.Printf("CloudWatch logs unavailable: %v", err)
			cwWriter = nil
		}
	}
	if cwWriter != nil {
		logger.InitializeWithWriter(cfg.Env, cwWriter)
	} else {
		logger.Initialize(cfg.Env)
	}
	defer logger.Log.Sync() //nolint:errcheck
	zl := logger.Log

	if cfg.UseSecrets {
		if err := cfg.ApplySecrets(ctx, aws_pkg.NewSecretsClient(awsCfg)); err != nil {
			zl.Warn("Secrets Manager overlay failed, using environment", zap.Error(err))
		}
	}

	var reader fixtures.ObjectReader
	if cfg.FixturesBucket != "" {
		reader = aws_pkg.NewObjectReader(aws_pkg.NewS3Client(awsCfg))
	}
	source := fixtures.SelectSource(cfg.FixturesDir, cfg.FixturesBucket, cfg.FixturesPrefix, reader)
	catalog, err := fixtures.NewTestData(source).LoadCatalog(ctx)
	if err != nil {
		zl.Fatal("Failed to load product catalog", zap.Error(err))
	}

	var publishers services.MultiPublisher
	if cfg.StubEventsQueue != "" {
		queue := aws_pkg.NewQueueClient(awsCfg, aws_pkg.WithQueueLogger(zl))
		url, err := queue.GetQueueURL(ctx, cfg.StubEventsQueue)
		if err != nil {
			zl.Warn("Events queue unavailable, SQS events disabled", zap.String("queue", cfg.StubEventsQueue), zap.Error(err))
		} else {
			publishers = append(publishers, services.NewQueuePublisher(queue, url))
		}
	}
	if cfg.OrderEventsTopicARN != "" {
		publishers = append(publishers, services.NewTopicPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.OrderEventsTopicARN))
	}
	var publisher services.EventPublisher
	if len(publishers) > 0 {
		publisher = publishers
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := stub.NewRouter(stub.Config{
		Products:    stub.ProductsFromCatalog(catalog),
		SlowDelay:   cfg.StubSlowDelay,
		JWTSecret:   cfg.APIJWTSecret,
		RateLimit:   cfg.StubRateLimit,
		CORSOrigins: cfg.StubCORSOrigins,
		Publisher:   publisher,
		Metrics:     aws_pkg.NewMetricsClient(awsCfg),
		Logger:      zl,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.StubPort,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server failed", zap.Error(err))
		}
	}()

	zl.Info("Orders stub started",
		zap.String("port", cfg.StubPort),
		zap.Int("products", len(catalog.Products)),
		zap.Int("publishers", len(publishers)),
	)
	<-quit
	zl.Info("Shutting down orders stub...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Fatal("Server forced to shutdown", zap.Error(err))
	}
	zl.Info("Server exited cleanly")
}
