package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classinsight/classinsight-api/internal/config"
	"github.com/classinsight/classinsight-api/internal/database"
	"github.com/classinsight/classinsight-api/internal/handler"
	"github.com/classinsight/classinsight-api/internal/middleware"
	"github.com/classinsight/classinsight-api/internal/models"
	"github.com/classinsight/classinsight-api/internal/repository"
	"github.com/classinsight/classinsight-api/internal/router"
	"github.com/classinsight/classinsight-api/internal/service"
	"github.com/classinsight/classinsight-api/pkg/acsmail"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Evaluation{}, &models.Report{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis não configurado; deduplicação de avaliações desabilitada")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSUrl)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	defer natsConn.Close()

	var emailSender service.EmailSender
	if cfg.EmailConnectionString != "" {
		client, err := acsmail.New(cfg.EmailConnectionString, logger)
		if err != nil {
			log.Fatalf("failed to create email client: %v", err)
		}
		emailSender = client
	} else {
		logger.Warn().Msg("email não configurado; alertas de urgência serão apenas enfileirados")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	evaluationRepo := repository.NewEvaluationRepository(db)
	reportRepo := repository.NewReportRepository(db)

	dispatcher := service.NewNotificationDispatcher(natsConn, emailSender, service.DispatcherConfig{
		Subject:     cfg.NotificationSubject,
		FromAddress: cfg.EmailFromAddress,
		Recipients:  cfg.AdminRecipients,
		MaxRetries:  cfg.EmailMaxRetries,
		RetryDelay:  cfg.EmailRetryDelay,
	}, logger)

	evaluationService := service.NewEvaluationService(evaluationRepo, redisClient, validate, dispatcher, logger)
	reportService := service.NewReportService(evaluationRepo, reportRepo, dispatcher, logger)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := service.NewNotificationConsumer(natsConn, cfg.NotificationSubject, logger)
	consumer.Start(runCtx)
	reportService.Start(runCtx, cfg.ReportInterval)

	evaluationHandler := handler.NewEvaluationHandler(evaluationService, logger)
	adminHandler := handler.NewAdminEvaluationHandler(evaluationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler:      evaluationHandler,
		AdminEvaluationHandler: adminHandler,
		JWTMiddleware:          middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancel)
}

func waitForShutdown(app *fiber.App, cancel context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	cancel()

	ctx, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
