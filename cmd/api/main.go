package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/config"
	"github.com/noah-isme/formkit-api/internal/database"
	"github.com/noah-isme/formkit-api/internal/handler"
	"github.com/noah-isme/formkit-api/internal/middleware"
	"github.com/noah-isme/formkit-api/internal/models"
	"github.com/noah-isme/formkit-api/internal/repository"
	"github.com/noah-isme/formkit-api/internal/router"
	"github.com/noah-isme/formkit-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Form{}, &models.Question{}, &models.FormResponse{}, &models.QuestionResponse{}, &models.QuizAttempt{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional; without them the dashboard is uncached and events are skipped.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, dashboard cache disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, attempt events disabled")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	formRepo := repository.NewFormRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	dashboardService := service.NewDashboardService(dashboardRepo, redisClient, cfg.DashboardCacheTTL, logger)
	publisher := service.NewNATSAttemptPublisher(natsConn, cfg.EventsSubject, logger)
	formService := service.NewFormService(formRepo, dashboardService, validate, logger)
	submissionService := service.NewSubmissionService(formRepo, responseRepo, attemptRepo, publisher, dashboardService, validate, logger)
	responseService := service.NewResponseService(formRepo, responseRepo, attemptRepo, logger)

	formHandler := handler.NewFormHandler(formService, logger)
	responseHandler := handler.NewResponseHandler(responseService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	publicFormHandler := handler.NewPublicFormHandler(submissionService, logger,
		middleware.RateLimit("submit", cfg.SubmitRateLimit, cfg.SubmitRateWindow))

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		FormHandler:           formHandler,
		ResponseHandler:       responseHandler,
		DashboardHandler:      dashboardHandler,
		PublicFormHandler:     publicFormHandler,
		HealthProbes:          healthProbes(db, redisClient, natsConn),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
		OptionalJWTMiddleware: middleware.OptionalJWT(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Msg("server started")
	waitForShutdown(app)
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(c *fiber.Ctx) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(c.UserContext())
		},
	}
	if redisClient != nil {
		probes["redis"] = func(c *fiber.Ctx) error {
			return redisClient.Ping(c.UserContext()).Err()
		}
	}
	if natsConn != nil {
		probes["nats"] = func(*fiber.Ctx) error {
			if !natsConn.IsConnected() {
				return fmt.Errorf("nats status %s", natsConn.Status())
			}
			return nil
		}
	}
	return probes
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
