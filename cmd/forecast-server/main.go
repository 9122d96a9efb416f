package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/time/rate"

	httpapi "github.com/i474232898/weather-forecast-ingest/internal/api/http"
	"github.com/i474232898/weather-forecast-ingest/internal/app"
	"github.com/i474232898/weather-forecast-ingest/internal/config"
	"github.com/i474232898/weather-forecast-ingest/internal/scheduler"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Pipeline: OpenWeather forecast source and the configured warehouse.
	service, err := app.NewService(cfg)
	if err != nil {
		log.Fatalf("failed to build ingest service: %v", err)
	}

	// Scheduler that periodically runs the pipeline.
	sched := scheduler.New(cfg.ScheduleInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration. The write timeout covers a manual run sitting
	// through the whole retry schedule.
	server := fiber.New(fiber.Config{
		AppName:               "forecast-ingest",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	server.Use(logger.New())
	server.Use(recover.New())

	// Basic health endpoint
	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "forecast-ingest",
			"nextRun": sched.NextRun(),
		})
	})

	// API routes.
	limiter := rate.NewLimiter(rate.Limit(cfg.TriggerRate), cfg.TriggerBurst)
	httpapi.RegisterRoutes(server, service, limiter)

	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("forecast-ingest listening on :%s (schedule every %s)", cfg.Port, cfg.ScheduleInterval)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
