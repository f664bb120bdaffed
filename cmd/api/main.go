package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wordvault/internal/config"
	handlers "wordvault/internal/http/handler"
	"wordvault/internal/http/middleware"
	"wordvault/internal/otel"
	"wordvault/internal/registry"
	"wordvault/internal/service"
	"wordvault/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	// S3-compatible object storage is the single source of truth: document
	// blobs, template blobs, and registry entries all live in the bucket.
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	docReg := registry.NewDocumentRegistry(objStore, cfg.Documents)
	tplReg := registry.NewTemplateRegistry(objStore, cfg.Templates)

	docSvc := service.NewDocumentService(objStore, docReg, cfg.Documents.DefaultTTL, cfg.Documents.URLTTL)
	tplSvc := service.NewTemplateService(objStore, tplReg, docReg, cfg.Documents.DefaultTTL, cfg.Templates.DefaultCategory)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, objStore, docSvc, tplSvc)

	// Background expiry sweeper; the same sweep is also reachable on demand
	// through POST /documents/cleanup.
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	if cfg.Documents.CleanupInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Documents.CleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-sweepCtx.Done():
					return
				case <-ticker.C:
					if removed, err := docSvc.CleanupExpired(sweepCtx); err != nil {
						log.Printf("expiry sweep failed: %v", err)
					} else if removed > 0 {
						log.Printf("expiry sweep removed %d documents", removed)
					}
				}
			}
		}()
	}

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		stopSweeper()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}
