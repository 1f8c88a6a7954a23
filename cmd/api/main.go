package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trackdechets/internal/config"
	"trackdechets/internal/database"
	"trackdechets/internal/database/migration"
	"trackdechets/internal/gql"
	handlers "trackdechets/internal/http/handler"
	"trackdechets/internal/http/middleware"
	"trackdechets/internal/logging"
	"trackdechets/internal/mailer"
	"trackdechets/internal/metrics"
	"trackdechets/internal/otel"
	"trackdechets/internal/pdf"
	"trackdechets/internal/repository/postgres"
	"trackdechets/internal/service"
	"trackdechets/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Trackdéchets API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()

	log, err := logging.New(cfg.LogLevel, loc)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	// PDF printing needs object storage for its cache; without it the PDF routes answer 503.
	var (
		store    storage.Storage
		renderer *pdf.RodRenderer
	)
	if cfg.MinIO.Endpoint != "" {
		store, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return fmt.Errorf("initialize object storage: %w", err)
		}
		renderer = pdf.NewRodRenderer(cfg.PDF, log)
		defer renderer.Close()
	} else {
		log.Warn("pdf_disabled", zap.String("reason", "MINIO_ENDPOINT not set"))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	bsdRepo := postgres.NewBsdPostgres(db)
	companyRepo := postgres.NewCompanyPostgres(db)
	userRepo := postgres.NewUserPostgres(db)

	deps := service.Deps{
		Bsds:              bsdRepo,
		Companies:         companyRepo,
		Store:             store,
		Mailer:            mailer.New(cfg.Mailjet, log),
		Metrics:           domainMetrics,
		Log:               log,
		PresignExpiry:     cfg.MinIO.PresignExpiry,
		RefusalTemplateID: cfg.Mailjet.RefusalTemplateID,
	}
	if renderer != nil {
		deps.Renderer = renderer
	}
	bsds := service.NewRegistry(deps)
	companies := service.NewCompanyService(companyRepo, log)
	auth := service.NewAuthService(userRepo)

	schema, err := gql.NewSchema(bsds, companies, log)
	if err != nil {
		return fmt.Errorf("build graphql schema: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(httpMetrics.Handler())
	app.Use(middleware.Logger(log))
	app.Use(middleware.Auth(auth))

	handlers.RegisterRoutes(app, handlers.Routes{
		DB:        db,
		Bsds:      bsds,
		Companies: companies,
		Gatherer:  reg,
		GraphQL:   gql.Handler(schema),
	})

	addr := ":" + cfg.Port
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server_started", zap.String("addr", addr), zap.String("timezone", loc.String()))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server_stopping")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(app.ShutdownWithContext(sctx), shutdownTracing(sctx))
	})

	if err := g.Wait(); err != nil {
		log.Error("server_failed", zap.Error(err))
		return err
	}
	return nil
}
