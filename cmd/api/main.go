package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/tourism-service/internal/api/http"
	"github.com/spec-kit/tourism-service/internal/api/http/handlers"
	"github.com/spec-kit/tourism-service/internal/auth"
	"github.com/spec-kit/tourism-service/internal/config"
	"github.com/spec-kit/tourism-service/internal/events"
	"github.com/spec-kit/tourism-service/internal/notification"
	"github.com/spec-kit/tourism-service/internal/observability"
	"github.com/spec-kit/tourism-service/internal/persistence"
	"github.com/spec-kit/tourism-service/internal/repository"
	"github.com/spec-kit/tourism-service/internal/service"
	"github.com/spec-kit/tourism-service/internal/worker"
	"github.com/spec-kit/tourism-service/pkg/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := util.SetBusinessTimezone(cfg.App.BusinessTimezone); err != nil {
		logger.Fatal("invalid business timezone", zap.String("timezone", cfg.App.BusinessTimezone), zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := persistence.OpenDatabase(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to open document database", zap.Error(err))
	}
	defer db.Close()

	cache := persistence.OpenCache(ctx, cfg.Redis, logger)
	defer cache.Close()

	store := db.Documents()
	ticketRepo := repository.NewTicketRepository(store)
	companyRepo := repository.NewCompanyRepository(store)
	employeeRepo := repository.NewEmployeeRepository(store)
	accountRepo := repository.NewAccountRepository(store)
	catalogRepo := repository.NewCatalogRepository(store)

	resolver := repository.NewCatalogResolver(catalogRepo, cache.ActivityCache(), cfg.Lookup.BatchSize, logger.Named("catalog"))

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger.Named("events"))
	metrics.Observe(dispatcher)

	notifier := notification.New(cfg.Notification, logger.Named("notifier"))
	notificationService := service.NewNotificationService(dispatcher, notifier, logger, cfg.Notification)
	stopNotifications := worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		AccountRepo: accountRepo,
		CompanyRepo: companyRepo,
		Logger:      logger,
	})
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("failed to bootstrap admin account", zap.Error(err))
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		CompanyRepo:  companyRepo,
		EmployeeRepo: employeeRepo,
		Catalog:      resolver,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	certificateService := service.NewCertificateService(service.CertificateDependencies{
		CertificateRepo: repository.NewCertificateRepository(store),
		CounterRepo:     repository.NewCounterRepository(store),
		Dispatcher:      dispatcher,
		PublicBaseURL:   cfg.Notification.PublicBaseURL,
		Logger:          logger,
	})
	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		CompanyRepo:  companyRepo,
		EmployeeRepo: employeeRepo,
		Certificates: certificateService,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	organizationService := service.NewOrganizationService(companyRepo, employeeRepo, logger, nil)
	catalogService := service.NewCatalogService(catalogRepo, resolver, logger)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, cache, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Organization:   handlers.NewOrganizationHandler(authService, organizationService, workflowService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Certificates:   handlers.NewCertificatesHandler(certificateService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	stopNotifications()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
