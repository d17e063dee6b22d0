package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/iticket/helpdesk/internal/api/http"
	"github.com/iticket/helpdesk/internal/api/http/handlers"
	"github.com/iticket/helpdesk/internal/auth"
	"github.com/iticket/helpdesk/internal/config"
	"github.com/iticket/helpdesk/internal/events"
	"github.com/iticket/helpdesk/internal/observability"
	"github.com/iticket/helpdesk/internal/persistence"
	"github.com/iticket/helpdesk/internal/repository"
	"github.com/iticket/helpdesk/internal/service"
	"github.com/iticket/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	revocationStore := auth.NewRedisRevocationStore(redis.Client)

	authService := service.NewAuthService(cfg.Auth, userRepo, revocationStore)
	templateService := service.NewTemplateService(templateRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		TemplateRepo:   templateRepo,
		AssignmentRepo: assignmentRepo,
		MessageRepo:    messageRepo,
		AuditRepo:      auditRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AssignmentRepo: assignmentRepo,
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		Dispatcher:     dispatcher,
	})
	chatService := service.NewChatService(service.ChatDependencies{
		MessageRepo:    messageRepo,
		TicketRepo:     ticketRepo,
		AssignmentRepo: assignmentRepo,
		Dispatcher:     dispatcher,
	})
	auditService := service.NewAuditService(auditRepo, ticketRepo, assignmentRepo)
	uploadService, err := service.NewUploadService(cfg.Upload)
	if err != nil {
		logger.Fatal("failed to init upload storage", zap.Error(err))
	}

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, revocationStore, logger)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, authMiddleware),
		Templates:      handlers.NewTemplatesHandler(templateService),
		Tickets:        handlers.NewTicketsHandler(ticketService, auditService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService),
		Chat:           handlers.NewChatHandler(chatService),
		Uploads:        handlers.NewUploadsHandler(uploadService),
		AuthMiddleware: authMiddleware,
		UploadDir:      uploadService.Dir(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
