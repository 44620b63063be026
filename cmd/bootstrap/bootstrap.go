package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gov-token-booking/config"
	deliveryHttp "gov-token-booking/internal/delivery/http"
	"gov-token-booking/internal/delivery/http/handler"
	"gov-token-booking/internal/delivery/http/middleware"
	"gov-token-booking/internal/domain/entity"
	"gov-token-booking/internal/infrastructure/cache"
	"gov-token-booking/internal/infrastructure/database"
	"gov-token-booking/internal/repository"
	"gov-token-booking/internal/service"
	"gov-token-booking/internal/usecase"
	"gov-token-booking/pkg/jwt"
	"gov-token-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config       *config.Config
	DB           *gorm.DB
	RedisClient  *redis.Client
	Server       *http.Server
	FeedBridge   *service.FeedBridge
	Availability *service.AvailabilityService
	Events       *service.EventPublisher

	bridgeCancel context.CancelFunc
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logrus.Info("Database migrated successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	if err := app.initializeServer(); err != nil {
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer wires every layer and prepares the HTTP server.
func (app *App) initializeServer() error {
	cfg := app.Config
	db := app.DB
	redisClient := app.RedisClient
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	slotRepo := repository.NewSlotRepository()
	tokenRepo := repository.NewTokenRepository()
	counterRepo := repository.NewTokenCounterRepository()
	departmentRepo := repository.NewDepartmentRepository()
	holidayRepo := repository.NewHolidayRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(db, log, auditLogRepo)
	liveFeed := service.NewLiveFeed(log)

	// Recover the called-token sets so displays survive a restart
	today := time.Now().UTC().Truncate(24 * time.Hour)
	calledTokens, err := tokenRepo.FindByStatusAndDate(db, entity.TokenStatusCalled, today)
	if err != nil {
		logrus.Warnf("Failed to warm live feed from database: %+v", err)
	} else {
		liveFeed.Warm(calledTokens)
		logrus.Infof("Live feed warmed with %d called tokens", len(calledTokens))
	}

	feedBridge := service.NewFeedBridge(redisClient, liveFeed, log)
	bridgeCtx, bridgeCancel := context.WithCancel(context.Background())
	feedBridge.Start(bridgeCtx)
	app.FeedBridge = feedBridge
	app.bridgeCancel = bridgeCancel

	availability := service.NewAvailabilityService(db, redisClient, slotRepo, log)
	app.Availability = availability
	syncCtx, syncCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := availability.SyncOnStartup(syncCtx); err != nil {
		logrus.Warnf("Slot availability sync failed, mirror will self-heal on traffic: %+v", err)
	}
	syncCancel()

	// AMQP is optional: no URL means events are dropped
	var events *service.EventPublisher
	if cfg.AMQP.URL != "" {
		events, err = service.NewEventPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP: %w", err)
		}
		logrus.Infof("Event publisher connected, exchange=%s", cfg.AMQP.Exchange)
	} else {
		logrus.Info("AMQP_URL not set, token events disabled")
	}
	app.Events = events

	notifier := service.NewTokenNotifier(liveFeed, feedBridge, events, log)

	// Initialize usecases
	bookingUsecase := usecase.NewTokenBookingUsecase(db, log, cfg.Booking, slotRepo, tokenRepo, counterRepo, departmentRepo, auditService, notifier, availability)
	statusUsecase := usecase.NewTokenStatusUsecase(db, log, tokenRepo, auditService, notifier)
	slotUsecase := usecase.NewSlotUsecase(db, log, slotRepo, tokenRepo, departmentRepo, auditService, availability)
	departmentUsecase := usecase.NewDepartmentUsecase(db, log, departmentRepo, slotRepo, auditService)
	holidayUsecase := usecase.NewHolidayUsecase(db, log, holidayRepo, auditService)
	reportUsecase := usecase.NewReportUsecase(db, log, tokenRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	tokenHandler := handler.NewTokenHandler(bookingUsecase, statusUsecase, holidayUsecase, customValidator)
	slotHandler := handler.NewSlotHandler(slotUsecase, customValidator)
	departmentHandler := handler.NewDepartmentHandler(departmentUsecase, customValidator)
	holidayHandler := handler.NewHolidayHandler(holidayUsecase, customValidator)
	reportHandler := handler.NewReportHandler(reportUsecase)
	liveHandler := handler.NewLiveHandler(liveFeed, log)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(tokenHandler, slotHandler, departmentHandler, holidayHandler, reportHandler, liveHandler, auditLogHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close stops background workers and closes all connections
func (app *App) Close() {
	if app.FeedBridge != nil {
		app.bridgeCancel()
		app.FeedBridge.Stop()
	}

	if app.Availability != nil {
		app.Availability.Stop()
	}

	app.Events.Close()

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
