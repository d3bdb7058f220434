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
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rajpratham1/EduScheduler-sub001/internal/config"
	"github.com/rajpratham1/EduScheduler-sub001/internal/database"
	"github.com/rajpratham1/EduScheduler-sub001/internal/handler"
	"github.com/rajpratham1/EduScheduler-sub001/internal/middleware"
	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/internal/ratelimit"
	"github.com/rajpratham1/EduScheduler-sub001/internal/repository"
	"github.com/rajpratham1/EduScheduler-sub001/internal/router"
	"github.com/rajpratham1/EduScheduler-sub001/internal/service"
	"github.com/rajpratham1/EduScheduler-sub001/pkg/ai"
	"github.com/rajpratham1/EduScheduler-sub001/pkg/filestore"
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

	if err := db.AutoMigrate(
		&models.ScheduleEntry{},
		&models.AuditRecord{},
		&models.Faculty{},
		&models.Classroom{},
		&models.Subject{},
		&models.Student{},
	); err != nil {
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
		logger.Warn().Msg("redis not configured, event replay and distributed rate limiting disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats not configured, schedule events stay node-local")
	}

	completer, err := buildCompleter(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create completion client: %v", err)
	}

	var archiver service.FileArchiver
	if cfg.CloudinaryCloudName != "" {
		store, err := filestore.New(filestore.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create file archive: %v", err)
		}
		archiver = store
	} else {
		logger.Warn().Msg("file archive not configured, uploaded documents will not be retained")
	}

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedis(redisClient, "assist", cfg.AssistRateMax, cfg.AssistRateWindow)
	} else {
		limiter = ratelimit.NewMemory(cfg.AssistRateMax, cfg.AssistRateWindow)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	scheduleRepo := repository.NewScheduleRepository(db)
	modificationRepo := repository.NewModificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	events := service.NewEventService(redisClient, service.ChannelBase(cfg.AppEnv), natsConn, logger)
	auditService := service.NewAuditService(auditRepo, logger)
	snapshots := service.NewSnapshotLoader(scheduleRepo, facultyRepo, classroomRepo, studentRepo, logger)
	assistService := service.NewAssistService(snapshots, completer, limiter, archiver, auditService, validate, service.AssistConfig{
		MaxTokens:    cfg.AIMaxTokens,
		Temperature:  float32(cfg.AITemperature),
		Timeout:      cfg.AITimeout,
		RetryBackoff: cfg.AIRetryBackoff,
		MaxFileBytes: cfg.UploadMaxBytes(),
	}, logger)
	applyService := service.NewApplyService(modificationRepo, events, logger)
	scheduleService := service.NewScheduleService(scheduleRepo, events, validate, logger)
	catalogService := service.NewCatalogService(facultyRepo, classroomRepo, subjectRepo, studentRepo, validate, logger)

	assistHandler := handler.NewAssistHandler(assistService, applyService, auditService, validate, logger)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, logger)
	eventsHandler := handler.NewEventsHandler(events, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.UploadMaxBytes()) + (1 << 20),
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.AllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		AssistHandler:   assistHandler,
		ScheduleHandler: scheduleHandler,
		CatalogHandler:  catalogHandler,
		EventsHandler:   eventsHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
		DB:              db,
	})

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events.Start(runCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancel)
}

func buildCompleter(cfg config.Config, logger zerolog.Logger) (ai.Completer, error) {
	switch cfg.AIProvider {
	case "anthropic":
		return ai.NewAnthropicCompleter(ai.AnthropicConfig{APIKey: cfg.AnthropicAPIKey, Model: cfg.AIModel})
	default:
		return ai.NewOpenAICompleter(ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.AIModel, Logger: logger})
	}
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
