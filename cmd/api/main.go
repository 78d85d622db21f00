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

	"github.com/noah-isme/academe-go-api/internal/config"
	"github.com/noah-isme/academe-go-api/internal/database"
	"github.com/noah-isme/academe-go-api/internal/handler"
	"github.com/noah-isme/academe-go-api/internal/middleware"
	"github.com/noah-isme/academe-go-api/internal/models"
	"github.com/noah-isme/academe-go-api/internal/repository"
	"github.com/noah-isme/academe-go-api/internal/router"
	"github.com/noah-isme/academe-go-api/internal/service"
	"github.com/noah-isme/academe-go-api/pkg/ai"
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
		&models.User{},
		&models.Admin{},
		&models.Course{},
		&models.Topic{},
		&models.Subtopic{},
		&models.Material{},
		&models.Quiz{},
		&models.Question{},
		&models.ProgressRecord{},
		&models.TeacherProfile{},
		&models.LiveClass{},
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
		logger.Warn().Msg("redis url not configured, analytics caching disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, progress events disabled")
	}

	var advisor ai.Advisor
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		openAIAdvisor, err := ai.NewOpenAIAdvisor(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create ai advisor: %v", err)
		}
		advisor = openAIAdvisor
	} else {
		logger.Warn().Msg("ai advisor not configured, recommendations degraded")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	liveClassRepo := repository.NewLiveClassRepository(db)

	hierarchyService := service.NewHierarchyService(contentRepo, redisClient, cfg.ContentTallyTTL, logger)
	progressService := service.NewProgressService(progressRepo, contentRepo, natsConn, validate, logger)
	analyticsService := service.NewAnalyticsService(progressRepo, userRepo, hierarchyService, redisClient, cfg.AnalyticsCacheTTL, logger)
	roleService := service.NewRoleService(teacherRepo, adminRepo, userRepo, logger)
	teacherService := service.NewTeacherService(teacherRepo, userRepo, progressRepo, liveClassRepo, roleService, analyticsService, validate, logger)
	adminTeacherService := service.NewAdminTeacherService(teacherRepo, userRepo, liveClassRepo, analyticsService, validate, logger)
	studentService := service.NewStudentService(userRepo, progressRepo, analyticsService, logger)
	recommendationService := service.NewRecommendationService(progressService, userRepo, advisor, logger)

	progressHandler := handler.NewProgressHandler(progressService, recommendationService, logger)
	teacherHandler := handler.NewTeacherHandler(teacherService, logger)
	adminTeacherHandler := handler.NewAdminTeacherHandler(adminTeacherService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		ProgressHandler:     progressHandler,
		TeacherHandler:      teacherHandler,
		AdminTeacherHandler: adminTeacherHandler,
		StudentHandler:      studentHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		RoleMiddleware:      middleware.WithResolvedRole(roleService, logger),
		RecommendationLimit: cfg.RecommendationLimit,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
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
