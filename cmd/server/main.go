package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	httpapi "acetrack-backend/internal/api/http"
	"acetrack-backend/internal/config"
	"acetrack-backend/internal/logger"
	"acetrack-backend/internal/repository/postgres"
	"acetrack-backend/internal/security"
	"acetrack-backend/internal/service"
	"acetrack-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AceTrack Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)

	// Initialize Email Service
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	// Initialize Push Service; disabled without firebase credentials
	var pushSvc service.PushService
	if cfg.Firebase.CredentialsFile != "" {
		pushSvc, err = service.NewPushService(context.Background(), cfg.Firebase.CredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize push service", "error", err)
			log.Fatalf("Failed to initialize push service: %v", err)
		}
		logger.Info("Push notifications enabled")
	} else {
		pushSvc = service.NewNoopPushService()
		logger.Info("Push notifications disabled (no firebase credentials configured)")
	}

	// Initialize Banner Storage
	bannerStore, err := storage.NewLocalBannerStore(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize banner storage", "error", err)
		log.Fatalf("Failed to initialize banner storage: %v", err)
	}

	// Initialize Services
	checkInTokenTTL := time.Duration(cfg.Attendance.CheckInTokenExpiry) * time.Minute
	authSvc := service.NewAuthService(store.UserRepository, store.OrganizationRepository, tokenManager)
	eventSvc := service.NewEventService(store.EventRepository, store.AttendanceRepository, store.UserRepository, tokenManager, pushSvc, emailSvc, checkInTokenTTL)
	orgSvc := service.NewOrganizationService(store.OrganizationRepository, store.UserRepository, store.MemberRepository, store)
	memberSvc := service.NewMemberService(store.MemberRepository, store.OrganizationRepository, store.UserRepository, emailSvc)
	subSvc := service.NewSubscriptionService(store.SubscriptionRepository, store.OrganizationRepository, store.UserRepository, emailSvc)
	attendanceSvc := service.NewAttendanceService(store.AttendanceRepository, store.EventRepository, tokenManager, pushSvc)
	userSvc := service.NewUserService(store.UserRepository)

	// Set up HTTP server
	router := httpapi.NewRouter(tokenManager, httpapi.Services{
		Auth:         authSvc,
		Events:       eventSvc,
		Orgs:         orgSvc,
		Members:      memberSvc,
		Subscription: subSvc,
		Attendance:   attendanceSvc,
		Users:        userSvc,
		Banners:      bannerStore,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
