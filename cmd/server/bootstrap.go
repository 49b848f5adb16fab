package main

import (
	"time"

	"github.com/codemule/adminbase/backend/internal/config"
	"github.com/codemule/adminbase/backend/internal/handlers"
	"github.com/codemule/adminbase/backend/internal/models"
	"github.com/codemule/adminbase/backend/internal/services"
	"github.com/codemule/adminbase/backend/internal/utils"
	"github.com/codemule/adminbase/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	authService    *services.AuthService
	userService    *services.UserService
	cleanupService *services.TokenCleanupService
	challengeStore *services.ChallengeStore
	taskQueue      services.TaskQueue
	worker         *services.Worker

	authHandler    *handlers.AuthHandler
	mfaHandler     *handlers.MFAHandler
	sessionHandler *handlers.SessionHandler
	userHandler    *handlers.UserHandler
	roleHandler    *handlers.RoleHandler
	configHandler  *handlers.SystemConfigHandler
	logHandler     *handlers.SystemLogHandler
	healthHandler  *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)
	utils.SetBcryptCost(cfg.Auth.BcryptCost)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default roles and settings
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	db := models.GetDB()

	// Initialize system logger
	services.InitSystemLogger(db)

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(db)

	// Core token and auth services
	tokens := services.NewTokenStore(db)

	challengeStore := services.NewChallengeStore(time.Duration(cfg.Auth.MFAChallengeExpireMin) * time.Minute)
	mfaService := services.NewMFAService(db, challengeStore, services.MFAConfig{
		MaxAttempts: cfg.Auth.MFAMaxAttempts,
		Lockout:     time.Duration(cfg.Auth.MFALockoutMin) * time.Minute,
		Issuer:      "AdminBase",
	})

	ldapService := services.NewLDAPService(&cfg.LDAP)
	authService := services.NewAuthService(db, tokens, mfaService, ldapService, cfg)
	userService := services.NewUserService(db, tokens)
	sessionService := services.NewSessionService(db)
	roleService := services.NewRoleService(db)
	configService := services.NewSystemConfigService(db)
	logService := services.NewSystemLogService(db)
	emailService := services.NewEmailService(db)
	resetService := services.NewPasswordResetService(db, tokens, emailService)

	// Periodic sweep of expired tokens
	cleanupService := services.NewTokenCleanupService(db, time.Duration(cfg.Auth.TokenCleanupIntervalMin)*time.Minute)
	cleanupService.StartScheduler()

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.ProcessEmailTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled && taskQueue.IsAsync() {
		worker = services.NewWorker(cfg, emailService)
		go func() {
			if err := worker.Start(); err != nil {
				logger.Errorf("Task worker stopped: %v", err)
			}
		}()
	}

	// Create default admin user
	if err := userService.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		authService:    authService,
		userService:    userService,
		cleanupService: cleanupService,
		challengeStore: challengeStore,
		taskQueue:      taskQueue,
		worker:         worker,

		authHandler:    handlers.NewAuthHandler(authService, userService, resetService),
		mfaHandler:     handlers.NewMFAHandler(mfaService, authService),
		sessionHandler: handlers.NewSessionHandler(sessionService),
		userHandler:    handlers.NewUserHandler(userService),
		roleHandler:    handlers.NewRoleHandler(roleService),
		configHandler:  handlers.NewSystemConfigHandler(configService),
		logHandler:     handlers.NewSystemLogHandler(logService),
		healthHandler:  handlers.NewHealthHandler(cleanupService),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.cleanupService.StopScheduler()
	s.challengeStore.Stop()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Shutdown()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
