package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/api"
	"github.com/festivo/festivo/internal/app"
	"github.com/festivo/festivo/internal/app/maintenance"
	iauth "github.com/festivo/festivo/internal/auth"
	"github.com/festivo/festivo/internal/database"
	"github.com/festivo/festivo/internal/models"
	"github.com/festivo/festivo/internal/realtime"
	"github.com/festivo/festivo/internal/services"
	"github.com/festivo/festivo/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	SessionSvc *iauth.SessionService
	AuditSvc   *services.AuditService
	Cleaner    *maintenance.Cleaner
	Hub        *realtime.Hub
	Event      *models.Event
	Router     *gin.Engine
}

// bootstrapRuntime initialises the database, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Event, err = ensureEvent(ctx, stack.DB, cfg)
	if err != nil {
		return nil, fmt.Errorf("ensure event: %w", err)
	}
	log.Info("event ready",
		zap.String("event_id", stack.Event.ID),
		zap.String("name", stack.Event.Name))

	if err := ensureInitialStaff(ctx, stack.DB, log); err != nil {
		return nil, err
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	stack.SessionSvc, err = iauth.NewSessionService(stack.DB, jwtSvc, cfg.Auth.SessionServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise session service: %w", err)
	}

	stack.AuditSvc, err = services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(stack.SessionSvc, stack.AuditSvc)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	if cfg.Realtime.Enabled {
		stack.Hub = realtime.NewHub()
	}

	stack.Router, err = api.NewRouter(stack.DB, cfg, jwtSvc, stack.SessionSvc, stack.Hub)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}

// ensureEvent upserts the single configured event. The deployment model is
// one instance per celebration; the event row carries the deadline every RSVP
// submission is checked against.
func ensureEvent(ctx context.Context, db *gorm.DB, cfg *app.Config) (*models.Event, error) {
	name := strings.TrimSpace(cfg.Event.Name)
	if name == "" {
		return nil, errors.New("event.name must be configured")
	}

	starts, err := cfg.Event.StartsAtTime()
	if err != nil {
		return nil, err
	}
	deadline, err := cfg.Event.RSVPDeadlineTime()
	if err != nil {
		return nil, err
	}

	var event models.Event
	err = db.WithContext(ctx).Where("name = ?", name).First(&event).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		event = models.Event{Name: name}
	case err != nil:
		return nil, fmt.Errorf("lookup event: %w", err)
	}

	event.Celebrant = strings.TrimSpace(cfg.Event.Celebrant)
	event.Venue = strings.TrimSpace(cfg.Event.Venue)
	if starts.IsZero() {
		event.StartsAt = nil
	} else {
		event.StartsAt = &starts
	}
	if deadline.IsZero() {
		event.RSVPDeadline = nil
	} else {
		event.RSVPDeadline = &deadline
	}

	if err := db.WithContext(ctx).Save(&event).Error; err != nil {
		return nil, fmt.Errorf("persist event: %w", err)
	}
	return &event, nil
}

// ensureInitialStaff creates the first staff account from the environment
// when the staff table is empty. Without it the admin panel is unreachable on
// a fresh install.
func ensureInitialStaff(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.StaffUser{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count staff users: %w", err)
	}
	if count > 0 {
		return nil
	}

	email := strings.TrimSpace(os.Getenv("FESTIVO_ADMIN_EMAIL"))
	password := os.Getenv("FESTIVO_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Warn("no staff users exist and FESTIVO_ADMIN_EMAIL/FESTIVO_ADMIN_PASSWORD are unset; admin panel is unreachable until one is created")
		return nil
	}

	hash, err := iauth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	staff := &models.StaffUser{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Administrator",
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(staff).Error; err != nil {
		return fmt.Errorf("create initial staff user: %w", err)
	}

	log.Info("created initial staff user", zap.String("email", email))
	return nil
}
