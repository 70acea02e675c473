package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/saps-platform/case-management/internal"
	"github.com/saps-platform/case-management/internal/activity"
	activityPostgres "github.com/saps-platform/case-management/internal/activity/postgres"
	"github.com/saps-platform/case-management/internal/auth"
	authPostgres "github.com/saps-platform/case-management/internal/auth/postgres"
	"github.com/saps-platform/case-management/internal/casefile"
	casefilePostgres "github.com/saps-platform/case-management/internal/casefile/postgres"
	"github.com/saps-platform/case-management/internal/core/events"
	"github.com/saps-platform/case-management/internal/rbac"
	"github.com/saps-platform/case-management/internal/reportgen"
	"github.com/saps-platform/case-management/internal/reports"
	reportsPostgres "github.com/saps-platform/case-management/internal/reports/postgres"
	"github.com/saps-platform/case-management/internal/storage"
	"github.com/saps-platform/case-management/internal/transport/rest"
	"github.com/saps-platform/case-management/internal/transport/swagger"
	"github.com/saps-platform/case-management/internal/user"
	userPostgres "github.com/saps-platform/case-management/internal/user/postgres"
	"github.com/saps-platform/case-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config          *internal.Config
	DB              *sqlx.DB
	GormDB          *gorm.DB
	Router          *chi.Mux
	Logger          *slog.Logger
	EventBus        *events.EventBus
	ReportGenClient *reportgen.Client

	AuthHandler     *auth.Handler
	UserHandler     *user.Handler
	CaseHandler     *casefile.Handler
	ActivityHandler *activity.Handler
	ReportHandler   *reports.Handler
	StorageHandler  *storage.Handler
	Policy          *rbac.Policy
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		slog.Warn("OpenAPI spec validation failed", "error", err)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if deps.ReportGenClient != nil {
			deps.ReportGenClient.Shutdown()
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Policy,
		deps.AuthHandler, deps.UserHandler, deps.CaseHandler,
		deps.ActivityHandler, deps.ReportHandler, deps.StorageHandler,
		deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	policy := rbac.NewPolicy(nil)

	// Repositories
	authRepo := authPostgres.NewRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(db)
	caseRepo := casefilePostgres.NewCaseRepository(gormDB)
	activityRepo := activityPostgres.NewActivityRepository(gormDB)
	reportRepo := reportsPostgres.NewReportRepository(gormDB)

	// Services
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost, lg)
	userService := user.NewService(userRepo, lg)
	activityService := activity.NewService(activityRepo, eventBus, lg)
	caseService := casefile.NewService(caseRepo, policy, activityService, userService, lg)
	reportService := reports.NewService(reportRepo, policy, nil, eventBus, lg)

	// The generation client reports results back into the report service, so
	// the generator is bound after both exist.
	reportGenClient := reportgen.NewClient(reportgen.Config{
		APIURL:       config.ReportGen.APIURL,
		APIKey:       config.ReportGen.APIKey,
		Timeout:      config.ReportGen.Timeout,
		MaxWorkers:   config.ReportGen.MaxWorkers,
		JobQueueSize: config.ReportGen.QueueSize,
	}, reportService, lg)
	reportService.SetGenerator(reportGenClient)

	deps := &Dependencies{
		Config:          config,
		Logger:          lg,
		DB:              db,
		GormDB:          gormDB,
		Router:          chi.NewRouter(),
		EventBus:        eventBus,
		ReportGenClient: reportGenClient,
		Policy:          policy,

		AuthHandler:     auth.NewHandler(authService),
		UserHandler:     user.NewHandler(userService),
		CaseHandler:     casefile.NewHandler(caseService),
		ActivityHandler: activity.NewHandler(activityService),
		ReportHandler:   reports.NewHandler(reportService),
	}

	if config.Storage.CloudinaryURL != "" {
		uploader, err := storage.NewCloudinaryUploader(
			config.Storage.CloudinaryURL,
			config.Storage.UploadFolder,
			lg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize evidence storage: %w", err)
		}
		deps.StorageHandler = storage.NewHandler(uploader, policy)
	} else {
		lg.Warn("cloudinary_url not configured, evidence upload disabled")
	}

	return deps, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the existing pgx connection. TranslateError is required so
// unique-index violations surface as gorm.ErrDuplicatedKey, which the case
// repository relies on for case number regeneration.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{TranslateError: true})
}
