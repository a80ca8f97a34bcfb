package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/xlsexport/internal/admin"
	"github.com/locvowork/xlsexport/internal/config"
	"github.com/locvowork/xlsexport/internal/database"
	"github.com/locvowork/xlsexport/internal/domain"
	"github.com/locvowork/xlsexport/internal/handler"
	"github.com/locvowork/xlsexport/internal/logger"
	"github.com/locvowork/xlsexport/internal/repository"
	"github.com/locvowork/xlsexport/internal/service"
	"github.com/locvowork/xlsexport/pkg/i18n"
	"github.com/locvowork/xlsexport/pkg/retry"
	"github.com/locvowork/xlsexport/pkg/xlsexport"
)

type App struct {
	Echo  *echo.Echo
	DB    *sql.DB
	GCP   *repository.DatastoreClient
	Admin *admin.Namespace
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	// Initialize logging
	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH)
	logger.SetLevel(config.DefaultEnvConfig.LOG_LEVEL)
	ctx = logger.WithContext(ctx)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	postRepo, err := a.postRepository(ctx)
	if err != nil {
		return err
	}

	// Translations for export headers
	table := i18n.NewTable(config.DefaultEnvConfig.XLS_LOCALE)
	if dir := config.DefaultEnvConfig.XLS_LOCALE_DIR; dir != "" {
		if err := table.LoadDir(dir); err != nil {
			return fmt.Errorf("failed to load locales: %w", err)
		}
		logger.InfoLog(ctx, "Loaded locales %v from %s", table.Locales(), dir)
	}

	a.Admin = admin.NewNamespace(xlsexport.WithTranslator(table))
	if _, err := admin.RegisterPosts(a.Admin, postRepo); err != nil {
		return fmt.Errorf("failed to register posts: %w", err)
	}
	if path := config.DefaultEnvConfig.XLS_EXPORTS_FILE; path != "" {
		if err := a.Admin.ApplyExportConfigFile(path); err != nil {
			return fmt.Errorf("failed to apply export config: %w", err)
		}
	}

	// Initialize dependencies
	postSvc := service.NewPostService(postRepo)
	postHandler := handler.NewPostHandler(postSvc)
	exportHandler := handler.NewExportHandler(a.Admin)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	handler.Register(a.Echo, postHandler, exportHandler)

	return nil
}

// postRepository opens the backend selected by DATA_BACKEND.
func (a *App) postRepository(ctx context.Context) (domain.PostRepository, error) {
	cfg := config.DefaultEnvConfig
	logger.InfoLog(ctx, "Using %s data backend", cfg.DATA_BACKEND)

	switch cfg.DATA_BACKEND {
	case config.BackendPostgres:
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		return withRetry(repository.NewPostgresPostRepository(db)), nil

	case config.BackendElastic:
		client, err := repository.NewElasticClient(cfg.ELASTIC_URL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize elastic: %w", err)
		}
		return withRetry(repository.NewElasticPostRepository(client, cfg.ELASTIC_INDEX)), nil

	case config.BackendDatastore:
		client, err := repository.NewDatastoreClient(ctx, cfg.GCP_PROJECT_ID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCP client: %w", err)
		}
		a.GCP = client
		return withRetry(repository.NewDatastorePostRepository(client)), nil
	}

	return repository.NewMemoryPostRepository(repository.SeedPosts()...), nil
}

// withRetry covers transient failures of remote backends.
func withRetry(repo domain.PostRepository) domain.PostRepository {
	return repository.WithRetry(repo,
		retry.WithMaxRetries(2),
		retry.WithBackoff(retry.ExponentialBackoff(100*time.Millisecond)),
	)
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) Run() error {
	if a.DB != nil {
		defer a.DB.Close()
	}
	if a.GCP != nil {
		defer a.GCP.Close()
	}
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
