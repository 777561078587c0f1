package app

import (
	"context"
	"fmt"
	"time"

	"skill-catalog/internal/config"
	"skill-catalog/internal/database"
	"skill-catalog/internal/database/migration"
	dbpostgres "skill-catalog/internal/database/postgres"
	"skill-catalog/internal/database/sqlite"
	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/events"
	"skill-catalog/internal/infrastructure/cache"
	"skill-catalog/internal/pkg/jwt"
	"skill-catalog/internal/pkg/logger"
	"skill-catalog/internal/repository"
	"skill-catalog/internal/usecase"
	"skill-catalog/internal/worker"
	"skill-catalog/internal/ws"
	"skill-catalog/migrations"
)

type Container struct {
	Config config.Config
	Logger *logger.Logger
	DB     database.DB
	Redis  *cache.Redis
	Store  *repository.SQLStore
	JWT    *jwt.HMACService

	Hub       *ws.Hub
	Bus       *events.Bus
	Finalizer *worker.Finalizer
	Queue     worker.Queue

	Validator    *usecase.Validator
	Catalog      *usecase.Catalog
	Imports      *usecase.Import
	Finalization *usecase.Finalization
	Refresh      *usecase.CatalogRefresh
	Exports      *usecase.Export
}

func NewContainer(cfg config.Config, log *logger.Logger) (*Container, error) {
	log = logger.OrNop(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := OpenDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	c := &Container{
		Config: cfg,
		Logger: log,
		DB:     db,
		Redis:  cache.NewRedis(cfg.Redis, log),
		Store:  repository.NewSQLStore(db),
		JWT:    jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn),
		Hub:    ws.NewHub(log),
	}
	c.Bus = events.NewBus(c.Redis, cfg.Redis.Channel, c.Hub.Deliver, log)

	limits := catalog.Limits{
		MaxSkillsInBulkImport: cfg.Catalog.MaxSkillsInBulkImport,
		MaxSkillsPerSubject:   cfg.Catalog.MaxSkillsPerSubject,
	}
	c.Validator = usecase.NewValidator(c.Store, limits)
	c.Catalog = usecase.NewCatalogUsecase(c.Store, c.Validator, cfg.Catalog)
	c.Imports = usecase.NewImportUsecase(c.Store, limits, c.Bus, log)
	c.Refresh = usecase.NewCatalogRefreshUsecase(c.Store, c.Bus, log)
	c.Exports = usecase.NewExportUsecase(c.Store, c.Refresh, cfg.Catalog, log)
	c.Finalization = usecase.NewFinalizationUsecase(c.Store, nil, c.Bus, cfg.Finalization.StaleAfter, log)

	c.Queue = worker.NewQueue(c.Redis, cfg.Redis.QueueKey, 256)
	c.Finalizer = worker.NewFinalizer(c.Queue, c.Finalization, worker.Options{
		Workers:       cfg.Finalization.Workers,
		PollInterval:  cfg.Finalization.PollInterval,
		SweepInterval: cfg.Finalization.SweepInterval,
	}, log)
	c.Finalization.SetQueue(c.Finalizer)

	log.Info("container ready",
		"driver", cfg.Database.Driver,
		"redis", c.Redis.Available(),
		"max_bulk_import", limits.MaxSkillsInBulkImport,
		"max_per_subject", limits.MaxSkillsPerSubject,
	)
	return c, nil
}

// configureDispatch decides whether triggers are handed to a queue. Without
// Redis the queue is in-process, so when this process runs no workers nothing
// would drain it; triggers then leave the job to a worker's sweeper. It
// reports whether triggers are queued.
func (c *Container) configureDispatch(workers bool) bool {
	if workers || c.Redis.Available() {
		c.Finalization.SetQueue(c.Finalizer)
		return true
	}
	c.Finalization.SetQueue(nil)
	c.Logger.Warn("redis unavailable and workers disabled: finalization jobs start only when a worker sweeper reclaims them",
		"stale_after", c.Config.Finalization.StaleAfter)
	return false
}

// OpenDB connects the configured driver.
func OpenDB(ctx context.Context, cfg config.DatabaseConfig) (database.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return dbpostgres.Connect(ctx, cfg)
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func Migrate(ctx context.Context, db database.DB) error {
	if err := (migration.Runner{FS: migrations.FS}).Run(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
