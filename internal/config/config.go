package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Catalog      CatalogConfig
	Finalization FinalizationConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	Driver string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	SQLitePath string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	AutoMigrate bool
	RunSeeders  bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	QueueKey string
	Channel  string
	Disabled bool
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
	AuthDisabled    bool
}

type FinalizationConfig struct {
	Workers       int
	PollInterval  time.Duration
	SweepInterval time.Duration
	StaleAfter    time.Duration
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     orDefault(opt("APP_NAME"), "skill-catalog"),
		Environment: orDefault(opt("APP_ENV"), "development"),
		HTTPPort:    orDefault(opt("HTTP_PORT"), "8080"),
	}

	driver := strings.ToLower(orDefault(opt("DB_DRIVER"), DriverPostgres))
	cfg.Database = DatabaseConfig{
		Driver:                driver,
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             orDefault(opt("DB_SSL_MODE"), "disable"),
		ConnectTimeout:        durationOr(opt("DB_CONNECT_TIMEOUT"), 5*time.Second),
		PoolMaxConns:          int32(intOr(opt("DB_POOL_MAX_CONNS"), 0)),
		PoolMinConns:          int32(intOr(opt("DB_POOL_MIN_CONNS"), 0)),
		PoolMaxConnLifetime:   durationOr(opt("DB_POOL_MAX_CONN_LIFETIME"), 0),
		PoolMaxConnIdleTime:   durationOr(opt("DB_POOL_MAX_CONN_IDLE_TIME"), 0),
		PoolHealthCheckPeriod: durationOr(opt("DB_POOL_HEALTH_CHECK_PERIOD"), 0),
		AutoMigrate:           boolOr(opt("DB_AUTO_MIGRATE"), true),
		RunSeeders:            boolOr(opt("DB_RUN_SEEDERS"), false),
	}
	switch driver {
	case DriverPostgres:
		cfg.Database.DBHost = req("DB_HOST")
		cfg.Database.DBPort = req("DB_PORT")
		cfg.Database.DBName = req("DB_NAME")
		cfg.Database.DBUser = req("DB_USER")
	case DriverSQLite:
		cfg.Database.SQLitePath = orDefault(opt("SQLITE_PATH"), "catalog.db")
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	cfg.Redis = RedisConfig{
		Host:     orDefault(opt("REDIS_HOST"), "localhost"),
		Port:     orDefault(opt("REDIS_PORT"), "6379"),
		Password: opt("REDIS_PASSWORD"),
		DB:       intOr(opt("REDIS_DB"), 0),
		QueueKey: orDefault(opt("REDIS_QUEUE"), "catalog:finalize:queue"),
		Channel:  orDefault(opt("REDIS_CHANNEL"), "catalog:events"),
		Disabled: boolOr(opt("REDIS_DISABLED"), false),
	}

	cfg.JWT = JWTConfig{
		AccessExpiresIn: durationOr(opt("JWT_ACCESS_EXPIRES_IN"), 15*time.Minute),
		AuthDisabled:    boolOr(opt("AUTH_DISABLED"), false),
	}
	if cfg.JWT.AuthDisabled {
		cfg.JWT.AccessSecret = opt("JWT_ACCESS_SECRET")
	} else {
		cfg.JWT.AccessSecret = req("JWT_ACCESS_SECRET")
	}

	cfg.Finalization = FinalizationConfig{
		Workers:       intOr(opt("FINALIZE_WORKERS"), 2),
		PollInterval:  durationOr(opt("FINALIZE_POLL_INTERVAL"), 2*time.Second),
		SweepInterval: durationOr(opt("FINALIZE_SWEEP_INTERVAL"), 30*time.Second),
		StaleAfter:    durationOr(opt("FINALIZE_STALE_AFTER"), 2*time.Minute),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	catalogCfg, err := LoadCatalogConfig(opt("CATALOG_CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	cfg.Catalog = catalogCfg.withEnvOverrides(opt)

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func boolOr(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func durationOr(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
