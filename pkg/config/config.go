package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cron.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TILLBOOK_APP_ENV" required:"true"`
	Port         string `envconfig:"TILLBOOK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TILLBOOK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TILLBOOK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"TILLBOOK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TILLBOOK_DB_DSN"`
	Driver string `envconfig:"TILLBOOK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TILLBOOK_DB_HOST"`
	LegacyPort     int    `envconfig:"TILLBOOK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TILLBOOK_DB_USER"`
	LegacyPassword string `envconfig:"TILLBOOK_DB_PASSWORD"`
	LegacyName     string `envconfig:"TILLBOOK_DB_NAME"`
	LegacySSLMode  string `envconfig:"TILLBOOK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TILLBOOK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TILLBOOK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TILLBOOK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TILLBOOK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: with neither URL nor Address set the snapshot
// cache and the cron lock are disabled.
type RedisConfig struct {
	URL          string        `envconfig:"TILLBOOK_REDIS_URL"`
	Address      string        `envconfig:"TILLBOOK_REDIS_ADDR"`
	Password     string        `envconfig:"TILLBOOK_REDIS_PASSWORD"`
	DB           int           `envconfig:"TILLBOOK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TILLBOOK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TILLBOOK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TILLBOOK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TILLBOOK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TILLBOOK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"TILLBOOK_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"TILLBOOK_SQLITE_PATH" default:"tillbook.db"`
	AutoMigrate bool   `envconfig:"TILLBOOK_AUTO_MIGRATE" default:"false"`
}

type PricingConfig struct {
	Policy        string        `envconfig:"TILLBOOK_PRICING_POLICY" default:"lowest_price"`
	CacheEnabled  bool          `envconfig:"TILLBOOK_PRICING_CACHE_ENABLED" default:"false"`
	CacheTTL      time.Duration `envconfig:"TILLBOOK_PRICING_CACHE_TTL" default:"30s"`
	MaxBatchLines int           `envconfig:"TILLBOOK_PRICING_MAX_BATCH_LINES" default:"200"`
}

// ParsedPolicy is Policy as an enum; case and surrounding space are ignored.
func (p PricingConfig) ParsedPolicy() (enums.PricingPolicy, error) {
	return enums.ParsePricingPolicy(strings.ToLower(strings.TrimSpace(p.Policy)))
}

func (p PricingConfig) validate() error {
	if _, err := p.ParsedPolicy(); err != nil {
		return fmt.Errorf("%s: %w", EnvPricingPolicy, err)
	}
	if p.CacheEnabled && p.CacheTTL <= 0 {
		return fmt.Errorf("%s must be positive when the cache is enabled", EnvPricingCacheTTL)
	}
	if p.MaxBatchLines <= 0 {
		return fmt.Errorf("%s must be positive", EnvPricingMaxBatchLines)
	}
	return nil
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"TILLBOOK_CRON_INTERVAL" default:"1h"`
	LockTTL    time.Duration `envconfig:"TILLBOOK_CRON_LOCK_TTL" default:"5m"`
	JobTimeout time.Duration `envconfig:"TILLBOOK_CRON_JOB_TIMEOUT" default:"4m"`
}

func (c CronConfig) validate() error {
	if c.JobTimeout >= c.LockTTL {
		return fmt.Errorf("%s must be shorter than %s", EnvCronJobTimeout, EnvCronLockTTL)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
