package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Log          LogConfig
	DB           DBConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	FeatureFlags FeatureFlagsConfig
	Metrics      MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Redis.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env  string `envconfig:"LAUNDRY_APP_ENV" required:"true"`
	Port string `envconfig:"LAUNDRY_APP_PORT" required:"true"`
	Name string `envconfig:"LAUNDRY_APP_NAME" default:"laundry-api"`
	// CORSOrigins is a comma separated list of allowed browser origins.
	CORSOrigins []string `envconfig:"LAUNDRY_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type LogConfig struct {
	Level     string `envconfig:"LAUNDRY_LOG_LEVEL" default:"info"`
	Format    string `envconfig:"LAUNDRY_LOG_FORMAT" default:"json"`
	WarnStack bool   `envconfig:"LAUNDRY_LOG_WARN_STACK" default:"false"`
}

type DBConfig struct {
	DSN    string `envconfig:"LAUNDRY_DB_DSN"`
	Driver string `envconfig:"LAUNDRY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LAUNDRY_DB_HOST"`
	LegacyPort     int    `envconfig:"LAUNDRY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LAUNDRY_DB_USER"`
	LegacyPassword string `envconfig:"LAUNDRY_DB_PASSWORD"`
	LegacyName     string `envconfig:"LAUNDRY_DB_NAME"`
	LegacySSLMode  string `envconfig:"LAUNDRY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LAUNDRY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LAUNDRY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LAUNDRY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LAUNDRY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	Enabled      bool          `envconfig:"LAUNDRY_REDIS_ENABLED" default:"false"`
	URL          string        `envconfig:"LAUNDRY_REDIS_URL"`
	Address      string        `envconfig:"LAUNDRY_REDIS_ADDR"`
	Password     string        `envconfig:"LAUNDRY_REDIS_PASSWORD"`
	DB           int           `envconfig:"LAUNDRY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LAUNDRY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LAUNDRY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LAUNDRY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LAUNDRY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LAUNDRY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) validate() error {
	if !r.Enabled {
		return nil
	}
	if r.URL == "" && r.Address == "" {
		return fmt.Errorf("%s or %s is required when %s is set", EnvRedisURL, EnvRedisAddr, EnvRedisEnabled)
	}
	return nil
}

// PricingConfig holds the knobs of the order pricing engine.
type PricingConfig struct {
	MinimumCourierWeightKg string `envconfig:"LAUNDRY_PRICING_MIN_COURIER_WEIGHT_KG" default:"3"`
}

// MinimumCourierWeight parses the configured floor, falling back to 3kg.
func (p PricingConfig) MinimumCourierWeight() decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(p.MinimumCourierWeightKg))
	if err != nil || value.IsNegative() {
		return decimal.NewFromInt(3)
	}
	return value
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LAUNDRY_AUTO_MIGRATE" default:"false"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"LAUNDRY_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"LAUNDRY_METRICS_PATH" default:"/metrics"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
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
