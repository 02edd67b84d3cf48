package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	DemoAuth      DemoAuthConfig
	RateLimit     RateLimitConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	Weather       WeatherConfig
	FeatureFlags  FeatureFlagsConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if _, err := cfg.JWT.TTL(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NODE_ENV" default:"development"`
	Port         string `envconfig:"PORT" default:"3001"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"`
	BodyLimitMB  int    `envconfig:"BODY_LIMIT_MB" default:"10"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN       string `envconfig:"DATABASE_URL"`
	LegacyURI string `envconfig:"MONGODB_URI"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	Address      string        `envconfig:"REDIS_ADDR"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
	Expire string `envconfig:"JWT_EXPIRE" default:"30d"`
	Issuer string `envconfig:"JWT_ISSUER" default:"smart-kisan-shakti"`
}

// TTL parses JWT_EXPIRE. Values accept Go durations plus a day suffix ("30d").
func (j JWTConfig) TTL() (time.Duration, error) {
	return ParseExpiry(j.Expire)
}

// ParseExpiry parses durations such as "30d", "12h" or "90m".
func ParseExpiry(value string) (time.Duration, error) {
	raw := strings.TrimSpace(strings.ToLower(value))
	if raw == "" {
		return 0, fmt.Errorf("jwt expiry is required")
	}
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid jwt expiry %q", value)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid jwt expiry %q: %w", value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("jwt expiry must be positive")
	}
	return d, nil
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ARGON_KEY_LEN" default:"32"`
}

type DemoAuthConfig struct {
	Enabled bool   `envconfig:"DEMO_AUTH_ENABLED" default:"true"`
	Token   string `envconfig:"DEMO_AUTH_TOKEN" default:"demo-token-123"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`
	Max    int           `envconfig:"RATE_LIMIT_MAX" default:"100"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
}

// AllowedOrigins returns the frontend origin plus the local dev servers, deduplicated.
func (c CORSConfig) AllowedOrigins() []string {
	candidates := []string{strings.TrimRight(strings.TrimSpace(c.FrontendURL), "/")}
	candidates = append(candidates, defaultDevOrigins...)
	seen := make(map[string]struct{}, len(candidates))
	origins := make([]string, 0, len(candidates))
	for _, origin := range candidates {
		if origin == "" {
			continue
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}

type WeatherConfig struct {
	APIKey   string        `envconfig:"OPENWEATHER_API_KEY"`
	BaseURL  string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5"`
	CacheTTL time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"10m"`
	Timeout  time.Duration `envconfig:"OPENWEATHER_TIMEOUT" default:"10s"`

	// Upstream request budget; calls over it are served from mock data.
	RatePerSecond float64 `envconfig:"OPENWEATHER_RPS" default:"1"`
	Burst         int     `envconfig:"OPENWEATHER_BURST" default:"5"`
}

// UseMock reports whether the configured key is missing or the placeholder.
func (w WeatherConfig) UseMock() bool {
	key := strings.TrimSpace(w.APIKey)
	return key == "" || key == PlaceholderWeatherKey
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval     time.Duration `envconfig:"CRON_INTERVAL" default:"1h"`
	GuestCartTTL time.Duration `envconfig:"GUEST_CART_TTL" default:"720h"`
}

// DemoAuthAllowed gates the demo bearer token; production never accepts it.
func (c Config) DemoAuthAllowed() bool {
	return c.DemoAuth.Enabled && strings.TrimSpace(c.DemoAuth.Token) != "" && !c.App.IsProd()
}

func (db *DBConfig) ensureDSN() error {
	if strings.TrimSpace(db.DSN) != "" {
		return nil
	}
	legacy := strings.TrimSpace(db.LegacyURI)
	if legacy == "" {
		return fmt.Errorf("%s is required", EnvDatabaseURL)
	}
	if !strings.HasPrefix(legacy, "postgres://") && !strings.HasPrefix(legacy, "postgresql://") {
		return fmt.Errorf("%s must be a postgres url when %s is unset", EnvLegacyDatabaseURI, EnvDatabaseURL)
	}
	db.DSN = legacy
	return nil
}
