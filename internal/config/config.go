package config

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string        `envconfig:"PORT" default:"8080"`
	Host        string        `envconfig:"HOST" default:"localhost"`
	Env         string        `envconfig:"ENV" default:"development"`
	MetricsAddr string        `envconfig:"METRICS_ADDR"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
}

type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"postgres"`
	URL        string `envconfig:"DATABASE_URL"` // Full database URL
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       int    `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"boletera"`
	SSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"boletera.db"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET" default:"your-secret-key-change-in-production"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"boletera-api"`
}

type RedisConfig struct {
	URL string `envconfig:"REDIS_URL"`
}

type AMQPConfig struct {
	URL      string `envconfig:"AMQP_URL"`
	Exchange string `envconfig:"AMQP_EXCHANGE" default:"boletera.events"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type RateLimitConfig struct {
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

const defaultJWTSecret = "your-secret-key-change-in-production"

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	return FromEnv()
}

// FromEnv decodes the process environment without touching .env files
func FromEnv() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, errors.Wrap(err, "failed to read configuration")
	}

	if config.Database.URL != "" {
		if err := config.Database.applyURL(config.Database.URL); err != nil {
			return nil, err
		}
	}

	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, errors.Errorf("unsupported DB_DRIVER %q", config.Database.Driver)
	}

	if config.Server.IsProduction() && (len(config.Auth.JWTSecret) < 16 || config.Auth.JWTSecret == defaultJWTSecret) {
		return nil, errors.New("JWT_SECRET must be set to a strong value in production")
	}

	return config, nil
}

// IsProduction reports whether the server runs in production mode
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DSN returns the connection string for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.URL != "" {
		return d.URL
	}
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.DBName +
		" sslmode=" + d.SSLMode
}

func (d *DatabaseConfig) applyURL(databaseURL string) error {
	// Parse the URL
	u, err := url.Parse(databaseURL)
	if err != nil {
		return errors.Wrap(err, "invalid DATABASE_URL")
	}

	if u.Scheme == "sqlite" || u.Scheme == "file" {
		d.Driver = "sqlite"
		d.SQLitePath = strings.TrimPrefix(databaseURL, u.Scheme+"://")
		d.URL = ""
		return nil
	}

	// Extract components
	d.Host = u.Hostname()
	if u.Port() != "" {
		d.Port, _ = strconv.Atoi(u.Port())
	} else {
		d.Port = 5432 // Default PostgreSQL port
	}

	if u.User != nil {
		d.User = u.User.Username()
		d.Password, _ = u.User.Password()
	}

	// Remove leading slash from path to get database name
	d.DBName = strings.TrimPrefix(u.Path, "/")

	if mode := u.Query().Get("sslmode"); mode != "" {
		d.SSLMode = mode
	}

	return nil
}
