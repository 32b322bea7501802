package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "MAINT"

type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver string `mapstructure:"driver"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type UploadsConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

type NotificationsConfig struct {
	UnreadLimit int `mapstructure:"unread_limit"`
}

type SweepConfig struct {
	// Mode is "off", "ticker" or "temporal".
	Mode     string        `mapstructure:"mode"`
	Interval time.Duration `mapstructure:"interval"`
	Cron     string        `mapstructure:"cron"`
	Timezone string        `mapstructure:"timezone"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
}

type BootstrapConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type Config struct {
	DatabaseURL   string              `mapstructure:"database_url"`
	Database      DatabaseConfig      `mapstructure:"database"`
	ServerPort    string              `mapstructure:"server_port"`
	JWTSecret     string              `mapstructure:"jwt_secret"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Uploads       UploadsConfig       `mapstructure:"uploads"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Sweep         SweepConfig         `mapstructure:"sweep"`
	Temporal      TemporalConfig      `mapstructure:"temporal"`
	Bootstrap     BootstrapConfig     `mapstructure:"bootstrap"`
}

var ErrMissingJWTSecret = errors.New("JWT secret must be set in the config file or MAINT_JWT_SECRET")

// Load reads .env (if present), the YAML config file and MAINT_* environment
// overrides, and returns a Config instance. It exits on invalid configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Ignoring .env file: %v", err)
	}

	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Error reading config file: %v", err)
		}
		log.Println("No config file found, using environment only")
	}

	config, err := LoadFrom(v)
	if err != nil {
		log.Fatal(err)
	}
	return config
}

// LoadFrom unmarshals an already populated viper instance, binding env
// overrides and applying defaults.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	// Env values arrive as one comma separated string.
	if raw := v.GetString("cors.allowed_origins"); raw != "" {
		config.CORS.AllowedOrigins = splitList(raw)
	}

	applyDefaults(&config)

	if config.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	switch config.Database.Driver {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("unknown database driver %q", config.Database.Driver)
	}
	if config.Database.Driver == "postgres" && config.DatabaseURL == "" {
		return nil, errors.New("database_url is required for the postgres driver")
	}
	switch config.Sweep.Mode {
	case "off", "ticker", "temporal":
	default:
		return nil, fmt.Errorf("unknown sweep mode %q", config.Sweep.Mode)
	}
	return &config, nil
}

// boundKeys lists every key so that env-only deployments unmarshal them.
var boundKeys = []string{
	"database_url", "database.driver", "server_port", "jwt_secret",
	"cors.allowed_origins", "uploads.dir", "uploads.max_bytes",
	"notifications.unread_limit", "sweep.mode", "sweep.interval", "sweep.cron", "sweep.timezone",
	"temporal.host_port", "temporal.namespace",
	"bootstrap.admin_email", "bootstrap.admin_password",
}

func applyDefaults(config *Config) {
	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.Database.Driver == "" {
		config.Database.Driver = "postgres"
	}
	if config.Uploads.Dir == "" {
		config.Uploads.Dir = "uploads"
	}
	if config.Uploads.MaxBytes <= 0 {
		config.Uploads.MaxBytes = 10 << 20
	}
	if config.Notifications.UnreadLimit <= 0 {
		config.Notifications.UnreadLimit = 5
	}
	if config.Sweep.Mode == "" {
		config.Sweep.Mode = "ticker"
	}
	if config.Sweep.Interval <= 0 {
		config.Sweep.Interval = time.Hour
	}
	if config.Sweep.Cron == "" {
		config.Sweep.Cron = "0 6 * * *"
	}
	if config.Temporal.HostPort == "" {
		config.Temporal.HostPort = "localhost:7233"
	}
	if config.Temporal.Namespace == "" {
		config.Temporal.Namespace = "default"
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
