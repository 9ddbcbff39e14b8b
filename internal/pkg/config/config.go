package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Viewport  ViewportConfig  `mapstructure:"viewport"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

// ViewportConfig carries the engine calibration constants. These are
// tunables, not magic numbers: retuning the camera-to-ground calibration or
// the activation hysteresis must not require a rebuild.
type ViewportConfig struct {
	// TickHz is the session frame rate.
	TickHz float64 `mapstructure:"tick_hz"`
	// AreaPerDistance converts camera zoom distance to visible ground
	// kilometers (areaKm = round(zoomDistance * AreaPerDistance)).
	AreaPerDistance float64 `mapstructure:"area_per_distance"`
	// DefaultFitScale is used by fit-to-view when the target bounds have a
	// zero lat or lon range and a scale cannot be derived.
	DefaultFitScale float64 `mapstructure:"default_fit_scale"`
	// HysteresisTicks is the number of consecutive agreeing evaluation
	// ticks required before a scene toggles active/inactive.
	HysteresisTicks int `mapstructure:"hysteresis_ticks"`
	// DefaultWidth/DefaultHeight size new viewport sessions.
	DefaultWidth  float64 `mapstructure:"default_width"`
	DefaultHeight float64 `mapstructure:"default_height"`
	// BoundaryFile is the GeoJSON file whose extent the initial view fits.
	BoundaryFile string `mapstructure:"boundary_file"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "mapdisplay")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "mapdisplay")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("viewport.tick_hz", 30)
	v.SetDefault("viewport.area_per_distance", 220)
	v.SetDefault("viewport.default_fit_scale", 100)
	v.SetDefault("viewport.hysteresis_ticks", 2)
	v.SetDefault("viewport.default_width", 1024)
	v.SetDefault("viewport.default_height", 768)
	v.SetDefault("viewport.boundary_file", "india_boundary_detailed.geojson")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: MAPDISPLAY_DATABASE_HOST → database.host
	v.SetEnvPrefix("MAPDISPLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Viewport.TickHz <= 0 {
		errs = append(errs, "viewport.tick_hz must be positive")
	}
	if c.Viewport.AreaPerDistance <= 0 {
		errs = append(errs, "viewport.area_per_distance must be positive")
	}
	if c.Viewport.DefaultFitScale <= 0 {
		errs = append(errs, "viewport.default_fit_scale must be positive")
	}
	if c.Viewport.HysteresisTicks < 1 {
		errs = append(errs, "viewport.hysteresis_ticks must be at least 1")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
