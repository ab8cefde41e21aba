package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the Festivo backend.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Event      EventConfig      `mapstructure:"event"`
	Invites    InviteConfig     `mapstructure:"invites"`
	Limits     LimitConfig      `mapstructure:"limits"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Realtime   RealtimeConfig   `mapstructure:"realtime"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AuthConfig captures staff authentication settings.
type AuthConfig struct {
	JWT     JWTSettings     `mapstructure:"jwt"`
	Session SessionSettings `mapstructure:"session"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// SessionSettings configures refresh tokens and session lifetimes.
type SessionSettings struct {
	RefreshTTL    time.Duration `mapstructure:"refresh_token_ttl"`
	RefreshLength int           `mapstructure:"refresh_token_length"`
}

// EventConfig describes the celebrated event. A single-event deployment model:
// one instance serves one celebration.
type EventConfig struct {
	Name         string `mapstructure:"name"`
	Celebrant    string `mapstructure:"celebrant"`
	Venue        string `mapstructure:"venue"`
	StartsAt     string `mapstructure:"starts_at"`     // RFC 3339
	RSVPDeadline string `mapstructure:"rsvp_deadline"` // RFC 3339, empty disables the deadline
}

// InviteConfig controls guest-facing invite links and outbound messaging.
type InviteConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	CountryCode     string `mapstructure:"country_code"`
	MessageTemplate string `mapstructure:"message_template"`
}

// LimitConfig bounds guest submissions.
type LimitConfig struct {
	SongRequestsPerGuest int `mapstructure:"song_requests_per_guest"`
	SongTextMax          int `mapstructure:"song_text_max"`
	MessageTextMax       int `mapstructure:"message_text_max"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// RealtimeConfig toggles the websocket stream for live song-request updates.
type RealtimeConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("FESTIVO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/festivo.sqlite")

	v.SetDefault("auth.jwt.issuer", "festivo")
	v.SetDefault("auth.jwt.access_token_ttl", "15m")
	v.SetDefault("auth.session.refresh_token_ttl", "720h") // 30 days
	v.SetDefault("auth.session.refresh_token_length", 48)

	v.SetDefault("event.name", "")
	v.SetDefault("event.rsvp_deadline", "")

	v.SetDefault("invites.base_url", "http://localhost:3000")
	v.SetDefault("invites.country_code", "51")
	v.SetDefault("invites.message_template", "Hola {NOMBRE}! Tienes una invitación especial: {URL}")

	v.SetDefault("limits.song_requests_per_guest", 5)
	v.SetDefault("limits.song_text_max", 120)
	v.SetDefault("limits.message_text_max", 100)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")

	v.SetDefault("realtime.enabled", true)
}

// RSVPDeadline parses the configured deadline. A zero time disables the check.
func (e EventConfig) RSVPDeadlineTime() (time.Time, error) {
	raw := strings.TrimSpace(e.RSVPDeadline)
	if raw == "" {
		return time.Time{}, nil
	}
	deadline, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: parse event.rsvp_deadline: %w", err)
	}
	return deadline, nil
}

// StartsAtTime parses the configured event start. A zero time means unset.
func (e EventConfig) StartsAtTime() (time.Time, error) {
	raw := strings.TrimSpace(e.StartsAt)
	if raw == "" {
		return time.Time{}, nil
	}
	starts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: parse event.starts_at: %w", err)
	}
	return starts, nil
}
