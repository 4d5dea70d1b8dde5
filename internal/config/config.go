// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, applies defaults for the
// optional blocks and validates that required values are present so the
// service fails fast on bad or missing configuration.
//
// The resulting *Config is built once at startup and passed by reference into
// every constructor that needs it. Nothing in this package is global.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the EMPLOYEES_ prefix. Keys are lowercased, the
	prefix is removed, and a double underscore marks a nesting level:

	  EMPLOYEES_DATABASE__HOST          -> database.host
	  EMPLOYEES_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level

	Single underscores stay inside a key (max_conns, ssl_mode).
*/

const (
	// EnvPrefix is the prefix every configuration variable must carry.
	EnvPrefix = "EMPLOYEES_"

	// ServiceName identifies this service in logs and traces.
	ServiceName = "employees"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Employee      EmployeeConfig       `koanf:"employee" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the sustained number of requests per second allowed per
	// client IP. Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool bounds.
//
// Name, user, password, host and port have no defaults: a missing value is a
// fatal startup error.
type DatabaseConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required,min=1,max=65535"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password" validate:"required"`
	Name     string `koanf:"name" validate:"required"`
	SSLMode  string `koanf:"ssl_mode" validate:"required,oneof=disable allow prefer require verify-ca verify-full"`

	// MaxConns bounds the pool. Each logical operation holds exactly one
	// connection from the pool for its duration.
	MaxConns int32 `koanf:"max_conns" validate:"min=1"`
	MinConns int32 `koanf:"min_conns" validate:"gte=0,ltefield=MaxConns"`

	// ConnMaxLifetime and ConnMaxIdleTime are whole seconds.
	ConnMaxLifetime int `koanf:"conn_max_lifetime" validate:"min=1"`
	ConnMaxIdleTime int `koanf:"conn_max_idle_time" validate:"min=1"`

	// QueryTimeout is the deadline attached to every store round trip.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"min=1ms"`
}

// EmployeeConfig holds the column bounds of the employees table.
//
// They size the VARCHAR columns when the table is first created and are
// enforced on input before any insert is attempted.
type EmployeeConfig struct {
	NameMaxLength       int `koanf:"name_max_length" validate:"min=1,max=10485760"`
	DepartmentMaxLength int `koanf:"department_max_length" validate:"min=1,max=10485760"`
}

// DefaultConfig returns a Config populated with every optional default.
// Required values are left empty.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			RateLimit:          20,
		},
		Database: DatabaseConfig{
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        0,
			ConnMaxLifetime: 3600,
			ConnMaxIdleTime: 300,
			QueryTimeout:    5 * time.Second,
		},
		Employee: EmployeeConfig{
			NameMaxLength:       50,
			DepartmentMaxLength: 50,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// envKey maps EMPLOYEES_DATABASE__MAX_CONNS to database.max_conns.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// LoadConfig loads configuration from environment variables, unmarshals it
// over the defaults, validates it, and returns the resulting config.
//
// Behavior summary:
//   - Loads env vars with prefix EMPLOYEES_
//   - Unmarshals into a Config pre-populated by DefaultConfig
//   - Validates required config blocks/fields
//   - Forces the observability service name and environment
//   - Validates observability config as well
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := DefaultConfig()
	if err := k.UnmarshalWithConf("", mainConfig, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           mainConfig,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
