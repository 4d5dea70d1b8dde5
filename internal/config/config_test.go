package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EMPLOYEES_PRIMARY__ENV", "development")
	t.Setenv("EMPLOYEES_SERVER__PORT", "8080")
	t.Setenv("EMPLOYEES_DATABASE__NAME", "employees")
	t.Setenv("EMPLOYEES_DATABASE__USER", "postgres")
	t.Setenv("EMPLOYEES_DATABASE__PASSWORD", "p@ss:word")
	t.Setenv("EMPLOYEES_DATABASE__HOST", "localhost")
	t.Setenv("EMPLOYEES_DATABASE__PORT", "5432")
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"EMPLOYEES_DATABASE__HOST":                "database.host",
		"EMPLOYEES_DATABASE__MAX_CONNS":           "database.max_conns",
		"EMPLOYEES_OBSERVABILITY__LOGGING__LEVEL": "observability.logging.level",
		"EMPLOYEES_PRIMARY__ENV":                  "primary.env",
	}

	for in, want := range cases {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Fatalf("unexpected database address %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.Password != "p@ss:word" {
		t.Fatalf("unexpected password %q", cfg.Database.Password)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("expected default ssl mode disable, got %q", cfg.Database.SSLMode)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("expected default max conns 10, got %d", cfg.Database.MaxConns)
	}
	if cfg.Database.QueryTimeout != 5*time.Second {
		t.Errorf("expected default query timeout 5s, got %s", cfg.Database.QueryTimeout)
	}
	if cfg.Employee.NameMaxLength != 50 || cfg.Employee.DepartmentMaxLength != 50 {
		t.Errorf("unexpected employee limits %+v", cfg.Employee)
	}
	if cfg.Observability == nil {
		t.Fatal("expected observability defaults")
	}
	if cfg.Observability.ServiceName != ServiceName {
		t.Errorf("expected service name %q, got %q", ServiceName, cfg.Observability.ServiceName)
	}
	if cfg.Observability.Environment != "development" {
		t.Errorf("expected environment from primary.env, got %q", cfg.Observability.Environment)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EMPLOYEES_DATABASE__MAX_CONNS", "4")
	t.Setenv("EMPLOYEES_DATABASE__QUERY_TIMEOUT", "750ms")
	t.Setenv("EMPLOYEES_EMPLOYEE__NAME_MAX_LENGTH", "120")
	t.Setenv("EMPLOYEES_OBSERVABILITY__LOGGING__LEVEL", "debug")
	t.Setenv("EMPLOYEES_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Database.MaxConns != 4 {
		t.Errorf("expected max conns 4, got %d", cfg.Database.MaxConns)
	}
	if cfg.Database.QueryTimeout != 750*time.Millisecond {
		t.Errorf("expected query timeout 750ms, got %s", cfg.Database.QueryTimeout)
	}
	if cfg.Employee.NameMaxLength != 120 {
		t.Errorf("expected name max length 120, got %d", cfg.Employee.NameMaxLength)
	}
	if cfg.Observability.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Observability.Logging.Level)
	}
	if got := cfg.Server.CORSAllowedOrigins; len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("expected two CORS origins, got %q", got)
	}
	if cfg.Observability.Logging.Format != "json" {
		t.Errorf("expected untouched default format json, got %q", cfg.Observability.Logging.Format)
	}
}

func TestLoadConfigMissingDatabaseValue(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EMPLOYEES_DATABASE__PASSWORD", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected an error for a missing database password")
	}
	if !strings.Contains(err.Error(), "Password") {
		t.Fatalf("expected the error to name the missing field, got %v", err)
	}
}

func TestObservabilityValidate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid level to fail validation")
	}

	cfg = DefaultObservabilityConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid format to fail validation")
	}
}
