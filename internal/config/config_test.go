package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORE_DRIVER", "DB_PATH", "DATABASE_URL", "REDIS_ADDR",
		"JWT_SECRET", "TOKEN_TTL", "LOG_LEVEL", "LOG_FORMAT", "SEED_DEMO",
		"DEMO_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 8080 || cfg.Addr() != ":8080" {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.StoreDriver != DriverSQLite {
		t.Errorf("Expected sqlite driver, got %q", cfg.StoreDriver)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("Expected 24h TTL, got %v", cfg.TokenTTL)
	}
	if cfg.SeedDemo {
		t.Error("Expected SeedDemo to default to false")
	}
	if cfg.DemoPassword == "" {
		t.Error("Expected a default demo password")
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=9090\nSTORE_DRIVER=memory\nJWT_SECRET=from-file\nTOKEN_TTL=1h\nSEED_DEMO=true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	// godotenv does not override variables that are already set, and
	// t.Setenv("", ...) counts as set, so unset the ones the file provides.
	for _, key := range []string{"PORT", "STORE_DRIVER", "JWT_SECRET", "TOKEN_TTL", "SEED_DEMO"} {
		os.Unsetenv(key)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9090 || cfg.StoreDriver != DriverMemory || cfg.JWTSecret != "from-file" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.TokenTTL != time.Hour || !cfg.SeedDemo {
		t.Errorf("Unexpected TTL/seed: %v %v", cfg.TokenTTL, cfg.SeedDemo)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"bad port", map[string]string{"JWT_SECRET": "s", "PORT": "http"}},
		{"bad ttl", map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "forever"}},
		{"bad seed flag", map[string]string{"JWT_SECRET": "s", "SEED_DEMO": "maybe"}},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "mongo"}},
		{"postgres without url", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "postgres"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
