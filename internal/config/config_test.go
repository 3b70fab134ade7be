package config

import (
	"cemeterycore/internal/core"
	"cemeterycore/internal/localstore"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func noEnvFile(t *testing.T) Options {
	t.Helper()
	return Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.StorageConfig(); got.Driver != core.StorageSQLite || got.SQLitePath != "cemetery.db" {
		t.Fatalf("unexpected storage defaults %+v", got)
	}
	ls := cfg.LocalStoreConfig()
	if ls.Driver != localstore.DriverFilesystem || ls.FSRoot != "./cemeterydata" || ls.S3.Region != "us-east-1" {
		t.Fatalf("unexpected localstore defaults %+v", ls)
	}
	if level, _ := cfg.LogLevel(); level != slog.LevelWarn {
		t.Fatalf("expected warn level, got %v", level)
	}
	if !cfg.Seed {
		t.Fatalf("expected seeding enabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CEMETERY_STORAGE_DRIVER", "memory")
	t.Setenv("CEMETERY_STORAGE_SQLITE_PATH", "/var/lib/cemetery/state.db")
	t.Setenv("CEMETERY_LOCALSTORE_DRIVER", "s3")
	t.Setenv("CEMETERY_LOCALSTORE_S3_BUCKET", "ledger-snapshots")
	t.Setenv("CEMETERY_LOCALSTORE_S3_PATH_STYLE", "true")
	t.Setenv("CEMETERY_SEED", "false")

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.StorageConfig(); got.Driver != core.StorageMemory || got.SQLitePath != "/var/lib/cemetery/state.db" {
		t.Fatalf("unexpected storage %+v", got)
	}
	ls := cfg.LocalStoreConfig()
	if ls.Driver != localstore.DriverS3 || ls.S3.Bucket != "ledger-snapshots" || !ls.S3.PathStyle {
		t.Fatalf("unexpected localstore %+v", ls)
	}
	if cfg.Seed {
		t.Fatalf("expected seeding disabled")
	}
}

func TestLoadConfigFileWithEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cemetery.yaml")
	body := `storage:
  driver: postgres
  postgres_dsn: postgres://cemetery@db/cemetery
localstore:
  driver: memory
log:
  level: warn
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CEMETERY_LOG_LEVEL", "debug")

	opts := noEnvFile(t)
	opts.ConfigFile = path
	cfg, err := Load(opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.StorageConfig(); got.Driver != core.StoragePostgres || got.PostgresDSN != "postgres://cemetery@db/cemetery" {
		t.Fatalf("unexpected storage %+v", got)
	}
	if cfg.LocalStoreConfig().Driver != localstore.DriverMemory {
		t.Fatalf("expected memory localstore from file")
	}
	if level, _ := cfg.LogLevel(); level != slog.LevelDebug {
		t.Fatalf("expected env to win over file, got %v", level)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	// Register the key so the value godotenv sets is restored afterwards.
	t.Setenv("CEMETERY_LOG_LEVEL", "")
	if err := os.Unsetenv("CEMETERY_LOG_LEVEL"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("CEMETERY_LOG_LEVEL=error\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	cfg, err := Load(Options{EnvFile: envFile})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if level, _ := cfg.LogLevel(); level != slog.LevelError {
		t.Fatalf("expected level from .env, got %v", level)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"storage driver", map[string]string{"CEMETERY_STORAGE_DRIVER": "mongo"}},
		{"localstore driver", map[string]string{"CEMETERY_LOCALSTORE_DRIVER": "redis"}},
		{"s3 without bucket", map[string]string{"CEMETERY_LOCALSTORE_DRIVER": "s3"}},
		{"log level", map[string]string{"CEMETERY_LOG_LEVEL": "loud"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(noEnvFile(t)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	opts := noEnvFile(t)
	opts.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := Load(opts); err == nil {
		t.Fatalf("expected missing explicit config file error")
	}
}
