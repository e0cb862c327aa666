package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rtlgraph/rtlgraph/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rtlgraph.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, Default())
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.StrictSeparators || cfg.RejectDuplicateKeys {
		t.Error("parsing should be tolerant by default")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
strict_separators = true

[server]
addr = ":9090"
redis_addr = "localhost:6379"
ttl = "30m"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.StrictSeparators {
		t.Error("StrictSeparators not applied")
	}
	if cfg.RejectDuplicateKeys {
		t.Error("RejectDuplicateKeys should keep its default")
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Server.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.Server.RedisAddr)
	}
	if cfg.Server.TTL.Std() != 30*time.Minute {
		t.Errorf("TTL = %v, want 30m", cfg.Server.TTL.Std())
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `reject_duplicate_keys = true`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.RejectDuplicateKeys {
		t.Error("RejectDuplicateKeys not applied")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want default :8080", cfg.Server.Addr)
	}
	if cfg.Server.TTL.Std() != 24*time.Hour {
		t.Errorf("TTL = %v, want default 24h", cfg.Server.TTL.Std())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"MissingFile", filepath.Join(t.TempDir(), "nope.toml")},
		{"BadTOML", writeConfig(t, `server = `)},
		{"BadDuration", writeConfig(t, "[server]\nttl = \"soon\"\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load(%s) err = %v, want INVALID_CONFIG", tt.path, err)
			}
		})
	}
}
