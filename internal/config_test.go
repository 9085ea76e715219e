package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/cfreality/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestStorageConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     StorageConfig
		wantErr bool
	}{
		{"file", StorageConfig{Backend: "file", Path: "./data"}, false},
		{"sqlite", StorageConfig{Backend: "sqlite", Path: "./cfr.db"}, false},
		{"badger", StorageConfig{Backend: "badger", Path: "./badger"}, false},
		{"memory without path", StorageConfig{Backend: "memory"}, false},
		{"file without path", StorageConfig{Backend: "file"}, true},
		{"unknown backend", StorageConfig{Backend: "redis", Path: "x"}, true},
		{"empty backend", StorageConfig{Path: "x"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestStorageConfig_DefaultKey(t *testing.T) {
	cfg := StorageConfig{Backend: "memory"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Key != "cfr-state" {
		t.Errorf("key = %q, want cfr-state", cfg.Key)
	}
}

func TestClockConfig(t *testing.T) {
	ok := ClockConfig{Period: 50 * time.Millisecond, Step: 0.05}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid clock config failed: %v", err)
	}
	for _, bad := range []ClockConfig{
		{Period: 0, Step: 0.05},
		{Period: time.Microsecond, Step: 0.05},
		{Period: time.Second, Step: 0},
		{Period: time.Second, Step: 7},
	} {
		if err := bad.Validate(); err == nil {
			t.Errorf("%+v should fail validation", bad)
		}
	}
}

func TestEventsConfig(t *testing.T) {
	cfg := EventsConfig{}
	if err := cfg.Validate(); err == nil {
		t.Error("zero throttle should fail validation")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("CFR_TEST_TOKEN", "s3cret")
	yaml := `
app:
  log_level: debug
  http:
    port: 9090
storage:
  backend: sqlite
  path: ./state.db
clock:
  period: 20ms
  step: 0.1
  autostart: false
events:
  phase_throttle: 1s
auth:
  mode: token
  token: ${CFR_TEST_TOKEN}
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9090 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Key != "cfr-state" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Clock.Period != 20*time.Millisecond || cfg.Clock.Step != 0.1 || cfg.Clock.Autostart {
		t.Errorf("clock = %+v", cfg.Clock)
	}
	if cfg.Events.PhaseThrottle != time.Second {
		t.Errorf("events = %+v", cfg.Events)
	}
	if cfg.Auth.Token != "s3cret" || !cfg.Auth.AuthEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}
