package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lookahead/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "lookahead")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Journal.Path != filepath.Join(wantState, "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.Journal.Path)
	}
	if cfg.Lookahead.SyncLookahead != 0 {
		t.Fatalf("expected inline scheduling by default, got sync_lookahead=%d", cfg.Lookahead.SyncLookahead)
	}
	if cfg.Lookahead.KeyintMax != config.Default().Lookahead.KeyintMax {
		t.Fatalf("unexpected keyint max: %d", cfg.Lookahead.KeyintMax)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	info, err := os.Stat(cfg.Paths.StateDir)
	if err != nil {
		t.Fatalf("expected state dir to exist: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %q to be directory", cfg.Paths.StateDir)
	}
}

func TestXDGStateHomeOverridesDefaultStateDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_STATE_HOME", base)

	cfg := config.Default()
	if cfg.Paths.StateDir != filepath.Join(base, "lookahead") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lookahead.toml")

	type payload struct {
		Lookahead struct {
			SyncLookahead  int  `toml:"sync_lookahead"`
			ReorderDelay   int  `toml:"reorder_delay"`
			DecisionWindow int  `toml:"decision_window"`
			MBTree         bool `toml:"mb_tree"`
		} `toml:"lookahead"`
		Journal struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"journal"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Lookahead.SyncLookahead = 8
	custom.Lookahead.ReorderDelay = 4
	custom.Lookahead.DecisionWindow = 6
	custom.Journal.Enabled = true
	custom.Journal.Path = filepath.Join(tempDir, "db", "runs.db")
	custom.Logging.Format = " JSON "
	custom.Logging.Level = "DEBUG"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Lookahead.SyncLookahead != 8 || cfg.Lookahead.ReorderDelay != 4 || cfg.Lookahead.DecisionWindow != 6 {
		t.Fatalf("expected lookahead overrides, got %+v", cfg.Lookahead)
	}
	if cfg.Lookahead.AnalyzeKeyframes() {
		t.Fatal("expected propagation disabled when mb_tree is false and vbv is unset")
	}
	if cfg.Journal.Path != custom.Journal.Path {
		t.Fatalf("unexpected journal path: %q", cfg.Journal.Path)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging values, got %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "lookahead.toml")
	if err := os.WriteFile(configPath, []byte("[lookahead]\nbframes = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "bframes") {
		t.Fatalf("expected error to name the unknown key, got %v", err)
	}
}

func TestAnalyzeKeyframes(t *testing.T) {
	tests := []struct {
		name string
		in   config.Lookahead
		want bool
	}{
		{name: "mbtree", in: config.Lookahead{MBTree: true}, want: true},
		{name: "vbv with lookahead", in: config.Lookahead{VBVBufferSize: 1000, RCLookahead: 20}, want: true},
		{name: "vbv without lookahead", in: config.Lookahead{VBVBufferSize: 1000}, want: false},
		{name: "lookahead without vbv", in: config.Lookahead{RCLookahead: 20}, want: false},
		{name: "stat read suppresses", in: config.Lookahead{MBTree: true, StatRead: true}, want: false},
		{name: "nothing", in: config.Lookahead{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.AnalyzeKeyframes(); got != tt.want {
				t.Fatalf("AnalyzeKeyframes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Lookahead != config.Default().Lookahead {
		t.Fatalf("sample lookahead section drifted from defaults: %+v", cfg.Lookahead)
	}

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if err := loaded.Validate(); err != nil {
		t.Fatalf("sample should validate: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"negative sync lookahead", func(c *config.Config) { c.Lookahead.SyncLookahead = -1 }},
		{"sync lookahead too deep", func(c *config.Config) { c.Lookahead.SyncLookahead = 251 }},
		{"reorder delay too large", func(c *config.Config) { c.Lookahead.ReorderDelay = 17 }},
		{"zero keyint", func(c *config.Config) { c.Lookahead.KeyintMax = 0 }},
		{"window beyond staging", func(c *config.Config) { c.Lookahead.DecisionWindow = c.Lookahead.ReorderDelay + 3 }},
		{"negative vbv", func(c *config.Config) { c.Lookahead.VBVBufferSize = -1 }},
		{"stat read without journal", func(c *config.Config) { c.Lookahead.StatRead = true }},
		{"unknown format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestEncodeRoundTripsThroughLoad(t *testing.T) {
	cfg := config.Default()
	cfg.Lookahead.SyncLookahead = 4
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "encoded.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write encoded: %v", err)
	}
	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Lookahead.SyncLookahead != 4 {
		t.Fatalf("expected sync_lookahead 4 after round trip, got %d", loaded.Lookahead.SyncLookahead)
	}
}
