package testsupport

import (
	"path/filepath"
	"testing"

	"lookahead/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithThreaded selects threaded scheduling with the given intake depth.
func WithThreaded(syncLookahead int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lookahead.SyncLookahead = syncLookahead
	}
}

// WithReorderDelay sets the reorder delay and a decision window inside it.
func WithReorderDelay(delay, window int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lookahead.ReorderDelay = delay
		b.cfg.Lookahead.DecisionWindow = window
	}
}

// WithKeyintMax overrides the maximum keyframe interval.
func WithKeyintMax(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lookahead.KeyintMax = n
	}
}

// WithJournal enables the decision journal inside the test directory.
func WithJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = true
	}
}

// WithStatRead enables journal replay.
func WithStatRead() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = true
		b.cfg.Lookahead.StatRead = true
	}
}

// WithoutPropagation disables keyframe propagation passes.
func WithoutPropagation() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lookahead.MBTree = false
		b.cfg.Lookahead.VBVBufferSize = 0
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
