package testsupport

import (
	"path/filepath"
	"testing"

	"proctrack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test.
// The socket lives next to the data directory so paths stay short enough
// for sun_path limits.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.SocketPath = filepath.Join(base, "pt.sock")
	cfgVal.Persistence.LockBackoffMillis = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithSocketPath overrides the socket path on the test config.
func WithSocketPath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.SocketPath = path
	}
}

// WithLockBackoff overrides the persistence lock backoff in milliseconds.
func WithLockBackoff(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Persistence.LockBackoffMillis = ms
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
