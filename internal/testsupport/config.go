package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/Danondso/mfdr-sub001/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryXML = filepath.Join(base, "Library.xml")
	cfg.Paths.SearchDir = filepath.Join(base, "search")
	cfg.Paths.ImportDir = filepath.Join(base, "import")
	cfg.Paths.QuarantineDir = filepath.Join(base, "quarantine")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSearchDir overrides the search directory on the test config.
func WithSearchDir(dir string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.SearchDir = dir
	}
}

// WithReplaceMode sets the replacement mode on the test config.
func WithReplaceMode(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Replace.Mode = mode
	}
}
