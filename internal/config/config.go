package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LibraryXML    string `toml:"library_xml"`
	SearchDir     string `toml:"search_dir"`
	ImportDir     string `toml:"import_dir"`
	QuarantineDir string `toml:"quarantine_dir"`
	LogDir        string `toml:"log_dir"`
	CacheDir      string `toml:"cache_dir"`
}

// Replace contains configuration for the replacement decision policy.
type Replace struct {
	// Mode is one of off, conservative, moderate, aggressive.
	Mode string `toml:"mode"`
	// AutoAcceptThreshold overrides the mode's default score floor when > 0.
	AutoAcceptThreshold float64 `toml:"auto_accept_threshold"`
	Interactive         bool    `toml:"interactive"`
	MaxPromptCandidates int     `toml:"max_prompt_candidates"`
}

// Knit contains configuration for album completion.
type Knit struct {
	MinAlbumTracks      int     `toml:"min_album_tracks"`
	CompletionThreshold float64 `toml:"completion_threshold"`
	MaxWorkers          int     `toml:"max_workers"`
	ParallelCutoff      int     `toml:"parallel_cutoff"`
	TaskTimeoutSeconds  int     `toml:"task_timeout_seconds"`
	BatchTimeoutSeconds int     `toml:"batch_timeout_seconds"`
}

// Lookup contains configuration for external metadata services.
type Lookup struct {
	MusicBrainzBaseURL    string  `toml:"musicbrainz_base_url"`
	ITunesBaseURL         string  `toml:"itunes_base_url"`
	UserAgent             string  `toml:"user_agent"`
	Token                 string  `toml:"token"`
	RateLimitSeconds      float64 `toml:"rate_limit_seconds"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`
	CacheExpiryDays       int     `toml:"cache_expiry_days"`
}

// Integrity contains configuration for audio file verification.
type Integrity struct {
	Enabled           bool `toml:"enabled"`
	DecodeCheck       bool `toml:"decode_check"`
	MinFileSizeKB     int  `toml:"min_file_size_kb"`
	CheckTimeoutSecs  int  `toml:"check_timeout_seconds"`
	QuarantineEnabled bool `toml:"quarantine_enabled"`
}

// Scan contains configuration for catalog scan runs.
type Scan struct {
	CheckpointInterval int `toml:"checkpoint_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mfdr.
//
// Configuration sections by subsystem:
//   - Paths: catalog XML, search/import/quarantine directories
//   - Replace: decision policy mode and thresholds
//   - Knit: album completion limits and worker pool sizing
//   - Lookup: MusicBrainz/iTunes endpoints, pacing, and caching
//   - Integrity: audio verification toggles
//   - Scan: checkpointing cadence
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Replace   Replace   `toml:"replace"`
	Knit      Knit      `toml:"knit"`
	Lookup    Lookup    `toml:"lookup"`
	Integrity Integrity `toml:"integrity"`
	Scan      Scan      `toml:"scan"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mfdr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file yields
// defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories the application writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ImportDir, c.Paths.QuarantineDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPath returns the log file location, or "" when no log dir is set.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "mfdr.log")
}

// ExpandPath resolves ~ and relative segments in a user-supplied path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
