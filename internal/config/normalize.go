package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeReplace()
	c.normalizeKnit()
	c.normalizeLookup()
	c.normalizeIntegrity()
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryXML, err = expandPath(c.Paths.LibraryXML); err != nil {
		return fmt.Errorf("paths.library_xml: %w", err)
	}
	if c.Paths.SearchDir, err = expandPath(c.Paths.SearchDir); err != nil {
		return fmt.Errorf("paths.search_dir: %w", err)
	}
	if c.Paths.ImportDir, err = expandPath(c.Paths.ImportDir); err != nil {
		return fmt.Errorf("paths.import_dir: %w", err)
	}
	if c.Paths.QuarantineDir, err = expandPath(c.Paths.QuarantineDir); err != nil {
		return fmt.Errorf("paths.quarantine_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeReplace() {
	c.Replace.Mode = strings.ToLower(strings.TrimSpace(c.Replace.Mode))
	if c.Replace.Mode == "" {
		c.Replace.Mode = defaultReplaceMode
	}
	if c.Replace.MaxPromptCandidates <= 0 {
		c.Replace.MaxPromptCandidates = defaultMaxPromptCandidates
	}
}

func (c *Config) normalizeKnit() {
	if c.Knit.MinAlbumTracks <= 0 {
		c.Knit.MinAlbumTracks = defaultMinAlbumTracks
	}
	if c.Knit.CompletionThreshold <= 0 {
		c.Knit.CompletionThreshold = defaultCompletionThreshold
	}
	if c.Knit.MaxWorkers <= 0 {
		c.Knit.MaxWorkers = defaultMaxWorkers
	}
	if c.Knit.ParallelCutoff <= 0 {
		c.Knit.ParallelCutoff = defaultParallelCutoff
	}
	if c.Knit.TaskTimeoutSeconds <= 0 {
		c.Knit.TaskTimeoutSeconds = defaultTaskTimeoutSeconds
	}
	if c.Knit.BatchTimeoutSeconds <= 0 {
		c.Knit.BatchTimeoutSeconds = defaultBatchTimeoutSeconds
	}
}

func (c *Config) normalizeLookup() {
	if strings.TrimSpace(c.Lookup.MusicBrainzBaseURL) == "" {
		c.Lookup.MusicBrainzBaseURL = defaultMusicBrainzBaseURL
	}
	c.Lookup.MusicBrainzBaseURL = strings.TrimRight(c.Lookup.MusicBrainzBaseURL, "/")
	if strings.TrimSpace(c.Lookup.ITunesBaseURL) == "" {
		c.Lookup.ITunesBaseURL = defaultITunesBaseURL
	}
	c.Lookup.ITunesBaseURL = strings.TrimRight(c.Lookup.ITunesBaseURL, "/")
	if strings.TrimSpace(c.Lookup.UserAgent) == "" {
		c.Lookup.UserAgent = defaultUserAgent
	}
	if c.Lookup.RateLimitSeconds <= 0 {
		c.Lookup.RateLimitSeconds = defaultRateLimitSeconds
	}
	if c.Lookup.RequestTimeoutSeconds <= 0 {
		c.Lookup.RequestTimeoutSeconds = defaultRequestTimeoutSecs
	}
	if c.Lookup.CacheExpiryDays <= 0 {
		c.Lookup.CacheExpiryDays = defaultCacheExpiryDays
	}
}

func (c *Config) normalizeIntegrity() {
	if c.Integrity.MinFileSizeKB <= 0 {
		c.Integrity.MinFileSizeKB = defaultMinFileSizeKB
	}
	if c.Integrity.CheckTimeoutSecs <= 0 {
		c.Integrity.CheckTimeoutSecs = defaultIntegrityTimeoutSecs
	}
}

func (c *Config) normalizeScan() {
	if c.Scan.CheckpointInterval <= 0 {
		c.Scan.CheckpointInterval = defaultCheckpointInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
