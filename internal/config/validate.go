package config

import (
	"fmt"
	"strings"
)

var validReplaceModes = map[string]bool{
	"off":          true,
	"conservative": true,
	"moderate":     true,
	"aggressive":   true,
}

var validLogFormats = map[string]bool{
	"console": true,
	"json":    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.LibraryXML) == "" {
		return fmt.Errorf("paths.library_xml must be set")
	}
	if strings.TrimSpace(c.Paths.SearchDir) == "" {
		return fmt.Errorf("paths.search_dir must be set")
	}
	if !validReplaceModes[c.Replace.Mode] {
		return fmt.Errorf("replace.mode %q is not one of off, conservative, moderate, aggressive", c.Replace.Mode)
	}
	if c.Replace.AutoAcceptThreshold < 0 || c.Replace.AutoAcceptThreshold > 100 {
		return fmt.Errorf("replace.auto_accept_threshold %.1f must be between 0 and 100", c.Replace.AutoAcceptThreshold)
	}
	if c.Knit.CompletionThreshold < 0 || c.Knit.CompletionThreshold > 100 {
		return fmt.Errorf("knit.completion_threshold %.1f must be between 0 and 100", c.Knit.CompletionThreshold)
	}
	if c.Knit.MaxWorkers > 64 {
		return fmt.Errorf("knit.max_workers %d exceeds the cap of 64", c.Knit.MaxWorkers)
	}
	if !strings.HasPrefix(c.Lookup.MusicBrainzBaseURL, "http://") && !strings.HasPrefix(c.Lookup.MusicBrainzBaseURL, "https://") {
		return fmt.Errorf("lookup.musicbrainz_base_url %q must be an http(s) URL", c.Lookup.MusicBrainzBaseURL)
	}
	if !strings.HasPrefix(c.Lookup.ITunesBaseURL, "http://") && !strings.HasPrefix(c.Lookup.ITunesBaseURL, "https://") {
		return fmt.Errorf("lookup.itunes_base_url %q must be an http(s) URL", c.Lookup.ITunesBaseURL)
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format)
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
