package config

const (
	defaultLibraryXML    = "~/Music/Library.xml"
	defaultSearchDir     = "~/Music"
	defaultImportDir     = "~/Music/Automatically Add to Music"
	defaultQuarantineDir = "~/.local/share/mfdr/quarantine"
	defaultLogDir        = "~/.local/share/mfdr/logs"
	defaultCacheDir      = "~/.cache/mfdr"

	defaultReplaceMode         = "off"
	defaultMaxPromptCandidates = 10

	defaultMinAlbumTracks      = 3
	defaultCompletionThreshold = 70.0
	defaultMaxWorkers          = 4
	defaultParallelCutoff      = 3
	defaultTaskTimeoutSeconds  = 5
	defaultBatchTimeoutSeconds = 20

	defaultMusicBrainzBaseURL = "https://musicbrainz.org/ws/2"
	defaultITunesBaseURL      = "https://itunes.apple.com"
	defaultUserAgent          = "mfdr/1.0 (https://github.com/Danondso/mfdr-sub001)"
	// MusicBrainz allows one request per second for anonymous clients; the
	// extra 100ms keeps clock skew from tripping their throttle.
	defaultRateLimitSeconds      = 1.1
	defaultRequestTimeoutSecs    = 10
	defaultCacheExpiryDays       = 30
	defaultMinFileSizeKB         = 50
	defaultIntegrityTimeoutSecs  = 5
	defaultCheckpointInterval    = 100
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryXML:    defaultLibraryXML,
			SearchDir:     defaultSearchDir,
			ImportDir:     defaultImportDir,
			QuarantineDir: defaultQuarantineDir,
			LogDir:        defaultLogDir,
			CacheDir:      defaultCacheDir,
		},
		Replace: Replace{
			Mode:                defaultReplaceMode,
			MaxPromptCandidates: defaultMaxPromptCandidates,
		},
		Knit: Knit{
			MinAlbumTracks:      defaultMinAlbumTracks,
			CompletionThreshold: defaultCompletionThreshold,
			MaxWorkers:          defaultMaxWorkers,
			ParallelCutoff:      defaultParallelCutoff,
			TaskTimeoutSeconds:  defaultTaskTimeoutSeconds,
			BatchTimeoutSeconds: defaultBatchTimeoutSeconds,
		},
		Lookup: Lookup{
			MusicBrainzBaseURL:    defaultMusicBrainzBaseURL,
			ITunesBaseURL:         defaultITunesBaseURL,
			UserAgent:             defaultUserAgent,
			RateLimitSeconds:      defaultRateLimitSeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSecs,
			CacheExpiryDays:       defaultCacheExpiryDays,
		},
		Integrity: Integrity{
			Enabled:           true,
			DecodeCheck:       false,
			MinFileSizeKB:     defaultMinFileSizeKB,
			CheckTimeoutSecs:  defaultIntegrityTimeoutSecs,
			QuarantineEnabled: true,
		},
		Scan: Scan{
			CheckpointInterval: defaultCheckpointInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
