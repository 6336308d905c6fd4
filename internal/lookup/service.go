package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Danondso/mfdr-sub001/internal/config"
	"github.com/Danondso/mfdr-sub001/internal/logging"
)

// TracklistProvider is the lookup surface the album completion flow depends on.
type TracklistProvider interface {
	LookupTracklist(ctx context.Context, artist, album string) (*Tracklist, error)
}

// Service resolves album tracklists through MusicBrainz with an iTunes
// fallback, caching results on disk. All outbound MusicBrainz requests share
// one rate gate so concurrent callers stay within the anonymous quota.
type Service struct {
	musicbrainz *MusicBrainzClient
	itunes      *ITunesClient
	cache       *Cache
	limiter     *rate.Limiter
	logger      *slog.Logger
}

var _ TracklistProvider = (*Service)(nil)

// NewService wires the lookup stack from configuration. cachePath may be
// empty to disable caching.
func NewService(cfg config.Lookup, cachePath string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "lookup")

	httpClient := &http.Client{
		Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}

	mb, err := NewMusicBrainzClient(cfg.MusicBrainzBaseURL, cfg.UserAgent, cfg.Token, httpClient)
	if err != nil {
		return nil, err
	}
	it, err := NewITunesClient(cfg.ITunesBaseURL, cfg.UserAgent, httpClient)
	if err != nil {
		return nil, err
	}

	// Token-bearing clients get a generous gate; anonymous ones pace at the
	// configured interval (1.1s by default).
	interval := time.Duration(cfg.RateLimitSeconds * float64(time.Second))
	if cfg.Token != "" {
		interval = 100 * time.Millisecond
	}

	return &Service{
		musicbrainz: mb,
		itunes:      it,
		cache:       NewCache(cachePath, time.Duration(cfg.CacheExpiryDays)*24*time.Hour, logger),
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		logger:      logger,
	}, nil
}

// LookupTracklist returns the canonical tracklist for an album. Cache hits
// skip the network entirely; misses try MusicBrainz first and fall back to
// iTunes.
func (s *Service) LookupTracklist(ctx context.Context, artist, album string) (*Tracklist, error) {
	if artist == "" || album == "" {
		return nil, errors.New("artist and album must not be empty")
	}

	if tracklist, ok := s.cache.Lookup(artist, album); ok {
		s.logger.Debug("tracklist cache hit",
			logging.String("artist", artist),
			logging.String("album", album))
		return tracklist, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate gate: %w", err)
	}

	tracklist, mbErr := s.musicbrainz.Tracklist(ctx, artist, album)
	if mbErr != nil {
		s.logger.Debug("musicbrainz lookup failed, trying itunes",
			logging.String("artist", artist),
			logging.String("album", album),
			logging.Error(mbErr))
		var itErr error
		tracklist, itErr = s.itunes.Tracklist(ctx, artist, album)
		if itErr != nil {
			return nil, fmt.Errorf("lookup %s - %s: %w (itunes: %v)", artist, album, mbErr, itErr)
		}
	}

	if err := s.cache.Store(artist, album, *tracklist); err != nil {
		s.logger.Warn("failed to cache tracklist", logging.Error(err))
	}

	s.logger.Info("resolved tracklist",
		logging.String("artist", artist),
		logging.String("album", album),
		logging.String("source", tracklist.Source),
		logging.Int("track_count", len(tracklist.Tracks)))
	return tracklist, nil
}

// ClearCache drops all cached tracklists.
func (s *Service) ClearCache() error {
	return s.cache.Clear()
}
