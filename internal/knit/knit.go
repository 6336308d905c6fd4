package knit

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Danondso/mfdr-sub001/internal/catalog"
	"github.com/Danondso/mfdr-sub001/internal/config"
	"github.com/Danondso/mfdr-sub001/internal/fileindex"
	"github.com/Danondso/mfdr-sub001/internal/fileutil"
	"github.com/Danondso/mfdr-sub001/internal/logging"
	"github.com/Danondso/mfdr-sub001/internal/lookup"
	"github.com/Danondso/mfdr-sub001/internal/match"
	"github.com/Danondso/mfdr-sub001/internal/textutil"
)

// Album groups a catalog's entries for one artist/album pair.
type Album struct {
	Key    string
	Artist string
	Title  string
	Tracks []catalog.Entry
}

// TrackMatch is a local file found for a missing tracklist title.
type TrackMatch struct {
	Title string
	Path  string
	Score float64
}

// Report describes the completion outcome for one album.
type Report struct {
	Album           Album
	TracklistSource string
	TracklistCount  int
	Missing         []string
	Found           []TrackMatch
	Err             error
}

// Summary aggregates a batch run.
type Summary struct {
	AlbumsProcessed int
	AlbumsSkipped   int
	AlbumsFailed    int
	TracksMissing   int
	TracksFound     int
	TracksImported  int
}

// SkippedAlbum records a group left out of processing for being too thin.
type SkippedAlbum struct {
	Key        string
	TrackCount int
}

// GroupAlbums buckets entries by artist/album and partitions the groups:
// those with at least minTracks entries become Albums keeping their grouped
// track slices intact, the rest come back as SkippedAlbums since they are
// too thin to identify an album reliably. Both partitions are sorted by key
// so runs are reproducible.
func GroupAlbums(entries []catalog.Entry, minTracks int) ([]Album, []SkippedAlbum) {
	grouped := catalog.GroupByAlbum(entries)
	albums := make([]Album, 0, len(grouped))
	skipped := make([]SkippedAlbum, 0)
	for key, tracks := range grouped {
		if len(tracks) < minTracks {
			skipped = append(skipped, SkippedAlbum{Key: key, TrackCount: len(tracks)})
			continue
		}
		albums = append(albums, Album{
			Key:    key,
			Artist: tracks[0].Artist,
			Title:  tracks[0].Album,
			Tracks: tracks,
		})
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].Key < albums[j].Key })
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Key < skipped[j].Key })
	return albums, skipped
}

// Service fills in missing album tracks by comparing the catalog against
// canonical tracklists and searching the local index for the gaps.
type Service struct {
	provider lookup.TracklistProvider
	index    *fileindex.Index
	weights  match.Weights
	cfg      config.Knit
	logger   *slog.Logger
}

// NewService creates an album completion service.
func NewService(provider lookup.TracklistProvider, index *fileindex.Index, weights match.Weights, cfg config.Knit, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		provider: provider,
		index:    index,
		weights:  weights,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "knit"),
	}
}

// ProcessAlbums runs album completion over the whole catalog. Tracklist
// lookups stay sequential so the provider's rate gate governs pacing; only
// local file searches fan out. Per-album failures are recorded on the report
// and never abort the batch.
func (s *Service) ProcessAlbums(ctx context.Context, entries []catalog.Entry) ([]Report, Summary) {
	albums, skipped := GroupAlbums(entries, s.cfg.MinAlbumTracks)
	summary := Summary{AlbumsSkipped: len(skipped)}

	reports := make([]Report, 0, len(albums))
	for _, album := range albums {
		if ctx.Err() != nil {
			break
		}
		report := s.ProcessAlbum(ctx, album)
		if report.Err != nil {
			summary.AlbumsFailed++
		} else {
			summary.AlbumsProcessed++
		}
		summary.TracksMissing += len(report.Missing)
		summary.TracksFound += len(report.Found)
		reports = append(reports, report)
	}
	return reports, summary
}

// ProcessAlbum resolves the album's canonical tracklist and searches the
// index for each title the catalog is missing.
func (s *Service) ProcessAlbum(ctx context.Context, album Album) Report {
	report := Report{Album: album}

	tracklist, err := s.provider.LookupTracklist(ctx, album.Artist, album.Title)
	if err != nil {
		s.logger.Warn("tracklist lookup failed",
			logging.String("album", album.Key),
			logging.Error(err))
		report.Err = err
		return report
	}
	report.TracklistSource = tracklist.Source
	report.TracklistCount = len(tracklist.Tracks)

	have := make(map[string]bool, len(album.Tracks))
	for _, track := range album.Tracks {
		have[textutil.Normalize(track.Name)] = true
	}
	report.Missing = tracklist.MissingTitles(have, textutil.Normalize)
	if len(report.Missing) == 0 {
		return report
	}

	report.Found = s.searchMissing(ctx, album, report.Missing)
	return report
}

// searchMissing looks for each missing title in the index. Small gaps are
// searched inline; larger ones fan out across a bounded worker group. Results
// keep tracklist order either way. A search that finishes after its window
// closed is discarded.
func (s *Service) searchMissing(ctx context.Context, album Album, missing []string) []TrackMatch {
	results := make([]*TrackMatch, len(missing))

	if len(missing) <= s.cfg.ParallelCutoff {
		for i, title := range missing {
			results[i] = s.searchTrack(ctx, album, title)
		}
	} else {
		batchCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.BatchTimeoutSeconds)*time.Second)
		defer cancel()

		group, groupCtx := errgroup.WithContext(batchCtx)
		workers := s.cfg.MaxWorkers
		if len(missing) < workers {
			workers = len(missing)
		}
		group.SetLimit(workers)

		for i, title := range missing {
			group.Go(func() error {
				results[i] = s.searchTrack(groupCtx, album, title)
				// Search failures leave a gap, never abort the group.
				return nil
			})
		}
		_ = group.Wait()
	}

	found := make([]TrackMatch, 0, len(missing))
	for _, result := range results {
		if result != nil {
			found = append(found, *result)
		}
	}
	return found
}

func (s *Service) searchTrack(ctx context.Context, album Album, title string) *TrackMatch {
	taskCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TaskTimeoutSeconds)*time.Second)
	defer cancel()
	if taskCtx.Err() != nil {
		return nil
	}

	probe := catalog.Entry{
		Name:   title,
		Artist: album.Artist,
		Album:  album.Title,
	}
	candidates := s.index.Search(probe)
	if len(candidates) == 0 {
		return nil
	}

	ranked := s.weights.Rank(probe, candidates)
	best := ranked[0]
	if best.Score < s.cfg.CompletionThreshold {
		s.logger.Debug("best candidate below completion threshold",
			logging.String("album", album.Key),
			logging.String("title", title),
			logging.Float64("score", best.Score))
		return nil
	}
	// The window may have closed while the search ran.
	if taskCtx.Err() != nil {
		return nil
	}
	return &TrackMatch{Title: title, Path: best.Candidate.Path, Score: best.Score}
}

// ImportFound copies every found match into destRoot under the album's
// sanitized artist/album folders. Copy failures are logged and skipped;
// the count of files actually imported is returned.
func ImportFound(reports []Report, destRoot string, logger *slog.Logger) int {
	if logger == nil {
		logger = logging.NewNop()
	}
	imported := 0
	for _, r := range reports {
		if len(r.Found) == 0 {
			continue
		}
		relDir := filepath.Join(
			textutil.SanitizeFileName(r.Album.Artist),
			textutil.SanitizeFileName(r.Album.Title),
		)
		for _, m := range r.Found {
			dst, err := fileutil.CopyInto(m.Path, destRoot, relDir)
			if err != nil {
				logger.Warn("import copy failed",
					logging.String("source", m.Path),
					logging.Error(err))
				continue
			}
			logger.Info("imported album track",
				logging.String("album", r.Album.Key),
				logging.String("destination", dst))
			imported++
		}
	}
	return imported
}
