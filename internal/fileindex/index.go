package fileindex

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Danondso/mfdr-sub001/internal/logging"
	"github.com/Danondso/mfdr-sub001/internal/textutil"
)

// ErrDirectoryNotFound indicates the search root does not exist. It is fatal
// for the whole indexing step; per-file failures are not.
var ErrDirectoryNotFound = errors.New("search directory not found")

// audioExtensions is the allow-list of file extensions considered audio.
// .m4p is included so DRM-protected purchases still surface as candidates;
// the integrity checker rejects them later with a DRM reason code.
var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".m4p":  {},
	".aac":  {},
	".flac": {},
	".wav":  {},
	".ogg":  {},
	".opus": {},
}

// IsAudioPath reports whether path carries a recognized audio extension.
func IsAudioPath(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Candidate is a file on disk considered as a possible replacement for a
// catalog entry. SizeBytes is zero when stat failed at conversion time.
type Candidate struct {
	Path      string
	SizeBytes int64
}

// Filename returns the base name of the candidate path.
func (c Candidate) Filename() string {
	return filepath.Base(c.Path)
}

// Directory returns the name of the candidate's parent directory.
func (c Candidate) Directory() string {
	return filepath.Base(filepath.Dir(c.Path))
}

// Index holds point-in-time inverted indexes over one search directory's
// audio files. An Index is immutable after Build and safe for concurrent
// reads; a refresh builds a new Index and swaps it, never mutates in place.
type Index struct {
	root        string
	bySize      map[int64][]string
	byNameToken map[string][]string
	byDirToken  map[string][]string
	allPaths    []string
	logger      *slog.Logger
}

// Stats summarizes index sizes for diagnostics.
type Stats struct {
	Files      int
	SizeKeys   int
	NameTokens int
	DirTokens  int
}

// Root returns the search directory the index was built from.
func (idx *Index) Root() string { return idx.root }

// Len returns the number of indexed audio files.
func (idx *Index) Len() int { return len(idx.allPaths) }

// Stats returns index cardinality counters.
func (idx *Index) Stats() Stats {
	return Stats{
		Files:      len(idx.allPaths),
		SizeKeys:   len(idx.bySize),
		NameTokens: len(idx.byNameToken),
		DirTokens:  len(idx.byDirToken),
	}
}

// Build walks root once and constructs the size, name-token, and
// directory-token indexes over every audio file beneath it.
//
// A file whose stat fails is kept in the path and token indexes; only its
// size key is dropped. WalkDir visits entries in lexical order, so index
// slices, and therefore search results, are reproducible across runs.
func Build(root string, logger *slog.Logger) (*Index, error) {
	return BuildFunc(root, logger, nil)
}

// BuildFunc is Build with an optional per-file progress callback, used by the
// CLI to drive a progress bar during large scans.
func BuildFunc(root string, logger *slog.Logger, visited func(path string)) (*Index, error) {
	logger = logging.NewComponentLogger(logger, "fileindex")

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, root)
	}

	idx := &Index{
		root:        filepath.Clean(root),
		bySize:      make(map[int64][]string),
		byNameToken: make(map[string][]string),
		byDirToken:  make(map[string][]string),
		logger:      logger,
	}

	walkErr := filepath.WalkDir(idx.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip it, keep indexing the rest.
			logger.Debug("skipping unreadable path", logging.String("path", path), logging.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsAudioPath(path) {
			return nil
		}
		idx.addFile(path, d)
		if visited != nil {
			visited(path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", idx.root, walkErr)
	}

	stats := idx.Stats()
	logger.Info("indexed audio files",
		logging.String("root", idx.root),
		logging.Int("files", stats.Files),
		logging.Int("size_keys", stats.SizeKeys),
		logging.Int("name_tokens", stats.NameTokens),
		logging.Int("dir_tokens", stats.DirTokens))
	return idx, nil
}

func (idx *Index) addFile(path string, d fs.DirEntry) {
	idx.allPaths = append(idx.allPaths, path)

	if info, err := d.Info(); err == nil {
		idx.bySize[info.Size()] = append(idx.bySize[info.Size()], path)
	} else {
		// Keep the file searchable by name and directory regardless.
		idx.logger.Debug("stat failed, size index skipped",
			logging.String("path", path), logging.Error(err))
	}

	for _, token := range textutil.Tokenize(stem(path)) {
		idx.byNameToken[token] = append(idx.byNameToken[token], path)
	}

	for dir := filepath.Dir(path); dir != idx.root && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		for _, token := range textutil.Tokenize(filepath.Base(dir)) {
			idx.byDirToken[token] = append(idx.byDirToken[token], path)
		}
	}
}

// stem returns the base name of path without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
