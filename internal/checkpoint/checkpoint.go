package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/Danondso/mfdr-sub001/internal/logging"
)

// Checkpoints older than this are considered stale and ignored on resume.
const maxAge = 24 * time.Hour

// Checkpoint records scan progress so an interrupted run can resume without
// reprocessing tracks.
type Checkpoint struct {
	SessionID  string    `json:"session_id"`
	LibraryXML string    `json:"library_xml"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	// Processed holds the catalog track IDs already handled this session.
	Processed []int `json:"processed"`
}

// ProcessedSet returns the processed IDs as a lookup set.
func (c *Checkpoint) ProcessedSet() map[int]bool {
	set := make(map[int]bool, len(c.Processed))
	for _, id := range c.Processed {
		set[id] = true
	}
	return set
}

// Store persists checkpoints to a JSON file guarded by an advisory file lock,
// so two mfdr processes cannot clobber each other's progress.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewStore creates a checkpoint store writing to path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "checkpoint"),
	}
}

// Load reads the current checkpoint. A missing file returns (nil, nil).
func (s *Store) Load() (*Checkpoint, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire checkpoint lock: %w", err)
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	return &cp, nil
}

// Save writes the checkpoint atomically, refreshing its UpdatedAt stamp.
func (s *Store) Save(cp *Checkpoint) error {
	if cp == nil {
		return errors.New("checkpoint cannot be nil")
	}
	cp.UpdatedAt = time.Now().UTC()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire checkpoint lock: %w", err)
	}
	defer s.lock.Unlock()

	if err := s.writeRaw(cp); err != nil {
		return err
	}

	s.logger.Debug("checkpoint saved",
		logging.String("session_id", cp.SessionID),
		logging.Int("processed", len(cp.Processed)))
	return nil
}

// writeRaw marshals and atomically replaces the checkpoint file. The caller
// holds the lock.
func (s *Store) writeRaw(cp *Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp checkpoint: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}

// Clear removes the checkpoint file. Missing files are not an error.
func (s *Store) Clear() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire checkpoint lock: %w", err)
	}
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

// Resumable returns the checkpoint to resume from, or nil when no checkpoint
// applies: none saved, saved for a different catalog, or older than maxAge.
func (s *Store) Resumable(libraryXML string) (*Checkpoint, error) {
	cp, err := s.Load()
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, nil
	}
	if cp.LibraryXML != libraryXML {
		s.logger.Debug("checkpoint is for a different catalog, ignoring",
			logging.String("checkpoint_library", cp.LibraryXML))
		return nil, nil
	}
	if time.Since(cp.UpdatedAt) > maxAge {
		s.logger.Debug("checkpoint is stale, ignoring",
			logging.String("updated_at", cp.UpdatedAt.Format(time.RFC3339)))
		return nil, nil
	}
	return cp, nil
}
