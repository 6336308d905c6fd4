package lookup

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Danondso/mfdr-sub001/internal/logging"
)

// cacheEntry is a cached tracklist with its retrieval timestamp.
type cacheEntry struct {
	Key       string    `json:"key"`
	Artist    string    `json:"artist"`
	Album     string    `json:"album"`
	Tracklist Tracklist `json:"tracklist"`
	CachedAt  time.Time `json:"cached_at"`
}

// Cache persists album tracklists to disk so repeated knit runs do not hammer
// the metadata services. An empty path disables it.
type Cache struct {
	path   string
	expiry time.Duration
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates a tracklist cache backed by the JSON file at path. Entries
// older than expiry are treated as absent.
func NewCache(path string, expiry time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "lookupcache")

	c := &Cache{
		path:    path,
		expiry:  expiry,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
	if path == "" {
		return c
	}
	if err := c.load(); err != nil {
		logger.Warn("failed to load tracklist cache",
			logging.Error(err),
			logging.String("path", path))
	}
	return c
}

// CacheKey returns the stable key for an artist/album pair.
func CacheKey(artist, album string) string {
	raw := strings.ToLower(strings.TrimSpace(artist)) + "|" + strings.ToLower(strings.TrimSpace(album))
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached tracklist for the pair if present and fresh.
func (c *Cache) Lookup(artist, album string) (*Tracklist, bool) {
	if c.path == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[CacheKey(artist, album)]
	if !found {
		return nil, false
	}
	if c.expiry > 0 && time.Since(entry.CachedAt) > c.expiry {
		return nil, false
	}
	tracklist := entry.Tracklist
	return &tracklist, true
}

// Store saves a tracklist and persists the cache to disk.
func (c *Cache) Store(artist, album string, tracklist Tracklist) error {
	if strings.TrimSpace(artist) == "" || strings.TrimSpace(album) == "" {
		return errors.New("artist and album cannot be empty")
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := CacheKey(artist, album)
	c.entries[key] = cacheEntry{
		Key:       key,
		Artist:    artist,
		Album:     album,
		Tracklist: tracklist,
		CachedAt:  time.Now().UTC(),
	}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cached tracklist",
		logging.String("artist", artist),
		logging.String("album", album),
		logging.Int("track_count", len(tracklist.Tracks)),
		logging.String("source", tracklist.Source))
	return nil
}

// Clear removes every entry and persists the empty cache.
func (c *Cache) Clear() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// Count returns the number of cached tracklists, expired entries included.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []cacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	c.entries = make(map[string]cacheEntry, len(entries))
	for _, entry := range entries {
		if entry.Key != "" {
			c.entries[entry.Key] = entry
		}
	}
	return nil
}

func (c *Cache) save() error {
	entries := make([]cacheEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
