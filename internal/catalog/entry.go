package catalog

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Entry is an immutable catalog record describing an expected track. Entries
// are produced by a parser, read by the matching core, and never mutated.
type Entry struct {
	TrackID         int
	PersistentID    string
	Name            string
	Artist          string
	Album           string
	Genre           string
	TrackNumber     int
	Year            int
	SizeBytes       int64
	DurationSeconds float64
	// Location is the raw file URL from the catalog, if any.
	Location string
}

// String renders the conventional "Artist - Name" form used in logs.
func (e Entry) String() string {
	switch {
	case e.Artist != "" && e.Name != "":
		return e.Artist + " - " + e.Name
	case e.Name != "":
		return e.Name
	default:
		return fmt.Sprintf("track %d", e.TrackID)
	}
}

// SourcePath decodes the entry's file URL into a filesystem path. Returns ""
// when the entry has no location or the URL is not a file scheme.
func (e Entry) SourcePath() string {
	if e.Location == "" {
		return ""
	}
	parsed, err := url.Parse(e.Location)
	if err != nil || parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	// Windows-style file URLs carry a leading slash before the drive letter.
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return path
}

// IsMissing reports whether the entry has no resolvable backing file: the
// location is absent, undecodable, or points at a path that does not exist.
func (e Entry) IsMissing() bool {
	path := e.SourcePath()
	if path == "" {
		return true
	}
	if _, err := os.Stat(path); err != nil {
		return true
	}
	return false
}

// AlbumKey returns the "Artist - Album" grouping key for the entry. Entries
// missing either field fall back to whichever is present.
func (e Entry) AlbumKey() string {
	artist := strings.TrimSpace(e.Artist)
	album := strings.TrimSpace(e.Album)
	switch {
	case artist != "" && album != "":
		return artist + " - " + album
	case album != "":
		return album
	default:
		return artist
	}
}

// GroupByAlbum buckets entries under their album key. Entries with no usable
// key are dropped. Slice order within each bucket follows input order.
func GroupByAlbum(entries []Entry) map[string][]Entry {
	albums := make(map[string][]Entry)
	for _, entry := range entries {
		key := entry.AlbumKey()
		if key == "" {
			continue
		}
		albums[key] = append(albums[key], entry)
	}
	return albums
}
