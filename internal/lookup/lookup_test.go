package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const mbSearchPayload = `{
  "releases": [
    {"id": "rel-single", "title": "Abbey Road", "track-count": 2,
     "artist-credit": [{"name": "The Beatles"}]},
    {"id": "rel-full", "title": "Abbey Road", "track-count": 17,
     "artist-credit": [{"name": "The Beatles"}]}
  ]
}`

const mbReleasePayload = `{
  "title": "Abbey Road",
  "media": [
    {"tracks": [
      {"position": 1, "title": "Come Together"},
      {"position": 2, "title": "Something"}
    ]},
    {"tracks": [
      {"position": 1, "title": "Here Comes the Sun"}
    ]}
  ]
}`

func newMusicBrainzServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/release/" && r.URL.Query().Get("query") != "":
			w.Write([]byte(mbSearchPayload))
		case strings.HasPrefix(r.URL.Path, "/release/rel-full"):
			w.Write([]byte(mbReleasePayload))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestMusicBrainzTracklist(t *testing.T) {
	server := newMusicBrainzServer(t)
	defer server.Close()

	client, err := NewMusicBrainzClient(server.URL, "test-agent", "", server.Client())
	if err != nil {
		t.Fatalf("NewMusicBrainzClient: %v", err)
	}

	tracklist, err := client.Tracklist(context.Background(), "The Beatles", "Abbey Road")
	if err != nil {
		t.Fatalf("Tracklist: %v", err)
	}
	if tracklist.Source != "musicbrainz" {
		t.Errorf("Source = %q, want musicbrainz", tracklist.Source)
	}
	if len(tracklist.Tracks) != 3 {
		t.Fatalf("track count = %d, want 3", len(tracklist.Tracks))
	}
	// Second medium continues numbering after the first.
	if tracklist.Tracks[2].Number != 3 || tracklist.Tracks[2].Title != "Here Comes the Sun" {
		t.Errorf("third track = %+v", tracklist.Tracks[2])
	}
}

func TestMusicBrainzTracklistEmptyQuery(t *testing.T) {
	client, err := NewMusicBrainzClient("https://example.invalid", "agent", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Tracklist(context.Background(), "", "Album"); err == nil {
		t.Error("expected error for empty artist")
	}
}

const itunesPayload = `{
  "results": [
    {"wrapperType": "track", "artistName": "Radiohead",
     "collectionName": "In Rainbows", "trackName": "15 Step", "trackNumber": 1},
    {"wrapperType": "track", "artistName": "Radiohead",
     "collectionName": "In Rainbows (Deluxe Edition)", "trackName": "Bodysnatchers", "trackNumber": 2},
    {"wrapperType": "track", "artistName": "Radiohead",
     "collectionName": "OK Computer", "trackName": "Airbag", "trackNumber": 1},
    {"wrapperType": "collection", "collectionName": "In Rainbows"},
    {"wrapperType": "track", "artistName": "Radiohead",
     "collectionName": "In Rainbows", "trackName": "15 Step", "trackNumber": 1}
  ]
}`

func TestITunesTracklist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(itunesPayload))
	}))
	defer server.Close()

	client, err := NewITunesClient(server.URL, "test-agent", server.Client())
	if err != nil {
		t.Fatalf("NewITunesClient: %v", err)
	}

	tracklist, err := client.Tracklist(context.Background(), "Radiohead", "In Rainbows")
	if err != nil {
		t.Fatalf("Tracklist: %v", err)
	}
	if tracklist.Source != "itunes" {
		t.Errorf("Source = %q, want itunes", tracklist.Source)
	}
	// Other albums and duplicate track numbers are filtered; the deluxe
	// edition counts because its name extends the requested album.
	if len(tracklist.Tracks) != 2 {
		t.Fatalf("track count = %d, want 2: %+v", len(tracklist.Tracks), tracklist.Tracks)
	}
	if tracklist.Tracks[0].Title != "15 Step" || tracklist.Tracks[1].Title != "Bodysnatchers" {
		t.Errorf("tracks = %+v", tracklist.Tracks)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracklists.json")
	cache := NewCache(path, time.Hour, nil)

	if _, ok := cache.Lookup("Artist", "Album"); ok {
		t.Fatal("lookup on empty cache should miss")
	}

	want := Tracklist{
		Artist: "Artist",
		Album:  "Album",
		Source: "musicbrainz",
		Tracks: []Track{{Number: 1, Title: "One"}},
	}
	if err := cache.Store("Artist", "Album", want); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// A fresh cache instance reads the persisted file.
	reloaded := NewCache(path, time.Hour, nil)
	got, ok := reloaded.Lookup("artist", "ALBUM")
	if !ok {
		t.Fatal("lookup should be case-insensitive on the key")
	}
	if got.Tracks[0].Title != "One" {
		t.Errorf("Tracks[0] = %+v", got.Tracks[0])
	}
	if reloaded.Count() != 1 {
		t.Errorf("Count = %d, want 1", reloaded.Count())
	}
}

func TestCacheExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracklists.json")
	cache := NewCache(path, time.Nanosecond, nil)
	if err := cache.Store("Artist", "Album", Tracklist{Artist: "Artist", Album: "Album"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, ok := cache.Lookup("Artist", "Album"); ok {
		t.Error("expired entry should miss")
	}
}

func TestCacheDisabledWithoutPath(t *testing.T) {
	cache := NewCache("", time.Hour, nil)
	if err := cache.Store("Artist", "Album", Tracklist{}); err != nil {
		t.Fatalf("Store on disabled cache: %v", err)
	}
	if _, ok := cache.Lookup("Artist", "Album"); ok {
		t.Error("disabled cache should never hit")
	}
}

func TestTracklistMissingTitles(t *testing.T) {
	tracklist := Tracklist{Tracks: []Track{
		{Number: 1, Title: "Come Together"},
		{Number: 2, Title: "Something"},
		{Number: 3, Title: ""},
	}}
	have := map[string]bool{"come together": true}
	lower := func(s string) string { return strings.ToLower(s) }

	missing := tracklist.MissingTitles(have, lower)
	if len(missing) != 1 || missing[0] != "Something" {
		t.Errorf("missing = %v, want [Something]", missing)
	}
}
