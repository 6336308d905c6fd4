package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Danondso/mfdr-sub001/internal/config"
)

func TestServiceFallsBackToITunes(t *testing.T) {
	var mbHits, itHits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/mb/"):
			mbHits.Add(1)
			http.Error(w, "not found", http.StatusNotFound)
		case r.URL.Path == "/search":
			itHits.Add(1)
			w.Write([]byte(itunesPayload))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfg := config.Lookup{
		MusicBrainzBaseURL:    server.URL + "/mb",
		ITunesBaseURL:         server.URL,
		UserAgent:             "test-agent",
		RateLimitSeconds:      0.001,
		RequestTimeoutSeconds: 5,
		CacheExpiryDays:       1,
	}
	cachePath := filepath.Join(t.TempDir(), "tracklists.json")
	svc, err := NewService(cfg, cachePath, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tracklist, err := svc.LookupTracklist(context.Background(), "Radiohead", "In Rainbows")
	if err != nil {
		t.Fatalf("LookupTracklist: %v", err)
	}
	if tracklist.Source != "itunes" {
		t.Errorf("Source = %q, want itunes", tracklist.Source)
	}
	if mbHits.Load() == 0 {
		t.Error("musicbrainz should have been tried first")
	}

	// Second lookup is served from cache without touching the network.
	before := itHits.Load()
	if _, err := svc.LookupTracklist(context.Background(), "Radiohead", "In Rainbows"); err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if itHits.Load() != before {
		t.Error("cached lookup should not hit the network")
	}
}

func TestServiceRejectsEmptyPair(t *testing.T) {
	svc, err := NewService(config.Lookup{
		MusicBrainzBaseURL:    "https://example.invalid",
		ITunesBaseURL:         "https://example.invalid",
		RateLimitSeconds:      1,
		RequestTimeoutSeconds: 1,
	}, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LookupTracklist(context.Background(), "", ""); err == nil {
		t.Error("expected error for empty artist and album")
	}
}
