package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ITunesClient queries the iTunes Search API. It serves as the fallback when
// MusicBrainz has no matching release.
type ITunesClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewITunesClient creates an iTunes Search API client.
func NewITunesClient(baseURL, userAgent string, httpClient *http.Client) (*ITunesClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("itunes base url required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ITunesClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: httpClient,
	}, nil
}

type itunesSearch struct {
	Results []struct {
		WrapperType    string `json:"wrapperType"`
		ArtistName     string `json:"artistName"`
		CollectionName string `json:"collectionName"`
		TrackName      string `json:"trackName"`
		TrackNumber    int    `json:"trackNumber"`
	} `json:"results"`
}

// Tracklist searches iTunes for songs matching artist and album and assembles
// a tracklist from the results whose collection name matches the album.
func (c *ITunesClient) Tracklist(ctx context.Context, artist, album string) (*Tracklist, error) {
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)
	if artist == "" || album == "" {
		return nil, errors.New("artist and album must not be empty")
	}

	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse itunes url: %w", err)
	}
	params := url.Values{}
	params.Set("term", artist+" "+album)
	params.Set("entity", "song")
	params.Set("limit", "200")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itunes search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload itunesSearch
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode itunes response: %w", err)
	}

	wantAlbum := foldName(album)
	seen := make(map[int]bool)
	var tracks []Track
	for _, result := range payload.Results {
		if result.WrapperType != "track" || result.TrackNumber <= 0 {
			continue
		}
		if !strings.HasPrefix(foldName(result.CollectionName), wantAlbum) {
			continue
		}
		if seen[result.TrackNumber] {
			continue
		}
		seen[result.TrackNumber] = true
		tracks = append(tracks, Track{Number: result.TrackNumber, Title: result.TrackName})
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no itunes tracks for %s - %s", artist, album)
	}

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Number < tracks[j].Number })

	return &Tracklist{
		Artist: artist,
		Album:  album,
		Source: "itunes",
		Tracks: tracks,
	}, nil
}

// foldName collapses case and surrounding whitespace for album comparison.
// iTunes frequently decorates album titles ("Deluxe Edition"), so a prefix
// match counts too.
func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
