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

// MusicBrainzClient queries the MusicBrainz web service for album tracklists.
type MusicBrainzClient struct {
	baseURL    string
	userAgent  string
	token      string
	httpClient *http.Client
}

// NewMusicBrainzClient creates a MusicBrainz client. A token is optional;
// when present it is sent as a bearer credential.
func NewMusicBrainzClient(baseURL, userAgent, token string, httpClient *http.Client) (*MusicBrainzClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("musicbrainz base url required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &MusicBrainzClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  strings.TrimSpace(userAgent),
		token:      strings.TrimSpace(token),
		httpClient: httpClient,
	}, nil
}

type mbReleaseSearch struct {
	Releases []struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		TrackCount   int    `json:"track-count"`
		ArtistCredit []struct {
			Name string `json:"name"`
		} `json:"artist-credit"`
	} `json:"releases"`
}

type mbRelease struct {
	Title string `json:"title"`
	Media []struct {
		Tracks []struct {
			Position int    `json:"position"`
			Title    string `json:"title"`
		} `json:"tracks"`
	} `json:"media"`
}

// Tracklist searches for a release by artist and album, then fetches its
// recordings. The release with the most tracks wins when several match, which
// favors complete editions over singles.
func (c *MusicBrainzClient) Tracklist(ctx context.Context, artist, album string) (*Tracklist, error) {
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)
	if artist == "" || album == "" {
		return nil, errors.New("artist and album must not be empty")
	}

	releaseID, err := c.searchRelease(ctx, artist, album)
	if err != nil {
		return nil, err
	}

	tracks, err := c.fetchRecordings(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("release %s has no recordings", releaseID)
	}

	return &Tracklist{
		Artist: artist,
		Album:  album,
		Source: "musicbrainz",
		Tracks: tracks,
	}, nil
}

func (c *MusicBrainzClient) searchRelease(ctx context.Context, artist, album string) (string, error) {
	endpoint, err := url.Parse(c.baseURL + "/release/")
	if err != nil {
		return "", fmt.Errorf("parse musicbrainz url: %w", err)
	}
	params := url.Values{}
	params.Set("query", fmt.Sprintf("artist:%q AND release:%q", artist, album))
	params.Set("fmt", "json")
	params.Set("limit", "5")
	endpoint.RawQuery = params.Encode()

	var payload mbReleaseSearch
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return "", err
	}
	if len(payload.Releases) == 0 {
		return "", fmt.Errorf("no musicbrainz release for %s - %s", artist, album)
	}

	releases := payload.Releases
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].TrackCount > releases[j].TrackCount
	})
	return releases[0].ID, nil
}

func (c *MusicBrainzClient) fetchRecordings(ctx context.Context, releaseID string) ([]Track, error) {
	endpoint, err := url.Parse(c.baseURL + "/release/" + url.PathEscape(releaseID))
	if err != nil {
		return nil, fmt.Errorf("parse musicbrainz url: %w", err)
	}
	params := url.Values{}
	params.Set("inc", "recordings")
	params.Set("fmt", "json")
	endpoint.RawQuery = params.Encode()

	var payload mbRelease
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}

	var tracks []Track
	offset := 0
	for _, medium := range payload.Media {
		for _, track := range medium.Tracks {
			tracks = append(tracks, Track{
				Number: offset + track.Position,
				Title:  track.Title,
			})
		}
		offset += len(medium.Tracks)
	}
	return tracks, nil
}

func (c *MusicBrainzClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("musicbrainz throttled the request (latency=%v)", latency)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("musicbrainz returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode musicbrainz response: %w", err)
	}
	return nil
}
