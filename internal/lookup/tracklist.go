package lookup

import "strings"

// Track is a single entry on a canonical album tracklist.
type Track struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// Tracklist is the canonical track listing for an album as reported by an
// external metadata service.
type Tracklist struct {
	Artist string  `json:"artist"`
	Album  string  `json:"album"`
	Source string  `json:"source"` // "musicbrainz" or "itunes"
	Tracks []Track `json:"tracks"`
}

// TrackCount returns the number of tracks on the list.
func (t Tracklist) TrackCount() int {
	return len(t.Tracks)
}

// MissingTitles returns the titles on the tracklist whose normalized form does
// not appear in have. The caller supplies the normalizer so the comparison
// matches the rest of the matching pipeline.
func (t Tracklist) MissingTitles(have map[string]bool, normalize func(string) string) []string {
	var missing []string
	for _, track := range t.Tracks {
		title := strings.TrimSpace(track.Title)
		if title == "" {
			continue
		}
		if !have[normalize(title)] {
			missing = append(missing, title)
		}
	}
	return missing
}
