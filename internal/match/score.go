package match

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/Danondso/mfdr-sub001/internal/catalog"
	"github.com/Danondso/mfdr-sub001/internal/fileindex"
	"github.com/Danondso/mfdr-sub001/internal/textutil"
)

// Breakdown component names reported by Score.
const (
	ComponentName       = "name"
	ComponentSize       = "size"
	ComponentExtension  = "extension"
	ComponentArtistPath = "artist_path"
	ComponentAlbumPath  = "album_path"
)

// ScoredCandidate pairs a candidate with its confidence score and the
// per-component contributions that produced it. Ephemeral: produced per
// query, never persisted.
type ScoredCandidate struct {
	Candidate fileindex.Candidate
	Score     float64
	Breakdown map[string]float64
}

// Weights centralizes the scoring constants. The values are empirically
// chosen, carried as configuration rather than derived; keep them internally
// consistent (the five component maxima sum to 100).
type Weights struct {
	NameExact      float64 // exact normalized-name equality
	NameSubstring  float64 // containment either direction
	NameOverlapMax float64 // token-overlap ratio scaled into [0, max]

	SizeMax        float64 // ratio at or above SizeExactRatio
	SizeFloorScore float64 // taper endpoint near SizeFloorRatio
	SizeExactRatio float64
	SizeFloorRatio float64

	ExtensionFamily float64 // same container family as the expected extension
	ExtensionAudio  float64 // recognized audio extension, different family

	ArtistPathMax float64
	AlbumPathMax  float64
}

// DefaultWeights returns the reference weights: 40/30/25 for name, 10 for
// size, 10 for extension, 20 each for artist and album path hints.
func DefaultWeights() Weights {
	return Weights{
		NameExact:       40,
		NameSubstring:   30,
		NameOverlapMax:  25,
		SizeMax:         10,
		SizeFloorScore:  2,
		SizeExactRatio:  0.98,
		SizeFloorRatio:  0.5,
		ExtensionFamily: 10,
		ExtensionAudio:  5,
		ArtistPathMax:   20,
		AlbumPathMax:    20,
	}
}

func (w Weights) normalized() Weights {
	d := DefaultWeights()
	if w.NameExact <= 0 {
		w.NameExact = d.NameExact
	}
	if w.NameSubstring <= 0 {
		w.NameSubstring = d.NameSubstring
	}
	if w.NameOverlapMax <= 0 {
		w.NameOverlapMax = d.NameOverlapMax
	}
	if w.SizeMax <= 0 {
		w.SizeMax = d.SizeMax
	}
	if w.SizeFloorScore <= 0 || w.SizeFloorScore > w.SizeMax {
		w.SizeFloorScore = d.SizeFloorScore
	}
	if w.SizeExactRatio <= 0 || w.SizeExactRatio > 1 {
		w.SizeExactRatio = d.SizeExactRatio
	}
	if w.SizeFloorRatio <= 0 || w.SizeFloorRatio >= w.SizeExactRatio {
		w.SizeFloorRatio = d.SizeFloorRatio
	}
	if w.ExtensionFamily <= 0 {
		w.ExtensionFamily = d.ExtensionFamily
	}
	if w.ExtensionAudio <= 0 || w.ExtensionAudio > w.ExtensionFamily {
		w.ExtensionAudio = d.ExtensionAudio
	}
	if w.ArtistPathMax <= 0 {
		w.ArtistPathMax = d.ArtistPathMax
	}
	if w.AlbumPathMax <= 0 {
		w.AlbumPathMax = d.AlbumPathMax
	}
	return w
}

// extensionFamilies groups interchangeable audio containers. Extensions in
// the same family are treated as equivalent (m4a vs mp4, ogg vs opus).
var extensionFamilies = map[string]string{
	".m4a":  "mp4",
	".m4p":  "mp4",
	".mp4":  "mp4",
	".aac":  "mp4",
	".mp3":  "mp3",
	".flac": "flac",
	".wav":  "wav",
	".ogg":  "ogg",
	".opus": "ogg",
}

// Score computes the 0-100 confidence that candidate is a replacement for
// entry. Pure and deterministic: identical inputs always produce an identical
// score and breakdown, and missing optional fields lower the score without
// ever failing. Components are independent and summed, each capped by its own
// bucket; the total is clipped to [0, 100].
func (w Weights) Score(entry catalog.Entry, candidate fileindex.Candidate) ScoredCandidate {
	w = w.normalized()
	breakdown := map[string]float64{
		ComponentName:       w.scoreName(entry, candidate),
		ComponentSize:       w.scoreSize(entry, candidate),
		ComponentExtension:  w.scoreExtension(entry, candidate),
		ComponentArtistPath: w.scorePathTokens(entry.Artist, candidate, w.ArtistPathMax),
		ComponentAlbumPath:  w.scorePathTokens(entry.Album, candidate, w.AlbumPathMax),
	}
	var total float64
	for _, contribution := range breakdown {
		total += contribution
	}
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return ScoredCandidate{Candidate: candidate, Score: total, Breakdown: breakdown}
}

func (w Weights) scoreName(entry catalog.Entry, candidate fileindex.Candidate) float64 {
	entryName := textutil.Normalize(entry.Name)
	candidateName := textutil.Normalize(candidateStem(candidate))
	if entryName == "" || candidateName == "" {
		return 0
	}
	switch {
	case entryName == candidateName:
		return w.NameExact
	case strings.Contains(candidateName, entryName) || strings.Contains(entryName, candidateName):
		return w.NameSubstring
	default:
		return textutil.TokenOverlap(entryName, candidateName) * w.NameOverlapMax
	}
}

func (w Weights) scoreSize(entry catalog.Entry, candidate fileindex.Candidate) float64 {
	if entry.SizeBytes <= 0 || candidate.SizeBytes <= 0 {
		return 0
	}
	ratio := sizeRatio(entry.SizeBytes, candidate.SizeBytes)
	switch {
	case ratio >= w.SizeExactRatio:
		// Byte-identical modulo tag differences.
		return w.SizeMax
	case ratio >= w.SizeFloorRatio:
		span := w.SizeExactRatio - w.SizeFloorRatio
		return w.SizeFloorScore + (ratio-w.SizeFloorRatio)/span*(w.SizeMax-w.SizeFloorScore)
	default:
		return 0
	}
}

func (w Weights) scoreExtension(entry catalog.Entry, candidate fileindex.Candidate) float64 {
	candidateFamily, recognized := extensionFamilies[strings.ToLower(filepath.Ext(candidate.Path))]
	if !recognized {
		return 0
	}
	expectedFamily, haveExpected := extensionFamilies[strings.ToLower(filepath.Ext(entry.SourcePath()))]
	if !haveExpected {
		// No expected extension to contradict; a recognized audio
		// candidate gets full credit.
		return w.ExtensionFamily
	}
	if candidateFamily == expectedFamily {
		return w.ExtensionFamily
	}
	return w.ExtensionAudio
}

// scorePathTokens credits the proportion of the field's tokens found in the
// candidate's normalized ancestor path. A full match earns max, partial
// matches earn proportionally less.
func (w Weights) scorePathTokens(field string, candidate fileindex.Candidate, max float64) float64 {
	tokens := textutil.Tokenize(field)
	if len(tokens) == 0 {
		return 0
	}
	normalizedPath := textutil.Normalize(filepath.Dir(candidate.Path))
	if normalizedPath == "" {
		return 0
	}
	matched := 0
	for _, token := range tokens {
		if strings.Contains(normalizedPath, token) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens)) * max
}

// Rank scores every candidate and sorts descending by score. The sort is
// stable, so candidates tying on score keep their search-discovery order
// and tie-breaks stay reproducible.
func (w Weights) Rank(entry catalog.Entry, candidates []fileindex.Candidate) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, w.Score(entry, candidate))
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

func candidateStem(candidate fileindex.Candidate) string {
	base := candidate.Filename()
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sizeRatio(a, b int64) float64 {
	if a > b {
		a, b = b, a
	}
	return float64(a) / float64(b)
}
