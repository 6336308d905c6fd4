package match

import (
	"reflect"
	"testing"

	"github.com/Danondso/mfdr-sub001/internal/catalog"
	"github.com/Danondso/mfdr-sub001/internal/fileindex"
)

func TestScoreHighConfidenceMatch(t *testing.T) {
	entry := catalog.Entry{Name: "Song", Artist: "Artist X", Album: "Album Y", SizeBytes: 5242880}
	candidate := fileindex.Candidate{Path: "/Music/Artist X/Album Y/01 Song.m4a", SizeBytes: 5242880}

	scored := DefaultWeights().Score(entry, candidate)
	if scored.Score < 90 {
		t.Errorf("score = %v, want >= 90 (breakdown %v)", scored.Score, scored.Breakdown)
	}
	if scored.Breakdown[ComponentSize] != 10 {
		t.Errorf("size contribution = %v, want 10", scored.Breakdown[ComponentSize])
	}
	if scored.Breakdown[ComponentArtistPath] != 20 {
		t.Errorf("artist path contribution = %v, want 20", scored.Breakdown[ComponentArtistPath])
	}
	if scored.Breakdown[ComponentAlbumPath] != 20 {
		t.Errorf("album path contribution = %v, want 20", scored.Breakdown[ComponentAlbumPath])
	}
}

func TestScoreWeakMatchStaysLow(t *testing.T) {
	entry := catalog.Entry{Name: "Song (Live)"}
	candidate := fileindex.Candidate{Path: "/dump/song_live_bootleg.mp3", SizeBytes: 7340032}

	scored := DefaultWeights().Score(entry, candidate)
	if scored.Score <= 0 || scored.Score >= 60 {
		t.Errorf("score = %v, want positive and below 60 (breakdown %v)", scored.Score, scored.Breakdown)
	}
}

func TestScoreDeterministic(t *testing.T) {
	entry := catalog.Entry{Name: "Karma Police", Artist: "Radiohead", Album: "OK Computer", SizeBytes: 4194304}
	candidate := fileindex.Candidate{Path: "/Music/Radiohead/OK Computer/06 Karma Police.m4a", SizeBytes: 4190000}

	first := DefaultWeights().Score(entry, candidate)
	second := DefaultWeights().Score(entry, candidate)
	if first.Score != second.Score {
		t.Errorf("scores differ: %v vs %v", first.Score, second.Score)
	}
	if !reflect.DeepEqual(first.Breakdown, second.Breakdown) {
		t.Errorf("breakdowns differ: %v vs %v", first.Breakdown, second.Breakdown)
	}
}

func TestScoreSizeMonotonicity(t *testing.T) {
	entry := catalog.Entry{Name: "Track", SizeBytes: 1000000}
	ratios := []int64{400000, 500000, 700000, 900000, 980000, 1000000}

	prev := -1.0
	for _, size := range ratios {
		candidate := fileindex.Candidate{Path: "/m/track.mp3", SizeBytes: size}
		scored := DefaultWeights().Score(entry, candidate)
		if scored.Score < prev {
			t.Errorf("score decreased as size ratio improved: size %d scored %v, previous %v",
				size, scored.Score, prev)
		}
		prev = scored.Score
	}
}

func TestScoreNameComponents(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name      string
		entryName string
		path      string
		want      float64
	}{
		{"exact", "Karma Police", "/m/karma police.mp3", 40},
		{"exact after numbering differs", "Karma Police", "/m/06 Karma Police.mp3", 30},
		{"containment reversed", "Karma Police Live", "/m/karma police.mp3", 30},
		{"no name", "", "/m/karma police.mp3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scored := w.Score(catalog.Entry{Name: tt.entryName}, fileindex.Candidate{Path: tt.path})
			if got := scored.Breakdown[ComponentName]; got != tt.want {
				t.Errorf("name contribution = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreNameTokenOverlap(t *testing.T) {
	scored := DefaultWeights().Score(
		catalog.Entry{Name: "Paranoid Android Remix"},
		fileindex.Candidate{Path: "/m/paranoid android acoustic.mp3"},
	)
	got := scored.Breakdown[ComponentName]
	if got <= 0 || got >= 25 {
		t.Errorf("overlap contribution = %v, want within (0, 25)", got)
	}
}

func TestScoreExtensionFamilies(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name     string
		location string
		path     string
		want     float64
	}{
		{"same family m4a vs mp4", "file:///m/track.m4a", "/m/track.mp4", 10},
		{"different family", "file:///m/track.m4a", "/m/track.mp3", 5},
		{"no expected extension", "", "/m/track.flac", 10},
		{"unrecognized candidate", "file:///m/track.m4a", "/m/track.wma", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := catalog.Entry{Name: "x", Location: tt.location}
			scored := w.Score(entry, fileindex.Candidate{Path: tt.path})
			if got := scored.Breakdown[ComponentExtension]; got != tt.want {
				t.Errorf("extension contribution = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreEmptyEntryIsTotal(t *testing.T) {
	scored := DefaultWeights().Score(catalog.Entry{}, fileindex.Candidate{Path: "/m/whatever.mp3", SizeBytes: 1})
	if scored.Score < 0 || scored.Score > 100 {
		t.Fatalf("score out of range: %v", scored.Score)
	}
	if len(scored.Breakdown) != 5 {
		t.Errorf("breakdown has %d components, want 5", len(scored.Breakdown))
	}
}

func TestRankStableTieBreak(t *testing.T) {
	entry := catalog.Entry{Name: "Common"}
	candidates := []fileindex.Candidate{
		{Path: "/a/common.mp3"},
		{Path: "/b/common.mp3"},
		{Path: "/c/common.mp3"},
	}

	first := DefaultWeights().Rank(entry, candidates)
	if first[0].Score != first[1].Score || first[1].Score != first[2].Score {
		t.Fatalf("expected three-way tie, got %v %v %v", first[0].Score, first[1].Score, first[2].Score)
	}
	for range 5 {
		again := DefaultWeights().Rank(entry, candidates)
		for i := range first {
			if again[i].Candidate.Path != first[i].Candidate.Path {
				t.Fatalf("tie order not stable: run %v vs %v", again, first)
			}
		}
	}
	if first[0].Candidate.Path != "/a/common.mp3" {
		t.Errorf("tie-break should keep discovery order, got %s first", first[0].Candidate.Path)
	}
}
