package textutil

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Song", "song"},
		{"leading article the", "The Beatles", "beatles"},
		{"leading article a", "A Day in the Life", "day in the life"},
		{"featuring truncated", "Umbrella feat. Jay-Z", "umbrella"},
		{"ft truncated", "Crazy In Love ft Jay-Z", "crazy in love"},
		{"featuring word", "Song featuring Someone Else", "song"},
		{"punctuation", "Don't Stop Me Now!", "don t stop me now"},
		{"parentheses", "Song (Live)", "song live"},
		{"whitespace collapse", "  Too   Many    Spaces  ", "too many spaces"},
		{"diacritics folded", "Café Tacvba", "cafe tacvba"},
		{"stacked articles", "A An Apple", "apple"},
		{"feat behind punctuation", "Song.feat Other", "song"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"The Beatles",
		"A An The Song",
		"Umbrella feat. Jay-Z",
		"Song.feat Other",
		"Don't Stop (Believin')",
		"Café del Mar",
		"01 - Track Name.m4a",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"short words dropped", "Hey Ya by Me", []string{"hey"}},
		{"mixed lengths", "The Quick Brown Fox", []string{"quick", "brown", "fox"}},
		{"punctuation split", "rock-and-roll", []string{"rock", "and", "roll"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "brown fox jumping", "brown fox jumping", 1},
		{"disjoint", "apple banana", "cherry mango", 0},
		{"empty side", "", "something here", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("TokenOverlap(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenOverlapPartial(t *testing.T) {
	got := TokenOverlap("quick brown fox", "slow brown fox")
	if got <= 0 || got >= 1 {
		t.Errorf("TokenOverlap(partial) = %v, want between 0 and 1", got)
	}
	if got != TokenOverlap("slow brown fox", "quick brown fox") {
		t.Error("TokenOverlap not symmetric")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC", "AC-DC"},
		{"What? No!", "What No!"},
		{"  trimmed  ", "trimmed"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
