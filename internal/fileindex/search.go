package fileindex

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Danondso/mfdr-sub001/internal/catalog"
	"github.com/Danondso/mfdr-sub001/internal/logging"
	"github.com/Danondso/mfdr-sub001/internal/textutil"
)

// Search retrieves a bounded, de-duplicated candidate set for the entry.
//
// Tiers union their results rather than replacing one another:
//
//  1. exact size, the strongest signal for byte-identical files
//  2. entry name tokens against the filename index
//  3. entry artist tokens against the directory index
//  4. fuzzy substring fallback over every indexed path, only when the
//     first three tiers produced nothing (O(files), last resort)
//
// Candidates come back in first-discovery order, which is deterministic
// because index slices preserve lexical walk order. Search never fails: no
// match yields an empty slice.
func (idx *Index) Search(entry catalog.Entry) []Candidate {
	seen := make(map[string]struct{})
	var ordered []string
	add := func(paths []string) {
		for _, path := range paths {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			ordered = append(ordered, path)
		}
	}

	if entry.SizeBytes > 0 {
		add(idx.bySize[entry.SizeBytes])
	}
	for _, token := range textutil.Tokenize(entry.Name) {
		add(idx.byNameToken[token])
	}
	for _, token := range textutil.Tokenize(entry.Artist) {
		add(idx.byDirToken[token])
	}

	if len(ordered) == 0 {
		add(idx.fuzzyScan(entry))
	}

	candidates := make([]Candidate, 0, len(ordered))
	for _, path := range ordered {
		candidate := Candidate{Path: path}
		// Best effort: a failed stat omits size rather than dropping the hit.
		if info, err := os.Stat(path); err == nil {
			candidate.SizeBytes = info.Size()
		}
		candidates = append(candidates, candidate)
	}

	idx.logger.Debug("candidate search complete",
		logging.String("entry", entry.String()),
		logging.Int("candidates", len(candidates)))
	return candidates
}

// fuzzyScan linearly scans every indexed path, qualifying those whose
// normalized filename contains any entry-name token or whose normalized
// parent path contains any artist token.
func (idx *Index) fuzzyScan(entry catalog.Entry) []string {
	nameTokens := textutil.Tokenize(entry.Name)
	artistTokens := textutil.Tokenize(entry.Artist)
	if len(nameTokens) == 0 && len(artistTokens) == 0 {
		return nil
	}

	var matches []string
	for _, path := range idx.allPaths {
		normalizedName := textutil.Normalize(stem(path))
		if containsAnyToken(normalizedName, nameTokens) {
			matches = append(matches, path)
			continue
		}
		normalizedDir := textutil.Normalize(filepath.Dir(path))
		if containsAnyToken(normalizedDir, artistTokens) {
			matches = append(matches, path)
		}
	}
	return matches
}

func containsAnyToken(haystack string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}
