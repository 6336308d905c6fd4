package textutil

// TokenOverlap computes the Dice coefficient between the token sets of two
// strings: 2*|common| / (|a|+|b|). Both inputs are normalized and tokenized
// before comparison. Returns 0 when either side has no tokens and 1 for
// identical token sets.
func TokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	common := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			common++
		}
	}
	if common == 0 {
		return 0
	}
	return 2 * float64(common) / float64(len(setA)+len(setB))
}

func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
