package match

import "github.com/Danondso/mfdr-sub001/internal/catalog"

// ChoiceKind enumerates the outcomes an interactive chooser can return.
type ChoiceKind int

const (
	// ChoiceSkip leaves the entry untouched.
	ChoiceSkip ChoiceKind = iota
	// ChoiceAccept selects the candidate at Choice.Index.
	ChoiceAccept
	// ChoiceRemove marks the entry for removal from the catalog instead of
	// replacement.
	ChoiceRemove
)

// Choice is an interactive chooser's answer for one entry.
type Choice struct {
	Kind  ChoiceKind
	Index int
}

// Chooser presents ranked candidates to a human and returns their decision.
// Implementations live outside the matching core; the scan orchestrator
// calls Choose when the decision policy says Prompt. The candidate list is
// ordered best-first and bounded by Options.PromptLimit.
type Chooser interface {
	Choose(entry catalog.Entry, candidates []ScoredCandidate) (Choice, error)
}
