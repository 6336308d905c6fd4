package match

import (
	"fmt"
	"strings"
)

// Mode controls how aggressively replacements are auto-accepted. The modes
// differ only in the default threshold they supply; the decision logic itself
// is threshold-driven.
type Mode string

const (
	ModeOff          Mode = "off"
	ModeConservative Mode = "conservative"
	ModeModerate     Mode = "moderate"
	ModeAggressive   Mode = "aggressive"
)

// ParseMode validates a mode string from configuration or flags.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeOff, "":
		return ModeOff, nil
	case ModeConservative:
		return ModeConservative, nil
	case ModeModerate:
		return ModeModerate, nil
	case ModeAggressive:
		return ModeAggressive, nil
	default:
		return "", fmt.Errorf("unknown replace mode %q", value)
	}
}

// DefaultThreshold returns the auto-accept score floor the mode implies.
func (m Mode) DefaultThreshold() float64 {
	switch m {
	case ModeConservative:
		return 88.0
	case ModeModerate:
		return 80.0
	case ModeAggressive:
		return 70.0
	default:
		return 0
	}
}

// Action is the outcome of a replacement decision.
type Action int

const (
	Reject Action = iota
	Prompt
	AutoAccept
)

func (a Action) String() string {
	switch a {
	case Prompt:
		return "prompt"
	case AutoAccept:
		return "auto-accept"
	default:
		return "reject"
	}
}

// Decision is the per-entry outcome. Index references the scored candidate
// list passed to Decide; it is only meaningful for AutoAccept.
type Decision struct {
	Action Action
	Index  int
	Score  float64
}

// Options configures Decide. A zero Threshold falls back to the mode's
// default. MaxPrompt bounds how many candidates an interactive chooser is
// shown (default 10).
type Options struct {
	Mode        Mode
	Threshold   float64
	Interactive bool
	MaxPrompt   int
}

// DefaultMaxPrompt bounds the candidate list surfaced to interactive
// choosers.
const DefaultMaxPrompt = 10

// EffectiveThreshold resolves the configured or mode-default threshold.
func (o Options) EffectiveThreshold() float64 {
	if o.Threshold > 0 {
		return o.Threshold
	}
	return o.Mode.DefaultThreshold()
}

// PromptLimit resolves the bounded chooser list length.
func (o Options) PromptLimit() int {
	if o.MaxPrompt > 0 {
		return o.MaxPrompt
	}
	return DefaultMaxPrompt
}

// Decide applies the operating mode and threshold to a ranked candidate
// list. Interactive mode always prompts; off always rejects; otherwise the
// best score wins auto-acceptance when it meets the threshold. The boundary
// is inclusive: a score exactly at the threshold is accepted.
//
// Decide assumes scored is already ranked (best first, stable ties) and makes
// a fresh decision per call; no state is carried between entries.
func Decide(scored []ScoredCandidate, opts Options) Decision {
	if len(scored) == 0 {
		return Decision{Action: Reject, Index: -1}
	}
	best := scored[0]
	if opts.Interactive {
		return Decision{Action: Prompt, Index: -1, Score: best.Score}
	}
	if opts.Mode == ModeOff || opts.Mode == "" {
		return Decision{Action: Reject, Index: -1, Score: best.Score}
	}
	if best.Score >= opts.EffectiveThreshold() {
		return Decision{Action: AutoAccept, Index: 0, Score: best.Score}
	}
	return Decision{Action: Reject, Index: -1, Score: best.Score}
}
