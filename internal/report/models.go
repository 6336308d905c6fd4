package report

import "time"

// Session kinds.
const (
	KindScan = "scan"
	KindKnit = "knit"
)

// Item outcomes.
const (
	OutcomeReplaced    = "replaced"
	OutcomePrompted    = "prompted"
	OutcomeSkipped     = "skipped"
	OutcomeQuarantined = "quarantined"
	OutcomeRemoved     = "removed"
	OutcomeFound       = "found"
	OutcomeFailed      = "failed"
)

// Session is one recorded scan or knit run.
type Session struct {
	ID         string
	Kind       string
	LibraryXML string
	StartedAt  time.Time
	FinishedAt time.Time
	Totals     Totals
}

// Finished reports whether the session was closed out.
func (s Session) Finished() bool {
	return !s.FinishedAt.IsZero()
}

// Totals are the per-session outcome counters.
type Totals struct {
	Processed   int
	Replaced    int
	Prompted    int
	Skipped     int
	Quarantined int
	Failed      int
}

// Item records what happened to one catalog track during a session.
type Item struct {
	TrackID       int
	Name          string
	Artist        string
	Album         string
	Outcome       string
	Reason        string
	Score         float64
	CandidatePath string
	CreatedAt     time.Time
}
