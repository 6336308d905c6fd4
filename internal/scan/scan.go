package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Danondso/mfdr-sub001/internal/catalog"
	"github.com/Danondso/mfdr-sub001/internal/checkpoint"
	"github.com/Danondso/mfdr-sub001/internal/config"
	"github.com/Danondso/mfdr-sub001/internal/fileindex"
	"github.com/Danondso/mfdr-sub001/internal/fileutil"
	"github.com/Danondso/mfdr-sub001/internal/integrity"
	"github.com/Danondso/mfdr-sub001/internal/logging"
	"github.com/Danondso/mfdr-sub001/internal/match"
	"github.com/Danondso/mfdr-sub001/internal/report"
	"github.com/Danondso/mfdr-sub001/internal/textutil"
)

// ErrNoChooser reports an interactive decision with no chooser wired in.
var ErrNoChooser = errors.New("interactive decision requires a chooser")

// Summary tallies one scan run. Each entry resolves to exactly one of
// Healthy, Replaced, Accepted, Skipped, Removed, or Failed. Missing and
// Quarantined count conditions observed on the way to that resolution, so
// they overlap the outcome buckets rather than excluding them.
type Summary struct {
	Total       int
	Healthy     int
	Missing     int
	Replaced    int
	Accepted    int
	Skipped     int
	Removed     int
	Quarantined int
	Failed      int
	Resumed     int
}

// Processed returns how many entries were handled this run.
func (s Summary) Processed() int {
	return s.Total - s.Resumed
}

// Deps carries the collaborators a Scanner needs. History and Chooser are
// optional; Checkpoints may be nil to disable resume.
type Deps struct {
	Config      *config.Config
	Index       *fileindex.Index
	Checker     integrity.Checker
	Weights     match.Weights
	Options     match.Options
	Chooser     match.Chooser
	Checkpoints *checkpoint.Store
	History     *report.Store
	Logger      *slog.Logger
	// Progress is called after each entry with (done, total).
	Progress func(done, total int)
}

// Scanner walks the catalog, verifies each track's file, and repairs gaps by
// matching replacement candidates from the file index.
type Scanner struct {
	deps   Deps
	logger *slog.Logger
}

// New creates a Scanner.
func New(deps Deps) (*Scanner, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.Index == nil {
		return nil, errors.New("file index is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "scan"),
	}, nil
}

// Run scans every entry in the catalog. Per-entry failures are counted and
// logged, never fatal. When ctx is cancelled the current progress is
// checkpointed and Run returns the partial summary with ctx's error.
func (s *Scanner) Run(ctx context.Context, entries []catalog.Entry) (Summary, error) {
	summary := Summary{Total: len(entries)}

	cp := s.resumePoint()
	processed := map[int]bool{}
	if cp != nil {
		processed = cp.ProcessedSet()
	} else {
		cp = &checkpoint.Checkpoint{
			SessionID:  uuid.NewString(),
			LibraryXML: s.deps.Config.Paths.LibraryXML,
			StartedAt:  time.Now().UTC(),
		}
	}

	var session *report.Session
	if s.deps.History != nil {
		var err error
		session, err = s.deps.History.BeginSession(ctx, report.KindScan, s.deps.Config.Paths.LibraryXML)
		if err != nil {
			s.logger.Warn("failed to begin history session", logging.Error(err))
		}
	}

	interval := s.deps.Config.Scan.CheckpointInterval
	done := 0
	var runErr error

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if processed[entry.TrackID] {
			summary.Resumed++
			done++
			s.progress(done, len(entries))
			continue
		}

		s.processEntry(ctx, entry, &summary, session)

		cp.Processed = append(cp.Processed, entry.TrackID)
		done++
		s.progress(done, len(entries))

		if s.deps.Checkpoints != nil && interval > 0 && len(cp.Processed)%interval == 0 {
			if err := s.deps.Checkpoints.Save(cp); err != nil {
				s.logger.Warn("failed to save checkpoint", logging.Error(err))
			}
		}
	}

	if s.deps.Checkpoints != nil {
		if runErr != nil {
			// Interrupted: keep the checkpoint for resume.
			if err := s.deps.Checkpoints.Save(cp); err != nil {
				s.logger.Warn("failed to save checkpoint on interrupt", logging.Error(err))
			}
		} else {
			if err := s.deps.Checkpoints.Clear(); err != nil {
				s.logger.Warn("failed to clear checkpoint", logging.Error(err))
			}
		}
	}

	if session != nil {
		totals := report.Totals{
			Processed:   summary.Processed(),
			Replaced:    summary.Replaced + summary.Accepted,
			Prompted:    summary.Accepted + summary.Removed,
			Skipped:     summary.Skipped,
			Quarantined: summary.Quarantined,
			Failed:      summary.Failed,
		}
		if err := s.deps.History.FinishSession(ctx, session.ID, totals); err != nil {
			s.logger.Warn("failed to finish history session", logging.Error(err))
		}
	}

	return summary, runErr
}

func (s *Scanner) resumePoint() *checkpoint.Checkpoint {
	if s.deps.Checkpoints == nil {
		return nil
	}
	cp, err := s.deps.Checkpoints.Resumable(s.deps.Config.Paths.LibraryXML)
	if err != nil {
		s.logger.Warn("failed to read checkpoint", logging.Error(err))
		return nil
	}
	if cp != nil {
		s.logger.Info("resuming previous scan",
			logging.String("session_id", cp.SessionID),
			logging.Int("already_processed", len(cp.Processed)))
	}
	return cp
}

// processEntry handles one catalog entry end to end. Errors are absorbed into
// the summary so a bad entry never stops the scan.
func (s *Scanner) processEntry(ctx context.Context, entry catalog.Entry, summary *Summary, session *report.Session) {
	source := entry.SourcePath()

	if source != "" && !entry.IsMissing() {
		if s.deps.Checker != nil {
			result := s.deps.Checker.Check(ctx, source)
			if !result.OK() {
				s.quarantine(ctx, entry, source, result, summary, session)
				// Fall through: the track now needs a replacement.
			} else {
				summary.Healthy++
				return
			}
		} else {
			summary.Healthy++
			return
		}
	} else {
		summary.Missing++
	}

	s.replaceEntry(ctx, entry, summary, session)
}

func (s *Scanner) quarantine(ctx context.Context, entry catalog.Entry, source string, result integrity.Result, summary *Summary, session *report.Session) {
	summary.Quarantined++
	s.logger.Warn("corrupt file detected",
		logging.String("path", source),
		logging.String("reason", result.Reason))

	if s.deps.Config.Integrity.QuarantineEnabled {
		if _, err := fileutil.MoveInto(source, s.deps.Config.Paths.QuarantineDir, ""); err != nil {
			s.logger.Error("failed to quarantine file",
				logging.String("path", source),
				logging.Error(err))
		}
	}
	s.record(ctx, session, entry, report.Item{
		Outcome: report.OutcomeQuarantined,
		Reason:  result.Reason,
	})
}

func (s *Scanner) replaceEntry(ctx context.Context, entry catalog.Entry, summary *Summary, session *report.Session) {
	candidates := s.deps.Index.Search(entry)
	if len(candidates) == 0 {
		summary.Skipped++
		s.record(ctx, session, entry, report.Item{
			Outcome: report.OutcomeSkipped,
			Reason:  "no candidates",
		})
		return
	}

	ranked := s.deps.Weights.Rank(entry, candidates)
	decision := match.Decide(ranked, s.deps.Options)

	switch decision.Action {
	case match.AutoAccept:
		s.acceptCandidate(ctx, entry, ranked[decision.Index], false, summary, session)
	case match.Prompt:
		s.promptUser(ctx, entry, ranked, summary, session)
	default:
		summary.Skipped++
		reason := "replace mode off"
		if s.deps.Options.Mode != match.ModeOff && s.deps.Options.Mode != "" {
			reason = fmt.Sprintf("best score %.1f below threshold %.1f",
				decision.Score, s.deps.Options.EffectiveThreshold())
		}
		s.record(ctx, session, entry, report.Item{
			Outcome: report.OutcomeSkipped,
			Reason:  reason,
			Score:   decision.Score,
		})
	}
}

func (s *Scanner) promptUser(ctx context.Context, entry catalog.Entry, ranked []match.ScoredCandidate, summary *Summary, session *report.Session) {
	if s.deps.Chooser == nil {
		summary.Failed++
		s.logger.Error("cannot prompt", logging.Error(ErrNoChooser))
		s.record(ctx, session, entry, report.Item{
			Outcome: report.OutcomeFailed,
			Reason:  ErrNoChooser.Error(),
		})
		return
	}

	limit := s.deps.Options.PromptLimit()
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	choice, err := s.deps.Chooser.Choose(entry, ranked)
	if err != nil {
		summary.Failed++
		s.logger.Error("chooser failed", logging.Error(err))
		s.record(ctx, session, entry, report.Item{
			Outcome: report.OutcomeFailed,
			Reason:  err.Error(),
		})
		return
	}

	switch choice.Kind {
	case match.ChoiceAccept:
		if choice.Index < 0 || choice.Index >= len(ranked) {
			summary.Failed++
			s.record(ctx, session, entry, report.Item{
				Outcome: report.OutcomeFailed,
				Reason:  fmt.Sprintf("chooser index %d out of range", choice.Index),
			})
			return
		}
		s.acceptCandidate(ctx, entry, ranked[choice.Index], true, summary, session)
	case match.ChoiceRemove:
		// The catalog file itself is never rewritten; removals are recorded
		// for the user to apply in their player.
		summary.Removed++
		s.record(ctx, session, entry, report.Item{
			Outcome: report.OutcomeRemoved,
			Reason:  "user marked for removal",
		})
	default:
		summary.Skipped++
		s.record(ctx, session, entry, report.Item{
			Outcome: report.OutcomeSkipped,
			Reason:  "user skipped",
		})
	}
}

func (s *Scanner) acceptCandidate(ctx context.Context, entry catalog.Entry, scored match.ScoredCandidate, interactive bool, summary *Summary, session *report.Session) {
	relDir := filepath.Join(
		textutil.SanitizeFileName(entry.Artist),
		textutil.SanitizeFileName(entry.Album))
	dst, err := fileutil.CopyInto(scored.Candidate.Path, s.deps.Config.Paths.ImportDir, relDir)
	if err != nil {
		summary.Failed++
		s.logger.Error("failed to import replacement",
			logging.String("candidate", scored.Candidate.Path),
			logging.Error(err))
		s.record(ctx, session, entry, report.Item{
			Outcome: report.OutcomeFailed,
			Reason:  err.Error(),
			Score:   scored.Score,
		})
		return
	}

	if interactive {
		summary.Accepted++
	} else {
		summary.Replaced++
	}
	s.logger.Info("imported replacement",
		logging.String("track", entry.String()),
		logging.String("destination", dst),
		logging.Float64("score", scored.Score))
	s.record(ctx, session, entry, report.Item{
		Outcome:       report.OutcomeReplaced,
		Score:         scored.Score,
		CandidatePath: scored.Candidate.Path,
	})
}

func (s *Scanner) record(ctx context.Context, session *report.Session, entry catalog.Entry, item report.Item) {
	if session == nil || s.deps.History == nil {
		return
	}
	item.TrackID = entry.TrackID
	item.Name = entry.Name
	item.Artist = entry.Artist
	item.Album = entry.Album
	if err := s.deps.History.RecordItem(ctx, session.ID, item); err != nil {
		s.logger.Warn("failed to record history item", logging.Error(err))
	}
}

func (s *Scanner) progress(done, total int) {
	if s.deps.Progress != nil {
		s.deps.Progress(done, total)
	}
}
