package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Danondso/mfdr-sub001/internal/catalog"
	"github.com/Danondso/mfdr-sub001/internal/checkpoint"
	"github.com/Danondso/mfdr-sub001/internal/config"
	"github.com/Danondso/mfdr-sub001/internal/fileindex"
	"github.com/Danondso/mfdr-sub001/internal/integrity"
	"github.com/Danondso/mfdr-sub001/internal/match"
	"github.com/Danondso/mfdr-sub001/internal/report"
	"github.com/Danondso/mfdr-sub001/internal/testsupport"
)

type fakeChecker struct {
	corrupt map[string]string // path -> reason
}

func (f *fakeChecker) Check(ctx context.Context, path string) integrity.Result {
	if reason, bad := f.corrupt[path]; bad {
		return integrity.Result{Path: path, Status: integrity.StatusCorrupt, Reason: reason}
	}
	return integrity.Result{Path: path, Status: integrity.StatusOK}
}

type fakeChooser struct {
	choice match.Choice
	calls  int
	shown  int
}

func (f *fakeChooser) Choose(entry catalog.Entry, candidates []match.ScoredCandidate) (match.Choice, error) {
	f.calls++
	f.shown = len(candidates)
	return f.choice, nil
}

type testEnv struct {
	cfg      *config.Config
	index    *fileindex.Index
	searchly string
}

func newEnv(t *testing.T, searchFiles ...string) *testEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Scan.CheckpointInterval = 1

	testsupport.WriteTree(t, cfg.Paths.SearchDir, searchFiles...)
	if err := os.MkdirAll(cfg.Paths.SearchDir, 0o755); err != nil {
		t.Fatal(err)
	}
	idx, err := fileindex.Build(cfg.Paths.SearchDir, nil)
	if err != nil {
		t.Fatal(err)
	}

	return &testEnv{cfg: cfg, index: idx, searchly: cfg.Paths.SearchDir}
}

func (e *testEnv) scanner(t *testing.T, deps Deps) *Scanner {
	t.Helper()
	deps.Config = e.cfg
	deps.Index = e.index
	if deps.Weights == (match.Weights{}) {
		deps.Weights = match.DefaultWeights()
	}
	s, err := New(deps)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func fileURL(path string) string {
	return "file://" + path
}

func missingEntry(id int, name string) catalog.Entry {
	return catalog.Entry{
		TrackID: id,
		Name:    name,
		Artist:  "Testband",
		Album:   "Greatest",
	}
}

func TestRunHealthyEntry(t *testing.T) {
	env := newEnv(t)
	existing := filepath.Join(env.searchly, "present.mp3")
	if err := os.WriteFile(existing, []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}

	entry := missingEntry(1, "Present")
	entry.Location = fileURL(existing)

	scanner := env.scanner(t, Deps{Checker: &fakeChecker{}})
	summary, err := scanner.Run(context.Background(), []catalog.Entry{entry})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Healthy != 1 || summary.Missing != 0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRunAutoAcceptImportsReplacement(t *testing.T) {
	env := newEnv(t, "Testband/Greatest/Hidden Gem.mp3")
	scanner := env.scanner(t, Deps{
		Options: match.Options{Mode: match.ModeAggressive},
	})

	summary, err := scanner.Run(context.Background(), []catalog.Entry{missingEntry(1, "Hidden Gem")})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Replaced != 1 {
		t.Fatalf("summary = %+v, want Replaced 1", summary)
	}

	imported := filepath.Join(env.cfg.Paths.ImportDir, "Testband", "Greatest", "Hidden Gem.mp3")
	if _, err := os.Stat(imported); err != nil {
		t.Errorf("replacement not imported at %s: %v", imported, err)
	}
}

func TestRunModeOffSkips(t *testing.T) {
	env := newEnv(t, "Testband/Greatest/Hidden Gem.mp3")
	scanner := env.scanner(t, Deps{Options: match.Options{Mode: match.ModeOff}})

	summary, err := scanner.Run(context.Background(), []catalog.Entry{missingEntry(1, "Hidden Gem")})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.Replaced != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if entries, _ := os.ReadDir(env.cfg.Paths.ImportDir); len(entries) != 0 {
		t.Error("mode off must not import anything")
	}
}

func TestRunNoCandidates(t *testing.T) {
	env := newEnv(t)
	scanner := env.scanner(t, Deps{Options: match.Options{Mode: match.ModeAggressive}})

	summary, err := scanner.Run(context.Background(), []catalog.Entry{missingEntry(1, "Nowhere")})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 {
		t.Errorf("summary = %+v, want Skipped 1", summary)
	}
}

func TestRunInteractiveRemoveDoesNotImport(t *testing.T) {
	env := newEnv(t, "Testband/Greatest/Hidden Gem.mp3")
	chooser := &fakeChooser{choice: match.Choice{Kind: match.ChoiceRemove}}
	scanner := env.scanner(t, Deps{
		Options: match.Options{Mode: match.ModeAggressive, Interactive: true},
		Chooser: chooser,
	})

	summary, err := scanner.Run(context.Background(), []catalog.Entry{missingEntry(1, "Hidden Gem")})
	if err != nil {
		t.Fatal(err)
	}
	if chooser.calls != 1 {
		t.Fatalf("chooser calls = %d, want 1", chooser.calls)
	}
	if summary.Removed != 1 {
		t.Errorf("summary = %+v, want Removed 1", summary)
	}
	if entries, _ := os.ReadDir(env.cfg.Paths.ImportDir); len(entries) != 0 {
		t.Error("remove choice must not import anything")
	}
}

func TestRunInteractiveAccept(t *testing.T) {
	env := newEnv(t, "Testband/Greatest/Hidden Gem.mp3")
	chooser := &fakeChooser{choice: match.Choice{Kind: match.ChoiceAccept, Index: 0}}
	scanner := env.scanner(t, Deps{
		Options: match.Options{Interactive: true, MaxPrompt: 5},
		Chooser: chooser,
	})

	summary, err := scanner.Run(context.Background(), []catalog.Entry{missingEntry(1, "Hidden Gem")})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Accepted != 1 {
		t.Errorf("summary = %+v, want Accepted 1", summary)
	}
	if chooser.shown > 5 {
		t.Errorf("chooser shown %d candidates, limit 5", chooser.shown)
	}
}

func TestRunQuarantinesCorruptFile(t *testing.T) {
	env := newEnv(t, "Testband/Greatest/Hidden Gem.mp3")
	corruptPath := filepath.Join(env.searchly, "damaged.mp3")
	if err := os.WriteFile(corruptPath, []byte("bad"), 0o644); err != nil {
		t.Fatal(err)
	}

	entry := missingEntry(1, "Hidden Gem")
	entry.Location = fileURL(corruptPath)

	scanner := env.scanner(t, Deps{
		Checker: &fakeChecker{corrupt: map[string]string{corruptPath: integrity.ReasonBadMetadata}},
		Options: match.Options{Mode: match.ModeAggressive},
	})

	summary, err := scanner.Run(context.Background(), []catalog.Entry{entry})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Quarantined != 1 {
		t.Fatalf("summary = %+v, want Quarantined 1", summary)
	}
	if _, err := os.Stat(corruptPath); !os.IsNotExist(err) {
		t.Error("corrupt file should have been moved out")
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.QuarantineDir, "damaged.mp3")); err != nil {
		t.Errorf("quarantined copy missing: %v", err)
	}
	// The corrupt track then gets a replacement.
	if summary.Replaced != 1 {
		t.Errorf("summary = %+v, want Replaced 1 after quarantine", summary)
	}
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	env := newEnv(t)
	store := checkpoint.NewStore(filepath.Join(t.TempDir(), "checkpoint.json"), nil)
	if err := store.Save(&checkpoint.Checkpoint{
		SessionID:  "prior",
		LibraryXML: env.cfg.Paths.LibraryXML,
		Processed:  []int{1, 2},
	}); err != nil {
		t.Fatal(err)
	}

	scanner := env.scanner(t, Deps{Checkpoints: store})
	entries := []catalog.Entry{
		missingEntry(1, "One"),
		missingEntry(2, "Two"),
		missingEntry(3, "Three"),
	}
	summary, err := scanner.Run(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Resumed != 2 {
		t.Errorf("Resumed = %d, want 2", summary.Resumed)
	}
	if summary.Processed() != 1 {
		t.Errorf("Processed = %d, want 1", summary.Processed())
	}

	// Completed run clears the checkpoint.
	cp, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cp != nil {
		t.Error("checkpoint should be cleared after a full run")
	}
}

func TestRunRecordsHistory(t *testing.T) {
	env := newEnv(t, "Testband/Greatest/Hidden Gem.mp3")
	history, err := report.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer history.Close()

	scanner := env.scanner(t, Deps{
		Options: match.Options{Mode: match.ModeAggressive},
		History: history,
	})
	if _, err := scanner.Run(context.Background(), []catalog.Entry{missingEntry(1, "Hidden Gem")}); err != nil {
		t.Fatal(err)
	}

	sessions, err := history.RecentSessions(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || !sessions[0].Finished() {
		t.Fatalf("sessions = %+v", sessions)
	}
	if sessions[0].Totals.Replaced != 1 {
		t.Errorf("Totals = %+v", sessions[0].Totals)
	}

	items, err := history.SessionItems(context.Background(), sessions[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Outcome != report.OutcomeReplaced {
		t.Errorf("items = %+v", items)
	}
}

func TestRunProgressCallback(t *testing.T) {
	env := newEnv(t)
	var calls []int
	scanner := env.scanner(t, Deps{
		Progress: func(done, total int) { calls = append(calls, done) },
	})
	entries := []catalog.Entry{missingEntry(1, "One"), missingEntry(2, "Two")}
	if _, err := scanner.Run(context.Background(), entries); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("progress calls = %v", calls)
	}
}
