package match

import "testing"

func scoredList(scores ...float64) []ScoredCandidate {
	list := make([]ScoredCandidate, 0, len(scores))
	for _, s := range scores {
		list = append(list, ScoredCandidate{Score: s})
	}
	return list
}

func TestDecideThresholdBoundary(t *testing.T) {
	opts := Options{Mode: ModeConservative, Threshold: 88.0}

	below := Decide(scoredList(87.9), opts)
	if below.Action != Reject {
		t.Errorf("score 87.9: action = %v, want reject", below.Action)
	}

	at := Decide(scoredList(88.0), opts)
	if at.Action != AutoAccept || at.Index != 0 {
		t.Errorf("score 88.0: got %+v, want auto-accept of index 0", at)
	}
}

func TestDecideModeOff(t *testing.T) {
	got := Decide(scoredList(99.9), Options{Mode: ModeOff})
	if got.Action != Reject {
		t.Errorf("mode off: action = %v, want reject", got.Action)
	}
}

func TestDecideInteractiveAlwaysPrompts(t *testing.T) {
	got := Decide(scoredList(99.9), Options{Mode: ModeAggressive, Interactive: true})
	if got.Action != Prompt {
		t.Errorf("interactive: action = %v, want prompt", got.Action)
	}
}

func TestDecideEmptyCandidates(t *testing.T) {
	got := Decide(nil, Options{Mode: ModeAggressive})
	if got.Action != Reject {
		t.Errorf("no candidates: action = %v, want reject", got.Action)
	}
}

func TestDecideModeDefaultThreshold(t *testing.T) {
	// No explicit threshold: the mode supplies its default.
	got := Decide(scoredList(85.0), Options{Mode: ModeModerate})
	if got.Action != AutoAccept {
		t.Errorf("moderate default threshold: action = %v, want auto-accept", got.Action)
	}
	got = Decide(scoredList(85.0), Options{Mode: ModeConservative})
	if got.Action != Reject {
		t.Errorf("conservative default threshold: action = %v, want reject", got.Action)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"off", ModeOff, false},
		{"", ModeOff, false},
		{"Conservative", ModeConservative, false},
		{" moderate ", ModeModerate, false},
		{"aggressive", ModeAggressive, false},
		{"bogus", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestModeDefaultThresholds(t *testing.T) {
	if got := ModeConservative.DefaultThreshold(); got != 88.0 {
		t.Errorf("conservative threshold = %v, want 88", got)
	}
	if got := ModeModerate.DefaultThreshold(); got != 80.0 {
		t.Errorf("moderate threshold = %v, want 80", got)
	}
	if got := ModeAggressive.DefaultThreshold(); got != 70.0 {
		t.Errorf("aggressive threshold = %v, want 70", got)
	}
	if got := ModeOff.DefaultThreshold(); got != 0 {
		t.Errorf("off threshold = %v, want 0", got)
	}
}
