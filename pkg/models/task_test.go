package models

import "testing"

func TestSessionState_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from SessionState
		to   SessionState
		want bool
	}{
		{"initializing to analyzing", StateInitializing, StateAnalyzing, true},
		{"analyzing to spawning", StateAnalyzing, StateSpawning, true},
		{"spawning to coordinating", StateSpawning, StateCoordinating, true},
		{"coordinating to synthesizing", StateCoordinating, StateSynthesizing, true},
		{"synthesizing to validating", StateSynthesizing, StateValidating, true},
		{"validating to learning", StateValidating, StateLearning, true},
		{"learning to completed", StateLearning, StateCompleted, true},
		{"no stage skipping", StateInitializing, StateCoordinating, false},
		{"no backward moves", StateSynthesizing, StateAnalyzing, false},
		{"failed from early stage", StateInitializing, StateFailed, true},
		{"failed from late stage", StateLearning, StateFailed, true},
		{"completed is terminal", StateCompleted, StateFailed, false},
		{"failed is terminal", StateFailed, StateAnalyzing, false},
		{"no self transition", StateAnalyzing, StateAnalyzing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestSessionState_Terminal(t *testing.T) {
	for _, s := range []SessionState{
		StateInitializing, StateAnalyzing, StateSpawning, StateCoordinating,
		StateSynthesizing, StateValidating, StateLearning,
	} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if !StateCompleted.Terminal() || !StateFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}
}

func TestComplexityTier_Rank(t *testing.T) {
	order := []ComplexityTier{TierLow, TierMedium, TierHigh, TierVeryHigh}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Errorf("tier ranks not strictly increasing at %s", order[i])
		}
	}
}

func TestTask_HasLabel(t *testing.T) {
	task := &Task{ID: "42", Title: "x", Labels: []string{"bug", "urgent"}}
	if !task.HasLabel("bug") {
		t.Error("expected bug label")
	}
	if task.HasLabel("Bug") {
		t.Error("label match must be case-sensitive")
	}
	if task.HasLabel("feature") {
		t.Error("unexpected feature label")
	}
}
