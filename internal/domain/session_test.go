package domain

import (
	"testing"
	"time"
)

func TestBudgetExceeded(t *testing.T) {
	start := time.Now()
	sess := &Session{
		Config:    SessionConfig{DurationSeconds: 360},
		StartedAt: start,
	}

	if sess.BudgetExceeded(start.Add(5 * time.Minute)) {
		t.Fatal("budget should not be exceeded at 5 minutes")
	}
	if !sess.BudgetExceeded(start.Add(6 * time.Minute)) {
		t.Fatal("budget should be exceeded at exactly 6 minutes")
	}
	if !sess.BudgetExceeded(start.Add(10 * time.Minute)) {
		t.Fatal("budget should be exceeded at 10 minutes")
	}
}

func TestDifficultyForLevel(t *testing.T) {
	cases := []struct {
		level Level
		want  Difficulty
	}{
		{LevelFresher, DifficultyEasy},
		{LevelIntermediate, DifficultyMedium},
		{LevelExperienced, DifficultyHard},
		{Level("unknown"), DifficultyEasy},
		{Level(""), DifficultyEasy},
	}
	for _, tc := range cases {
		if got := DifficultyForLevel(tc.level); got != tc.want {
			t.Fatalf("DifficultyForLevel(%q) = %s, want %s", tc.level, got, tc.want)
		}
	}
}

func TestScoresClamp(t *testing.T) {
	confidence := -4.0
	s := Scores{Relevance: 12, Clarity: -1, Depth: 5, Confidence: &confidence}
	s.Clamp()
	if s.Relevance != 10 || s.Clarity != 0 || s.Depth != 5 {
		t.Fatalf("unexpected scores: %+v", s)
	}
	if *s.Confidence != 0 {
		t.Fatalf("unexpected confidence: %v", *s.Confidence)
	}
}
