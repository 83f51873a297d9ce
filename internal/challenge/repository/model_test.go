package repository

import (
	"testing"
	"time"
)

func TestIsCurrentlyActive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	cases := []struct {
		name      string
		challenge Challenge
		want      bool
	}{
		{"inactive flag", Challenge{IsActive: false}, false},
		{"no window", Challenge{IsActive: true}, true},
		{"inside window", Challenge{IsActive: true, StartTime: &before, EndTime: &after}, true},
		{"before start", Challenge{IsActive: true, StartTime: &after}, false},
		{"after end", Challenge{IsActive: true, EndTime: &before}, false},
		{"open start", Challenge{IsActive: true, EndTime: &after}, true},
		{"open end", Challenge{IsActive: true, StartTime: &before}, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.challenge.IsCurrentlyActive(now); got != tc.want {
				t.Errorf("IsCurrentlyActive = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsLanguageAllowed(t *testing.T) {
	t.Parallel()

	open := Challenge{}
	if !open.IsLanguageAllowed(71) {
		t.Error("empty allow-list should permit any language")
	}

	restricted := Challenge{AllowedLanguages: []int{54, 71}}
	if !restricted.IsLanguageAllowed(71) {
		t.Error("expected 71 to be allowed")
	}
	if restricted.IsLanguageAllowed(62) {
		t.Error("expected 62 to be rejected")
	}
}

func TestPublicTestCases(t *testing.T) {
	t.Parallel()

	ch := Challenge{TestCases: []TestCase{
		{Input: "1", ExpectedOutput: "1", IsHidden: false},
		{Input: "2", ExpectedOutput: "4", IsHidden: true},
		{Input: "3", ExpectedOutput: "9", IsHidden: false},
	}}

	public := ch.PublicTestCases()
	if len(public) != 2 {
		t.Fatalf("expected 2 public cases, got %d", len(public))
	}
	for _, tc := range public {
		if tc.IsHidden {
			t.Error("hidden case leaked into public list")
		}
	}
}

func TestFlagMatches(t *testing.T) {
	t.Parallel()

	ch := &Challenge{Flag: "DUO{m1dnight}"}
	if !ch.FlagMatches(" DUO{m1dnight}\n") {
		t.Error("surrounding whitespace should be ignored")
	}
	if ch.FlagMatches("DUO{midnight}") {
		t.Error("different flag should not match")
	}

	none := &Challenge{}
	if none.FlagMatches("") {
		t.Error("a challenge without a flag should never match")
	}
}
