package repository

import (
	"strings"
	"time"
)

// TestCase is one input/expected-output pair for a challenge. Hidden cases
// are still graded but never returned to teams.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsHidden       bool   `json:"is_hidden"`
}

type Challenge struct {
	ID               int64
	Title            string
	Description      string
	Difficulty       string
	Category         string
	Points           int
	// Flag is the buildathon answer string. Empty means the challenge is
	// graded by test cases only.
	Flag             string
	TestCases        []TestCase
	AllowedLanguages []int
	CPUTimeLimit     float64
	MemoryLimit      int
	IsActive         bool
	StartTime        *time.Time
	EndTime          *time.Time
	SubmissionCount  int64
	SolvedCount      int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsCurrentlyActive reports whether the challenge accepts submissions at the
// given instant. A nil start or end leaves that side of the window open.
func (ch *Challenge) IsCurrentlyActive(now time.Time) bool {
	if !ch.IsActive {
		return false
	}
	if ch.StartTime != nil && now.Before(*ch.StartTime) {
		return false
	}
	if ch.EndTime != nil && now.After(*ch.EndTime) {
		return false
	}
	return true
}

// IsLanguageAllowed reports whether the language id may be used for this
// challenge. An empty allow-list permits every language.
func (ch *Challenge) IsLanguageAllowed(languageID int) bool {
	if len(ch.AllowedLanguages) == 0 {
		return true
	}
	for _, id := range ch.AllowedLanguages {
		if id == languageID {
			return true
		}
	}
	return false
}

// FlagMatches reports whether the submitted flag is the challenge's answer.
// Comparison ignores surrounding whitespace; an empty stored flag never
// matches.
func (ch *Challenge) FlagMatches(submitted string) bool {
	if ch.Flag == "" {
		return false
	}
	return strings.TrimSpace(submitted) == strings.TrimSpace(ch.Flag)
}

// PublicTestCases returns the non-hidden test cases.
func (ch *Challenge) PublicTestCases() []TestCase {
	public := make([]TestCase, 0, len(ch.TestCases))
	for _, tc := range ch.TestCases {
		if !tc.IsHidden {
			public = append(public, tc)
		}
	}
	return public
}
