package service

import (
	"fmt"
	"strconv"
	"time"

	"duothan/internal/judge"
	"duothan/internal/submission/repository"
)

// TestResultView is one test case outcome as shown to teams. Hidden cases
// keep their verdict and actual output but lose the input and expected
// output they were checked against.
type TestResultView struct {
	Index             int    `json:"index"`
	Input             string `json:"input"`
	ExpectedOutput    string `json:"expected_output"`
	StatusID          int    `json:"status_id"`
	StatusDescription string `json:"status_description"`
	Passed            bool   `json:"passed"`
	Stdout            string `json:"stdout"`
	Stderr            string `json:"stderr"`
	FormattedTime     string `json:"formatted_time"`
	FormattedMemory   string `json:"formatted_memory"`
	Hidden            bool   `json:"hidden"`
}

// SubmissionView is a submission as shown to the owning team.
type SubmissionView struct {
	ID                int64            `json:"id"`
	ChallengeID       int64            `json:"challenge_id"`
	LanguageID        int              `json:"language_id"`
	LanguageName      string           `json:"language_name"`
	StatusID          int              `json:"status_id"`
	StatusDescription string           `json:"status_description"`
	IsCompleted       bool             `json:"is_completed"`
	Score             int              `json:"score"`
	IsCorrect         bool             `json:"is_correct"`
	PassedCount       int              `json:"passed_count"`
	TotalCount        int              `json:"total_count"`
	TestResults       []TestResultView `json:"test_results"`
	CompileOutput     string           `json:"compile_output"`
	Stdout            string           `json:"stdout"`
	Stderr            string           `json:"stderr"`
	Message           string           `json:"message"`
	FormattedTime     string           `json:"formatted_time"`
	FormattedMemory   string           `json:"formatted_memory"`
	ExitCode          *int             `json:"exit_code,omitempty"`
	ExitSignal        *int             `json:"exit_signal,omitempty"`
	SubmittedAt       time.Time        `json:"submitted_at"`
	GradedAt          *time.Time       `json:"graded_at,omitempty"`
}

// CreateView is the immediate response to a new submission. It carries the
// judge token so clients can watch the raw execution while grading runs.
type CreateView struct {
	SubmissionView
	Token string `json:"token"`
}

// ToView projects a submission for the owning team, withholding hidden test
// case inputs and expected outputs.
func ToView(submission *repository.Submission) SubmissionView {
	results := make([]TestResultView, 0, len(submission.TestResults))
	for _, r := range submission.TestResults {
		view := TestResultView{
			Index:             r.Index,
			Input:             r.Input,
			ExpectedOutput:    r.ExpectedOutput,
			StatusID:          r.StatusID,
			StatusDescription: r.StatusDescription,
			Passed:            r.Passed,
			Stdout:            r.Stdout,
			Stderr:            r.Stderr,
			FormattedTime:     FormattedTime(r.Time),
			FormattedMemory:   FormattedMemory(r.Memory),
			Hidden:            r.Hidden,
		}
		if r.Hidden {
			view.Input = ""
			view.ExpectedOutput = ""
		}
		results = append(results, view)
	}

	return SubmissionView{
		ID:                submission.ID,
		ChallengeID:       submission.ChallengeID,
		LanguageID:        submission.LanguageID,
		LanguageName:      submission.LanguageName,
		StatusID:          submission.StatusID,
		StatusDescription: submission.StatusDescription,
		IsCompleted:       judge.IsTerminalStatus(submission.StatusID),
		Score:             submission.Score,
		IsCorrect:         submission.IsCorrect,
		PassedCount:       submission.PassedCount,
		TotalCount:        submission.TotalCount,
		TestResults:       results,
		CompileOutput:     submission.CompileOutput,
		Stdout:            submission.Stdout,
		Stderr:            submission.Stderr,
		Message:           submission.Message,
		FormattedTime:     FormattedTime(submission.Time),
		FormattedMemory:   FormattedMemory(submission.Memory),
		ExitCode:          submission.ExitCode,
		ExitSignal:        submission.ExitSignal,
		SubmittedAt:       submission.SubmittedAt,
		GradedAt:          submission.GradedAt,
	}
}

// ToCreateView projects a freshly queued submission, token included.
func ToCreateView(submission *repository.Submission) CreateView {
	return CreateView{
		SubmissionView: ToView(submission),
		Token:          submission.JudgeToken,
	}
}

// FormattedTime renders the judge's wall-clock seconds as "0.042s".
// Missing or unparsable values render empty.
func FormattedTime(t *string) string {
	if t == nil || *t == "" {
		return ""
	}
	seconds, err := strconv.ParseFloat(*t, 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%.3fs", seconds)
}

// FormattedMemory renders the judge's kilobyte count as megabytes, "1.25 MB".
// A missing value renders empty.
func FormattedMemory(kb *int) string {
	if kb == nil {
		return ""
	}
	return fmt.Sprintf("%.2f MB", float64(*kb)/1024)
}
