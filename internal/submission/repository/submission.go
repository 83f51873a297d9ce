package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"duothan/internal/common/db"
)

// TestResult is the graded outcome of one test case. Hidden results are
// stored in full but redacted before they reach teams.
type TestResult struct {
	Index             int     `json:"index"`
	Input             string  `json:"input"`
	ExpectedOutput    string  `json:"expected_output"`
	StatusID          int     `json:"status_id"`
	StatusDescription string  `json:"status_description"`
	Passed            bool    `json:"passed"`
	Stdout            string  `json:"stdout"`
	Stderr            string  `json:"stderr"`
	Time              *string `json:"time,omitempty"`
	Memory            *int    `json:"memory,omitempty"`
	Hidden            bool    `json:"hidden"`
}

// Submission is one grading attempt. The stdout/stderr/message/time/memory
// and exit fields hold the judge's compile-check execution; per-case runs
// live in TestResults.
type Submission struct {
	ID                int64
	TeamID            int64
	ChallengeID       int64
	SourceCode        string
	SourceKey         string
	LanguageID        int
	LanguageName      string
	JudgeToken        string
	StatusID          int
	StatusDescription string
	Score             int
	IsCorrect         bool
	PassedCount       int
	TotalCount        int
	TestResults       []TestResult
	CompileOutput     string
	Stdout            string
	Stderr            string
	Message           string
	Time              *string
	Memory            *int
	ExitCode          *int
	ExitSignal        *int
	SubmittedAt       time.Time
	UpdatedAt         time.Time
	GradedAt          *time.Time
}

// ResultUpdate carries the terminal grading outcome for a submission.
type ResultUpdate struct {
	StatusID          int
	StatusDescription string
	Score             int
	IsCorrect         bool
	PassedCount       int
	TotalCount        int
	TestResults       []TestResult
	CompileOutput     string
	Stdout            string
	Stderr            string
	Message           string
	Time              *string
	Memory            *int
	ExitCode          *int
	ExitSignal        *int
	GradedAt          time.Time
}

type SubmissionRepository interface {
	Create(ctx context.Context, tx db.Transaction, submission *Submission) (int64, error)
	GetByID(ctx context.Context, tx db.Transaction, id int64) (*Submission, error)
	UpdateResult(ctx context.Context, tx db.Transaction, id int64, update ResultUpdate) error
	ListByTeamAndChallenge(ctx context.Context, teamID, challengeID int64, limit int) ([]*Submission, error)
	ListStaleNonTerminal(ctx context.Context, olderThan time.Time, limit int) ([]int64, error)
}

type MySQLSubmissionRepository struct {
	db db.Database
}

func NewSubmissionRepository(database db.Database) SubmissionRepository {
	return &MySQLSubmissionRepository{db: database}
}

const submissionColumns = "id, team_id, challenge_id, source_code, source_key, language_id, language_name, judge_token, status_id, status_description, score, is_correct, passed_count, total_count, test_results, compile_output, stdout, stderr, message, time, memory, exit_code, exit_signal, submitted_at, updated_at, graded_at"

func (r *MySQLSubmissionRepository) Create(ctx context.Context, tx db.Transaction, submission *Submission) (int64, error) {
	if submission == nil {
		return 0, errors.New("submission is nil")
	}

	results, err := marshalResults(submission.TestResults)
	if err != nil {
		return 0, err
	}

	query := "INSERT INTO submissions (team_id, challenge_id, source_code, source_key, language_id, language_name, judge_token, status_id, status_description, score, is_correct, passed_count, total_count, test_results, compile_output, stdout, stderr, message) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	result, err := db.GetQuerier(r.db, tx).Exec(ctx, query,
		submission.TeamID, submission.ChallengeID, submission.SourceCode,
		submission.SourceKey, submission.LanguageID, submission.LanguageName,
		submission.JudgeToken, submission.StatusID,
		submission.StatusDescription, submission.Score, submission.IsCorrect,
		submission.PassedCount, submission.TotalCount, results, submission.CompileOutput,
		submission.Stdout, submission.Stderr, submission.Message)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	submission.ID = id
	return id, nil
}

func (r *MySQLSubmissionRepository) GetByID(ctx context.Context, tx db.Transaction, id int64) (*Submission, error) {
	query := "SELECT " + submissionColumns + " FROM submissions WHERE id = ?"
	submission, err := scanSubmission(db.GetQuerier(r.db, tx).QueryRow(ctx, query, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

func (r *MySQLSubmissionRepository) UpdateResult(ctx context.Context, tx db.Transaction, id int64, update ResultUpdate) error {
	results, err := marshalResults(update.TestResults)
	if err != nil {
		return err
	}

	query := "UPDATE submissions SET status_id = ?, status_description = ?, score = ?, is_correct = ?, passed_count = ?, total_count = ?, test_results = ?, compile_output = ?, stdout = ?, stderr = ?, message = ?, time = ?, memory = ?, exit_code = ?, exit_signal = ?, graded_at = ?, updated_at = NOW() WHERE id = ?"
	result, err := db.GetQuerier(r.db, tx).Exec(ctx, query,
		update.StatusID, update.StatusDescription, update.Score, update.IsCorrect,
		update.PassedCount, update.TotalCount, results, update.CompileOutput,
		update.Stdout, update.Stderr, update.Message, update.Time, update.Memory,
		update.ExitCode, update.ExitSignal, update.GradedAt, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (r *MySQLSubmissionRepository) ListByTeamAndChallenge(ctx context.Context, teamID, challengeID int64, limit int) ([]*Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	query := "SELECT " + submissionColumns + " FROM submissions WHERE team_id = ? AND challenge_id = ? ORDER BY id DESC LIMIT ?"
	rows, err := r.db.Query(ctx, query, teamID, challengeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []*Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, rows.Err()
}

func (r *MySQLSubmissionRepository) ListStaleNonTerminal(ctx context.Context, olderThan time.Time, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = 100
	}
	query := "SELECT id FROM submissions WHERE status_id < 3 AND submitted_at < ? ORDER BY id LIMIT ?"
	rows, err := r.db.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func marshalResults(results []TestResult) (string, error) {
	if results == nil {
		results = []TestResult{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func scanSubmission(scanner db.Scanner) (*Submission, error) {
	var submission Submission
	var results string
	var execTime sql.NullString
	var memory, exitCode, exitSignal sql.NullInt64
	var gradedAt sql.NullTime

	err := scanner.Scan(
		&submission.ID,
		&submission.TeamID,
		&submission.ChallengeID,
		&submission.SourceCode,
		&submission.SourceKey,
		&submission.LanguageID,
		&submission.LanguageName,
		&submission.JudgeToken,
		&submission.StatusID,
		&submission.StatusDescription,
		&submission.Score,
		&submission.IsCorrect,
		&submission.PassedCount,
		&submission.TotalCount,
		&results,
		&submission.CompileOutput,
		&submission.Stdout,
		&submission.Stderr,
		&submission.Message,
		&execTime,
		&memory,
		&exitCode,
		&exitSignal,
		&submission.SubmittedAt,
		&submission.UpdatedAt,
		&gradedAt,
	)
	if err != nil {
		return nil, err
	}

	if results != "" {
		if err := json.Unmarshal([]byte(results), &submission.TestResults); err != nil {
			return nil, err
		}
	}
	if execTime.Valid {
		submission.Time = &execTime.String
	}
	if memory.Valid {
		m := int(memory.Int64)
		submission.Memory = &m
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		submission.ExitCode = &code
	}
	if exitSignal.Valid {
		signal := int(exitSignal.Int64)
		submission.ExitSignal = &signal
	}
	if gradedAt.Valid {
		submission.GradedAt = &gradedAt.Time
	}
	return &submission, nil
}
