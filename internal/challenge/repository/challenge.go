package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"duothan/internal/common/cache"
	"duothan/internal/common/db"
)

type ChallengeRepository interface {
	Create(ctx context.Context, tx db.Transaction, challenge *Challenge) (int64, error)
	Update(ctx context.Context, tx db.Transaction, challenge *Challenge) error
	GetByID(ctx context.Context, tx db.Transaction, id int64) (*Challenge, error)
	List(ctx context.Context, activeOnly bool) ([]*Challenge, error)
	IncrementSubmissionCount(ctx context.Context, tx db.Transaction, challengeID int64) error
	IncrementSolvedCount(ctx context.Context, tx db.Transaction, challengeID int64) error
	RecordSolve(ctx context.Context, tx db.Transaction, challengeID, teamID int64) error
	HasSolved(ctx context.Context, challengeID, teamID int64) (bool, error)
}

type MySQLChallengeRepository struct {
	db       db.Database
	cache    cache.Cache
	ttl      time.Duration
	emptyTTL time.Duration
}

const (
	challengeInfoKeyPrefix = "challenge:info:"

	defaultChallengeCacheTTL      = 10 * time.Minute
	defaultChallengeCacheEmptyTTL = time.Minute
)

func NewChallengeRepository(database db.Database, cacheClient cache.Cache) ChallengeRepository {
	return &MySQLChallengeRepository{
		db:       database,
		cache:    cacheClient,
		ttl:      defaultChallengeCacheTTL,
		emptyTTL: defaultChallengeCacheEmptyTTL,
	}
}

const challengeColumns = "id, title, description, difficulty, category, points, flag, cpu_time_limit, memory_limit, is_active, start_time, end_time, submission_count, solved_count, created_at, updated_at"

func (r *MySQLChallengeRepository) Create(ctx context.Context, tx db.Transaction, challenge *Challenge) (int64, error) {
	if challenge == nil {
		return 0, errors.New("challenge is nil")
	}

	query := "INSERT INTO challenges (title, description, difficulty, category, points, flag, cpu_time_limit, memory_limit, is_active, start_time, end_time) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	result, err := db.GetQuerier(r.db, tx).Exec(ctx, query,
		challenge.Title, challenge.Description, challenge.Difficulty, challenge.Category,
		challenge.Points, challenge.Flag,
		challenge.CPUTimeLimit, challenge.MemoryLimit, challenge.IsActive,
		nullTime(challenge.StartTime), nullTime(challenge.EndTime))
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	challenge.ID = id

	if err := r.replaceChildren(ctx, tx, challenge); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *MySQLChallengeRepository) Update(ctx context.Context, tx db.Transaction, challenge *Challenge) error {
	if challenge == nil {
		return errors.New("challenge is nil")
	}

	query := "UPDATE challenges SET title = ?, description = ?, difficulty = ?, category = ?, points = ?, flag = ?, cpu_time_limit = ?, memory_limit = ?, is_active = ?, start_time = ?, end_time = ?, updated_at = NOW() WHERE id = ?"
	result, err := db.GetQuerier(r.db, tx).Exec(ctx, query,
		challenge.Title, challenge.Description, challenge.Difficulty, challenge.Category,
		challenge.Points, challenge.Flag,
		challenge.CPUTimeLimit, challenge.MemoryLimit, challenge.IsActive,
		nullTime(challenge.StartTime), nullTime(challenge.EndTime), challenge.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrChallengeNotFound
	}

	if err := r.replaceChildren(ctx, tx, challenge); err != nil {
		return err
	}
	r.invalidateCache(ctx, challenge.ID)
	return nil
}

func (r *MySQLChallengeRepository) GetByID(ctx context.Context, tx db.Transaction, id int64) (*Challenge, error) {
	if r.cache != nil && tx == nil {
		challenge, err := cache.GetWithCached[*Challenge](
			ctx,
			r.cache,
			challengeInfoKey(id),
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(ch *Challenge) bool { return ch == nil },
			marshalChallenge,
			unmarshalChallenge,
			func(ctx context.Context) (*Challenge, error) {
				ch, err := r.getByIDFromDB(ctx, nil, id)
				if err != nil {
					if errors.Is(err, ErrChallengeNotFound) {
						return nil, nil
					}
					return nil, err
				}
				return ch, nil
			},
		)
		if err != nil {
			return nil, err
		}
		if challenge == nil {
			return nil, ErrChallengeNotFound
		}
		return challenge, nil
	}
	return r.getByIDFromDB(ctx, tx, id)
}

func (r *MySQLChallengeRepository) List(ctx context.Context, activeOnly bool) ([]*Challenge, error) {
	query := "SELECT " + challengeColumns + " FROM challenges"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []*Challenge
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ch := range challenges {
		if err := r.loadChildren(ctx, nil, ch); err != nil {
			return nil, err
		}
	}
	return challenges, nil
}

func (r *MySQLChallengeRepository) IncrementSubmissionCount(ctx context.Context, tx db.Transaction, challengeID int64) error {
	return r.incrementCounter(ctx, tx, challengeID, "submission_count")
}

func (r *MySQLChallengeRepository) IncrementSolvedCount(ctx context.Context, tx db.Transaction, challengeID int64) error {
	return r.incrementCounter(ctx, tx, challengeID, "solved_count")
}

// RecordSolve inserts the (challenge, team) solve row. The unique key on the
// pair makes it the serialization point for first-solve detection: a
// duplicate insert reports ErrAlreadySolved.
func (r *MySQLChallengeRepository) RecordSolve(ctx context.Context, tx db.Transaction, challengeID, teamID int64) error {
	query := "INSERT INTO challenge_solves (challenge_id, team_id) VALUES (?, ?)"
	_, err := db.GetQuerier(r.db, tx).Exec(ctx, query, challengeID, teamID)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return ErrAlreadySolved
		}
		return err
	}
	return nil
}

// HasSolved reports whether the team already has a solve recorded.
func (r *MySQLChallengeRepository) HasSolved(ctx context.Context, challengeID, teamID int64) (bool, error) {
	query := "SELECT 1 FROM challenge_solves WHERE challenge_id = ? AND team_id = ? LIMIT 1"
	var one int
	err := r.db.QueryRow(ctx, query, challengeID, teamID).Scan(&one)
	if err != nil {
		if db.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *MySQLChallengeRepository) incrementCounter(ctx context.Context, tx db.Transaction, challengeID int64, column string) error {
	query := fmt.Sprintf("UPDATE challenges SET %s = %s + 1, updated_at = NOW() WHERE id = ?", column, column)
	result, err := db.GetQuerier(r.db, tx).Exec(ctx, query, challengeID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrChallengeNotFound
	}
	r.invalidateCache(ctx, challengeID)
	return nil
}

func (r *MySQLChallengeRepository) getByIDFromDB(ctx context.Context, tx db.Transaction, id int64) (*Challenge, error) {
	query := "SELECT " + challengeColumns + " FROM challenges WHERE id = ?"
	ch, err := scanChallenge(db.GetQuerier(r.db, tx).QueryRow(ctx, query, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, tx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *MySQLChallengeRepository) loadChildren(ctx context.Context, tx db.Transaction, ch *Challenge) error {
	querier := db.GetQuerier(r.db, tx)

	rows, err := querier.Query(ctx, "SELECT input, expected_output, is_hidden FROM challenge_test_cases WHERE challenge_id = ? ORDER BY position", ch.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var tc TestCase
		if err := rows.Scan(&tc.Input, &tc.ExpectedOutput, &tc.IsHidden); err != nil {
			return err
		}
		ch.TestCases = append(ch.TestCases, tc)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	langRows, err := querier.Query(ctx, "SELECT language_id FROM challenge_allowed_languages WHERE challenge_id = ? ORDER BY language_id", ch.ID)
	if err != nil {
		return err
	}
	defer langRows.Close()
	for langRows.Next() {
		var id int
		if err := langRows.Scan(&id); err != nil {
			return err
		}
		ch.AllowedLanguages = append(ch.AllowedLanguages, id)
	}
	return langRows.Err()
}

func (r *MySQLChallengeRepository) replaceChildren(ctx context.Context, tx db.Transaction, ch *Challenge) error {
	querier := db.GetQuerier(r.db, tx)

	if _, err := querier.Exec(ctx, "DELETE FROM challenge_test_cases WHERE challenge_id = ?", ch.ID); err != nil {
		return err
	}
	for i, tc := range ch.TestCases {
		if _, err := querier.Exec(ctx,
			"INSERT INTO challenge_test_cases (challenge_id, position, input, expected_output, is_hidden) VALUES (?, ?, ?, ?, ?)",
			ch.ID, i, tc.Input, tc.ExpectedOutput, tc.IsHidden); err != nil {
			return err
		}
	}

	if _, err := querier.Exec(ctx, "DELETE FROM challenge_allowed_languages WHERE challenge_id = ?", ch.ID); err != nil {
		return err
	}
	for _, id := range ch.AllowedLanguages {
		if _, err := querier.Exec(ctx,
			"INSERT INTO challenge_allowed_languages (challenge_id, language_id) VALUES (?, ?)",
			ch.ID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *MySQLChallengeRepository) invalidateCache(ctx context.Context, challengeID int64) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Del(ctx, challengeInfoKey(challengeID))
}

func challengeInfoKey(id int64) string {
	return fmt.Sprintf("%s%d", challengeInfoKeyPrefix, id)
}

func marshalChallenge(ch *Challenge) string {
	payload, err := json.Marshal(ch)
	if err != nil {
		return ""
	}
	return string(payload)
}

func unmarshalChallenge(data string) (*Challenge, error) {
	if data == "" {
		return nil, nil
	}
	var ch Challenge
	if err := json.Unmarshal([]byte(data), &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func scanChallenge(scanner db.Scanner) (*Challenge, error) {
	var ch Challenge
	var startTime, endTime sql.NullTime

	err := scanner.Scan(
		&ch.ID,
		&ch.Title,
		&ch.Description,
		&ch.Difficulty,
		&ch.Category,
		&ch.Points,
		&ch.Flag,
		&ch.CPUTimeLimit,
		&ch.MemoryLimit,
		&ch.IsActive,
		&startTime,
		&endTime,
		&ch.SubmissionCount,
		&ch.SolvedCount,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startTime.Valid {
		ch.StartTime = &startTime.Time
	}
	if endTime.Valid {
		ch.EndTime = &endTime.Time
	}
	return &ch, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
