package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"duothan/internal/common/cache"
	appErr "duothan/pkg/errors"
)

const statusKeyPrefix = "submission:status:"

// StatusSnapshot is the cached view of a submission's grading progress,
// served while the authoritative row is still being written.
type StatusSnapshot struct {
	SubmissionID      int64  `json:"submission_id"`
	StatusID          int    `json:"status_id"`
	StatusDescription string `json:"status_description"`
	Score             int    `json:"score"`
	IsCorrect         bool   `json:"is_correct"`
	Graded            bool   `json:"graded"`
}

// StatusCache stores grading snapshots in the shared cache.
type StatusCache struct {
	cache cache.Cache
	TTL   time.Duration
}

// NewStatusCache creates a new StatusCache.
func NewStatusCache(cacheClient cache.Cache, ttl time.Duration) *StatusCache {
	return &StatusCache{cache: cacheClient, TTL: ttl}
}

// Get returns the snapshot for a submission id.
func (r *StatusCache) Get(ctx context.Context, submissionID int64) (StatusSnapshot, error) {
	if submissionID <= 0 {
		return StatusSnapshot{}, appErr.ValidationError("submission_id", "required")
	}
	if r.cache == nil {
		return StatusSnapshot{}, appErr.New(appErr.CacheError).WithMessage("cache client is not initialized")
	}
	val, err := r.cache.Get(ctx, statusKey(submissionID))
	if err != nil || val == "" {
		return StatusSnapshot{}, appErr.New(appErr.NotFound).WithMessage("submission status not found")
	}
	var snapshot StatusSnapshot
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		return StatusSnapshot{}, appErr.Wrapf(err, appErr.CacheError, "decode status snapshot failed")
	}
	return snapshot, nil
}

// Save persists the snapshot.
func (r *StatusCache) Save(ctx context.Context, snapshot StatusSnapshot) error {
	if snapshot.SubmissionID <= 0 {
		return appErr.ValidationError("submission_id", "required")
	}
	if r.cache == nil {
		return appErr.New(appErr.CacheError).WithMessage("cache client is not initialized")
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal status snapshot failed: %w", err)
	}
	if err := r.cache.Set(ctx, statusKey(snapshot.SubmissionID), string(data), r.TTL); err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "store status snapshot failed")
	}
	return nil
}

func statusKey(submissionID int64) string {
	return statusKeyPrefix + strconv.FormatInt(submissionID, 10)
}
