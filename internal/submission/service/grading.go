package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	challengeRepo "duothan/internal/challenge/repository"
	"duothan/internal/common/cache"
	"duothan/internal/common/storage"
	"duothan/internal/judge"
	"duothan/internal/submission/repository"
	appErr "duothan/pkg/errors"
	"duothan/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	rateTeamKeyPrefix   = "submission:rate:team:"
	defaultSourcePrefix = "submissions"
	defaultMaxCodeBytes = 64 * 1024
	defaultGradeTimeout = 10 * time.Minute
	defaultStatusTTL    = time.Hour
)

// JudgeClient is the slice of the judge API the grader needs.
type JudgeClient interface {
	Submit(ctx context.Context, req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error)
	GetResult(ctx context.Context, token string, fields ...string) (judge.SubmissionResult, error)
	PollUntilTerminal(ctx context.Context, token string, maxAttempts int, interval time.Duration) (judge.SubmissionResult, error)
	Language(ctx context.Context, id int) (judge.Language, error)
}

// RateLimitConfig holds throttling configuration.
type RateLimitConfig struct {
	TeamMax int
	Window  time.Duration
}

// TimeoutConfig holds timeout settings for external calls.
type TimeoutConfig struct {
	DB      time.Duration
	Cache   time.Duration
	Storage time.Duration
	Grade   time.Duration
}

// Config holds submission service dependencies and settings.
type Config struct {
	SubmissionRepo repository.SubmissionRepository
	ChallengeRepo  challengeRepo.ChallengeRepository
	Judge          JudgeClient
	StatusCache    *repository.StatusCache
	Events         repository.EventPublisher
	Storage        storage.ObjectStorage
	Cache          cache.Cache

	SourceBucket    string
	SourceKeyPrefix string
	MaxCodeBytes    int
	PollMaxAttempts int
	PollInterval    time.Duration
	RateLimit       RateLimitConfig
	Timeouts        TimeoutConfig
}

// SubmissionService accepts submissions and grades them against the judge.
type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	challengeRepo  challengeRepo.ChallengeRepository
	judgeClient    JudgeClient
	statusCache    *repository.StatusCache
	events         repository.EventPublisher
	storage        storage.ObjectStorage
	cache          cache.Cache

	sourceBucket    string
	sourceKeyPrefix string
	maxCodeBytes    int
	pollMaxAttempts int
	pollInterval    time.Duration
	rateLimit       RateLimitConfig
	timeouts        TimeoutConfig
}

// SubmitInput describes a grading request.
type SubmitInput struct {
	TeamID      int64
	ChallengeID int64
	LanguageID  int
	SourceCode  string
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(cfg Config) (*SubmissionService, error) {
	if cfg.SubmissionRepo == nil {
		return nil, fmt.Errorf("submission repository is required")
	}
	if cfg.ChallengeRepo == nil {
		return nil, fmt.Errorf("challenge repository is required")
	}
	if cfg.Judge == nil {
		return nil, fmt.Errorf("judge client is required")
	}
	if cfg.SourceKeyPrefix == "" {
		cfg.SourceKeyPrefix = defaultSourcePrefix
	}
	if cfg.MaxCodeBytes <= 0 {
		cfg.MaxCodeBytes = defaultMaxCodeBytes
	}
	if cfg.Timeouts.Grade <= 0 {
		cfg.Timeouts.Grade = defaultGradeTimeout
	}
	return &SubmissionService{
		submissionRepo:  cfg.SubmissionRepo,
		challengeRepo:   cfg.ChallengeRepo,
		judgeClient:     cfg.Judge,
		statusCache:     cfg.StatusCache,
		events:          cfg.Events,
		storage:         cfg.Storage,
		cache:           cfg.Cache,
		sourceBucket:    cfg.SourceBucket,
		sourceKeyPrefix: cfg.SourceKeyPrefix,
		maxCodeBytes:    cfg.MaxCodeBytes,
		pollMaxAttempts: cfg.PollMaxAttempts,
		pollInterval:    cfg.PollInterval,
		rateLimit:       cfg.RateLimit,
		timeouts:        cfg.Timeouts,
	}, nil
}

// Submit validates and persists a submission, dispatches the compile probe,
// and starts grading in the background. It returns as soon as the submission
// is queued.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*repository.Submission, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	if err := s.checkRateLimit(ctx, input.TeamID); err != nil {
		return nil, err
	}

	challenge, err := s.getChallenge(ctx, input.ChallengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.IsCurrentlyActive(time.Now()) {
		return nil, appErr.New(appErr.ChallengeInactive)
	}
	if !challenge.IsLanguageAllowed(input.LanguageID) {
		return nil, appErr.New(appErr.LanguageNotAllowed).WithDetail("language_id", input.LanguageID)
	}
	if len(challenge.TestCases) == 0 {
		return nil, appErr.New(appErr.TestCaseInvalid).WithMessage("challenge has no test cases")
	}

	// Display name only; a lookup failure must not block the submission.
	languageName := ""
	if lang, lookupErr := s.judgeClient.Language(ctx, input.LanguageID); lookupErr != nil {
		logger.Warn(ctx, "language name lookup failed",
			zap.Int("language_id", input.LanguageID), zap.Error(lookupErr))
	} else {
		languageName = lang.Name
	}

	// Non-blocking compile probe. The background grader polls this token
	// before running the test cases.
	probe, err := s.judgeClient.Submit(ctx, judge.SubmissionRequest{
		SourceCode:   input.SourceCode,
		LanguageID:   input.LanguageID,
		CPUTimeLimit: challenge.CPUTimeLimit,
		MemoryLimit:  challenge.MemoryLimit,
	}, false)
	if err != nil {
		return nil, err
	}
	if probe.Token == "" {
		return nil, appErr.New(appErr.JudgeAPIError).WithMessage("judge returned no token")
	}

	sourceKey, err := s.archiveSource(ctx, input.SourceCode)
	if err != nil {
		return nil, err
	}

	submission := &repository.Submission{
		TeamID:            input.TeamID,
		ChallengeID:       input.ChallengeID,
		SourceCode:        input.SourceCode,
		SourceKey:         sourceKey,
		LanguageID:        input.LanguageID,
		LanguageName:      languageName,
		JudgeToken:        probe.Token,
		StatusID:          judge.StatusInQueue,
		StatusDescription: judge.StatusDescription(judge.StatusInQueue),
	}
	if err := s.createSubmission(ctx, submission); err != nil {
		return nil, err
	}

	if err := s.challengeRepo.IncrementSubmissionCount(ctx, nil, input.ChallengeID); err != nil {
		logger.Warn(ctx, "increment submission count failed",
			zap.Int64("challenge_id", input.ChallengeID), zap.Error(err))
	}

	s.saveSnapshot(ctx, submission, false)

	go s.grade(submission, challenge)

	return submission, nil
}

// GetSubmission returns one submission, enforcing team ownership.
func (s *SubmissionService) GetSubmission(ctx context.Context, teamID, submissionID int64) (*repository.Submission, error) {
	ctxDB := withTimeout(ctx, s.timeouts.DB)
	defer ctxDB.cancel()

	submission, err := s.submissionRepo.GetByID(ctxDB.ctx, nil, submissionID)
	if err != nil {
		if stderrors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, appErr.New(appErr.SubmissionNotFound)
		}
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "get submission failed")
	}
	if submission.TeamID != teamID {
		return nil, appErr.New(appErr.SubmissionAccessDenied)
	}
	return submission, nil
}

// GetStatus returns the lightweight grading snapshot for a submission,
// serving from cache when possible.
func (s *SubmissionService) GetStatus(ctx context.Context, teamID, submissionID int64) (repository.StatusSnapshot, error) {
	submission, err := s.GetSubmission(ctx, teamID, submissionID)
	if err != nil {
		return repository.StatusSnapshot{}, err
	}

	if s.statusCache != nil {
		ctxCache := withTimeout(ctx, s.timeouts.Cache)
		snapshot, cacheErr := s.statusCache.Get(ctxCache.ctx, submissionID)
		ctxCache.cancel()
		if cacheErr == nil && snapshot.Graded {
			return snapshot, nil
		}
	}

	snapshot := snapshotOf(submission)
	if !snapshot.Graded && submission.JudgeToken != "" {
		// The grader owns the persisted state. While it is still running we
		// surface the judge's queue/processing stage but never fail the
		// request on it. Terminal per-case results are left to the grader.
		result, judgeErr := s.judgeClient.GetResult(ctx, submission.JudgeToken, "status")
		if judgeErr != nil {
			logger.Warn(ctx, "live status refresh failed",
				zap.Int64("submission_id", submission.ID), zap.Error(judgeErr))
		} else if !judge.IsTerminalStatus(result.Status.ID) && result.Status.ID > snapshot.StatusID {
			snapshot.StatusID = result.Status.ID
			snapshot.StatusDescription = result.Status.Description
		}
	}
	s.saveSnapshot(ctx, submission, snapshot.Graded)
	return snapshot, nil
}

// List returns a team's submissions for one challenge, newest first.
func (s *SubmissionService) List(ctx context.Context, teamID, challengeID int64, limit int) ([]*repository.Submission, error) {
	ctxDB := withTimeout(ctx, s.timeouts.DB)
	defer ctxDB.cancel()

	submissions, err := s.submissionRepo.ListByTeamAndChallenge(ctxDB.ctx, teamID, challengeID, limit)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "list submissions failed")
	}
	return submissions, nil
}

// SourceView carries a submission's source code for download.
type SourceView struct {
	SubmissionID int64  `json:"submission_id"`
	ChallengeID  int64  `json:"challenge_id"`
	LanguageID   int    `json:"language_id"`
	SourceCode   string `json:"source_code"`
	FromArchive  bool   `json:"from_archive"`
}

// GetSource returns the source code of a team's own submission. The archived
// object is preferred when present, with the database copy as a fallback.
func (s *SubmissionService) GetSource(ctx context.Context, teamID, submissionID int64) (SourceView, error) {
	submission, err := s.GetSubmission(ctx, teamID, submissionID)
	if err != nil {
		return SourceView{}, err
	}
	view := SourceView{
		SubmissionID: submission.ID,
		ChallengeID:  submission.ChallengeID,
		LanguageID:   submission.LanguageID,
		SourceCode:   submission.SourceCode,
	}
	if s.storage == nil || submission.SourceKey == "" {
		return view, nil
	}

	ctxStorage := withTimeout(ctx, s.timeouts.Storage)
	defer ctxStorage.cancel()
	object, err := s.storage.GetObject(ctxStorage.ctx, s.sourceBucket, submission.SourceKey)
	if err != nil {
		logger.Warn(ctx, "read archived source failed",
			zap.Int64("submission_id", submission.ID),
			zap.String("source_key", submission.SourceKey),
			zap.Error(err))
		return view, nil
	}
	defer func() { _ = object.Close() }()
	data, err := io.ReadAll(object)
	if err != nil {
		logger.Warn(ctx, "read archived source failed",
			zap.Int64("submission_id", submission.ID),
			zap.Error(err))
		return view, nil
	}
	view.SourceCode = string(data)
	view.FromArchive = true
	return view, nil
}

// FailStale marks submissions stuck in a non-terminal state as internal
// errors. The reaper calls this periodically.
func (s *SubmissionService) FailStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	ids, err := s.submissionRepo.ListStaleNonTerminal(ctx, olderThan, limit)
	if err != nil {
		return 0, appErr.Wrapf(err, appErr.DatabaseError, "list stale submissions failed")
	}
	for _, id := range ids {
		s.markInternalError(ctx, id, fmt.Errorf("grading did not finish before %s", olderThan.Format(time.RFC3339)))
	}
	return len(ids), nil
}

// grade runs the full grading pipeline for one submission. It owns its own
// context: the HTTP request that queued the submission has already returned.
func (s *SubmissionService) grade(submission *repository.Submission, challenge *challengeRepo.Challenge) {
	submissionID := submission.ID
	teamID := submission.TeamID

	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.Grade)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "grading panicked",
				zap.Int64("submission_id", submissionID), zap.Any("panic", r))
			s.markInternalError(ctx, submissionID, fmt.Errorf("grading panicked: %v", r))
		}
	}()

	compile, err := s.judgeClient.PollUntilTerminal(ctx, submission.JudgeToken, s.pollMaxAttempts, s.pollInterval)
	if err != nil {
		s.markInternalError(ctx, submissionID, err)
		return
	}

	if compile.Status.ID == judge.StatusCompilationError {
		update := repository.ResultUpdate{
			StatusID:          judge.StatusCompilationError,
			StatusDescription: judge.StatusDescription(judge.StatusCompilationError),
			Score:             0,
			IsCorrect:         false,
			TotalCount:        len(challenge.TestCases),
			TestResults:       []repository.TestResult{},
			GradedAt:          time.Now(),
		}
		applyExecution(&update, compile)
		s.finalize(ctx, submissionID, teamID, challenge, update)
		return
	}

	results := make([]repository.TestResult, 0, len(challenge.TestCases))
	passed := 0
	for i, tc := range challenge.TestCases {
		outcome := repository.TestResult{
			Index:          i,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Hidden:         tc.IsHidden,
		}

		result, runErr := s.runTestCase(ctx, submission, challenge, tc.Input)
		if runErr != nil {
			// One unreachable run costs that case, not the whole grade.
			logger.Warn(ctx, "test case execution failed",
				zap.Int64("submission_id", submissionID), zap.Int("test_case", i), zap.Error(runErr))
			outcome.StatusID = judge.StatusInternalError
			outcome.StatusDescription = judge.StatusDescription(judge.StatusInternalError)
			results = append(results, outcome)
			continue
		}

		outcome.StatusID = result.Status.ID
		outcome.StatusDescription = judge.StatusDescription(result.Status.ID)
		outcome.Stdout = stringValue(result.Stdout)
		outcome.Stderr = stringValue(result.Stderr)
		outcome.Time = result.Time
		outcome.Memory = result.Memory
		outcome.Passed = result.Status.ID == judge.StatusAccepted &&
			strings.TrimSpace(outcome.Stdout) == strings.TrimSpace(tc.ExpectedOutput)
		if outcome.Passed {
			passed++
		}
		results = append(results, outcome)
	}

	total := len(results)
	isCorrect := total > 0 && passed == total
	score := int(math.Round(float64(passed) / float64(total) * 100))

	update := repository.ResultUpdate{
		StatusID:          overallStatus(results, isCorrect),
		StatusDescription: judge.StatusDescription(overallStatus(results, isCorrect)),
		Score:             score,
		IsCorrect:         isCorrect,
		PassedCount:       passed,
		TotalCount:        total,
		TestResults:       results,
		GradedAt:          time.Now(),
	}
	applyExecution(&update, compile)
	s.finalize(ctx, submissionID, teamID, challenge, update)
}

// applyExecution copies the judge's compile-check execution onto the stored
// submission record.
func applyExecution(update *repository.ResultUpdate, result judge.SubmissionResult) {
	update.CompileOutput = stringValue(result.CompileOutput)
	update.Stdout = stringValue(result.Stdout)
	update.Stderr = stringValue(result.Stderr)
	update.Message = stringValue(result.Message)
	update.Time = result.Time
	update.Memory = result.Memory
	update.ExitCode = result.ExitCode
	update.ExitSignal = result.ExitSignal
}

// runTestCase executes the submission's source against one input, blocking
// until the judge reports a terminal state.
func (s *SubmissionService) runTestCase(ctx context.Context, submission *repository.Submission, challenge *challengeRepo.Challenge, stdin string) (judge.SubmissionResult, error) {
	result, err := s.judgeClient.Submit(ctx, judge.SubmissionRequest{
		SourceCode:   submission.SourceCode,
		LanguageID:   submission.LanguageID,
		Stdin:        stdin,
		CPUTimeLimit: challenge.CPUTimeLimit,
		MemoryLimit:  challenge.MemoryLimit,
	}, true)
	if err != nil {
		return judge.SubmissionResult{}, err
	}
	// wait=true should return a terminal result, but some deployments fall
	// back to a token when the queue is busy.
	if !result.Status.IsTerminal() {
		if result.Token == "" {
			return judge.SubmissionResult{}, appErr.New(appErr.JudgeAPIError).WithMessage("judge returned non-terminal result without token")
		}
		return s.judgeClient.PollUntilTerminal(ctx, result.Token, s.pollMaxAttempts, s.pollInterval)
	}
	return result, nil
}

func (s *SubmissionService) finalize(ctx context.Context, submissionID, teamID int64, challenge *challengeRepo.Challenge, update repository.ResultUpdate) {
	ctxDB := withTimeout(ctx, s.timeouts.DB)
	err := s.submissionRepo.UpdateResult(ctxDB.ctx, nil, submissionID, update)
	ctxDB.cancel()
	if err != nil {
		logger.Error(ctx, "persist grading result failed",
			zap.Int64("submission_id", submissionID), zap.Error(err))
		return
	}

	firstSolve := false
	if update.IsCorrect {
		firstSolve = s.recordSolve(ctx, challenge.ID, teamID)
	}

	s.saveSnapshotValues(ctx, submissionID, update.StatusID, update.StatusDescription, update.Score, update.IsCorrect, true)
	s.publishGraded(ctx, repository.GradedEvent{
		SubmissionID: submissionID,
		TeamID:       teamID,
		ChallengeID:  challenge.ID,
		StatusID:     update.StatusID,
		Score:        update.Score,
		IsCorrect:    update.IsCorrect,
		FirstSolve:   firstSolve,
		GradedAt:     update.GradedAt.Unix(),
	})
}

// recordSolve serializes first-solve detection on the solves table's unique
// key and bumps the challenge solved counter exactly once per team.
func (s *SubmissionService) recordSolve(ctx context.Context, challengeID, teamID int64) bool {
	err := s.challengeRepo.RecordSolve(ctx, nil, challengeID, teamID)
	if err != nil {
		if !stderrors.Is(err, challengeRepo.ErrAlreadySolved) {
			logger.Warn(ctx, "record solve failed",
				zap.Int64("challenge_id", challengeID), zap.Int64("team_id", teamID), zap.Error(err))
		}
		return false
	}
	if err := s.challengeRepo.IncrementSolvedCount(ctx, nil, challengeID); err != nil {
		logger.Warn(ctx, "increment solved count failed",
			zap.Int64("challenge_id", challengeID), zap.Error(err))
	}
	return true
}

func (s *SubmissionService) markInternalError(ctx context.Context, submissionID int64, cause error) {
	logger.Error(ctx, "grading failed",
		zap.Int64("submission_id", submissionID), zap.Error(cause))

	update := repository.ResultUpdate{
		StatusID:          judge.StatusInternalError,
		StatusDescription: judge.StatusDescription(judge.StatusInternalError),
		Score:             0,
		IsCorrect:         false,
		TestResults:       []repository.TestResult{},
		GradedAt:          time.Now(),
	}
	ctxDB := withTimeout(ctx, s.timeouts.DB)
	err := s.submissionRepo.UpdateResult(ctxDB.ctx, nil, submissionID, update)
	ctxDB.cancel()
	if err != nil {
		logger.Error(ctx, "persist internal error result failed",
			zap.Int64("submission_id", submissionID), zap.Error(err))
		return
	}
	s.saveSnapshotValues(ctx, submissionID, update.StatusID, update.StatusDescription, 0, false, true)
}

func (s *SubmissionService) validateInput(input SubmitInput) error {
	if input.TeamID <= 0 {
		return appErr.ValidationError("team_id", "required")
	}
	if input.ChallengeID <= 0 {
		return appErr.ValidationError("challenge_id", "required")
	}
	if input.LanguageID <= 0 {
		return appErr.ValidationError("language_id", "required")
	}
	if strings.TrimSpace(input.SourceCode) == "" {
		return appErr.ValidationError("source_code", "required")
	}
	if len(input.SourceCode) > s.maxCodeBytes {
		return appErr.New(appErr.CodeTooLarge).WithDetail("max_bytes", s.maxCodeBytes)
	}
	return nil
}

func (s *SubmissionService) checkRateLimit(ctx context.Context, teamID int64) error {
	if s.cache == nil || s.rateLimit.Window <= 0 || s.rateLimit.TeamMax <= 0 {
		return nil
	}
	ctxCache := withTimeout(ctx, s.timeouts.Cache)
	defer ctxCache.cancel()

	key := fmt.Sprintf("%s%d", rateTeamKeyPrefix, teamID)
	count, err := s.cache.Incr(ctxCache.ctx, key)
	if err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "rate limit check failed")
	}
	if count == 1 {
		_ = s.cache.Expire(ctxCache.ctx, key, s.rateLimit.Window)
	}
	if int(count) > s.rateLimit.TeamMax {
		return appErr.New(appErr.SubmitTooFrequently)
	}
	return nil
}

func (s *SubmissionService) getChallenge(ctx context.Context, challengeID int64) (*challengeRepo.Challenge, error) {
	ctxDB := withTimeout(ctx, s.timeouts.DB)
	defer ctxDB.cancel()

	challenge, err := s.challengeRepo.GetByID(ctxDB.ctx, nil, challengeID)
	if err != nil {
		if stderrors.Is(err, challengeRepo.ErrChallengeNotFound) {
			return nil, appErr.New(appErr.ChallengeNotFound)
		}
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "get challenge failed")
	}
	return challenge, nil
}

// archiveSource stores a copy of the source in object storage when storage
// is configured. The DB row keeps the code either way.
func (s *SubmissionService) archiveSource(ctx context.Context, source string) (string, error) {
	if s.storage == nil || s.sourceBucket == "" {
		return "", nil
	}
	objectKey := fmt.Sprintf("%s/%s/source.code", s.sourceKeyPrefix, uuid.NewString())
	sizeBytes := int64(len(source))
	reader := io.NopCloser(strings.NewReader(source))
	defer reader.Close()

	ctxStorage := withTimeout(ctx, s.timeouts.Storage)
	defer ctxStorage.cancel()
	if err := s.storage.PutObject(ctxStorage.ctx, s.sourceBucket, objectKey, reader, sizeBytes, "text/plain; charset=utf-8"); err != nil {
		return "", appErr.Wrapf(err, appErr.SubmissionCreateFailed, "archive source failed")
	}
	return objectKey, nil
}

func (s *SubmissionService) createSubmission(ctx context.Context, submission *repository.Submission) error {
	ctxDB := withTimeout(ctx, s.timeouts.DB)
	defer ctxDB.cancel()
	if _, err := s.submissionRepo.Create(ctxDB.ctx, nil, submission); err != nil {
		return appErr.Wrapf(err, appErr.SubmissionCreateFailed, "create submission failed")
	}
	return nil
}

func (s *SubmissionService) saveSnapshot(ctx context.Context, submission *repository.Submission, graded bool) {
	s.saveSnapshotValues(ctx, submission.ID, submission.StatusID, submission.StatusDescription,
		submission.Score, submission.IsCorrect, graded)
}

func (s *SubmissionService) saveSnapshotValues(ctx context.Context, submissionID int64, statusID int, description string, score int, isCorrect, graded bool) {
	if s.statusCache == nil {
		return
	}
	ctxCache := withTimeout(ctx, s.timeouts.Cache)
	defer ctxCache.cancel()
	err := s.statusCache.Save(ctxCache.ctx, repository.StatusSnapshot{
		SubmissionID:      submissionID,
		StatusID:          statusID,
		StatusDescription: description,
		Score:             score,
		IsCorrect:         isCorrect,
		Graded:            graded,
	})
	if err != nil {
		logger.Warn(ctx, "save status snapshot failed",
			zap.Int64("submission_id", submissionID), zap.Error(err))
	}
}

func (s *SubmissionService) publishGraded(ctx context.Context, event repository.GradedEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishGraded(ctx, event); err != nil {
		logger.Warn(ctx, "publish graded event failed",
			zap.Int64("submission_id", event.SubmissionID), zap.Error(err))
	}
}

func snapshotOf(submission *repository.Submission) repository.StatusSnapshot {
	return repository.StatusSnapshot{
		SubmissionID:      submission.ID,
		StatusID:          submission.StatusID,
		StatusDescription: submission.StatusDescription,
		Score:             submission.Score,
		IsCorrect:         submission.IsCorrect,
		Graded:            judge.IsTerminalStatus(submission.StatusID),
	}
}

// overallStatus is Accepted for a full pass, otherwise the status of the
// first failing case. A case that ran cleanly but produced wrong output maps
// to Wrong Answer.
func overallStatus(results []repository.TestResult, isCorrect bool) int {
	if isCorrect {
		return judge.StatusAccepted
	}
	for _, r := range results {
		if r.Passed {
			continue
		}
		if r.StatusID == judge.StatusAccepted {
			return judge.StatusWrongAnswer
		}
		return r.StatusID
	}
	return judge.StatusInternalError
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type timeoutCtx struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func withTimeout(ctx context.Context, timeout time.Duration) timeoutCtx {
	if timeout <= 0 {
		return timeoutCtx{ctx: ctx, cancel: func() {}}
	}
	ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
	return timeoutCtx{ctx: ctxTimeout, cancel: cancel}
}
