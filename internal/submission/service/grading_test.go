package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	challengeRepo "duothan/internal/challenge/repository"
	"duothan/internal/common/db"
	"duothan/internal/judge"
	"duothan/internal/submission/repository"
	appErr "duothan/pkg/errors"
)

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[int64]*repository.Submission
	nextID      int64
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		submissions: make(map[int64]*repository.Submission),
		nextID:      1,
	}
}

func (f *fakeSubmissionRepo) Create(_ context.Context, _ db.Transaction, submission *repository.Submission) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	submission.ID = id
	submission.SubmittedAt = time.Now()
	stored := *submission
	f.submissions[id] = &stored
	return id, nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, _ db.Transaction, id int64) (*repository.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	submission, ok := f.submissions[id]
	if !ok {
		return nil, repository.ErrSubmissionNotFound
	}
	copied := *submission
	return &copied, nil
}

func (f *fakeSubmissionRepo) UpdateResult(_ context.Context, _ db.Transaction, id int64, update repository.ResultUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	submission, ok := f.submissions[id]
	if !ok {
		return repository.ErrSubmissionNotFound
	}
	submission.StatusID = update.StatusID
	submission.StatusDescription = update.StatusDescription
	submission.Score = update.Score
	submission.IsCorrect = update.IsCorrect
	submission.PassedCount = update.PassedCount
	submission.TotalCount = update.TotalCount
	submission.TestResults = update.TestResults
	submission.CompileOutput = update.CompileOutput
	submission.Stdout = update.Stdout
	submission.Stderr = update.Stderr
	submission.Message = update.Message
	submission.Time = update.Time
	submission.Memory = update.Memory
	submission.ExitCode = update.ExitCode
	submission.ExitSignal = update.ExitSignal
	gradedAt := update.GradedAt
	submission.GradedAt = &gradedAt
	return nil
}

func (f *fakeSubmissionRepo) ListByTeamAndChallenge(_ context.Context, teamID, challengeID int64, _ int) ([]*repository.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.Submission
	for id := f.nextID - 1; id >= 1; id-- {
		submission, ok := f.submissions[id]
		if !ok || submission.TeamID != teamID || submission.ChallengeID != challengeID {
			continue
		}
		copied := *submission
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListStaleNonTerminal(_ context.Context, olderThan time.Time, _ int) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id, submission := range f.submissions {
		if submission.StatusID < judge.StatusAccepted && submission.SubmittedAt.Before(olderThan) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeChallengeStore struct {
	mu         sync.Mutex
	challenges map[int64]*challengeRepo.Challenge
	solves     map[[2]int64]bool
}

func newFakeChallengeStore(challenges ...*challengeRepo.Challenge) *fakeChallengeStore {
	store := &fakeChallengeStore{
		challenges: make(map[int64]*challengeRepo.Challenge),
		solves:     make(map[[2]int64]bool),
	}
	for _, ch := range challenges {
		store.challenges[ch.ID] = ch
	}
	return store
}

func (f *fakeChallengeStore) Create(_ context.Context, _ db.Transaction, ch *challengeRepo.Challenge) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.challenges[ch.ID] = ch
	return ch.ID, nil
}

func (f *fakeChallengeStore) Update(_ context.Context, _ db.Transaction, ch *challengeRepo.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.challenges[ch.ID] = ch
	return nil
}

func (f *fakeChallengeStore) GetByID(_ context.Context, _ db.Transaction, id int64) (*challengeRepo.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.challenges[id]
	if !ok {
		return nil, challengeRepo.ErrChallengeNotFound
	}
	copied := *ch
	return &copied, nil
}

func (f *fakeChallengeStore) List(_ context.Context, _ bool) ([]*challengeRepo.Challenge, error) {
	return nil, nil
}

func (f *fakeChallengeStore) IncrementSubmissionCount(_ context.Context, _ db.Transaction, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.challenges[id]
	if !ok {
		return challengeRepo.ErrChallengeNotFound
	}
	ch.SubmissionCount++
	return nil
}

func (f *fakeChallengeStore) IncrementSolvedCount(_ context.Context, _ db.Transaction, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.challenges[id]
	if !ok {
		return challengeRepo.ErrChallengeNotFound
	}
	ch.SolvedCount++
	return nil
}

func (f *fakeChallengeStore) RecordSolve(_ context.Context, _ db.Transaction, challengeID, teamID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{challengeID, teamID}
	if f.solves[key] {
		return challengeRepo.ErrAlreadySolved
	}
	f.solves[key] = true
	return nil
}

func (f *fakeChallengeStore) HasSolved(_ context.Context, challengeID, teamID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.solves[[2]int64{challengeID, teamID}], nil
}

func (f *fakeChallengeStore) solvedCount(id int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.challenges[id].SolvedCount
}

type fakeJudge struct {
	mu         sync.Mutex
	submitFn   func(req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error)
	pollFn     func(token string) (judge.SubmissionResult, error)
	resultFn   func(token string) (judge.SubmissionResult, error)
	languageFn func(id int) (judge.Language, error)
	requests   []judge.SubmissionRequest
}

func (f *fakeJudge) Submit(_ context.Context, req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.submitFn(req, wait)
}

func (f *fakeJudge) Language(_ context.Context, id int) (judge.Language, error) {
	if f.languageFn != nil {
		return f.languageFn(id)
	}
	return judge.Language{ID: id, Name: "Python (3.8.1)"}, nil
}

func (f *fakeJudge) GetResult(_ context.Context, token string, _ ...string) (judge.SubmissionResult, error) {
	if f.resultFn != nil {
		return f.resultFn(token)
	}
	return terminalResult(judge.StatusAccepted, ""), nil
}

func (f *fakeJudge) PollUntilTerminal(_ context.Context, token string, _ int, _ time.Duration) (judge.SubmissionResult, error) {
	if f.pollFn == nil {
		return terminalResult(judge.StatusAccepted, ""), nil
	}
	return f.pollFn(token)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []repository.GradedEvent
}

func (f *fakePublisher) PublishGraded(_ context.Context, event repository.GradedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) waitForEvent(t *testing.T, count int) repository.GradedEvent {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		if len(f.events) >= count {
			event := f.events[count-1]
			f.mu.Unlock()
			return event
		}
		f.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("graded event never published")
	return repository.GradedEvent{}
}

func terminalResult(statusID int, stdout string) judge.SubmissionResult {
	out := stdout
	return judge.SubmissionResult{
		Token:  "run-token",
		Status: judge.Status{ID: statusID, Description: judge.StatusDescription(statusID)},
		Stdout: &out,
	}
}

func activeChallenge() *challengeRepo.Challenge {
	return &challengeRepo.Challenge{
		ID:     1,
		Title:  "Two Sum",
		Points: 100,
		TestCases: []challengeRepo.TestCase{
			{Input: "1 2", ExpectedOutput: "3"},
			{Input: "5 7", ExpectedOutput: "12", IsHidden: true},
		},
		CPUTimeLimit: 2,
		MemoryLimit:  128000,
		IsActive:     true,
	}
}

type testEnv struct {
	service    *SubmissionService
	repo       *fakeSubmissionRepo
	challenges *fakeChallengeStore
	judge      *fakeJudge
	publisher  *fakePublisher
}

func newTestEnv(t *testing.T, j *fakeJudge, challenges ...*challengeRepo.Challenge) *testEnv {
	t.Helper()
	if len(challenges) == 0 {
		challenges = []*challengeRepo.Challenge{activeChallenge()}
	}
	repo := newFakeSubmissionRepo()
	store := newFakeChallengeStore(challenges...)
	publisher := &fakePublisher{}

	svc, err := NewSubmissionService(Config{
		SubmissionRepo: repo,
		ChallengeRepo:  store,
		Judge:          j,
		Events:         publisher,
	})
	if err != nil {
		t.Fatalf("NewSubmissionService failed: %v", err)
	}
	return &testEnv{service: svc, repo: repo, challenges: store, judge: j, publisher: publisher}
}

func (e *testEnv) submit(t *testing.T, teamID int64) *repository.Submission {
	t.Helper()
	submission, err := e.service.Submit(context.Background(), SubmitInput{
		TeamID:      teamID,
		ChallengeID: 1,
		LanguageID:  judge.LanguagePython,
		SourceCode:  "print(sum(map(int, input().split())))",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	return submission
}

func (e *testEnv) waitForTerminal(t *testing.T, id int64) *repository.Submission {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		submission, err := e.repo.GetByID(context.Background(), nil, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if judge.IsTerminalStatus(submission.StatusID) {
			return submission
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("submission never reached a terminal status")
	return nil
}

func passingJudge() *fakeJudge {
	return &fakeJudge{
		submitFn: func(req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error) {
			if !wait {
				return judge.SubmissionResult{Token: "compile-token", Status: judge.Status{ID: judge.StatusInQueue}}, nil
			}
			switch strings.TrimSpace(req.Stdin) {
			case "1 2":
				return terminalResult(judge.StatusAccepted, "3\n"), nil
			case "5 7":
				return terminalResult(judge.StatusAccepted, "12\n"), nil
			default:
				return terminalResult(judge.StatusAccepted, "?"), nil
			}
		},
	}
}

func TestSubmitQueuesAndGradesFullPass(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, passingJudge())
	submission := env.submit(t, 10)

	if submission.StatusID != judge.StatusInQueue {
		t.Errorf("expected submission queued, got status %d", submission.StatusID)
	}
	if submission.JudgeToken != "compile-token" {
		t.Errorf("expected compile token stored, got %q", submission.JudgeToken)
	}

	graded := env.waitForTerminal(t, submission.ID)
	if graded.StatusID != judge.StatusAccepted {
		t.Errorf("expected Accepted, got %d", graded.StatusID)
	}
	if graded.Score != 100 || !graded.IsCorrect {
		t.Errorf("expected full score, got score=%d correct=%v", graded.Score, graded.IsCorrect)
	}
	if graded.PassedCount != 2 || graded.TotalCount != 2 {
		t.Errorf("expected 2/2 passed, got %d/%d", graded.PassedCount, graded.TotalCount)
	}
	if graded.GradedAt == nil {
		t.Error("expected graded timestamp")
	}

	event := env.publisher.waitForEvent(t, 1)
	if !event.FirstSolve || !event.IsCorrect || event.Score != 100 {
		t.Errorf("unexpected event: %+v", event)
	}
	if got := env.challenges.solvedCount(1); got != 1 {
		t.Errorf("expected solved count 1, got %d", got)
	}
}

func TestTrailingWhitespaceStillPasses(t *testing.T) {
	t.Parallel()

	j := &fakeJudge{
		submitFn: func(req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error) {
			if !wait {
				return judge.SubmissionResult{Token: "compile-token"}, nil
			}
			return terminalResult(judge.StatusAccepted, "  3 \n\n"), nil
		},
	}
	ch := activeChallenge()
	ch.TestCases = []challengeRepo.TestCase{{Input: "1 2", ExpectedOutput: "3"}}
	env := newTestEnv(t, j, ch)

	submission := env.submit(t, 10)
	graded := env.waitForTerminal(t, submission.ID)
	if !graded.IsCorrect {
		t.Errorf("expected whitespace-insensitive pass, got %+v", graded)
	}
}

func TestPartialPassScoresProportionally(t *testing.T) {
	t.Parallel()

	j := &fakeJudge{
		submitFn: func(req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error) {
			if !wait {
				return judge.SubmissionResult{Token: "compile-token"}, nil
			}
			if strings.TrimSpace(req.Stdin) == "1 2" {
				return terminalResult(judge.StatusAccepted, "3"), nil
			}
			return terminalResult(judge.StatusAccepted, "999"), nil
		},
	}
	env := newTestEnv(t, j)

	submission := env.submit(t, 10)
	graded := env.waitForTerminal(t, submission.ID)

	if graded.StatusID != judge.StatusWrongAnswer {
		t.Errorf("expected WrongAnswer, got %d", graded.StatusID)
	}
	if graded.Score != 50 || graded.IsCorrect {
		t.Errorf("expected score 50 not correct, got score=%d correct=%v", graded.Score, graded.IsCorrect)
	}
	if got := env.challenges.solvedCount(1); got != 0 {
		t.Errorf("expected no solve recorded, got %d", got)
	}
}

func TestCompilationErrorShortCircuits(t *testing.T) {
	t.Parallel()

	compileOutput := "main.c:1: error: expected ';'"
	j := &fakeJudge{
		submitFn: func(req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error) {
			if wait {
				t.Error("test cases must not run after a compilation error")
			}
			return judge.SubmissionResult{Token: "compile-token"}, nil
		},
		pollFn: func(string) (judge.SubmissionResult, error) {
			return judge.SubmissionResult{
				Token:         "compile-token",
				Status:        judge.Status{ID: judge.StatusCompilationError},
				CompileOutput: &compileOutput,
			}, nil
		},
	}
	env := newTestEnv(t, j)

	submission := env.submit(t, 10)
	graded := env.waitForTerminal(t, submission.ID)

	if graded.StatusID != judge.StatusCompilationError {
		t.Errorf("expected CompilationError, got %d", graded.StatusID)
	}
	if graded.Score != 0 || len(graded.TestResults) != 0 {
		t.Errorf("expected zero score and no results, got %+v", graded)
	}
	if graded.CompileOutput != compileOutput {
		t.Errorf("expected compile output stored, got %q", graded.CompileOutput)
	}
}

func TestTimeLimitExceededPropagates(t *testing.T) {
	t.Parallel()

	j := &fakeJudge{
		submitFn: func(req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error) {
			if !wait {
				return judge.SubmissionResult{Token: "compile-token"}, nil
			}
			return terminalResult(judge.StatusTimeLimitExceeded, ""), nil
		},
	}
	env := newTestEnv(t, j)

	submission := env.submit(t, 10)
	graded := env.waitForTerminal(t, submission.ID)

	if graded.StatusID != judge.StatusTimeLimitExceeded {
		t.Errorf("expected TLE, got %d", graded.StatusID)
	}
	if graded.Score != 0 {
		t.Errorf("expected zero score, got %d", graded.Score)
	}
}

func TestJudgeFailureCostsOnlyThatCase(t *testing.T) {
	t.Parallel()

	j := &fakeJudge{
		submitFn: func(req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error) {
			if !wait {
				return judge.SubmissionResult{Token: "compile-token"}, nil
			}
			if strings.TrimSpace(req.Stdin) == "1 2" {
				return terminalResult(judge.StatusAccepted, "3"), nil
			}
			return judge.SubmissionResult{}, appErr.New(appErr.JudgeUnavailable)
		},
	}
	env := newTestEnv(t, j)

	submission := env.submit(t, 10)
	graded := env.waitForTerminal(t, submission.ID)

	if len(graded.TestResults) != 2 {
		t.Fatalf("expected both cases recorded, got %d", len(graded.TestResults))
	}
	if !graded.TestResults[0].Passed {
		t.Errorf("first case should still pass, got %+v", graded.TestResults[0])
	}
	failed := graded.TestResults[1]
	if failed.Passed || failed.Stdout != "" || failed.StatusID != judge.StatusInternalError {
		t.Errorf("unreachable case should fail with empty output, got %+v", failed)
	}
	if graded.Score != 50 || graded.IsCorrect {
		t.Errorf("expected score 50 not correct, got score=%d correct=%v", graded.Score, graded.IsCorrect)
	}
}

func TestCompilePollTimeoutMarksInternalError(t *testing.T) {
	t.Parallel()

	j := &fakeJudge{
		submitFn: func(req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error) {
			return judge.SubmissionResult{Token: "compile-token"}, nil
		},
		pollFn: func(string) (judge.SubmissionResult, error) {
			return judge.SubmissionResult{}, appErr.New(appErr.JudgePollTimeout)
		},
	}
	env := newTestEnv(t, j)

	submission := env.submit(t, 10)
	graded := env.waitForTerminal(t, submission.ID)

	if graded.StatusID != judge.StatusInternalError {
		t.Errorf("expected InternalError on poll timeout, got %d", graded.StatusID)
	}
}

func TestSecondSolveIsNotFirstSolve(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, passingJudge())

	first := env.submit(t, 10)
	env.waitForTerminal(t, first.ID)
	second := env.submit(t, 10)
	env.waitForTerminal(t, second.ID)

	event := env.publisher.waitForEvent(t, 2)
	if event.FirstSolve {
		t.Error("second correct submission must not be a first solve")
	}
	if got := env.challenges.solvedCount(1); got != 1 {
		t.Errorf("expected solved count to stay 1, got %d", got)
	}
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, passingJudge())
	ctx := context.Background()

	_, err := env.service.Submit(ctx, SubmitInput{TeamID: 10, ChallengeID: 1, LanguageID: judge.LanguagePython, SourceCode: "  "})
	if !appErr.Is(err, appErr.ValidationFailed) {
		t.Errorf("expected ValidationFailed for empty source, got %v", err)
	}

	_, err = env.service.Submit(ctx, SubmitInput{TeamID: 10, ChallengeID: 1, LanguageID: judge.LanguagePython, SourceCode: strings.Repeat("a", defaultMaxCodeBytes+1)})
	if !appErr.Is(err, appErr.CodeTooLarge) {
		t.Errorf("expected CodeTooLarge, got %v", err)
	}

	_, err = env.service.Submit(ctx, SubmitInput{TeamID: 10, ChallengeID: 99, LanguageID: judge.LanguagePython, SourceCode: "x"})
	if !appErr.Is(err, appErr.ChallengeNotFound) {
		t.Errorf("expected ChallengeNotFound, got %v", err)
	}
}

func TestSubmitRejectsInactiveWindow(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	ch := activeChallenge()
	ch.EndTime = &past
	env := newTestEnv(t, passingJudge(), ch)

	_, err := env.service.Submit(context.Background(), SubmitInput{
		TeamID: 10, ChallengeID: 1, LanguageID: judge.LanguagePython, SourceCode: "x",
	})
	if !appErr.Is(err, appErr.ChallengeInactive) {
		t.Errorf("expected ChallengeInactive, got %v", err)
	}
}

func TestSubmitRejectsDisallowedLanguage(t *testing.T) {
	t.Parallel()

	ch := activeChallenge()
	ch.AllowedLanguages = []int{judge.LanguageCPP}
	env := newTestEnv(t, passingJudge(), ch)

	_, err := env.service.Submit(context.Background(), SubmitInput{
		TeamID: 10, ChallengeID: 1, LanguageID: judge.LanguagePython, SourceCode: "x",
	})
	if !appErr.Is(err, appErr.LanguageNotAllowed) {
		t.Errorf("expected LanguageNotAllowed, got %v", err)
	}
}

func TestSubmitIncrementsSubmissionCount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, passingJudge())
	submission := env.submit(t, 10)
	env.waitForTerminal(t, submission.ID)

	ch, err := env.challenges.GetByID(context.Background(), nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ch.SubmissionCount != 1 {
		t.Errorf("expected submission count 1, got %d", ch.SubmissionCount)
	}
}

func TestGetSubmissionEnforcesOwnership(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, passingJudge())
	submission := env.submit(t, 10)
	env.waitForTerminal(t, submission.ID)

	if _, err := env.service.GetSubmission(context.Background(), 10, submission.ID); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
	_, err := env.service.GetSubmission(context.Background(), 11, submission.ID)
	if !appErr.Is(err, appErr.SubmissionAccessDenied) {
		t.Errorf("expected SubmissionAccessDenied, got %v", err)
	}
	_, err = env.service.GetSubmission(context.Background(), 10, 999)
	if !appErr.Is(err, appErr.SubmissionNotFound) {
		t.Errorf("expected SubmissionNotFound, got %v", err)
	}
}

func TestFailStale(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, passingJudge())
	stuck := &repository.Submission{
		TeamID:      10,
		ChallengeID: 1,
		LanguageID:  judge.LanguagePython,
		SourceCode:  "x",
		StatusID:    judge.StatusProcessing,
	}
	id, err := env.repo.Create(context.Background(), nil, stuck)
	if err != nil {
		t.Fatal(err)
	}
	env.repo.mu.Lock()
	env.repo.submissions[id].SubmittedAt = time.Now().Add(-time.Hour)
	env.repo.mu.Unlock()

	failed, err := env.service.FailStale(context.Background(), time.Now().Add(-15*time.Minute), 100)
	if err != nil {
		t.Fatalf("FailStale failed: %v", err)
	}
	if failed != 1 {
		t.Errorf("expected 1 stale submission failed, got %d", failed)
	}
	submission, _ := env.repo.GetByID(context.Background(), nil, id)
	if submission.StatusID != judge.StatusInternalError {
		t.Errorf("expected InternalError, got %d", submission.StatusID)
	}
}

func TestGradeSendsChallengeLimits(t *testing.T) {
	t.Parallel()

	j := passingJudge()
	env := newTestEnv(t, j)
	submission := env.submit(t, 10)
	env.waitForTerminal(t, submission.ID)

	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.requests) < 3 {
		t.Fatalf("expected compile probe plus 2 case runs, got %d requests", len(j.requests))
	}
	for _, req := range j.requests[1:] {
		if req.CPUTimeLimit != 2 || req.MemoryLimit != 128000 {
			t.Errorf("expected challenge limits on case run, got %+v", req)
		}
	}
}

func TestGetStatusReportsLiveProcessingStage(t *testing.T) {
	t.Parallel()

	j := passingJudge()
	j.resultFn = func(string) (judge.SubmissionResult, error) {
		return judge.SubmissionResult{
			Status: judge.Status{ID: judge.StatusProcessing, Description: judge.StatusDescription(judge.StatusProcessing)},
		}, nil
	}
	env := newTestEnv(t, j)

	id, err := env.repo.Create(context.Background(), nil, &repository.Submission{
		TeamID:      9,
		ChallengeID: 1,
		LanguageID:  judge.LanguagePython,
		SourceCode:  "print(0)",
		JudgeToken:  "compile-token",
		StatusID:    judge.StatusInQueue,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	snapshot, err := env.service.GetStatus(context.Background(), 9, id)
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if snapshot.StatusID != judge.StatusProcessing || snapshot.Graded {
		t.Errorf("expected live processing snapshot, got %+v", snapshot)
	}
}

func TestGetStatusToleratesJudgeOutage(t *testing.T) {
	t.Parallel()

	j := passingJudge()
	j.resultFn = func(string) (judge.SubmissionResult, error) {
		return judge.SubmissionResult{}, errors.New("judge unreachable")
	}
	env := newTestEnv(t, j)

	id, err := env.repo.Create(context.Background(), nil, &repository.Submission{
		TeamID:      9,
		ChallengeID: 1,
		LanguageID:  judge.LanguagePython,
		SourceCode:  "print(0)",
		JudgeToken:  "compile-token",
		StatusID:    judge.StatusInQueue,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	snapshot, err := env.service.GetStatus(context.Background(), 9, id)
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if snapshot.StatusID != judge.StatusInQueue {
		t.Errorf("expected persisted status on judge outage, got %+v", snapshot)
	}
}

func TestInternalWhitespaceFailsCase(t *testing.T) {
	t.Parallel()

	j := &fakeJudge{
		submitFn: func(req judge.SubmissionRequest, wait bool) (judge.SubmissionResult, error) {
			if !wait {
				return judge.SubmissionResult{Token: "compile-token"}, nil
			}
			return terminalResult(judge.StatusAccepted, "8 0"), nil
		},
	}
	ch := activeChallenge()
	ch.TestCases = []challengeRepo.TestCase{{Input: "whatever", ExpectedOutput: "80"}}
	env := newTestEnv(t, j, ch)

	submission := env.submit(t, 10)
	graded := env.waitForTerminal(t, submission.ID)

	if graded.TestResults[0].Passed {
		t.Error("interior whitespace must stay significant")
	}
	if graded.StatusID != judge.StatusWrongAnswer || graded.Score != 0 || graded.IsCorrect {
		t.Errorf("expected WrongAnswer with zero score, got %+v", graded)
	}
}

func TestGradeRecordsExecutionFields(t *testing.T) {
	t.Parallel()

	compileStderr := "warning: unused variable"
	compileTime := "0.031"
	compileMemory := 3456
	exitCode := 0
	j := passingJudge()
	j.pollFn = func(string) (judge.SubmissionResult, error) {
		return judge.SubmissionResult{
			Token:    "compile-token",
			Status:   judge.Status{ID: judge.StatusAccepted},
			Stderr:   &compileStderr,
			Time:     &compileTime,
			Memory:   &compileMemory,
			ExitCode: &exitCode,
		}, nil
	}
	env := newTestEnv(t, j)

	submission := env.submit(t, 10)
	if submission.LanguageName != "Python (3.8.1)" {
		t.Errorf("expected language name resolved at intake, got %q", submission.LanguageName)
	}

	graded := env.waitForTerminal(t, submission.ID)
	if graded.Stderr != compileStderr || graded.Message != "" {
		t.Errorf("compile-check outputs not copied, got %+v", graded)
	}
	if graded.Time == nil || *graded.Time != compileTime {
		t.Errorf("expected execution time %q, got %v", compileTime, graded.Time)
	}
	if graded.Memory == nil || *graded.Memory != compileMemory {
		t.Errorf("expected memory %d, got %v", compileMemory, graded.Memory)
	}
	if graded.ExitCode == nil || *graded.ExitCode != exitCode {
		t.Errorf("expected exit code %d, got %v", exitCode, graded.ExitCode)
	}

	first := graded.TestResults[0]
	if first.Input != "1 2" || first.ExpectedOutput != "3" {
		t.Errorf("per-case input and expected output not recorded, got %+v", first)
	}
}
