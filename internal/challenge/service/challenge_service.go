package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"duothan/internal/challenge/repository"
	pkgerrors "duothan/pkg/errors"
)

// ChallengeService exposes team-facing reads and admin writes over the
// challenge catalogue.
type ChallengeService struct {
	challenges repository.ChallengeRepository
}

// NewChallengeService creates a new ChallengeService.
func NewChallengeService(challenges repository.ChallengeRepository) *ChallengeService {
	return &ChallengeService{challenges: challenges}
}

// ChallengeView is a challenge as shown to teams. Hidden test cases are
// stripped before it leaves the service.
type ChallengeView struct {
	ID               int64
	Title            string
	Description      string
	Difficulty       string
	Category         string
	Points           int
	PublicTestCases  []repository.TestCase
	AllowedLanguages []int
	CPUTimeLimit     float64
	MemoryLimit      int
	IsActive         bool
	StartTime        *time.Time
	EndTime          *time.Time
	SubmissionCount  int64
	SolvedCount      int64
	AcceptsFlag      bool
	Solved           bool
}

// List returns all challenges visible to teams.
func (s *ChallengeService) List(ctx context.Context, activeOnly bool) ([]ChallengeView, error) {
	challenges, err := s.challenges.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("list challenges failed: %w", err), pkgerrors.DatabaseError)
	}

	views := make([]ChallengeView, 0, len(challenges))
	for _, ch := range challenges {
		views = append(views, toView(ch))
	}
	return views, nil
}

// Get returns one challenge visible to teams. When teamID is set the view
// carries whether that team already solved it.
func (s *ChallengeService) Get(ctx context.Context, id, teamID int64) (ChallengeView, error) {
	ch, err := s.getChallenge(ctx, id)
	if err != nil {
		return ChallengeView{}, err
	}
	view := toView(ch)
	if teamID > 0 {
		solved, err := s.challenges.HasSolved(ctx, id, teamID)
		if err != nil {
			return ChallengeView{}, pkgerrors.Wrap(fmt.Errorf("check solve failed: %w", err), pkgerrors.DatabaseError)
		}
		view.Solved = solved
	}
	return view, nil
}

// FlagResult reports the outcome of a flag submission.
type FlagResult struct {
	Correct    bool `json:"correct"`
	FirstSolve bool `json:"first_solve"`
	Points     int  `json:"points"`
}

// SubmitFlag checks a buildathon flag and records the solve on a match.
func (s *ChallengeService) SubmitFlag(ctx context.Context, challengeID, teamID int64, flag string) (FlagResult, error) {
	ch, err := s.getChallenge(ctx, challengeID)
	if err != nil {
		return FlagResult{}, err
	}
	if !ch.IsCurrentlyActive(time.Now()) {
		return FlagResult{}, pkgerrors.New(pkgerrors.ChallengeInactive)
	}
	if ch.Flag == "" {
		return FlagResult{}, pkgerrors.New(pkgerrors.FlagNotSupported)
	}
	if !ch.FlagMatches(flag) {
		return FlagResult{}, pkgerrors.New(pkgerrors.FlagIncorrect)
	}

	result := FlagResult{Correct: true, Points: ch.Points}
	err = s.challenges.RecordSolve(ctx, nil, challengeID, teamID)
	switch {
	case err == nil:
		result.FirstSolve = true
		if err := s.challenges.IncrementSolvedCount(ctx, nil, challengeID); err != nil {
			return result, pkgerrors.Wrap(fmt.Errorf("increment solved count failed: %w", err), pkgerrors.DatabaseError)
		}
	case stderrors.Is(err, repository.ErrAlreadySolved):
		// Repeat of an earlier correct flag, still a correct answer.
	default:
		return FlagResult{}, pkgerrors.Wrap(fmt.Errorf("record solve failed: %w", err), pkgerrors.DatabaseError)
	}
	return result, nil
}

// GetFull returns the complete challenge including hidden test cases. Only
// the grader and admin paths may call this.
func (s *ChallengeService) GetFull(ctx context.Context, id int64) (*repository.Challenge, error) {
	return s.getChallenge(ctx, id)
}

// CreateInput carries admin challenge creation fields.
type CreateInput struct {
	Title            string
	Description      string
	Difficulty       string
	Category         string
	Points           int
	Flag             string
	TestCases        []repository.TestCase
	AllowedLanguages []int
	CPUTimeLimit     float64
	MemoryLimit      int
	IsActive         bool
	StartTime        *time.Time
	EndTime          *time.Time
}

// Create adds a new challenge.
func (s *ChallengeService) Create(ctx context.Context, input CreateInput) (*repository.Challenge, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	ch := &repository.Challenge{
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		Difficulty:       input.Difficulty,
		Category:         input.Category,
		Points:           input.Points,
		Flag:             strings.TrimSpace(input.Flag),
		TestCases:        input.TestCases,
		AllowedLanguages: input.AllowedLanguages,
		CPUTimeLimit:     input.CPUTimeLimit,
		MemoryLimit:      input.MemoryLimit,
		IsActive:         input.IsActive,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
	}
	if _, err := s.challenges.Create(ctx, nil, ch); err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("create challenge failed: %w", err), pkgerrors.ChallengeCreateFailed)
	}
	return ch, nil
}

// Update replaces a challenge's fields and child rows.
func (s *ChallengeService) Update(ctx context.Context, id int64, input CreateInput) (*repository.Challenge, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.getChallenge(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.Description = input.Description
	existing.Difficulty = input.Difficulty
	existing.Category = input.Category
	existing.Points = input.Points
	existing.Flag = strings.TrimSpace(input.Flag)
	existing.TestCases = input.TestCases
	existing.AllowedLanguages = input.AllowedLanguages
	existing.CPUTimeLimit = input.CPUTimeLimit
	existing.MemoryLimit = input.MemoryLimit
	existing.IsActive = input.IsActive
	existing.StartTime = input.StartTime
	existing.EndTime = input.EndTime

	if err := s.challenges.Update(ctx, nil, existing); err != nil {
		if stderrors.Is(err, repository.ErrChallengeNotFound) {
			return nil, pkgerrors.New(pkgerrors.ChallengeNotFound)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("update challenge failed: %w", err), pkgerrors.ChallengeUpdateFailed)
	}
	return existing, nil
}

func (s *ChallengeService) getChallenge(ctx context.Context, id int64) (*repository.Challenge, error) {
	ch, err := s.challenges.GetByID(ctx, nil, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrChallengeNotFound) {
			return nil, pkgerrors.New(pkgerrors.ChallengeNotFound)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("get challenge failed: %w", err), pkgerrors.DatabaseError)
	}
	return ch, nil
}

func validateInput(input CreateInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.ValidationError("title", "required")
	}
	if input.Points < 0 {
		return pkgerrors.ValidationError("points", "must not be negative")
	}
	if len(input.TestCases) == 0 && strings.TrimSpace(input.Flag) == "" {
		return pkgerrors.New(pkgerrors.TestCaseInvalid).WithMessage("a test case or a flag is required")
	}
	for i, tc := range input.TestCases {
		if strings.TrimSpace(tc.ExpectedOutput) == "" {
			return pkgerrors.New(pkgerrors.TestCaseInvalid).WithDetail("index", i)
		}
	}
	if input.StartTime != nil && input.EndTime != nil && input.EndTime.Before(*input.StartTime) {
		return pkgerrors.ValidationError("end_time", "must not precede start_time")
	}
	return nil
}

func toView(ch *repository.Challenge) ChallengeView {
	return ChallengeView{
		ID:               ch.ID,
		Title:            ch.Title,
		Description:      ch.Description,
		Difficulty:       ch.Difficulty,
		Category:         ch.Category,
		Points:           ch.Points,
		AcceptsFlag:      ch.Flag != "",
		PublicTestCases:  ch.PublicTestCases(),
		AllowedLanguages: ch.AllowedLanguages,
		CPUTimeLimit:     ch.CPUTimeLimit,
		MemoryLimit:      ch.MemoryLimit,
		IsActive:         ch.IsActive,
		StartTime:        ch.StartTime,
		EndTime:          ch.EndTime,
		SubmissionCount:  ch.SubmissionCount,
		SolvedCount:      ch.SolvedCount,
	}
}
