package controller

import (
	"strconv"
	"time"

	"duothan/internal/challenge/repository"
	"duothan/internal/challenge/service"
	"duothan/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// ChallengeController handles challenge HTTP endpoints.
type ChallengeController struct {
	challengeService *service.ChallengeService
}

// NewChallengeController creates a new ChallengeController.
func NewChallengeController(challengeService *service.ChallengeService) *ChallengeController {
	return &ChallengeController{challengeService: challengeService}
}

// List returns challenges visible to teams.
func (h *ChallengeController) List(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "true") != "false"

	views, err := h.challengeService.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ChallengeResponse, 0, len(views))
	for _, view := range views {
		items = append(items, toChallengeResponse(view))
	}
	response.Success(c, items)
}

// Get returns one challenge visible to teams.
func (h *ChallengeController) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid challenge id")
		return
	}

	view, err := h.challengeService.Get(c.Request.Context(), id, c.GetInt64("team_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toChallengeResponse(view))
}

// SubmitFlag checks a buildathon flag for the authenticated team.
func (h *ChallengeController) SubmitFlag(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid challenge id")
		return
	}

	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	result, err := h.challengeService.SubmitFlag(c.Request.Context(), id, c.GetInt64("team_id"), req.Flag)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Create handles admin challenge creation.
func (h *ChallengeController) Create(c *gin.Context) {
	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	ch, err := h.challengeService.Create(c.Request.Context(), toCreateInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"id": ch.ID})
}

// Update handles admin challenge updates.
func (h *ChallengeController) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid challenge id")
		return
	}

	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	ch, err := h.challengeService.Update(c.Request.Context(), id, toCreateInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": ch.ID})
}

// FlagRequest defines the flag submission payload.
type FlagRequest struct {
	Flag string `json:"flag" binding:"required"`
}

// ChallengeRequest defines the admin create/update payload.
type ChallengeRequest struct {
	Title            string            `json:"title" binding:"required"`
	Description      string            `json:"description"`
	Difficulty       string            `json:"difficulty"`
	Category         string            `json:"category"`
	Points           int               `json:"points"`
	Flag             string            `json:"flag"`
	TestCases        []TestCasePayload `json:"test_cases"`
	AllowedLanguages []int             `json:"allowed_languages"`
	CPUTimeLimit     float64           `json:"cpu_time_limit"`
	MemoryLimit      int               `json:"memory_limit"`
	IsActive         bool              `json:"is_active"`
	StartTime        *time.Time        `json:"start_time"`
	EndTime          *time.Time        `json:"end_time"`
}

// TestCasePayload defines one test case in admin payloads.
type TestCasePayload struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output" binding:"required"`
	IsHidden       bool   `json:"is_hidden"`
}

// ChallengeResponse defines the team-facing challenge payload.
type ChallengeResponse struct {
	ID               int64             `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Difficulty       string            `json:"difficulty"`
	Category         string            `json:"category"`
	Points           int               `json:"points"`
	AcceptsFlag      bool              `json:"accepts_flag"`
	Solved           bool              `json:"solved"`
	TestCases        []TestCasePayload `json:"test_cases"`
	AllowedLanguages []int             `json:"allowed_languages"`
	CPUTimeLimit     float64           `json:"cpu_time_limit"`
	MemoryLimit      int               `json:"memory_limit"`
	IsActive         bool              `json:"is_active"`
	StartTime        *time.Time        `json:"start_time,omitempty"`
	EndTime          *time.Time        `json:"end_time,omitempty"`
	SubmissionCount  int64             `json:"submission_count"`
	SolvedCount      int64             `json:"solved_count"`
}

func toCreateInput(req ChallengeRequest) service.CreateInput {
	cases := make([]repository.TestCase, 0, len(req.TestCases))
	for _, tc := range req.TestCases {
		cases = append(cases, repository.TestCase{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			IsHidden:       tc.IsHidden,
		})
	}
	return service.CreateInput{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		Category:         req.Category,
		Points:           req.Points,
		Flag:             req.Flag,
		TestCases:        cases,
		AllowedLanguages: req.AllowedLanguages,
		CPUTimeLimit:     req.CPUTimeLimit,
		MemoryLimit:      req.MemoryLimit,
		IsActive:         req.IsActive,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
	}
}

func toChallengeResponse(view service.ChallengeView) ChallengeResponse {
	cases := make([]TestCasePayload, 0, len(view.PublicTestCases))
	for _, tc := range view.PublicTestCases {
		cases = append(cases, TestCasePayload{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
		})
	}
	return ChallengeResponse{
		ID:               view.ID,
		Title:            view.Title,
		Description:      view.Description,
		Difficulty:       view.Difficulty,
		Category:         view.Category,
		Points:           view.Points,
		AcceptsFlag:      view.AcceptsFlag,
		Solved:           view.Solved,
		TestCases:        cases,
		AllowedLanguages: view.AllowedLanguages,
		CPUTimeLimit:     view.CPUTimeLimit,
		MemoryLimit:      view.MemoryLimit,
		IsActive:         view.IsActive,
		StartTime:        view.StartTime,
		EndTime:          view.EndTime,
		SubmissionCount:  view.SubmissionCount,
		SolvedCount:      view.SolvedCount,
	}
}
