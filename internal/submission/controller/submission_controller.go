package controller

import (
	"strconv"

	"duothan/internal/submission/service"
	"duothan/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// SubmissionController handles submission HTTP endpoints.
type SubmissionController struct {
	submissionService *service.SubmissionService
}

// NewSubmissionController creates a new SubmissionController.
func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{submissionService: submissionService}
}

// Create accepts a submission and queues it for grading.
func (h *SubmissionController) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), service.SubmitInput{
		TeamID:      c.GetInt64("team_id"),
		ChallengeID: req.ChallengeID,
		LanguageID:  req.LanguageID,
		SourceCode:  req.SourceCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, service.ToCreateView(submission))
}

// Get returns one of the team's submissions with full results.
func (h *SubmissionController) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid submission id")
		return
	}

	submission, err := h.submissionService.GetSubmission(c.Request.Context(), c.GetInt64("team_id"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, service.ToView(submission))
}

// Status returns the lightweight grading snapshot for polling clients.
func (h *SubmissionController) Status(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid submission id")
		return
	}

	snapshot, err := h.submissionService.GetStatus(c.Request.Context(), c.GetInt64("team_id"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snapshot)
}

// Source returns the source code of one of the team's submissions.
func (h *SubmissionController) Source(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid submission id")
		return
	}

	source, err := h.submissionService.GetSource(c.Request.Context(), c.GetInt64("team_id"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, source)
}

// List returns the team's submissions for a challenge, newest first.
func (h *SubmissionController) List(c *gin.Context) {
	challengeID, err := strconv.ParseInt(c.Query("challenge_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid challenge id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	submissions, err := h.submissionService.List(c.Request.Context(), c.GetInt64("team_id"), challengeID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	views := make([]service.SubmissionView, 0, len(submissions))
	for _, submission := range submissions {
		views = append(views, service.ToView(submission))
	}
	response.Success(c, views)
}

// CreateRequest defines the submission payload.
type CreateRequest struct {
	ChallengeID int64  `json:"challenge_id" binding:"required"`
	LanguageID  int    `json:"language_id" binding:"required"`
	SourceCode  string `json:"source_code" binding:"required"`
}
