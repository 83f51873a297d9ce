package controller

import (
	"time"

	"duothan/internal/judge"
	"duothan/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// JudgeController exposes judge introspection endpoints.
type JudgeController struct {
	client *judge.Client
}

// NewJudgeController creates a new JudgeController.
func NewJudgeController(client *judge.Client) *JudgeController {
	return &JudgeController{client: client}
}

// Languages returns the judge's supported languages.
func (h *JudgeController) Languages(c *gin.Context) {
	languages, err := h.client.Languages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, languages)
}

// Statuses returns the judge's status code table.
func (h *JudgeController) Statuses(c *gin.Context) {
	statuses, err := h.client.Statuses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, statuses)
}

// Health probes the judge with the configured credentials.
func (h *JudgeController) Health(c *gin.Context) {
	if err := h.client.Authenticate(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}

// ExecRequest is an ad-hoc execution request forwarded to the judge.
type ExecRequest struct {
	SourceCode     string  `json:"source_code" binding:"required"`
	LanguageID     int     `json:"language_id" binding:"required"`
	Stdin          string  `json:"stdin"`
	ExpectedOutput string  `json:"expected_output"`
	CPUTimeLimit   float64 `json:"cpu_time_limit"`
	MemoryLimit    int     `json:"memory_limit"`
}

// Submit forwards a raw execution to the judge, outside any challenge.
// Admin only. Pass ?wait=true to block until the run is terminal.
func (h *JudgeController) Submit(c *gin.Context) {
	var req ExecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	wait := c.Query("wait") == "true"
	result, err := h.client.Submit(c.Request.Context(), judge.SubmissionRequest{
		SourceCode:     req.SourceCode,
		LanguageID:     req.LanguageID,
		Stdin:          req.Stdin,
		ExpectedOutput: req.ExpectedOutput,
		CPUTimeLimit:   req.CPUTimeLimit,
		MemoryLimit:    req.MemoryLimit,
	}, wait)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Result fetches the current judge result for a token. Admin only.
func (h *JudgeController) Result(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "Missing submission token")
		return
	}

	result, err := h.client.GetResult(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Poll bounds for the blocking passthrough. Ops requests hold an HTTP
// connection open, so these stay well under typical proxy timeouts.
const (
	pollMaxAttempts = 20
	pollInterval    = 500 * time.Millisecond
)

// Poll blocks until the judge reports a terminal result for a token, or
// the attempt budget runs out. Admin only.
func (h *JudgeController) Poll(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "Missing submission token")
		return
	}

	result, err := h.client.PollUntilTerminal(c.Request.Context(), token, pollMaxAttempts, pollInterval)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ConfigInfo returns the judge's runtime configuration. Admin only.
func (h *JudgeController) ConfigInfo(c *gin.Context) {
	info, err := h.client.ConfigInfo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// SystemInfo returns the judge's host system information. Admin only.
func (h *JudgeController) SystemInfo(c *gin.Context) {
	info, err := h.client.SystemInfo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}
