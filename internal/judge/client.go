package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appErr "duothan/pkg/errors"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollAttempts = 30
	defaultPollInterval = time.Second

	authTokenHeader = "X-Auth-Token"
)

// Config holds judge client settings.
type Config struct {
	BaseURL  string        `yaml:"baseURL"`
	APIToken string        `yaml:"apiToken"`
	Timeout  time.Duration `yaml:"timeout"`

	// PollMaxAttempts and PollInterval bound PollUntilTerminal when the
	// caller passes zero values.
	PollMaxAttempts int           `yaml:"pollMaxAttempts"`
	PollInterval    time.Duration `yaml:"pollInterval"`
}

// Client is a typed client for a Judge0-compatible execution API.
type Client struct {
	baseURL         string
	apiToken        string
	httpClient      *http.Client
	pollMaxAttempts int
	pollInterval    time.Duration
}

// NewClient creates a judge client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("judge baseURL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := cfg.PollMaxAttempts
	if attempts <= 0 {
		attempts = defaultPollAttempts
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:        cfg.APIToken,
		httpClient:      &http.Client{Timeout: timeout},
		pollMaxAttempts: attempts,
		pollInterval:    interval,
	}, nil
}

// Submit dispatches one execution request. With wait=true the judge blocks
// until the run reaches a terminal state before responding; with wait=false
// it returns immediately with a token.
func (c *Client) Submit(ctx context.Context, req SubmissionRequest, wait bool) (SubmissionResult, error) {
	if strings.TrimSpace(req.SourceCode) == "" {
		return SubmissionResult{}, appErr.ValidationError("source_code", "required")
	}
	if req.LanguageID <= 0 {
		return SubmissionResult{}, appErr.ValidationError("language_id", "required")
	}

	path := "/submissions/"
	if wait {
		path = "/submissions/?wait=true"
	}
	var result SubmissionResult
	if err := c.do(ctx, http.MethodPost, path, req, &result); err != nil {
		return SubmissionResult{}, err
	}
	return result, nil
}

// GetResult fetches the result for a dispatched execution by token.
// The optional fields list restricts the returned columns.
func (c *Client) GetResult(ctx context.Context, token string, fields ...string) (SubmissionResult, error) {
	if token == "" {
		return SubmissionResult{}, appErr.ValidationError("token", "required")
	}
	path := "/submissions/" + url.PathEscape(token)
	if len(fields) > 0 {
		path += "?fields=" + url.QueryEscape(strings.Join(fields, ","))
	}
	var result SubmissionResult
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return SubmissionResult{}, err
	}
	return result, nil
}

// SubmitBatch dispatches multiple execution requests in one round trip.
func (c *Client) SubmitBatch(ctx context.Context, reqs []SubmissionRequest) ([]SubmissionResult, error) {
	if len(reqs) == 0 {
		return nil, appErr.ValidationError("submissions", "required")
	}
	payload := struct {
		Submissions []SubmissionRequest `json:"submissions"`
	}{Submissions: reqs}

	var results []SubmissionResult
	if err := c.do(ctx, http.MethodPost, "/submissions/batch", payload, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetResultBatch fetches results for multiple tokens in one round trip.
func (c *Client) GetResultBatch(ctx context.Context, tokens []string, fields ...string) ([]SubmissionResult, error) {
	if len(tokens) == 0 {
		return nil, appErr.ValidationError("tokens", "required")
	}
	path := "/submissions/batch?tokens=" + url.QueryEscape(strings.Join(tokens, ","))
	if len(fields) > 0 {
		path += "&fields=" + url.QueryEscape(strings.Join(fields, ","))
	}
	var envelope struct {
		Submissions []SubmissionResult `json:"submissions"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Submissions, nil
}

// PollUntilTerminal polls GetResult until the run reaches a terminal status.
// Zero maxAttempts/interval fall back to the client defaults. If no terminal
// status is observed within maxAttempts, a JudgePollTimeout error is returned.
func (c *Client) PollUntilTerminal(ctx context.Context, token string, maxAttempts int, interval time.Duration) (SubmissionResult, error) {
	if maxAttempts <= 0 {
		maxAttempts = c.pollMaxAttempts
	}
	if interval <= 0 {
		interval = c.pollInterval
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := c.GetResult(ctx, token)
		if err != nil {
			// Keep polling through transient fetch failures; the attempt
			// budget still bounds the loop.
			lastErr = err
		} else if result.Status.IsTerminal() {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return SubmissionResult{}, appErr.Wrapf(ctx.Err(), appErr.JudgePollTimeout, "polling canceled for token %s", token)
		case <-time.After(interval):
		}
	}

	if lastErr != nil {
		return SubmissionResult{}, appErr.Wrapf(lastErr, appErr.JudgePollTimeout, "polling timed out for token %s", token)
	}
	return SubmissionResult{}, appErr.Newf(appErr.JudgePollTimeout, "no terminal status for token %s after %d attempts", token, maxAttempts)
}

// Languages returns the judge's supported languages.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	var languages []Language
	if err := c.do(ctx, http.MethodGet, "/languages", nil, &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

// Language returns one language by id.
func (c *Client) Language(ctx context.Context, id int) (Language, error) {
	var language Language
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/languages/%d", id), nil, &language); err != nil {
		return Language{}, err
	}
	return language, nil
}

// Statuses returns the judge's status code table.
func (c *Client) Statuses(ctx context.Context) ([]Status, error) {
	var statuses []Status
	if err := c.do(ctx, http.MethodGet, "/statuses", nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// ConfigInfo returns the judge's runtime configuration.
func (c *Client) ConfigInfo(ctx context.Context) (map[string]interface{}, error) {
	var info map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/config_info", nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// SystemInfo returns the judge's host system information.
func (c *Client) SystemInfo(ctx context.Context) (map[string]interface{}, error) {
	var info map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/system_info", nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// Authenticate probes the judge with the configured API token.
func (c *Client) Authenticate(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/authenticate", nil, nil)
}

// do executes one HTTP round trip against the judge and decodes the response
// into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode judge request failed: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build judge request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set(authTokenHeader, c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return appErr.Wrapf(err, appErr.JudgeTransport, "no response from judge at %s", c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErr.Wrapf(err, appErr.JudgeAPIError, "decode judge response failed")
	}
	return nil
}

// errorFromResponse maps judge HTTP errors onto the client error taxonomy so
// callers can distinguish retryable conditions from hard failures.
func (c *Client) errorFromResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(data))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return appErr.New(appErr.JudgeAuthFailed).WithDetail("body", detail)
	case http.StatusUnprocessableEntity:
		return appErr.Newf(appErr.JudgeRejected, "judge rejected payload: %s", detail)
	case http.StatusServiceUnavailable:
		return appErr.New(appErr.JudgeUnavailable).WithDetail("body", detail)
	default:
		return appErr.Newf(appErr.JudgeAPIError, "judge API error %d: %s", resp.StatusCode, detail)
	}
}
