// Package judge is the typed client for the platform REST API. It only
// shapes requests and responses; auth and retry live in the transport.
package judge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ojcli/internal/client/transport"
)

// Client exposes the platform API operations.
type Client struct {
	t *transport.Client
}

// New creates a client over a session-guarded transport.
func New(t *transport.Client) *Client {
	return &Client{t: t}
}

// ---- Account lifecycle ----

// Login authenticates with email and password. The caller is responsible
// for installing the returned tokens into the session.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	payload := map[string]string{"email": email, "password": password}
	err := c.t.Do(ctx, http.MethodPost, "/api/users/login/", payload, &result)
	return result, err
}

// Register creates an account. The account stays unverified until the
// emailed link is followed.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (MessageResult, error) {
	var result MessageResult
	err := c.t.Do(ctx, http.MethodPost, "/api/users/register/", req, &result)
	return result, err
}

// ResendVerification requests a new verification mail.
func (c *Client) ResendVerification(ctx context.Context, email string) (MessageResult, error) {
	var result MessageResult
	payload := map[string]string{"email": email}
	err := c.t.Do(ctx, http.MethodPost, "/api/users/resend-verify/", payload, &result)
	return result, err
}

// VerifyEmail follows a verification link's uid/token pair.
func (c *Client) VerifyEmail(ctx context.Context, uid, token string) (MessageResult, error) {
	var result MessageResult
	path := fmt.Sprintf("/api/users/email-verify/%s/%s/", url.PathEscape(uid), url.PathEscape(token))
	err := c.t.Do(ctx, http.MethodGet, path, nil, &result)
	return result, err
}

// Logout invalidates the session server-side.
func (c *Client) Logout(ctx context.Context) (MessageResult, error) {
	var result MessageResult
	err := c.t.Do(ctx, http.MethodPost, "/api/users/logout/", map[string]string{}, &result)
	return result, err
}

// ---- Problems ----

// Problems lists all problems.
func (c *Client) Problems(ctx context.Context) ([]Problem, error) {
	var result []Problem
	err := c.t.Do(ctx, http.MethodGet, "/api/problems/", nil, &result)
	return result, err
}

// ProblemBySlug fetches one problem's full description.
func (c *Client) ProblemBySlug(ctx context.Context, slug string) (Problem, error) {
	var result Problem
	path := fmt.Sprintf("/api/problems/%s/description/", url.PathEscape(slug))
	err := c.t.Do(ctx, http.MethodGet, path, nil, &result)
	return result, err
}

// ---- Submissions ----

// SubmitCode creates a submission for a problem. It performs no local
// validation and starts no polling; the dispatcher owns both.
func (c *Client) SubmitCode(ctx context.Context, slug, code, language, username string) (SubmitReceipt, error) {
	var receipt SubmitReceipt
	payload := map[string]string{
		"code":     code,
		"language": language,
		"username": username,
	}
	path := fmt.Sprintf("/api/problems/%s/submit/", url.PathEscape(slug))
	err := c.t.Do(ctx, http.MethodPost, path, payload, &receipt)
	return receipt, err
}

// SubmissionStatus fetches the current state of one submission. Paths are
// normalized to the trailing-slash form.
func (c *Client) SubmissionStatus(ctx context.Context, id int64) (Submission, error) {
	var result Submission
	path := fmt.Sprintf("/api/submissions/%d/", id)
	err := c.t.Do(ctx, http.MethodGet, path, nil, &result)
	return result, err
}

// ProblemSubmissions lists a user's submissions for one problem.
func (c *Client) ProblemSubmissions(ctx context.Context, slug, username string) ([]Submission, error) {
	var result []Submission
	path := fmt.Sprintf("/api/problems/%s/submissions/%s/", url.PathEscape(slug), url.PathEscape(username))
	err := c.t.Do(ctx, http.MethodGet, path, nil, &result)
	return result, err
}

// UserSubmissions lists all of a user's submissions.
func (c *Client) UserSubmissions(ctx context.Context, username string) ([]Submission, error) {
	var result []Submission
	path := fmt.Sprintf("/api/users/%s/submissions/", url.PathEscape(username))
	err := c.t.Do(ctx, http.MethodGet, path, nil, &result)
	return result, err
}

// ---- AI assist ----

// Hint asks for a nudge on the current code.
func (c *Client) Hint(ctx context.Context, req HintRequest) (AssistResult, error) {
	var result AssistResult
	err := c.t.Do(ctx, http.MethodPost, "/api/ai/get-hint/", req, &result)
	return result, err
}

// ExplainProblem asks for a plain-language explanation of a problem.
func (c *Client) ExplainProblem(ctx context.Context, problemID int64) (AssistResult, error) {
	var result AssistResult
	path := fmt.Sprintf("/api/ai/explain-problem/%d/", problemID)
	err := c.t.Do(ctx, http.MethodPost, path, map[string]string{}, &result)
	return result, err
}

// AnalyzeSubmission asks for a complexity analysis of a finished submission.
func (c *Client) AnalyzeSubmission(ctx context.Context, problemID, submissionID int64, problemDescription string) (AssistResult, error) {
	var result AssistResult
	payload := map[string]interface{}{
		"submission_id": submissionID,
	}
	if problemDescription != "" {
		payload["problem_description"] = problemDescription
	}
	path := fmt.Sprintf("/api/ai/analyze-submission/%d/", problemID)
	err := c.t.Do(ctx, http.MethodPost, path, payload, &result)
	return result, err
}
