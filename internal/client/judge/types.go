package judge

import (
	"encoding/json"
	"time"

	"ojcli/internal/client/verdict"
)

// Problem is a problem listing entry or detail.
type Problem struct {
	ID          int64    `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	TimeLimit   int      `json:"time_limit,omitempty"`
	MemoryLimit int      `json:"memory_limit,omitempty"`
	Author      string   `json:"author,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// Submission is one evaluation attempt. Measurements and EvaluatedAt stay
// nil until a terminal status is reached.
type Submission struct {
	ID           int64          `json:"id"`
	User         string         `json:"user,omitempty"`
	Problem      string         `json:"problem,omitempty"`
	ProblemTitle string         `json:"problem_title,omitempty"`
	Code         string         `json:"code,omitempty"`
	Language     string         `json:"language,omitempty"`
	Status       verdict.Status `json:"status"`
	Verdict      string         `json:"verdict,omitempty"`
	Output       string         `json:"output,omitempty"`
	TimeTakenMs  *int64         `json:"time_taken"`
	MemoryUsedMb *int64         `json:"memory_used"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	EvaluatedAt  *time.Time     `json:"evaluated_at"`
}

// SubmitReceipt is the dispatch result: the server-assigned id and the
// initial status.
type SubmitReceipt struct {
	ID     int64
	Status verdict.Status
}

// UnmarshalJSON accepts both the documented {"id": ...} shape and the
// {"submission_id": ...} variant some deployments emit.
func (r *SubmitReceipt) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID           int64          `json:"id"`
		SubmissionID int64          `json:"submission_id"`
		Status       verdict.Status `json:"status"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.ID = wire.ID
	if r.ID == 0 {
		r.ID = wire.SubmissionID
	}
	r.Status = wire.Status
	return nil
}

// LoginResult is the account payload returned by a successful login.
type LoginResult struct {
	Message      string `json:"message"`
	IsVerified   bool   `json:"is_verified"`
	IsAuthor     bool   `json:"is_author"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
}

// RegisterRequest carries the fields for account creation.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Institute string `json:"institute,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// MessageResult is the generic {"message": ...} acknowledgement.
type MessageResult struct {
	Message string `json:"message"`
}

// HintRequest asks the AI assistant for a nudge on a problem.
type HintRequest struct {
	ProblemID          int64  `json:"problem_id"`
	Code               string `json:"code"`
	Language           string `json:"language"`
	ProblemDescription string `json:"problem_description,omitempty"`
}

// AssistResult is the AI assistant's free-form JSON answer. The backend
// stores whatever the model produced, so the shape is not fixed.
type AssistResult map[string]interface{}
