package mockjudge

import (
	"strings"
	"sync"
	"time"

	"ojcli/internal/client/verdict"
)

// User is a registered account.
type User struct {
	Username    string
	Email       string
	Password    string
	Institute   string
	Bio         string
	Verified    bool
	VerifyUID   string
	VerifyToken string
}

// Problem is a fixture problem.
type Problem struct {
	ID          int64    `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	Topics      []string `json:"topics"`
	TimeLimit   int      `json:"time_limit"`
	MemoryLimit int      `json:"memory_limit"`
	Author      string   `json:"author"`
}

// Submission is one stored attempt. Status is not stored: it is derived
// from age, which makes the progression monotonic by construction and a
// terminal verdict trivially immutable.
type Submission struct {
	ID          int64
	Username    string
	ProblemSlug string
	Code        string
	Language    string
	FinalStatus verdict.Status
	SubmittedAt time.Time
}

// SubmissionView is the wire shape of one submission at a point in time.
type SubmissionView struct {
	ID          int64          `json:"id"`
	User        string         `json:"user"`
	Problem     string         `json:"problem"`
	Code        string         `json:"code"`
	Language    string         `json:"language"`
	Status      verdict.Status `json:"status"`
	TimeTaken   *int64         `json:"time_taken"`
	MemoryUsed  *int64         `json:"memory_used"`
	SubmittedAt time.Time      `json:"submitted_at"`
	EvaluatedAt *time.Time     `json:"evaluated_at"`
}

// Store holds all mock state in memory.
type Store struct {
	mu          sync.Mutex
	usersByMail map[string]*User
	problems    []Problem
	submissions map[int64]*Submission
	nextID      int64

	pendingFor time.Duration
	runningFor time.Duration
}

// NewStore creates a store seeded with fixture problems. pendingFor and
// runningFor control how long a submission reports each non-terminal
// status before settling on its verdict.
func NewStore(pendingFor, runningFor time.Duration) *Store {
	return &Store{
		usersByMail: make(map[string]*User),
		submissions: make(map[int64]*Submission),
		nextID:      1,
		pendingFor:  pendingFor,
		runningFor:  runningFor,
		problems: []Problem{
			{
				ID: 1, Slug: "two-sum", Title: "Two Sum",
				Description: "Given an array of integers and a target, return indices of the two numbers that add up to the target.",
				Difficulty:  "easy", Topics: []string{"arrays", "hash-table"},
				TimeLimit: 1000, MemoryLimit: 256, Author: "admin",
			},
			{
				ID: 2, Slug: "longest-path", Title: "Longest Path",
				Description: "Find the longest simple path in a directed acyclic graph.",
				Difficulty:  "hard", Topics: []string{"graphs", "dp"},
				TimeLimit: 2000, MemoryLimit: 512, Author: "admin",
			},
		},
	}
}

// ---- users ----

func (s *Store) AddUser(u *User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByMail[u.Email]; exists {
		return false
	}
	s.usersByMail[u.Email] = u
	return true
}

func (s *Store) UserByEmail(email string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usersByMail[email]
	return u, ok
}

func (s *Store) VerifyUser(uid, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.usersByMail {
		if u.VerifyUID == uid && u.VerifyToken == token {
			u.Verified = true
			return true
		}
	}
	return false
}

// ---- problems ----

func (s *Store) Problems() []Problem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Problem, len(s.problems))
	copy(out, s.problems)
	return out
}

func (s *Store) ProblemBySlug(slug string) (Problem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.problems {
		if p.Slug == slug {
			return p, true
		}
	}
	return Problem{}, false
}

// ---- submissions ----

// CreateSubmission stores an attempt and decides its eventual verdict up
// front from markers in the code, so local runs are reproducible.
func (s *Store) CreateSubmission(username, slug, code, language string) *Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &Submission{
		ID:          s.nextID,
		Username:    username,
		ProblemSlug: slug,
		Code:        code,
		Language:    language,
		FinalStatus: verdictFor(code),
		SubmittedAt: time.Now(),
	}
	s.nextID++
	s.submissions[sub.ID] = sub
	return sub
}

func (s *Store) Submission(id int64) (*Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	return sub, ok
}

func (s *Store) SubmissionsFor(slug, username string) []*Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Submission
	for _, sub := range s.submissions {
		if (slug == "" || sub.ProblemSlug == slug) && sub.Username == username {
			out = append(out, sub)
		}
	}
	return out
}

// View projects a submission to its wire shape at the current time.
func (s *Store) View(sub *Submission) SubmissionView {
	age := time.Since(sub.SubmittedAt)
	view := SubmissionView{
		ID:          sub.ID,
		User:        sub.Username,
		Problem:     sub.ProblemSlug,
		Code:        sub.Code,
		Language:    sub.Language,
		SubmittedAt: sub.SubmittedAt,
	}
	switch {
	case age < s.pendingFor:
		view.Status = verdict.StatusPending
	case age < s.pendingFor+s.runningFor:
		view.Status = verdict.StatusRunning
	default:
		view.Status = sub.FinalStatus
		evaluatedAt := sub.SubmittedAt.Add(s.pendingFor + s.runningFor)
		view.EvaluatedAt = &evaluatedAt
		timeTaken := int64(120)
		memoryUsed := int64(14)
		view.TimeTaken = &timeTaken
		view.MemoryUsed = &memoryUsed
	}
	return view
}

// verdictFor picks the terminal status from markers in the code. Plain
// code is accepted.
func verdictFor(code string) verdict.Status {
	lowered := strings.ToLower(code)
	switch {
	case strings.Contains(lowered, "wrong"):
		return verdict.StatusWrongAnswer
	case strings.Contains(lowered, "syntax"):
		return verdict.StatusCompilationError
	case strings.Contains(lowered, "crash"):
		return verdict.StatusRuntimeError
	case strings.Contains(lowered, "spin"):
		return verdict.StatusTimeLimitExceeded
	case strings.Contains(lowered, "hoard"):
		return verdict.StatusMemoryLimitExceeded
	default:
		return verdict.StatusAccepted
	}
}
