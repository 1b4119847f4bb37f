// Package mockjudge is an in-memory stand-in for the judge platform API.
// It exists so the client can be developed and end-to-end tested without
// any real infrastructure: payload shapes, error bodies and the token
// refresh flow all match what the platform emits.
package mockjudge

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"ojcli/internal/client/submit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Config controls token lifetimes and the judged-status schedule.
type Config struct {
	JWTSecret  []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	PendingFor time.Duration
	RunningFor time.Duration
}

func (c *Config) applyDefaults() {
	if len(c.JWTSecret) == 0 {
		c.JWTSecret = []byte("mockjudge-dev-secret")
	}
	if c.AccessTTL == 0 {
		c.AccessTTL = 15 * time.Minute
	}
	if c.RefreshTTL == 0 {
		c.RefreshTTL = 24 * time.Hour
	}
	if c.PendingFor == 0 {
		c.PendingFor = 2 * time.Second
	}
	if c.RunningFor == 0 {
		c.RunningFor = 3 * time.Second
	}
}

// Server wires the store and token issuer behind a gin engine.
type Server struct {
	store  *Store
	issuer *tokenIssuer
	engine *gin.Engine
}

// New creates a mock judge server.
func New(cfg Config) *Server {
	cfg.applyDefaults()
	s := &Server{
		store:  NewStore(cfg.PendingFor, cfg.RunningFor),
		issuer: newTokenIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
	}
	s.engine = s.routes()
	return s
}

// Store exposes the backing store, mainly for test seeding.
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	// RedirectTrailingSlash is on by default, so both the trailing-slash
	// and bare path forms resolve to the routes below.

	r.POST("/api/users/register/", s.register)
	r.POST("/api/users/login/", s.login)
	r.POST("/api/users/token/refresh/", s.refresh)
	r.POST("/api/users/resend-verify/", s.resendVerify)
	r.GET("/api/users/email-verify/:uid/:token/", s.verifyEmail)
	r.POST("/api/users/logout/", s.requireAuth, s.logout)
	r.GET("/api/users/:username/submissions/", s.requireAuth, s.userSubmissions)

	r.GET("/api/problems/", s.listProblems)
	r.GET("/api/problems/:slug/description/", s.problemBySlug)
	r.POST("/api/problems/:slug/submit/", s.requireAuth, s.submitCode)
	r.GET("/api/problems/:slug/submissions/:username/", s.requireAuth, s.problemSubmissions)

	r.GET("/api/submissions/:id/", s.requireAuth, s.submissionStatus)

	r.POST("/api/ai/get-hint/", s.requireAuth, s.aiHint)
	r.POST("/api/ai/explain-problem/:id/", s.requireAuth, s.aiExplain)
	r.POST("/api/ai/analyze-submission/:id/", s.requireAuth, s.aiAnalyze)

	return r
}

// requireAuth validates the bearer token and stores the caller's username
// on the context. Error bodies use the platform's detail shape.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"detail": "Authentication credentials were not provided.",
		})
		return
	}
	username, err := s.issuer.Validate(strings.TrimPrefix(header, "Bearer "), tokenTypeAccess)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"detail": "Given token not valid for any token type",
			"code":   "token_not_valid",
		})
		return
	}
	c.Set("username", username)
}

// ---- account lifecycle ----

func (s *Server) register(c *gin.Context) {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Institute string `json:"institute"`
		Bio       string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid request body."}})
		return
	}
	if req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"username": []string{"This field may not be blank."}})
		return
	}
	if !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"email": []string{"Enter a valid email address."}})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"password": []string{"Password is too short."}})
		return
	}
	user := &User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Institute:   req.Institute,
		Bio:         req.Bio,
		VerifyUID:   uuid.NewString(),
		VerifyToken: uuid.NewString(),
	}
	if !s.store.AddUser(user) {
		c.JSON(http.StatusBadRequest, gin.H{"email": []string{"user with this email already exists."}})
		return
	}
	// A real deployment mails the link; the mock hands it back so local
	// flows can complete without a mailbox.
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Verification Email Send",
		"verify_uid":   user.VerifyUID,
		"verify_token": user.VerifyToken,
	})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid request body."}})
		return
	}
	user, ok := s.store.UserByEmail(req.Email)
	if !ok || user.Password != req.Password {
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid email or password"}})
		return
	}
	access, refreshToken, err := s.issuer.IssuePair(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Login successful.",
		"is_verified":   user.Verified,
		"is_author":     false,
		"email":         user.Email,
		"access_token":  access,
		"refresh_token": refreshToken,
		"username":      user.Username,
	})
}

func (s *Server) refresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"refresh": []string{"This field may not be blank."}})
		return
	}
	access, err := s.issuer.RefreshAccess(req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (s *Server) resendVerify(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid request body."}})
		return
	}
	user, ok := s.store.UserByEmail(req.Email)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if user.Verified {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already verified"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification Email Send"})
}

func (s *Server) verifyEmail(c *gin.Context) {
	if !s.store.VerifyUser(c.Param("uid"), c.Param("token")) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Verification Link Expired."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully."})
}

func (s *Server) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful."})
}

// ---- problems ----

func (s *Server) listProblems(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Problems())
}

func (s *Server) problemBySlug(c *gin.Context) {
	problem, ok := s.store.ProblemBySlug(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		return
	}
	c.JSON(http.StatusOK, problem)
}

// ---- submissions ----

func (s *Server) submitCode(c *gin.Context) {
	var req struct {
		Code     string `json:"code"`
		Language string `json:"language"`
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Invalid request body."}})
		return
	}
	slug := c.Param("slug")
	if _, ok := s.store.ProblemBySlug(slug); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": []string{"This field may not be blank."}})
		return
	}
	if !submit.SupportedLanguage(req.Language) {
		c.JSON(http.StatusBadRequest, gin.H{"language": []string{"Unsupported language."}})
		return
	}
	username := c.GetString("username")
	sub := s.store.CreateSubmission(username, slug, req.Code, req.Language)
	view := s.store.View(sub)
	c.JSON(http.StatusCreated, gin.H{
		"id":            sub.ID,
		"submission_id": sub.ID,
		"status":        view.Status,
	})
}

func (s *Server) submissionStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}
	sub, ok := s.store.Submission(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, s.store.View(sub))
}

func (s *Server) problemSubmissions(c *gin.Context) {
	views := s.views(s.store.SubmissionsFor(c.Param("slug"), c.Param("username")))
	c.JSON(http.StatusOK, views)
}

func (s *Server) userSubmissions(c *gin.Context) {
	views := s.views(s.store.SubmissionsFor("", c.Param("username")))
	c.JSON(http.StatusOK, views)
}

func (s *Server) views(subs []*Submission) []SubmissionView {
	views := make([]SubmissionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, s.store.View(sub))
	}
	return views
}

// ---- AI assist ----

func (s *Server) aiHint(c *gin.Context) {
	var req struct {
		ProblemID int64  `json:"problem_id"`
		Code      string `json:"code"`
		Language  string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hint": "Consider what data structure gives you O(1) lookups for previously seen values.",
	})
}

func (s *Server) aiExplain(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"explanation": "The problem asks you to search for a pair of values with a fixed sum.",
	})
}

func (s *Server) aiAnalyze(c *gin.Context) {
	var req struct {
		SubmissionID int64 `json:"submission_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SubmissionID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submission ID is required"})
		return
	}
	if _, ok := s.store.Submission(req.SubmissionID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"time_complexity":  "O(n)",
		"space_complexity": "O(n)",
		"explanation":      "Single pass with a hash map.",
	})
}
