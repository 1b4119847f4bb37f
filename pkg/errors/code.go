package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 20000-20999: Generic, config & local validation errors
// 21000-21999: Session & authentication errors
// 22000-22999: Transport & server errors
// 23000-23999: Submission lifecycle errors
// 24000-24999: Problem & AI assist errors

const (
	// ========== Generic & Local Errors (20000-20999) ==========

	// Success
	Success ErrorCode = 20000

	// Generic errors (20000-20099)
	InternalError ErrorCode = 20001
	InvalidParams ErrorCode = 20002
	NotFound      ErrorCode = 20003
	Canceled      ErrorCode = 20004

	// Config & durable state errors (20100-20199)
	ConfigLoadFailed ErrorCode = 20100
	StateLoadFailed  ErrorCode = 20101
	StateSaveFailed  ErrorCode = 20102
	StateClearFailed ErrorCode = 20103

	// Local validation errors (20200-20299)
	ValidationFailed     ErrorCode = 20200
	EmptyCode            ErrorCode = 20201
	LanguageNotSupported ErrorCode = 20202
	MissingProblem       ErrorCode = 20203
	MissingUsername      ErrorCode = 20204

	// ========== Session & Authentication Errors (21000-21999) ==========

	NotAuthenticated   ErrorCode = 21000
	SessionExpired     ErrorCode = 21001
	RefreshFailed      ErrorCode = 21002
	TokenInvalid       ErrorCode = 21003
	InvalidCredentials ErrorCode = 21004
	AccountNotVerified ErrorCode = 21005

	// ========== Transport & Server Errors (22000-22999) ==========

	RequestFailed        ErrorCode = 22000
	RequestBuildFailed   ErrorCode = 22001
	ResponseDecodeFailed ErrorCode = 22002
	ServerRejected       ErrorCode = 22003
	ServerError          ErrorCode = 22004
	RateLimited          ErrorCode = 22005

	// ========== Submission Lifecycle Errors (23000-23999) ==========

	SubmitRejected     ErrorCode = 23000
	SubmissionNotFound ErrorCode = 23001
	PollFailed         ErrorCode = 23002
	PollTimeout        ErrorCode = 23003
	WatchClosed        ErrorCode = 23004

	// ========== Problem & AI Assist Errors (24000-24999) ==========

	ProblemNotFound ErrorCode = 24000
	HintFailed      ErrorCode = 24100
	AnalysisFailed  ErrorCode = 24101
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// Generic
	Success:       "Success",
	InternalError: "Internal client error",
	InvalidParams: "Invalid parameters",
	NotFound:      "Resource not found",
	Canceled:      "Operation canceled",

	// Config & state
	ConfigLoadFailed: "Failed to load configuration",
	StateLoadFailed:  "Failed to load client state",
	StateSaveFailed:  "Failed to save client state",
	StateClearFailed: "Failed to clear client state",

	// Local validation
	ValidationFailed:     "Validation failed",
	EmptyCode:            "Code must not be blank",
	LanguageNotSupported: "Programming language not supported",
	MissingProblem:       "Problem reference is required",
	MissingUsername:      "Username is required",

	// Session
	NotAuthenticated:   "Not authenticated",
	SessionExpired:     "Session expired, please log in again",
	RefreshFailed:      "Failed to refresh access token",
	TokenInvalid:       "Invalid token",
	InvalidCredentials: "Invalid email or password",
	AccountNotVerified: "Account email is not verified",

	// Transport
	RequestFailed:        "Request failed",
	RequestBuildFailed:   "Failed to build request",
	ResponseDecodeFailed: "Failed to decode server response",
	ServerRejected:       "Server rejected the request",
	ServerError:          "Server error",
	RateLimited:          "Too many requests, please try again later",

	// Submission lifecycle
	SubmitRejected:     "Submission was rejected",
	SubmissionNotFound: "Submission not found",
	PollFailed:         "Failed to poll submission status",
	PollTimeout:        "Gave up waiting for a verdict",
	WatchClosed:        "Submission watch is closed",

	// Problem & AI
	ProblemNotFound: "Problem not found",
	HintFailed:      "Failed to fetch hint",
	AnalysisFailed:  "Failed to analyze submission",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// Fatal reports whether the error code ends the session. Fatal codes force
// logout semantics: credentials are cleared and no retry is useful.
func (c ErrorCode) Fatal() bool {
	return c == SessionExpired || c == RefreshFailed
}

// Transient reports whether a later attempt of the same call may succeed.
func (c ErrorCode) Transient() bool {
	switch c {
	case RequestFailed, ServerError, RateLimited, PollFailed:
		return true
	default:
		return false
	}
}
