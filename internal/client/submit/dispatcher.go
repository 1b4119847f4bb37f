// Package submit implements the submission lifecycle: dispatching code to
// the judge and polling the verdict until it is terminal.
package submit

import (
	"context"
	"strings"

	"ojcli/internal/client/judge"
	"ojcli/internal/client/verdict"
	pkgerrors "ojcli/pkg/errors"
	"ojcli/pkg/utils/logger"

	"go.uber.org/zap"
)

// Languages the judge accepts. Closed set; validated locally so a typo
// never costs a round trip.
var supportedLanguages = map[string]bool{
	"python":     true,
	"javascript": true,
	"java":       true,
	"cpp":        true,
}

// SupportedLanguage reports whether the judge accepts language.
func SupportedLanguage(language string) bool {
	return supportedLanguages[language]
}

// Sender creates submissions. *judge.Client satisfies it.
type Sender interface {
	SubmitCode(ctx context.Context, slug, code, language, username string) (judge.SubmitReceipt, error)
}

// Request carries everything needed to create one submission.
type Request struct {
	ProblemSlug string
	Code        string
	Language    string
	Username    string
}

// Result is the server-assigned identity of the new submission.
type Result struct {
	ID     int64
	Status verdict.Status
}

// Dispatcher validates and sends submissions. It never starts polling;
// the caller wires a Poller explicitly so tests can drive the lifecycle
// deterministically.
type Dispatcher struct {
	sender Sender
}

// NewDispatcher creates a dispatcher over a submission sender.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Submit validates the request locally, then issues a single create call.
// Validation failures return before any network traffic. A failed call
// surfaces as an error with nothing mutated and nothing to poll.
func (d *Dispatcher) Submit(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	receipt, err := d.sender.SubmitCode(ctx, req.ProblemSlug, req.Code, req.Language, req.Username)
	if err != nil {
		return Result{}, pkgerrors.GetError(err)
	}
	logger.Info(ctx, "submission created",
		zap.Int64("submission_id", receipt.ID),
		zap.String("problem", req.ProblemSlug),
		zap.String("status", string(receipt.Status)))
	return Result{ID: receipt.ID, Status: receipt.Status}, nil
}

func validate(req Request) error {
	if strings.TrimSpace(req.Code) == "" {
		return pkgerrors.New(pkgerrors.EmptyCode)
	}
	if req.ProblemSlug == "" {
		return pkgerrors.New(pkgerrors.MissingProblem)
	}
	if req.Username == "" {
		return pkgerrors.New(pkgerrors.MissingUsername)
	}
	if !SupportedLanguage(req.Language) {
		return pkgerrors.New(pkgerrors.LanguageNotSupported).WithDetail("language", req.Language)
	}
	return nil
}
