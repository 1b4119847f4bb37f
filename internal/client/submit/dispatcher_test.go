package submit

import (
	"context"
	"testing"

	"ojcli/internal/client/judge"
	"ojcli/internal/client/verdict"
	pkgerrors "ojcli/pkg/errors"
)

type fakeSender struct {
	calls   int
	receipt judge.SubmitReceipt
	err     error
}

func (f *fakeSender) SubmitCode(ctx context.Context, slug, code, language, username string) (judge.SubmitReceipt, error) {
	f.calls++
	return f.receipt, f.err
}

func TestSubmitValidatesBeforeSending(t *testing.T) {
	cases := []struct {
		name string
		req  Request
		code pkgerrors.ErrorCode
	}{
		{
			name: "blank code",
			req:  Request{ProblemSlug: "two-sum", Code: "   \n\t", Language: "python", Username: "demo"},
			code: pkgerrors.EmptyCode,
		},
		{
			name: "empty code",
			req:  Request{ProblemSlug: "two-sum", Language: "python", Username: "demo"},
			code: pkgerrors.EmptyCode,
		},
		{
			name: "missing problem",
			req:  Request{Code: "print(1)", Language: "python", Username: "demo"},
			code: pkgerrors.MissingProblem,
		},
		{
			name: "missing username",
			req:  Request{ProblemSlug: "two-sum", Code: "print(1)", Language: "python"},
			code: pkgerrors.MissingUsername,
		},
		{
			name: "unsupported language",
			req:  Request{ProblemSlug: "two-sum", Code: "print(1)", Language: "cobol", Username: "demo"},
			code: pkgerrors.LanguageNotSupported,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender := &fakeSender{}
			_, err := NewDispatcher(sender).Submit(context.Background(), tc.req)
			if !pkgerrors.Is(err, tc.code) {
				t.Fatalf("expected code %d, got %v", tc.code, err)
			}
			// Local rejection must never cost a round trip.
			if sender.calls != 0 {
				t.Fatalf("sender called %d times, want 0", sender.calls)
			}
		})
	}
}

func TestSubmitSendsOnce(t *testing.T) {
	sender := &fakeSender{
		receipt: judge.SubmitReceipt{ID: 42, Status: verdict.StatusPending},
	}
	result, err := NewDispatcher(sender).Submit(context.Background(), Request{
		ProblemSlug: "two-sum",
		Code:        "print(1)",
		Language:    "python",
		Username:    "demo",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("sender called %d times, want 1", sender.calls)
	}
	if result.ID != 42 || result.Status != verdict.StatusPending {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSubmitSurfacesServerRejection(t *testing.T) {
	sender := &fakeSender{err: pkgerrors.New(pkgerrors.ServerRejected).WithMessage("This field may not be blank.")}
	_, err := NewDispatcher(sender).Submit(context.Background(), Request{
		ProblemSlug: "two-sum",
		Code:        "print(1)",
		Language:    "python",
		Username:    "demo",
	})
	if !pkgerrors.Is(err, pkgerrors.ServerRejected) {
		t.Fatalf("expected ServerRejected, got %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("sender called %d times, want 1", sender.calls)
	}
}

func TestSupportedLanguage(t *testing.T) {
	for _, lang := range []string{"python", "javascript", "java", "cpp"} {
		if !SupportedLanguage(lang) {
			t.Fatalf("%s should be supported", lang)
		}
	}
	if SupportedLanguage("Python") || SupportedLanguage("") {
		t.Fatalf("language matching must be exact")
	}
}
