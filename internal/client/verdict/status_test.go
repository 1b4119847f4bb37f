package verdict

import "testing"

func TestTerminal(t *testing.T) {
	cases := []struct {
		status   Status
		terminal bool
	}{
		{StatusSubmitting, false},
		{StatusPending, false},
		{StatusRunning, false},
		{StatusAccepted, true},
		{StatusWrongAnswer, true},
		{StatusCompilationError, true},
		{StatusRuntimeError, true},
		{StatusTimeLimitExceeded, true},
		{StatusMemoryLimitExceeded, true},
		// Unknown statuses terminate so pollers never loop on them.
		{Status("judge_offline"), true},
		{Status(""), true},
	}
	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.terminal {
			t.Fatalf("Terminal(%q) = %v, want %v", tc.status, got, tc.terminal)
		}
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(StatusRunning); got != ClassNonTerminal {
		t.Fatalf("Classify(running) = %v, want non-terminal", got)
	}
	if got := Classify(StatusAccepted); got != ClassTerminalSuccess {
		t.Fatalf("Classify(accepted) = %v, want terminal success", got)
	}
	if got := Classify(StatusWrongAnswer); got != ClassTerminalFailure {
		t.Fatalf("Classify(wrong_answer) = %v, want terminal failure", got)
	}
	if got := Classify(Status("mystery")); got != ClassTerminalFailure {
		t.Fatalf("Classify(unknown) = %v, want terminal failure", got)
	}
}

func TestSeverityOf(t *testing.T) {
	if got := SeverityOf(StatusAccepted); got != SeveritySuccess {
		t.Fatalf("SeverityOf(accepted) = %v, want success", got)
	}
	for _, s := range []Status{StatusWrongAnswer, StatusCompilationError, StatusRuntimeError, StatusTimeLimitExceeded, StatusMemoryLimitExceeded} {
		if got := SeverityOf(s); got != SeverityDestructive {
			t.Fatalf("SeverityOf(%q) = %v, want destructive", s, got)
		}
	}
	if got := SeverityOf(StatusPending); got != SeverityNeutral {
		t.Fatalf("SeverityOf(pending) = %v, want neutral", got)
	}
	if got := SeverityOf(Status("mystery")); got != SeverityNeutral {
		t.Fatalf("SeverityOf(unknown) = %v, want neutral", got)
	}
}

func TestLabel(t *testing.T) {
	cases := map[Status]string{
		StatusAccepted:            "Accepted",
		StatusWrongAnswer:         "Wrong Answer",
		StatusTimeLimitExceeded:   "Time Limit Exceeded",
		StatusMemoryLimitExceeded: "Memory Limit Exceeded",
		Status("foo_bar"):         "Foo Bar",
		Status(""):                "",
	}
	for status, want := range cases {
		if got := Label(status); got != want {
			t.Fatalf("Label(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestKnown(t *testing.T) {
	if !StatusRunning.Known() {
		t.Fatalf("running should be a known status")
	}
	if Status("judge_offline").Known() {
		t.Fatalf("judge_offline should not be a known status")
	}
}
