package errclass

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"ConnectionRefused", errors.New("dial tcp 127.0.0.1:4000: connect: connection refused"), CodeRemoteEndpointNotFound},
		{"NoSuchHost", errors.New("lookup runtime.internal: no such host"), CodeRemoteEndpointNotFound},
		{"Unauthorized", errors.New("request failed: status 401 Unauthorized"), CodeAPINotFound},
		{"InvalidAPIKey", errors.New("invalid API key provided"), CodeAPINotFound},
		{"AgentMissing", errors.New(`agent not found: "planner"`), CodeAgentNotFound},
		{"Unknown", errors.New("something odd happened"), CodeUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			se := Classify(c.err)
			if se.Code != c.want {
				t.Errorf("Classify(%q) = %s, want %s", c.err, se.Code, c.want)
			}
			if !errors.Is(se, c.err) {
				t.Error("Classified error must wrap the original")
			}
		})
	}
}

func TestClassifyPassesThroughStructured(t *testing.T) {
	orig := Transport("http://runtime.local", 502, "bad gateway")

	se := Classify(fmt.Errorf("generate failed: %w", orig))

	if se != orig {
		t.Errorf("Expected the existing structured error back, got %+v", se)
	}
}

func TestClassifyNil(t *testing.T) {
	if se := Classify(nil); se != nil {
		t.Errorf("Classify(nil) = %+v, want nil", se)
	}
}

func TestIsAbort(t *testing.T) {
	aborts := []error{
		context.Canceled,
		fmt.Errorf("round trip: %w", context.Canceled),
		errors.New("Post \"http://a\": context canceled"),
		errors.New("the operation was aborted"),
		errors.New("read tcp: use of closed network connection"),
	}
	for _, err := range aborts {
		if !IsAbort(err) {
			t.Errorf("IsAbort(%q) = false, want true", err)
		}
	}

	if IsAbort(errors.New("connection refused")) {
		t.Error("Connection failures are not aborts")
	}
	if IsAbort(nil) {
		t.Error("IsAbort(nil) must be false")
	}
}

func TestStructuredErrorString(t *testing.T) {
	withURL := Protocol("http://agent.local/generate", "boom")
	if withURL.Error() != "PROTOCOL_ERROR: boom (http://agent.local/generate)" {
		t.Errorf("Unexpected error string: %s", withURL.Error())
	}

	noURL := Configuration("bad options")
	if noURL.Error() != "CONFIGURATION_ERROR: bad options" {
		t.Errorf("Unexpected error string: %s", noURL.Error())
	}
}

func TestVersionMismatchIsWarning(t *testing.T) {
	se := VersionMismatch("1.50.0", "1.49.0")
	if !se.IsWarning() {
		t.Error("Version mismatch must classify as a warning")
	}
	if se.Visibility != VisibilityDevOnly {
		t.Errorf("Expected dev-only visibility, got %s", se.Visibility)
	}
}

func TestDeduperWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	d := NewDeduper()
	d.now = func() time.Time { return now }

	if !d.ShouldReport("boom") {
		t.Fatal("First occurrence must be reported")
	}

	now = now.Add(100 * time.Millisecond)
	if d.ShouldReport("boom") {
		t.Error("Identical message within the window must be suppressed")
	}

	// Suppression refreshes the timestamp, so a steady stream of the same
	// message stays suppressed.
	now = now.Add(100 * time.Millisecond)
	if d.ShouldReport("boom") {
		t.Error("Refreshed window must keep suppressing")
	}

	now = now.Add(200 * time.Millisecond)
	if !d.ShouldReport("boom") {
		t.Error("Identical message outside the window must be reported")
	}
}

func TestDeduperDifferentMessages(t *testing.T) {
	now := time.Unix(1000, 0)
	d := NewDeduper()
	d.now = func() time.Time { return now }

	d.ShouldReport("boom")
	if !d.ShouldReport("bang") {
		t.Error("A different message must always be reported")
	}
	// "bang" displaced "boom", so "boom" reports again even inside the window.
	if !d.ShouldReport("boom") {
		t.Error("Only the most recent message is tracked")
	}
}

func TestReporter(t *testing.T) {
	t.Run("RoutesErrors", func(t *testing.T) {
		var got []*StructuredError
		r := NewReporter(func(se *StructuredError) { got = append(got, se) }, nil, false)

		r.Report(errors.New("connection refused"))

		if len(got) != 1 || got[0].Code != CodeRemoteEndpointNotFound {
			t.Errorf("Unexpected reported errors: %v", got)
		}
	})

	t.Run("DiscardsAborts", func(t *testing.T) {
		r := NewReporter(func(se *StructuredError) { t.Errorf("Abort reported: %v", se) }, nil, false)
		r.Report(context.Canceled)
	})

	t.Run("DeduplicatesIdentical", func(t *testing.T) {
		calls := 0
		r := NewReporter(func(*StructuredError) { calls++ }, nil, false)

		r.Report(errors.New("boom"))
		r.Report(errors.New("boom"))

		if calls != 1 {
			t.Errorf("Identical back-to-back errors reported %d times, want 1", calls)
		}
	})

	t.Run("WarningsSkipDedup", func(t *testing.T) {
		var warnings []string
		r := NewReporter(nil, func(msg string) { warnings = append(warnings, msg) }, false)

		r.Report(VersionMismatch("2", "1"))
		r.Report(VersionMismatch("2", "1"))

		if len(warnings) != 2 {
			t.Errorf("Warnings must bypass deduplication, got %d", len(warnings))
		}
	})

	t.Run("DevOnlyHiddenByDefault", func(t *testing.T) {
		r := NewReporter(func(se *StructuredError) { t.Errorf("Dev-only error surfaced: %v", se) }, nil, false)
		r.Report(&StructuredError{Code: CodeUnknown, Message: "internal detail", Visibility: VisibilityDevOnly})
	})

	t.Run("DevOnlyShownWithConsole", func(t *testing.T) {
		calls := 0
		r := NewReporter(func(*StructuredError) { calls++ }, nil, true)
		r.Report(&StructuredError{Code: CodeUnknown, Message: "internal detail", Visibility: VisibilityDevOnly})
		if calls != 1 {
			t.Errorf("Dev-only error reported %d times with console enabled, want 1", calls)
		}
	})
}
