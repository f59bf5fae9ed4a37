package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cjkspacing/internal/logging/console"
)

type testMessage struct{}

func (testMessage) Type() string { return "cjk.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "cjk.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerTagsFailuresWithCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"plain failure", errors.New("boom"), RunFailedCode},
		{"canceled", fmt.Errorf("walk: %w", context.Canceled), RunCanceledCode},
		{"deadline", context.DeadlineExceeded, RunDeadlineCode},
		{"already tagged", goerrors.Wrap(errors.New("bad"), goerrors.CategoryValidation, "bad input").WithTextCode("RAW_INPUT_INVALID_UTF8"), "RAW_INPUT_INVALID_UTF8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler[testMessage](func(context.Context, testMessage) error { return tc.err })
			err := h.Execute(context.Background(), testMessage{})
			if got := ErrorCode(err); got != tc.want {
				t.Fatalf("expected code %q, got %q (%v)", tc.want, got, err)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected cause to be preserved, got %v", err)
			}
		})
	}
}

func TestHandlerValidationCarriesRequestCode(t *testing.T) {
	err := NewHandler[invalidMessage](func(context.Context, invalidMessage) error { return nil }).
		Execute(context.Background(), invalidMessage{})
	if got := ErrorCode(err); got != RequestInvalidCode {
		t.Fatalf("expected %q, got %q", RequestInvalidCode, got)
	}
}

func TestHandlerPassesDeclinedAnswersThrough(t *testing.T) {
	declined := fmt.Errorf("%w: renderer pdf", ErrDeclined)
	var reports []Report
	h := NewHandler[testMessage](func(context.Context, testMessage) error { return declined },
		WithReporter[testMessage](func(_ context.Context, _ testMessage, report Report) {
			reports = append(reports, report)
		}),
	)

	err := h.Execute(context.Background(), testMessage{})
	if err != declined {
		t.Fatalf("expected declined error returned as is, got %v", err)
	}
	if goerrors.IsWrapped(err) {
		t.Fatalf("expected declined error to stay untagged, got %v", err)
	}
	if len(reports) != 1 || reports[0].Status != StatusDeclined || reports[0].Code != "" {
		t.Fatalf("unexpected reports %+v", reports)
	}
}

func TestHandlerReportsOutcome(t *testing.T) {
	var got []Report
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	},
		WithOperation[testMessage]("join"),
		WithMessageFields[testMessage](func(testMessage) map[string]any {
			return map[string]any{"renderer": "html"}
		}),
		WithReporter[testMessage](func(_ context.Context, _ testMessage, report Report) {
			got = append(got, report)
		}),
	)

	if err := h.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected execution error")
	}
	if len(got) != 1 {
		t.Fatalf("expected one report, got %d", len(got))
	}
	report := got[0]
	if report.Status != StatusFailed || !errors.Is(report.Err, execErr) || report.Code != RunFailedCode {
		t.Fatalf("unexpected report status %q code %q error %v", report.Status, report.Code, report.Err)
	}
	if report.Command != "cjk.test.message" || report.Operation != "join" {
		t.Fatalf("unexpected report identity %+v", report)
	}
	if report.Fields["renderer"] != "html" {
		t.Fatalf("expected message fields in report, got %+v", report.Fields)
	}
}

func TestLogReporterWritesModeTaggedEntries(t *testing.T) {
	var logs strings.Builder
	provider := console.NewProvider(console.Options{Writer: &logs})
	logger := ModeLogger(provider, ModeRaw)

	ok := NewHandler[testMessage](func(context.Context, testMessage) error { return nil }, WithLogger[testMessage](logger))
	if err := ok.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	failing := NewHandler[testMessage](func(context.Context, testMessage) error { return errors.New("boom") }, WithLogger[testMessage](logger))
	if err := failing.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected failure")
	}

	out := logs.String()
	for _, want := range []string{
		"[DEBUG] (cjk.commands): preprocess.command.done",
		"[ERROR] (cjk.commands): preprocess.command.failed",
		"command=cjk.test.message",
		"mode=raw",
		"module=cjk.commands",
		"error_code=PREPROCESS_FAILED",
		"elapsed_ms=",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output, got:\n%s", want, out)
		}
	}
}

func TestHandlerTimeoutReportsInterruption(t *testing.T) {
	var status Status
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		<-ctx.Done()
		return ctx.Err()
	},
		WithTimeout[testMessage](5*time.Millisecond),
		WithReporter[testMessage](func(_ context.Context, _ testMessage, report Report) {
			status = report.Status
		}),
	)

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if status != StatusInterrupted {
		t.Fatalf("expected interrupted status, got %q", status)
	}
	if ErrorCode(err) != RunDeadlineCode {
		t.Fatalf("expected deadline code, got %q", ErrorCode(err))
	}
}

func TestHandlerWithoutTimeoutUsesCallerDeadline(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		if _, ok := ctx.Deadline(); ok {
			return errors.New("unexpected handler deadline")
		}
		return nil
	})
	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
