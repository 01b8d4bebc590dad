package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(IOFailure, "failed to write report", cause)

	if err.Code != IOFailure {
		t.Errorf("Code = %v, want %v", err.Code, IOFailure)
	}
	if err.Message != "failed to write report" {
		t.Errorf("Message = %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestReportError_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       *ReportError
		wantParts []string
	}{
		{
			name:      "with cause",
			err:       New(StatsInvalid, "bad stats", errors.New("unexpected EOF")),
			wantParts: []string{"STATS_INVALID", "bad stats", "unexpected EOF"},
		},
		{
			name:      "without cause",
			err:       Newf(ConfigInvalid, "unknown unit %q", "gb"),
			wantParts: []string{"CONFIG_INVALID", `unknown unit "gb"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(msg, part) {
					t.Errorf("Error() = %q, missing %q", msg, part)
				}
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", New(StatsInvalid, "bad", nil))
	if got := CodeOf(wrapped); got != StatsInvalid {
		t.Errorf("CodeOf = %v, want %v", got, StatsInvalid)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
	if !Is(wrapped, StatsInvalid) || Is(wrapped, IOFailure) {
		t.Error("Is did not match the wrapped code")
	}
}

func TestParseFailureMessage(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here.js")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing file", statErr, "no such file"},
		{"wrapped not exist", fmt.Errorf("read chunk: %w", fs.ErrNotExist), "no such file"},
		{"other", errors.New("unexpected token"), "unexpected token"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFailureMessage(tt.err); got != tt.want {
				t.Errorf("ParseFailureMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	c.Warn(MissingOwnershipLink, "entry node without module")
	c.Error(ParseFailure, "no such file")
	c.Error(ThresholdViolation, "too big")

	if len(c.Warnings()) != 1 {
		t.Errorf("Warnings = %d, want 1", len(c.Warnings()))
	}
	if len(c.Errors()) != 2 {
		t.Errorf("Errors = %d, want 2", len(c.Errors()))
	}
	if c.Count(ThresholdViolation) != 1 {
		t.Errorf("Count(ThresholdViolation) = %d, want 1", c.Count(ThresholdViolation))
	}
	all := c.All()
	if len(all) != 3 || all[0].Severity != SeverityWarning {
		t.Errorf("All() = %+v", all)
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(ThresholdViolation) != 3 {
		t.Error("threshold violations should exit 3")
	}
	if ExitCode(InternalError) != 1 {
		t.Error("internal errors should exit 1")
	}
}
