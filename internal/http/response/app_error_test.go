package response

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapErrorCarriesCause(t *testing.T) {
	cause := errors.New("backend unreachable")
	appErr := WrapError(CodeInternal, "server error", cause)

	if appErr.Code != CodeInternal || appErr.Message != "server error" {
		t.Fatalf("unexpected wrap: %+v", appErr)
	}
	if !errors.Is(appErr, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	if msg := appErr.Error(); !strings.Contains(msg, "backend unreachable") {
		t.Fatalf("cause missing from error text: %q", msg)
	}
}

func TestWrapErrorWithoutCause(t *testing.T) {
	appErr := WrapError(CodeBadRequest, "invalid request", nil)
	if appErr.Unwrap() != nil {
		t.Fatalf("expected nil cause")
	}
	if msg := appErr.Error(); !strings.Contains(msg, "invalid request") {
		t.Fatalf("message missing from error text: %q", msg)
	}
}
