package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestAppErrorWrapping tests error chaining through the standard errors API.
func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := DatabaseError("load rules", cause)

	if !errors.Is(appErr, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}

	wrapped := fmt.Errorf("run failed: %w", appErr)
	var target *AppError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find the AppError in the chain")
	}
	if target.Code != CodeDatabaseError {
		t.Errorf("Code = %q, want %q", target.Code, CodeDatabaseError)
	}
}

// TestConstructorStatuses tests HTTP status mapping per constructor.
func TestConstructorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code string
		want int
	}{
		{"bad request", BadRequest("nope"), CodeBadRequest, http.StatusBadRequest},
		{"not found", NotFound("rule"), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("already moved"), CodeConflict, http.StatusConflict},
		{"invalid transition", InvalidTransition("PROMOTED", "SPAM_REVIEW"), CodeInvalidTransition, http.StatusConflict},
		{"database", DatabaseError("query", errors.New("boom")), CodeDatabaseError, http.StatusInternalServerError},
		{"timeout", Timeout("capture run"), CodeTimeout, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.HTTPStatus() != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", tt.err.HTTPStatus(), tt.want)
			}
		})
	}
}

// TestGetHTTPStatus tests status extraction from arbitrary errors.
func TestGetHTTPStatus(t *testing.T) {
	if got := GetHTTPStatus(NotFound("message")); got != http.StatusNotFound {
		t.Errorf("GetHTTPStatus(NotFound) = %d, want 404", got)
	}
	if got := GetHTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("GetHTTPStatus(plain) = %d, want 500", got)
	}
}

// TestWithDetail tests detail accumulation.
func TestWithDetail(t *testing.T) {
	err := BadRequest("invalid rule").
		WithDetail("field", "pattern").
		WithDetail("reason", "empty after normalization")

	if err.Details["field"] != "pattern" {
		t.Errorf("Details[field] = %v, want pattern", err.Details["field"])
	}
	if len(err.Details) != 2 {
		t.Errorf("len(Details) = %d, want 2", len(err.Details))
	}
}
