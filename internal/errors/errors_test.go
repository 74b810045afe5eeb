package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestConstructors_TypeAndStatus(t *testing.T) {
	cause := errors.New("underlying")

	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"input", NewInputError("bad url", cause), ErrorTypeInput, http.StatusBadRequest},
		{"transient", NewTransientError("backend down", cause), ErrorTypeTransient, http.StatusServiceUnavailable},
		{"network", NewNetworkError("fetch failed", cause), ErrorTypeNetwork, http.StatusBadGateway},
		{"internal", NewInternalError("unexpected", cause), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, tt.err.Type)
			}
			if tt.err.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, tt.err.StatusCode)
			}
			if !IsType(tt.err, tt.wantType) {
				t.Errorf("IsType(%s) returned false", tt.wantType)
			}
			if GetStatusCode(tt.err) != tt.wantStatus {
				t.Errorf("GetStatusCode returned %d, want %d", GetStatusCode(tt.err), tt.wantStatus)
			}
		})
	}
}

func TestError_Formatting(t *testing.T) {
	withCause := NewNetworkError("fetch failed", errors.New("connection refused"))
	if got := withCause.Error(); got != "network: fetch failed (caused by: connection refused)" {
		t.Errorf("Unexpected message with cause: %q", got)
	}

	withoutCause := NewInputError("bad url", nil)
	if got := withoutCause.Error(); got != "input: bad url" {
		t.Errorf("Unexpected message without cause: %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewTransientError("backend down", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the wrapped cause")
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap returned %v, want %v", err.Unwrap(), cause)
	}
}

func TestIsType_NonAppError(t *testing.T) {
	plain := errors.New("plain")

	if IsType(plain, ErrorTypeInput) {
		t.Error("Expected false for a plain error")
	}
	if GetStatusCode(plain) != http.StatusInternalServerError {
		t.Errorf("Expected fallback 500 for a plain error, got %d", GetStatusCode(plain))
	}
}
