package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{
			"without details",
			NewDomainError("DM-MSG-4000", "invalid message format"),
			"[DM-MSG-4000] invalid message format",
		},
		{
			"with details",
			NewDomainError("DM-MSG-4001", "unknown message kind").WithDetails("teleport"),
			"[DM-MSG-4001] unknown message kind: teleport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainError_Wrap(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	err := ErrInvalidMessage.Wrap(cause)

	if !errors.Is(err, ErrInvalidMessage) {
		t.Error("wrapped error should match its template by code")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}

	// Wrap must not mutate the shared template.
	if ErrInvalidMessage.Cause != nil {
		t.Error("template error mutated by Wrap")
	}
}

func TestDomainError_Is(t *testing.T) {
	if errors.Is(ErrRoomNotFound, ErrDocumentNotFound) {
		t.Error("different codes should not match")
	}
	if !errors.Is(ErrRoomNotFound.WithDetails("alpha"), ErrRoomNotFound) {
		t.Error("same code should match regardless of details")
	}
	if errors.Is(ErrRoomNotFound, fmt.Errorf("room not found")) {
		t.Error("plain error should not match")
	}
}

func TestIsDomainError(t *testing.T) {
	wrapped := fmt.Errorf("handling frame: %w", ErrBusUnavailable)

	if !IsDomainError(wrapped, "DM-BUS-5030") {
		t.Error("IsDomainError should find wrapped domain error by code")
	}
	if IsDomainError(wrapped, "DM-BUS-5031") {
		t.Error("IsDomainError should reject mismatched code")
	}
	if !IsDomainError(wrapped, "") {
		t.Error("IsDomainError with empty code should match any domain error")
	}
	if IsDomainError(errors.New("plain"), "") {
		t.Error("IsDomainError should reject non-domain error")
	}
}
