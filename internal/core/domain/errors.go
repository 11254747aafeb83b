package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "DM-ROOM-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// Wrap returns a copy of the error wrapping the given cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// Message errors (MSG).
var (
	// ErrInvalidMessage indicates a frame that decodes as neither JSON nor binary.
	ErrInvalidMessage = NewDomainError("DM-MSG-4000", "invalid message format")

	// ErrUnknownKind indicates an unrecognized message kind.
	ErrUnknownKind = NewDomainError("DM-MSG-4001", "unknown message kind")

	// ErrPayloadShape indicates a payload that does not match its kind's shape.
	ErrPayloadShape = NewDomainError("DM-MSG-4002", "payload does not match message kind")

	// ErrMissingRoomID indicates a message that requires a room id but carries none.
	ErrMissingRoomID = NewDomainError("DM-MSG-4003", "room id is required")

	// ErrEmptyUpdate indicates a document update with no bytes.
	ErrEmptyUpdate = NewDomainError("DM-MSG-4004", "empty update payload")
)

// Room and membership errors (ROOM).
var (
	// ErrRoomNotFound indicates the requested room does not exist.
	ErrRoomNotFound = NewDomainError("DM-ROOM-4040", "room not found")

	// ErrNotMember indicates the client is not a member of any room.
	ErrNotMember = NewDomainError("DM-ROOM-4041", "client is not a room member")
)

// Document errors (DOC).
var (
	// ErrDocumentNotFound indicates no document exists for the room.
	ErrDocumentNotFound = NewDomainError("DM-DOC-4040", "document not found")

	// ErrInvalidUpdate indicates an update that cannot be decoded or merged.
	ErrInvalidUpdate = NewDomainError("DM-DOC-4000", "invalid document update")
)

// Replication bus errors (BUS).
var (
	// ErrBusUnavailable indicates the bus transport is not connected.
	ErrBusUnavailable = NewDomainError("DM-BUS-5030", "replication bus unavailable")

	// ErrBusConnectExhausted indicates reconnect attempts were exhausted.
	ErrBusConnectExhausted = NewDomainError("DM-BUS-5031", "replication bus connect attempts exhausted")

	// ErrSubscribeFailed indicates a room channel subscription failed.
	ErrSubscribeFailed = NewDomainError("DM-BUS-5032", "room channel subscription failed")
)
