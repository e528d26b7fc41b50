package serviceerr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeDecode               Code = "decode"
	CodeStorage              Code = "storage"
	CodeAuthentication       Code = "authentication"
	CodePermission           Code = "permission"
	CodeConnectivity         Code = "connectivity"
	CodeValidation           Code = "validation"
	CodeBiometricUnavailable Code = "biometric_unavailable"
	CodeBiometricFailed      Code = "biometric_failed"
	CodeNotFound             Code = "not_found"
	CodeConflict             Code = "conflict"
	CodeUnknown              Code = "unknown"
)

// Error is the error type surfaced by every layer of the client. Two errors
// match with errors.Is when they carry the same Code.
type Error struct {
	Err         Code
	Description string
	// Status is the HTTP status of the backend response, zero when the
	// error did not come from a response.
	Status int
}

var (
	ErrDecode               = &Error{Err: CodeDecode, Description: "malformed session token"}
	ErrStorage              = &Error{Err: CodeStorage, Description: "credential storage unavailable"}
	ErrAuthentication       = &Error{Err: CodeAuthentication, Description: "Authentication failed. Please log in again."}
	ErrPermission           = &Error{Err: CodePermission, Description: "You do not have permission to perform this action."}
	ErrConnectivity         = &Error{Err: CodeConnectivity, Description: "Unable to connect to the server. Please check your internet connection."}
	ErrValidation           = &Error{Err: CodeValidation}
	ErrBiometricUnavailable = &Error{Err: CodeBiometricUnavailable, Description: "Biometric authentication is not supported on this device"}
	ErrBiometricFailed      = &Error{Err: CodeBiometricFailed, Description: "Biometric authentication failed"}
	ErrNotFound             = &Error{Err: CodeNotFound, Description: "not found"}
	ErrConflict             = &Error{Err: CodeConflict, Description: "already exists"}
	ErrUnknown              = &Error{Err: CodeUnknown, Description: "An error occurred."}
)

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}

	return string(e.Err) + ": " + e.Description
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Err == e.Err
}

// Message returns the text meant for the person using the client.
func (e *Error) Message() string {
	if e.Description != "" {
		return e.Description
	}

	return string(e.Err)
}

// New creates an error of the given code with its own description.
func New(code Code, description string) *Error {
	return &Error{Err: code, Description: description}
}

// CodeFromHTTPStatus maps a non-2xx backend status onto the error taxonomy.
func CodeFromHTTPStatus(status int) Code {
	switch status {
	case http.StatusUnauthorized:
		return CodeAuthentication
	case http.StatusForbidden:
		return CodePermission
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	default:
		return CodeUnknown
	}
}

// FromResponse builds the error for a backend response. Permission failures
// always carry the fixed client message; every other code keeps the backend
// message verbatim when there is one.
func FromResponse(status int, message string) *Error {
	code := CodeFromHTTPStatus(status)
	switch code {
	case CodeAuthentication:
		if message == "" {
			message = ErrAuthentication.Description
		}
	case CodePermission:
		message = ErrPermission.Description
	default:
		if message == "" {
			message = ErrUnknown.Description
		}
	}

	return &Error{Err: code, Description: message, Status: status}
}

// Message extracts the display text of any error, falling back to the
// generic message for errors outside the taxonomy.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}

	return err.Error()
}
