package serviceerr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name        string
		err         *serviceerr.Error
		expectedMsg string
	}{
		{
			name:        "Error with description",
			err:         &serviceerr.Error{Err: serviceerr.CodeNotFound, Description: "Event not found"},
			expectedMsg: "not_found: Event not found",
		},
		{
			name:        "Error without description",
			err:         &serviceerr.Error{Err: serviceerr.CodeValidation},
			expectedMsg: "validation",
		},
		{
			name:        "Predefined error - ErrPermission",
			err:         serviceerr.ErrPermission,
			expectedMsg: "permission: You do not have permission to perform this action.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	t.Run("matches by code", func(t *testing.T) {
		err := serviceerr.New(serviceerr.CodeAuthentication, "Invalid email or password")
		assert.ErrorIs(t, err, serviceerr.ErrAuthentication)
		assert.NotErrorIs(t, err, serviceerr.ErrPermission)
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("loading token: %w", serviceerr.ErrStorage)
		assert.ErrorIs(t, err, serviceerr.ErrStorage)
	})

	t.Run("does not match foreign errors", func(t *testing.T) {
		assert.NotErrorIs(t, errors.New("storage"), serviceerr.ErrStorage)
	})
}

func TestCodeFromHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		code   serviceerr.Code
	}{
		{http.StatusUnauthorized, serviceerr.CodeAuthentication},
		{http.StatusForbidden, serviceerr.CodePermission},
		{http.StatusNotFound, serviceerr.CodeNotFound},
		{http.StatusConflict, serviceerr.CodeConflict},
		{http.StatusBadRequest, serviceerr.CodeValidation},
		{http.StatusUnprocessableEntity, serviceerr.CodeValidation},
		{http.StatusInternalServerError, serviceerr.CodeUnknown},
		{http.StatusServiceUnavailable, serviceerr.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.code, serviceerr.CodeFromHTTPStatus(tt.status))
		})
	}
}

func TestFromResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    *serviceerr.Error
	}{
		{
			name:    "keeps backend message",
			status:  http.StatusConflict,
			message: "email already registered",
			want:    &serviceerr.Error{Err: serviceerr.CodeConflict, Description: "email already registered", Status: http.StatusConflict},
		},
		{
			name:    "keeps login failure message",
			status:  http.StatusUnauthorized,
			message: "Invalid email or password",
			want:    &serviceerr.Error{Err: serviceerr.CodeAuthentication, Description: "Invalid email or password", Status: http.StatusUnauthorized},
		},
		{
			name:   "defaults authentication message",
			status: http.StatusUnauthorized,
			want:   &serviceerr.Error{Err: serviceerr.CodeAuthentication, Description: serviceerr.ErrAuthentication.Description, Status: http.StatusUnauthorized},
		},
		{
			name:    "permission message is fixed",
			status:  http.StatusForbidden,
			message: "forbidden",
			want:    &serviceerr.Error{Err: serviceerr.CodePermission, Description: serviceerr.ErrPermission.Description, Status: http.StatusForbidden},
		},
		{
			name:   "generic message",
			status: http.StatusInternalServerError,
			want:   &serviceerr.Error{Err: serviceerr.CodeUnknown, Description: "An error occurred.", Status: http.StatusInternalServerError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serviceerr.FromResponse(tt.status, tt.message))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Empty(t, serviceerr.Message(nil))
	assert.Equal(t, "Event not found", serviceerr.Message(fmt.Errorf("get: %w", serviceerr.New(serviceerr.CodeNotFound, "Event not found"))))
	assert.Equal(t, "validation", serviceerr.Message(serviceerr.ErrValidation))
	assert.Equal(t, "boom", serviceerr.Message(errors.New("boom")))
}
