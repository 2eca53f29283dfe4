package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFound("media item", "x"), http.StatusNotFound},
		{"invalid input", NewInvalidInput("bad", nil), http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("nope", nil), http.StatusUnauthorized},
		{"permission", NewPermissionDenied("nope"), http.StatusForbidden},
		{"invalid ordering", NewInvalidOrdering("unknown id"), http.StatusConflict},
		{"upload failed", NewUploadFailure("cloudinary down", errors.New("dial tcp")), http.StatusBadGateway},
		{"deletion failed", NewDeletionFailure("summit-2027/x", errors.New("timeout")), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("handler: %w", NewNotFound("media item", "x")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToHTTPStatus(tc.err))
		})
	}
}

func TestAppErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewUploadFailure("upload to cloudinary", cause)

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, cause, err.Cause())
	assert.Contains(t, err.Error(), "connection reset")
}
