package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEWrapsKind(t *testing.T) {
	err := E(ErrNotFound, "Task not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "not found: Task not found", err.Error())
}

func TestENilKindBecomesInternal(t *testing.T) {
	err := E(nil, "boom")
	assert.True(t, errors.Is(err, ErrInternal))
}

func TestMessagePrefersTaggedText(t *testing.T) {
	err := E(ErrBadRequest, "User already registered")
	assert.Equal(t, "User already registered", Message(err))
}

func TestMessageFallsBackPerKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrInvalidCredentials, "Invalid credentials"},
		{ErrBadRequest, "Invalid request"},
		{ErrUnauthorized, "Unauthorized access"},
		{ErrForbidden, "Unauthorized access"},
		{ErrNotFound, "Not found"},
		{ErrInternal, "Internal server error"},
		{errors.New("raw provider detail"), "Internal server error"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Message(tc.err), tc.err.Error())
	}
}

func TestMessageNeverLeaksUntaggedDetail(t *testing.T) {
	err := fmt.Errorf("dial tcp 10.0.0.1:5432: %w", errors.New("connection refused"))
	assert.Equal(t, "Internal server error", Message(err))
}

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{E(ErrInvalidCredentials, ""), http.StatusUnauthorized},
		{E(ErrBadRequest, ""), http.StatusBadRequest},
		{E(ErrUnauthorized, ""), http.StatusUnauthorized},
		{E(ErrForbidden, ""), http.StatusForbidden},
		{E(ErrNotFound, ""), http.StatusNotFound},
		{E(ErrInternal, ""), http.StatusInternalServerError},
		{errors.New("untagged"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}
