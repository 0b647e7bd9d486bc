package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := NewConflict("vessel %s is taken", "v1")
	wrapped := fmt.Errorf("create booking: %w", base)

	assert.Equal(t, Conflict, KindOf(base))
	assert.Equal(t, Conflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, Conflict))
	assert.False(t, Is(wrapped, NotFound))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, Internal))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause, "claim days")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "claim days: connection reset", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		InvalidInput:      http.StatusBadRequest,
		Unauthorized:      http.StatusUnauthorized,
		Forbidden:         http.StatusForbidden,
		NotFound:          http.StatusNotFound,
		Conflict:          http.StatusConflict,
		InvalidTransition: http.StatusUnprocessableEntity,
		Internal:          http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestValidationCarriesFields(t *testing.T) {
	err := fmt.Errorf("create booking: %w", NewValidation(map[string]string{"guest_count": "Minimum is 1"}))

	assert.Equal(t, InvalidInput, KindOf(err))
	assert.Equal(t, "Minimum is 1", FieldsOf(err)["guest_count"])
	assert.Nil(t, FieldsOf(errors.New("plain")))
}
