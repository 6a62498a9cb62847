package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatusCode(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:        http.StatusBadRequest,
		KindNotFound:          http.StatusNotFound,
		KindForbidden:         http.StatusForbidden,
		KindConflict:          http.StatusConflict,
		KindInvalidTransition: http.StatusConflict,
		KindTooLate:           http.StatusUnprocessableEntity,
		KindUnauthorized:      http.StatusUnauthorized,
		KindInternal:          http.StatusInternalServerError,
		Kind("unknown"):       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		t.Run(string(kind), func(t *testing.T) {
			assert.Equal(t, want, kind.StatusCode())
			assert.Equal(t, want, New(kind, "x").Code)
		})
	}
}

func TestKindOfFollowsWrapping(t *testing.T) {
	sentinel := New(KindConflict, "taken")
	wrapped := fmt.Errorf("create: %w", sentinel)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("driver failure")
	err := Wrap(cause, KindNotFound, "listing not found")

	assert.Equal(t, "listing not found", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusNotFound, err.Code)
}
