package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFollowsWrappedKind(t *testing.T) {
	err := fmt.Errorf("creating product: %w", InvalidErr("title required", nil))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Equal(t, "title required", PublicMessage(err))
	assert.True(t, Is(err, Invalid))

	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFoundErr("x")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(UnauthorizedErr("x")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ForbiddenErr("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ConflictErr("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.Equal(t, "unexpected error", PublicMessage(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, Internal))
	assert.Nil(t, Wrap(nil))
}

func TestFromStatus(t *testing.T) {
	assert.Equal(t, Unauthorized, FromStatus(http.StatusUnauthorized, "no").Kind)
	assert.Equal(t, Invalid, FromStatus(http.StatusUnprocessableEntity, "no").Kind)
	assert.Equal(t, Internal, FromStatus(http.StatusBadGateway, "no").Kind)
}
