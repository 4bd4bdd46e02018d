package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAndMessage(t *testing.T) {
	cause := errors.New("disk I/O error")

	testCases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"NotFound", NotFound("user %s not found", "U1"), http.StatusNotFound, "user U1 not found"},
		{"InvalidInput", InvalidInput("user_id is required"), http.StatusBadRequest, "user_id is required"},
		{"Conflict", Conflict("holding %s changed", "VTI"), http.StatusConflict, "holding VTI changed"},
		{"DataAccess", DataAccess(cause, "failed to load holdings"), http.StatusInternalServerError, "failed to load holdings"},
		{"Wrapped NotFound", fmt.Errorf("scenarios: %w", NotFound("user U2 not found")), http.StatusNotFound, "user U2 not found"},
		{"Unclassified", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, Status(tc.err))
			assert.Equal(t, tc.msg, Message(tc.err))
		})
	}
}

func TestDataAccessUnwrapsCause(t *testing.T) {
	cause := errors.New("database is locked")
	err := DataAccess(cause, "failed to save holding")

	assert.ErrorIs(t, err, ErrDataAccess)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "failed to save holding: database is locked", err.Error())
}
