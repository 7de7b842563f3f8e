package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/apperr"
)

func TestInputErrorCollectsFields(t *testing.T) {
	ie := apperr.NewInputError()
	require.NoError(t, ie.OrNil())

	ie.Add("email", "provide valid email")
	ie.Add("email", "must not be empty")
	ie.Add("guests", "must be at least 1")

	err := fmt.Errorf("create booking: %w", ie.OrNil())

	got := apperr.IsInputError(err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, []string{"provide valid email", "must not be empty"}, got.Fields()["email"])
	assert.Equal(t, "invalid input: email: provide valid email; must not be empty, guests: must be at least 1", got.Error())
}

func TestIsInputErrorIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, apperr.IsInputError(nil))
	assert.Nil(t, apperr.IsInputError(errors.New("boom")))
}

func TestWrappedSentinels(t *testing.T) {
	assert.ErrorIs(t, apperr.Conflictf("slug %q taken", "cairo"), apperr.ErrConflict)
	assert.ErrorIs(t, apperr.NotFoundf("tour %s", "1"), apperr.ErrNotFound)
	assert.EqualError(t, apperr.NotFoundf("tour %s", "1"), "tour 1: record not found")
}
