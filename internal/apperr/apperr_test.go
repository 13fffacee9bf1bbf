package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("Store not found")))

	wrapped := fmt.Errorf("loading store: %w", Forbidden("Insufficient permissions"))
	assert.True(t, Is(wrapped, KindForbidden))
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to load stores", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
