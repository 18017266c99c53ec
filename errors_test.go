package httpcore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBenignWriteError(t *testing.T) {
	assert.True(t, isBenignWriteError(errors.New("write tcp 1.2.3.4:80: broken pipe")))
	assert.True(t, isBenignWriteError(errors.New("read: connection reset by peer")))
	assert.False(t, isBenignWriteError(errors.New("permission denied")))
	assert.False(t, isBenignWriteError(nil))
}

func TestHandlerErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	herr := &HandlerError{Path: "/x", Err: inner}

	assert.ErrorIs(t, herr, inner)
	assert.Contains(t, herr.Error(), "/x")
}
