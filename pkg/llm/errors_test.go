package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryableKinds(t *testing.T) {
	assert.True(t, IsRetryable(Unavailable("ollama", errors.New("down"))))
	assert.True(t, IsRetryable(RateLimited("gemini", errors.New("quota"))))
	assert.False(t, IsRetryable(AuthFailed("gemini", errors.New("bad key"))))
	assert.False(t, IsRetryable(Malformed("ollama", errors.New("empty body"))))
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("turn failed: %w", RateLimited("gemini", errors.New("quota")))

	assert.Equal(t, FailureRateLimited, KindOf(err))
	assert.True(t, IsRetryable(err))

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "gemini", genErr.Provider)
}

func TestKindOfUnclassifiedError(t *testing.T) {
	assert.Equal(t, FailureKind(""), KindOf(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestGenerationErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("ollama", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ollama")
}
