package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractionError(t *testing.T) {
	cause := fmt.Errorf("decode png: %w", ErrUnreadableInput)
	err := NewExtractionError(CodeDecode, "image could not be opened", cause)

	assert.True(t, errors.Is(err, ErrUnreadableInput))
	assert.Contains(t, err.Error(), "[DECODE]")

	code, ok := CodeOf(fmt.Errorf("wrapped: %w", err))
	require.True(t, ok)
	assert.Equal(t, CodeDecode, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestUserError(t *testing.T) {
	err := NewUserError("could not read statement", ErrUnsupportedFormat)
	assert.Equal(t, "could not read statement: unsupported format", err.Error())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	bare := NewUserError("nothing to do", nil)
	assert.Equal(t, "nothing to do", bare.Error())
}

func TestCompilePatterns(t *testing.T) {
	res, err := CompilePatterns([]string{`пят[её]рочка`, `(?s)TOTAL`})
	require.NoError(t, err)
	assert.True(t, MatchAny(res, "ПЯТЁРОЧКА"))
	assert.True(t, MatchAny(res, "TOTAL"))
	assert.False(t, MatchAny(res, "total"))

	_, err = CompilePatterns([]string{`(`})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCompilePatternsNonCapturingPrefix(t *testing.T) {
	res, err := CompilePatterns([]string{`(?:^|[^\p{L}])итог(?:$|[^\p{L}])`})
	require.NoError(t, err)
	assert.True(t, MatchAny(res, "ИТОГ 100.00"))
	assert.False(t, MatchAny(res, "ИТОГОВЫЙ"))
}
