package executor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCappedBufferUnlimited(t *testing.T) {
	buf := newCappedBuffer(0)
	payload := strings.Repeat("a", 10_000)

	n, err := buf.Write([]byte(payload))
	assert.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, buf.String())
	assert.False(t, buf.Truncated())
}

func TestCappedBufferTruncatesAtLimit(t *testing.T) {
	buf := newCappedBuffer(5)

	n, err := buf.Write([]byte("abcdefgh"))
	assert.NoError(t, err)
	// Writers must see a full write so the pipe does not error out.
	assert.Equal(t, 8, n)
	assert.Equal(t, "abcde"+truncationMarker, buf.String())
	assert.True(t, buf.Truncated())
}

func TestCappedBufferDropsAfterTruncation(t *testing.T) {
	buf := newCappedBuffer(3)

	_, _ = buf.Write([]byte("abcdef"))
	_, _ = buf.Write([]byte("more"))

	assert.Equal(t, "abc"+truncationMarker, buf.String())
}

func TestCappedBufferExactFit(t *testing.T) {
	buf := newCappedBuffer(4)

	_, _ = buf.Write([]byte("abcd"))
	assert.Equal(t, "abcd", buf.String())
	assert.False(t, buf.Truncated())
}
