package sandbox

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapBufferBelowCeiling(t *testing.T) {
	buf := NewCapBuffer(16)

	n, err := buf.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.False(t, buf.Truncated())
	assert.Equal(t, "hello", buf.String())
	assert.Equal(t, 5, buf.Len())
}

func TestCapBufferExactCeilingIsNotTruncated(t *testing.T) {
	buf := NewCapBuffer(5)

	_, err := buf.Write([]byte("hello"))
	require.NoError(t, err)

	assert.False(t, buf.Truncated())
	assert.Equal(t, "hello", buf.String())
}

func TestCapBufferTruncatesAtCeiling(t *testing.T) {
	buf := NewCapBuffer(8)

	_, err := buf.Write([]byte("0123456789"))
	require.NoError(t, err)

	assert.True(t, buf.Truncated())
	assert.Equal(t, 8, buf.Len())
	assert.Equal(t, "01234567\n[output truncated - exceeded 8 byte limit]", buf.String())
}

func TestCapBufferMarkerAppendedOnce(t *testing.T) {
	buf := NewCapBuffer(4)

	for i := 0; i < 5; i++ {
		_, err := buf.Write([]byte("abcdef"))
		require.NoError(t, err)
	}

	marker := fmt.Sprintf("[output truncated - exceeded %d byte limit]", 4)
	assert.Equal(t, 1, strings.Count(buf.String(), marker))
	assert.Equal(t, 4, buf.Len())
}

func TestCapBufferConcurrentWrites(t *testing.T) {
	buf := NewCapBuffer(1024)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf.Write([]byte("xxxxxxxx"))
			}
		}()
	}
	wg.Wait()

	assert.True(t, buf.Truncated())
	assert.Equal(t, 1024, buf.Len())
}
