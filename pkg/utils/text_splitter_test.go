package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitText_ShortTextReturnsSingleChunk(t *testing.T) {
	text := "short document"
	chunks := SplitText(text, 100, 20)

	assert.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitText_OverlapPreserved(t *testing.T) {
	text := strings.Repeat("abcdefghij", 50) // 500 chars
	chunks := SplitText(text, 200, 50)

	assert.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-50:]
		assert.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d should start with the previous chunk's overlap", i)
	}
}

func TestSplitText_NoDataLoss(t *testing.T) {
	text := strings.Repeat("0123456789", 37) // 370 chars, not a multiple of step
	chunkSize := 100
	overlap := 25
	chunks := SplitText(text, chunkSize, overlap)

	step := chunkSize - overlap
	var rebuilt strings.Builder
	for i, c := range chunks {
		if i == len(chunks)-1 {
			rebuilt.WriteString(c)
			continue
		}
		rebuilt.WriteString(c[:step])
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplitText_OverlapLargerThanChunkFallsBack(t *testing.T) {
	text := strings.Repeat("x", 300)
	chunks := SplitText(text, 100, 150)

	// step collapses to chunkSize, plain slicing without overlap
	assert.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(chunks, ""))
}
