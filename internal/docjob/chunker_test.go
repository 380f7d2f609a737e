package docjob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextEmpty(t *testing.T) {
	assert.Nil(t, SplitText("", 100))
	assert.Nil(t, SplitText("   \n\t  ", 100))
}

func TestSplitTextSingleChunk(t *testing.T) {
	chunks := SplitText("two bedroom apartment with sea view", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "two bedroom apartment with sea view", chunks[0])
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("word ", 200)
	chunks := SplitText(text, 50)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 50)
	}
}

func TestSplitTextCutsOnWordBoundaries(t *testing.T) {
	chunks := SplitText("alpha beta gamma delta", 11)
	assert.Equal(t, []string{"alpha beta", "gamma delta"}, chunks)
}

func TestSplitTextCollapsesWhitespace(t *testing.T) {
	chunks := SplitText("alpha\n\n  beta\t gamma", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha beta gamma", chunks[0])
}

func TestSplitTextOversizedWord(t *testing.T) {
	long := strings.Repeat("x", 30)
	chunks := SplitText("short "+long, 10)
	assert.Equal(t, []string{"short", long}, chunks)
}

func TestSplitTextCountsBytesNotRunes(t *testing.T) {
	// "héllo" is 5 runes but 6 bytes; two of them plus a separator exceed a
	// 12-byte limit even though the rune count fits.
	chunks := SplitText("héllo héllo", 12)
	assert.Equal(t, []string{"héllo", "héllo"}, chunks)
}

func TestSplitTextZeroSizeUsesDefault(t *testing.T) {
	chunks := SplitText("alpha beta", 0)
	require.Len(t, chunks, 1)
}
