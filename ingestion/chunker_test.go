package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText(t *testing.T) {
	t.Run("empty input yields no chunks", func(t *testing.T) {
		assert.Empty(t, SplitText("", 100))
		assert.Empty(t, SplitText("   \n\n  \n", 100))
	})

	t.Run("short text is one chunk", func(t *testing.T) {
		chunks := SplitText("hello world", 100)
		assert.Equal(t, []string{"hello world"}, chunks)
	})

	t.Run("paragraphs pack while they fit", func(t *testing.T) {
		chunks := SplitText("first\n\nsecond\n\nthird", 100)
		assert.Equal(t, []string{"first\n\nsecond\n\nthird"}, chunks)
	})

	t.Run("paragraphs split when they exceed the budget", func(t *testing.T) {
		a := strings.Repeat("a", 40)
		b := strings.Repeat("b", 40)
		c := strings.Repeat("c", 40)

		chunks := SplitText(a+"\n\n"+b+"\n\n"+c, 90)
		require.Len(t, chunks, 2)
		assert.Equal(t, a+"\n\n"+b, chunks[0])
		assert.Equal(t, c, chunks[1])
	})

	t.Run("oversized paragraph splits on words", func(t *testing.T) {
		words := make([]string, 30)
		for i := range words {
			words[i] = "word"
		}
		text := strings.Join(words, " ")

		chunks := SplitText(text, 25)
		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), 25)
		}
		assert.Equal(t, text, strings.Join(chunks, " "))
	})

	t.Run("windows line endings normalized", func(t *testing.T) {
		chunks := SplitText("first\r\n\r\nsecond", 100)
		assert.Equal(t, []string{"first\n\nsecond"}, chunks)
	})
}
