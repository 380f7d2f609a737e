package docjob

import "strings"

// SplitText breaks text into chunks of at most chunkSize bytes, cutting on
// word boundaries; a single word longer than chunkSize still becomes its own
// oversized chunk. Whitespace runs are collapsed to single spaces so the
// chunk content is stable regardless of source formatting.
func SplitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = 1500
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, word := range words {
		// A single word longer than the chunk size becomes its own chunk
		if current.Len() > 0 && current.Len()+1+len(word) > chunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
