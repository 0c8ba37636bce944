// Package chunker splits document text into bounded, non-overlapping segments.
package chunker

import (
	"fmt"
	"unicode/utf8"

	"github.com/futig/knowledge-backend/internal/entity"
)

// Split slices text left to right into chunks of at most maxChars code points.
// Joining the chunk texts reproduces text exactly.
func Split(sourceID, text string, maxChars int) ([]entity.Chunk, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: got %d", entity.ErrInvalidChunkSize, maxChars)
	}

	total := utf8.RuneCountInString(text)
	if total == 0 {
		return []entity.Chunk{}, nil
	}

	chunks := make([]entity.Chunk, 0, (total+maxChars-1)/maxChars)
	start, count := 0, 0
	for i := range text {
		if count == maxChars {
			chunks = append(chunks, entity.Chunk{
				SourceID:      sourceID,
				SequenceIndex: len(chunks),
				Text:          text[start:i],
			})
			start, count = i, 0
		}
		count++
	}

	chunks = append(chunks, entity.Chunk{
		SourceID:      sourceID,
		SequenceIndex: len(chunks),
		Text:          text[start:],
	})

	return chunks, nil
}

// Truncate cuts text to at most maxChars code points.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	count := 0
	for i := range text {
		if count == maxChars {
			return text[:i]
		}
		count++
	}
	return text
}
