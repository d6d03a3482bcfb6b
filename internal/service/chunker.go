package service

import (
	"strings"
	"unicode"

	"github.com/lexgraph/lexgraph/internal/domain"
)

const (
	// DefaultChunkSize is the window size in characters for a single chunk
	DefaultChunkSize = 1000
	// DefaultOverlapSize is how far consecutive chunks overlap
	DefaultOverlapSize = 200

	// sentenceBreakRatio is the minimum fraction of the window a sentence
	// terminator must sit past before the chunk breaks there instead of at
	// the hard limit. Prevents tiny chunks when a sentence ends early.
	sentenceBreakRatio = 0.7
)

// ChunkSpec describes one chunk produced by ChunkText. Start and End are
// rune offsets into the original text; Text is the trimmed window content.
type ChunkSpec struct {
	Index int
	Text  string
	Start int
	End   int
}

// ChunkText splits text into overlapping, sentence-boundary-aware chunks.
// chunkSize and overlapSize fall back to the defaults when non-positive.
// Degenerate parameters (overlap >= size) are clamped, never an error; the
// only failure is blank input.
func ChunkText(fullText string, chunkSize, overlapSize int) ([]ChunkSpec, error) {
	if strings.TrimSpace(fullText) == "" {
		return nil, domain.ErrEmptyText
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlapSize < 0 {
		overlapSize = DefaultOverlapSize
	}

	// Index over runes, not bytes, so hard-limit breaks never land inside a
	// multi-byte character.
	runes := []rune(fullText)
	length := len(runes)
	chunks := make([]ChunkSpec, 0, length/chunkSize+1)
	cursor := 0
	index := 0

	for cursor < length {
		candidateEnd := cursor + chunkSize
		if candidateEnd > length {
			candidateEnd = length
		}

		if candidateEnd < length {
			if cut := lastSentenceBreak(runes[cursor:candidateEnd], chunkSize); cut > 0 {
				candidateEnd = cursor + cut
			}
		}

		text := strings.TrimSpace(string(runes[cursor:candidateEnd]))
		if text != "" {
			chunks = append(chunks, ChunkSpec{
				Index: index,
				Text:  text,
				Start: cursor,
				End:   candidateEnd,
			})
			index++
		}

		if candidateEnd >= length {
			break
		}

		next := candidateEnd - overlapSize
		if next <= cursor {
			// Forward-progress clamp: overlap >= chunk size would otherwise
			// never advance the cursor.
			next = candidateEnd
		}
		cursor = next
	}

	return chunks, nil
}

// lastSentenceBreak returns the rune offset just past the last sentence
// terminator followed by whitespace in window, or 0 when no terminator sits
// past the break threshold.
func lastSentenceBreak(window []rune, chunkSize int) int {
	cut := 0
	for i := 1; i < len(window); i++ {
		if unicode.IsSpace(window[i]) && isSentenceTerminator(window[i-1]) {
			cut = i + 1
		}
	}
	if float64(cut) <= sentenceBreakRatio*float64(chunkSize) {
		return 0
	}
	return cut
}

func isSentenceTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
