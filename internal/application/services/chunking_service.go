package services

import (
	"regexp"
	"strings"
)

// Default chunking bounds. Windows overlap so sentences near a boundary
// stay retrievable from both sides.
const (
	DefaultChunkSizeWords    = 500
	DefaultChunkOverlapWords = 100
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// Keeps word characters plus the punctuation clinical text relies on:
	// ranges ("0.7-1.3"), units ("mL/min", "%"), and list separators.
	strippedChars = regexp.MustCompile(`[^\w\s.,;:()/%-]`)
)

// ChunkingService splits document text into overlapping word windows for
// storage and retrieval. It runs at ingestion time only, never on the
// request path.
type ChunkingService struct {
	sizeWords    int
	overlapWords int
}

// NewChunkingService creates a new chunking service. Invalid bounds fall
// back to the defaults; overlap must stay below the chunk size or the
// window could not advance.
func NewChunkingService(sizeWords, overlapWords int) *ChunkingService {
	if sizeWords <= 0 {
		sizeWords = DefaultChunkSizeWords
	}
	if overlapWords < 0 || overlapWords >= sizeWords {
		overlapWords = DefaultChunkOverlapWords
		if overlapWords >= sizeWords {
			overlapWords = 0
		}
	}
	return &ChunkingService{
		sizeWords:    sizeWords,
		overlapWords: overlapWords,
	}
}

// CleanText collapses whitespace runs to single spaces and strips
// characters outside the kept set.
func (s *ChunkingService) CleanText(text string) string {
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = strippedChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Chunk cleans the text and splits it into overlapping word windows. The
// window advances by size minus overlap and the last window stops at the
// end of the text, so every word lands in at least one chunk and no empty
// trailing chunk is emitted. Empty or whitespace-only text yields nil.
func (s *ChunkingService) Chunk(text string) []string {
	words := strings.Fields(s.CleanText(text))
	if len(words) == 0 {
		return nil
	}

	step := s.sizeWords - s.overlapWords
	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + s.sizeWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if i+s.sizeWords >= len(words) {
			break
		}
	}
	return chunks
}
