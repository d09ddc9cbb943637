package usecase

import (
	"strings"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

// defaultContextSeparator visually delimits chunks inside the prompt.
const defaultContextSeparator = "\n\n---\n\n"

// buildContextWindow concatenates the content of up to maxChunks leading
// elements of ranked, joined by separator, preserving rank order. An empty
// ranked list yields an empty string; callers must short-circuit generation
// on empty context instead of letting the model invent an answer.
func buildContextWindow(ranked []domain.ScoredChunk, maxChunks int, separator string) string {
	if len(ranked) == 0 {
		return ""
	}
	if maxChunks <= 0 || maxChunks > len(ranked) {
		maxChunks = len(ranked)
	}
	if separator == "" {
		separator = defaultContextSeparator
	}

	parts := make([]string, 0, maxChunks)
	for _, sc := range ranked[:maxChunks] {
		parts = append(parts, sc.Chunk.Content)
	}
	return strings.Join(parts, separator)
}
