package usecase

import "github.com/studylab/exam-ai-assistant/internal/core/domain"

// fuseCandidates merges the lexical and semantic candidate lists into one
// set, deduplicated by exact chunk content. Later occurrences of the same
// content overwrite earlier ones, so provenance fields come from the last
// source that returned the chunk. The output preserves first-seen order but
// downstream stages treat it as unordered and re-rank it immediately.
//
// Either input may be nil or empty; an empty result is a valid outcome that
// callers report as "no relevant information found".
func fuseCandidates(lexical, semantic []domain.Chunk) []domain.Chunk {
	total := len(lexical) + len(semantic)
	if total == 0 {
		return nil
	}

	out := make([]domain.Chunk, 0, total)
	byContent := make(map[string]int, total)

	add := func(chunks []domain.Chunk) {
		for _, chunk := range chunks {
			if pos, seen := byContent[chunk.Content]; seen {
				// Last write wins, position stays.
				out[pos] = chunk
				continue
			}
			byContent[chunk.Content] = len(out)
			out = append(out, chunk)
		}
	}

	add(lexical)
	add(semantic)

	return out
}
