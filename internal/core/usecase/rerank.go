package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
	"github.com/studylab/exam-ai-assistant/internal/core/ports"
)

// rerankCandidates scores every (query, candidate) pair with the external
// cross-encoder and returns the top topK candidates ordered by descending
// score. Ties keep the original candidate order, so results are
// deterministic for a fixed input.
//
// An empty candidate list returns immediately without invoking the scorer:
// the underlying model call fails on empty batches and there is nothing to
// rank anyway.
func rerankCandidates(
	ctx context.Context,
	scorer ports.RelevanceScorer,
	query string,
	candidates []domain.Chunk,
	topK int,
) ([]domain.ScoredChunk, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if topK <= 0 || topK > len(candidates) {
		topK = len(candidates)
	}

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Content
	}

	scores, err := scorer.ScoreBatch(ctx, query, passages)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("score candidates: %d scores for %d passages", len(scores), len(candidates))
	}

	scored := make([]domain.ScoredChunk, len(candidates))
	for i, c := range candidates {
		scored[i] = domain.ScoredChunk{Chunk: c, Score: scores[i]}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored[:topK], nil
}

// fallbackOrder converts candidates to scored chunks in their pre-rerank
// order. Used when the scoring model is unavailable: a worse-ranked but
// present context beats no answer.
func fallbackOrder(candidates []domain.Chunk, topK int) []domain.ScoredChunk {
	if len(candidates) == 0 {
		return nil
	}
	if topK <= 0 || topK > len(candidates) {
		topK = len(candidates)
	}
	out := make([]domain.ScoredChunk, topK)
	for i := 0; i < topK; i++ {
		out[i] = domain.ScoredChunk{Chunk: candidates[i]}
	}
	return out
}
