package usecase

import (
	"context"
	"log/slog"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

// retrieveCandidates runs lexical and semantic search for one question and
// fuses the results. Either source failing or being unconfigured degrades to
// zero results from that source; the whole retrieval only comes back empty
// when both sources produced nothing.
func (uc *StudyUseCase) retrieveCandidates(
	ctx context.Context,
	sessionID string,
	req domain.RetrievalRequest,
	useHyDE bool,
) []domain.Chunk {
	lexical := uc.searchLexical(ctx, sessionID, req)
	semantic := uc.searchSemantic(ctx, sessionID, req, useHyDE)
	return fuseCandidates(lexical, semantic)
}

func (uc *StudyUseCase) searchLexical(ctx context.Context, sessionID string, req domain.RetrievalRequest) []domain.Chunk {
	if uc.lexical == nil || req.TopKLexical <= 0 {
		return nil
	}
	chunks, err := uc.lexical.Search(ctx, sessionID, req.Query, req.TopKLexical)
	if err != nil {
		slog.Warn("lexical_search_degraded", "session_id", sessionID, "error", err)
		return nil
	}
	return chunks
}

func (uc *StudyUseCase) searchSemantic(
	ctx context.Context,
	sessionID string,
	req domain.RetrievalRequest,
	useHyDE bool,
) []domain.Chunk {
	if uc.vectorIndex == nil || uc.embedder == nil || req.TopKSemantic <= 0 {
		return nil
	}

	// Hypothetical-document expansion: embed a drafted answer instead of the
	// raw question. Any failure falls back to the raw question; the fusion
	// stage never sees the difference.
	queryText := req.Query
	if useHyDE && uc.hyde != nil {
		hypothetical, err := uc.hyde.WriteHypothetical(ctx, req.Query)
		if err != nil {
			slog.Warn("hyde_expansion_degraded", "session_id", sessionID, "error", err)
		} else if hypothetical != "" {
			queryText = hypothetical
		}
	}

	vector, err := uc.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		slog.Warn("semantic_search_degraded", "session_id", sessionID, "stage", "embed", "error", err)
		return nil
	}

	chunks, err := uc.vectorIndex.SearchByVector(ctx, sessionID, vector, req.TopKSemantic)
	if err != nil {
		slog.Warn("semantic_search_degraded", "session_id", sessionID, "stage", "search", "error", err)
		return nil
	}
	return chunks
}
