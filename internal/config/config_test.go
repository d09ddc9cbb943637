package config

import "testing"

func TestLoadRetrievalDefaults(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K_LEXICAL", "")
	t.Setenv("RETRIEVAL_TOP_K_SEMANTIC", "")
	t.Setenv("RERANK_TOP_K", "")
	t.Setenv("CONTEXT_MAX_CHUNKS", "")
	t.Setenv("HYDE_ENABLED", "")
	t.Setenv("QUIZ_QUESTIONS", "")

	cfg := Load()
	if cfg.RetrievalTopKLexical != 5 {
		t.Fatalf("expected default lexical top k 5, got %d", cfg.RetrievalTopKLexical)
	}
	if cfg.RetrievalTopKSemantic != 10 {
		t.Fatalf("expected default semantic top k 10, got %d", cfg.RetrievalTopKSemantic)
	}
	if cfg.RerankTopK != 5 {
		t.Fatalf("expected default rerank top k 5, got %d", cfg.RerankTopK)
	}
	if cfg.ContextMaxChunks != 5 {
		t.Fatalf("expected default context max chunks 5, got %d", cfg.ContextMaxChunks)
	}
	if cfg.ContextSeparator != "\n\n---\n\n" {
		t.Fatalf("unexpected default separator %q", cfg.ContextSeparator)
	}
	if !cfg.HyDEEnabled {
		t.Fatalf("expected HyDE enabled by default")
	}
	if cfg.QuizQuestions != 5 {
		t.Fatalf("expected default quiz questions 5, got %d", cfg.QuizQuestions)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K_LEXICAL", "8")
	t.Setenv("RERANK_TOP_K", "12")
	t.Setenv("HYDE_ENABLED", "false")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "45")

	cfg := Load()
	if cfg.RetrievalTopKLexical != 8 {
		t.Fatalf("expected lexical top k 8, got %d", cfg.RetrievalTopKLexical)
	}
	if cfg.RerankTopK != 12 {
		t.Fatalf("expected rerank top k 12, got %d", cfg.RerankTopK)
	}
	if cfg.HyDEEnabled {
		t.Fatalf("expected HyDE disabled")
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.GenerationTimeoutSecs != 45 {
		t.Fatalf("expected generation timeout 45, got %d", cfg.GenerationTimeoutSecs)
	}
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	t.Setenv("HYDE_ENABLED", "definitely")

	cfg := Load()
	if cfg.ChunkSize != 1000 {
		t.Fatalf("expected fallback chunk size 1000, got %d", cfg.ChunkSize)
	}
	if !cfg.HyDEEnabled {
		t.Fatalf("expected fallback HyDE true, got false")
	}
}
