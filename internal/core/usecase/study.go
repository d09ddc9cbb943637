package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
	"github.com/studylab/exam-ai-assistant/internal/core/ports"
)

var (
	errEmptyQuestion = errors.New("question is empty")
	errEmptySession  = errors.New("session id is empty")
)

// StudyDefaults carries the configured retrieval and generation knobs. The
// source application never converged on fixed values, so everything stays
// configurable.
type StudyDefaults struct {
	TopKLexical       int
	TopKSemantic      int
	RerankTopK        int
	ContextMaxChunks  int
	ContextSeparator  string
	UseHyDE           bool
	QuizQuestions     int
	GenerationTimeout time.Duration
}

func (d StudyDefaults) normalize() StudyDefaults {
	out := d
	if out.TopKLexical <= 0 {
		out.TopKLexical = 5
	}
	if out.TopKSemantic <= 0 {
		out.TopKSemantic = 10
	}
	if out.RerankTopK <= 0 {
		out.RerankTopK = 5
	}
	if out.ContextMaxChunks <= 0 {
		out.ContextMaxChunks = 5
	}
	if out.ContextSeparator == "" {
		out.ContextSeparator = defaultContextSeparator
	}
	if out.QuizQuestions <= 0 {
		out.QuizQuestions = 5
	}
	if out.GenerationTimeout <= 0 {
		out.GenerationTimeout = 90 * time.Second
	}
	return out
}

// StudyUseCase answers a free-text question over one session's documents:
// hybrid retrieval, fusion, cross-encoder reranking, bounded context
// selection, then three independent generation calls.
type StudyUseCase struct {
	lexical     ports.LexicalSearcher
	embedder    ports.Embedder
	vectorIndex ports.VectorIndex
	hyde        ports.HypotheticalWriter
	scorer      ports.RelevanceScorer
	generator   ports.StudyGenerator
	defaults    StudyDefaults
}

func NewStudyUseCase(
	lexical ports.LexicalSearcher,
	embedder ports.Embedder,
	vectorIndex ports.VectorIndex,
	hyde ports.HypotheticalWriter,
	scorer ports.RelevanceScorer,
	generator ports.StudyGenerator,
	defaults StudyDefaults,
) *StudyUseCase {
	return &StudyUseCase{
		lexical:     lexical,
		embedder:    embedder,
		vectorIndex: vectorIndex,
		hyde:        hyde,
		scorer:      scorer,
		generator:   generator,
		defaults:    defaults.normalize(),
	}
}

func (uc *StudyUseCase) Ask(
	ctx context.Context,
	sessionID, question string,
	opts domain.RetrievalOptions,
) (*domain.StudyResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errEmptyQuestion)
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errEmptySession)
	}
	opts = uc.applyDefaults(opts)

	req := domain.RetrievalRequest{
		Query:        question,
		TopKLexical:  uc.defaults.TopKLexical,
		TopKSemantic: uc.defaults.TopKSemantic,
	}
	candidates := uc.retrieveCandidates(ctx, sessionID, req, opts.UseHyDE)
	if len(candidates) == 0 {
		return nil, domain.ErrNoRelevantContext
	}

	degraded := false
	ranked, err := rerankCandidates(ctx, uc.scorer, question, candidates, opts.RerankTopK)
	if err != nil {
		// Degrade to the unranked candidate order instead of aborting.
		slog.Warn("rerank_degraded", "session_id", sessionID, "candidates", len(candidates), "error", err)
		ranked = fallbackOrder(candidates, opts.RerankTopK)
		degraded = true
	}

	contextText := buildContextWindow(ranked, opts.ContextMaxChunks, opts.ContextSeparator)
	if contextText == "" {
		return nil, domain.ErrNoRelevantContext
	}

	result := &domain.StudyResult{Sources: ranked, RerankDegraded: degraded}
	uc.generateSections(ctx, result, contextText, question, opts.QuizQuestions)
	return result, nil
}

// generateSections runs the answer, follow-up and quiz generations
// concurrently. Each section depends only on the fixed (context, question)
// pair and writes its own result fields, so no synchronization beyond the
// wait group is needed. A failure in one section never blocks the others.
func (uc *StudyUseCase) generateSections(
	ctx context.Context,
	result *domain.StudyResult,
	contextText, question string,
	quizQuestions int,
) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		text, err := uc.withTimeout(ctx, func(callCtx context.Context) (string, error) {
			return uc.generator.GenerateAnswer(callCtx, contextText, question)
		})
		if err != nil {
			result.AnswerError = err.Error()
			return
		}
		result.Answer = text
	}()

	go func() {
		defer wg.Done()
		text, err := uc.withTimeout(ctx, func(callCtx context.Context) (string, error) {
			return uc.generator.GenerateFollowUps(callCtx, contextText, question)
		})
		if err != nil {
			result.FollowUpError = err.Error()
			return
		}
		result.FollowUps = text
	}()

	go func() {
		defer wg.Done()
		raw, err := uc.withTimeout(ctx, func(callCtx context.Context) (string, error) {
			return uc.generator.GenerateQuiz(callCtx, contextText, question, quizQuestions)
		})
		if err != nil {
			result.QuizError = err.Error()
			return
		}
		quiz := parseQuiz(raw)
		if len(quiz) == 0 {
			result.QuizError = "quiz could not be generated"
			return
		}
		// Fewer items than requested is a shorter quiz, not an error.
		result.Quiz = quiz
	}()

	wg.Wait()
}

func (uc *StudyUseCase) withTimeout(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, uc.defaults.GenerationTimeout)
	defer cancel()
	return fn(callCtx)
}

func (uc *StudyUseCase) applyDefaults(opts domain.RetrievalOptions) domain.RetrievalOptions {
	if opts.RerankTopK <= 0 {
		opts.RerankTopK = uc.defaults.RerankTopK
	}
	if opts.ContextMaxChunks <= 0 {
		opts.ContextMaxChunks = uc.defaults.ContextMaxChunks
	}
	if opts.ContextSeparator == "" {
		opts.ContextSeparator = uc.defaults.ContextSeparator
	}
	if opts.QuizQuestions <= 0 {
		opts.QuizQuestions = uc.defaults.QuizQuestions
	}
	if !opts.UseHyDE {
		opts.UseHyDE = uc.defaults.UseHyDE
	}
	return opts
}
