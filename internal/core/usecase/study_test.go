package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

type fakeLexicalSearcher struct {
	chunks []domain.Chunk
	err    error
	calls  int
}

func (f *fakeLexicalSearcher) Search(_ context.Context, _, _ string, _ int) ([]domain.Chunk, error) {
	f.calls++
	return f.chunks, f.err
}

type fakeEmbedder struct {
	err        error
	lastQuery  string
	queryCalls int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queryCalls++
	f.lastQuery = text
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type fakeVectorIndex struct {
	chunks      []domain.Chunk
	searchErr   error
	searchCalls int

	indexErr        error
	indexedChunks   []domain.Chunk
	deletedDocs     []string
	deletedSessions []string
	deleteErr       error
}

func (f *fakeVectorIndex) IndexChunks(_ context.Context, _ *domain.Document, chunks []domain.Chunk, _ [][]float32) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexedChunks = append(f.indexedChunks, chunks...)
	return nil
}

func (f *fakeVectorIndex) SearchByVector(_ context.Context, _ string, _ []float32, _ int) ([]domain.Chunk, error) {
	f.searchCalls++
	return f.chunks, f.searchErr
}

func (f *fakeVectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	f.deletedDocs = append(f.deletedDocs, documentID)
	return nil
}

func (f *fakeVectorIndex) DeleteSession(_ context.Context, sessionID string) error {
	f.deletedSessions = append(f.deletedSessions, sessionID)
	return f.deleteErr
}

type fakeHypotheticalWriter struct {
	text  string
	err   error
	calls int
}

func (f *fakeHypotheticalWriter) WriteHypothetical(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeStudyGenerator struct {
	answer    string
	followUps string
	quiz      string

	answerErr    error
	followUpsErr error
	quizErr      error

	answerCalls    int
	followUpCalls  int
	quizCalls      int
	quizFormatArgs []int
}

func (f *fakeStudyGenerator) GenerateAnswer(context.Context, string, string) (string, error) {
	f.answerCalls++
	return f.answer, f.answerErr
}

func (f *fakeStudyGenerator) GenerateFollowUps(context.Context, string, string) (string, error) {
	f.followUpCalls++
	return f.followUps, f.followUpsErr
}

func (f *fakeStudyGenerator) GenerateQuiz(_ context.Context, _, _ string, questions int) (string, error) {
	f.quizCalls++
	f.quizFormatArgs = append(f.quizFormatArgs, questions)
	return f.quiz, f.quizErr
}

const validQuizText = `Question: Sample?
A. One
B. Two
Answer: A
Explanation: because.`

func newStudyFixture() (*StudyUseCase, *fakeLexicalSearcher, *fakeEmbedder, *fakeVectorIndex, *fakeHypotheticalWriter, *fakeScorer, *fakeStudyGenerator) {
	lex := &fakeLexicalSearcher{chunks: []domain.Chunk{{Content: "lexical hit", DocumentID: "doc-1"}}}
	emb := &fakeEmbedder{}
	vec := &fakeVectorIndex{chunks: []domain.Chunk{{Content: "semantic hit", DocumentID: "doc-2"}}}
	hyde := &fakeHypotheticalWriter{text: "a drafted passage"}
	scorer := &fakeScorer{scores: []float64{0.2, 0.8}}
	gen := &fakeStudyGenerator{answer: "the answer", followUps: "follow-ups", quiz: validQuizText}

	uc := NewStudyUseCase(lex, emb, vec, hyde, scorer, gen, StudyDefaults{
		GenerationTimeout: 5 * time.Second,
	})
	return uc, lex, emb, vec, hyde, scorer, gen
}

func TestAskProducesAllThreeSections(t *testing.T) {
	uc, _, _, _, _, _, gen := newStudyFixture()

	result, err := uc.Ask(context.Background(), "session-1", "what is bm25?", domain.RetrievalOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "the answer" {
		t.Fatalf("unexpected answer: %q", result.Answer)
	}
	if result.FollowUps != "follow-ups" {
		t.Fatalf("unexpected follow-ups: %q", result.FollowUps)
	}
	if len(result.Quiz) != 1 || result.Quiz[0].CorrectLabel != "A" {
		t.Fatalf("unexpected quiz: %+v", result.Quiz)
	}
	if gen.answerCalls != 1 || gen.followUpCalls != 1 || gen.quizCalls != 1 {
		t.Fatalf("expected one call per section, got %d/%d/%d", gen.answerCalls, gen.followUpCalls, gen.quizCalls)
	}
	// Higher-scored semantic hit must rank first in the returned sources.
	if len(result.Sources) != 2 || result.Sources[0].Chunk.Content != "semantic hit" {
		t.Fatalf("unexpected sources: %+v", result.Sources)
	}
}

func TestAskEmptyRetrievalNeverInvokesGeneratorOrScorer(t *testing.T) {
	uc, lex, _, vec, _, scorer, gen := newStudyFixture()
	lex.chunks = nil
	vec.chunks = nil

	_, err := uc.Ask(context.Background(), "session-1", "question", domain.RetrievalOptions{})
	if !errors.Is(err, domain.ErrNoRelevantContext) {
		t.Fatalf("expected ErrNoRelevantContext, got %v", err)
	}
	if scorer.calls != 0 {
		t.Fatalf("scorer must not run without candidates, got %d calls", scorer.calls)
	}
	if gen.answerCalls+gen.followUpCalls+gen.quizCalls != 0 {
		t.Fatalf("generator must not run without context")
	}
}

func TestAskScorerFailureFallsBackToPreRerankOrder(t *testing.T) {
	uc, _, _, _, _, scorer, gen := newStudyFixture()
	scorer.err = errors.New("reranker unavailable")

	result, err := uc.Ask(context.Background(), "session-1", "question", domain.RetrievalOptions{})
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(result.Sources))
	}
	// Fused order is lexical first, semantic second.
	if result.Sources[0].Chunk.Content != "lexical hit" {
		t.Fatalf("expected pre-rerank order, got %+v", result.Sources)
	}
	if gen.answerCalls != 1 {
		t.Fatalf("generation must still run on fallback order")
	}
	if !result.RerankDegraded {
		t.Fatalf("expected result to be marked rerank-degraded")
	}
}

func TestAskDegradedLexicalSourceStillAnswers(t *testing.T) {
	uc, lex, _, _, _, scorer, _ := newStudyFixture()
	lex.err = errors.New("index rebuild failed")
	scorer.scores = []float64{0.5}

	result, err := uc.Ask(context.Background(), "session-1", "question", domain.RetrievalOptions{})
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(result.Sources) != 1 || result.Sources[0].Chunk.Content != "semantic hit" {
		t.Fatalf("expected surviving semantic source, got %+v", result.Sources)
	}
}

func TestAskSectionFailuresAreIndependent(t *testing.T) {
	uc, _, _, _, _, _, gen := newStudyFixture()
	gen.answerErr = errors.New("generation timeout")

	result, err := uc.Ask(context.Background(), "session-1", "question", domain.RetrievalOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AnswerError == "" {
		t.Fatalf("expected answer error to be recorded")
	}
	if result.Answer != "" {
		t.Fatalf("failed section must not carry text")
	}
	if result.FollowUps != "follow-ups" || len(result.Quiz) != 1 {
		t.Fatalf("other sections must survive: %+v", result)
	}
}

func TestAskUnparseableQuizBecomesStageError(t *testing.T) {
	uc, _, _, _, _, _, gen := newStudyFixture()
	gen.quiz = "I cannot write a quiz about this."

	result, err := uc.Ask(context.Background(), "session-1", "question", domain.RetrievalOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.QuizError != "quiz could not be generated" {
		t.Fatalf("unexpected quiz error: %q", result.QuizError)
	}
	if len(result.Quiz) != 0 {
		t.Fatalf("expected no quiz items, got %d", len(result.Quiz))
	}
}

func TestAskValidatesInput(t *testing.T) {
	uc, _, _, _, _, _, _ := newStudyFixture()

	if _, err := uc.Ask(context.Background(), "session-1", "   ", domain.RetrievalOptions{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank question, got %v", err)
	}
	if _, err := uc.Ask(context.Background(), "", "question", domain.RetrievalOptions{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank session, got %v", err)
	}
}

func TestAskHyDEExpandsSemanticQuery(t *testing.T) {
	uc, _, emb, _, hyde, _, _ := newStudyFixture()

	_, err := uc.Ask(context.Background(), "session-1", "what is bm25?", domain.RetrievalOptions{UseHyDE: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hyde.calls != 1 {
		t.Fatalf("expected hypothetical draft, got %d calls", hyde.calls)
	}
	if emb.lastQuery != "a drafted passage" {
		t.Fatalf("expected drafted passage to be embedded, got %q", emb.lastQuery)
	}
}

func TestAskHyDEFailureFallsBackToRawQuery(t *testing.T) {
	uc, _, emb, _, hyde, _, _ := newStudyFixture()
	hyde.err = errors.New("draft failed")

	_, err := uc.Ask(context.Background(), "session-1", "what is bm25?", domain.RetrievalOptions{UseHyDE: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(emb.lastQuery, "bm25") {
		t.Fatalf("expected raw question embedding, got %q", emb.lastQuery)
	}
}

func TestAskPassesQuizQuestionCountThrough(t *testing.T) {
	uc, _, _, _, _, _, gen := newStudyFixture()

	_, err := uc.Ask(context.Background(), "session-1", "question", domain.RetrievalOptions{QuizQuestions: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gen.quizFormatArgs) != 1 || gen.quizFormatArgs[0] != 3 {
		t.Fatalf("expected quiz question count 3, got %v", gen.quizFormatArgs)
	}
}
