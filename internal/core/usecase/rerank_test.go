package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

type fakeScorer struct {
	scores []float64
	err    error
	calls  int
}

func (f *fakeScorer) ScoreBatch(_ context.Context, _ string, passages []string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.scores != nil {
		return f.scores, nil
	}
	return make([]float64, len(passages)), nil
}

func TestRerankCandidatesOrdersByScoreDescending(t *testing.T) {
	candidates := []domain.Chunk{
		{Content: "x", DocumentID: "doc-x"},
		{Content: "y", DocumentID: "doc-y"},
		{Content: "z", DocumentID: "doc-z"},
	}
	scorer := &fakeScorer{scores: []float64{0.9, 0.7, 0.95}}

	ranked, err := rerankCandidates(context.Background(), scorer, "q", candidates, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked candidates, got %d", len(ranked))
	}
	if ranked[0].Chunk.Content != "z" || ranked[1].Chunk.Content != "x" {
		t.Fatalf("expected [z x], got [%s %s]", ranked[0].Chunk.Content, ranked[1].Chunk.Content)
	}
	if ranked[0].Score != 0.95 {
		t.Fatalf("expected top score 0.95, got %v", ranked[0].Score)
	}
}

func TestRerankCandidatesTieKeepsOriginalOrder(t *testing.T) {
	candidates := []domain.Chunk{
		{Content: "first"},
		{Content: "second"},
		{Content: "third"},
	}
	scorer := &fakeScorer{scores: []float64{0.5, 0.5, 0.5}}

	ranked, err := rerankCandidates(context.Background(), scorer, "q", candidates, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if ranked[i].Chunk.Content != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, ranked[i].Chunk.Content)
		}
	}
}

func TestRerankCandidatesEmptyInputSkipsScorer(t *testing.T) {
	scorer := &fakeScorer{}

	ranked, err := rerankCandidates(context.Background(), scorer, "q", nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty result, got %d", len(ranked))
	}
	if scorer.calls != 0 {
		t.Fatalf("scorer must not be invoked for empty candidates, got %d calls", scorer.calls)
	}
}

func TestRerankCandidatesScoreCountMismatchFails(t *testing.T) {
	candidates := []domain.Chunk{{Content: "a"}, {Content: "b"}}
	scorer := &fakeScorer{scores: []float64{0.1}}

	if _, err := rerankCandidates(context.Background(), scorer, "q", candidates, 2); err == nil {
		t.Fatalf("expected error on score count mismatch")
	}
}

func TestRerankCandidatesPropagatesScorerError(t *testing.T) {
	candidates := []domain.Chunk{{Content: "a"}}
	scorer := &fakeScorer{err: errors.New("model down")}

	if _, err := rerankCandidates(context.Background(), scorer, "q", candidates, 1); err == nil {
		t.Fatalf("expected scorer error to propagate")
	}
}

func TestFallbackOrderKeepsPreRerankOrder(t *testing.T) {
	candidates := []domain.Chunk{
		{Content: "a"},
		{Content: "b"},
		{Content: "c"},
	}

	out := fallbackOrder(candidates, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 fallback candidates, got %d", len(out))
	}
	if out[0].Chunk.Content != "a" || out[1].Chunk.Content != "b" {
		t.Fatalf("expected [a b], got [%s %s]", out[0].Chunk.Content, out[1].Chunk.Content)
	}
	if out[0].Score != 0 {
		t.Fatalf("fallback scores must be zero, got %v", out[0].Score)
	}
}
