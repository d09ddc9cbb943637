package lexical

import (
	"testing"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{Content: "photosynthesis converts light energy into chemical energy", DocumentID: "doc-1", ChunkIndex: 0},
		{Content: "the mitochondria is the powerhouse of the cell", DocumentID: "doc-1", ChunkIndex: 1},
		{Content: "light reactions happen in the thylakoid membrane", DocumentID: "doc-2", ChunkIndex: 0},
	}
}

func TestSearchRanksTermOverlapHigher(t *testing.T) {
	idx := buildIndex(testChunks())

	out := idx.search("photosynthesis light energy", 3)
	if len(out) == 0 {
		t.Fatalf("expected results")
	}
	if out[0].DocumentID != "doc-1" || out[0].ChunkIndex != 0 {
		t.Fatalf("expected photosynthesis chunk first, got %+v", out[0])
	}
	for _, chunk := range out {
		if chunk.ChunkIndex == 1 && chunk.DocumentID == "doc-1" {
			t.Fatalf("mitochondria chunk shares no query terms and must not match")
		}
	}
}

func TestSearchLimitsResults(t *testing.T) {
	idx := buildIndex(testChunks())

	out := idx.search("the light", 1)
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}
}

func TestSearchNoMatchReturnsNothing(t *testing.T) {
	idx := buildIndex(testChunks())

	if out := idx.search("quantum chromodynamics", 5); len(out) != 0 {
		t.Fatalf("expected no results, got %d", len(out))
	}
}

func TestSearchEmptyIndexAndQuery(t *testing.T) {
	empty := buildIndex(nil)
	if out := empty.search("anything", 5); out != nil {
		t.Fatalf("expected nil from empty index")
	}

	idx := buildIndex(testChunks())
	if out := idx.search("", 5); out != nil {
		t.Fatalf("expected nil for empty query")
	}
	if out := idx.search("light", 0); out != nil {
		t.Fatalf("expected nil for zero limit")
	}
}

func TestSearchTieBreakIsStable(t *testing.T) {
	chunks := []domain.Chunk{
		{Content: "alpha beta", DocumentID: "doc-1", ChunkIndex: 0},
		{Content: "alpha beta", DocumentID: "doc-1", ChunkIndex: 1},
	}
	idx := buildIndex(chunks)

	out := idx.search("alpha", 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].ChunkIndex != 0 || out[1].ChunkIndex != 1 {
		t.Fatalf("expected corpus order on ties, got %+v", out)
	}
}

func TestTokenizeLowercasesAndSplitsOnNonAlnum(t *testing.T) {
	tokens := tokenize("BM25, the Okapi-variant (v2)!")
	want := []string{"bm25", "the", "okapi", "variant", "v2"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d: expected %q, got %q", i, want[i], tokens[i])
		}
	}
}
