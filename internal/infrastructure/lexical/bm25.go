// Package lexical provides keyword search over one session's chunks using
// Okapi BM25 on an in-memory index. The corpus is one upload set, small
// enough that building the index in memory per session is cheap.
package lexical

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

type postings struct {
	docFreq   int
	termFreqs map[int]int
}

// index is an immutable BM25 structure over an ordered chunk sequence.
// Built once, read-only afterwards.
type index struct {
	chunks    []domain.Chunk
	terms     map[string]*postings
	docLens   []int
	avgDocLen float64
}

func buildIndex(chunks []domain.Chunk) *index {
	idx := &index{
		chunks:  chunks,
		terms:   make(map[string]*postings),
		docLens: make([]int, len(chunks)),
	}

	totalLen := 0
	for docID, chunk := range chunks {
		tokens := tokenize(chunk.Content)
		idx.docLens[docID] = len(tokens)
		totalLen += len(tokens)

		seen := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			p, ok := idx.terms[token]
			if !ok {
				p = &postings{termFreqs: make(map[int]int)}
				idx.terms[token] = p
			}
			p.termFreqs[docID]++
			if _, dup := seen[token]; !dup {
				p.docFreq++
				seen[token] = struct{}{}
			}
		}
	}
	if len(chunks) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(chunks))
	}
	return idx
}

// search ranks chunks by BM25 score against the query and returns the top k
// with a positive score. Ties keep chunk order, so results are stable.
func (idx *index) search(query string, k int) []domain.Chunk {
	if idx == nil || len(idx.chunks) == 0 || k <= 0 {
		return nil
	}
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	n := float64(len(idx.chunks))
	scores := make(map[int]float64)
	for _, token := range queryTokens {
		p, ok := idx.terms[token]
		if !ok {
			continue
		}
		idf := math.Log(1.0 + (n-float64(p.docFreq)+0.5)/(float64(p.docFreq)+0.5))
		for docID, tf := range p.termFreqs {
			norm := 1.0 - bm25B + bm25B*float64(idx.docLens[docID])/idx.avgDocLen
			scores[docID] += idf * float64(tf) * (bm25K1 + 1.0) / (float64(tf) + bm25K1*norm)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	docIDs := make([]int, 0, len(scores))
	for docID := range scores {
		docIDs = append(docIDs, docID)
	}
	sort.Slice(docIDs, func(i, j int) bool {
		if scores[docIDs[i]] != scores[docIDs[j]] {
			return scores[docIDs[i]] > scores[docIDs[j]]
		}
		return docIDs[i] < docIDs[j]
	})

	if k > len(docIDs) {
		k = len(docIDs)
	}
	out := make([]domain.Chunk, 0, k)
	for _, docID := range docIDs[:k] {
		out = append(out, idx.chunks[docID])
	}
	return out
}

func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
