package domain

// Chunk is the atomic unit of retrieval: a bounded span of extracted
// document text. Two chunks with identical Content are the same chunk for
// deduplication purposes, regardless of which document produced them.
type Chunk struct {
	Content      string `json:"content"`
	DocumentID   string `json:"document_id"`
	Filename     string `json:"filename,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
	SourceOffset int    `json:"source_offset,omitempty"`
}

// ScoredChunk pairs a chunk with its relevance score for one query.
// Produced only by reranking; recomputed per question.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// RetrievalRequest carries the per-question retrieval parameters.
type RetrievalRequest struct {
	Query        string
	TopKLexical  int
	TopKSemantic int
}

// RetrievalOptions holds the post-retrieval knobs for a study request.
// Zero values are replaced with configured defaults by the use case.
type RetrievalOptions struct {
	RerankTopK       int
	ContextMaxChunks int
	ContextSeparator string
	UseHyDE          bool
	QuizQuestions    int
}
