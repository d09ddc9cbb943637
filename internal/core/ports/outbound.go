package ports

import (
	"context"
	"io"
	"time"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SetIndexStats(ctx context.Context, id string, pageCount, chunkCount int) error
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Document, error)
	DeleteBySession(ctx context.Context, sessionID string) error
	// SessionRevision reports the latest document update in a session, used
	// to invalidate per-session caches built outside the worker process.
	SessionRevision(ctx context.Context, sessionID string) (time.Time, error)
}

// ChunkRepository persists the ordered chunk sequence of a session.
type ChunkRepository interface {
	ReplaceForDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.Chunk, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes upload events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (text string, pages int, err error)
}

// Chunker splits text into retrieval-sized chunks.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex indexes chunk vectors and performs semantic search scoped to
// one session.
type VectorIndex interface {
	IndexChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, vectors [][]float32) error
	SearchByVector(ctx context.Context, sessionID string, vector []float32, limit int) ([]domain.Chunk, error)
	// DeleteDocument makes re-indexing idempotent: old points are removed
	// before the new set is written.
	DeleteDocument(ctx context.Context, documentID string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// LexicalSearcher performs keyword search over one session's chunks.
type LexicalSearcher interface {
	Search(ctx context.Context, sessionID, query string, limit int) ([]domain.Chunk, error)
}

// RelevanceScorer scores (query, passage) pairs with a cross-encoder model.
// One score per passage, higher is more relevant.
type RelevanceScorer interface {
	ScoreBatch(ctx context.Context, query string, passages []string) ([]float64, error)
}

// StudyGenerator produces the three generated study sections. The three
// calls are independent; each consumes the same (context, question) pair.
type StudyGenerator interface {
	GenerateAnswer(ctx context.Context, contextText, question string) (string, error)
	GenerateFollowUps(ctx context.Context, contextText, question string) (string, error)
	GenerateQuiz(ctx context.Context, contextText, question string, questions int) (string, error)
}

// HypotheticalWriter drafts a plausible answer to a question, used for
// hypothetical-document query expansion before semantic search.
type HypotheticalWriter interface {
	WriteHypothetical(ctx context.Context, question string) (string, error)
}
