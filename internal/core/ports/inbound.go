package ports

import (
	"context"
	"io"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
// An empty sessionID starts a fresh session.
type DocumentIngestor interface {
	Upload(ctx context.Context, sessionID, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// StudyService is the inbound contract for question answering, follow-up
// prompts and quiz generation over one session's documents.
type StudyService interface {
	Ask(ctx context.Context, sessionID, question string, opts domain.RetrievalOptions) (*domain.StudyResult, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous indexing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// SessionManager discards a session wholesale: stored files, chunk rows,
// vector points and document records.
type SessionManager interface {
	ResetSession(ctx context.Context, sessionID string) error
}
