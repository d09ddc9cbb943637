package lexical

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
	"github.com/studylab/exam-ai-assistant/internal/core/ports"
)

type cachedIndex struct {
	revision time.Time
	idx      *index
}

// SessionSearcher builds the BM25 index for a session lazily, once, behind
// a mutex, and rebuilds it when the session's documents change. This
// replaces the UI-framework resource caching of the source application with
// an explicit, dependency-injected cache.
type SessionSearcher struct {
	docs   ports.DocumentRepository
	chunks ports.ChunkRepository

	mu    sync.Mutex
	cache map[string]cachedIndex
}

func NewSessionSearcher(docs ports.DocumentRepository, chunks ports.ChunkRepository) *SessionSearcher {
	return &SessionSearcher{
		docs:   docs,
		chunks: chunks,
		cache:  make(map[string]cachedIndex),
	}
}

func (s *SessionSearcher) Search(ctx context.Context, sessionID, query string, limit int) ([]domain.Chunk, error) {
	idx, err := s.sessionIndex(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return idx.search(query, limit), nil
}

func (s *SessionSearcher) sessionIndex(ctx context.Context, sessionID string) (*index, error) {
	revision, err := s.docs.SessionRevision(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session revision: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[sessionID]; ok && cached.revision.Equal(revision) {
		return cached.idx, nil
	}

	chunks, err := s.chunks.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session chunks: %w", err)
	}

	idx := buildIndex(chunks)
	s.cache[sessionID] = cachedIndex{revision: revision, idx: idx}
	return idx, nil
}
