package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceForDocument swaps a document's chunks in one transaction, so a
// concurrent reader sees either the old set or the new set, never a mix.
func (r *ChunkRepository) ReplaceForDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO chunks (document_id, session_id, chunk_index, content)
VALUES ($1,$2,$3,$4)
`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, doc.ID, doc.SessionID, chunk.ChunkIndex, chunk.Content); err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.ChunkIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunk tx: %w", err)
	}
	return nil
}

// ListBySession returns the session's chunks in a stable order, document
// first, then chunk position. Lexical indexing relies on this order being
// deterministic across rebuilds.
func (r *ChunkRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.document_id, d.filename, c.chunk_index, c.content
FROM chunks c
JOIN documents d ON d.id = c.document_id
WHERE c.session_id = $1
ORDER BY c.document_id, c.chunk_index
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		if err := rows.Scan(&chunk.DocumentID, &chunk.Filename, &chunk.ChunkIndex, &chunk.Content); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}
