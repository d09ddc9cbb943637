package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
	"github.com/studylab/exam-ai-assistant/internal/core/ports"
)

// ResetSessionUseCase discards a session wholesale. Stored files are removed
// best-effort; the rows and vector points must go, an orphaned file on disk
// is only wasted space.
type ResetSessionUseCase struct {
	repo        ports.DocumentRepository
	storage     ports.ObjectStorage
	vectorIndex ports.VectorIndex
}

func NewResetSessionUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	vectorIndex ports.VectorIndex,
) *ResetSessionUseCase {
	return &ResetSessionUseCase{
		repo:        repo,
		storage:     storage,
		vectorIndex: vectorIndex,
	}
}

func (uc *ResetSessionUseCase) ResetSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "reset session", errors.New("empty session id"))
	}

	docs, err := uc.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list session documents: %w", err)
	}
	if len(docs) == 0 {
		return domain.WrapError(domain.ErrSessionNotFound, "reset session", fmt.Errorf("session=%s", sessionID))
	}

	for _, doc := range docs {
		if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
			slog.Warn("session_reset_file_delete_failed",
				"session_id", sessionID,
				"document_id", doc.ID,
				"error", err,
			)
		}
	}

	if err := uc.vectorIndex.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session vectors: %w", err)
	}
	if err := uc.repo.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session records: %w", err)
	}
	return nil
}
