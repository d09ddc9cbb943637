package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
	"github.com/studylab/exam-ai-assistant/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores the raw document, records its metadata and schedules
// indexing. An empty sessionID starts a fresh session; the previous
// session's indices are left behind and simply stop being queried.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	sessionID, filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	if !looksLikePDF(filename, mimeType) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload",
			fmt.Errorf("only pdf uploads are supported, got %q (%s)", filename, mimeType))
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	id := uuid.NewString()
	storageKey := id + "_" + sanitizeFilename(filename)

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          id,
		SessionID:   sessionID,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}
	return doc, nil
}

func looksLikePDF(filename, mimeType string) bool {
	if strings.EqualFold(strings.TrimSpace(mimeType), "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// sanitizeFilename reduces the client-supplied name to a flat, shell-safe
// token. The storage key prefixes a uuid, so collisions after sanitizing
// are harmless.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	if base == "" || base == "." || base == ".." {
		return "document.pdf"
	}

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
