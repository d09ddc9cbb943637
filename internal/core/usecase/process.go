package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
	"github.com/studylab/exam-ai-assistant/internal/core/ports"
)

// ProcessDocumentUseCase turns an uploaded document into searchable indices:
// extract text, split into chunks, persist the chunk sequence (the lexical
// index is rebuilt from it on demand), embed and index the vectors.
type ProcessDocumentUseCase struct {
	repo        ports.DocumentRepository
	chunkRepo   ports.ChunkRepository
	extractor   ports.TextExtractor
	chunker     ports.Chunker
	embedder    ports.Embedder
	vectorIndex ports.VectorIndex
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	chunkRepo ports.ChunkRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorIndex ports.VectorIndex,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:        repo,
		chunkRepo:   chunkRepo,
		extractor:   extractor,
		chunker:     chunker,
		embedder:    embedder,
		vectorIndex: vectorIndex,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.processPipeline(ctx, documentID); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	text, pages, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	pieces := uc.chunker.Split(text)
	if len(pieces) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, content := range pieces {
		chunks[i] = domain.Chunk{
			Content:    content,
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			ChunkIndex: i,
		}
	}

	vectors, err := uc.embedder.Embed(ctx, pieces)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(pieces)),
		)
	}

	if err := uc.chunkRepo.ReplaceForDocument(ctx, doc, chunks); err != nil {
		return fmt.Errorf("persist chunks: %w", err)
	}
	if err := uc.vectorIndex.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("drop stale vectors: %w", err)
	}
	if err := uc.vectorIndex.IndexChunks(ctx, doc, chunks, vectors); err != nil {
		return fmt.Errorf("index chunks in vector db: %w", err)
	}
	if err := uc.repo.SetIndexStats(ctx, doc.ID, pages, len(chunks)); err != nil {
		return fmt.Errorf("save index stats: %w", err)
	}
	return nil
}
