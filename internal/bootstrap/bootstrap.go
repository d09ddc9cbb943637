package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/studylab/exam-ai-assistant/internal/config"
	"github.com/studylab/exam-ai-assistant/internal/core/ports"
	"github.com/studylab/exam-ai-assistant/internal/core/usecase"
	"github.com/studylab/exam-ai-assistant/internal/infrastructure/chunking"
	pdfextractor "github.com/studylab/exam-ai-assistant/internal/infrastructure/extractor/pdf"
	"github.com/studylab/exam-ai-assistant/internal/infrastructure/lexical"
	"github.com/studylab/exam-ai-assistant/internal/infrastructure/llm/ollama"
	"github.com/studylab/exam-ai-assistant/internal/infrastructure/queue/nats"
	"github.com/studylab/exam-ai-assistant/internal/infrastructure/repository/postgres"
	"github.com/studylab/exam-ai-assistant/internal/infrastructure/rerank/crossencoder"
	"github.com/studylab/exam-ai-assistant/internal/infrastructure/resilience"
	"github.com/studylab/exam-ai-assistant/internal/infrastructure/storage/localfs"
	"github.com/studylab/exam-ai-assistant/internal/infrastructure/vector/qdrant"
)

// App holds every constructed dependency. Construction is explicit and
// happens exactly once here; nothing downstream caches singletons.
type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	StudyUC   ports.StudyService
	SessionUC ports.SessionManager

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	chunkRepo := postgres.NewChunkRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)
	hyde := ollama.NewHypotheticalWriter(ollamaClient)

	scorer := crossencoder.New(cfg.RerankerURL, cfg.RerankerModel, executor)
	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	lexicalSearcher := lexical.NewSessionSearcher(repo, chunkRepo)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extractor := pdfextractor.New(storage)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, chunkRepo, extractor, chunker, embedder, vectorDB)
	sessionUC := usecase.NewResetSessionUseCase(repo, storage, vectorDB)
	studyUC := usecase.NewStudyUseCase(
		lexicalSearcher,
		embedder,
		vectorDB,
		hyde,
		scorer,
		generator,
		usecase.StudyDefaults{
			TopKLexical:       cfg.RetrievalTopKLexical,
			TopKSemantic:      cfg.RetrievalTopKSemantic,
			RerankTopK:        cfg.RerankTopK,
			ContextMaxChunks:  cfg.ContextMaxChunks,
			ContextSeparator:  cfg.ContextSeparator,
			UseHyDE:           cfg.HyDEEnabled,
			QuizQuestions:     cfg.QuizQuestions,
			GenerationTimeout: time.Duration(cfg.GenerationTimeoutSecs) * time.Second,
		},
	)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		StudyUC:   studyUC,
		SessionUC: sessionUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
