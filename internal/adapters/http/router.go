package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
	"github.com/studylab/exam-ai-assistant/internal/core/ports"
	"github.com/studylab/exam-ai-assistant/internal/observability/metrics"
)

// TrafficConfig bounds what the API accepts before handlers run.
type TrafficConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	MaxWait        time.Duration
}

type Router struct {
	ingest   ports.DocumentIngestor
	study    ports.StudyService
	sessions ports.SessionManager
	docs     ports.DocumentReader
	metrics  *metrics.HTTPServerMetrics
	service  string
	traffic  TrafficConfig
}

func NewRouter(
	ingest ports.DocumentIngestor,
	study ports.StudyService,
	sessions ports.SessionManager,
	docs ports.DocumentReader,
	httpMetrics *metrics.HTTPServerMetrics,
	service string,
	traffic TrafficConfig,
) *Router {
	return &Router{
		ingest:   ingest,
		study:    study,
		sessions: sessions,
		docs:     docs,
		metrics:  httpMetrics,
		service:  service,
		traffic:  traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/ask", rt.ask)
	mux.HandleFunc("/v1/sessions/", rt.deleteSession)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = backpressureMiddleware(handler, rt.traffic.MaxInFlight, rt.traffic.MaxWait)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		r.FormValue("session_id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type askRequest struct {
	SessionID        string `json:"session_id"`
	Question         string `json:"question"`
	RerankTopK       int    `json:"rerank_top_k,omitempty"`
	ContextMaxChunks int    `json:"context_max_chunks,omitempty"`
	QuizQuestions    int    `json:"quiz_questions,omitempty"`
	UseHyDE          bool   `json:"use_hyde,omitempty"`
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	start := time.Now()
	result, err := rt.study.Ask(r.Context(), req.SessionID, req.Question, domain.RetrievalOptions{
		RerankTopK:       req.RerankTopK,
		ContextMaxChunks: req.ContextMaxChunks,
		QuizQuestions:    req.QuizQuestions,
		UseHyDE:          req.UseHyDE,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoRelevantContext) {
			// Not a failure: the documents simply do not cover the question.
			rt.recordAsk("no_context", 0, start)
			writeJSON(w, http.StatusOK, map[string]any{
				"message": domain.ErrNoRelevantContext.Error(),
				"sources": []domain.ScoredChunk{},
			})
			return
		}
		rt.recordAsk("error", 0, start)
		writeError(w, err)
		return
	}

	rt.recordAsk("ok", len(result.Sources), start)
	rt.recordStages(result)
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) deleteSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session id is required"})
		return
	}

	if err := rt.sessions.ResetSession(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) recordAsk(outcome string, sources int, start time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordAsk(rt.service, outcome, sources, time.Since(start))
}

func (rt *Router) recordStages(result *domain.StudyResult) {
	if rt.metrics == nil {
		return
	}
	if result.RerankDegraded {
		rt.metrics.RecordRerankFallback(rt.service)
	}
	if result.AnswerError != "" {
		rt.metrics.RecordStageFailure(rt.service, "answer")
	}
	if result.FollowUpError != "" {
		rt.metrics.RecordStageFailure(rt.service, "follow_ups")
	}
	if result.QuizError != "" {
		rt.metrics.RecordStageFailure(rt.service, "quiz")
	}
	rt.metrics.RecordQuizItems(rt.service, len(result.Quiz))
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
