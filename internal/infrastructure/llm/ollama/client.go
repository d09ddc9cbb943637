package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/studylab/exam-ai-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.call(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Generator produces the three study sections from fixed prompt templates.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, contextText, question string) (string, error) {
	return g.client.generateText(ctx, buildAnswerPrompt(contextText, question))
}

func (g *Generator) GenerateFollowUps(ctx context.Context, contextText, question string) (string, error) {
	return g.client.generateText(ctx, buildFollowUpPrompt(contextText, question))
}

func (g *Generator) GenerateQuiz(ctx context.Context, contextText, question string, questions int) (string, error) {
	return g.client.generateText(ctx, buildQuizPrompt(contextText, question, questions))
}

// HypotheticalWriter drafts a short plausible answer for query expansion.
type HypotheticalWriter struct {
	client *Client
}

func NewHypotheticalWriter(client *Client) *HypotheticalWriter {
	return &HypotheticalWriter{client: client}
}

func (h *HypotheticalWriter) WriteHypothetical(ctx context.Context, question string) (string, error) {
	return h.client.generateText(ctx, buildHypotheticalPrompt(question))
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.call(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func (c *Client) call(ctx context.Context, path string, payload, out any, operation string) error {
	request := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, payload, out, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama."+operation, request, classifyOllamaError)
	} else {
		err = request(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}
