//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-labs/inkwell/internal/api/handlers"
	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/extract"
	"github.com/inkwell-labs/inkwell/internal/jobs"
	"github.com/inkwell-labs/inkwell/internal/llm"
	"github.com/inkwell-labs/inkwell/internal/repository"
	"github.com/inkwell-labs/inkwell/internal/server"
	"github.com/inkwell-labs/inkwell/internal/service"
	"github.com/inkwell-labs/inkwell/internal/testutil"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	Worker       *jobs.Worker
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a pgvector container,
// the real service stack, and deterministic in-process LLM fakes.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser, worker := startServer(t, ctx, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		Worker:       worker,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Worker != nil {
		e.Worker.Stop()
	}
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request as the given user
func (e *E2ETestEnv) Get(path, userID string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil, userID)
}

// Post performs a POST request as the given user
func (e *E2ETestEnv) Post(path string, body interface{}, userID string) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body, userID)
}

// Patch performs a PATCH request as the given user
func (e *E2ETestEnv) Patch(path string, body interface{}, userID string) (*APIResponse, error) {
	return e.doRequest(http.MethodPatch, path, body, userID)
}

// Delete performs a DELETE request as the given user
func (e *E2ETestEnv) Delete(path, userID string) (*APIResponse, error) {
	return e.doRequest(http.MethodDelete, path, nil, userID)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, userID string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		return &APIResponse{}, nil
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// UploadDocument uploads a file into a notebook via the multipart endpoint
func (e *E2ETestEnv) UploadDocument(notebookID, userID, filename string, content []byte) (*handlers.DocumentResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, e.ServerURL+"/notebooks/"+notebookID+"/documents", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-User-ID", userID)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	var doc handlers.DocumentResponse
	if err := json.Unmarshal(apiResp.Data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateNotebook creates a notebook and fails the test on error
func (e *E2ETestEnv) CreateNotebook(userID, title string) *handlers.NotebookResponse {
	resp, err := e.Post("/notebooks", map[string]string{"title": title}, userID)
	if err != nil {
		e.T.Fatalf("failed to create notebook: %v", err)
	}
	var nb handlers.NotebookResponse
	if err := json.Unmarshal(resp.Data, &nb); err != nil {
		e.T.Fatalf("failed to parse notebook response: %v", err)
	}
	return &nb
}

// WaitForIngestion blocks until the background worker has embedded the
// document, or fails the test on job failure or timeout.
func (e *E2ETestEnv) WaitForIngestion(documentID string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var status string
		err := e.Pool.QueryRow(e.Ctx,
			"SELECT status FROM ingestion_jobs WHERE document_id = $1", documentID).Scan(&status)
		if err == nil {
			switch domain.IngestionJobStatus(status) {
			case domain.IngestionJobStatusCompleted:
				return
			case domain.IngestionJobStatusFailed:
				e.T.Fatalf("ingestion failed for document %s", documentID)
			}
		}

		time.Sleep(100 * time.Millisecond)
	}
	e.T.Fatalf("ingestion did not complete within %v", timeout)
}

// hashEmbedder is a deterministic bag-of-words embedder. Texts that share
// words get similar vectors, which is enough for retrieval assertions
// without a real provider.
type hashEmbedder struct{}

func (hashEmbedder) ModelName() string { return "e2e-hash-embedder" }

func (hashEmbedder) Embed(ctx context.Context, text string, task llm.TaskType) ([]float32, error) {
	vec := make([]float32, domain.EmbeddingDimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(word, ".,:;!?")))
		vec[h.Sum32()%uint32(domain.EmbeddingDimensions)]++
	}
	return llm.Normalize(vec), nil
}

func (e hashEmbedder) EmbedBatch(ctx context.Context, texts []string, task llm.TaskType) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text, task)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// cannedGenerator answers with a fixed grounded or ungrounded response
// depending on whether the prompt carries retrieved context.
type cannedGenerator struct{}

func (cannedGenerator) ModelName() string { return "e2e-canned-generator" }

func (cannedGenerator) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
	text := "I could not find anything about that in this notebook."
	if strings.Contains(req.Prompt, "CONTEXT:") {
		text = "Based on the notebook sources, the uploaded material answers the question directly."
	}
	return &llm.GenerateResult{
		Text:         text,
		Model:        "e2e-canned-generator",
		PromptTokens: len(req.Prompt) / 4,
		OutputTokens: len(text) / 4,
	}, nil
}

// startServer wires the full service stack over the test pool and serves it
// on the given port. The retrieval threshold is lowered because the hash
// embedder produces weaker similarities than a real model.
func startServer(t *testing.T, ctx context.Context, pool *pgxpool.Pool, port int) (string, func(), *jobs.Worker) {
	notebookRepo := repository.NewNotebookRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	embeddingRepo := repository.NewEmbeddingRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	jobRepo := repository.NewIngestionJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	embedder := hashEmbedder{}
	generator := cannedGenerator{}

	ingestionSvc := service.NewIngestionService(embedder, embeddingRepo, service.DefaultChunkConfig(), 2)
	retriever := service.NewRetrieverService(embedder, embeddingRepo, service.RetrieverConfig{
		Threshold: 0.1,
		TopK:      5,
	})
	assembler := service.NewContextAssembler(6000)
	answerSvc := service.NewAnswerService(
		notebookRepo, documentRepo, chatRepo,
		retriever, assembler, generator,
		service.DefaultGenerationParams(),
	)

	notebookSvc := service.NewNotebookService(notebookRepo)
	documentSvc := service.NewDocumentService(notebookRepo, documentRepo, txRunner, extract.NewExtractor())
	chatSvc := service.NewChatService(notebookRepo, chatRepo)
	noteSvc := service.NewNoteService(notebookRepo, noteRepo, chatRepo, service.DefaultNoteMaxChars)
	searchSvc := service.NewSearchService(notebookRepo, documentRepo, retriever)

	ingestProcessor := jobs.NewIngestWorker(jobRepo, documentRepo, ingestionSvc)
	worker := jobs.NewWorker(ingestProcessor, 100*time.Millisecond)
	go worker.Start(ctx)

	router := server.NewRouter(server.RouterConfig{
		NotebookHandler: handlers.NewNotebookHandler(notebookSvc),
		DocumentHandler: handlers.NewDocumentHandler(documentSvc),
		ChatHandler:     handlers.NewChatHandler(answerSvc, chatSvc),
		NoteHandler:     handlers.NewNoteHandler(noteSvc),
		SearchHandler:   handlers.NewSearchHandler(searchSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}, worker
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
