package chi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mostachar-ma/mostachar/internal/domain"
	chatuc "github.com/mostachar-ma/mostachar/internal/usecase/chat"
	healthuc "github.com/mostachar-ma/mostachar/internal/usecase/health"
)

// --- Mocks ---

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

type mockRetriever struct {
	results []domain.RankedResult
}

func (m *mockRetriever) Search(context.Context, []float32, int) []domain.RankedResult {
	return m.results
}

type mockStream struct {
	fragments []string
	pos       int
}

func (m *mockStream) Recv() (string, error) {
	if m.pos >= len(m.fragments) {
		return "", io.EOF
	}
	f := m.fragments[m.pos]
	m.pos++
	return f, nil
}

func (m *mockStream) Close() error { return nil }

type mockModel struct {
	answer    string
	fragments []string
	err       error
}

func (m *mockModel) Complete(context.Context, []domain.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockModel) Stream(context.Context, []domain.Message) (domain.ChatStream, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &mockStream{fragments: m.fragments}, nil
}

type mockCounter struct {
	count int
	err   error
}

func (m *mockCounter) Count(context.Context) (int, error) {
	return m.count, m.err
}

func newTestServer(embedder *mockEmbedder, retriever *mockRetriever, model *mockModel, counter *mockCounter) *Server {
	logger := zap.NewNop()
	chat := chatuc.New(embedder, retriever, model, 5, logger)
	health := healthuc.New(counter)
	return NewServer(chat, health, logger)
}

func postChat(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// --- Tests ---

func TestChat_StreamsSourcesFirst(t *testing.T) {
	srv := newTestServer(
		&mockEmbedder{},
		&mockRetriever{results: []domain.RankedResult{
			{Domain: "Code pénal", Reference: "Article 505", Content: "...", Score: 0.91},
		}},
		&mockModel{fragments: []string{"عقوبة ", "", "السرقة"}},
		&mockCounter{},
	)

	rec := postChat(t, srv.Chat, `{"message":"ما هي عقوبة السرقة"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/x-ndjson") {
		t.Errorf("unexpected content type %q", ct)
	}

	var events []streamEvent
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		var ev streamEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("malformed NDJSON line %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}

	if len(events) != 3 {
		t.Fatalf("expected sources + 2 content events, got %d: %+v", len(events), events)
	}
	if events[0].Type != "sources" {
		t.Errorf("first event must be sources, got %q", events[0].Type)
	}
	for _, ev := range events[1:] {
		if ev.Type != "content" {
			t.Errorf("expected content event, got %q", ev.Type)
		}
		if ev.Data == "" {
			t.Error("empty fragment leaked into the stream")
		}
	}
}

func TestChat_GreetingEmitsEmptySourcesArray(t *testing.T) {
	srv := newTestServer(&mockEmbedder{}, &mockRetriever{}, &mockModel{fragments: []string{"مرحبا!"}}, &mockCounter{})

	rec := postChat(t, srv.Chat, `{"message":"salam"}`)

	firstLine, _, _ := strings.Cut(rec.Body.String(), "\n")
	if !strings.Contains(firstLine, `"data":[]`) {
		t.Errorf("expected empty sources array, got %q", firstLine)
	}
}

func TestChat_EmptyMessageRejected(t *testing.T) {
	srv := newTestServer(&mockEmbedder{}, &mockRetriever{}, &mockModel{}, &mockCounter{})

	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`} {
		rec := postChat(t, srv.Chat, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestChat_MalformedBodyRejected(t *testing.T) {
	srv := newTestServer(&mockEmbedder{}, &mockRetriever{}, &mockModel{}, &mockCounter{})

	rec := postChat(t, srv.Chat, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestChat_EmbeddingFailureIsBadGatewayWithLocalizedMessage(t *testing.T) {
	srv := newTestServer(
		&mockEmbedder{err: domain.ErrEmbeddingProvider},
		&mockRetriever{},
		&mockModel{},
		&mockCounter{},
	)

	rec := postChat(t, srv.Chat, `{"message":"ما هي عقوبة السرقة"}`)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != userFacingFailure {
		t.Errorf("expected localized failure message, got %q", resp.Error)
	}
}

func TestChatSync_ReturnsAnswerWithSources(t *testing.T) {
	srv := newTestServer(
		&mockEmbedder{},
		&mockRetriever{results: []domain.RankedResult{
			{Domain: "Code pénal", Reference: "Article 505", Content: "...", Score: 0.91},
		}},
		&mockModel{answer: "عقوبة السرقة هي الحبس."},
		&mockCounter{},
	)

	rec := postChat(t, srv.ChatSync, `{"message":"ما هي عقوبة السرقة"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Response != "عقوبة السرقة هي الحبس." {
		t.Errorf("unexpected response: %q", resp.Response)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Reference != "Article 505" {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}
	if resp.Sources[0].Score != 0.91 {
		t.Errorf("expected score carried through, got %v", resp.Sources[0].Score)
	}
}

func TestChatSync_GenerationFailureIsBadGateway(t *testing.T) {
	srv := newTestServer(
		&mockEmbedder{},
		&mockRetriever{},
		&mockModel{err: domain.ErrGenerationProvider},
		&mockCounter{},
	)

	rec := postChat(t, srv.ChatSync, `{"message":"ما هي عقوبة السرقة"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&mockEmbedder{}, &mockRetriever{}, &mockModel{}, &mockCounter{count: 12})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
	if resp.DocumentsCount == nil || *resp.DocumentsCount != 12 {
		t.Errorf("unexpected documents count: %v", resp.DocumentsCount)
	}
}

func TestHealth_BackendFailureStillHealthy(t *testing.T) {
	srv := newTestServer(&mockEmbedder{}, &mockRetriever{}, &mockModel{}, &mockCounter{err: errors.New("down")})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Health(rec, req)

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.DocumentsCount != nil {
		t.Errorf("unexpected health payload: %+v", resp)
	}
}

func TestStats(t *testing.T) {
	srv := newTestServer(&mockEmbedder{}, &mockRetriever{}, &mockModel{}, &mockCounter{count: 7})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	srv.Stats(rec, req)

	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalDocuments != 7 || resp.Status != "ok" {
		t.Errorf("unexpected stats: %+v", resp)
	}
}
