// Package chi exposes the mostachar pipeline over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mostachar-ma/mostachar/internal/domain"
	chatuc "github.com/mostachar-ma/mostachar/internal/usecase/chat"
	healthuc "github.com/mostachar-ma/mostachar/internal/usecase/health"
)

// userFacingFailure is the localized, non-technical message returned for
// remote model failures. Internal detail goes to the logs only.
const userFacingFailure = "حدث خطأ أثناء معالجة سؤالك. يرجى المحاولة مرة أخرى."

// Server holds the HTTP handlers for the chat API.
type Server struct {
	chat   *chatuc.Service
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(chat *chatuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{chat: chat, health: health, logger: logger}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string          `json:"response"`
	Sources  []domain.Source `json:"sources"`
}

type healthResponse struct {
	Status         string `json:"status"`
	DocumentsCount *int   `json:"documents_count"`
}

type statsResponse struct {
	TotalDocuments int    `json:"total_documents"`
	Status         string `json:"status"`
	Detail         string `json:"detail,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// streamEvent is one NDJSON line of the streaming chat response.
type streamEvent struct {
	Type string `json:"type"` // "sources" | "content"
	Data any    `json:"data"`
}

// Chat handles POST /api/chat: the streaming entry point. The response is
// newline-delimited JSON, one event per line: a single sources event
// first, then content fragments as the model produces them.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	message, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}

	sink := newNDJSONSink(w)
	w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	if err := s.chat.AnswerStream(r.Context(), message, sink); err != nil {
		if !sink.wrote {
			s.handlePipelineError(w, err)
			return
		}
		// Events already reached the client; the stream just ends without a
		// completion marker and the client must treat it as inconclusive.
		s.logger.Error("chat stream aborted", zap.Error(err))
	}
}

// ChatSync handles POST /api/chat/sync: the full-answer entry point.
func (s *Server) ChatSync(w http.ResponseWriter, r *http.Request) {
	message, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}

	result, err := s.chat.Answer(r.Context(), message)
	if err != nil {
		s.handlePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response: result.Response,
		Sources:  result.Sources,
	})
}

// Health handles GET /api/health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         report.Status,
		DocumentsCount: report.DocumentsCount,
	})
}

// Stats handles GET /api/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	stats := s.health.CorpusStats(r.Context())
	writeJSON(w, http.StatusOK, statsResponse{
		TotalDocuments: stats.TotalDocuments,
		Status:         stats.Status,
		Detail:         stats.Detail,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeMessage parses and validates the chat request body. An empty
// message is rejected before any pipeline work.
func (s *Server) decodeMessage(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return "", false
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message cannot be empty"})
		return "", false
	}
	return req.Message, true
}

// handlePipelineError maps pipeline failures to HTTP statuses. Remote
// provider failures surface as a localized generic message; the underlying
// cause is logged, not exposed.
func (s *Server) handlePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message cannot be empty"})
	case errors.Is(err, domain.ErrEmbeddingProvider), errors.Is(err, domain.ErrGenerationProvider):
		s.logger.Error("remote provider failure", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: userFacingFailure})
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: userFacingFailure})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ndjsonSink writes pipeline events as NDJSON lines, flushing after each
// one so fragments reach the client as they are generated.
type ndjsonSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	wrote   bool
}

func newNDJSONSink(w http.ResponseWriter) *ndjsonSink {
	flusher, _ := w.(http.Flusher)
	return &ndjsonSink{w: w, flusher: flusher}
}

func (s *ndjsonSink) Sources(sources []domain.Source) error {
	return s.emit(streamEvent{Type: "sources", Data: sources})
}

func (s *ndjsonSink) Content(fragment string) error {
	return s.emit(streamEvent{Type: "content", Data: fragment})
}

func (s *ndjsonSink) emit(ev streamEvent) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(append(line, '\n')); err != nil {
		return err
	}
	s.wrote = true
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}
