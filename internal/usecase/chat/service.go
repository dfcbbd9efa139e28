// Package chat orchestrates the retrieval-augmented answer pipeline:
// classify, retrieve, assemble context, generate.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/mostachar-ma/mostachar/internal/domain"
)

// Result is the synchronous answer payload.
type Result struct {
	Response string
	Sources  []domain.Source
}

// Sink receives pipeline output events. The streaming transport forwards
// them to the client; the synchronous path collects them into a Result.
type Sink interface {
	// Sources is called exactly once, before any content.
	Sources(sources []domain.Source) error
	// Content is called once per non-empty generated fragment, in order.
	Content(fragment string) error
}

// Service is the RAG orchestrator.
type Service struct {
	embedder  Embedder
	retriever Retriever
	model     ChatModel
	topK      int
	logger    *zap.Logger
}

// New creates a chat service.
func New(embedder Embedder, retriever Retriever, model ChatModel, topK int, logger *zap.Logger) *Service {
	return &Service{
		embedder:  embedder,
		retriever: retriever,
		model:     model,
		topK:      topK,
		logger:    logger,
	}
}

// prepare runs the shared front half of the pipeline: validate, classify,
// retrieve, assemble. Both entry points go through it so their sources and
// prompts can never drift apart.
func (s *Service) prepare(ctx context.Context, query string) ([]domain.Source, []domain.Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil, fmt.Errorf("empty query: %w", domain.ErrInvalidRequest)
	}

	var results []domain.RankedResult
	if isGreeting(query) {
		s.logger.Debug("greeting detected, skipping retrieval")
	} else {
		emb, err := s.embedder.Embed(ctx, query)
		if err != nil {
			return nil, nil, fmt.Errorf("embed query: %w", err)
		}
		results = s.retriever.Search(ctx, emb.Embedding, s.topK)
	}

	// Non-nil so the sources payload serializes as [] rather than null.
	sources := make([]domain.Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, domain.SourceOf(r))
	}

	return sources, buildPrompt(buildContext(results), query), nil
}

// Answer runs the full pipeline and returns the complete generated text
// with its sources.
func (s *Service) Answer(ctx context.Context, query string) (Result, error) {
	sources, messages, err := s.prepare(ctx, query)
	if err != nil {
		return Result{}, err
	}

	text, err := s.model.Complete(ctx, messages)
	if err != nil {
		return Result{}, fmt.Errorf("generate answer: %w", err)
	}

	return Result{Response: text, Sources: sources}, nil
}

// AnswerStream runs the pipeline and emits events into sink: the sources
// first, then each non-empty generated fragment in order. It returns when
// generation completes, the remote stream fails, or the sink rejects an
// event (client gone), in which case the remote stream is closed without
// consuming further tokens.
func (s *Service) AnswerStream(ctx context.Context, query string, sink Sink) error {
	sources, messages, err := s.prepare(ctx, query)
	if err != nil {
		return err
	}

	if err := sink.Sources(sources); err != nil {
		return fmt.Errorf("emit sources: %w", err)
	}

	stream, err := s.model.Stream(ctx, messages)
	if err != nil {
		return fmt.Errorf("start generation: %w", err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			s.logger.Warn("close generation stream", zap.Error(cerr))
		}
	}()

	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("generation stream: %w", err)
		}
		if fragment == "" {
			continue
		}
		if err := sink.Content(fragment); err != nil {
			return fmt.Errorf("emit content: %w", err)
		}
	}
}
