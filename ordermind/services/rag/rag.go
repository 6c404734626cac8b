// Package rag stores document chunks as embeddings and answers questions
// from the closest chunks.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ordermind/ordermind/sources/psql/dao"
	"ordermind/ordermind/sources/psql/models"
	"ordermind/ordermind/sources/storage"
	"ordermind/ordermind/utils/document"
	"ordermind/ordermind/utils/logging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTopK = 3
	embedBatch  = 64
	embedLimit  = 4
)

var ErrEmptyDocument = errors.New("document has no text")

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

type Completer interface {
	Complete(ctx context.Context, prompt, system string) (string, error)
}

type VectorStore interface {
	Upsert(ctx context.Context, records []models.VectorRecord) error
	Query(ctx context.Context, indexName string, vector []float64, topK int) ([]dao.VectorMatch, error)
}

type ObjectStore interface {
	Get(ctx context.Context, key string) (*storage.Object, error)
}

type Service struct {
	embedder  Embedder
	completer Completer
	vectors   VectorStore
	objects   ObjectStore
	system    string
	topK      int
}

func NewService(embedder Embedder, completer Completer, vectors VectorStore, objects ObjectStore, system string, topK int) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{
		embedder:  embedder,
		completer: completer,
		vectors:   vectors,
		objects:   objects,
		system:    system,
		topK:      topK,
	}
}

// Vectorize parses the stored object at key, embeds every paragraph and
// upserts them into index as vector-0 .. vector-n. It returns the number of
// chunks stored.
func (s *Service) Vectorize(ctx context.Context, key, index string) (int, error) {
	defer logging.LogDuration(ctx, "rag_vectorize")()

	obj, err := s.objects.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	chunks, err := document.Parse(obj.Key, obj.ContentType, obj.Data)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if len(chunks) == 0 {
		return 0, ErrEmptyDocument
	}

	vectors, err := s.embedAll(ctx, chunks)
	if err != nil {
		return 0, err
	}
	records := make([]models.VectorRecord, len(chunks))
	for i, text := range chunks {
		records[i] = models.VectorRecord{
			ID:        fmt.Sprintf("vector-%d", i),
			IndexName: index,
			Values:    vectors[i],
			Text:      text,
		}
	}
	if err := s.vectors.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("upsert vectors: %w", err)
	}
	logging.AppLogger.Info("document vectorized",
		zap.String("key", key),
		zap.String("index", index),
		zap.Int("chunks", len(records)),
	)
	return len(records), nil
}

// embedAll embeds chunks in batches, a few batches at a time, keeping order.
func (s *Service) embedAll(ctx context.Context, chunks []string) ([][]float64, error) {
	out := make([][]float64, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedLimit)
	for start := 0; start < len(chunks); start += embedBatch {
		end := min(start+embedBatch, len(chunks))
		g.Go(func() error {
			vecs, err := s.embedder.Embed(gctx, chunks[start:end])
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
			}
			if len(vecs) != end-start {
				return fmt.Errorf("embed chunks %d-%d: got %d vectors", start, end-1, len(vecs))
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Query answers query from the topK closest chunks of index.
func (s *Service) Query(ctx context.Context, query, index string) (string, error) {
	defer logging.LogDuration(ctx, "rag_query")()

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return "", fmt.Errorf("embed query: got %d vectors", len(vecs))
	}
	matches, err := s.vectors.Query(ctx, index, vecs[0], s.topK)
	if err != nil {
		return "", fmt.Errorf("query index %s: %w", index, err)
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Record.Text)
	}
	logging.AppLogger.Info("rag context", zap.String("index", index), zap.Int("matches", len(matches)))
	return s.completer.Complete(ctx, buildPrompt(strings.Join(texts, " "), query), s.system)
}

func buildPrompt(contextText, query string) string {
	return fmt.Sprintf("Based on the following context: %s, provide a detailed response to the user's query: %s", contextText, query)
}
