package controllers

import (
	"context"
	"errors"
	"io"
	"strings"

	"ordermind/ordermind/services/rag"
	"ordermind/ordermind/sources/storage"
)

var ErrMissingRAGFields = errors.New("query and index are required")
var ErrMissingVectorizeFields = errors.New("filePath and index are required")

type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

type RAGController struct {
	rag     *rag.Service
	storage Uploader
}

func NewRAGController(svc *rag.Service, storage Uploader) *RAGController {
	return &RAGController{rag: svc, storage: storage}
}

// Upload stores the file under uploads/ and returns its key.
func (c *RAGController) Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key, err := storage.UploadKey(filename)
	if err != nil {
		return "", err
	}
	if err := c.storage.Upload(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

func (c *RAGController) Vectorize(ctx context.Context, filePath, index string) (int, error) {
	if strings.TrimSpace(filePath) == "" || strings.TrimSpace(index) == "" {
		return 0, ErrMissingVectorizeFields
	}
	return c.rag.Vectorize(ctx, filePath, index)
}

func (c *RAGController) Query(ctx context.Context, query, index string) (string, error) {
	if strings.TrimSpace(query) == "" || strings.TrimSpace(index) == "" {
		return "", ErrMissingRAGFields
	}
	return c.rag.Query(ctx, query, index)
}
