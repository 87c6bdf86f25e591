package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"todoTracker/internal/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sniffLen matches the number of bytes mimetype inspects by default.
const sniffLen = 3072

type UploadResult struct {
	URL    string
	Key    string
	Status int
}

type UploadService struct {
	store     ObjectStore
	container string
	newKey    func(filename string) string
}

func NewUploadService(store ObjectStore, container string) *UploadService {
	return &UploadService{
		store:     store,
		container: container,
		newKey:    ObjectKey,
	}
}

// ObjectKey returns a random key that keeps the original file extension.
// Dotfiles such as ".env" have no extension.
func ObjectKey(filename string) string {
	ext := filepath.Ext(filename)
	if ext == filepath.Base(filename) {
		ext = ""
	}
	return uuid.New().String() + ext
}

func (s *UploadService) Store(ctx context.Context, body io.Reader, filename string) (*UploadResult, error) {
	if body == nil {
		return nil, NewValidationError("file", "No file part")
	}
	if strings.TrimSpace(filename) == "" {
		return nil, NewValidationError("file", "No selected file")
	}

	key := s.newKey(filename)
	reader, contentType := detectContentType(body, filename)

	logger.Debug("Service: uploading file",
		zap.String("container", s.container),
		zap.String("key", key),
		zap.String("content_type", contentType))

	if err := s.store.Put(ctx, s.container, key, reader, contentType); err != nil {
		logger.Error("Service: upload failed", err,
			zap.String("container", s.container),
			zap.String("filename", filename))
		return nil, NewStorageError(s.container, filename, err)
	}

	url := s.store.URL(s.container, key)
	logger.Info("Service: file uploaded", zap.String("key", key), zap.String("url", url))

	return &UploadResult{
		URL:    url,
		Key:    key,
		Status: http.StatusCreated,
	}, nil
}

// detectContentType peeks at the head of body without consuming it.
func detectContentType(body io.Reader, filename string) (io.Reader, string) {
	br := bufio.NewReaderSize(body, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return br, byExtension(filename)
	}
	if len(head) == 0 {
		return br, byExtension(filename)
	}

	mt := mimetype.Detect(head)
	if mt.Is("application/octet-stream") || mt.Is("text/plain") {
		if ext := byExtension(filename); ext != "application/octet-stream" {
			return br, ext
		}
	}
	return br, mt.String()
}

func byExtension(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
