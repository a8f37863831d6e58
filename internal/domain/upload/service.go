// internal/domain/upload/service.go
package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/optommarket/backend/internal/config"
)

// Service stores admin image uploads on the local disk
type Service struct {
	config     config.UploadConfig
	extensions map[string]bool
}

// NewService creates a new upload service
func NewService(cfg config.UploadConfig) *Service {
	ext := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, e := range cfg.AllowedExtensions {
		ext[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	return &Service{config: cfg, extensions: ext}
}

// Save validates and stores one uploaded file under a random name
func (s *Service) Save(header *multipart.FileHeader) (*File, error) {
	if header == nil {
		return nil, ErrNoFile
	}
	if header.Size > s.config.MaxSize {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if !s.extensions[ext] {
		return nil, ErrInvalidExtension
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(src, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := http.DetectContentType(sniff[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidExtension
	}

	if err := os.MkdirAll(s.config.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + "." + ext
	dst, err := os.Create(filepath.Join(s.config.LocalPath, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(sniff[:n]), src))
	if err != nil {
		os.Remove(dst.Name())
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &File{
		Name:         name,
		OriginalName: filepath.Base(header.Filename),
		URL:          strings.TrimRight(s.config.PublicURL, "/") + "/" + name,
		Size:         written,
		ContentType:  contentType,
	}, nil
}
