package uploads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rezum-backend/internal/extract"
	"rezum-backend/internal/shared/metrics"
	"rezum-backend/internal/shared/telemetry"
	"rezum-backend/internal/shared/util"
)

// DefaultMaxBytes is the upload ceiling used when none is configured.
const DefaultMaxBytes int64 = 10 << 20

// Service contains business logic for uploaded files.
type Service struct {
	Repo     Repo
	MaxBytes int64
	Now      func() time.Time
}

// NewService constructs a Service backed by repo.
func NewService(repo Repo, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{Repo: repo, MaxBytes: maxBytes, Now: time.Now}
}

// NewFileID returns a collision resistant identifier that keeps a readable
// form of the original file name.
func NewFileID(name string) string {
	id := uuid.NewString()
	if clean, err := util.SanitizeFileName(name); err == nil {
		return id + "-" + clean
	}
	return id
}

// Upload validates and stores a file. Files at or above MaxBytes are rejected.
func (s *Service) Upload(ctx context.Context, name, declaredType string, data []byte) (File, error) {
	if data == nil {
		metrics.IncUploadRejected("missing")
		return File{}, ErrFileRequired
	}
	if int64(len(data)) >= s.MaxBytes {
		metrics.IncUploadRejected("too_large")
		return File{}, ErrFileTooLarge
	}

	f := File{
		ID:        NewFileID(name),
		Name:      name,
		MimeType:  resolveMimeType(declaredType, data),
		Data:      data,
		CreatedAt: s.now(),
	}
	if err := s.Repo.Put(ctx, f); err != nil {
		return File{}, fmt.Errorf("store %s: %w", f.ID, err)
	}

	metrics.IncUpload()
	metrics.AddFilesStored(1)
	telemetry.Info("upload.stored", map[string]any{
		"file_id":  f.ID,
		"size":     f.Size(),
		"mimetype": f.MimeType,
	})
	return f, nil
}

// Get returns the stored file with id.
func (s *Service) Get(ctx context.Context, id string) (File, error) {
	return s.Repo.Get(ctx, id)
}

// List returns all stored files in upload order.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	return s.Repo.List(ctx)
}

// Delete removes the file with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.AddFilesStored(-1)
	telemetry.Info("upload.deleted", map[string]any{"file_id": id})
	return nil
}

// ExtractText returns the plain text of the stored PDF with id. A readable
// PDF without a text layer yields an empty string and no error.
func (s *Service) ExtractText(ctx context.Context, id string) (string, error) {
	f, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.IncExtraction("not_found")
		}
		return "", err
	}

	text, err := extract.Text(ctx, f.Data)
	switch {
	case err == nil:
		metrics.IncExtraction("ok")
		return text, nil
	case errors.Is(err, extract.ErrNotPDF):
		metrics.IncExtraction("not_pdf")
		return "", fmt.Errorf("extract %s: %w", id, ErrNotPDF)
	case errors.Is(err, extract.ErrUnreadable):
		metrics.IncExtraction("failed")
		telemetry.Warn("extract.failed", map[string]any{"file_id": id, "err": err})
		return "", fmt.Errorf("extract %s: %w: %v", id, ErrExtractionFailed, err)
	default:
		return "", fmt.Errorf("extract %s: %w", id, err)
	}
}

// SyncMetrics sets the stored-files gauge from the repo contents.
func (s *Service) SyncMetrics(ctx context.Context) error {
	files, err := s.Repo.List(ctx)
	if err != nil {
		return err
	}
	metrics.SetFilesStored(float64(len(files)))
	return nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func resolveMimeType(declared string, data []byte) string {
	clean := strings.TrimSpace(declared)
	if clean == "" || strings.EqualFold(clean, "application/octet-stream") {
		return extract.Detect(data)
	}
	return clean
}
