package uploads

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"rezum-backend/internal/testutil"
)

func TestNewFileID(t *testing.T) {
	id := NewFileID("My Resume.pdf")
	if !strings.HasSuffix(id, "-My_Resume.pdf") {
		t.Fatalf("expected sanitized suffix, got %q", id)
	}
	if _, err := uuid.Parse(id[:36]); err != nil {
		t.Fatalf("expected uuid prefix, got %q", id)
	}
	if NewFileID("cv.pdf") == NewFileID("cv.pdf") {
		t.Fatalf("expected distinct ids for the same name")
	}
	if bare := NewFileID("../.."); len(bare) != 36 {
		t.Fatalf("expected bare uuid for unusable name, got %q", bare)
	}
}

func TestUploadRejectsAtLimit(t *testing.T) {
	svc := NewService(NewMemoryRepo(), 8)

	if _, err := svc.Upload(context.Background(), "a.pdf", "", make([]byte, 8)); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if _, err := svc.Upload(context.Background(), "a.pdf", "", make([]byte, 7)); err != nil {
		t.Fatalf("expected 7 bytes accepted, got %v", err)
	}
	if _, err := svc.Upload(context.Background(), "a.pdf", "", nil); !errors.Is(err, ErrFileRequired) {
		t.Fatalf("expected ErrFileRequired, got %v", err)
	}

	files, _ := svc.List(context.Background())
	if len(files) != 1 {
		t.Fatalf("expected 1 stored file, got %d", len(files))
	}
}

func TestUploadResolvesMimeType(t *testing.T) {
	svc := NewService(NewMemoryRepo(), 0)
	ctx := context.Background()

	f, err := svc.Upload(ctx, "cv.pdf", "application/octet-stream", testutil.PDF("hi"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if f.MimeType != "application/pdf" {
		t.Fatalf("expected sniffed application/pdf, got %q", f.MimeType)
	}

	f, err = svc.Upload(ctx, "cv.doc", "application/msword", []byte("not sniffed"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if f.MimeType != "application/msword" {
		t.Fatalf("expected declared type kept, got %q", f.MimeType)
	}
}

func TestExtractTextOutcomes(t *testing.T) {
	svc := NewService(NewMemoryRepo(), 0)
	ctx := context.Background()

	pdf, err := svc.Upload(ctx, "cv.pdf", "application/pdf", testutil.PDF("Distributed systems engineer"))
	if err != nil {
		t.Fatalf("upload pdf: %v", err)
	}
	text, err := svc.ExtractText(ctx, pdf.ID)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Distributed") {
		t.Fatalf("unexpected text %q", text)
	}

	plain, _ := svc.Upload(ctx, "notes.txt", "text/plain", []byte("plain notes"))
	if _, err := svc.ExtractText(ctx, plain.ID); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}

	broken, _ := svc.Upload(ctx, "broken.pdf", "application/pdf", []byte("%PDF-1.4\ngarbage"))
	if _, err := svc.ExtractText(ctx, broken.ID); !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}

	if _, err := svc.ExtractText(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTwice(t *testing.T) {
	svc := NewService(NewMemoryRepo(), 0)
	ctx := context.Background()
	f, err := svc.Upload(ctx, "cv.pdf", "", []byte("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.Delete(ctx, f.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(ctx, f.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
