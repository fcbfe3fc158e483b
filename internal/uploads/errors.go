package uploads

import (
	"errors"

	"rezum-backend/internal/extract"
)

var (
	ErrNotFound         = errors.New("file not found")
	ErrFileRequired     = errors.New("file is required")
	ErrFileTooLarge     = errors.New("file too large")
	ErrNotPDF           = extract.ErrNotPDF
	ErrExtractionFailed = errors.New("text extraction failed")
)
