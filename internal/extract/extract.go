package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// MimePDF is the canonical PDF content type.
const MimePDF = "application/pdf"

var (
	// ErrNotPDF is returned when the payload does not sniff as a PDF.
	ErrNotPDF = errors.New("not a pdf")
	// ErrUnreadable is returned when the PDF library cannot parse the payload.
	ErrUnreadable = errors.New("pdf unreadable")
)

// Detect sniffs the content type of data. Unknown payloads report application/octet-stream.
func Detect(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsPDF reports whether data carries a PDF signature.
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is(MimePDF)
}

// Text extracts the plain text of a PDF, pages joined by a newline.
func Text(ctx context.Context, data []byte) (string, error) {
	pages, err := PDFPages(ctx, data)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n"), nil
}

// PDFPages returns the plain text of each page in order. Parser panics on
// malformed input are reported as ErrUnreadable.
func PDFPages(ctx context.Context, data []byte) (pages []string, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !IsPDF(data) {
		return nil, ErrNotPDF
	}

	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("%w: panic: %v", ErrUnreadable, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnreadable, i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
