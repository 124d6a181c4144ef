// Package pdftext recovers embedded text from PDF uploads. The text is only a
// hint for the vision model; photographs and scanned PDFs without a text
// layer simply yield nothing.
package pdftext

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
	"github.com/mkravets/medrecords-ai/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// TextHint returns the document's embedded text layer, or "" when the upload
// is not a PDF or the text cannot be recovered. It never fails the pipeline.
func (e *Extractor) TextHint(ctx context.Context, doc *domain.MedicalDocument) string {
	if !isPDF(doc) {
		return ""
	}

	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		slog.Warn("pdf_hint_open_failed", "document_id", doc.ID, "error", err)
		return ""
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		slog.Warn("pdf_hint_read_failed", "document_id", doc.ID, "error", err)
		return ""
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		slog.Warn("pdf_hint_parse_failed", "document_id", doc.ID, "error", err)
		return ""
	}

	textReader, err := pdfReader.GetPlainText()
	if err != nil {
		slog.Warn("pdf_hint_text_failed", "document_id", doc.ID, "error", err)
		return ""
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		slog.Warn("pdf_hint_text_failed", "document_id", doc.ID, "error", err)
		return ""
	}
	return strings.TrimSpace(buf.String())
}

func isPDF(doc *domain.MedicalDocument) bool {
	if doc.MimeType == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(doc.Filename), ".pdf")
}
