package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
)

type queueFake struct {
	publishErr error
	published  []string
}

func (f *queueFake) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadSuccess(t *testing.T) {
	repo := &documentRepoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "lab report.jpg", "image/jpeg", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" || doc.Status != domain.StatusUploaded {
		t.Fatalf("document = %+v", doc)
	}
	if doc.Filename != "lab report.jpg" || doc.MimeType != "image/jpeg" {
		t.Fatalf("metadata = %+v", doc)
	}
	if len(storage.savedKeys) != 1 || storage.savedKeys[0] != doc.ID+"_lab_report.jpg" {
		t.Fatalf("storage keys = %v", storage.savedKeys)
	}
	if len(repo.created) != 1 || repo.created[0].ID != doc.ID {
		t.Fatalf("created docs = %+v", repo.created)
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("published events = %v", queue.published)
	}
	if doc.LabResults == nil || doc.Medications == nil || doc.Diagnoses == nil || doc.Recommendations == nil {
		t.Fatal("collections must start empty, not nil")
	}
}

func TestUploadStorageError(t *testing.T) {
	repo := &documentRepoFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, &storageFake{saveErr: errors.New("disk full")}, queue)

	if _, err := uc.Upload(context.Background(), "scan.jpg", "image/jpeg", strings.NewReader("x")); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.created) != 0 || len(queue.published) != 0 {
		t.Fatal("failed save must not create metadata or publish")
	}
}

func TestUploadPublishError(t *testing.T) {
	uc := NewIngestDocumentUseCase(&documentRepoFake{}, &storageFake{}, &queueFake{publishErr: errors.New("nats down")})
	if _, err := uc.Upload(context.Background(), "scan.jpg", "image/jpeg", strings.NewReader("x")); err == nil {
		t.Fatal("expected error")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"lab report.jpg", "lab_report.jpg"},
		{"../../etc/passwd", "passwd"},
		{"résumé.pdf", "r_sum_.pdf"},
		{"", "document.bin"},
		{"plain-name_1.png", "plain-name_1.png"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
