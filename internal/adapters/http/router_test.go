package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
)

type ingestorFake struct {
	doc *domain.MedicalDocument
	err error
}

func (f *ingestorFake) Upload(_ context.Context, filename, mimeType string, _ io.Reader) (*domain.MedicalDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc := *f.doc
	doc.Filename = filename
	doc.MimeType = mimeType
	return &doc, nil
}

type readerFake struct {
	doc  *domain.MedicalDocument
	docs []domain.MedicalDocument
	err  error
}

func (f *readerFake) GetByID(context.Context, string) (*domain.MedicalDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func (f *readerFake) List(context.Context) ([]domain.MedicalDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

type removerFake struct {
	err     error
	deleted []string
}

func (f *removerFake) Delete(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, documentID)
	return nil
}

type trendServiceFake struct {
	trends []domain.LabTrend
	err    error
}

func (f *trendServiceFake) Trends(context.Context) ([]domain.LabTrend, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.trends, nil
}

type alertServiceFake struct {
	alerts       []domain.HealthAlert
	err          error
	lastInclude  bool
	dismissedIDs []string
}

func (f *alertServiceFake) List(_ context.Context, includeDismissed bool) ([]domain.HealthAlert, error) {
	f.lastInclude = includeDismissed
	if f.err != nil {
		return nil, f.err
	}
	return f.alerts, nil
}

func (f *alertServiceFake) Dismiss(_ context.Context, alertID string) error {
	if f.err != nil {
		return f.err
	}
	f.dismissedIDs = append(f.dismissedIDs, alertID)
	return nil
}

type routerFakes struct {
	ingest  *ingestorFake
	reader  *readerFake
	remover *removerFake
	trends  *trendServiceFake
	alerts  *alertServiceFake
}

func newTestRouter(f routerFakes) http.Handler {
	if f.ingest == nil {
		f.ingest = &ingestorFake{doc: &domain.MedicalDocument{ID: "doc-1"}}
	}
	if f.reader == nil {
		f.reader = &readerFake{doc: &domain.MedicalDocument{ID: "doc-1"}}
	}
	if f.remover == nil {
		f.remover = &removerFake{}
	}
	if f.trends == nil {
		f.trends = &trendServiceFake{}
	}
	if f.alerts == nil {
		f.alerts = &alertServiceFake{}
	}
	return NewRouter(f.ingest, f.reader, f.remover, f.trends, f.alerts, nil).Handler()
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(routerFakes{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-Id"); got == "" {
		t.Fatal("expected a generated request id header")
	}
}

func TestUploadDocumentAccepted(t *testing.T) {
	handler := newTestRouter(routerFakes{})
	body, contentType := multipartUpload(t, "file", "scan.jpg", "image-bytes")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var doc domain.MedicalDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if doc.ID != "doc-1" || doc.Filename != "scan.jpg" {
		t.Fatalf("document = %+v", doc)
	}
}

func TestUploadDocumentMissingFile(t *testing.T) {
	handler := newTestRouter(routerFakes{})
	body, contentType := multipartUpload(t, "attachment", "scan.jpg", "image-bytes")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	handler := newTestRouter(routerFakes{
		reader: &readerFake{err: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id=missing"))},
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	remover := &removerFake{}
	handler := newTestRouter(routerFakes{remover: remover})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/documents/doc-1", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(remover.deleted) != 1 || remover.deleted[0] != "doc-1" {
		t.Fatalf("deleted = %v", remover.deleted)
	}
}

func TestListTrends(t *testing.T) {
	trends := &trendServiceFake{trends: []domain.LabTrend{{
		TestName:      "LDL",
		CurrentStatus: domain.TrendWorsening,
		DataPoints: []domain.TrendPoint{
			{Date: "2026-01-15", Value: 145, Status: domain.ObsHigh},
			{Date: "2026-04-10", Value: 118, Status: domain.ObsHigh},
		},
	}}}
	handler := newTestRouter(routerFakes{trends: trends})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trends", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Trends []domain.LabTrend `json:"trends"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload.Trends) != 1 || payload.Trends[0].CurrentStatus != domain.TrendWorsening {
		t.Fatalf("trends = %+v", payload.Trends)
	}
	if payload.Trends[0].DataPoints[0].Value != 145 {
		t.Fatalf("data points = %+v", payload.Trends[0].DataPoints)
	}
}

func TestListAlertsIncludeDismissedQuery(t *testing.T) {
	alerts := &alertServiceFake{}
	handler := newTestRouter(routerFakes{alerts: alerts})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/alerts", nil))
	if rec.Code != http.StatusOK || alerts.lastInclude {
		t.Fatalf("status = %d, includeDismissed = %v", rec.Code, alerts.lastInclude)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/alerts?include_dismissed=true", nil))
	if rec.Code != http.StatusOK || !alerts.lastInclude {
		t.Fatalf("status = %d, includeDismissed = %v", rec.Code, alerts.lastInclude)
	}
}

func TestDismissAlert(t *testing.T) {
	alerts := &alertServiceFake{}
	handler := newTestRouter(routerFakes{alerts: alerts})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/alerts/a1/dismiss", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(alerts.dismissedIDs) != 1 || alerts.dismissedIDs[0] != "a1" {
		t.Fatalf("dismissed = %v", alerts.dismissedIDs)
	}
}

func TestDismissAlertBadPath(t *testing.T) {
	handler := newTestRouter(routerFakes{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/alerts/a1", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDismissAlertNotFound(t *testing.T) {
	handler := newTestRouter(routerFakes{
		alerts: &alertServiceFake{err: domain.WrapError(domain.ErrAlertNotFound, "dismiss alert", errors.New("id=a1"))},
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/alerts/a1/dismiss", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(routerFakes{})
	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPut, "/v1/documents"},
		{http.MethodPost, "/v1/trends"},
		{http.MethodDelete, "/v1/alerts"},
		{http.MethodGet, "/v1/alerts/a1/dismiss"},
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s status = %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestErrorBodyShape(t *testing.T) {
	handler := newTestRouter(routerFakes{
		reader: &readerFake{err: errors.New("boom")},
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/documents", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(payload["error"], "boom") {
		t.Fatalf("body = %v", payload)
	}
}
