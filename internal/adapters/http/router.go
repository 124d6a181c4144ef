package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mkravets/medrecords-ai/internal/core/ports"
	"github.com/mkravets/medrecords-ai/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	ingest  ports.DocumentIngestor
	reader  ports.DocumentReader
	remover ports.DocumentRemover
	trends  ports.TrendService
	alerts  ports.AlertService
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	ingest ports.DocumentIngestor,
	reader ports.DocumentReader,
	remover ports.DocumentRemover,
	trends ports.TrendService,
	alerts ports.AlertService,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		ingest:  ingest,
		reader:  reader,
		remover: remover,
		trends:  trends,
		alerts:  alerts,
		metrics: serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.documents)
	mux.HandleFunc("/v1/documents/", rt.documentByID)
	mux.HandleFunc("/v1/trends", rt.listTrends)
	mux.HandleFunc("/v1/alerts", rt.listAlerts)
	mux.HandleFunc("/v1/alerts/", rt.dismissAlert)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocument(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.reader.List(r.Context())
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "document id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := rt.reader.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := rt.remover.Delete(r.Context(), id); err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (rt *Router) listTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	trends, err := rt.trends.Trends(r.Context())
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordTrendCompute(serviceName, len(trends), time.Since(start))
	}
	writeJSON(w, http.StatusOK, map[string]any{"trends": trends})
}

func (rt *Router) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	includeDismissed := r.URL.Query().Get("include_dismissed") == "true"
	alerts, err := rt.alerts.List(r.Context(), includeDismissed)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (rt *Router) dismissAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/alerts/")
	id, ok := strings.CutSuffix(rest, "/dismiss")
	if !ok || id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := rt.alerts.Dismiss(r.Context(), id); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
