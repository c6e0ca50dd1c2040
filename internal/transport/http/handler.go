package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"billgraph/internal/dispatch"
	"billgraph/internal/ingest/models"
	"billgraph/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// BillReader is the read slice of the store the operator surface needs to
// report crawl progress.
type BillReader interface {
	GetBillByURL(ctx context.Context, url string) (*models.Bill, error)
	RelatedOf(ctx context.Context, billID uuid.UUID) ([]*models.Bill, error)
}

// Handler exposes the operator-facing ingestion endpoints. Ingestion is
// triggered by an operator action; failures surface via logs and task-failure
// records, not interactive responses.
type Handler struct {
	dispatcher dispatch.Dispatcher
	bills      BillReader
	log        *slog.Logger
}

func NewHandler(dispatcher dispatch.Dispatcher, bills BillReader, log *slog.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, bills: bills, log: log}
}

// Register mounts the handler's routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/ingest", h.handleIngest)
	r.Get("/v1/bills", h.handleBillStatus)
}

type ingestRequest struct {
	URL string `json:"url"`
}

type ingestResponse struct {
	TaskID string `json:"task_id"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !strings.HasPrefix(req.URL, "https://") && !strings.HasPrefix(req.URL, "http://") {
		writeError(w, http.StatusBadRequest, "url must be absolute")
		return
	}

	task := dispatch.NewAssembleBill(req.URL, 0, "")
	if err := h.dispatcher.Enqueue(r.Context(), task); err != nil {
		h.log.Error("failed to enqueue ingest task", "url", req.URL, "error", err)
		writeError(w, http.StatusServiceUnavailable, "could not enqueue task")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(ingestResponse{TaskID: task.ID.String()})
}

type billStatusResponse struct {
	URL          string     `json:"url"`
	Assembled    bool       `json:"assembled"`
	Type         string     `json:"type,omitempty"`
	Number       int        `json:"number,omitempty"`
	Title        string     `json:"title,omitempty"`
	Congress     int        `json:"congress,omitempty"`
	IntroducedAt *time.Time `json:"introduced_at,omitempty"`
	RelatedURLs  []string   `json:"related_urls"`
}

// handleBillStatus reports whether a bill has been assembled yet and which
// bills it is linked to. This is an operational progress probe, not a data
// API.
func (h *Handler) handleBillStatus(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url query parameter required")
		return
	}

	bill, err := h.bills.GetBillByURL(r.Context(), url)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bill not known")
			return
		}
		h.log.Error("bill status lookup failed", "url", url, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	related, err := h.bills.RelatedOf(r.Context(), bill.ID)
	if err != nil {
		h.log.Error("related lookup failed", "url", url, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	resp := billStatusResponse{
		URL:          bill.URL,
		Assembled:    bill.Assembled(),
		Type:         bill.Type,
		Number:       bill.Number,
		Title:        bill.Title,
		Congress:     bill.Congress,
		IntroducedAt: bill.IntroducedAt,
		RelatedURLs:  make([]string, 0, len(related)),
	}
	for _, r := range related {
		resp.RelatedURLs = append(resp.RelatedURLs, r.URL)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
