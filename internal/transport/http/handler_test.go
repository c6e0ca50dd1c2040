package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billgraph/internal/dispatch"
	"billgraph/internal/ingest/store"
)

const billURL = "https://www.govinfo.gov/bulkdata/BILLSTATUS/119/s/BILLSTATUS-119s115.xml"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (http.Handler, *store.InMemory, *dispatch.Memory) {
	t.Helper()
	st := store.NewInMemory()
	queue := dispatch.NewMemory(16)
	handler := NewHandler(queue, st, discardLogger())
	return NewRouter(handler), st, queue
}

func TestIngestEndpoint(t *testing.T) {
	t.Run("accepts and enqueues", func(t *testing.T) {
		router, _, queue := newTestServer(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ingest",
			strings.NewReader(`{"url":"`+billURL+`"}`)))

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp struct {
			TaskID string `json:"task_id"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.TaskID)

		task, ok := queue.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, dispatch.KindAssembleBill, task.Kind)
		assert.Equal(t, billURL, task.URL)
		assert.Zero(t, task.Depth)
	})

	t.Run("rejects relative URL", func(t *testing.T) {
		router, _, queue := newTestServer(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ingest",
			strings.NewReader(`{"url":"BILLSTATUS-119s115.xml"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, queue.Len())
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		router, _, _ := newTestServer(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ingest",
			strings.NewReader(`{not json`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("full queue surfaces as unavailable", func(t *testing.T) {
		st := store.NewInMemory()
		queue := dispatch.NewMemory(1)
		require.NoError(t, queue.Enqueue(context.Background(), dispatch.NewAssembleBill(billURL, 0, "")))
		router := NewRouter(NewHandler(queue, st, discardLogger()))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ingest",
			strings.NewReader(`{"url":"`+billURL+`"}`)))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestBillStatusEndpoint(t *testing.T) {
	t.Run("unknown bill is 404", func(t *testing.T) {
		router, _, _ := newTestServer(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bills?url="+billURL, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing url parameter is 400", func(t *testing.T) {
		router, _, _ := newTestServer(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bills", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("stub reports unassembled with links", func(t *testing.T) {
		router, st, _ := newTestServer(t)
		ctx := context.Background()

		bill, _, err := st.GetOrCreateBill(ctx, billURL)
		require.NoError(t, err)
		otherURL := "https://www.govinfo.gov/bulkdata/BILLSTATUS/119/hr/BILLSTATUS-119hr246.xml"
		other, _, err := st.GetOrCreateBill(ctx, otherURL)
		require.NoError(t, err)
		require.NoError(t, st.LinkRelated(ctx, bill.ID, other.ID))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bills?url="+billURL, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			URL         string   `json:"url"`
			Assembled   bool     `json:"assembled"`
			RelatedURLs []string `json:"related_urls"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, billURL, resp.URL)
		assert.False(t, resp.Assembled)
		assert.Equal(t, []string{otherURL}, resp.RelatedURLs)
	})

	t.Run("assembled bill reports details", func(t *testing.T) {
		router, st, _ := newTestServer(t)
		ctx := context.Background()

		bill, _, err := st.GetOrCreateBill(ctx, billURL)
		require.NoError(t, err)
		bill.Type = "S"
		bill.Number = 115
		bill.Congress = 119
		require.NoError(t, st.UpdateBill(ctx, bill))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bills?url="+billURL, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Assembled bool   `json:"assembled"`
			Type      string `json:"type"`
			Number    int    `json:"number"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Assembled)
		assert.Equal(t, "S", resp.Type)
		assert.Equal(t, 115, resp.Number)
	})
}

func TestHealthz(t *testing.T) {
	router, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
