package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billgraph/internal/dispatch"
	"billgraph/internal/ingest/fetch"
	"billgraph/internal/ingest/normalize"
	"billgraph/internal/ingest/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCrawler(maxDepth int) (*Crawler, *store.InMemory, *dispatch.Memory) {
	st := store.NewInMemory()
	queue := dispatch.NewMemory(64)
	return New(st, queue, "", maxDepth, discardLogger(), nil), st, queue
}

func TestQueueDerivesCanonicalURLs(t *testing.T) {
	ctx := context.Background()
	crawler, st, queue := newTestCrawler(0)
	bill, _, err := st.GetOrCreateBill(ctx, fetch.BillURL(fetch.DefaultArchiveHost, 119, "S", 115))
	require.NoError(t, err)

	refs := []normalize.Record{
		{"type": "HR", "congress": "119", "number": "23"},
		{"type": "SRES", "congress": "118", "number": "7"},
	}
	require.NoError(t, crawler.Queue(ctx, bill.ID, refs, 2, bill.URL))

	first, ok := queue.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, dispatch.KindLinkRelated, first.Kind)
	assert.Equal(t, "https://www.govinfo.gov/bulkdata/BILLSTATUS/119/hr/BILLSTATUS-119hr23.xml", first.URL)
	assert.Equal(t, bill.ID, first.BillID)
	assert.Equal(t, 2, first.Depth)

	second, ok := queue.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "https://www.govinfo.gov/bulkdata/BILLSTATUS/118/sres/BILLSTATUS-118sres7.xml", second.URL)
}

func TestQueueRejectsMalformedReference(t *testing.T) {
	ctx := context.Background()
	crawler, st, queue := newTestCrawler(0)
	bill, _, err := st.GetOrCreateBill(ctx, fetch.BillURL(fetch.DefaultArchiveHost, 119, "S", 115))
	require.NoError(t, err)

	refs := []normalize.Record{{"type": "HR", "congress": "one-nineteen", "number": "23"}}
	err = crawler.Queue(ctx, bill.ID, refs, 0, bill.URL)
	assert.Error(t, err)
	assert.Zero(t, queue.Len())
}

func TestLinkCreatesStubAndRecurses(t *testing.T) {
	ctx := context.Background()
	crawler, st, queue := newTestCrawler(0)
	bill, _, err := st.GetOrCreateBill(ctx, fetch.BillURL(fetch.DefaultArchiveHost, 119, "S", 115))
	require.NoError(t, err)

	relatedURL := fetch.BillURL(fetch.DefaultArchiveHost, 119, "HR", 23)
	require.NoError(t, crawler.Link(ctx, bill.ID, relatedURL, 0))

	stub, err := st.GetBillByURL(ctx, relatedURL)
	require.NoError(t, err)
	assert.False(t, stub.Assembled())

	related, err := st.RelatedOf(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, stub.ID, related[0].ID)

	task, ok := queue.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, dispatch.KindAssembleBill, task.Kind)
	assert.Equal(t, relatedURL, task.URL)
	assert.Equal(t, 1, task.Depth)
}

func TestLinkTerminatesOnCycle(t *testing.T) {
	ctx := context.Background()
	crawler, st, queue := newTestCrawler(0)

	urlA := fetch.BillURL(fetch.DefaultArchiveHost, 119, "S", 115)
	urlB := fetch.BillURL(fetch.DefaultArchiveHost, 119, "HR", 23)
	billA, _, err := st.GetOrCreateBill(ctx, urlA)
	require.NoError(t, err)

	// A references B: B is stubbed and scheduled.
	require.NoError(t, crawler.Link(ctx, billA.ID, urlB, 0))
	task, ok := queue.TryDequeue()
	require.True(t, ok)
	require.Equal(t, urlB, task.URL)

	// B references A back: A already exists, so the recursion dies.
	billB, err := st.GetBillByURL(ctx, urlB)
	require.NoError(t, err)
	require.NoError(t, crawler.Link(ctx, billB.ID, urlA, task.Depth))

	_, ok = queue.TryDequeue()
	assert.False(t, ok, "cycle must not schedule more work")

	related, err := st.RelatedOf(ctx, billA.ID)
	require.NoError(t, err)
	assert.Len(t, related, 1, "re-linking the same pair stays a single edge")
}

func TestLinkRelinksWithoutRescheduling(t *testing.T) {
	ctx := context.Background()
	crawler, st, queue := newTestCrawler(0)

	urlA := fetch.BillURL(fetch.DefaultArchiveHost, 119, "S", 115)
	urlB := fetch.BillURL(fetch.DefaultArchiveHost, 119, "HR", 23)
	billA, _, err := st.GetOrCreateBill(ctx, urlA)
	require.NoError(t, err)
	billB, _, err := st.GetOrCreateBill(ctx, urlB)
	require.NoError(t, err)

	// Both bills exist already: the link is still written, nothing scheduled.
	require.NoError(t, crawler.Link(ctx, billA.ID, urlB, 0))

	related, err := st.RelatedOf(ctx, billB.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, billA.ID, related[0].ID)
	assert.Zero(t, queue.Len())
}

func TestLinkStopsAtDepthCeiling(t *testing.T) {
	ctx := context.Background()
	crawler, st, queue := newTestCrawler(3)

	origin, _, err := st.GetOrCreateBill(ctx, fetch.BillURL(fetch.DefaultArchiveHost, 119, "S", 1))
	require.NoError(t, err)

	// Walk a straight chain: each hop links the next bill number.
	billID := origin.ID
	depth := 0
	hops := 0
	for number := 2; ; number++ {
		nextURL := fetch.BillURL(fetch.DefaultArchiveHost, 119, "S", number)
		require.NoError(t, crawler.Link(ctx, billID, nextURL, depth))
		task, ok := queue.TryDequeue()
		if !ok {
			break
		}
		hops++
		next, err := st.GetBillByURL(ctx, nextURL)
		require.NoError(t, err)
		billID = next.ID
		depth = task.Depth
		require.Less(t, hops, 20, "chain must terminate")
	}

	assert.Equal(t, 3, hops)

	// The first bill past the ceiling exists as a stub but was never queued.
	pastCeiling, err := st.GetBillByURL(ctx, fetch.BillURL(fetch.DefaultArchiveHost, 119, "S", 5))
	require.NoError(t, err)
	assert.False(t, pastCeiling.Assembled())

	// Nothing beyond it was ever referenced.
	_, err = st.GetBillByURL(ctx, fetch.BillURL(fetch.DefaultArchiveHost, 119, "S", 7))
	assert.Error(t, err)
}

func TestBillURLScheme(t *testing.T) {
	for _, tc := range []struct {
		congress int
		billType string
		number   int
		want     string
	}{
		{119, "S", 115, "https://www.govinfo.gov/bulkdata/BILLSTATUS/119/s/BILLSTATUS-119s115.xml"},
		{118, "HCONRES", 7, "https://www.govinfo.gov/bulkdata/BILLSTATUS/118/hconres/BILLSTATUS-118hconres7.xml"},
	} {
		t.Run(fmt.Sprintf("%d-%s-%d", tc.congress, tc.billType, tc.number), func(t *testing.T) {
			assert.Equal(t, tc.want, fetch.BillURL(fetch.DefaultArchiveHost, tc.congress, tc.billType, tc.number))
		})
	}
}
