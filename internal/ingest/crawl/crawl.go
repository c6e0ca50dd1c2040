// Package crawl follows related-bill references across asynchronous task
// boundaries. A reference moves through Referenced -> Stubbed -> (Queued or
// Linked-only) -> Assembled; the "stub already existed" observation is the
// whole cycle-termination mechanism, no extra bookkeeping.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"billgraph/internal/dispatch"
	"billgraph/internal/ingest/fetch"
	"billgraph/internal/ingest/metrics"
	"billgraph/internal/ingest/models"
	"billgraph/internal/ingest/normalize"
)

// DefaultMaxDepth bounds how many related-bill hops a crawl may take from its
// originating document. Bills past the ceiling stay stubs until a future
// top-level pass revisits them directly.
const DefaultMaxDepth = 5

// Store is the slice of the document store the crawler needs.
type Store interface {
	GetOrCreateBill(ctx context.Context, url string) (*models.Bill, bool, error)
	LinkRelated(ctx context.Context, billID, otherID uuid.UUID) error
}

// Crawler derives canonical URLs for related-bill references and schedules
// their ingestion.
type Crawler struct {
	store       Store
	dispatcher  dispatch.Dispatcher
	archiveHost string
	maxDepth    int
	log         *slog.Logger
	metrics     *metrics.Metrics
}

func New(store Store, dispatcher dispatch.Dispatcher, archiveHost string, maxDepth int, log *slog.Logger, m *metrics.Metrics) *Crawler {
	if archiveHost == "" {
		archiveHost = fetch.DefaultArchiveHost
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Crawler{store: store, dispatcher: dispatcher, archiveHost: archiveHost, maxDepth: maxDepth, log: log, metrics: m}
}

// Queue enqueues one LinkRelated task per reference found on a just-assembled
// bill. The linking itself happens when the task runs; recursion crosses the
// task boundary rather than the call stack.
func (c *Crawler) Queue(ctx context.Context, billID uuid.UUID, refs []normalize.Record, depth int, url string) error {
	for _, ref := range refs {
		refType := normalize.Str(ref, "type")
		congress, err := strconv.Atoi(normalize.Str(ref, "congress"))
		if err != nil {
			return fmt.Errorf("related bill congress in %s: %w", url, err)
		}
		number, err := strconv.Atoi(normalize.Str(ref, "number"))
		if err != nil {
			return fmt.Errorf("related bill number in %s: %w", url, err)
		}
		relatedURL := fetch.BillURL(c.archiveHost, congress, refType, number)
		task := dispatch.NewLinkRelated(billID, relatedURL, depth)
		if err := c.dispatcher.Enqueue(ctx, task); err != nil {
			return fmt.Errorf("enqueue link task for %s: %w", relatedURL, err)
		}
		c.metrics.TaskEnqueued(string(dispatch.KindLinkRelated))
	}
	return nil
}

// Link upserts a stub for the related bill and links both directions. Linking
// is unconditional: the link itself, not just the record, can be missing from
// a partial prior run. Only a newly created stub under the depth ceiling
// spawns a follow-up assemble task; the second bill of a cycle always
// observes "not created" and the recursion dies there.
func (c *Crawler) Link(ctx context.Context, billID uuid.UUID, relatedURL string, depth int) error {
	related, created, err := c.store.GetOrCreateBill(ctx, relatedURL)
	if err != nil {
		return fmt.Errorf("stub related bill %s: %w", relatedURL, err)
	}
	if created {
		c.metrics.StubCreated()
	}

	if err := c.store.LinkRelated(ctx, billID, related.ID); err != nil {
		return fmt.Errorf("link bills: %w", err)
	}

	if !created || depth >= c.maxDepth {
		return nil
	}

	task := dispatch.NewAssembleBill(relatedURL, depth+1, "")
	if err := c.dispatcher.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("enqueue assemble task for %s: %w", relatedURL, err)
	}
	c.metrics.TaskEnqueued(string(dispatch.KindAssembleBill))
	c.log.Info("scheduled related bill", "url", relatedURL, "depth", depth+1)
	return nil
}
