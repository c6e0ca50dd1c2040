// Package ingest wires the ingestion pipeline: document fetch, schema
// normalization, entity assembly, related-bill crawling, and subject
// aggregation, driven by dispatcher tasks.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"billgraph/internal/dispatch"
	"billgraph/internal/ingest/assemble"
	"billgraph/internal/ingest/crawl"
	"billgraph/internal/ingest/metrics"
	"billgraph/internal/ingest/normalize"
	"billgraph/internal/ingest/store"
)

// Fetcher retrieves raw documents from the archive.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Pipeline handles the two task kinds the pipeline dispatches. All handling
// is idempotent: the dispatcher delivers at least once, possibly twice.
type Pipeline struct {
	fetcher   Fetcher
	store     store.Store
	assembler *assemble.Assembler
	crawler   *crawl.Crawler
	log       *slog.Logger
	metrics   *metrics.Metrics
}

func NewPipeline(fetcher Fetcher, s store.Store, assembler *assemble.Assembler, crawler *crawl.Crawler, log *slog.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{fetcher: fetcher, store: s, assembler: assembler, crawler: crawler, log: log, metrics: m}
}

// Handle dispatches one task to its handler.
func (p *Pipeline) Handle(ctx context.Context, task dispatch.Task) error {
	switch task.Kind {
	case dispatch.KindAssembleBill:
		return p.assembleBill(ctx, task)
	case dispatch.KindLinkRelated:
		return p.crawler.Link(ctx, task.BillID, task.URL, task.Depth)
	default:
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
}

// assembleBill fetches, normalizes, and assembles one document. When the task
// carries the archive's last-modified stamp and the stored bill already
// matches it, the fetch is skipped entirely.
func (p *Pipeline) assembleBill(ctx context.Context, task dispatch.Task) error {
	bill, created, err := p.store.GetOrCreateBill(ctx, task.URL)
	if err != nil {
		return fmt.Errorf("get or create bill %s: %w", task.URL, err)
	}

	if task.LastModified != "" {
		lastModified, err := normalize.ParseDate(task.LastModified, normalize.LastModifiedLayout, "lastModifiedDate", task.URL)
		if err != nil {
			return err
		}
		if !created && bill.LastModifiedAt != nil && bill.LastModifiedAt.Equal(lastModified) {
			p.metrics.BillSkipped()
			p.log.Info("bill unchanged, skipping", "url", task.URL)
			return nil
		}
		bill.LastModifiedAt = &lastModified
	}

	body, err := p.fetcher.Get(ctx, task.URL)
	if err != nil {
		p.metrics.FetchFailed()
		return err
	}

	rec, err := normalize.DecodeXML(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("decode %s: %w", task.URL, err)
	}

	doc := normalize.NewDoc(rec, task.URL, p.log)
	billValue, err := doc.Value("billStatus", "bill")
	if err != nil {
		return err
	}
	billRec, ok := billValue.(normalize.Record)
	if !ok {
		return &normalize.SchemaError{Entity: "billStatus", URL: task.URL, Missing: []string{"bill"}}
	}

	return p.assembler.Assemble(ctx, bill, normalize.NewDoc(billRec, task.URL, p.log), task.Depth)
}
