// Package scheduler periodically walks the archive's bulk index and enqueues
// top-level ingestion tasks for every listed bill.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"billgraph/internal/dispatch"
	"billgraph/internal/ingest"
	"billgraph/internal/ingest/metrics"
)

// indexFile is one entry of the archive's bulk index listing.
type indexFile struct {
	Link         string `json:"link"`
	LastModified string `json:"formattedLastModifiedTime"`
	Folder       bool   `json:"folder"`
}

type indexListing struct {
	Files []indexFile `json:"files"`
}

// Scheduler refreshes the bill graph on a cron schedule. Each refresh
// enqueues depth-0 assemble tasks; the last-modified stamp travels in the
// task so workers can skip unchanged documents without fetching them.
type Scheduler struct {
	cron       *cron.Cron
	fetcher    ingest.Fetcher
	dispatcher dispatch.Dispatcher
	indexURL   string
	log        *slog.Logger
	metrics    *metrics.Metrics
}

func New(fetcher ingest.Fetcher, dispatcher dispatch.Dispatcher, indexURL string, log *slog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		fetcher:    fetcher,
		dispatcher: dispatcher,
		indexURL:   indexURL,
		log:        log,
		metrics:    m,
	}
}

// Start schedules refreshes with the given cron spec and starts the cron
// runner.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.Refresh(context.Background()); err != nil {
			s.log.Error("archive refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	s.cron.Start()
	s.log.Info("archive refresh scheduled", "spec", spec, "index", s.indexURL)
	return nil
}

// Stop stops the cron runner; a running refresh finishes.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Refresh fetches the bulk index and enqueues one assemble task per listed
// document.
func (s *Scheduler) Refresh(ctx context.Context) error {
	body, err := s.fetcher.Get(ctx, s.indexURL)
	if err != nil {
		return fmt.Errorf("fetch index %s: %w", s.indexURL, err)
	}

	var listing indexListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return fmt.Errorf("parse index %s: %w", s.indexURL, err)
	}

	var enqueued int
	for _, file := range listing.Files {
		if file.Folder || file.Link == "" {
			continue
		}
		task := dispatch.NewAssembleBill(file.Link, 0, file.LastModified)
		if err := s.dispatcher.Enqueue(ctx, task); err != nil {
			return fmt.Errorf("enqueue %s: %w", file.Link, err)
		}
		s.metrics.TaskEnqueued(string(dispatch.KindAssembleBill))
		enqueued++
	}
	s.log.Info("archive refresh enqueued bills", "count", enqueued)
	return nil
}
