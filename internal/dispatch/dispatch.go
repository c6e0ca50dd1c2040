// Package dispatch carries units of ingestion work between workers. Recursion
// over the related-bill graph happens across these task boundaries, never in a
// single call stack: each task emits zero or more follow-up tasks and the
// dispatcher owns delivery. Delivery is at-least-once with no ordering
// guarantee, so every handler must be idempotent.
package dispatch

import (
	"context"

	"github.com/google/uuid"
)

// Kind names a task handler.
type Kind string

const (
	// KindAssembleBill fetches a bill-status document and assembles it.
	KindAssembleBill Kind = "assemble_bill"
	// KindLinkRelated stubs a related bill, links it to the bookmark bill,
	// and recurses when the stub is new and depth allows.
	KindLinkRelated Kind = "link_related"
)

// Task is the wire payload for one unit of work. Depth counts related-bill
// hops from the document that originated the crawl.
type Task struct {
	ID           uuid.UUID `json:"id"`
	Kind         Kind      `json:"kind"`
	URL          string    `json:"url"`
	BillID       uuid.UUID `json:"bill_id,omitempty"`
	Depth        int       `json:"depth"`
	LastModified string    `json:"last_modified,omitempty"`
}

// NewAssembleBill builds a task to fetch and assemble the document at url.
func NewAssembleBill(url string, depth int, lastModified string) Task {
	return Task{ID: uuid.New(), Kind: KindAssembleBill, URL: url, Depth: depth, LastModified: lastModified}
}

// NewLinkRelated builds a task to stub-and-link relatedURL against billID.
func NewLinkRelated(billID uuid.UUID, relatedURL string, depth int) Task {
	return Task{ID: uuid.New(), Kind: KindLinkRelated, URL: relatedURL, BillID: billID, Depth: depth}
}

// Dispatcher schedules follow-up work.
type Dispatcher interface {
	Enqueue(ctx context.Context, task Task) error
}

// Queue is a dispatcher workers can also pull from.
type Queue interface {
	Dispatcher
	// Dequeue blocks until a task is available or ctx is done.
	Dequeue(ctx context.Context) (Task, error)
}

// Handler executes one task.
type Handler interface {
	Handle(ctx context.Context, task Task) error
}
