// Package aggregate maintains the derived per-subject engagement counters and
// partisan support splits after a bill is assembled.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"billgraph/internal/ingest/models"
)

// UnexpectedPartyError reports a legislator whose party could not be
// classified into a support bucket.
type UnexpectedPartyError struct {
	Party string
}

func (e *UnexpectedPartyError) Error() string {
	return fmt.Sprintf("unexpected party %q while updating support split", e.Party)
}

// Store is the slice of the document store the aggregator needs. The record
// operations are membership-guarded by the store, which is what makes this
// whole pass safe to repeat on re-ingestion.
type Store interface {
	SubjectsOf(ctx context.Context, billID uuid.UUID) ([]*models.LegislativeSubject, error)
	SponsorsOf(ctx context.Context, billID uuid.UUID) ([]models.Legislator, error)
	CosponsorsOf(ctx context.Context, billID uuid.UUID) ([]models.Legislator, error)
	RecordSubjectActivity(ctx context.Context, subjectID, legislatorID uuid.UUID, role models.ActivityRole, billID uuid.UUID) (bool, error)
	RecordSupport(ctx context.Context, subjectID, billID, legislatorID uuid.UUID, bucket models.SupportBucket) (bool, error)
}

// Aggregator runs the post-assembly aggregation pass.
type Aggregator struct {
	store   Store
	buckets map[string]models.SupportBucket
	log     *slog.Logger
}

func New(store Store, log *slog.Logger) *Aggregator {
	return &Aggregator{
		store: store,
		buckets: map[string]models.SupportBucket{
			"D": models.BucketDemocratic,
			"R": models.BucketRepublican,
			"I": models.BucketIndependent,
		},
		log: log,
	}
}

// Update records engagement for every (subject, legislator) pair reachable
// from the bill's sponsor and cosponsor sets.
func (a *Aggregator) Update(ctx context.Context, billID uuid.UUID) error {
	subjects, err := a.store.SubjectsOf(ctx, billID)
	if err != nil {
		return fmt.Errorf("load subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil
	}
	sponsors, err := a.store.SponsorsOf(ctx, billID)
	if err != nil {
		return fmt.Errorf("load sponsors: %w", err)
	}
	cosponsors, err := a.store.CosponsorsOf(ctx, billID)
	if err != nil {
		return fmt.Errorf("load cosponsors: %w", err)
	}

	for _, subject := range subjects {
		if err := a.updateSubject(ctx, subject.ID, billID, sponsors, models.RoleSponsor); err != nil {
			return err
		}
		if err := a.updateSubject(ctx, subject.ID, billID, cosponsors, models.RoleCosponsor); err != nil {
			return err
		}
	}
	return nil
}

func (a *Aggregator) updateSubject(ctx context.Context, subjectID, billID uuid.UUID, legislators []models.Legislator, role models.ActivityRole) error {
	for _, legislator := range legislators {
		if _, err := a.store.RecordSubjectActivity(ctx, subjectID, legislator.LegislatorID(), role, billID); err != nil {
			return fmt.Errorf("record subject activity: %w", err)
		}
		bucket, ok := a.buckets[legislator.PartyCode()]
		if !ok {
			return &UnexpectedPartyError{Party: legislator.PartyCode()}
		}
		if _, err := a.store.RecordSupport(ctx, subjectID, billID, legislator.LegislatorID(), bucket); err != nil {
			return fmt.Errorf("record support split: %w", err)
		}
	}
	return nil
}
