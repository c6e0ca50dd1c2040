// Package store persists the bill entity graph. All get-or-create and upsert
// operations are atomic per store so concurrent workers racing to create the
// same row observe "already exists" instead of producing duplicates; the
// pipeline's idempotence rests entirely on that property.
package store

import (
	"context"

	"github.com/google/uuid"

	"billgraph/internal/ingest/models"
)

// Store is the document store contract the ingestion pipeline manipulates
// entities through. Implementations must enforce the natural-key uniqueness
// constraints described on the model types.
type Store interface {
	// Bills. The canonical source URL is the natural key; GetOrCreateBill
	// with a new URL creates a stub.
	GetOrCreateBill(ctx context.Context, url string) (*models.Bill, bool, error)
	GetBillByURL(ctx context.Context, url string) (*models.Bill, error)
	GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// Lookup entities.
	GetOrCreateDistrict(ctx context.Context, stateCode string, number int) (*models.District, bool, error)
	GetOrCreateSenator(ctx context.Context, firstName, lastName, state, party string) (*models.Senator, bool, error)
	GetOrCreateRepresentative(ctx context.Context, firstName, lastName, state, party string, district models.District) (*models.Representative, bool, error)
	UpsertCommittee(ctx context.Context, name, systemCode, chamber, committeeType string) (*models.Committee, error)
	GetOrCreatePolicyArea(ctx context.Context, name string) (*models.PolicyArea, bool, error)
	GetOrCreateSubject(ctx context.Context, name string) (*models.LegislativeSubject, bool, error)

	// Owned and linked sub-entities. All upserts are no-ops when the row
	// already exists under its uniqueness key; UpsertSummary additionally
	// refreshes text and description in place.
	UpsertSponsorship(ctx context.Context, billID, legislatorID uuid.UUID) error
	UpsertCosponsorship(ctx context.Context, cs models.Cosponsorship) error
	UpsertSummary(ctx context.Context, summary models.BillSummary) error
	UpsertAction(ctx context.Context, action models.Action) error
	AttachCommittee(ctx context.Context, billID, committeeID uuid.UUID) error
	AttachSubject(ctx context.Context, billID, subjectID uuid.UUID) error

	// LinkRelated links two bills symmetrically; re-linking is a no-op.
	LinkRelated(ctx context.Context, billID, otherID uuid.UUID) error

	// Aggregates. Both record operations are membership-guarded: they return
	// false without incrementing when the bill (or bill/legislator pair) was
	// already counted.
	RecordSubjectActivity(ctx context.Context, subjectID, legislatorID uuid.UUID, role models.ActivityRole, billID uuid.UUID) (bool, error)
	RecordSupport(ctx context.Context, subjectID, billID, legislatorID uuid.UUID, bucket models.SupportBucket) (bool, error)

	// Queries.
	SponsorsOf(ctx context.Context, billID uuid.UUID) ([]models.Legislator, error)
	CosponsorsOf(ctx context.Context, billID uuid.UUID) ([]models.Legislator, error)
	CosponsorshipsOf(ctx context.Context, billID uuid.UUID) ([]models.Cosponsorship, error)
	SubjectsOf(ctx context.Context, billID uuid.UUID) ([]*models.LegislativeSubject, error)
	CommitteesOf(ctx context.Context, billID uuid.UUID) ([]*models.Committee, error)
	RelatedOf(ctx context.Context, billID uuid.UUID) ([]*models.Bill, error)
	SummariesOf(ctx context.Context, billID uuid.UUID) ([]*models.BillSummary, error)
	ActionsOf(ctx context.Context, billID uuid.UUID) ([]*models.Action, error)
	SubjectActivityFor(ctx context.Context, subjectID, legislatorID uuid.UUID, role models.ActivityRole) (*models.SubjectActivity, error)
	SupportSplitFor(ctx context.Context, subjectID uuid.UUID) (*models.SupportSplit, error)
}
