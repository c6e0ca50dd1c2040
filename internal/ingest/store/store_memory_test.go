package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billgraph/internal/ingest/models"
	"billgraph/pkg/platform/sentinel"
)

const billURL = "https://www.govinfo.gov/bulkdata/BILLSTATUS/119/s/BILLSTATUS-119s115.xml"

func TestInMemoryBills(t *testing.T) {
	ctx := context.Background()

	t.Run("first call creates a stub", func(t *testing.T) {
		s := NewInMemory()
		bill, created, err := s.GetOrCreateBill(ctx, billURL)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, billURL, bill.URL)
		assert.False(t, bill.Assembled())
	})

	t.Run("second call returns the existing bill", func(t *testing.T) {
		s := NewInMemory()
		first, _, err := s.GetOrCreateBill(ctx, billURL)
		require.NoError(t, err)
		second, created, err := s.GetOrCreateBill(ctx, billURL)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("get by URL misses with not found", func(t *testing.T) {
		s := NewInMemory()
		_, err := s.GetBillByURL(ctx, billURL)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("update preserves the URL", func(t *testing.T) {
		s := NewInMemory()
		bill, _, err := s.GetOrCreateBill(ctx, billURL)
		require.NoError(t, err)

		bill.Type = "S"
		bill.Number = 115
		bill.Congress = 119
		bill.URL = "https://elsewhere.example/other.xml"
		require.NoError(t, s.UpdateBill(ctx, bill))

		got, err := s.GetBillByURL(ctx, billURL)
		require.NoError(t, err)
		assert.Equal(t, "S", got.Type)
		assert.Equal(t, billURL, got.URL)
		assert.True(t, got.Assembled())
	})

	t.Run("update of unknown bill fails", func(t *testing.T) {
		s := NewInMemory()
		err := s.UpdateBill(ctx, &models.Bill{URL: billURL})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("returned bills are copies", func(t *testing.T) {
		s := NewInMemory()
		bill, _, err := s.GetOrCreateBill(ctx, billURL)
		require.NoError(t, err)
		bill.Title = "mutated"

		got, err := s.GetBillByURL(ctx, billURL)
		require.NoError(t, err)
		assert.Empty(t, got.Title)
	})
}

func TestInMemoryLegislators(t *testing.T) {
	ctx := context.Background()

	t.Run("senator identity is name, state, party", func(t *testing.T) {
		s := NewInMemory()
		first, created, err := s.GetOrCreateSenator(ctx, "John", "Cornyn", "TX", "R")
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := s.GetOrCreateSenator(ctx, "John", "Cornyn", "TX", "R")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)

		other, created, err := s.GetOrCreateSenator(ctx, "John", "Cornyn", "TX", "D")
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.ID, other.ID)
	})

	t.Run("representative identity includes district", func(t *testing.T) {
		s := NewInMemory()
		d12, _, err := s.GetOrCreateDistrict(ctx, "TX", 12)
		require.NoError(t, err)
		d26, _, err := s.GetOrCreateDistrict(ctx, "TX", 26)
		require.NoError(t, err)

		first, _, err := s.GetOrCreateRepresentative(ctx, "Kay", "Granger", "TX", "R", *d12)
		require.NoError(t, err)
		second, created, err := s.GetOrCreateRepresentative(ctx, "Kay", "Granger", "TX", "R", *d26)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestInMemoryCosponsorships(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	bill, _, err := s.GetOrCreateBill(ctx, billURL)
	require.NoError(t, err)
	senator, _, err := s.GetOrCreateSenator(ctx, "John", "Cornyn", "TX", "R")
	require.NoError(t, err)

	date := time.Date(2017, 1, 12, 0, 0, 0, 0, time.UTC)
	cs := models.Cosponsorship{BillID: bill.ID, LegislatorID: senator.ID, Date: date, IsOriginalSponsor: true}

	require.NoError(t, s.UpsertCosponsorship(ctx, cs))
	require.NoError(t, s.UpsertCosponsorship(ctx, cs))

	all, err := s.CosponsorshipsOf(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1, "same tuple must not duplicate")

	// A different date is a distinct cosponsorship row.
	cs.Date = date.AddDate(0, 1, 0)
	require.NoError(t, s.UpsertCosponsorship(ctx, cs))
	all, err = s.CosponsorshipsOf(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cosponsors, err := s.CosponsorsOf(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, cosponsors, 1, "cosponsor set deduplicates by legislator")
}

func TestInMemorySummaries(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	bill, _, err := s.GetOrCreateBill(ctx, billURL)
	require.NoError(t, err)

	date := time.Date(2017, 1, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertSummary(ctx, models.BillSummary{
		BillID: bill.ID, Name: "Introduced", ActionDate: date, Text: "v1", Description: "Introduced in Senate",
	}))
	require.NoError(t, s.UpsertSummary(ctx, models.BillSummary{
		BillID: bill.ID, Name: "Introduced", ActionDate: date, Text: "v2", Description: "Introduced in Senate",
	}))

	summaries, err := s.SummariesOf(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1, "same key refreshes in place")
	assert.Equal(t, "v2", summaries[0].Text)
}

func TestInMemoryActions(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	bill, _, err := s.GetOrCreateBill(ctx, billURL)
	require.NoError(t, err)

	date := time.Date(2017, 1, 12, 0, 0, 0, 0, time.UTC)
	action := models.Action{BillID: bill.ID, Text: "Read twice", Type: "IntroReferral", Date: date}
	require.NoError(t, s.UpsertAction(ctx, action))
	require.NoError(t, s.UpsertAction(ctx, action))

	committee, err := s.UpsertCommittee(ctx, "Committee on Finance", "ssfi00", "", "")
	require.NoError(t, err)
	action.CommitteeID = &committee.ID
	require.NoError(t, s.UpsertAction(ctx, action))

	actions, err := s.ActionsOf(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, actions, 2, "committee presence distinguishes otherwise equal actions")
}

func TestInMemoryRelated(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	a, _, err := s.GetOrCreateBill(ctx, billURL)
	require.NoError(t, err)
	b, _, err := s.GetOrCreateBill(ctx, "https://www.govinfo.gov/bulkdata/BILLSTATUS/119/hr/BILLSTATUS-119hr23.xml")
	require.NoError(t, err)

	require.NoError(t, s.LinkRelated(ctx, a.ID, b.ID))
	require.NoError(t, s.LinkRelated(ctx, a.ID, b.ID))

	fromA, err := s.RelatedOf(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	assert.Equal(t, b.ID, fromA[0].ID)

	fromB, err := s.RelatedOf(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, fromB, 1, "link is symmetric")
	assert.Equal(t, a.ID, fromB[0].ID)
}

func TestInMemoryAggregates(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	subject, _, err := s.GetOrCreateSubject(ctx, "Health")
	require.NoError(t, err)
	senator, _, err := s.GetOrCreateSenator(ctx, "John", "Cornyn", "TX", "R")
	require.NoError(t, err)
	bill, _, err := s.GetOrCreateBill(ctx, billURL)
	require.NoError(t, err)

	t.Run("activity counts each bill once", func(t *testing.T) {
		counted, err := s.RecordSubjectActivity(ctx, subject.ID, senator.ID, models.RoleSponsor, bill.ID)
		require.NoError(t, err)
		assert.True(t, counted)

		counted, err = s.RecordSubjectActivity(ctx, subject.ID, senator.ID, models.RoleSponsor, bill.ID)
		require.NoError(t, err)
		assert.False(t, counted, "same bill must not count twice")

		activity, err := s.SubjectActivityFor(ctx, subject.ID, senator.ID, models.RoleSponsor)
		require.NoError(t, err)
		assert.Equal(t, 1, activity.ActivityCount)
	})

	t.Run("roles count independently", func(t *testing.T) {
		counted, err := s.RecordSubjectActivity(ctx, subject.ID, senator.ID, models.RoleCosponsor, bill.ID)
		require.NoError(t, err)
		assert.True(t, counted)
	})

	t.Run("support counts each bill-legislator pair once", func(t *testing.T) {
		counted, err := s.RecordSupport(ctx, subject.ID, bill.ID, senator.ID, models.BucketRepublican)
		require.NoError(t, err)
		assert.True(t, counted)

		counted, err = s.RecordSupport(ctx, subject.ID, bill.ID, senator.ID, models.BucketRepublican)
		require.NoError(t, err)
		assert.False(t, counted)

		split, err := s.SupportSplitFor(ctx, subject.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, split.RepublicanCount)
		assert.Zero(t, split.DemocraticCount)
		assert.Zero(t, split.IndependentCount)
	})

	t.Run("missing aggregates read as not found", func(t *testing.T) {
		_, err := s.SupportSplitFor(ctx, bill.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
