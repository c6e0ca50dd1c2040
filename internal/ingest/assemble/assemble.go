// Package assemble converts one validated bill-status record into a persisted
// Bill plus all of its owned and linked sub-entities. Every step is
// individually idempotent, so a failed document is retried from scratch
// rather than resumed mid-way; nothing already written needs undoing.
package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"billgraph/internal/ingest/aggregate"
	"billgraph/internal/ingest/crawl"
	"billgraph/internal/ingest/metrics"
	"billgraph/internal/ingest/models"
	"billgraph/internal/ingest/normalize"
	"billgraph/internal/ingest/resolve"
	"billgraph/internal/ingest/store"
)

// UnexpectedValueError reports a boolean-like field holding something other
// than the literal strings "True" or "False".
type UnexpectedValueError struct {
	Field string
	Value string
	URL   string
}

func (e *UnexpectedValueError) Error() string {
	return fmt.Sprintf("unexpected value %q for %s in %s", e.Value, e.Field, e.URL)
}

// Field contracts for the record shapes the assembler consumes.
var (
	legislatorContract = normalize.Contract{
		Entity:   "legislator",
		Required: []string{"firstName", "lastName", "state", "party"},
		Optional: []string{"district", "middleName", "fullName", "bioguideId"},
	}
	cosponsorContract = normalize.Contract{
		Entity:   "cosponsor",
		Required: []string{"firstName", "lastName", "state", "party", "isOriginalCosponsor", "sponsorshipDate"},
		Optional: []string{"district", "middleName", "fullName", "bioguideId"},
	}
	relatedBillContract = normalize.Contract{
		Entity:   "related bill",
		Required: []string{"type", "congress", "number"},
	}
	summaryContract = normalize.Contract{
		Entity:   "bill summary",
		Required: []string{"name", "actionDate", "text", "actionDesc"},
	}
	actionContract = normalize.Contract{
		Entity:   "action",
		Required: []string{"actionDate", "text", "type"},
		Optional: []string{"committee"},
	}
	committeeContract = normalize.Contract{
		Entity:   "committee",
		Required: []string{"name", "type", "chamber", "systemCode"},
	}
	subjectContract = normalize.Contract{
		Entity:   "legislative subject",
		Required: []string{"name"},
	}
)

// senateTypes and houseTypes partition the bill type codes that have a
// defined originating chamber. Any other type code leaves the chamber unset.
var (
	senateTypes = map[string]struct{}{"S": {}, "SJRES": {}, "SRES": {}, "SCONRES": {}}
	houseTypes  = map[string]struct{}{"HR": {}, "HRES": {}, "HJRES": {}, "HCONRES": {}}
)

// Assembler orchestrates entity upserts for one document.
type Assembler struct {
	store      store.Store
	resolver   *resolve.Resolver
	crawler    *crawl.Crawler
	aggregator *aggregate.Aggregator
	log        *slog.Logger
	metrics    *metrics.Metrics
}

func New(s store.Store, resolver *resolve.Resolver, crawler *crawl.Crawler, aggregator *aggregate.Aggregator, log *slog.Logger, m *metrics.Metrics) *Assembler {
	return &Assembler{store: s, resolver: resolver, crawler: crawler, aggregator: aggregator, log: log, metrics: m}
}

// Assemble populates bill from the document, upserts all owned sub-entities,
// schedules related-bill link tasks at the given depth, and runs the
// aggregation pass. bill must already exist in the store (possibly as a
// stub).
func (a *Assembler) Assemble(ctx context.Context, bill *models.Bill, doc *normalize.Doc, depth int) error {
	if err := a.assembleScalars(bill, doc); err != nil {
		return err
	}
	if err := a.assemblePolicyArea(ctx, bill, doc); err != nil {
		return err
	}
	// Persist scalars before the sub-entity passes so a stub stops being a
	// stub even if a later step aborts the document.
	if err := a.store.UpdateBill(ctx, bill); err != nil {
		return fmt.Errorf("update bill %s: %w", bill.URL, err)
	}

	if err := a.assembleSponsors(ctx, bill, doc); err != nil {
		return err
	}
	if err := a.assembleCosponsors(ctx, bill, doc); err != nil {
		return err
	}
	if err := a.assembleSummaries(ctx, bill, doc); err != nil {
		return err
	}
	if err := a.assembleActions(ctx, bill, doc); err != nil {
		return err
	}
	if err := a.assembleCommittees(ctx, bill, doc); err != nil {
		return err
	}
	if err := a.assembleSubjects(ctx, bill, doc); err != nil {
		return err
	}

	if err := a.store.UpdateBill(ctx, bill); err != nil {
		return fmt.Errorf("update bill %s: %w", bill.URL, err)
	}

	refs, err := a.relatedRefs(doc)
	if err != nil {
		return err
	}
	if err := a.crawler.Queue(ctx, bill.ID, refs, depth, doc.URL()); err != nil {
		return err
	}

	if err := a.aggregator.Update(ctx, bill.ID); err != nil {
		return fmt.Errorf("aggregate bill %s: %w", bill.URL, err)
	}

	a.metrics.BillAssembled()
	a.log.Info("assembled bill", "url", bill.URL, "type", bill.Type, "number", bill.Number, "depth", depth)
	return nil
}

// assembleScalars overwrites the bill's descriptive fields unconditionally;
// re-ingestion is last-write-wins.
func (a *Assembler) assembleScalars(bill *models.Bill, doc *normalize.Doc) error {
	billType, err := doc.String("billType")
	if err != nil {
		return err
	}
	numberRaw, err := doc.String("billNumber")
	if err != nil {
		return err
	}
	title, err := doc.String("title")
	if err != nil {
		return err
	}
	congressRaw, err := doc.String("congress")
	if err != nil {
		return err
	}
	introducedRaw, err := doc.String("introducedDate")
	if err != nil {
		return err
	}

	number, err := strconv.Atoi(numberRaw)
	if err != nil {
		return fmt.Errorf("bill number %q in %s: %w", numberRaw, doc.URL(), err)
	}
	congress, err := strconv.Atoi(congressRaw)
	if err != nil {
		return fmt.Errorf("congress %q in %s: %w", congressRaw, doc.URL(), err)
	}
	introduced, err := normalize.ParseDate(introducedRaw, normalize.DateLayout, "introducedDate", doc.URL())
	if err != nil {
		return err
	}

	bill.Type = billType
	bill.Number = number
	bill.Title = title
	bill.Congress = congress
	bill.IntroducedAt = &introduced
	bill.OriginatingChamber = originatingChamber(billType)
	return nil
}

func (a *Assembler) assemblePolicyArea(ctx context.Context, bill *models.Bill, doc *normalize.Doc) error {
	name, err := doc.String("policyArea", "name")
	if err != nil {
		return err
	}
	if name == "" {
		bill.PolicyAreaID = nil
		return nil
	}
	area, _, err := a.store.GetOrCreatePolicyArea(ctx, name)
	if err != nil {
		return fmt.Errorf("get or create policy area %q: %w", name, err)
	}
	bill.PolicyAreaID = &area.ID
	return nil
}

func (a *Assembler) assembleSponsors(ctx context.Context, bill *models.Bill, doc *normalize.Doc) error {
	raw, err := doc.List("sponsors")
	if err != nil {
		return err
	}
	cleaned, err := normalize.NormalizeList(raw, legislatorContract, doc.URL())
	if err != nil {
		return err
	}
	for _, element := range cleaned {
		rec, ok := element.(normalize.Record)
		if !ok {
			continue
		}
		legislator, err := a.resolveLegislator(ctx, rec, doc.URL())
		if err != nil {
			return err
		}
		if err := a.store.UpsertSponsorship(ctx, bill.ID, legislator.LegislatorID()); err != nil {
			return fmt.Errorf("upsert sponsorship: %w", err)
		}
	}
	return nil
}

func (a *Assembler) assembleCosponsors(ctx context.Context, bill *models.Bill, doc *normalize.Doc) error {
	raw, err := doc.List("cosponsors")
	if err != nil {
		return err
	}
	cleaned, err := normalize.NormalizeList(raw, cosponsorContract, doc.URL())
	if err != nil {
		return err
	}
	for _, element := range cleaned {
		rec, ok := element.(normalize.Record)
		if !ok {
			continue
		}
		legislator, err := a.resolveLegislator(ctx, rec, doc.URL())
		if err != nil {
			return err
		}

		isOriginalRaw := normalize.Str(rec, "isOriginalCosponsor")
		var isOriginal bool
		switch isOriginalRaw {
		case "True":
			isOriginal = true
		case "False":
			isOriginal = false
		default:
			return &UnexpectedValueError{Field: "isOriginalCosponsor", Value: isOriginalRaw, URL: doc.URL()}
		}

		date, err := normalize.ParseDate(normalize.Str(rec, "sponsorshipDate"), normalize.DateLayout, "sponsorshipDate", doc.URL())
		if err != nil {
			return err
		}

		cs := models.Cosponsorship{
			BillID:            bill.ID,
			LegislatorID:      legislator.LegislatorID(),
			Date:              date,
			IsOriginalSponsor: isOriginal,
		}
		if err := a.store.UpsertCosponsorship(ctx, cs); err != nil {
			return fmt.Errorf("upsert cosponsorship: %w", err)
		}
	}
	return nil
}

func (a *Assembler) assembleSummaries(ctx context.Context, bill *models.Bill, doc *normalize.Doc) error {
	raw, err := doc.List("summaries", "billSummaries")
	if err != nil {
		return err
	}
	cleaned, err := normalize.NormalizeList(raw, summaryContract, doc.URL())
	if err != nil {
		return err
	}
	for _, element := range cleaned {
		rec, ok := element.(normalize.Record)
		if !ok {
			continue
		}
		actionDate, err := normalize.ParseDate(normalize.Str(rec, "actionDate"), normalize.DateLayout, "actionDate", doc.URL())
		if err != nil {
			return err
		}
		summary := models.BillSummary{
			BillID:      bill.ID,
			Name:        normalize.Str(rec, "name"),
			ActionDate:  actionDate,
			Text:        normalize.Str(rec, "text"),
			Description: normalize.Str(rec, "actionDesc"),
		}
		if err := a.store.UpsertSummary(ctx, summary); err != nil {
			return fmt.Errorf("upsert summary: %w", err)
		}
	}
	return nil
}

func (a *Assembler) assembleActions(ctx context.Context, bill *models.Bill, doc *normalize.Doc) error {
	raw, err := doc.List("actions")
	if err != nil {
		return err
	}
	cleaned, err := normalize.NormalizeList(raw, actionContract, doc.URL())
	if err != nil {
		return err
	}
	for _, element := range cleaned {
		rec, ok := element.(normalize.Record)
		if !ok {
			continue
		}
		date, err := normalize.ParseDate(normalize.Str(rec, "actionDate"), normalize.DateLayout, "actionDate", doc.URL())
		if err != nil {
			return err
		}
		action := models.Action{
			BillID: bill.ID,
			Text:   normalize.Str(rec, "text"),
			Type:   normalize.Str(rec, "type"),
			Date:   date,
		}
		if committee, ok := rec["committee"].(normalize.Record); ok {
			resolved, err := a.resolver.Committee(ctx,
				normalize.Str(committee, "name"), normalize.Str(committee, "systemCode"), "", "")
			if err != nil {
				return err
			}
			action.CommitteeID = &resolved.ID
		}
		if err := a.store.UpsertAction(ctx, action); err != nil {
			return fmt.Errorf("upsert action: %w", err)
		}
	}
	return nil
}

func (a *Assembler) assembleCommittees(ctx context.Context, bill *models.Bill, doc *normalize.Doc) error {
	raw, err := doc.List("committees", "billCommittees")
	if err != nil {
		return err
	}
	cleaned, err := normalize.NormalizeList(raw, committeeContract, doc.URL())
	if err != nil {
		return err
	}
	for _, element := range cleaned {
		rec, ok := element.(normalize.Record)
		if !ok {
			continue
		}
		committee, err := a.resolver.Committee(ctx,
			normalize.Str(rec, "name"), normalize.Str(rec, "systemCode"),
			normalize.Str(rec, "chamber"), normalize.Str(rec, "type"))
		if err != nil {
			return err
		}
		if err := a.store.AttachCommittee(ctx, bill.ID, committee.ID); err != nil {
			return fmt.Errorf("attach committee: %w", err)
		}
	}
	return nil
}

func (a *Assembler) assembleSubjects(ctx context.Context, bill *models.Bill, doc *normalize.Doc) error {
	raw, err := doc.List("subjects", "billSubjects", "legislativeSubjects")
	if err != nil {
		return err
	}
	cleaned, err := normalize.NormalizeList(raw, subjectContract, doc.URL())
	if err != nil {
		return err
	}
	for _, element := range cleaned {
		rec, ok := element.(normalize.Record)
		if !ok {
			continue
		}
		subject, _, err := a.store.GetOrCreateSubject(ctx, normalize.Str(rec, "name"))
		if err != nil {
			return fmt.Errorf("get or create subject: %w", err)
		}
		if err := a.store.AttachSubject(ctx, bill.ID, subject.ID); err != nil {
			return fmt.Errorf("attach subject: %w", err)
		}
	}
	return nil
}

func (a *Assembler) relatedRefs(doc *normalize.Doc) ([]normalize.Record, error) {
	raw, err := doc.List("relatedBills")
	if err != nil {
		return nil, err
	}
	cleaned, err := normalize.NormalizeList(raw, relatedBillContract, doc.URL())
	if err != nil {
		return nil, err
	}
	refs := make([]normalize.Record, 0, len(cleaned))
	for _, element := range cleaned {
		if rec, ok := element.(normalize.Record); ok {
			refs = append(refs, rec)
		}
	}
	return refs, nil
}

func (a *Assembler) resolveLegislator(ctx context.Context, rec normalize.Record, url string) (models.Legislator, error) {
	var district *int
	if raw := normalize.Str(rec, "district"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("district %q in %s: %w", raw, url, err)
		}
		district = &n
	}
	return a.resolver.Legislator(ctx,
		normalize.Str(rec, "firstName"), normalize.Str(rec, "lastName"),
		normalize.Str(rec, "state"), normalize.Str(rec, "party"), district)
}

func originatingChamber(billType string) models.Chamber {
	if _, ok := senateTypes[billType]; ok {
		return models.ChamberSenate
	}
	if _, ok := houseTypes[billType]; ok {
		return models.ChamberHouse
	}
	return ""
}
