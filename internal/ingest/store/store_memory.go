package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"billgraph/internal/ingest/models"
	"billgraph/pkg/platform/sentinel"
)

type districtKey struct {
	State  string
	Number int
}

type legislatorKey struct {
	FirstName string
	LastName  string
	State     string
	Party     string
	District  uuid.UUID // uuid.Nil for senators
}

type committeeKey struct {
	Name       string
	SystemCode string
}

type sponsorshipKey struct {
	BillID       uuid.UUID
	LegislatorID uuid.UUID
}

type cosponsorshipKey struct {
	BillID       uuid.UUID
	LegislatorID uuid.UUID
	Date         time.Time
	IsOriginal   bool
}

type summaryKey struct {
	BillID     uuid.UUID
	Name       string
	ActionDate time.Time
}

type actionKey struct {
	BillID      uuid.UUID
	CommitteeID uuid.UUID // uuid.Nil when the action carries no committee
	Text        string
	Type        string
	Date        time.Time
}

type activityKey struct {
	SubjectID    uuid.UUID
	LegislatorID uuid.UUID
	Role         models.ActivityRole
}

type supportMemberKey struct {
	BillID       uuid.UUID
	LegislatorID uuid.UUID
}

type activityEntry struct {
	count int
	bills map[uuid.UUID]struct{}
}

type splitEntry struct {
	split   models.SupportSplit
	members map[supportMemberKey]struct{}
}

// InMemory implements Store with mutex-guarded maps. It is the default store
// for tests and single-process runs; one mutex stands in for the uniqueness
// constraints a SQL store gets from its schema.
type InMemory struct {
	mu sync.RWMutex

	billsByURL map[string]*models.Bill
	billsByID  map[uuid.UUID]*models.Bill

	districts       map[districtKey]*models.District
	senators        map[legislatorKey]*models.Senator
	representatives map[legislatorKey]*models.Representative
	legislators     map[uuid.UUID]models.Legislator
	committees      map[committeeKey]*models.Committee
	committeesByID  map[uuid.UUID]*models.Committee
	policyAreas     map[string]*models.PolicyArea
	subjects        map[string]*models.LegislativeSubject
	subjectsByID    map[uuid.UUID]*models.LegislativeSubject

	sponsorships   map[sponsorshipKey]struct{}
	cosponsorships map[cosponsorshipKey]models.Cosponsorship
	summaries      map[summaryKey]*models.BillSummary
	actions        map[actionKey]*models.Action
	billCommittees map[uuid.UUID]map[uuid.UUID]struct{}
	billSubjects   map[uuid.UUID]map[uuid.UUID]struct{}
	related        map[uuid.UUID]map[uuid.UUID]struct{}

	activities map[activityKey]*activityEntry
	splits     map[uuid.UUID]*splitEntry
}

func NewInMemory() *InMemory {
	return &InMemory{
		billsByURL:      make(map[string]*models.Bill),
		billsByID:       make(map[uuid.UUID]*models.Bill),
		districts:       make(map[districtKey]*models.District),
		senators:        make(map[legislatorKey]*models.Senator),
		representatives: make(map[legislatorKey]*models.Representative),
		legislators:     make(map[uuid.UUID]models.Legislator),
		committees:      make(map[committeeKey]*models.Committee),
		committeesByID:  make(map[uuid.UUID]*models.Committee),
		policyAreas:     make(map[string]*models.PolicyArea),
		subjects:        make(map[string]*models.LegislativeSubject),
		subjectsByID:    make(map[uuid.UUID]*models.LegislativeSubject),
		sponsorships:    make(map[sponsorshipKey]struct{}),
		cosponsorships:  make(map[cosponsorshipKey]models.Cosponsorship),
		summaries:       make(map[summaryKey]*models.BillSummary),
		actions:         make(map[actionKey]*models.Action),
		billCommittees:  make(map[uuid.UUID]map[uuid.UUID]struct{}),
		billSubjects:    make(map[uuid.UUID]map[uuid.UUID]struct{}),
		related:         make(map[uuid.UUID]map[uuid.UUID]struct{}),
		activities:      make(map[activityKey]*activityEntry),
		splits:          make(map[uuid.UUID]*splitEntry),
	}
}

func (s *InMemory) GetOrCreateBill(_ context.Context, url string) (*models.Bill, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bill, ok := s.billsByURL[url]; ok {
		return cloneBill(bill), false, nil
	}
	bill := &models.Bill{ID: uuid.New(), URL: url}
	s.billsByURL[url] = bill
	s.billsByID[bill.ID] = bill
	return cloneBill(bill), true, nil
}

func (s *InMemory) GetBillByURL(_ context.Context, url string) (*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bill, ok := s.billsByURL[url]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneBill(bill), nil
}

func (s *InMemory) GetBill(_ context.Context, id uuid.UUID) (*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bill, ok := s.billsByID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneBill(bill), nil
}

// UpdateBill overwrites every descriptive field of an existing bill. The URL
// is the identity and never changes.
func (s *InMemory) UpdateBill(_ context.Context, bill *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.billsByID[bill.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := cloneBill(bill)
	updated.URL = existing.URL
	s.billsByID[bill.ID] = updated
	s.billsByURL[existing.URL] = updated
	return nil
}

func (s *InMemory) GetOrCreateDistrict(_ context.Context, stateCode string, number int) (*models.District, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := districtKey{State: stateCode, Number: number}
	if d, ok := s.districts[key]; ok {
		dc := *d
		return &dc, false, nil
	}
	d := &models.District{ID: uuid.New(), StateCode: stateCode, Number: number}
	s.districts[key] = d
	dc := *d
	return &dc, true, nil
}

func (s *InMemory) GetOrCreateSenator(_ context.Context, firstName, lastName, state, party string) (*models.Senator, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := legislatorKey{FirstName: firstName, LastName: lastName, State: state, Party: party}
	if sen, ok := s.senators[key]; ok {
		sc := *sen
		return &sc, false, nil
	}
	sen := &models.Senator{ID: uuid.New(), FirstName: firstName, LastName: lastName, State: state, Party: party}
	s.senators[key] = sen
	s.legislators[sen.ID] = sen
	sc := *sen
	return &sc, true, nil
}

func (s *InMemory) GetOrCreateRepresentative(_ context.Context, firstName, lastName, state, party string, district models.District) (*models.Representative, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := legislatorKey{FirstName: firstName, LastName: lastName, State: state, Party: party, District: district.ID}
	if rep, ok := s.representatives[key]; ok {
		rc := *rep
		return &rc, false, nil
	}
	rep := &models.Representative{ID: uuid.New(), FirstName: firstName, LastName: lastName, State: state, Party: party, District: district}
	s.representatives[key] = rep
	s.legislators[rep.ID] = rep
	rc := *rep
	return &rc, true, nil
}

// UpsertCommittee is keyed by (name, system code). Non-empty chamber and type
// overwrite stored metadata so it tracks the most recent full committee
// record; empty values from bare action references leave it alone.
func (s *InMemory) UpsertCommittee(_ context.Context, name, systemCode, chamber, committeeType string) (*models.Committee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := committeeKey{Name: name, SystemCode: systemCode}
	committee, ok := s.committees[key]
	if !ok {
		committee = &models.Committee{ID: uuid.New(), Name: name, SystemCode: systemCode}
		s.committees[key] = committee
		s.committeesByID[committee.ID] = committee
	}
	if chamber != "" {
		committee.Chamber = chamber
	}
	if committeeType != "" {
		committee.Type = committeeType
	}
	cc := *committee
	return &cc, nil
}

func (s *InMemory) GetOrCreatePolicyArea(_ context.Context, name string) (*models.PolicyArea, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pa, ok := s.policyAreas[name]; ok {
		pc := *pa
		return &pc, false, nil
	}
	pa := &models.PolicyArea{ID: uuid.New(), Name: name}
	s.policyAreas[name] = pa
	pc := *pa
	return &pc, true, nil
}

func (s *InMemory) GetOrCreateSubject(_ context.Context, name string) (*models.LegislativeSubject, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if subject, ok := s.subjects[name]; ok {
		sc := *subject
		return &sc, false, nil
	}
	subject := &models.LegislativeSubject{ID: uuid.New(), Name: name}
	s.subjects[name] = subject
	s.subjectsByID[subject.ID] = subject
	sc := *subject
	return &sc, true, nil
}

func (s *InMemory) UpsertSponsorship(_ context.Context, billID, legislatorID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sponsorships[sponsorshipKey{BillID: billID, LegislatorID: legislatorID}] = struct{}{}
	return nil
}

func (s *InMemory) UpsertCosponsorship(_ context.Context, cs models.Cosponsorship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := cosponsorshipKey{BillID: cs.BillID, LegislatorID: cs.LegislatorID, Date: cs.Date, IsOriginal: cs.IsOriginalSponsor}
	if _, ok := s.cosponsorships[key]; !ok {
		s.cosponsorships[key] = cs
	}
	return nil
}

func (s *InMemory) UpsertSummary(_ context.Context, summary models.BillSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := summaryKey{BillID: summary.BillID, Name: summary.Name, ActionDate: summary.ActionDate}
	if existing, ok := s.summaries[key]; ok {
		existing.Text = summary.Text
		existing.Description = summary.Description
		return nil
	}
	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}
	s.summaries[key] = &summary
	return nil
}

func (s *InMemory) UpsertAction(_ context.Context, action models.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := actionKey{BillID: action.BillID, Text: action.Text, Type: action.Type, Date: action.Date}
	if action.CommitteeID != nil {
		key.CommitteeID = *action.CommitteeID
	}
	if _, ok := s.actions[key]; ok {
		return nil
	}
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	s.actions[key] = &action
	return nil
}

func (s *InMemory) AttachCommittee(_ context.Context, billID, committeeID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	addToSet(s.billCommittees, billID, committeeID)
	return nil
}

func (s *InMemory) AttachSubject(_ context.Context, billID, subjectID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	addToSet(s.billSubjects, billID, subjectID)
	return nil
}

func (s *InMemory) LinkRelated(_ context.Context, billID, otherID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	addToSet(s.related, billID, otherID)
	addToSet(s.related, otherID, billID)
	return nil
}

func (s *InMemory) RecordSubjectActivity(_ context.Context, subjectID, legislatorID uuid.UUID, role models.ActivityRole, billID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := activityKey{SubjectID: subjectID, LegislatorID: legislatorID, Role: role}
	entry, ok := s.activities[key]
	if !ok {
		entry = &activityEntry{bills: make(map[uuid.UUID]struct{})}
		s.activities[key] = entry
	}
	if _, counted := entry.bills[billID]; counted {
		return false, nil
	}
	entry.bills[billID] = struct{}{}
	entry.count++
	return true, nil
}

func (s *InMemory) RecordSupport(_ context.Context, subjectID, billID, legislatorID uuid.UUID, bucket models.SupportBucket) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.splits[subjectID]
	if !ok {
		entry = &splitEntry{
			split:   models.SupportSplit{SubjectID: subjectID},
			members: make(map[supportMemberKey]struct{}),
		}
		s.splits[subjectID] = entry
	}
	member := supportMemberKey{BillID: billID, LegislatorID: legislatorID}
	if _, counted := entry.members[member]; counted {
		return false, nil
	}
	entry.members[member] = struct{}{}
	switch bucket {
	case models.BucketDemocratic:
		entry.split.DemocraticCount++
	case models.BucketRepublican:
		entry.split.RepublicanCount++
	case models.BucketIndependent:
		entry.split.IndependentCount++
	}
	return true, nil
}

func (s *InMemory) SponsorsOf(_ context.Context, billID uuid.UUID) ([]models.Legislator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Legislator
	for key := range s.sponsorships {
		if key.BillID == billID {
			out = append(out, s.legislators[key.LegislatorID])
		}
	}
	return out, nil
}

func (s *InMemory) CosponsorsOf(_ context.Context, billID uuid.UUID) ([]models.Legislator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[uuid.UUID]struct{})
	var out []models.Legislator
	for key := range s.cosponsorships {
		if key.BillID != billID {
			continue
		}
		if _, ok := seen[key.LegislatorID]; ok {
			continue
		}
		seen[key.LegislatorID] = struct{}{}
		out = append(out, s.legislators[key.LegislatorID])
	}
	return out, nil
}

func (s *InMemory) CosponsorshipsOf(_ context.Context, billID uuid.UUID) ([]models.Cosponsorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Cosponsorship
	for key, cs := range s.cosponsorships {
		if key.BillID == billID {
			out = append(out, cs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *InMemory) SubjectsOf(_ context.Context, billID uuid.UUID) ([]*models.LegislativeSubject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.LegislativeSubject
	for id := range s.billSubjects[billID] {
		if subject, ok := s.subjectsByID[id]; ok {
			sc := *subject
			out = append(out, &sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) CommitteesOf(_ context.Context, billID uuid.UUID) ([]*models.Committee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Committee
	for id := range s.billCommittees[billID] {
		if committee, ok := s.committeesByID[id]; ok {
			cc := *committee
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) RelatedOf(_ context.Context, billID uuid.UUID) ([]*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Bill
	for id := range s.related[billID] {
		if bill, ok := s.billsByID[id]; ok {
			out = append(out, cloneBill(bill))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}

func (s *InMemory) SummariesOf(_ context.Context, billID uuid.UUID) ([]*models.BillSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.BillSummary
	for key, summary := range s.summaries {
		if key.BillID == billID {
			sc := *summary
			out = append(out, &sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActionDate.Before(out[j].ActionDate) })
	return out, nil
}

func (s *InMemory) ActionsOf(_ context.Context, billID uuid.UUID) ([]*models.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Action
	for key, action := range s.actions {
		if key.BillID == billID {
			ac := *action
			out = append(out, &ac)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *InMemory) SubjectActivityFor(_ context.Context, subjectID, legislatorID uuid.UUID, role models.ActivityRole) (*models.SubjectActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.activities[activityKey{SubjectID: subjectID, LegislatorID: legislatorID, Role: role}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &models.SubjectActivity{
		SubjectID:     subjectID,
		LegislatorID:  legislatorID,
		Role:          role,
		ActivityCount: entry.count,
	}, nil
}

func (s *InMemory) SupportSplitFor(_ context.Context, subjectID uuid.UUID) (*models.SupportSplit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.splits[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	split := entry.split
	return &split, nil
}

func addToSet(sets map[uuid.UUID]map[uuid.UUID]struct{}, key, member uuid.UUID) {
	set, ok := sets[key]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		sets[key] = set
	}
	set[member] = struct{}{}
}

func cloneBill(bill *models.Bill) *models.Bill {
	clone := *bill
	if bill.IntroducedAt != nil {
		t := *bill.IntroducedAt
		clone.IntroducedAt = &t
	}
	if bill.LastModifiedAt != nil {
		t := *bill.LastModifiedAt
		clone.LastModifiedAt = &t
	}
	if bill.PolicyAreaID != nil {
		id := *bill.PolicyAreaID
		clone.PolicyAreaID = &id
	}
	return &clone
}
