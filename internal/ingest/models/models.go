package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chamber identifies a congressional chamber. The zero value means the
// originating chamber is unknown or undefined for the bill type.
type Chamber string

const (
	ChamberSenate Chamber = "Senate"
	ChamberHouse  Chamber = "House"
)

// Party is a read-only lookup value loaded from the party table at startup.
type Party struct {
	Name         string `yaml:"name"`
	Abbreviation string `yaml:"abbreviation"`
}

// State is a read-only lookup value loaded from the state table at startup.
type State struct {
	Name         string `yaml:"name"`
	Abbreviation string `yaml:"abbreviation"`
}

// District is a congressional district, keyed by (state, number).
type District struct {
	ID        uuid.UUID
	StateCode string
	Number    int
}

func (d District) String() string {
	return fmt.Sprintf("%s-%d", d.StateCode, d.Number)
}

// Bill is a piece of legislation tracked by its canonical source URL. The URL
// is the idempotency key for re-ingestion; a bill created with only a URL is a
// stub holding a place in the relation graph.
type Bill struct {
	ID                 uuid.UUID
	URL                string
	Type               string
	Number             int
	Title              string
	Congress           int
	IntroducedAt       *time.Time
	LastModifiedAt     *time.Time
	OriginatingChamber Chamber
	PolicyAreaID       *uuid.UUID
}

// Assembled reports whether descriptive fields have been populated, i.e. the
// bill is no longer a stub.
func (b *Bill) Assembled() bool {
	return b.Type != ""
}

// Legislator is the shared surface of the Senator and Representative variants.
// The variant is chosen at creation time from district presence in the source
// record and never changes afterwards.
type Legislator interface {
	LegislatorID() uuid.UUID
	FullName() string
	PartyCode() string
	StateCode() string
	Chamber() Chamber
}

// Senator is a legislator without a district, keyed by
// (first name, last name, state, party).
type Senator struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Party     string
	State     string
}

func (s *Senator) LegislatorID() uuid.UUID { return s.ID }
func (s *Senator) FullName() string        { return s.FirstName + " " + s.LastName }
func (s *Senator) PartyCode() string       { return s.Party }
func (s *Senator) StateCode() string       { return s.State }
func (s *Senator) Chamber() Chamber        { return ChamberSenate }

func (s *Senator) String() string {
	return fmt.Sprintf("Sen. %s %s [%s-%s]", s.FirstName, s.LastName, s.Party, s.State)
}

// Representative is a legislator with a district, keyed by
// (first name, last name, state, party, district).
type Representative struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Party     string
	State     string
	District  District
}

func (r *Representative) LegislatorID() uuid.UUID { return r.ID }
func (r *Representative) FullName() string        { return r.FirstName + " " + r.LastName }
func (r *Representative) PartyCode() string       { return r.Party }
func (r *Representative) StateCode() string       { return r.State }
func (r *Representative) Chamber() Chamber        { return ChamberHouse }

func (r *Representative) String() string {
	return fmt.Sprintf("Rep. %s %s [%s-%s]", r.FirstName, r.LastName, r.Party, r.District)
}

// Committee is keyed by (name, system code). Chamber and type reflect the most
// recently ingested source document.
type Committee struct {
	ID         uuid.UUID
	Name       string
	SystemCode string
	Type       string
	Chamber    string
}

// PolicyArea is a top-level subject classification, keyed by name. A bill has
// at most one.
type PolicyArea struct {
	ID   uuid.UUID
	Name string
}

// LegislativeSubject is a fine-grained subject tag, keyed by name.
type LegislativeSubject struct {
	ID   uuid.UUID
	Name string
}

// Sponsorship links a legislator to a bill they sponsor. Existence alone
// encodes sponsorship; the pair is unique.
type Sponsorship struct {
	BillID       uuid.UUID
	LegislatorID uuid.UUID
}

// Cosponsorship links a cosponsoring legislator to a bill. The uniqueness key
// is the full tuple, not just (bill, legislator): the same legislator must not
// duplicate on a later pass carrying the same date and flag.
type Cosponsorship struct {
	BillID            uuid.UUID
	LegislatorID      uuid.UUID
	Date              time.Time
	IsOriginalSponsor bool
}

// BillSummary is keyed by (bill, name, action date); text and description may
// be updated in place on re-ingestion.
type BillSummary struct {
	ID          uuid.UUID
	BillID      uuid.UUID
	Name        string
	ActionDate  time.Time
	Text        string
	Description string
}

// Action records a legislative action on a bill. Committee may be nil. The
// uniqueness key is the full tuple.
type Action struct {
	ID          uuid.UUID
	BillID      uuid.UUID
	CommitteeID *uuid.UUID
	Text        string
	Type        string
	Date        time.Time
}

// ActivityRole distinguishes how a legislator engaged with a bill.
type ActivityRole string

const (
	RoleSponsor   ActivityRole = "sponsor"
	RoleCosponsor ActivityRole = "cosponsor"
)

// SubjectActivity is a running per-(subject, legislator, role) counter of
// bills. The store guards it with a bill-membership set so a re-ingested bill
// never increments twice.
type SubjectActivity struct {
	SubjectID     uuid.UUID
	LegislatorID  uuid.UUID
	Role          ActivityRole
	ActivityCount int
}

// SupportBucket is the partisan classification used by support splits.
type SupportBucket string

const (
	BucketDemocratic  SupportBucket = "democratic"
	BucketRepublican  SupportBucket = "republican"
	BucketIndependent SupportBucket = "independent"
)

// SupportSplit is a running per-subject tally of partisan backing, guarded by
// a per-(bill, legislator) membership set.
type SupportSplit struct {
	SubjectID        uuid.UUID
	DemocraticCount  int
	RepublicanCount  int
	IndependentCount int
}
