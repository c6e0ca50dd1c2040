// Package resolve looks up or creates the canonical lookup entities referenced
// from bill records: parties, states, districts, committees, and the
// Senator/Representative legislator variants.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"billgraph/internal/ingest/models"
)

// UnknownPartyError reports a party code outside the fixed enumeration.
// Unknown codes fail hard so data-quality issues in the source surface
// immediately instead of being defaulted away.
type UnknownPartyError struct {
	Code string
}

func (e *UnknownPartyError) Error() string {
	return fmt.Sprintf("unknown party code %q", e.Code)
}

// UnknownStateError reports a postal abbreviation missing from the state table.
type UnknownStateError struct {
	Code string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown state code %q", e.Code)
}

// Store is the slice of the document store the resolver needs.
type Store interface {
	GetOrCreateDistrict(ctx context.Context, stateCode string, number int) (*models.District, bool, error)
	GetOrCreateSenator(ctx context.Context, firstName, lastName, state, party string) (*models.Senator, bool, error)
	GetOrCreateRepresentative(ctx context.Context, firstName, lastName, state, party string, district models.District) (*models.Representative, bool, error)
	UpsertCommittee(ctx context.Context, name, systemCode, chamber, committeeType string) (*models.Committee, error)
}

// Resolver resolves short codes from bill records into canonical entities.
type Resolver struct {
	store   Store
	parties map[string]models.Party
	states  map[string]models.State
	log     *slog.Logger
}

func New(store Store, tables *Tables, log *slog.Logger) *Resolver {
	parties := make(map[string]models.Party, len(tables.Parties))
	for _, p := range tables.Parties {
		parties[p.Abbreviation] = p
	}
	states := make(map[string]models.State, len(tables.States))
	for _, s := range tables.States {
		states[s.Abbreviation] = s
	}
	return &Resolver{store: store, parties: parties, states: states, log: log}
}

// Party resolves a party code against the fixed enumeration.
func (r *Resolver) Party(code string) (models.Party, error) {
	party, ok := r.parties[code]
	if !ok {
		return models.Party{}, &UnknownPartyError{Code: code}
	}
	return party, nil
}

// State resolves a postal abbreviation against the state table.
func (r *Resolver) State(code string) (models.State, error) {
	state, ok := r.states[code]
	if !ok {
		return models.State{}, &UnknownStateError{Code: code}
	}
	return state, nil
}

// Committee upserts a committee keyed by (name, system code). Chamber and
// type are last-write-wins so committee metadata tracks the most recent
// source document.
func (r *Resolver) Committee(ctx context.Context, name, systemCode, chamber, committeeType string) (*models.Committee, error) {
	committee, err := r.store.UpsertCommittee(ctx, name, systemCode, chamber, committeeType)
	if err != nil {
		return nil, fmt.Errorf("upsert committee %q: %w", name, err)
	}
	return committee, nil
}

// Legislator gets or creates the legislator variant for a source record:
// a Representative when a district number is present, a Senator otherwise.
// Names are title-cased before storage; the source sends them upper-case.
func (r *Resolver) Legislator(ctx context.Context, firstName, lastName, stateCode, partyCode string, district *int) (models.Legislator, error) {
	state, err := r.State(stateCode)
	if err != nil {
		return nil, err
	}
	party, err := r.Party(partyCode)
	if err != nil {
		return nil, err
	}

	firstName = FixName(firstName)
	lastName = FixName(lastName)

	if district != nil {
		d, _, err := r.store.GetOrCreateDistrict(ctx, state.Abbreviation, *district)
		if err != nil {
			return nil, fmt.Errorf("get or create district %s-%d: %w", state.Abbreviation, *district, err)
		}
		rep, _, err := r.store.GetOrCreateRepresentative(ctx, firstName, lastName, state.Abbreviation, party.Abbreviation, *d)
		if err != nil {
			return nil, fmt.Errorf("get or create representative %s %s: %w", firstName, lastName, err)
		}
		return rep, nil
	}

	sen, _, err := r.store.GetOrCreateSenator(ctx, firstName, lastName, state.Abbreviation, party.Abbreviation)
	if err != nil {
		return nil, fmt.Errorf("get or create senator %s %s: %w", firstName, lastName, err)
	}
	return sen, nil
}

// FixName rewrites an all-uppercase source name to title case: first rune
// upper, remainder lower. Nothing beyond that; "o'brien" becomes "O'brien".
func FixName(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	head := string(unicode.ToUpper(runes[0]))
	return head + strings.ToLower(string(runes[1:]))
}
