package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"billgraph/internal/ingest/models"
	"billgraph/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// Postgres persists the bill graph in PostgreSQL. Uniqueness constraints in
// the schema mirror the natural keys on the model types, so concurrent
// get-or-create calls resolve through ON CONFLICT instead of racing.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies the embedded schema. All statements are idempotent.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const billColumns = `id, url, bill_type, bill_number, title, congress, introduced_at, last_modified_at, originating_chamber, policy_area_id`

func scanBill(row interface{ Scan(...any) error }) (*models.Bill, error) {
	var (
		b            models.Bill
		introduced   sql.NullTime
		lastModified sql.NullTime
		policyArea   uuid.NullUUID
	)
	err := row.Scan(&b.ID, &b.URL, &b.Type, &b.Number, &b.Title, &b.Congress,
		&introduced, &lastModified, &b.OriginatingChamber, &policyArea)
	if err != nil {
		return nil, err
	}
	if introduced.Valid {
		t := introduced.Time
		b.IntroducedAt = &t
	}
	if lastModified.Valid {
		t := lastModified.Time
		b.LastModifiedAt = &t
	}
	if policyArea.Valid {
		id := policyArea.UUID
		b.PolicyAreaID = &id
	}
	return &b, nil
}

func (s *Postgres) GetOrCreateBill(ctx context.Context, url string) (*models.Bill, bool, error) {
	id := uuid.New()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO bills (id, url) VALUES ($1, $2)
		ON CONFLICT (url) DO NOTHING
		RETURNING id
	`, id, url).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		bill, err := s.GetBillByURL(ctx, url)
		if err != nil {
			return nil, false, err
		}
		return bill, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create bill: %w", err)
	}
	return &models.Bill{ID: id, URL: url}, true, nil
}

func (s *Postgres) GetBillByURL(ctx context.Context, url string) (*models.Bill, error) {
	bill, err := scanBill(s.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE url = $1`, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bill by url: %w", err)
	}
	return bill, nil
}

func (s *Postgres) GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	bill, err := scanBill(s.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	return bill, nil
}

// UpdateBill rewrites the descriptive fields; the URL natural key is
// immutable and left untouched.
func (s *Postgres) UpdateBill(ctx context.Context, bill *models.Bill) error {
	var policyArea uuid.NullUUID
	if bill.PolicyAreaID != nil {
		policyArea = uuid.NullUUID{UUID: *bill.PolicyAreaID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE bills
		SET bill_type = $2, bill_number = $3, title = $4, congress = $5,
		    introduced_at = $6, last_modified_at = $7,
		    originating_chamber = $8, policy_area_id = $9
		WHERE id = $1
	`, bill.ID, bill.Type, bill.Number, bill.Title, bill.Congress,
		nullTime(bill.IntroducedAt), nullTime(bill.LastModifiedAt),
		string(bill.OriginatingChamber), policyArea)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) GetOrCreateDistrict(ctx context.Context, stateCode string, number int) (*models.District, bool, error) {
	id := uuid.New()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO districts (id, state_code, district_number) VALUES ($1, $2, $3)
		ON CONFLICT (state_code, district_number) DO NOTHING
		RETURNING id
	`, id, stateCode, number).Scan(&id)
	created := true
	if errors.Is(err, sql.ErrNoRows) {
		created = false
		err = s.db.QueryRowContext(ctx,
			`SELECT id FROM districts WHERE state_code = $1 AND district_number = $2`,
			stateCode, number).Scan(&id)
	}
	if err != nil {
		return nil, false, fmt.Errorf("get or create district: %w", err)
	}
	return &models.District{ID: id, StateCode: stateCode, Number: number}, created, nil
}

func (s *Postgres) GetOrCreateSenator(ctx context.Context, firstName, lastName, state, party string) (*models.Senator, bool, error) {
	id, created, err := s.getOrCreateLegislator(ctx, firstName, lastName, state, party, uuid.NullUUID{}, string(models.ChamberSenate))
	if err != nil {
		return nil, false, err
	}
	return &models.Senator{ID: id, FirstName: firstName, LastName: lastName, State: state, Party: party}, created, nil
}

func (s *Postgres) GetOrCreateRepresentative(ctx context.Context, firstName, lastName, state, party string, district models.District) (*models.Representative, bool, error) {
	id, created, err := s.getOrCreateLegislator(ctx, firstName, lastName, state, party,
		uuid.NullUUID{UUID: district.ID, Valid: true}, string(models.ChamberHouse))
	if err != nil {
		return nil, false, err
	}
	return &models.Representative{ID: id, FirstName: firstName, LastName: lastName, State: state, Party: party, District: district}, created, nil
}

func (s *Postgres) getOrCreateLegislator(ctx context.Context, firstName, lastName, state, party string, districtID uuid.NullUUID, chamber string) (uuid.UUID, bool, error) {
	id := uuid.New()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO legislators (id, first_name, last_name, state, party, district_id, chamber)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (first_name, last_name, state, party, district_id) DO NOTHING
		RETURNING id
	`, id, firstName, lastName, state, party, districtID, chamber).Scan(&id)
	created := true
	if errors.Is(err, sql.ErrNoRows) {
		created = false
		err = s.db.QueryRowContext(ctx, `
			SELECT id FROM legislators
			WHERE first_name = $1 AND last_name = $2 AND state = $3 AND party = $4
			  AND district_id IS NOT DISTINCT FROM $5
		`, firstName, lastName, state, party, districtID).Scan(&id)
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("get or create legislator: %w", err)
	}
	return id, created, nil
}

// UpsertCommittee is last-write-wins for chamber and type, except that an
// empty incoming value never clobbers a populated one: action records
// reference committees by name and code only.
func (s *Postgres) UpsertCommittee(ctx context.Context, name, systemCode, chamber, committeeType string) (*models.Committee, error) {
	c := models.Committee{ID: uuid.New(), Name: name, SystemCode: systemCode}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO committees (id, name, system_code, committee_type, chamber)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name, system_code) DO UPDATE SET
			committee_type = CASE WHEN EXCLUDED.committee_type <> '' THEN EXCLUDED.committee_type ELSE committees.committee_type END,
			chamber        = CASE WHEN EXCLUDED.chamber <> '' THEN EXCLUDED.chamber ELSE committees.chamber END
		RETURNING id, committee_type, chamber
	`, c.ID, name, systemCode, committeeType, chamber).Scan(&c.ID, &c.Type, &c.Chamber)
	if err != nil {
		return nil, fmt.Errorf("upsert committee: %w", err)
	}
	return &c, nil
}

func (s *Postgres) GetOrCreatePolicyArea(ctx context.Context, name string) (*models.PolicyArea, bool, error) {
	id, created, err := s.getOrCreateNamed(ctx, "policy_areas", name)
	if err != nil {
		return nil, false, fmt.Errorf("get or create policy area: %w", err)
	}
	return &models.PolicyArea{ID: id, Name: name}, created, nil
}

func (s *Postgres) GetOrCreateSubject(ctx context.Context, name string) (*models.LegislativeSubject, bool, error) {
	id, created, err := s.getOrCreateNamed(ctx, "legislative_subjects", name)
	if err != nil {
		return nil, false, fmt.Errorf("get or create subject: %w", err)
	}
	return &models.LegislativeSubject{ID: id, Name: name}, created, nil
}

// getOrCreateNamed handles the two name-keyed lookup tables. The table name
// is one of two compile-time constants, never caller input.
func (s *Postgres) getOrCreateNamed(ctx context.Context, table, name string) (uuid.UUID, bool, error) {
	id := uuid.New()
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`, table), id, name).Scan(&id)
	created := true
	if errors.Is(err, sql.ErrNoRows) {
		created = false
		err = s.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT id FROM %s WHERE name = $1`, table), name).Scan(&id)
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, created, nil
}

func (s *Postgres) UpsertSponsorship(ctx context.Context, billID, legislatorID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sponsorships (bill_id, legislator_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, billID, legislatorID)
	if err != nil {
		return fmt.Errorf("upsert sponsorship: %w", err)
	}
	return nil
}

func (s *Postgres) UpsertCosponsorship(ctx context.Context, cs models.Cosponsorship) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cosponsorships (bill_id, legislator_id, cosponsored_at, is_original_sponsor)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, cs.BillID, cs.LegislatorID, cs.Date, cs.IsOriginalSponsor)
	if err != nil {
		return fmt.Errorf("upsert cosponsorship: %w", err)
	}
	return nil
}

func (s *Postgres) UpsertSummary(ctx context.Context, summary models.BillSummary) error {
	id := summary.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bill_summaries (id, bill_id, name, action_date, body, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (bill_id, name, action_date) DO UPDATE SET
			body = EXCLUDED.body, description = EXCLUDED.description
	`, id, summary.BillID, summary.Name, summary.ActionDate, summary.Text, summary.Description)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

func (s *Postgres) UpsertAction(ctx context.Context, action models.Action) error {
	id := action.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var committee uuid.NullUUID
	if action.CommitteeID != nil {
		committee = uuid.NullUUID{UUID: *action.CommitteeID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (id, bill_id, committee_id, action_text, action_type, action_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (bill_id, committee_id, action_text, action_type, action_date) DO NOTHING
	`, id, action.BillID, committee, action.Text, action.Type, action.Date)
	if err != nil {
		return fmt.Errorf("upsert action: %w", err)
	}
	return nil
}

func (s *Postgres) AttachCommittee(ctx context.Context, billID, committeeID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bill_committees (bill_id, committee_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, billID, committeeID)
	if err != nil {
		return fmt.Errorf("attach committee: %w", err)
	}
	return nil
}

func (s *Postgres) AttachSubject(ctx context.Context, billID, subjectID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bill_subjects (bill_id, subject_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, billID, subjectID)
	if err != nil {
		return fmt.Errorf("attach subject: %w", err)
	}
	return nil
}

// LinkRelated stores both directions so RelatedOf stays a single-table scan.
func (s *Postgres) LinkRelated(ctx context.Context, billID, otherID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO related_bills (bill_id, related_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT DO NOTHING
	`, billID, otherID)
	if err != nil {
		return fmt.Errorf("link related bills: %w", err)
	}
	return nil
}

func (s *Postgres) RecordSubjectActivity(ctx context.Context, subjectID, legislatorID uuid.UUID, role models.ActivityRole, billID uuid.UUID) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("record subject activity: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO subject_activity_bills (subject_id, legislator_id, role, bill_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, subjectID, legislatorID, string(role), billID)
	if err != nil {
		return false, fmt.Errorf("record subject activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record subject activity: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO subject_activity (subject_id, legislator_id, role, activity_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (subject_id, legislator_id, role) DO UPDATE SET
			activity_count = subject_activity.activity_count + 1
	`, subjectID, legislatorID, string(role))
	if err != nil {
		return false, fmt.Errorf("record subject activity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("record subject activity: %w", err)
	}
	return true, nil
}

func (s *Postgres) RecordSupport(ctx context.Context, subjectID, billID, legislatorID uuid.UUID, bucket models.SupportBucket) (bool, error) {
	var column string
	switch bucket {
	case models.BucketDemocratic:
		column = "democratic_count"
	case models.BucketRepublican:
		column = "republican_count"
	case models.BucketIndependent:
		column = "independent_count"
	default:
		return false, fmt.Errorf("record support: unknown bucket %q", bucket)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("record support: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO subject_support_members (subject_id, bill_id, legislator_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, subjectID, billID, legislatorID)
	if err != nil {
		return false, fmt.Errorf("record support: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record support: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO subject_support (subject_id, %[1]s) VALUES ($1, 1)
		ON CONFLICT (subject_id) DO UPDATE SET %[1]s = subject_support.%[1]s + 1
	`, column), subjectID)
	if err != nil {
		return false, fmt.Errorf("record support: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("record support: %w", err)
	}
	return true, nil
}

const legislatorColumns = `l.id, l.first_name, l.last_name, l.state, l.party, l.chamber, d.id, d.state_code, d.district_number`

func scanLegislator(rows *sql.Rows) (models.Legislator, error) {
	var (
		id                    uuid.UUID
		firstName, lastName   string
		state, party, chamber string
		districtID            uuid.NullUUID
		districtState         sql.NullString
		districtNumber        sql.NullInt64
	)
	err := rows.Scan(&id, &firstName, &lastName, &state, &party, &chamber,
		&districtID, &districtState, &districtNumber)
	if err != nil {
		return nil, err
	}
	if districtID.Valid {
		return &models.Representative{
			ID: id, FirstName: firstName, LastName: lastName, State: state, Party: party,
			District: models.District{
				ID:        districtID.UUID,
				StateCode: districtState.String,
				Number:    int(districtNumber.Int64),
			},
		}, nil
	}
	return &models.Senator{ID: id, FirstName: firstName, LastName: lastName, State: state, Party: party}, nil
}

func (s *Postgres) queryLegislators(ctx context.Context, query string, args ...any) ([]models.Legislator, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Legislator
	for rows.Next() {
		l, err := scanLegislator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Postgres) SponsorsOf(ctx context.Context, billID uuid.UUID) ([]models.Legislator, error) {
	out, err := s.queryLegislators(ctx, `
		SELECT `+legislatorColumns+`
		FROM sponsorships sp
		JOIN legislators l ON l.id = sp.legislator_id
		LEFT JOIN districts d ON d.id = l.district_id
		WHERE sp.bill_id = $1
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("sponsors of bill: %w", err)
	}
	return out, nil
}

func (s *Postgres) CosponsorsOf(ctx context.Context, billID uuid.UUID) ([]models.Legislator, error) {
	out, err := s.queryLegislators(ctx, `
		SELECT DISTINCT `+legislatorColumns+`
		FROM cosponsorships cs
		JOIN legislators l ON l.id = cs.legislator_id
		LEFT JOIN districts d ON d.id = l.district_id
		WHERE cs.bill_id = $1
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("cosponsors of bill: %w", err)
	}
	return out, nil
}

func (s *Postgres) CosponsorshipsOf(ctx context.Context, billID uuid.UUID) ([]models.Cosponsorship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, legislator_id, cosponsored_at, is_original_sponsor
		FROM cosponsorships WHERE bill_id = $1
		ORDER BY cosponsored_at
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("cosponsorships of bill: %w", err)
	}
	defer rows.Close()

	var out []models.Cosponsorship
	for rows.Next() {
		var cs models.Cosponsorship
		if err := rows.Scan(&cs.BillID, &cs.LegislatorID, &cs.Date, &cs.IsOriginalSponsor); err != nil {
			return nil, fmt.Errorf("cosponsorships of bill: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (s *Postgres) SubjectsOf(ctx context.Context, billID uuid.UUID) ([]*models.LegislativeSubject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ls.id, ls.name
		FROM bill_subjects bs
		JOIN legislative_subjects ls ON ls.id = bs.subject_id
		WHERE bs.bill_id = $1
		ORDER BY ls.name
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("subjects of bill: %w", err)
	}
	defer rows.Close()

	var out []*models.LegislativeSubject
	for rows.Next() {
		var subject models.LegislativeSubject
		if err := rows.Scan(&subject.ID, &subject.Name); err != nil {
			return nil, fmt.Errorf("subjects of bill: %w", err)
		}
		out = append(out, &subject)
	}
	return out, rows.Err()
}

func (s *Postgres) CommitteesOf(ctx context.Context, billID uuid.UUID) ([]*models.Committee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.system_code, c.committee_type, c.chamber
		FROM bill_committees bc
		JOIN committees c ON c.id = bc.committee_id
		WHERE bc.bill_id = $1
		ORDER BY c.name
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("committees of bill: %w", err)
	}
	defer rows.Close()

	var out []*models.Committee
	for rows.Next() {
		var c models.Committee
		if err := rows.Scan(&c.ID, &c.Name, &c.SystemCode, &c.Type, &c.Chamber); err != nil {
			return nil, fmt.Errorf("committees of bill: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *Postgres) RelatedOf(ctx context.Context, billID uuid.UUID) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+billColumns+`
		FROM bills WHERE id IN (
			SELECT related_id FROM related_bills WHERE bill_id = $1
		)
		ORDER BY url
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("related bills: %w", err)
	}
	defer rows.Close()

	var out []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("related bills: %w", err)
		}
		out = append(out, bill)
	}
	return out, rows.Err()
}

func (s *Postgres) SummariesOf(ctx context.Context, billID uuid.UUID) ([]*models.BillSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bill_id, name, action_date, body, description
		FROM bill_summaries WHERE bill_id = $1
		ORDER BY action_date
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("summaries of bill: %w", err)
	}
	defer rows.Close()

	var out []*models.BillSummary
	for rows.Next() {
		var summary models.BillSummary
		if err := rows.Scan(&summary.ID, &summary.BillID, &summary.Name, &summary.ActionDate,
			&summary.Text, &summary.Description); err != nil {
			return nil, fmt.Errorf("summaries of bill: %w", err)
		}
		out = append(out, &summary)
	}
	return out, rows.Err()
}

func (s *Postgres) ActionsOf(ctx context.Context, billID uuid.UUID) ([]*models.Action, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bill_id, committee_id, action_text, action_type, action_date
		FROM actions WHERE bill_id = $1
		ORDER BY action_date
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("actions of bill: %w", err)
	}
	defer rows.Close()

	var out []*models.Action
	for rows.Next() {
		var (
			action    models.Action
			committee uuid.NullUUID
		)
		if err := rows.Scan(&action.ID, &action.BillID, &committee,
			&action.Text, &action.Type, &action.Date); err != nil {
			return nil, fmt.Errorf("actions of bill: %w", err)
		}
		if committee.Valid {
			id := committee.UUID
			action.CommitteeID = &id
		}
		out = append(out, &action)
	}
	return out, rows.Err()
}

func (s *Postgres) SubjectActivityFor(ctx context.Context, subjectID, legislatorID uuid.UUID, role models.ActivityRole) (*models.SubjectActivity, error) {
	activity := models.SubjectActivity{SubjectID: subjectID, LegislatorID: legislatorID, Role: role}
	err := s.db.QueryRowContext(ctx, `
		SELECT activity_count FROM subject_activity
		WHERE subject_id = $1 AND legislator_id = $2 AND role = $3
	`, subjectID, legislatorID, string(role)).Scan(&activity.ActivityCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("subject activity: %w", err)
	}
	return &activity, nil
}

func (s *Postgres) SupportSplitFor(ctx context.Context, subjectID uuid.UUID) (*models.SupportSplit, error) {
	split := models.SupportSplit{SubjectID: subjectID}
	err := s.db.QueryRowContext(ctx, `
		SELECT democratic_count, republican_count, independent_count
		FROM subject_support WHERE subject_id = $1
	`, subjectID).Scan(&split.DemocraticCount, &split.RepublicanCount, &split.IndependentCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("support split: %w", err)
	}
	return &split, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
