package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
)

const mysqlErrDuplicateEntry = 1062

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) SaveApplication(ctx context.Context, a *domain.Application) error {
	const q = `
INSERT INTO applications
(id, full_name, age, address, region_code, employment_status,
 net_monthly_income, credit_obligations_ratio, dependents_under_12, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?);
`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.FullName, a.Age, a.Address, nullString(a.RegionCode), a.EmploymentStatus,
		nullFloat(a.NetMonthlyIncome), nullFloat(a.CreditObligationsRatio), nullInt(a.DependentsUnder12),
		a.CreatedAt,
	)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
		return domain.ErrDuplicateID
	}
	return err
}

func (r *ApplicationRepository) GetApplication(ctx context.Context, id domain.ApplicationID) (*domain.Application, error) {
	const q = `
SELECT id, full_name, age, address, region_code, employment_status,
       net_monthly_income, credit_obligations_ratio, dependents_under_12, created_at
FROM applications
WHERE id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, id)

	var a domain.Application
	var region sql.NullString
	var income, ratio sql.NullFloat64
	var dependents sql.NullInt64
	if err := row.Scan(
		&a.ID, &a.FullName, &a.Age, &a.Address, &region, &a.EmploymentStatus,
		&income, &ratio, &dependents, &a.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.RegionCode = region.String
	a.NetMonthlyIncome = floatPtr(income)
	a.CreditObligationsRatio = floatPtr(ratio)
	a.DependentsUnder12 = intPtr(dependents)
	return &a, nil
}

func (r *ApplicationRepository) SaveDocument(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO documents
(id, application_id, filename, content_type, size_bytes,
 content_text, content_preview, object_url, created_at)
VALUES (?,?,?,?,?,?,?,?,?);
`
	_, err := r.db.ExecContext(ctx, q,
		d.ID, d.ApplicationID, d.Filename, nullString(d.ContentType), d.SizeBytes,
		d.ContentText, d.ContentPreview, nullString(d.ObjectURL), d.CreatedAt,
	)
	return err
}

func (r *ApplicationRepository) ListDocuments(ctx context.Context, id domain.ApplicationID) ([]*domain.Document, error) {
	const q = `
SELECT id, application_id, filename, content_type, size_bytes,
       content_text, content_preview, object_url, created_at
FROM documents
WHERE application_id=? ORDER BY created_at ASC, id ASC;
`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Document
	for rows.Next() {
		var d domain.Document
		var ct, objURL sql.NullString
		if err := rows.Scan(
			&d.ID, &d.ApplicationID, &d.Filename, &ct, &d.SizeBytes,
			&d.ContentText, &d.ContentPreview, &objURL, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.ContentType = ct.String
		d.ObjectURL = objURL.String
		out = append(out, &d)
	}
	return out, rows.Err()
}

// AppendDecision inserts one decision row; decisions are append-only and are
// never updated.
func (r *ApplicationRepository) AppendDecision(ctx context.Context, d *domain.Decision) error {
	const q = `
INSERT INTO decisions
(id, application_id, status, label, probability,
 validation_json, recommendations_json, rationale, created_at)
VALUES (?,?,?,?,?,?,?,?,?);
`
	label, probability := scoreColumns(d.Score)
	validation, err := json.Marshal(d.Validation.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}
	recs, err := json.Marshal(d.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, q,
		d.ID, d.ApplicationID, d.Status, label, probability,
		string(validation), string(recs), d.Rationale, d.CreatedAt,
	)
	return err
}

func (r *ApplicationRepository) ListDecisions(ctx context.Context, id domain.ApplicationID) ([]*domain.Decision, error) {
	const q = decisionSelect + ` WHERE application_id=? ORDER BY created_at ASC, id ASC;`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *ApplicationRepository) LatestDecision(ctx context.Context, id domain.ApplicationID) (*domain.Decision, error) {
	const q = decisionSelect + ` WHERE application_id=? ORDER BY created_at DESC, id DESC LIMIT 1;`
	d, err := scanDecision(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

const decisionSelect = `
SELECT id, application_id, status, label, probability,
       validation_json, recommendations_json, rationale, created_at
FROM decisions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*domain.Decision, error) {
	var d domain.Decision
	var label sql.NullString
	var probability sql.NullFloat64
	var validation, recs string
	if err := row.Scan(
		&d.ID, &d.ApplicationID, &d.Status, &label, &probability,
		&validation, &recs, &d.Rationale, &d.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(validation), &d.Validation.Findings); err != nil {
		return nil, fmt.Errorf("unmarshal findings: %w", err)
	}
	if err := json.Unmarshal([]byte(recs), &d.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	d.Score = scoreFromColumns(label, probability)
	return &d, nil
}

// scoreColumns flattens a ScoreResult onto nullable columns: a nil score
// (run blocked before scoring) stores NULL label and NULL probability; a
// scoring failure stores the review label with NULL probability.
func scoreColumns(s *domain.ScoreResult) (sql.NullString, sql.NullFloat64) {
	if s == nil {
		return sql.NullString{}, sql.NullFloat64{}
	}
	label := sql.NullString{String: string(s.Label), Valid: true}
	if s.Probability == nil {
		return label, sql.NullFloat64{}
	}
	return label, sql.NullFloat64{Float64: *s.Probability, Valid: true}
}

func scoreFromColumns(label sql.NullString, probability sql.NullFloat64) *domain.ScoreResult {
	if !label.Valid {
		return nil
	}
	s := &domain.ScoreResult{Label: domain.Label(label.String)}
	if probability.Valid {
		p := probability.Float64
		s.Probability = &p
	}
	return s
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func intPtr(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int64)
	return &v
}
