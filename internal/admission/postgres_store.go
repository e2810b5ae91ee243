package admission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"intake/internal/apperr"
)

const recordColumns = `id, first_name, last_name, email, phone, programme, intake, country, ` +
	`education_level, notes, status, created_at, approved_by, approved_at, source`

// fieldColumns whitelists the columns FindAllByField may filter on.
var fieldColumns = map[Field]string{
	FieldID:        "id",
	FieldEmail:     "email",
	FieldPhone:     "phone",
	FieldStatus:    "status",
	FieldProgramme: "programme",
	FieldIntake:    "intake",
	FieldCountry:   "country",
}

// PostgresStore persists admissions in Postgres. Insertion order is kept
// by a serial column.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store on an open connection.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the admissions table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS admissions (
			seq             BIGSERIAL,
			id              TEXT PRIMARY KEY,
			first_name      TEXT NOT NULL DEFAULT '',
			last_name       TEXT NOT NULL DEFAULT '',
			email           TEXT NOT NULL DEFAULT '',
			phone           TEXT NOT NULL DEFAULT '',
			programme       TEXT NOT NULL DEFAULT '',
			intake          TEXT NOT NULL DEFAULT '',
			country         TEXT NOT NULL DEFAULT '',
			education_level TEXT NOT NULL DEFAULT '',
			notes           TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL DEFAULT 'pending',
			created_at      TIMESTAMPTZ NOT NULL,
			approved_by     TEXT,
			approved_at     TIMESTAMPTZ,
			source          TEXT NOT NULL
		)
	`)
	if err != nil {
		return apperr.IO("postgres.schema", err)
	}
	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_admissions_email ON admissions(email)`)
	return apperr.IO("postgres.schema", err)
}

func (s *PostgresStore) Append(ctx context.Context, r Record) (Record, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admissions (`+recordColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, r.ID, r.FirstName, r.LastName, r.Email, r.Phone, r.Programme, r.Intake, r.Country,
		r.EducationLevel, r.Notes, string(r.Status), r.CreatedAt, r.ApprovedBy, r.ApprovedAt, r.Source)
	if err != nil {
		return Record{}, apperr.IO("postgres.append", err)
	}
	return r, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM admissions WHERE id = $1`, id)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, apperr.IO("postgres.find", err)
	}
	return r, true, nil
}

func (s *PostgresStore) FindAllByField(ctx context.Context, field Field, value string) ([]Record, error) {
	col, ok := fieldColumns[field]
	if !ok {
		return []Record{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM admissions WHERE `+col+` = $1 ORDER BY seq`, value)
	if err != nil {
		return nil, apperr.IO("postgres.find_all", err)
	}
	return collect(rows)
}

func (s *PostgresStore) UpdateByID(ctx context.Context, id string, patch Patch) (Record, bool, error) {
	var status, approvedBy, approvedAt, notes any
	if patch.Status != nil {
		status = string(*patch.Status)
	}
	if patch.ApprovedBy != nil {
		approvedBy = *patch.ApprovedBy
	}
	if patch.ApprovedAt != nil {
		approvedAt = *patch.ApprovedAt
	}
	if patch.Notes != nil {
		notes = *patch.Notes
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE admissions
		SET status = COALESCE($2, status),
			approved_by = COALESCE($3, approved_by),
			approved_at = COALESCE($4, approved_at),
			notes = COALESCE($5, notes)
		WHERE id = $1
		RETURNING `+recordColumns, id, status, approvedBy, approvedAt, notes)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, apperr.IO("postgres.update", err)
	}
	return r, true, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM admissions ORDER BY seq`)
	if err != nil {
		return nil, apperr.IO("postgres.list", err)
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		r          Record
		status     string
		approvedBy sql.NullString
		approvedAt sql.NullTime
	)
	err := row.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.Programme, &r.Intake,
		&r.Country, &r.EducationLevel, &r.Notes, &status, &r.CreatedAt, &approvedBy, &approvedAt, &r.Source)
	if err != nil {
		return Record{}, err
	}
	r.Status = Status(status)
	if approvedBy.Valid {
		by := approvedBy.String
		r.ApprovedBy = &by
	}
	if approvedAt.Valid {
		at := approvedAt.Time.UTC()
		r.ApprovedAt = &at
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func collect(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, apperr.IO("postgres.scan", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.IO("postgres.rows", fmt.Errorf("iterate admissions: %w", err))
	}
	return out, nil
}
