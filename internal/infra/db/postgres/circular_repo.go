package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

// CircularRepository is the Postgres twin of the MySQL repository, for
// deployments that keep the scraped schema in Postgres instead.
type CircularRepository struct{ db *sql.DB }

func NewCircularRepository(db *sql.DB) *CircularRepository { return &CircularRepository{db: db} }

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

func str(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func (r *CircularRepository) ListCirculars(ctx context.Context) ([]domain.Circular, error) {
	const q = `
SELECT id, circular_number, to_char(date_of_issue, 'YYYY-MM-DD'),
       department, subject, meant_for
FROM circulars
ORDER BY date_of_issue DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list circulars: %w", err)
	}
	defer rows.Close()

	var out []domain.Circular
	for rows.Next() {
		var c domain.Circular
		var date, dept, subject, meantFor sql.NullString
		if err := rows.Scan(&c.ID, &c.CircularNumber, &date, &dept, &subject, &meantFor); err != nil {
			return nil, fmt.Errorf("scan circular: %w", err)
		}
		c.DateOfIssue = str(date)
		c.Department = str(dept)
		c.Subject = str(subject)
		c.MeantFor = str(meantFor)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CircularRepository) ListSEBICirculars(ctx context.Context) ([]domain.Circular, error) {
	const q = `
SELECT id, to_char(circular_date, 'YYYY-MM-DD'), title, link, department
FROM sebi_circulars
ORDER BY circular_date DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list sebi circulars: %w", err)
	}
	defer rows.Close()

	var out []domain.Circular
	for rows.Next() {
		var c domain.Circular
		var date, title, link, dept sql.NullString
		if err := rows.Scan(&c.ID, &date, &title, &link, &dept); err != nil {
			return nil, fmt.Errorf("scan sebi circular: %w", err)
		}
		c.DateOfIssue = str(date)
		c.Subject = str(title)
		c.CircularURL = str(link)
		c.Department = str(dept)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CircularRepository) GetCircular(ctx context.Context, id domain.CircularID) (*domain.Circular, error) {
	const q = `
SELECT id, circular_number, to_char(date_of_issue, 'YYYY-MM-DD'),
       department, subject, meant_for, circular_url, pdf_text
FROM circulars
WHERE id = $1 LIMIT 1;`
	var c domain.Circular
	var date, dept, subject, meantFor, url, pdfText sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.CircularNumber, &date, &dept, &subject, &meantFor, &url, &pdfText,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("circular %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get circular %d: %w", id, err)
	}
	c.DateOfIssue = str(date)
	c.Department = str(dept)
	c.Subject = str(subject)
	c.MeantFor = str(meantFor)
	c.CircularURL = str(url)
	c.PDFText = str(pdfText)
	return &c, nil
}

const refColumns = `
id, circular_id, reference_text, reference_url, link_type, is_pdf, pdf_text,
to_char(created_at, 'YYYY-MM-DD HH24:MI:SS')`

func scanRef(row interface{ Scan(...any) error }) (*domain.Reference, error) {
	var ref domain.Reference
	var text, url, linkType, pdfText, createdAt sql.NullString
	var isPDF sql.NullBool
	if err := row.Scan(&ref.ID, &ref.CircularID, &text, &url, &linkType, &isPDF, &pdfText, &createdAt); err != nil {
		return nil, err
	}
	ref.Text = str(text)
	ref.URL = str(url)
	ref.LinkType = str(linkType)
	ref.IsPDF = isPDF.Valid && isPDF.Bool
	ref.PDFText = str(pdfText)
	ref.CreatedAt = str(createdAt)
	return &ref, nil
}

func (r *CircularRepository) ListReferences(ctx context.Context, circularID domain.CircularID) ([]domain.Reference, error) {
	q := `SELECT` + refColumns + `
FROM circular_references
WHERE circular_id = $1;`
	rows, err := r.db.QueryContext(ctx, q, circularID)
	if err != nil {
		return nil, fmt.Errorf("list references for circular %d: %w", circularID, err)
	}
	defer rows.Close()

	var out []domain.Reference
	for rows.Next() {
		ref, err := scanRef(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		ref.PDFText = ""
		out = append(out, *ref)
	}
	return out, rows.Err()
}

func (r *CircularRepository) GetReference(ctx context.Context, circularID domain.CircularID, refID int64) (*domain.Reference, error) {
	q := `SELECT` + refColumns + `
FROM circular_references
WHERE id = $1 AND circular_id = $2 LIMIT 1;`
	ref, err := scanRef(r.db.QueryRowContext(ctx, q, refID, circularID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reference %d: %w", refID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get reference %d: %w", refID, err)
	}
	return ref, nil
}

func (r *CircularRepository) GetReferenceByID(ctx context.Context, refID int64) (*domain.Reference, error) {
	q := `SELECT` + refColumns + `
FROM circular_references
WHERE id = $1 LIMIT 1;`
	ref, err := scanRef(r.db.QueryRowContext(ctx, q, refID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reference %d: %w", refID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get reference %d: %w", refID, err)
	}
	return ref, nil
}

func (r *CircularRepository) UpsertCircular(ctx context.Context, c *domain.Circular) (domain.CircularID, error) {
	const q = `
INSERT INTO circulars
(circular_number, date_of_issue, department, subject, meant_for, circular_url, pdf_text)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (circular_number) DO UPDATE SET
 department = EXCLUDED.department,
 subject    = EXCLUDED.subject,
 meant_for  = EXCLUDED.meant_for,
 pdf_text   = COALESCE(EXCLUDED.pdf_text, circulars.pdf_text)
RETURNING id;`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		c.CircularNumber, c.DateOfIssue, c.Department, c.Subject,
		c.MeantFor, c.CircularURL, nullable(c.PDFText),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert circular %q: %w", c.CircularNumber, err)
	}
	return domain.CircularID(id), nil
}

func (r *CircularRepository) UpsertSEBICircular(ctx context.Context, c *domain.Circular) (domain.CircularID, error) {
	const q = `
INSERT INTO sebi_circulars (circular_date, title, link, department)
VALUES ($1,$2,$3,$4)
ON CONFLICT (link) DO UPDATE SET
 title      = EXCLUDED.title,
 department = EXCLUDED.department
RETURNING id;`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		c.DateOfIssue, c.Subject, c.CircularURL, c.Department,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert sebi circular %q: %w", c.CircularURL, err)
	}
	return domain.CircularID(id), nil
}

func (r *CircularRepository) UpsertReference(ctx context.Context, ref *domain.Reference) (int64, error) {
	const q = `
INSERT INTO circular_references
(circular_id, reference_text, reference_url, link_type, is_pdf, pdf_text)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (circular_id, reference_url) DO UPDATE SET
 reference_text = EXCLUDED.reference_text,
 link_type      = EXCLUDED.link_type,
 is_pdf         = EXCLUDED.is_pdf,
 pdf_text       = COALESCE(EXCLUDED.pdf_text, circular_references.pdf_text)
RETURNING id;`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		ref.CircularID, ref.Text, ref.URL, ref.LinkType, ref.IsPDF, nullable(ref.PDFText),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert reference %q: %w", ref.URL, err)
	}
	return id, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
