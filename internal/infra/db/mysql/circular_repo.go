package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

// CircularRepository persists circulars and references over the scraped
// rbi_data schema (circulars, sebi_circulars, circular_references).
type CircularRepository struct {
	db *sql.DB
}

func NewCircularRepository(db *sql.DB) *CircularRepository {
	return &CircularRepository{db: db}
}

// ListCirculars returns all RBI circulars, newest first. Dates come back as
// preformatted display strings; callers never parse them.
func (r *CircularRepository) ListCirculars(ctx context.Context) ([]domain.Circular, error) {
	const q = `
SELECT id, circular_number, DATE_FORMAT(date_of_issue, '%Y-%m-%d'),
       department, subject, meant_for
FROM circulars
ORDER BY date_of_issue DESC;
`
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

// ListSEBICirculars returns SEBI circulars mapped onto the common shape. The
// source table uses different column names; they are aliased here so one
// entity serves both regulators.
func (r *CircularRepository) ListSEBICirculars(ctx context.Context) ([]domain.Circular, error) {
	const q = `
SELECT id, DATE_FORMAT(circular_date, '%Y-%m-%d'),
       title, link, department
FROM sebi_circulars
ORDER BY circular_date DESC;
`
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
SELECT id, circular_number, DATE_FORMAT(date_of_issue, '%Y-%m-%d'),
       department, subject, meant_for, circular_url, pdf_text
FROM circulars
WHERE id = ? LIMIT 1;
`
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

// UpsertCircular inserts or refreshes a circular keyed on circular_number.
// LAST_INSERT_ID(id) makes the row id come back on both paths.
func (r *CircularRepository) UpsertCircular(ctx context.Context, c *domain.Circular) (domain.CircularID, error) {
	const q = `
INSERT INTO circulars
(circular_number, date_of_issue, department, subject, meant_for, circular_url, pdf_text)
VALUES (?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 id = LAST_INSERT_ID(id),
 department = VALUES(department),
 subject    = VALUES(subject),
 meant_for  = VALUES(meant_for),
 pdf_text   = COALESCE(VALUES(pdf_text), pdf_text);
`
	res, err := r.db.ExecContext(ctx, q,
		c.CircularNumber, c.DateOfIssue, c.Department, c.Subject,
		c.MeantFor, c.CircularURL, nullable(c.PDFText),
	)
	if err != nil {
		return 0, fmt.Errorf("upsert circular %q: %w", c.CircularNumber, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return domain.CircularID(id), nil
}

// UpsertSEBICircular mirrors UpsertCircular for the sebi_circulars table,
// keyed on the listing link.
func (r *CircularRepository) UpsertSEBICircular(ctx context.Context, c *domain.Circular) (domain.CircularID, error) {
	const q = `
INSERT INTO sebi_circulars (circular_date, title, link, department)
VALUES (?,?,?,?)
ON DUPLICATE KEY UPDATE
 id = LAST_INSERT_ID(id),
 title      = VALUES(title),
 department = VALUES(department);
`
	res, err := r.db.ExecContext(ctx, q,
		c.DateOfIssue, c.Subject, c.CircularURL, c.Department,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert sebi circular %q: %w", c.CircularURL, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return domain.CircularID(id), nil
}

// nullable maps "" to NULL so upserts never clobber stored text with blanks.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
