package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

const referenceColumns = `
id, circular_id, reference_text, reference_url, link_type, is_pdf, pdf_text,
DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s')`

func scanReference(row interface{ Scan(...any) error }) (*domain.Reference, error) {
	var ref domain.Reference
	var text, url, linkType, pdfText, createdAt sql.NullString
	var isPDF sql.NullBool
	if err := row.Scan(
		&ref.ID, &ref.CircularID, &text, &url, &linkType, &isPDF, &pdfText, &createdAt,
	); err != nil {
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
	q := `SELECT` + referenceColumns + `
FROM circular_references
WHERE circular_id = ?;
`
	rows, err := r.db.QueryContext(ctx, q, circularID)
	if err != nil {
		return nil, fmt.Errorf("list references for circular %d: %w", circularID, err)
	}
	defer rows.Close()

	var out []domain.Reference
	for rows.Next() {
		ref, err := scanReference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		// List rows stay light; full text only comes back from Get.
		ref.PDFText = ""
		out = append(out, *ref)
	}
	return out, rows.Err()
}

func (r *CircularRepository) GetReference(ctx context.Context, circularID domain.CircularID, refID int64) (*domain.Reference, error) {
	q := `SELECT` + referenceColumns + `
FROM circular_references
WHERE id = ? AND circular_id = ? LIMIT 1;
`
	ref, err := scanReference(r.db.QueryRowContext(ctx, q, refID, circularID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reference %d: %w", refID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get reference %d: %w", refID, err)
	}
	return ref, nil
}

func (r *CircularRepository) GetReferenceByID(ctx context.Context, refID int64) (*domain.Reference, error) {
	q := `SELECT` + referenceColumns + `
FROM circular_references
WHERE id = ? LIMIT 1;
`
	ref, err := scanReference(r.db.QueryRowContext(ctx, q, refID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reference %d: %w", refID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get reference %d: %w", refID, err)
	}
	return ref, nil
}

// UpsertReference inserts a reference or refreshes its extracted text. The
// table has no natural unique key, so identity is (circular_id, reference_url).
func (r *CircularRepository) UpsertReference(ctx context.Context, ref *domain.Reference) (int64, error) {
	const sel = `
SELECT id FROM circular_references
WHERE circular_id = ? AND reference_url = ? LIMIT 1;
`
	var id int64
	err := r.db.QueryRowContext(ctx, sel, ref.CircularID, ref.URL).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		const ins = `
INSERT INTO circular_references
(circular_id, reference_text, reference_url, link_type, is_pdf, pdf_text)
VALUES (?,?,?,?,?,?);
`
		res, err := r.db.ExecContext(ctx, ins,
			ref.CircularID, ref.Text, ref.URL, ref.LinkType, ref.IsPDF, nullable(ref.PDFText),
		)
		if err != nil {
			return 0, fmt.Errorf("insert reference %q: %w", ref.URL, err)
		}
		return res.LastInsertId()
	case err != nil:
		return 0, fmt.Errorf("lookup reference %q: %w", ref.URL, err)
	}

	const upd = `
UPDATE circular_references
SET reference_text = ?, link_type = ?, is_pdf = ?,
    pdf_text = COALESCE(?, pdf_text)
WHERE id = ?;
`
	if _, err := r.db.ExecContext(ctx, upd,
		ref.Text, ref.LinkType, ref.IsPDF, nullable(ref.PDFText), id,
	); err != nil {
		return 0, fmt.Errorf("update reference %d: %w", id, err)
	}
	return id, nil
}
