// Package audit holds the compliance-audit entities shown in the audit
// tracking views. Data comes through a Provider so the static fixture set
// can later be swapped for a real backend without touching consumers.
package audit

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("audit not found")

// EvidenceFile is one uploaded artifact attached to a control.
type EvidenceFile struct {
	Name       string `json:"name"`
	UploadedAt string `json:"uploaded_at"`
	Size       string `json:"size"`
}

// Control is one audited requirement with its collected evidence.
type Control struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Score    int            `json:"score"`
	Owner    string         `json:"owner"`
	Evidence []EvidenceFile `json:"evidence"`
}

// Finding is an observed gap raised during an audit.
type Finding struct {
	ID          string `json:"id"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
}

// Audit is one compliance audit with precomputed score and status.
type Audit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Regulator string    `json:"regulator"`
	Status    string    `json:"status"`
	Score     int       `json:"score"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Controls  []Control `json:"controls"`
	Findings  []Finding `json:"findings"`
}

// Provider serves audits to the dashboard.
type Provider interface {
	Audits(ctx context.Context) ([]Audit, error)
	Audit(ctx context.Context, id string) (Audit, error)
}
