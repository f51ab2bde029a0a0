package audit

import "context"

// StaticProvider serves the built-in fixture dataset. It stands in for a
// real audit backend during development and demos.
type StaticProvider struct {
	audits []Audit
}

// NewStaticProvider returns a provider over the fixture audits.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{audits: fixtureAudits()}
}

func (p *StaticProvider) Audits(ctx context.Context) ([]Audit, error) {
	out := make([]Audit, len(p.audits))
	for i, a := range p.audits {
		out[i] = cloneAudit(a)
	}
	return out, nil
}

func (p *StaticProvider) Audit(ctx context.Context, id string) (Audit, error) {
	for _, a := range p.audits {
		if a.ID == id {
			return cloneAudit(a), nil
		}
	}
	return Audit{}, ErrNotFound
}

// cloneAudit copies the nested slices too, so callers can mutate the result
// without touching the fixture set.
func cloneAudit(a Audit) Audit {
	out := a
	out.Controls = make([]Control, len(a.Controls))
	for i, c := range a.Controls {
		c.Evidence = append([]EvidenceFile(nil), c.Evidence...)
		out.Controls[i] = c
	}
	out.Findings = append([]Finding(nil), a.Findings...)
	return out
}

func fixtureAudits() []Audit {
	return []Audit{
		{
			ID:        "AUD-2025-01",
			Name:      "RBI IT Governance Audit",
			Regulator: "RBI",
			Status:    "In Progress",
			Score:     72,
			StartDate: "2025-01-15",
			EndDate:   "2025-03-30",
			Controls: []Control{
				{
					ID:     "CTL-001",
					Name:   "Access Control Review",
					Status: "Compliant",
					Score:  90,
					Owner:  "IT Security",
					Evidence: []EvidenceFile{
						{Name: "access-review-q4.pdf", UploadedAt: "2025-02-01", Size: "1.2 MB"},
						{Name: "privileged-accounts.xlsx", UploadedAt: "2025-02-03", Size: "340 KB"},
					},
				},
				{
					ID:     "CTL-002",
					Name:   "Data Localisation Compliance",
					Status: "Partial",
					Score:  60,
					Owner:  "Infrastructure",
					Evidence: []EvidenceFile{
						{Name: "storage-inventory.pdf", UploadedAt: "2025-02-10", Size: "800 KB"},
					},
				},
				{
					ID:     "CTL-003",
					Name:   "Incident Response Drill",
					Status: "Non-Compliant",
					Score:  35,
					Owner:  "IT Security",
				},
			},
			Findings: []Finding{
				{ID: "FND-001", Severity: "High", Description: "No documented incident response drill in the last 12 months", Status: "Open", DueDate: "2025-04-15"},
				{ID: "FND-002", Severity: "Medium", Description: "Payment data replicas found outside approved region", Status: "Remediation", DueDate: "2025-05-01"},
			},
		},
		{
			ID:        "AUD-2025-02",
			Name:      "SEBI Cyber Resilience Review",
			Regulator: "SEBI",
			Status:    "Completed",
			Score:     88,
			StartDate: "2024-11-01",
			EndDate:   "2025-01-10",
			Controls: []Control{
				{
					ID:     "CTL-101",
					Name:   "VAPT Coverage",
					Status: "Compliant",
					Score:  95,
					Owner:  "IT Security",
					Evidence: []EvidenceFile{
						{Name: "vapt-report-2024.pdf", UploadedAt: "2024-12-12", Size: "4.1 MB"},
					},
				},
				{
					ID:     "CTL-102",
					Name:   "SOC Monitoring",
					Status: "Compliant",
					Score:  82,
					Owner:  "Operations",
				},
			},
			Findings: []Finding{
				{ID: "FND-101", Severity: "Low", Description: "SOC escalation matrix missing two contacts", Status: "Closed", DueDate: "2025-01-05"},
			},
		},
	}
}
