package circulars

// CircularID identifies a circular row.
type CircularID int64

// Regulator enum
type Regulator string

const (
	RegulatorRBI  Regulator = "RBI"
	RegulatorSEBI Regulator = "SEBI"
)

// Circular is a regulatory notice tracked by the system. Dates are kept as
// display strings exactly as stored; nothing downstream parses them.
type Circular struct {
	ID             CircularID `json:"id"`
	CircularNumber string     `json:"circular_number,omitempty"`
	DateOfIssue    string     `json:"date_of_issue"`
	Department     string     `json:"department"`
	Subject        string     `json:"subject"`
	MeantFor       string     `json:"meant_for,omitempty"`
	CircularURL    string     `json:"circular_url,omitempty"`
	PDFText        string     `json:"-"`
}

// Clause is one extracted obligation from a circular. Text is the single
// canonical field; legacy aliases are folded into it at the API boundary.
type Clause struct {
	Number  int    `json:"number"`
	Text    string `json:"clause"`
	Impact  string `json:"impact,omitempty"`
	Penalty string `json:"penalty,omitempty"`
}

// Insights is the AI impact assessment for a circular. Treated as one atomic
// value: either the whole object is present or none of it is.
type Insights struct {
	OrganizationImpact string `json:"organizationImpact"`
	TechnicalChanges   string `json:"technicalChanges"`
	OperationalChanges string `json:"operationalChanges"`
	DisclosureAreas    string `json:"disclosureAreas"`
}

// Reference is a document cited by a circular.
type Reference struct {
	ID         int64      `json:"id"`
	CircularID CircularID `json:"circular_id,omitempty"`
	Text       string     `json:"reference_text"`
	URL        string     `json:"reference_url"`
	LinkType   string     `json:"link_type"`
	IsPDF      bool       `json:"is_pdf"`
	PDFText    string     `json:"pdf_text,omitempty"`
	CreatedAt  string     `json:"created_at,omitempty"`
}

// ReferenceGroups splits a circular's references for display.
type ReferenceGroups struct {
	External []Reference `json:"external"`
	Internal []Reference `json:"internal"`
	Count    int         `json:"count"`
}

// Chapter is an AI-generated subdivision of a reference document.
type Chapter struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Actionable is one structured task derived from a clause.
type Actionable struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Departments []string `json:"departments"`
}
