package prompt

import "fmt"

// ChatSystem is the system prompt for the conversational endpoint.
func ChatSystem() string {
	return `You are BankLLM — an expert AI trained on RBI, SEBI, FEMA, NBFC and Indian financial compliance.
Rules:
- Give clear, accurate regulatory answers.
- Never generate laws or circulars that don't exist.
- Keep responses concise unless asked for depth.
- Avoid markdown unless necessary.
- Tone: professional.`
}

// CircularSummary asks for a short plain-text summary of a circular.
func CircularSummary(subject, text string) string {
	return fmt.Sprintf(`You are an RBI regulatory expert.
Write a short plain-text summary.

Circular: %s

Text:
%s`, subject, text)
}

// Clauses asks for compliance clauses as a bare JSON array.
func Clauses(text string) string {
	return fmt.Sprintf(`Extract compliance clauses only.

Return ONLY JSON:
[
  { "clause": "", "impact": "", "penalty": "" }
]

Text:
%s`, text)
}

// Insights asks for the four-field impact assessment as a JSON object.
func Insights(text string) string {
	return fmt.Sprintf(`Return JSON ONLY:

{
  "organizationImpact": "",
  "technicalChanges": "",
  "operationalChanges": "",
  "disclosureAreas": ""
}

Text:
%s`, text)
}

// ReferenceSummary asks for a clean summary of a cited document.
func ReferenceSummary(title, text string) string {
	return fmt.Sprintf(`You are a senior RBI compliance expert.
Write a clean plain-text summary (NO markdown).

Reference: %s

Text:
%s`, title, text)
}

// Chapters asks for 4-6 short chapter titles as a JSON array.
func Chapters(text string) string {
	return fmt.Sprintf(`You are an RBI compliance analyst.
Generate 4-6 chapters.
Short titles only (3-7 words).
Return ONLY this JSON:
[
  { "title": "..." }
]

Text:
%s`, text)
}

// ChapterSummary asks for a 3-4 sentence summary of one chapter. The parent
// document summary, when available, is prepended as extra context.
func ChapterSummary(title, parentSummary, text string) string {
	context := text
	if parentSummary != "" {
		context = fmt.Sprintf("Document summary:\n%s\n\n%s", parentSummary, text)
	}
	return fmt.Sprintf(`You are an RBI compliance expert.
Write a concise 3-4 sentence summary for:
"%s"

Context:
%s`, title, context)
}

// Actionables asks for three structured tasks derived from a clause.
func Actionables(clause string) string {
	return fmt.Sprintf(`Convert the following regulatory clause into 3 structured actionables.
Use JSON ONLY in this format:

[
  {
    "title": "",
    "description": "",
    "departments": ["Compliance", "Accounts"]
  }
]

Clause:
%s`, clause)
}
