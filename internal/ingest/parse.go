package ingest

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// indexRow is one row of the RBI circular index table.
type indexRow struct {
	CircularNumber string
	DateOfIssue    string
	Department     string
	Subject        string
	MeantFor       string
	URL            string
}

// sebiRow is one row of the SEBI circular listing.
type sebiRow struct {
	Date  string
	Title string
	Link  string
}

// anchorRef is a raw link pulled from a circular page.
type anchorRef struct {
	Text string
	Href string
}

// parseCircularIndex extracts circular rows from the RBI index page. A row
// qualifies when it has at least five cells and the first cell links to the
// circular detail page.
func parseCircularIndex(r io.Reader, base *url.URL) ([]indexRow, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var rows []indexRow
	for _, tr := range findAll(doc, "tr") {
		cells := findAll(tr, "td")
		if len(cells) < 5 {
			continue
		}
		a := firstAnchor(cells[0])
		if a == nil {
			continue
		}
		href := resolve(base, attrVal(a, "href"))
		if href == "" {
			continue
		}
		rows = append(rows, indexRow{
			CircularNumber: CleanText(nodeText(a)),
			DateOfIssue:    CleanText(nodeText(cells[1])),
			Department:     CleanText(nodeText(cells[2])),
			Subject:        CleanText(nodeText(cells[3])),
			MeantFor:       CleanText(nodeText(cells[4])),
			URL:            href,
		})
	}
	return rows, nil
}

// parseSEBIListing finds the table whose headers include Date and Title and
// extracts its rows.
func parseSEBIListing(r io.Reader, base *url.URL) ([]sebiRow, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var target *html.Node
	for _, table := range findAll(doc, "table") {
		var headers []string
		for _, th := range findAll(table, "th") {
			headers = append(headers, CleanText(nodeText(th)))
		}
		if contains(headers, "Date") && contains(headers, "Title") {
			target = table
			break
		}
	}
	if target == nil {
		return nil, nil
	}

	var rows []sebiRow
	for _, tr := range findAll(target, "tr") {
		cells := findAll(tr, "td")
		if len(cells) < 2 {
			continue
		}
		row := sebiRow{
			Date:  CleanText(nodeText(cells[0])),
			Title: CleanText(nodeText(cells[1])),
		}
		if a := firstAnchor(cells[1]); a != nil {
			row.Link = resolve(base, attrVal(a, "href"))
		}
		if row.Link != "" {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// parseReferenceLinks collects usable anchors from a circular page,
// deduplicated by resolved URL. Fragment-only and javascript links are
// skipped.
func parseReferenceLinks(r io.Reader, base *url.URL) ([]anchorRef, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := contentArea(doc)
	seen := make(map[string]bool)
	var refs []anchorRef
	for _, a := range findAll(root, "a") {
		text := CleanText(nodeText(a))
		raw := attrVal(a, "href")
		if text == "" || raw == "" || strings.HasPrefix(raw, "#") ||
			strings.Contains(strings.ToLower(raw), "javascript") {
			continue
		}
		href := resolve(base, raw)
		if href == "" || seen[href] {
			continue
		}
		seen[href] = true
		refs = append(refs, anchorRef{Text: text, Href: href})
	}
	return refs, nil
}

// findPDFLink returns the first anchor whose href points at a PDF.
func findPDFLink(r io.Reader, base *url.URL) (string, bool) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", false
	}
	for _, a := range findAll(doc, "a") {
		href := attrVal(a, "href")
		if strings.Contains(strings.ToLower(href), ".pdf") {
			return resolve(base, href), true
		}
	}
	return "", false
}

// classifyLink maps a reference's text onto its document type.
func classifyLink(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "direction"):
		return "Master Direction"
	case strings.Contains(lower, "master circular"):
		return "Master Circular"
	case strings.Contains(lower, "notification"):
		return "Notification"
	}
	return "Other"
}

// contentArea narrows the parse to the page's main content div when one
// exists, falling back to the first table, then the whole document.
func contentArea(doc *html.Node) *html.Node {
	for _, div := range findAll(doc, "div") {
		if attrVal(div, "id") == "content" || strings.Contains(attrVal(div, "class"), "content") {
			return div
		}
	}
	if tables := findAll(doc, "table"); len(tables) > 0 {
		return tables[0]
	}
	return doc
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func firstAnchor(n *html.Node) *html.Node {
	if anchors := findAll(n, "a"); len(anchors) > 0 {
		return anchors[0]
	}
	return nil
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func resolve(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
