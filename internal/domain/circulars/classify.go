package circulars

import "strings"

// Classify buckets references into external and internal groups. A reference
// counts as external when it points at the regulator's own site, mentions
// FEMA, or is a master direction / notification; everything else is internal.
func Classify(refs []Reference) ReferenceGroups {
	g := ReferenceGroups{
		External: []Reference{},
		Internal: []Reference{},
		Count:    len(refs),
	}
	for _, r := range refs {
		text := strings.ToLower(r.Text)
		url := strings.ToLower(r.URL)
		link := strings.ToLower(r.LinkType)

		if strings.Contains(url, "rbi.org") || strings.Contains(text, "fema") ||
			link == "master direction" || link == "notification" {
			g.External = append(g.External, r)
		} else {
			g.Internal = append(g.Internal, r)
		}
	}
	return g
}
