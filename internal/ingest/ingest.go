// Package ingest pulls circular listings from the RBI and SEBI sites,
// stores the rows through the circulars repository, and archives any
// linked PDFs.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finarth/regdesk/internal/application"
	domain "github.com/finarth/regdesk/internal/domain/circulars"
	"github.com/finarth/regdesk/internal/infra/storage"
	"github.com/finarth/regdesk/internal/middleware"
)

const (
	rbiIndexURL    = "https://www.rbi.org.in/Scripts/BS_CircularIndexDisplay.aspx"
	sebiListingURL = "https://www.sebi.gov.in/sebiweb/home/HomeAction.do?doListing=yes&sid=1&ssid=7&smid=0"

	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	maxFetchSize = 32 << 20
)

// Stats summarizes one ingest run.
type Stats struct {
	RunID    string
	Fetched  int
	Stored   int
	Skipped  int
	Archived int
	Failed   int
	Duration time.Duration
}

// Ingester crawls regulator sites and persists what it finds. The archive
// is optional; without one PDFs are recorded but not retained.
type Ingester struct {
	repo     domain.Repository
	archive  storage.Archive
	httpc    *http.Client
	validate func(string) error
	clock    application.Clock

	rbiURL  string
	sebiURL string
}

// New builds an ingester. A nil httpc gets a client with a sane timeout.
func New(repo domain.Repository, archive storage.Archive, httpc *http.Client) *Ingester {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Ingester{
		repo:     repo,
		archive:  archive,
		httpc:    httpc,
		validate: middleware.ValidateFetchURL,
		clock:    application.SystemClock{},
		rbiURL:   rbiIndexURL,
		sebiURL:  sebiListingURL,
	}
}

// RunRBI ingests the RBI circular index: every row is upserted, the
// circular page is scanned for a PDF to archive, and its reference links
// are classified and stored.
func (in *Ingester) RunRBI(ctx context.Context) (Stats, error) {
	middleware.IncrementIngestRuns()
	stats := Stats{RunID: uuid.NewString()}
	started := in.clock.Now()
	log.Printf("ingest run=%s source=rbi url=%s", stats.RunID, in.rbiURL)

	base, body, err := in.fetch(ctx, in.rbiURL)
	if err != nil {
		return stats, fmt.Errorf("fetch rbi index: %w", err)
	}
	rows, err := parseCircularIndex(bytes.NewReader(body), base)
	if err != nil {
		return stats, fmt.Errorf("parse rbi index: %w", err)
	}
	stats.Fetched = len(rows)

	for _, row := range rows {
		if row.CircularNumber == "" {
			stats.Skipped++
			continue
		}
		circ := &domain.Circular{
			CircularNumber: row.CircularNumber,
			DateOfIssue:    normalizeDate(row.DateOfIssue, "02.01.2006"),
			Department:     row.Department,
			Subject:        row.Subject,
			MeantFor:       row.MeantFor,
			CircularURL:    row.URL,
		}
		id, err := in.repo.UpsertCircular(ctx, circ)
		if err != nil {
			log.Printf("ingest run=%s circular=%s store failed: %v", stats.RunID, row.CircularNumber, err)
			stats.Failed++
			continue
		}
		stats.Stored++

		if err := in.ingestCircularPage(ctx, &stats, id, row); err != nil {
			log.Printf("ingest run=%s circular=%s page: %v", stats.RunID, row.CircularNumber, err)
		}
	}

	stats.Duration = in.clock.Now().Sub(started)
	log.Printf("ingest run=%s source=rbi fetched=%d stored=%d archived=%d failed=%d took=%s",
		stats.RunID, stats.Fetched, stats.Stored, stats.Archived, stats.Failed, stats.Duration)
	return stats, nil
}

// ingestCircularPage archives the circular's own PDF and stores its
// reference links. Failures here are non-fatal to the run.
func (in *Ingester) ingestCircularPage(ctx context.Context, stats *Stats, id domain.CircularID, row indexRow) error {
	base, body, err := in.fetch(ctx, row.URL)
	if err != nil {
		return err
	}

	if pdfURL, ok := findPDFLink(bytes.NewReader(body), base); ok {
		key := fmt.Sprintf("rbi/%s/%s.pdf", stats.RunID, safeKey(row.CircularNumber))
		if err := in.archivePDF(ctx, pdfURL, key); err != nil {
			log.Printf("ingest run=%s circular=%s archive: %v", stats.RunID, row.CircularNumber, err)
		} else {
			stats.Archived++
		}
	}

	refs, err := parseReferenceLinks(bytes.NewReader(body), base)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		rec := &domain.Reference{
			CircularID: id,
			Text:       ref.Text,
			URL:        ref.Href,
			LinkType:   classifyLink(ref.Text),
			IsPDF:      strings.HasSuffix(strings.ToLower(ref.Href), ".pdf"),
		}
		if _, err := in.repo.UpsertReference(ctx, rec); err != nil {
			log.Printf("ingest run=%s reference=%s store failed: %v", stats.RunID, ref.Href, err)
			stats.Failed++
		}
	}
	return nil
}

// RunSEBI ingests the SEBI circular listing.
func (in *Ingester) RunSEBI(ctx context.Context) (Stats, error) {
	middleware.IncrementIngestRuns()
	stats := Stats{RunID: uuid.NewString()}
	started := in.clock.Now()
	log.Printf("ingest run=%s source=sebi url=%s", stats.RunID, in.sebiURL)

	base, body, err := in.fetch(ctx, in.sebiURL)
	if err != nil {
		return stats, fmt.Errorf("fetch sebi listing: %w", err)
	}
	rows, err := parseSEBIListing(bytes.NewReader(body), base)
	if err != nil {
		return stats, fmt.Errorf("parse sebi listing: %w", err)
	}
	stats.Fetched = len(rows)

	for _, row := range rows {
		date := normalizeDate(row.Date, "Jan 2, 2006")
		if date == "" || row.Link == "" {
			stats.Skipped++
			continue
		}
		circ := &domain.Circular{
			Subject:     row.Title,
			DateOfIssue: date,
			CircularURL: row.Link,
		}
		if _, err := in.repo.UpsertSEBICircular(ctx, circ); err != nil {
			log.Printf("ingest run=%s sebi link=%s store failed: %v", stats.RunID, row.Link, err)
			stats.Failed++
			continue
		}
		stats.Stored++
	}

	stats.Duration = in.clock.Now().Sub(started)
	log.Printf("ingest run=%s source=sebi fetched=%d stored=%d skipped=%d failed=%d took=%s",
		stats.RunID, stats.Fetched, stats.Stored, stats.Skipped, stats.Failed, stats.Duration)
	return stats, nil
}

// fetch validates the URL, downloads the page, and returns its base URL
// for resolving relative links.
func (in *Ingester) fetch(ctx context.Context, rawURL string) (*url.URL, []byte, error) {
	if err := in.validate(rawURL); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := in.httpc.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return nil, nil, err
	}
	return resp.Request.URL, body, nil
}

func (in *Ingester) archivePDF(ctx context.Context, pdfURL, key string) error {
	if in.archive == nil {
		return nil
	}
	_, body, err := in.fetch(ctx, pdfURL)
	if err != nil {
		return err
	}
	_, err = in.archive.Put(ctx, key, bytes.NewReader(body), int64(len(body)), "application/pdf")
	return err
}

// normalizeDate converts a scraped date into YYYY-MM-DD. Unparseable
// values return "" so callers can skip or store null.
func normalizeDate(raw, layout string) string {
	t, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// safeKey makes a circular number usable as an object key segment.
func safeKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '-'
	}, s)
}
