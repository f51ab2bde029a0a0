package middleware

import (
	"fmt"
	"net/url"
	"strings"
)

// Input validation and sanitization utilities

const maxChapterTitleLen = 200

// ValidateChapterTitle checks a chapter title query parameter. Titles come
// from model output echoed back by the SPA, so length is the only trusted
// bound.
func ValidateChapterTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("chapter title cannot be empty")
	}
	if len(title) > maxChapterTitleLen {
		return fmt.Errorf("chapter title too long (max %d chars)", maxChapterTitleLen)
	}
	return nil
}

// ValidateFetchURL validates URLs before the ingester downloads them.
func ValidateFetchURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}

	// Never fetch loopback/internal hosts even if a listing page links them
	host := strings.ToLower(u.Hostname())
	blocked := []string{"localhost", "127.0.0.1", "0.0.0.0", "::"}
	for _, b := range blocked {
		if strings.Contains(host, b) {
			return fmt.Errorf("localhost/internal IPs are not allowed")
		}
	}
	if strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "192.168.") ||
		strings.HasPrefix(host, "172.16.") ||
		strings.HasPrefix(host, "172.31.") {
		return fmt.Errorf("private IP ranges are not allowed")
	}

	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
