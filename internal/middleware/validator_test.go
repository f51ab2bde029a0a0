package middleware

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChapterTitle(t *testing.T) {
	require.NoError(t, ValidateChapterTitle("Chapter 1: Scope"))
	require.Error(t, ValidateChapterTitle(""))
	require.Error(t, ValidateChapterTitle("   "))
	require.Error(t, ValidateChapterTitle(strings.Repeat("x", maxChapterTitleLen+1)))
}

func TestValidateFetchURL(t *testing.T) {
	require.NoError(t, ValidateFetchURL("https://www.rbi.org.in/Scripts/BS_CircularIndexDisplay.aspx"))
	require.NoError(t, ValidateFetchURL("http://example.com/doc.pdf"))

	assert.Error(t, ValidateFetchURL(""))
	assert.Error(t, ValidateFetchURL("ftp://example.com/doc.pdf"))
	assert.Error(t, ValidateFetchURL("http://localhost:8080/x"))
	assert.Error(t, ValidateFetchURL("http://127.0.0.1/x"))
	assert.Error(t, ValidateFetchURL("http://10.0.0.5/x"))
	assert.Error(t, ValidateFetchURL("http://192.168.1.1/x"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeString("  hello world  "))
	assert.Equal(t, "ab", SanitizeString("a\x00b"))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2\x07"))
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(2, 100)

	require.True(t, rl.Allow("1.2.3.4"))
	require.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	// Other clients have their own bucket.
	assert.True(t, rl.Allow("5.6.7.8"))

	assert.Eventually(t, func() bool {
		return rl.Allow("1.2.3.4")
	}, time.Second, 5*time.Millisecond)
}
