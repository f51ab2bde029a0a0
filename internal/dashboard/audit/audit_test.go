package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProviderListsAudits(t *testing.T) {
	p := NewStaticProvider()

	audits, err := p.Audits(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, audits)
	for _, a := range audits {
		assert.NotEmpty(t, a.ID)
		assert.NotEmpty(t, a.Regulator)
		assert.NotEmpty(t, a.Controls)
	}
}

func TestStaticProviderLookup(t *testing.T) {
	p := NewStaticProvider()

	a, err := p.Audit(context.Background(), "AUD-2025-01")
	require.NoError(t, err)
	assert.Equal(t, "RBI IT Governance Audit", a.Name)
	require.NotEmpty(t, a.Controls[0].Evidence)

	_, err = p.Audit(context.Background(), "AUD-9999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuditsReturnsACopy(t *testing.T) {
	p := NewStaticProvider()

	first, err := p.Audits(context.Background())
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := p.Audits(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second[0].Name)
}

func TestAuditCopiesNestedSlices(t *testing.T) {
	p := NewStaticProvider()

	a, err := p.Audit(context.Background(), "AUD-2025-01")
	require.NoError(t, err)
	a.Controls[0].Status = "mutated"
	a.Controls[0].Evidence[0].Name = "mutated.pdf"
	a.Findings[0].Status = "mutated"

	fresh, err := p.Audit(context.Background(), "AUD-2025-01")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", fresh.Controls[0].Status)
	assert.NotEqual(t, "mutated.pdf", fresh.Controls[0].Evidence[0].Name)
	assert.NotEqual(t, "mutated", fresh.Findings[0].Status)
}
