package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"leadgen/models"
)

var hexKey = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestFinalize(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 14, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	f := &Finalizer{now: func() time.Time { return fixed }}

	lead := f.Finalize(&models.CanonicalLead{Name: "Acme", Website: "https://acme.io", Source: "yc"})

	assert.Equal(t, "2024-03-09T09:00:00Z", lead.Timestamp)
	assert.Regexp(t, hexKey, lead.HashKey)
	assert.Equal(t, HashKey("Acme", "https://acme.io", "yc"), lead.HashKey)
	assert.Equal(t, fixed.UTC(), lead.ScrapedAt())
}

func TestHashKeyIdentity(t *testing.T) {
	base := HashKey("Acme", "https://acme.io", "yc")

	assert.Equal(t, base, HashKey("ACME", "HTTPS://ACME.IO", "YC"), "case-insensitive")
	assert.NotEqual(t, base, HashKey("Acme", "", "yc"))
	assert.NotEqual(t, base, HashKey("Acme", "https://acme.io", "reddit"))
	assert.NotEqual(t, HashKey("a|b", "", "c"), HashKey("a", "b", "c"))
}

func TestHashKeyIgnoresOtherFields(t *testing.T) {
	f := NewFinalizer()
	a := f.Finalize(&models.CanonicalLead{Name: "Acme", Source: "yc", Description: "one", Score: 3})
	b := f.Finalize(&models.CanonicalLead{
		Name:        "Acme",
		Source:      "yc",
		Description: "two",
		Score:       7,
		Metrics:     map[string]float64{"followers": 10},
	})
	assert.Equal(t, a.HashKey, b.HashKey)
}

func TestHashKeyPadding(t *testing.T) {
	for _, name := range []string{"", "a", "b", "c", "zomato", "leadgen"} {
		assert.Regexp(t, hexKey, HashKey(name, "", ""))
	}
}
