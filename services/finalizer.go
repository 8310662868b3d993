package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"leadgen/models"
)

// Finalizer stamps a lead with its timestamp and identity hash.
type Finalizer struct {
	now func() time.Time
}

// NewFinalizer creates a Finalizer using the wall clock.
func NewFinalizer() *Finalizer {
	return &Finalizer{now: time.Now}
}

// Finalize sets Timestamp (RFC 3339, UTC) and HashKey on lead and returns it.
func (f *Finalizer) Finalize(lead *models.CanonicalLead) *models.CanonicalLead {
	lead.Timestamp = f.now().UTC().Format(time.RFC3339)
	lead.HashKey = HashKey(lead.Name, lead.Website, lead.Source)
	return lead
}

// HashKey is the dedup identity of a lead: xxhash64 of
// lower(name)|lower(website)|lower(source), as 16 hex digits.
func HashKey(name, website, source string) string {
	key := strings.ToLower(name) + "|" + strings.ToLower(website) + "|" + strings.ToLower(source)
	sum := strconv.FormatUint(xxhash.Sum64String(key), 16)
	return strings.Repeat("0", 16-len(sum)) + sum
}
