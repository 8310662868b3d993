package storage

import "leadgen/models"

// LeadWriter is the interface any sink must satisfy. Write may be called
// more than once; each call receives finalized leads only.
type LeadWriter interface {
	Write(leads []*models.CanonicalLead) error
	Close() error
}
