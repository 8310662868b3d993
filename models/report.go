package models

// BatchReport summarizes one pipeline run so operators can judge how much of
// it ran degraded.
type BatchReport struct {
	RunID             string
	References        int
	LeadsEmitted      int
	FetchFailures     int
	AIFallbacks       int
	DuplicatesSkipped int
	BelowMinScore     int
	Cancelled         int
	SinkErrors        int
	LeadsBySource     map[string]int
	LeadsByVerdict    map[string]int
	AverageScore      float64
	TopLeads          []*CanonicalLead
}

// NewBatchReport returns an empty report for runID.
func NewBatchReport(runID string) *BatchReport {
	return &BatchReport{
		RunID:          runID,
		LeadsBySource:  make(map[string]int),
		LeadsByVerdict: make(map[string]int),
	}
}
