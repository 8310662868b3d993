package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"leadgen/models"
	"leadgen/utils"
)

// TopLeadCount is how many of the weakest-branded leads a report lists.
const TopLeadCount = 10

// InsightService fills the aggregate part of a BatchReport and renders it.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Summarize sets LeadsEmitted, LeadsBySource, LeadsByVerdict, AverageScore
// and TopLeads on report from the emitted leads. Run counters set by the
// pipeline are left alone.
func (s *InsightService) Summarize(report *models.BatchReport, leads []*models.CanonicalLead) *models.BatchReport {
	if report.LeadsBySource == nil {
		report.LeadsBySource = make(map[string]int)
	}
	if report.LeadsByVerdict == nil {
		report.LeadsByVerdict = make(map[string]int)
	}

	report.LeadsEmitted = len(leads)
	if len(leads) == 0 {
		report.AverageScore = 0
		report.TopLeads = nil
		return report
	}

	total := 0
	for _, l := range leads {
		report.LeadsBySource[l.Source]++
		report.LeadsByVerdict[l.Analysis.Verdict]++
		total += l.Score
	}
	report.AverageScore = round2(float64(total) / float64(len(leads)))

	ranked := make([]*models.CanonicalLead, len(leads))
	copy(ranked, leads)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > TopLeadCount {
		ranked = ranked[:TopLeadCount]
	}
	report.TopLeads = ranked

	s.logger.Debug("[insights] %d leads, average score %.2f", report.LeadsEmitted, report.AverageScore)
	return report
}

// Print renders the report for a terminal.
func (s *InsightService) Print(w io.Writer, r *models.BatchReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 LEAD GENERATION REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Run ID                 : %s\n", r.RunID)
	fmt.Fprintf(w, "  References             : \033[1m%d\033[0m\n", r.References)
	fmt.Fprintf(w, "  Leads emitted          : \033[1m%d\033[0m\n", r.LeadsEmitted)
	fmt.Fprintf(w, "  Average score          : \033[1m%.2f\033[0m\n", r.AverageScore)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Degradation\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Fetch failures         : %d\n", r.FetchFailures)
	fmt.Fprintf(w, "  AI fallbacks           : %d\n", r.AIFallbacks)
	fmt.Fprintf(w, "  Duplicates skipped     : %d\n", r.DuplicatesSkipped)
	fmt.Fprintf(w, "  Below minimum score    : %d\n", r.BelowMinScore)
	fmt.Fprintf(w, "  Cancelled references   : %d\n", r.Cancelled)
	fmt.Fprintf(w, "  Sink errors            : %d\n", r.SinkErrors)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top %d Outreach Candidates\033[0m\n", TopLeadCount)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopLeads) == 0 {
		fmt.Fprintf(w, "  No leads emitted\n")
	} else {
		for i, l := range r.TopLeads {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-36s %-10s \033[1;32m%d/9\033[0m\n",
				i+1, truncate(l.Name, 34), l.Source, l.Score)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Leads by Source\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.LeadsBySource) == 0 {
		fmt.Fprintf(w, "  No source data\n")
	} else {
		type sourceCount struct {
			source string
			count  int
		}
		var sources []sourceCount
		for src, cnt := range r.LeadsBySource {
			sources = append(sources, sourceCount{src, cnt})
		}
		sort.Slice(sources, func(i, j int) bool {
			if sources[i].count != sources[j].count {
				return sources[i].count > sources[j].count
			}
			return sources[i].source < sources[j].source
		})
		for _, sc := range sources {
			bar := strings.Repeat("█", min(sc.count, 40))
			fmt.Fprintf(w, "  %-20s %s (%d)\n", sc.source, bar, sc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
