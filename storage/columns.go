package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"leadgen/models"
)

// FixedColumns is the export column order every tabular sink starts with.
var FixedColumns = []string{
	"source", "source_url", "name", "industry_category", "description",
	"website", "website_present", "score", "analysis.verdict", "analysis.confidence", "timestamp",
}

// Trailing columns after the flattened maps.
const (
	colReasoning = "analysis.reasoning"
	colHashKey   = "hash_key"
)

var mapPrefixes = []string{"socials.", "contact_info.", "metrics.", "assets."}

// Columns returns the header for leads: FixedColumns, the sorted dotted keys
// of every nested map present in the batch, then reasoning and hash key.
func Columns(leads []*models.CanonicalLead) []string {
	dotted := make(map[string]struct{})
	for _, l := range leads {
		for k := range l.Socials {
			dotted["socials."+k] = struct{}{}
		}
		for k := range l.ContactInfo {
			dotted["contact_info."+k] = struct{}{}
		}
		for k := range l.Metrics {
			dotted["metrics."+k] = struct{}{}
		}
		for k := range l.Assets {
			dotted["assets."+k] = struct{}{}
		}
	}

	extra := make([]string, 0, len(dotted))
	for k := range dotted {
		extra = append(extra, k)
	}
	sort.Strings(extra)

	cols := make([]string, 0, len(FixedColumns)+len(extra)+2)
	cols = append(cols, FixedColumns...)
	cols = append(cols, extra...)
	return append(cols, colReasoning, colHashKey)
}

// cellValue renders one column of a lead as text. Absent map keys render empty.
func cellValue(l *models.CanonicalLead, col string) string {
	switch col {
	case "source":
		return l.Source
	case "source_url":
		return l.SourceURL
	case "name":
		return l.Name
	case "industry_category":
		return l.IndustryCategory
	case "description":
		return l.Description
	case "website":
		return l.Website
	case "website_present":
		return strconv.FormatBool(l.WebsitePresent)
	case "score":
		return strconv.Itoa(l.Score)
	case "analysis.verdict":
		return l.Analysis.Verdict
	case "analysis.confidence":
		return formatFloat(l.Analysis.Confidence)
	case "timestamp":
		return l.Timestamp
	case colReasoning:
		return reasoningCell(l.Analysis.Reasoning)
	case colHashKey:
		return l.HashKey
	}

	switch prefix, key := splitDotted(col); prefix {
	case "socials.":
		return l.Socials[key]
	case "contact_info.":
		return l.ContactInfo[key]
	case "assets.":
		return l.Assets[key]
	case "metrics.":
		if v, ok := l.Metrics[key]; ok {
			return formatFloat(v)
		}
	}
	return ""
}

// Row renders a lead in column order.
func Row(l *models.CanonicalLead, cols []string) []string {
	row := make([]string, len(cols))
	for i, c := range cols {
		row[i] = cellValue(l, c)
	}
	return row
}

// parseRow rebuilds a lead from a header and one record. Empty cells leave
// nested map keys absent.
func parseRow(cols, record []string) (*models.CanonicalLead, error) {
	l := &models.CanonicalLead{
		Socials:     make(map[string]string),
		ContactInfo: make(map[string]string),
		Metrics:     make(map[string]float64),
		Assets:      make(map[string]string),
	}

	for i, col := range cols {
		if i >= len(record) {
			break
		}
		v := record[i]

		var err error
		switch col {
		case "source":
			l.Source = v
		case "source_url":
			l.SourceURL = v
		case "name":
			l.Name = v
		case "industry_category":
			l.IndustryCategory = v
		case "description":
			l.Description = v
		case "website":
			l.Website = v
		case "website_present":
			l.WebsitePresent, err = strconv.ParseBool(v)
		case "score":
			l.Score, err = strconv.Atoi(v)
		case "analysis.verdict":
			l.Analysis.Verdict = v
		case "analysis.confidence":
			if v != "" {
				l.Analysis.Confidence, err = strconv.ParseFloat(v, 64)
			}
		case "timestamp":
			l.Timestamp = v
		case colReasoning:
			if v != "" {
				err = json.Unmarshal([]byte(v), &l.Analysis.Reasoning)
			}
		case colHashKey:
			l.HashKey = v
		default:
			err = setDotted(l, col, v)
		}
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
	}
	return l, nil
}

func setDotted(l *models.CanonicalLead, col, v string) error {
	if v == "" {
		return nil
	}
	switch prefix, key := splitDotted(col); prefix {
	case "socials.":
		l.Socials[key] = v
	case "contact_info.":
		l.ContactInfo[key] = v
	case "assets.":
		l.Assets[key] = v
	case "metrics.":
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		l.Metrics[key] = f
	}
	return nil
}

func splitDotted(col string) (prefix, key string) {
	for _, p := range mapPrefixes {
		if strings.HasPrefix(col, p) {
			return p, strings.TrimPrefix(col, p)
		}
	}
	return "", col
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// reasoningCell stores analysis.reasoning as a JSON array so items may
// contain any separator.
func reasoningCell(reasoning []string) string {
	if len(reasoning) == 0 {
		return ""
	}
	b, _ := json.Marshal(reasoning)
	return string(b)
}
