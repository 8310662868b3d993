package extractor

import (
	"encoding/json"
	"strings"

	"leadgen/models"
)

// Limits for walking embedded page state. Directory pages embed a few
// thousand nodes; anything far beyond that is not worth the cost.
const (
	maxWalkDepth = 32
	maxWalkNodes = 200000
)

var (
	websiteKeys = []string{"website", "www", "url"}
	companyKeys = []string{"website", "www", "url", "slug"}
)

// extractYC finds the embedded page-state JSON of a directory page and
// returns every object that looks like a company.
func extractYC(page Page) []models.ExtractedEntity {
	var out []models.ExtractedEntity
	for _, blob := range stateBlobs(page.Doc) {
		var root any
		if err := json.Unmarshal([]byte(blob), &root); err != nil {
			continue
		}
		for _, obj := range FindObjects(root, isCompanyObject) {
			out = append(out, ycEntity(obj, page.Fallback))
		}
	}
	return out
}

// stateBlobs returns candidate JSON blobs in order of how likely they are to
// hold the full page state.
func stateBlobs(doc Document) []string {
	var blobs []string
	if s := strings.TrimSpace(doc.ScriptByID("__NEXT_DATA__")); s != "" {
		blobs = append(blobs, s)
	}
	for _, s := range doc.AttrValues("data-page") {
		if s = strings.TrimSpace(s); s != "" {
			blobs = append(blobs, s)
		}
	}
	for _, s := range doc.Scripts("application/json") {
		if s = strings.TrimSpace(s); s != "" {
			blobs = append(blobs, s)
		}
	}
	return blobs
}

func isCompanyObject(obj map[string]any) bool {
	if name, ok := obj["name"].(string); !ok || strings.TrimSpace(name) == "" {
		return false
	}
	for _, k := range companyKeys {
		if _, ok := obj[k].(string); ok {
			return true
		}
	}
	return false
}

// FindObjects walks v depth-first and returns every object for which match
// is true. Matched objects are not descended into. The walk stops at
// maxWalkDepth levels and after visiting maxWalkNodes values.
func FindObjects(v any, match func(map[string]any) bool) []map[string]any {
	var out []map[string]any
	visited := 0

	var walk func(node any, depth int)
	walk = func(node any, depth int) {
		if depth > maxWalkDepth || visited >= maxWalkNodes {
			return
		}
		visited++

		switch n := node.(type) {
		case map[string]any:
			if match(n) {
				out = append(out, n)
				return
			}
			for _, key := range sortedKeys(n) {
				walk(n[key], depth+1)
			}
		case []any:
			for _, item := range n {
				walk(item, depth+1)
			}
		}
	}
	walk(v, 0)
	return out
}

func ycEntity(obj map[string]any, fb models.PageFallback) models.ExtractedEntity {
	ent := models.ExtractedEntity{
		Platform:  models.PlatformYC,
		SourceURL: fb.SourceURL,
		Name:      Sanitize(stringField(obj, "name")),
		Industry:  models.DefaultIndustry,
	}

	for _, k := range websiteKeys {
		if w := NormalizeWebsite(stringField(obj, k)); w != "" {
			ent.Website = w
			break
		}
	}
	if slug := stringField(obj, "slug"); slug != "" {
		ent.ProfileURL = "https://www.ycombinator.com/companies/" + slug
	}

	ent.Description = Sanitize(firstString(obj, "description", "one_liner", "shortDescription"))
	ent.Summary = Sanitize(stringField(obj, "long_description"))

	if industries, ok := obj["industries"].([]any); ok {
		for _, ind := range industries {
			if s, ok := ind.(string); ok && strings.TrimSpace(s) != "" {
				ent.Industry = Sanitize(s)
				break
			}
		}
	} else if s := stringField(obj, "industry"); s != "" {
		ent.Industry = Sanitize(s)
	}

	ent.Logo = NormalizeWebsite(firstString(obj, "small_logo_thumb_url", "logo_url", "logo"))
	return ent
}
