package extractor

import (
	"encoding/json"
	"strings"

	"leadgen/models"
)

// businessTypes are the schema.org @type values treated as a business.
// LocalBusiness subtypes that directory sites commonly emit are included.
var businessTypes = map[string]bool{
	"localbusiness":       true,
	"organization":        true,
	"restaurant":          true,
	"foodestablishment":   true,
	"store":               true,
	"professionalservice": true,
}

// extractJSONLD reads every ld+json block and keeps business nodes.
func extractJSONLD(page Page) []models.ExtractedEntity {
	var out []models.ExtractedEntity
	for _, block := range page.Doc.Scripts("application/ld+json") {
		var root any
		if err := json.Unmarshal([]byte(strings.TrimSpace(block)), &root); err != nil {
			continue
		}
		for _, node := range ldNodes(root) {
			if !isBusinessNode(node) {
				continue
			}
			out = append(out, ldEntity(node, page.Fallback))
		}
	}
	return out
}

// ldNodes flattens a top-level ld+json value: a single node, an array of
// nodes, or a node carrying an @graph array.
func ldNodes(root any) []map[string]any {
	var nodes []map[string]any
	switch v := root.(type) {
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			nodes = append(nodes, ldNodes(graph)...)
		}
		nodes = append(nodes, v)
	case []any:
		for _, item := range v {
			nodes = append(nodes, ldNodes(item)...)
		}
	}
	return nodes
}

func isBusinessNode(node map[string]any) bool {
	switch t := node["@type"].(type) {
	case string:
		return businessTypes[strings.ToLower(t)]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && businessTypes[strings.ToLower(s)] {
				return true
			}
		}
	}
	return false
}

func ldEntity(node map[string]any, fb models.PageFallback) models.ExtractedEntity {
	ent := models.ExtractedEntity{
		Platform:  fb.Platform,
		SourceURL: fb.SourceURL,
		Name:      Sanitize(stringField(node, "name")),
		Website:   NormalizeWebsite(stringField(node, "url")),
		Phone:     Sanitize(stringField(node, "telephone")),
		Email:     Sanitize(strings.TrimPrefix(stringField(node, "email"), "mailto:")),
		Address:   ldAddress(node["address"]),
	}

	ent.ListingDescription = Sanitize(stringField(node, "description"))
	if ent.ListingDescription == "" {
		ent.ListingDescription = ent.Address
	}

	if cuisine := ldFirstString(node["servesCuisine"]); cuisine != "" {
		ent.Category = Sanitize(cuisine)
	}

	if rating, ok := node["aggregateRating"].(map[string]any); ok {
		if v, ok := numberField(rating, "ratingValue"); ok {
			ent.Rating = floatPtr(v)
		}
		if v, ok := numberField(rating, "reviewCount"); ok {
			ent.Reviews = floatPtr(v)
		} else if v, ok := numberField(rating, "ratingCount"); ok {
			ent.Reviews = floatPtr(v)
		}
	}

	if level := priceLevel(stringField(node, "priceRange")); level > 0 {
		ent.PriceLevel = floatPtr(float64(level))
	}

	ent.Logo = NormalizeWebsite(ldFirstString(node["logo"]))
	ent.CoverImage = NormalizeWebsite(ldFirstString(node["image"]))

	for _, link := range ldStrings(node["sameAs"]) {
		addSocialLink(&ent, link)
	}
	return ent
}

// ldAddress renders a PostalAddress node or a plain string.
func ldAddress(v any) string {
	switch a := v.(type) {
	case string:
		return Sanitize(a)
	case map[string]any:
		var parts []string
		for _, k := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode", "addressCountry"} {
			if s := stringField(a, k); s != "" {
				parts = append(parts, s)
			}
		}
		return Sanitize(strings.Join(parts, ", "))
	}
	return ""
}

// ldFirstString reads a string, the first string of an array, or the url of
// an ImageObject.
func ldFirstString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []any:
		for _, item := range s {
			if str := ldFirstString(item); str != "" {
				return str
			}
		}
	case map[string]any:
		return stringField(s, "url")
	}
	return ""
}

func ldStrings(v any) []string {
	switch s := v.(type) {
	case string:
		return []string{s}
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// priceLevel counts currency symbols in a priceRange like "₹₹" or "$$$".
func priceLevel(priceRange string) int {
	n := 0
	for _, r := range priceRange {
		switch r {
		case '$', '₹', '€', '£':
			n++
		}
	}
	return n
}
