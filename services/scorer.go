package services

import (
	"strings"
	"unicode/utf8"

	"leadgen/models"
)

// Branding weakness thresholds.
const (
	shortDescriptionLimit = 150
	highFollowers         = 5000
	highReviews           = 200
)

// Score computes the branding weakness score (0-9) of a lead. It reads only
// fields set by the Normalizer, never Analysis.
func Score(lead *models.CanonicalLead) int {
	score := 0

	if !lead.WebsitePresent {
		score += 3
	}

	// An empty description is missing evidence, not evidence of weakness.
	if n := utf8.RuneCountInString(strings.TrimSpace(lead.Description)); n > 0 && n < shortDescriptionLimit {
		score += 2
	}

	if !hasAnySocial(lead.Socials) {
		score += 2
	}

	if highEngagement(lead.Metrics) && weakBranding(lead.Assets) {
		score += 2
	}

	return score
}

func hasAnySocial(socials map[string]string) bool {
	for _, v := range socials {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func highEngagement(metrics map[string]float64) bool {
	return metrics["followers"] >= highFollowers || metrics["reviews"] >= highReviews
}

func weakBranding(assets map[string]string) bool {
	switch strings.ToLower(assets["branding_quality"]) {
	case "", models.BrandingPoor, models.BrandingUnknown:
		return true
	}
	return false
}
