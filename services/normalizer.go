package services

import (
	"math"
	"strings"
	"unicode"

	"leadgen/models"
	"leadgen/utils"
)

// Normalizer maps ExtractedEntities onto the CanonicalLead schema. It is the
// only place allowed to look at platform-specific entity fields.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// NormalizeAll normalizes a page's entities in order.
func (n *Normalizer) NormalizeAll(entities []models.ExtractedEntity) []*models.CanonicalLead {
	result := make([]*models.CanonicalLead, 0, len(entities))
	for i := range entities {
		result = append(result, Normalize(&entities[i]))
	}
	n.logger.Debug("[normalizer] Normalized %d entities", len(result))
	return result
}

// Normalize maps one entity. Score, Analysis, Timestamp and HashKey are left
// unset. Every field has a default, so missing optional data never fails.
func Normalize(e *models.ExtractedEntity) *models.CanonicalLead {
	lead := &models.CanonicalLead{
		Source:           normalisePlatform(e.Platform),
		SourceURL:        strings.TrimSpace(e.SourceURL),
		Name:             normaliseText(firstNonEmpty(e.Name, e.Author)),
		IndustryCategory: normaliseText(firstNonEmpty(e.Industry, e.Category)),
		Description: normaliseText(firstNonEmpty(
			e.ListingDescription, e.Bio, e.ThreadExcerpt, e.Caption, e.Description, e.Summary,
		)),
		Website:     strings.TrimSpace(e.Website),
		Socials:     make(map[string]string),
		ContactInfo: make(map[string]string),
		Metrics:     make(map[string]float64),
		Assets:      make(map[string]string),
	}
	if lead.IndustryCategory == "" {
		lead.IndustryCategory = models.DefaultIndustry
	}
	lead.WebsitePresent = lead.Website != ""

	for k, v := range e.Socials {
		putString(lead.Socials, k, v)
	}
	putString(lead.Socials, "profile", e.ProfileURL)

	putString(lead.ContactInfo, "email", e.Email)
	putString(lead.ContactInfo, "phone", e.Phone)
	putString(lead.ContactInfo, "address", e.Address)

	putNumber(lead.Metrics, "followers", e.Followers)
	putNumber(lead.Metrics, "reviews", e.Reviews)
	putNumber(lead.Metrics, "rating", e.Rating)
	putNumber(lead.Metrics, "upvotes", e.Upvotes)
	putNumber(lead.Metrics, "price_level", e.PriceLevel)

	putString(lead.Assets, "logo", e.Logo)
	putString(lead.Assets, "cover_image", e.CoverImage)
	putString(lead.Assets, "branding_quality", normaliseBrandingQuality(e.BrandingQuality))

	return lead
}

func putString(m map[string]string, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		m[key] = v
	}
}

func putNumber(m map[string]float64, key string, value *float64) {
	if value != nil && !math.IsNaN(*value) && !math.IsInf(*value, 0) {
		m[key] = *value
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func normaliseBrandingQuality(s string) string {
	switch q := strings.ToLower(strings.TrimSpace(s)); q {
	case models.BrandingPoor, models.BrandingFair, models.BrandingGood, models.BrandingUnknown:
		return q
	case "":
		return ""
	default:
		return models.BrandingUnknown
	}
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

func normalisePlatform(p models.Platform) string {
	return string(models.ParsePlatform(string(p)))
}
