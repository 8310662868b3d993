package models

import (
	"strings"
	"time"
)

// Platform identifies which source-specific extraction strategy applies.
type Platform string

const (
	PlatformYC               Platform = "yc"
	PlatformJustdial         Platform = "justdial"
	PlatformZomato           Platform = "zomato"
	PlatformReddit           Platform = "reddit"
	PlatformTwitter          Platform = "twitter"
	PlatformLinkedIn         Platform = "linkedin"
	PlatformInstagram        Platform = "instagram"
	PlatformInstagramHashtag Platform = "instagram_hashtag"
	PlatformLinkedInHashtag  Platform = "linkedin_hashtag"
	PlatformGeneric          Platform = "generic"
)

// Platforms lists every known platform tag.
var Platforms = []Platform{
	PlatformYC, PlatformJustdial, PlatformZomato, PlatformReddit, PlatformTwitter,
	PlatformLinkedIn, PlatformInstagram, PlatformInstagramHashtag, PlatformLinkedInHashtag,
	PlatformGeneric,
}

// ParsePlatform maps a free-form tag onto a known Platform, defaulting to generic.
func ParsePlatform(s string) Platform {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Platforms {
		if string(p) == s {
			return p
		}
	}
	return PlatformGeneric
}

// IsHashtag reports whether the platform is one of the hashtag variants.
func (p Platform) IsHashtag() bool {
	return p == PlatformInstagramHashtag || p == PlatformLinkedInHashtag
}

// ClassifiedReference is a raw reference resolved to a platform and a target.
type ClassifiedReference struct {
	Platform Platform
	Target   string
}

// RawContent is the fetched body for one reference. Body is empty for hashtags
// and for failed fetches; FetchError carries the failure reason.
type RawContent struct {
	Platform   Platform
	Target     string
	Body       string
	FetchError string
}

// PageFallback holds generic page-level facts usable regardless of platform.
type PageFallback struct {
	Platform    Platform
	SourceURL   string
	Name        string
	Description string
	Website     string
}

// ExtractedEntity is one business or account surfaced from a page, before
// normalization. Only the Normalizer interprets the platform-specific fields.
type ExtractedEntity struct {
	Platform  Platform
	SourceURL string

	Name       string
	Author     string
	Website    string
	ProfileURL string

	Description        string
	ListingDescription string
	Bio                string
	ThreadExcerpt      string
	Caption            string
	Summary            string

	Industry string
	Category string

	Phone   string
	Email   string
	Address string

	Followers  *float64
	Reviews    *float64
	Rating     *float64
	Upvotes    *float64
	PriceLevel *float64

	Logo            string
	CoverImage      string
	BrandingQuality string

	Socials map[string]string
}

// DedupKey is the composite within-page and within-batch identity of an entity.
func (e *ExtractedEntity) DedupKey() string {
	name := e.Name
	if name == "" {
		name = e.Author
	}
	return strings.ToLower(name) + "|" + strings.ToLower(e.Website) + "|" + strings.ToLower(e.SourceURL)
}

// Verdict values a completion may return.
const (
	VerdictWeakBranding   = "Weak branding, strong outreach candidate."
	VerdictStrongBranding = "Strong brand identity, low priority."
)

// Branding quality values stored under assets.branding_quality.
const (
	BrandingPoor    = "poor"
	BrandingFair    = "fair"
	BrandingGood    = "good"
	BrandingUnknown = "unknown"
)

// DefaultIndustry is used when no platform category was extracted.
const DefaultIndustry = "Unspecified"

// Analysis is the advisory AI verdict attached to a lead.
type Analysis struct {
	Verdict    string   `json:"verdict"`
	Reasoning  []string `json:"reasoning"`
	Confidence float64  `json:"confidence"`
}

// FallbackAnalysis returns the conservative verdict used whenever the
// completion provider is unavailable or its output cannot be parsed.
func FallbackAnalysis() Analysis {
	return Analysis{
		Verdict:    VerdictStrongBranding,
		Reasoning:  []string{"insufficient evidence"},
		Confidence: 0.2,
	}
}

// CanonicalLead is the unified output record of the pipeline.
type CanonicalLead struct {
	Source           string             `json:"source"`
	SourceURL        string             `json:"source_url"`
	Name             string             `json:"name"`
	IndustryCategory string             `json:"industry_category"`
	Description      string             `json:"description"`
	Website          string             `json:"website"`
	WebsitePresent   bool               `json:"website_present"`
	Socials          map[string]string  `json:"socials"`
	ContactInfo      map[string]string  `json:"contact_info"`
	Metrics          map[string]float64 `json:"metrics"`
	Assets           map[string]string  `json:"assets"`
	Score            int                `json:"score"`
	Analysis         Analysis           `json:"analysis"`
	Timestamp        string             `json:"timestamp"`
	HashKey          string             `json:"hash_key"`

	// AIFallback is set when Analysis is the conservative fallback.
	AIFallback bool `json:"-"`
}

// ScrapedAt parses the lead timestamp, returning the zero time if unset.
func (l *CanonicalLead) ScrapedAt() time.Time {
	t, err := time.Parse(time.RFC3339, l.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
