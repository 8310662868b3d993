package services

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen/models"
	"leadgen/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func num(v float64) *float64 { return &v }

func TestNormalizeDefaults(t *testing.T) {
	lead := Normalize(&models.ExtractedEntity{Platform: models.PlatformJustdial})

	assert.Equal(t, "justdial", lead.Source)
	assert.Equal(t, models.DefaultIndustry, lead.IndustryCategory)
	assert.Empty(t, lead.Description)
	assert.False(t, lead.WebsitePresent)
	assert.NotNil(t, lead.Socials)
	assert.NotNil(t, lead.ContactInfo)
	assert.NotNil(t, lead.Metrics)
	assert.NotNil(t, lead.Assets)
	assert.Zero(t, lead.Score)
	assert.Empty(t, lead.HashKey)
}

func TestNormalizeUnknownPlatform(t *testing.T) {
	lead := Normalize(&models.ExtractedEntity{Platform: "myspace"})
	assert.Equal(t, "generic", lead.Source)
}

func TestNormalizeDescriptionPriority(t *testing.T) {
	tests := []struct {
		name   string
		entity models.ExtractedEntity
		want   string
	}{
		{"listing wins", models.ExtractedEntity{ListingDescription: "listing", Bio: "bio", Description: "desc"}, "listing"},
		{"bio before excerpt", models.ExtractedEntity{Bio: "bio", ThreadExcerpt: "thread"}, "bio"},
		{"excerpt before caption", models.ExtractedEntity{ThreadExcerpt: "thread", Caption: "caption"}, "thread"},
		{"caption before description", models.ExtractedEntity{Caption: "caption", Description: "desc"}, "caption"},
		{"description before summary", models.ExtractedEntity{Description: "desc", Summary: "summary"}, "desc"},
		{"summary last", models.ExtractedEntity{Summary: "summary"}, "summary"},
		{"blank skipped", models.ExtractedEntity{ListingDescription: "   ", Bio: "bio"}, "bio"},
		{"whitespace collapsed", models.ExtractedEntity{Description: "  a\n\tb   c "}, "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(&tt.entity).Description)
		})
	}
}

func TestNormalizeNameAndIndustry(t *testing.T) {
	lead := Normalize(&models.ExtractedEntity{Author: "u/bakerbob", Category: "Bakery"})
	assert.Equal(t, "u/bakerbob", lead.Name)
	assert.Equal(t, "Bakery", lead.IndustryCategory)

	lead = Normalize(&models.ExtractedEntity{Name: "Acme", Author: "someone", Industry: "B2B", Category: "Bakery"})
	assert.Equal(t, "Acme", lead.Name)
	assert.Equal(t, "B2B", lead.IndustryCategory)
}

func TestNormalizeWebsitePresent(t *testing.T) {
	assert.True(t, Normalize(&models.ExtractedEntity{Website: "https://acme.io"}).WebsitePresent)
	assert.False(t, Normalize(&models.ExtractedEntity{Website: "  "}).WebsitePresent)
}

func TestNormalizeMaps(t *testing.T) {
	e := &models.ExtractedEntity{
		Platform:        models.PlatformZomato,
		ProfileURL:      "https://zomato.com/spice",
		Socials:         map[string]string{"instagram": "https://instagram.com/spice", "facebook": ""},
		Email:           "hi@spice.in",
		Phone:           "+91 99999",
		Rating:          num(4.2),
		Reviews:         num(310),
		Logo:            "https://cdn/logo.png",
		BrandingQuality: "POOR",
	}

	lead := Normalize(e)

	assert.Equal(t, map[string]string{
		"instagram": "https://instagram.com/spice",
		"profile":   "https://zomato.com/spice",
	}, lead.Socials)
	assert.Equal(t, map[string]string{"email": "hi@spice.in", "phone": "+91 99999"}, lead.ContactInfo)
	assert.Equal(t, map[string]float64{"rating": 4.2, "reviews": 310}, lead.Metrics)
	assert.Equal(t, map[string]string{"logo": "https://cdn/logo.png", "branding_quality": "poor"}, lead.Assets)
}

func TestNormalizeZeroMetricKept(t *testing.T) {
	lead := Normalize(&models.ExtractedEntity{Platform: models.PlatformInstagramHashtag, Followers: num(0)})
	v, ok := lead.Metrics["followers"]
	assert.True(t, ok)
	assert.Zero(t, v)
}

func TestNormalizeBrandingQuality(t *testing.T) {
	assert.Equal(t, "unknown", normaliseBrandingQuality("excellent"))
	assert.Equal(t, "good", normaliseBrandingQuality(" Good "))
	assert.Equal(t, "", normaliseBrandingQuality(""))
}

func TestNormalizeIsDeterministic(t *testing.T) {
	e := &models.ExtractedEntity{
		Platform:  models.PlatformYC,
		Name:      "Acme",
		Website:   "https://acme.io",
		Socials:   map[string]string{"twitter": "https://x.com/acme", "linkedin": "https://linkedin.com/company/acme"},
		Followers: num(12),
	}

	a, err := json.Marshal(Normalize(e))
	require.NoError(t, err)
	b, err := json.Marshal(Normalize(e))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestNormalizeAll(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	leads := n.NormalizeAll([]models.ExtractedEntity{{Name: "a"}, {Name: "b"}})
	require.Len(t, leads, 2)
	assert.Equal(t, "a", leads[0].Name)
	assert.Equal(t, "b", leads[1].Name)
}

func TestNormalizeDropsNonFiniteMetrics(t *testing.T) {
	lead := Normalize(&models.ExtractedEntity{
		Platform:  models.PlatformZomato,
		Name:      "Nan Cafe",
		Rating:    num(math.NaN()),
		Reviews:   num(math.Inf(1)),
		Followers: num(120),
	})

	assert.Equal(t, map[string]float64{"followers": 120}, lead.Metrics)
	assert.Equal(t, 5, Score(lead))

	_, err := json.Marshal(lead)
	assert.NoError(t, err)
}
