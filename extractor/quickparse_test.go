package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leadgen/models"
)

func TestQuickParse(t *testing.T) {
	body := `<html><head>
<title>Acme
	Bakery | Home</title>
<meta property="og:description" content="  Breads,
 cakes   and more ">
<link rel="canonical" href="https://ACME.io/home#top">
</head></html>`

	fb := QuickParse(body, models.ClassifiedReference{Platform: models.PlatformGeneric, Target: "https://acme.io/home"})

	assert.Equal(t, "Acme Bakery | Home", fb.Name)
	assert.Equal(t, "Breads, cakes and more", fb.Description)
	assert.Equal(t, "https://acme.io/home", fb.Website)
	assert.Equal(t, models.PlatformGeneric, fb.Platform)
	assert.Equal(t, "https://acme.io/home", fb.SourceURL)
}

func TestQuickParsePrefersSiteName(t *testing.T) {
	body := `<title>Page title</title><meta property="og:site_name" content="Acme">
<meta name="description" content="meta desc"><meta property="og:description" content="og desc">`

	fb := QuickParse(body, models.ClassifiedReference{Platform: models.PlatformGeneric, Target: "https://acme.io"})

	assert.Equal(t, "Acme", fb.Name)
	assert.Equal(t, "meta desc", fb.Description)
}

func TestQuickParseCanonicalOverridesPlatform(t *testing.T) {
	body := `<link rel="canonical" href="https://www.zomato.com/mumbai/acme-cafe">`

	fb := QuickParse(body, models.ClassifiedReference{Platform: models.PlatformGeneric, Target: "https://bit.ly/acme"})

	assert.Equal(t, models.PlatformZomato, fb.Platform)
	assert.Equal(t, "https://www.zomato.com/mumbai/acme-cafe", fb.Website)
}

func TestQuickParseResolvesRelativeCanonical(t *testing.T) {
	body := `<link rel="canonical" href="/companies">`

	fb := QuickParse(body, models.ClassifiedReference{Platform: models.PlatformGeneric, Target: "https://www.ycombinator.com/companies?batch=S21"})

	assert.Equal(t, models.PlatformYC, fb.Platform)
	assert.Equal(t, "https://www.ycombinator.com/companies", fb.Website)
}

func TestQuickParseEmptyBody(t *testing.T) {
	fb := QuickParse("", models.ClassifiedReference{Platform: models.PlatformGeneric, Target: "https://down.example"})

	assert.Equal(t, models.PageFallback{Platform: models.PlatformGeneric, SourceURL: "https://down.example"}, fb)
}

func TestQuickParseHashtag(t *testing.T) {
	fb := QuickParse("", models.ClassifiedReference{Platform: models.PlatformInstagramHashtag, Target: "smallbiz"})

	assert.Equal(t, "#smallbiz", fb.SourceURL)
	assert.Equal(t, models.PlatformInstagramHashtag, fb.Platform)
}

func TestNormalizeWebsite(t *testing.T) {
	tests := map[string]string{
		"https://Acme.IO/path#frag": "https://acme.io/path",
		"acme.io":                   "https://acme.io",
		"//cdn.acme.io/logo.png":    "https://cdn.acme.io/logo.png",
		"mailto:hi@acme.io":         "",
		"tel:+911234":               "",
		"#section":                  "",
		"/relative":                 "",
		"":                          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeWebsite(in), in)
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a b c", Sanitize("\n a\t\tb  \r\n c "))
	assert.Equal(t, "", Sanitize(" \n\t "))
}
