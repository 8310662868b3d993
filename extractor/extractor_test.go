package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen/models"
	"leadgen/utils"
)

func newTestExtractor() *Extractor { return New(utils.NewNopLogger()) }

const ycDirectoryPage = `<html><head><title>Startup Directory | Y Combinator</title></head><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"companies":[
  {"name":"Acme AI","website":"https://acme.ai","one_liner":"Agents for bakeries","industries":["B2B","SaaS"],"slug":"acme-ai"},
  {"name":"Bolt Labs","website":"bolt.dev","description":"Faster builds","industries":[]},
  {"name":"Cargo","url":"https://cargo.co","shortDescription":"Freight","small_logo_thumb_url":"https://cdn.yc/cargo.png"},
  {"name":"Acme AI","website":"https://acme.ai","one_liner":"duplicate entry"}
]}}}
</script></body></html>`

func TestExtractYCDirectory(t *testing.T) {
	fb := models.PageFallback{Platform: models.PlatformYC, SourceURL: "https://www.ycombinator.com/companies"}

	got := newTestExtractor().Extract(ycDirectoryPage, fb)

	require.Len(t, got, 3)
	assert.Equal(t, "Acme AI", got[0].Name)
	assert.Equal(t, "https://acme.ai", got[0].Website)
	assert.Equal(t, "Agents for bakeries", got[0].Description)
	assert.Equal(t, "B2B", got[0].Industry)
	assert.Equal(t, "https://www.ycombinator.com/companies/acme-ai", got[0].ProfileURL)

	assert.Equal(t, "https://bolt.dev", got[1].Website)
	assert.Equal(t, models.DefaultIndustry, got[1].Industry)

	assert.Equal(t, "https://cargo.co", got[2].Website)
	assert.Equal(t, "Freight", got[2].Description)
	assert.Equal(t, "https://cdn.yc/cargo.png", got[2].Logo)

	for _, e := range got {
		assert.Equal(t, models.PlatformYC, e.Platform)
	}
}

func TestExtractYCFromDataPageAttribute(t *testing.T) {
	body := `<div id="app" data-page="{&quot;props&quot;:{&quot;company&quot;:{&quot;name&quot;:&quot;Zed&quot;,&quot;slug&quot;:&quot;zed&quot;}}}"></div>`
	fb := models.PageFallback{Platform: models.PlatformYC, SourceURL: "https://www.ycombinator.com/companies/zed"}

	got := newTestExtractor().Extract(body, fb)

	require.Len(t, got, 1)
	assert.Equal(t, "Zed", got[0].Name)
	assert.Empty(t, got[0].Website)
}

func TestExtractMalformedStateFallsBack(t *testing.T) {
	body := `<title>YC</title><script id="__NEXT_DATA__" type="application/json">{"props": [broken</script>`
	fb := models.PageFallback{Platform: models.PlatformYC, SourceURL: "https://www.ycombinator.com/companies", Name: "YC"}

	got := newTestExtractor().Extract(body, fb)

	require.Len(t, got, 1)
	assert.Equal(t, "YC", got[0].Name)
	assert.Equal(t, models.PlatformYC, got[0].Platform)
}

func TestFindObjectsBoundsDepth(t *testing.T) {
	var root any = map[string]any{"name": "deep", "website": "https://deep.io"}
	for i := 0; i < maxWalkDepth+5; i++ {
		root = map[string]any{"child": root}
	}

	assert.Empty(t, FindObjects(root, isCompanyObject))

	shallow := map[string]any{"a": []any{map[string]any{"name": "x", "slug": "x"}}}
	assert.Len(t, FindObjects(shallow, isCompanyObject), 1)
}

func TestExtractJSONLD(t *testing.T) {
	body := `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"BreadcrumbList","name":"crumbs"}</script>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":["LocalBusiness"],"name":"Sharma Sweets",
 "telephone":"+91 22 1234 5678",
 "address":{"@type":"PostalAddress","streetAddress":"12 MG Road","addressLocality":"Mumbai"},
 "aggregateRating":{"ratingValue":"4.3","reviewCount":"1,250"},
 "priceRange":"₹₹",
 "sameAs":["https://www.facebook.com/sharmasweets"]}
</script>
<script type="application/ld+json">{"@graph":[{"@type":"Restaurant","name":"Cafe Uno","url":"https://cafeuno.in","description":"Italian"}]}</script>
<script type="application/ld+json">{not json</script>
</head></html>`
	fb := models.PageFallback{Platform: models.PlatformJustdial, SourceURL: "https://www.justdial.com/Mumbai/X/nct-1"}

	got := newTestExtractor().Extract(body, fb)

	require.Len(t, got, 2)

	sweets := got[0]
	assert.Equal(t, "Sharma Sweets", sweets.Name)
	assert.Empty(t, sweets.Website)
	assert.Equal(t, "+91 22 1234 5678", sweets.Phone)
	assert.Equal(t, "12 MG Road, Mumbai", sweets.ListingDescription)
	require.NotNil(t, sweets.Rating)
	assert.Equal(t, 4.3, *sweets.Rating)
	require.NotNil(t, sweets.Reviews)
	assert.Equal(t, 1250.0, *sweets.Reviews)
	require.NotNil(t, sweets.PriceLevel)
	assert.Equal(t, 2.0, *sweets.PriceLevel)
	assert.Equal(t, "https://www.facebook.com/sharmasweets", sweets.Socials["facebook"])

	cafe := got[1]
	assert.Equal(t, "Cafe Uno", cafe.Name)
	assert.Equal(t, "https://cafeuno.in", cafe.Website)
	assert.Equal(t, "Italian", cafe.ListingDescription)
}

func TestExtractJSONLDRejectsNonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name   string
		rating string
	}{
		{"nan", `{"ratingValue":"NaN","reviewCount":"Infinity"}`},
		{"inf", `{"ratingValue":"Inf","reviewCount":"-Infinity"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `<script type="application/ld+json">{"@type":"Restaurant","name":"Nan Cafe","aggregateRating":` +
				tt.rating + `}</script>`
			fb := models.PageFallback{Platform: models.PlatformZomato, SourceURL: "https://www.zomato.com/mumbai/nan-cafe"}

			got := newTestExtractor().Extract(body, fb)

			require.Len(t, got, 1)
			assert.Equal(t, "Nan Cafe", got[0].Name)
			assert.Nil(t, got[0].Rating)
			assert.Nil(t, got[0].Reviews)
		})
	}
}

func TestExtractReddit(t *testing.T) {
	body := `<html><head><meta property="og:title" content="Need a logo for my bakery, budget tight"></head>
<body><a href="/user/crumbqueen">u/crumbqueen</a>
<a href="https://www.reddit.com/r/smallbusiness">sub</a>
<a href="https://crumbqueen.shop">shop</a>
<script>window.___r = {"score":128,"author":"crumbqueen"}</script></body></html>`
	fb := models.PageFallback{Platform: models.PlatformReddit, SourceURL: "https://www.reddit.com/r/smallbusiness/comments/abc"}

	got := newTestExtractor().Extract(body, fb)

	require.Len(t, got, 1)
	e := got[0]
	assert.Equal(t, "crumbqueen", e.Author)
	assert.Equal(t, "Need a logo for my bakery, budget tight", e.ThreadExcerpt)
	assert.Equal(t, "https://crumbqueen.shop", e.Website)
	assert.Equal(t, "https://www.reddit.com/user/crumbqueen", e.ProfileURL)
	require.NotNil(t, e.Upvotes)
	assert.Equal(t, 128.0, *e.Upvotes)
}

func TestExtractTwitterAndLinkedIn(t *testing.T) {
	body := `<meta property="og:title" content="Acme (@acme) / X">
<meta property="og:description" content="We build ovens">
<meta name="author" content="Acme Ovens">
<a href="https://t.co/xyz">short</a><a href="https://x.com/acme/photo">p</a><a href="https://acmeovens.com">site</a>`

	tw := newTestExtractor().Extract(body, models.PageFallback{Platform: models.PlatformTwitter, SourceURL: "https://x.com/acme"})
	require.Len(t, tw, 1)
	assert.Equal(t, "Acme Ovens", tw[0].Author)
	assert.Equal(t, "Acme (@acme) / X", tw[0].Caption)
	assert.Empty(t, tw[0].Description, "twitter strategy ignores og:description")
	assert.Equal(t, "https://acmeovens.com", tw[0].Website)
	assert.Equal(t, "https://x.com/acme", tw[0].ProfileURL)

	li := newTestExtractor().Extract(body, models.PageFallback{Platform: models.PlatformLinkedIn, SourceURL: "https://www.linkedin.com/company/acme"})
	require.Len(t, li, 1)
	assert.Equal(t, "We build ovens", li[0].Description)
}

func TestExtractInstagramProfile(t *testing.T) {
	body := `<meta property="og:title" content="Acme Bakes (@acmebakes) • Instagram photos and videos">
<meta property="og:description" content="12.5K Followers, 300 Following, 420 Posts - home bakery in Pune">`
	fb := models.PageFallback{Platform: models.PlatformInstagram, SourceURL: "https://www.instagram.com/acmebakes/"}

	got := newTestExtractor().Extract(body, fb)

	require.Len(t, got, 1)
	assert.Equal(t, "Acme Bakes", got[0].Name)
	assert.Equal(t, "@acmebakes", got[0].Author)
	require.NotNil(t, got[0].Followers)
	assert.Equal(t, 12500.0, *got[0].Followers)
}

func TestParseCount(t *testing.T) {
	tests := map[string]float64{
		"1,234 Followers":  1234,
		"2M Followers":     2_000_000,
		"3.4k followers, ": 3400,
	}
	for in, want := range tests {
		got, ok := ParseCount(in)
		assert.True(t, ok, in)
		assert.InDelta(t, want, got, 0.001, in)
	}
	_, ok := ParseCount("no numbers here")
	assert.False(t, ok)
}

func TestExtractHashtagStub(t *testing.T) {
	for _, p := range []models.Platform{models.PlatformInstagramHashtag, models.PlatformLinkedInHashtag} {
		fb := QuickParse("", models.ClassifiedReference{Platform: p, Target: "smallbiz"})

		got := newTestExtractor().Extract("", fb)

		require.Len(t, got, 1, p)
		assert.Equal(t, "#smallbiz", got[0].SourceURL)
		assert.Equal(t, p, got[0].Platform)
		assert.Empty(t, got[0].Name)
		assert.Empty(t, got[0].Website)
		require.NotNil(t, got[0].Followers)
		assert.Equal(t, 0.0, *got[0].Followers)
		assert.Equal(t, models.DefaultIndustry, got[0].Industry)
	}
}

func TestExtractGenericFallbackWithContacts(t *testing.T) {
	body := `<title>Acme</title>
<a href="mailto:hello@acme.io?subject=hi">mail</a>
<a href="tel:+91-98200-00000">call</a>
<a href="https://www.instagram.com/acme">ig</a>
<a href="https://www.dropbox.com/s/menu.pdf">menu</a>`
	fb := models.PageFallback{Platform: models.PlatformGeneric, SourceURL: "https://acme.io", Name: "Acme", Website: "https://acme.io"}

	got := newTestExtractor().Extract(body, fb)

	require.Len(t, got, 1)
	e := got[0]
	assert.Equal(t, "Acme", e.Name)
	assert.Equal(t, "https://acme.io", e.Website)
	assert.Equal(t, "hello@acme.io", e.Email)
	assert.Equal(t, "+91-98200-00000", e.Phone)
	assert.Equal(t, map[string]string{"instagram": "https://www.instagram.com/acme"}, e.Socials)
}

func TestExtractEmptyBodyYieldsFallback(t *testing.T) {
	fb := models.PageFallback{Platform: models.PlatformGeneric, SourceURL: "https://down.example"}

	got := newTestExtractor().Extract("", fb)

	require.Len(t, got, 1)
	assert.Equal(t, "https://down.example", got[0].SourceURL)
	assert.Empty(t, got[0].Website)
}

func TestExtractNeverEmptyForNonEmptyBody(t *testing.T) {
	bodies := []string{"x", "<html></html>", strings.Repeat("<div>", 1000), `{"name":"json not html"}`}
	for _, p := range models.Platforms {
		if p.IsHashtag() {
			continue
		}
		for _, body := range bodies {
			got := newTestExtractor().Extract(body, models.PageFallback{Platform: p, SourceURL: "https://e.x"})
			assert.NotEmpty(t, got, "platform %s", p)
		}
	}
}

func TestExtractRecoversFromPanickingStrategy(t *testing.T) {
	e := newTestExtractor()
	e.Register(models.PlatformGeneric, StrategyFunc(func(Page) []models.ExtractedEntity { panic("boom") }))

	got := e.Extract("<title>T</title>", models.PageFallback{Platform: models.PlatformGeneric, Name: "T"})

	require.Len(t, got, 1)
	assert.Equal(t, "T", got[0].Name)
}
