package extractor

import (
	"net/url"
	"strings"
	"unicode"

	"leadgen/models"
)

// QuickParse extracts generic page facts usable regardless of platform and
// re-derives the platform from the page's canonical URL. It always succeeds;
// an empty body yields empty strings.
func QuickParse(body string, classified models.ClassifiedReference) models.PageFallback {
	return quickParse(body, classified, NewDocument)
}

func quickParse(body string, classified models.ClassifiedReference, read Reader) models.PageFallback {
	fb := models.PageFallback{
		Platform:  classified.Platform,
		SourceURL: classified.Target,
	}
	if classified.Platform.IsHashtag() {
		fb.SourceURL = "#" + classified.Target
	}

	if strings.TrimSpace(body) == "" {
		return fb
	}

	doc := read(body)

	fb.Name = Sanitize(doc.Meta("og:site_name"))
	if fb.Name == "" {
		fb.Name = Sanitize(doc.Title())
	}

	fb.Description = Sanitize(doc.Meta("description"))
	if fb.Description == "" {
		fb.Description = Sanitize(doc.Meta("og:description"))
	}

	href := doc.LinkHref("canonical")
	if resolved := resolveLink(classified.Target, href); resolved != "" {
		href = resolved
	}
	if canonical := NormalizeWebsite(href); canonical != "" {
		fb.Website = canonical
		if platform, ok := PlatformForRawURL(canonical); ok && !classified.Platform.IsHashtag() {
			fb.Platform = platform
		}
	}

	return fb
}

// Sanitize collapses runs of whitespace (including newlines and tabs) to a
// single space and trims the result.
func Sanitize(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// NormalizeWebsite turns a link into an absolute http(s) URL without a
// fragment and with a lowercase host. It returns "" for anything that is not
// a usable web address.
func NormalizeWebsite(raw string) string {
	raw = Sanitize(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return ""
	}
	lower := strings.ToLower(raw)
	for _, prefix := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	u, ok := parseReferenceURL(raw)
	if !ok {
		return ""
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// resolveLink makes href absolute relative to base when possible.
func resolveLink(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ""
	}
	return b.ResolveReference(ref).String()
}
