package extractor

import (
	"net/url"
	"strings"

	"leadgen/models"
)

// hostRule maps a host (and optional path prefix) to a platform. Rules are
// evaluated in order and the first match wins.
type hostRule struct {
	host       string
	pathPrefix string
	platform   models.Platform
}

var hostRules = []hostRule{
	{host: "ycombinator.com", pathPrefix: "/companies", platform: models.PlatformYC},
	{host: "justdial.com", platform: models.PlatformJustdial},
	{host: "zomato.com", platform: models.PlatformZomato},
	{host: "instagram.com", platform: models.PlatformInstagram},
	{host: "linkedin.com", platform: models.PlatformLinkedIn},
	{host: "twitter.com", platform: models.PlatformTwitter},
	{host: "x.com", platform: models.PlatformTwitter},
	{host: "reddit.com", platform: models.PlatformReddit},
}

// Classifier resolves raw references to a platform and target.
type Classifier struct {
	// HashtagPlatform is assigned to bare "#tag" references. Bare hashtags
	// carry no platform of their own, so callers pick the variant.
	HashtagPlatform models.Platform
}

// NewClassifier returns a Classifier that tags hashtags with hashtagPlatform,
// or instagram_hashtag if the given value is not a hashtag platform.
func NewClassifier(hashtagPlatform models.Platform) *Classifier {
	if !hashtagPlatform.IsHashtag() {
		hashtagPlatform = models.PlatformInstagramHashtag
	}
	return &Classifier{HashtagPlatform: hashtagPlatform}
}

// Classify maps a reference to a ClassifiedReference. It never fails:
// anything unrecognised resolves to the generic platform.
func (c *Classifier) Classify(reference string) models.ClassifiedReference {
	ref := strings.TrimSpace(reference)

	if strings.HasPrefix(ref, "#") {
		platform := c.HashtagPlatform
		if !platform.IsHashtag() {
			platform = models.PlatformInstagramHashtag
		}
		return models.ClassifiedReference{
			Platform: platform,
			Target:   strings.TrimSpace(strings.TrimPrefix(ref, "#")),
		}
	}

	u, ok := parseReferenceURL(ref)
	if !ok {
		return models.ClassifiedReference{Platform: models.PlatformGeneric, Target: ref}
	}

	return models.ClassifiedReference{
		Platform: PlatformForURL(u),
		Target:   u.String(),
	}
}

// Classify uses the default hashtag platform.
func Classify(reference string) models.ClassifiedReference {
	return NewClassifier(models.PlatformInstagramHashtag).Classify(reference)
}

// PlatformForURL applies the host rule table to u.
func PlatformForURL(u *url.URL) models.Platform {
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.EscapedPath())

	for _, rule := range hostRules {
		if !hostMatches(host, rule.host) {
			continue
		}
		if rule.pathPrefix != "" && !strings.HasPrefix(path, rule.pathPrefix) {
			continue
		}
		return rule.platform
	}
	return models.PlatformGeneric
}

// PlatformForRawURL parses raw and applies the host rule table. ok is false
// when raw is not an absolute http(s) URL.
func PlatformForRawURL(raw string) (models.Platform, bool) {
	u, ok := parseReferenceURL(raw)
	if !ok {
		return models.PlatformGeneric, false
	}
	return PlatformForURL(u), true
}

// hostMatches reports whether host is domain or a subdomain of it, so that
// "x.com" does not match "dropbox.com".
func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// parseReferenceURL accepts absolute http(s) URLs and scheme-less host/path
// references like "www.zomato.com/mumbai".
func parseReferenceURL(ref string) (*url.URL, bool) {
	if ref == "" || strings.ContainsAny(ref, " \t\n") {
		return nil, false
	}

	candidate := ref
	if strings.HasPrefix(candidate, "//") {
		candidate = "https:" + candidate
	} else if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if !strings.Contains(u.Hostname(), ".") {
		return nil, false
	}
	return u, true
}
