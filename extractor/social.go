package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"leadgen/models"
)

var (
	redditAuthorRe   = regexp.MustCompile(`"author"\s*:\s*"([^"]+)"`)
	redditUserLinkRe = regexp.MustCompile(`/u(?:ser)?/([A-Za-z0-9_-]{3,20})`)
	redditScoreRe    = regexp.MustCompile(`"score"\s*:\s*(\d+)`)
	followersRe      = regexp.MustCompile(`(?i)([\d.,]+)\s*([KMB]?)\s+Followers`)
	instaNameRe      = regexp.MustCompile(`^(.*?)\s*\(@([^)]+)\)`)
)

var (
	redditHosts    = []string{"reddit.com", "redd.it", "redditmedia.com", "redditstatic.com"}
	twitterHosts   = []string{"twitter.com", "x.com", "t.co", "twimg.com"}
	linkedinHosts  = []string{"linkedin.com", "licdn.com", "lnkd.in"}
	instagramHosts = []string{"instagram.com", "cdninstagram.com", "fbcdn.net"}
)

// extractReddit reads a thread page: the title becomes the excerpt and the
// poster becomes the entity.
func extractReddit(page Page) []models.ExtractedEntity {
	excerpt := Sanitize(page.Doc.Meta("og:title"))

	author := ""
	if m := redditAuthorRe.FindStringSubmatch(page.Body); len(m) == 2 {
		author = m[1]
	} else {
		for _, href := range page.Doc.Links() {
			if m := redditUserLinkRe.FindStringSubmatch(href); len(m) == 2 {
				author = m[1]
				break
			}
		}
	}

	if excerpt == "" && author == "" {
		return nil
	}

	ent := models.ExtractedEntity{
		Platform:      models.PlatformReddit,
		SourceURL:     page.Fallback.SourceURL,
		Author:        author,
		ThreadExcerpt: excerpt,
		Website:       firstExternalLink(page, redditHosts),
	}
	if author != "" {
		ent.ProfileURL = "https://www.reddit.com/user/" + author
	}
	if m := redditScoreRe.FindStringSubmatch(page.Body); len(m) == 2 {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil {
			ent.Upvotes = floatPtr(n)
		}
	}
	return []models.ExtractedEntity{ent}
}

func extractTwitter(page Page) []models.ExtractedEntity {
	return socialProfile(page, models.PlatformTwitter, twitterHosts, false)
}

func extractLinkedIn(page Page) []models.ExtractedEntity {
	return socialProfile(page, models.PlatformLinkedIn, linkedinHosts, true)
}

// socialProfile handles pages that expose one account through meta tags.
func socialProfile(page Page, platform models.Platform, hosts []string, withDescription bool) []models.ExtractedEntity {
	caption := Sanitize(page.Doc.Meta("og:title"))
	author := Sanitize(page.Doc.Meta("author"))

	ent := models.ExtractedEntity{
		Platform:   platform,
		SourceURL:  page.Fallback.SourceURL,
		Author:     author,
		Caption:    caption,
		ProfileURL: page.Fallback.SourceURL,
		Website:    firstExternalLink(page, hosts),
		CoverImage: NormalizeWebsite(page.Doc.Meta("og:image")),
	}
	if withDescription {
		ent.Description = Sanitize(page.Doc.Meta("og:description"))
	}

	if ent.Author == "" && ent.Caption == "" && ent.Description == "" {
		return nil
	}
	return []models.ExtractedEntity{ent}
}

// extractInstagramProfile reads the og tags of a profile page, e.g.
// og:title "Acme Bakes (@acmebakes) • Instagram photos and videos" and
// og:description "12.5K Followers, 300 Following, 420 Posts - ...".
func extractInstagramProfile(page Page) []models.ExtractedEntity {
	title := Sanitize(page.Doc.Meta("og:title"))
	desc := Sanitize(page.Doc.Meta("og:description"))
	if title == "" && desc == "" {
		return nil
	}

	ent := models.ExtractedEntity{
		Platform:   models.PlatformInstagram,
		SourceURL:  page.Fallback.SourceURL,
		ProfileURL: page.Fallback.SourceURL,
		Bio:        desc,
		Website:    firstExternalLink(page, instagramHosts),
		Logo:       NormalizeWebsite(page.Doc.Meta("og:image")),
	}
	if m := instaNameRe.FindStringSubmatch(title); len(m) == 3 {
		ent.Name = strings.TrimSpace(m[1])
		ent.Author = "@" + m[2]
	} else {
		ent.Name = title
	}
	if followers, ok := ParseCount(desc); ok {
		ent.Followers = floatPtr(followers)
	}
	return []models.ExtractedEntity{ent}
}

// ParseCount reads the first "<n>[KMB] Followers" figure in s.
func ParseCount(s string) (float64, bool) {
	m := followersRe.FindStringSubmatch(s)
	if len(m) != 3 {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		n *= 1_000
	case "M":
		n *= 1_000_000
	case "B":
		n *= 1_000_000_000
	}
	return n, true
}

// firstExternalLink returns the first absolute link whose host is not one of
// the platform's own hosts.
func firstExternalLink(page Page, platformHosts []string) string {
	for _, href := range page.Doc.Links() {
		link := NormalizeWebsite(resolveLink(page.Fallback.SourceURL, href))
		if link == "" {
			continue
		}
		u, ok := parseReferenceURL(link)
		if !ok {
			continue
		}
		host := strings.ToLower(u.Hostname())
		internal := false
		for _, h := range platformHosts {
			if hostMatches(host, h) {
				internal = true
				break
			}
		}
		if !internal {
			return link
		}
	}
	return ""
}
