package extractor

import (
	"regexp"
	"strings"

	"leadgen/models"
	"leadgen/utils"
)

// Strategy pulls entities out of one page for a single platform. It must not
// assume any data is present; returning nil means "nothing found".
type Strategy interface {
	Extract(page Page) []models.ExtractedEntity
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(page Page) []models.ExtractedEntity

func (f StrategyFunc) Extract(page Page) []models.ExtractedEntity { return f(page) }

// Page bundles what a Strategy may read: the raw markup, a Document over it
// and the Quick Page Parser's fallback.
type Page struct {
	Body     string
	Doc      Document
	Fallback models.PageFallback
}

// Extractor selects a Strategy by platform and guarantees a non-empty result.
type Extractor struct {
	strategies map[models.Platform]Strategy
	read       Reader
	logger     *utils.Logger
}

// New creates an Extractor with the built-in platform strategies.
func New(logger *utils.Logger) *Extractor {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	e := &Extractor{
		strategies: make(map[models.Platform]Strategy),
		read:       NewDocument,
		logger:     logger,
	}
	e.Register(models.PlatformYC, StrategyFunc(extractYC))
	e.Register(models.PlatformJustdial, StrategyFunc(extractJSONLD))
	e.Register(models.PlatformZomato, StrategyFunc(extractJSONLD))
	e.Register(models.PlatformReddit, StrategyFunc(extractReddit))
	e.Register(models.PlatformTwitter, StrategyFunc(extractTwitter))
	e.Register(models.PlatformLinkedIn, StrategyFunc(extractLinkedIn))
	e.Register(models.PlatformInstagram, StrategyFunc(extractInstagramProfile))
	return e
}

// SetReader changes how page bodies are read. nil keeps the current Reader.
func (e *Extractor) SetReader(r Reader) {
	if r != nil {
		e.read = r
	}
}

// QuickParse is the package QuickParse using the Extractor's Reader.
func (e *Extractor) QuickParse(body string, classified models.ClassifiedReference) models.PageFallback {
	return quickParse(body, classified, e.read)
}

// Register installs or replaces the strategy for platform.
func (e *Extractor) Register(platform models.Platform, s Strategy) {
	e.strategies[platform] = s
}

// Extract returns the entities found in body. Hashtag references (empty body,
// hashtag platform) yield exactly one stub entity; every other input yields
// at least the fallback entity.
func (e *Extractor) Extract(body string, fb models.PageFallback) []models.ExtractedEntity {
	if fb.Platform.IsHashtag() {
		return []models.ExtractedEntity{hashtagStub(fb)}
	}

	if strings.TrimSpace(body) == "" {
		return []models.ExtractedEntity{fallbackEntity(fb, nil)}
	}

	page := Page{Body: body, Doc: e.read(body), Fallback: fb}

	var found []models.ExtractedEntity
	if s, ok := e.strategies[fb.Platform]; ok {
		found = e.runStrategy(s, page)
	}

	entities := dedupEntities(found)
	if len(entities) == 0 {
		e.logger.Debug("[extract] %s: no structured entities on %s, using page fallback", fb.Platform, fb.SourceURL)
		return []models.ExtractedEntity{fallbackEntity(fb, page.Doc)}
	}

	e.logger.Debug("[extract] %s: %d entities on %s", fb.Platform, len(entities), fb.SourceURL)
	return entities
}

// runStrategy treats a panicking strategy as one that found nothing.
func (e *Extractor) runStrategy(s Strategy, page Page) (out []models.ExtractedEntity) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("[extract] %s strategy panicked on %s: %v", page.Fallback.Platform, page.Fallback.SourceURL, r)
			out = nil
		}
	}()
	return s.Extract(page)
}

// dedupEntities keeps the first occurrence of each composite key.
func dedupEntities(in []models.ExtractedEntity) []models.ExtractedEntity {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.ExtractedEntity, 0, len(in))
	for _, ent := range in {
		key := ent.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ent)
	}
	return out
}

func hashtagStub(fb models.PageFallback) models.ExtractedEntity {
	zero := 0.0
	return models.ExtractedEntity{
		Platform:  fb.Platform,
		SourceURL: fb.SourceURL,
		Followers: &zero,
		Industry:  models.DefaultIndustry,
	}
}

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	socialHosts = []struct{ host, key string }{
		{"facebook.com", "facebook"},
		{"instagram.com", "instagram"},
		{"linkedin.com", "linkedin"},
		{"twitter.com", "twitter"},
		{"x.com", "twitter"},
		{"youtube.com", "youtube"},
	}
)

// fallbackEntity builds the single generic entity from page-level facts. When
// doc is available it also picks up mailto/tel contacts and social profile
// links.
func fallbackEntity(fb models.PageFallback, doc Document) models.ExtractedEntity {
	ent := models.ExtractedEntity{
		Platform:    fb.Platform,
		SourceURL:   fb.SourceURL,
		Name:        fb.Name,
		Description: fb.Description,
		Website:     fb.Website,
	}
	if doc == nil {
		return ent
	}

	for _, href := range doc.Links() {
		lower := strings.ToLower(href)
		switch {
		case strings.HasPrefix(lower, "mailto:"):
			if ent.Email == "" {
				ent.Email = emailRe.FindString(href)
			}
		case strings.HasPrefix(lower, "tel:"):
			if ent.Phone == "" {
				ent.Phone = Sanitize(strings.TrimPrefix(href[len("tel:"):], "//"))
			}
		default:
			addSocialLink(&ent, href)
		}
	}
	if img := NormalizeWebsite(doc.Meta("og:image")); img != "" {
		ent.CoverImage = img
	}
	return ent
}

func addSocialLink(ent *models.ExtractedEntity, href string) {
	u, ok := parseReferenceURL(NormalizeWebsite(href))
	if !ok {
		return
	}
	host := strings.ToLower(u.Hostname())
	for _, sh := range socialHosts {
		if hostMatches(host, sh.host) {
			setSocial(ent, sh.key, u.String())
			return
		}
	}
}

func setSocial(ent *models.ExtractedEntity, key, link string) {
	if ent.Socials == nil {
		ent.Socials = make(map[string]string)
	}
	if _, exists := ent.Socials[key]; !exists {
		ent.Socials[key] = link
	}
}
