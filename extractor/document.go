package extractor

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a read-only view over fetched markup. Strategies depend on this
// interface only, so the HTML reader behind it can change without touching
// the Normalizer or the scorer.
type Document interface {
	// Title returns the raw <title> text.
	Title() string
	// Meta returns the content of the first meta tag whose property or name
	// equals key (case-insensitive).
	Meta(key string) string
	// LinkHref returns the href of the first <link> whose rel contains rel.
	LinkHref(rel string) string
	// Scripts returns the bodies of <script> tags with the given type.
	Scripts(scriptType string) []string
	// ScriptByID returns the body of the <script> with the given id.
	ScriptByID(id string) string
	// AttrValues returns every value of the named attribute in the page.
	AttrValues(attr string) []string
	// Links returns every anchor href in document order.
	Links() []string
}

// Names accepted by ReaderFor.
const (
	ReaderGoquery = "goquery"
	ReaderRegex   = "regex"
)

// Reader turns a page body into a Document.
type Reader func(body string) Document

// ReaderFor returns the Reader named name. An empty name selects goquery.
func ReaderFor(name string) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ReaderGoquery:
		return NewDocument, nil
	case ReaderRegex:
		return NewRegexDocument, nil
	default:
		return nil, fmt.Errorf("extractor: unknown HTML reader %q", name)
	}
}

// NewDocument parses body with goquery. The regex reader only takes over if
// reading the input fails, which a string source does not do in practice;
// select it with ReaderFor(ReaderRegex) instead.
func NewDocument(body string) Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return NewRegexDocument(body)
	}
	return &queryDocument{doc: doc}
}

type queryDocument struct {
	doc *goquery.Document
}

func (d *queryDocument) Title() string {
	return d.doc.Find("title").First().Text()
}

func (d *queryDocument) Meta(key string) string {
	key = strings.ToLower(key)
	var content string
	d.doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		prop, _ := s.Attr("property")
		name, _ := s.Attr("name")
		if strings.ToLower(prop) != key && strings.ToLower(name) != key {
			return true
		}
		if c, ok := s.Attr("content"); ok && strings.TrimSpace(c) != "" {
			content = c
			return false
		}
		return true
	})
	return content
}

func (d *queryDocument) LinkHref(rel string) string {
	href, _ := d.doc.Find(fmt.Sprintf("link[rel~=%q]", rel)).First().Attr("href")
	return href
}

func (d *queryDocument) Scripts(scriptType string) []string {
	var out []string
	d.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		t, _ := s.Attr("type")
		if strings.EqualFold(strings.TrimSpace(t), scriptType) {
			out = append(out, s.Text())
		}
	})
	return out
}

func (d *queryDocument) ScriptByID(id string) string {
	return d.doc.Find(fmt.Sprintf("script[id=%q]", id)).First().Text()
}

func (d *queryDocument) AttrValues(attr string) []string {
	var out []string
	d.doc.Find(fmt.Sprintf("[%s]", attr)).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			out = append(out, v)
		}
	})
	return out
}

func (d *queryDocument) Links() []string {
	var out []string
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			out = append(out, strings.TrimSpace(href))
		}
	})
	return out
}

var (
	titleRe  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaRe   = regexp.MustCompile(`(?is)<meta\s[^>]*>`)
	linkRe   = regexp.MustCompile(`(?is)<link\s[^>]*>`)
	anchorRe = regexp.MustCompile(`(?is)<a\s[^>]*>`)
	scriptRe = regexp.MustCompile(`(?is)<script([^>]*)>(.*?)</script>`)
	tagRe    = regexp.MustCompile(`(?s)<[a-zA-Z][^>]*>`)
	attrRe   = regexp.MustCompile(`(?s)([a-zA-Z_:][-a-zA-Z0-9_:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// regexDocument reads markup with regular expressions. It tolerates any
// input, well-formed or not.
type regexDocument struct {
	body string
}

// NewRegexDocument returns a Document that never parses a DOM.
func NewRegexDocument(body string) Document {
	return &regexDocument{body: body}
}

func parseAttrs(tag string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(tag, -1) {
		name := strings.ToLower(m[1])
		if _, exists := attrs[name]; exists {
			continue
		}
		val := m[2]
		if val == "" {
			val = m[3]
		}
		attrs[name] = html.UnescapeString(val)
	}
	return attrs
}

func (d *regexDocument) Title() string {
	m := titleRe.FindStringSubmatch(d.body)
	if len(m) < 2 {
		return ""
	}
	return html.UnescapeString(m[1])
}

func (d *regexDocument) Meta(key string) string {
	key = strings.ToLower(key)
	for _, tag := range metaRe.FindAllString(d.body, -1) {
		attrs := parseAttrs(tag)
		if strings.ToLower(attrs["property"]) != key && strings.ToLower(attrs["name"]) != key {
			continue
		}
		if c := attrs["content"]; strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

func (d *regexDocument) LinkHref(rel string) string {
	for _, tag := range linkRe.FindAllString(d.body, -1) {
		attrs := parseAttrs(tag)
		for _, r := range strings.Fields(strings.ToLower(attrs["rel"])) {
			if r == strings.ToLower(rel) {
				return attrs["href"]
			}
		}
	}
	return ""
}

func (d *regexDocument) Scripts(scriptType string) []string {
	var out []string
	for _, m := range scriptRe.FindAllStringSubmatch(d.body, -1) {
		attrs := parseAttrs(m[1])
		if strings.EqualFold(strings.TrimSpace(attrs["type"]), scriptType) {
			out = append(out, m[2])
		}
	}
	return out
}

func (d *regexDocument) ScriptByID(id string) string {
	for _, m := range scriptRe.FindAllStringSubmatch(d.body, -1) {
		if parseAttrs(m[1])["id"] == id {
			return m[2]
		}
	}
	return ""
}

func (d *regexDocument) AttrValues(attr string) []string {
	attr = strings.ToLower(attr)
	var out []string
	for _, tag := range tagRe.FindAllString(d.body, -1) {
		if v, ok := parseAttrs(tag)[attr]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (d *regexDocument) Links() []string {
	var out []string
	for _, tag := range anchorRe.FindAllString(d.body, -1) {
		if href, ok := parseAttrs(tag)["href"]; ok {
			out = append(out, strings.TrimSpace(href))
		}
	}
	return out
}
