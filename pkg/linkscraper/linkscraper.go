// Package linkscraper extracts candidate media links from HTML markup.
package linkscraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pixelripper/pkg/errors"
	"pixelripper/pkg/models"
)

// attrSource pairs a CSS selector with the attribute holding the link
type attrSource struct {
	selector string
	attr     string
	srcset   bool
}

var imageSources = []attrSource{
	{selector: "img[src]", attr: "src"},
	{selector: "img[data-src]", attr: "data-src"},
	{selector: "img[srcset]", attr: "srcset", srcset: true},
	{selector: "picture source[srcset]", attr: "srcset", srcset: true},
}

var linkSources = []attrSource{
	{selector: "a[href]", attr: "href"},
	{selector: "link[href]", attr: "href"},
	{selector: "video[src]", attr: "src"},
	{selector: "video[poster]", attr: "poster"},
	{selector: "audio[src]", attr: "src"},
	{selector: "video source[src], audio source[src]", attr: "src"},
	{selector: "embed[src]", attr: "src"},
	{selector: "iframe[src]", attr: "src"},
	{selector: "track[src]", attr: "src"},
	{selector: "object[data]", attr: "data"},
}

var skippedSchemes = []string{"data:", "javascript:", "mailto:", "tel:", "blob:"}

// Scrape parses markup and returns its image-tag links and all other links,
// resolved against pageURL. Pass the final URL after redirects so relative
// links resolve the way the browser saw them.
func Scrape(markup string, pageURL string) (models.RawLinkSet, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return models.RawLinkSet{}, errors.Wrap(errors.ErrorTypeParsing, "invalid page URL", err).WithURL(pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return models.RawLinkSet{}, errors.Wrap(errors.ErrorTypeParsing, "failed to parse page markup", err).WithURL(pageURL)
	}

	// <base href> overrides the document URL for relative references
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = b
		}
	}

	images := newCollector(base)
	for _, src := range imageSources {
		images.collect(doc, src)
	}

	all := newCollector(base)
	all.exclude(images.links)
	for _, src := range linkSources {
		all.collect(doc, src)
	}
	doc.Find(`meta[property][content]`).Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		if isMediaMeta(prop) {
			all.add(s.AttrOr("content", ""))
		}
	})

	return models.RawLinkSet{
		ImageTagLinks: images.links,
		AllLinks:      all.links,
	}, nil
}

func isMediaMeta(property string) bool {
	property = strings.ToLower(property)
	for _, prefix := range []string{"og:image", "og:video", "og:audio"} {
		if strings.HasPrefix(property, prefix) {
			return property != prefix+":type" && property != prefix+":width" &&
				property != prefix+":height" && property != prefix+":alt"
		}
	}
	return false
}

// collector resolves links and keeps the first occurrence of each
type collector struct {
	base  *url.URL
	seen  map[string]struct{}
	links []string
}

func newCollector(base *url.URL) *collector {
	return &collector{base: base, seen: make(map[string]struct{})}
}

func (c *collector) exclude(links []string) {
	for _, l := range links {
		c.seen[l] = struct{}{}
	}
}

func (c *collector) collect(doc *goquery.Document, src attrSource) {
	doc.Find(src.selector).Each(func(_ int, s *goquery.Selection) {
		val, ok := s.Attr(src.attr)
		if !ok {
			return
		}
		if src.srcset {
			for _, candidate := range ParseSrcset(val) {
				c.add(candidate)
			}
			return
		}
		c.add(val)
	})
}

func (c *collector) add(ref string) {
	resolved, ok := Resolve(c.base, ref)
	if !ok {
		return
	}
	if _, dup := c.seen[resolved]; dup {
		return
	}
	c.seen[resolved] = struct{}{}
	c.links = append(c.links, resolved)
}

// Resolve turns ref into an absolute http(s) URL relative to base. Non-fetchable
// references (data:, javascript:, fragment-only, ...) report false.
func Resolve(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}
	lower := strings.ToLower(ref)
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	u, err := base.Parse(ref)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}

// ParseSrcset returns the URL of every candidate in a srcset attribute
func ParseSrcset(srcset string) []string {
	var urls []string
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) == 0 {
			continue
		}
		urls = append(urls, fields[0])
	}
	return urls
}
