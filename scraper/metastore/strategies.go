package metastore

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"metastore-scraper/services"
)

const (
	imageSelector       = "img[alt*='banner'], img[alt*='cover'], img[alt*='logo'], img[src*='banner'], img[src*='cover']"
	descriptionSelector = "div[class*='description'] p, div[class*='detail'] p, div[class*='about'] p"
	minDescriptionRunes = 50
)

// itemPage is the rendered item page the field strategies read from.
type itemPage struct {
	doc *goquery.Document
	url *url.URL

	ratingText    string
	ratingLocated bool
}

func newItemPage(rawURL string, doc *goquery.Document) *itemPage {
	u, err := url.Parse(rawURL)
	if err != nil {
		u = &url.URL{}
	}
	return &itemPage{doc: doc, url: u}
}

// strategy is one named attempt at locating a field value.
type strategy[T any] struct {
	name string
	find func(p *itemPage) (T, bool)
}

// selectFirst returns the value of the first strategy that finds one,
// together with that strategy's name, or def and "default".
func selectFirst[T any](p *itemPage, strategies []strategy[T], def T) (T, string) {
	for _, s := range strategies {
		if v, ok := s.find(p); ok {
			return v, s.name
		}
	}
	return def, "default"
}

var nameStrategies = []strategy[string]{
	{name: "h1", find: func(p *itemPage) (string, bool) {
		return nonEmpty(p.doc.Find("h1").First().Text())
	}},
}

var imageStrategies = []strategy[string]{
	{name: "banner-image", find: func(p *itemPage) (string, bool) {
		src, ok := p.doc.Find(imageSelector).First().Attr("src")
		if !ok {
			return "", false
		}
		return resolve(p.url, src)
	}},
}

var ratingStrategies = []strategy[float64]{
	{name: "rating-text", find: func(p *itemPage) (float64, bool) {
		text, ok := p.locateRatingText()
		if !ok {
			return 0, false
		}
		return services.ParseRating(text)
	}},
}

var reviewStrategies = []strategy[int]{
	{name: "rating-text", find: func(p *itemPage) (int, bool) {
		text, ok := p.locateRatingText()
		if !ok {
			return 0, false
		}
		return services.ParseReviewCount(text)
	}},
}

var descriptionStrategies = []strategy[string]{
	{name: "description-block", find: func(p *itemPage) (string, bool) {
		return nonEmpty(p.doc.Find(descriptionSelector).First().Text())
	}},
	{name: "long-paragraph", find: func(p *itemPage) (string, bool) {
		var found string
		p.doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := services.NormaliseText(s.Text())
			if services.RuneLen(text) > minDescriptionRunes {
				found = text
				return false
			}
			return true
		})
		return nonEmpty(found)
	}},
}

var categoryStrategies = []strategy[string]{
	{name: "labelled-sibling", find: func(p *itemPage) (string, bool) {
		var found string
		p.doc.Find("div, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			own := ownText(s)
			if !strings.Contains(own, "Category") && !strings.Contains(own, "Genre") {
				return true
			}
			sibling := s.NextAllFiltered(goquery.NodeName(s)).First()
			if text, ok := nonEmpty(sibling.Text()); ok {
				found = text
				return false
			}
			return true
		})
		return nonEmpty(found)
	}},
}

// locateRatingText finds the first element, in document order, whose own
// text mentions stars or ratings or whose class names a rating widget.
// The result is cached because rating and review count share it.
func (p *itemPage) locateRatingText() (string, bool) {
	if p.ratingLocated {
		return p.ratingText, p.ratingText != ""
	}
	p.ratingLocated = true

	p.doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		switch goquery.NodeName(s) {
		case "script", "style", "noscript", "template":
			return true
		}
		class, _ := s.Attr("class")
		own := ownText(s)
		if strings.Contains(own, "star") || strings.Contains(own, "rating") ||
			strings.Contains(class, "rating") || strings.Contains(class, "stars") {
			p.ratingText = services.NormaliseText(s.Text())
			return false
		}
		return true
	})
	return p.ratingText, p.ratingText != ""
}

// ownText concatenates the direct text children of the selection's first node.
func ownText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for c := s.Get(0).FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func nonEmpty(s string) (string, bool) {
	s = services.NormaliseText(s)
	return s, s != ""
}

// resolve makes href absolute against base and keeps only web URLs.
func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}
