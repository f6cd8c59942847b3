package scraper

import (
	"log"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	"go-jobharvest/internal/models"
)

// Engine turns a loaded page into zero or more normalized JobListing
// candidates by walking the Catalog's fallback chains. It never aborts on a
// single bad container: a container missing its required fields is skipped.
type Engine struct {
	Catalog           Catalog
	MinDescriptionLen int
	MaxDescriptionLen int
}

func NewEngine(cat Catalog, minDescLen, maxDescLen int) *Engine {
	return &Engine{
		Catalog:           cat,
		MinDescriptionLen: minDescLen,
		MaxDescriptionLen: maxDescLen,
	}
}

// ExtractBatch runs batch mode against a results page: every container is
// tried independently, candidates keep document order, and nothing here
// deduplicates against storage.
func (e *Engine) ExtractBatch(doc Document) []models.JobListing {
	nodes := e.containers(doc)
	if len(nodes) == 0 {
		log.Println("[extract] no result containers matched — 0 listings")
		return nil
	}

	listings := make([]models.JobListing, 0, len(nodes))
	for _, node := range nodes {
		listing, ok := e.extractOne(doc, node)
		if !ok {
			continue
		}
		listings = append(listings, listing)
	}
	return listings
}

// ExtractFirst returns the first container that yields a valid candidate.
// Single-job mode uses it to find the detail link to open.
func (e *Engine) ExtractFirst(doc Document) (models.JobListing, bool) {
	for _, node := range e.containers(doc) {
		if listing, ok := e.extractOne(doc, node); ok {
			return listing, true
		}
	}
	return models.JobListing{}, false
}

// ExtractDetail applies the detail-page content strategy: the first content
// container whose visible text clears the minimum length wins; if none does,
// the full body text is the fallback. The result is always truncated.
func (e *Engine) ExtractDetail(doc Document) string {
	for _, sel := range e.Catalog.DetailContent {
		text, ok := doc.InnerText(sel)
		if !ok {
			continue
		}
		text = cleanText(text)
		if len(text) >= e.MinDescriptionLen {
			return truncate(text, e.MaxDescriptionLen)
		}
	}

	body, err := doc.BodyText()
	if err != nil {
		log.Printf("[extract] body text fallback failed: %v", err)
		return ""
	}
	return truncate(cleanText(body), e.MaxDescriptionLen)
}

// containers tries each container selector in order and keeps the first
// alternative that matches anything on the page.
func (e *Engine) containers(doc Document) []Node {
	for _, sel := range e.Catalog.Containers {
		nodes, err := doc.QueryAll(sel)
		if err != nil {
			log.Printf("[extract] container query %q failed: %v", sel, err)
			continue
		}
		if len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}

func (e *Engine) extractOne(doc Document, node Node) (models.JobListing, bool) {
	listing := models.JobListing{
		Title:       firstMatch(node, e.Catalog.Title),
		Link:        e.absolutize(doc, firstMatch(node, e.Catalog.Link)),
		Company:     firstMatch(node, e.Catalog.Company),
		Location:    firstMatch(node, e.Catalog.Location),
		Description: truncate(firstMatch(node, e.Catalog.Description), e.MaxDescriptionLen),
	}
	if !listing.Valid() {
		return models.JobListing{}, false
	}
	return listing, true
}

// firstMatch is the fallback-chain combinator: the first rule producing
// non-empty cleaned text wins for the field.
func firstMatch(node Node, rules []FieldRule) string {
	for _, rule := range rules {
		var raw string
		var ok bool
		if rule.Attr != "" {
			raw, ok = node.Attr(rule.Selector, rule.Attr)
		} else {
			raw, ok = node.Text(rule.Selector)
		}
		if !ok {
			continue
		}
		if text := cleanText(raw); text != "" {
			return text
		}
	}
	return ""
}

func (e *Engine) absolutize(doc Document, link string) string {
	if link == "" {
		return ""
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	if ref.IsAbs() {
		return link
	}
	base, err := url.Parse(doc.BaseURL())
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}

// cleanText normalizes unicode composition and collapses runs of whitespace.
func cleanText(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
