package browser

import (
	"github.com/playwright-community/playwright-go"

	"go-jobharvest/internal/scraper"
)

// pageDocument adapts a playwright page to the extraction engine's Document.
// Every lookup is bounded by the element timeout; a missing element comes back
// as ok=false, never as a hang or a propagated error.
type pageDocument struct {
	page    playwright.Page
	timeout float64
}

func (d *pageDocument) QueryAll(selector string) ([]scraper.Node, error) {
	locators, err := d.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	nodes := make([]scraper.Node, len(locators))
	for i, loc := range locators {
		nodes[i] = &locatorNode{loc: loc, timeout: d.timeout}
	}
	return nodes, nil
}

func (d *pageDocument) InnerText(selector string) (string, bool) {
	loc := d.page.Locator(selector).First()
	if count, err := loc.Count(); err != nil || count == 0 {
		return "", false
	}
	text, err := loc.InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(d.timeout),
	})
	if err != nil {
		return "", false
	}
	return text, true
}

func (d *pageDocument) BodyText() (string, error) {
	return d.page.Locator("body").InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(d.timeout),
	})
}

func (d *pageDocument) BaseURL() string {
	return d.page.URL()
}

type locatorNode struct {
	loc     playwright.Locator
	timeout float64
}

func (n *locatorNode) Text(selector string) (string, bool) {
	text, err := n.loc.Locator(selector).First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(n.timeout),
	})
	if err != nil {
		return "", false
	}
	return text, true
}

func (n *locatorNode) Attr(selector, name string) (string, bool) {
	value, err := n.loc.Locator(selector).First().GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(n.timeout),
	})
	if err != nil {
		return "", false
	}
	return value, true
}
