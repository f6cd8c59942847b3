package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	texts map[string]string
	attrs map[string]string //key: selector + "|" + attr name
}

func (n fakeNode) Text(selector string) (string, bool) {
	v, ok := n.texts[selector]
	return v, ok
}

func (n fakeNode) Attr(selector, name string) (string, bool) {
	v, ok := n.attrs[selector+"|"+name]
	return v, ok
}

type fakeDoc struct {
	base       string
	containers map[string][]Node
	inner      map[string]string
	body       string
}

func (d fakeDoc) QueryAll(selector string) ([]Node, error) {
	return d.containers[selector], nil
}

func (d fakeDoc) InnerText(selector string) (string, bool) {
	v, ok := d.inner[selector]
	return v, ok
}

func (d fakeDoc) BodyText() (string, error) {
	return d.body, nil
}

func (d fakeDoc) BaseURL() string {
	return d.base
}

func testCatalog() Catalog {
	return Catalog{
		Containers: []string{".card", ".card-v2"},
		Title: []FieldRule{
			{Selector: "h3 a"},
			{Selector: "a.title"},
		},
		Link: []FieldRule{
			{Selector: "h3 a", Attr: "href"},
			{Selector: "a.title", Attr: "href"},
		},
		Description: []FieldRule{{Selector: ".snippet"}},
		Company:     []FieldRule{{Selector: ".company"}},
		Location:    []FieldRule{{Selector: ".location"}},
		DetailContent: []string{
			".job-description",
			"main",
		},
	}
}

func fullCard(title, link string) fakeNode {
	return fakeNode{
		texts: map[string]string{
			"h3 a":      title,
			".snippet":  "Write Go services",
			".company":  "Acme GmbH",
			".location": "Berlin",
		},
		attrs: map[string]string{"h3 a|href": link},
	}
}

func TestExtractBatch_FullCards(t *testing.T) {
	doc := fakeDoc{
		base: "https://jobs.example.com/search",
		containers: map[string][]Node{
			".card": {
				fullCard("Go Developer", "https://jobs.example.com/jobs/1"),
				fullCard("Backend Engineer", "https://jobs.example.com/jobs/2"),
			},
		},
	}

	engine := NewEngine(testCatalog(), 120, 1500)
	listings := engine.ExtractBatch(doc)

	require.Len(t, listings, 2)
	//document order preserved
	assert.Equal(t, "Go Developer", listings[0].Title)
	assert.Equal(t, "Backend Engineer", listings[1].Title)
	assert.Equal(t, "Acme GmbH", listings[0].Company)
	assert.Equal(t, "Berlin", listings[0].Location)
}

func TestExtractBatch_PartialFieldsTolerated(t *testing.T) {
	//only title and link present — still a valid candidate
	card := fakeNode{
		texts: map[string]string{"h3 a": "Go Developer"},
		attrs: map[string]string{"h3 a|href": "https://jobs.example.com/jobs/1"},
	}
	doc := fakeDoc{
		base:       "https://jobs.example.com/search",
		containers: map[string][]Node{".card": {card}},
	}

	listings := NewEngine(testCatalog(), 120, 1500).ExtractBatch(doc)

	require.Len(t, listings, 1)
	assert.Equal(t, "Go Developer", listings[0].Title)
	assert.Empty(t, listings[0].Company)
	assert.Empty(t, listings[0].Location)
	assert.Empty(t, listings[0].Description)
}

func TestExtractBatch_MissingRequiredFieldSkipsContainerOnly(t *testing.T) {
	noTitle := fakeNode{
		texts: map[string]string{},
		attrs: map[string]string{"h3 a|href": "https://jobs.example.com/jobs/1"},
	}
	noLink := fakeNode{
		texts: map[string]string{"h3 a": "Go Developer"},
	}
	good := fullCard("Backend Engineer", "https://jobs.example.com/jobs/2")

	doc := fakeDoc{
		base:       "https://jobs.example.com/search",
		containers: map[string][]Node{".card": {noTitle, noLink, good}},
	}

	listings := NewEngine(testCatalog(), 120, 1500).ExtractBatch(doc)

	//bad siblings do not abort extraction of the good one
	require.Len(t, listings, 1)
	assert.Equal(t, "Backend Engineer", listings[0].Title)
}

func TestExtractBatch_SecondPrioritySelectorWins(t *testing.T) {
	//markup matches only the second-priority field rules and the
	//second-priority container class
	card := fakeNode{
		texts: map[string]string{"a.title": "Go Developer"},
		attrs: map[string]string{"a.title|href": "/jobs/1"},
	}
	doc := fakeDoc{
		base:       "https://jobs.example.com/search",
		containers: map[string][]Node{".card-v2": {card}},
	}

	listings := NewEngine(testCatalog(), 120, 1500).ExtractBatch(doc)

	require.Len(t, listings, 1)
	assert.Equal(t, "Go Developer", listings[0].Title)
	assert.Equal(t, "https://jobs.example.com/jobs/1", listings[0].Link)
}

func TestExtractBatch_NoContainersIsZeroResults(t *testing.T) {
	doc := fakeDoc{base: "https://jobs.example.com/search"}
	listings := NewEngine(testCatalog(), 120, 1500).ExtractBatch(doc)
	assert.Empty(t, listings)
}

func TestExtractBatch_RelativeLinksAbsolutized(t *testing.T) {
	card := fakeNode{
		texts: map[string]string{"h3 a": "Go Developer"},
		attrs: map[string]string{"h3 a|href": "/jobs/42?ref=search"},
	}
	doc := fakeDoc{
		base:       "https://jobs.example.com/search?q=go",
		containers: map[string][]Node{".card": {card}},
	}

	listings := NewEngine(testCatalog(), 120, 1500).ExtractBatch(doc)

	require.Len(t, listings, 1)
	assert.Equal(t, "https://jobs.example.com/jobs/42?ref=search", listings[0].Link)
}

func TestExtractFirst(t *testing.T) {
	doc := fakeDoc{
		base: "https://jobs.example.com/search",
		containers: map[string][]Node{".card": {
			fakeNode{}, //invalid, skipped
			fullCard("Go Developer", "https://jobs.example.com/jobs/1"),
		}},
	}

	listing, ok := NewEngine(testCatalog(), 120, 1500).ExtractFirst(doc)

	require.True(t, ok)
	assert.Equal(t, "Go Developer", listing.Title)
}

func TestExtractDetail_FirstContainerAboveThresholdWins(t *testing.T) {
	long := strings.Repeat("Responsibilities and requirements. ", 10)
	doc := fakeDoc{
		inner: map[string]string{
			".job-description": "Jobs", //below threshold: a nav label, not a description
			"main":             long,
		},
		body: "irrelevant",
	}

	desc := NewEngine(testCatalog(), 120, 1500).ExtractDetail(doc)
	assert.Equal(t, strings.TrimSpace(long), desc)
}

func TestExtractDetail_FallsBackToBodyAndTruncates(t *testing.T) {
	body := strings.Repeat("x", 5000)
	doc := fakeDoc{
		inner: map[string]string{".job-description": "Jobs"},
		body:  body,
	}

	desc := NewEngine(testCatalog(), 120, 1500).ExtractDetail(doc)
	assert.Len(t, desc, 1500)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Go Developer", cleanText("  Go \n\t Developer  "))
	assert.Equal(t, "", cleanText("   \n "))
}
