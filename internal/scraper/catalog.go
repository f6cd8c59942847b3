package scraper

// FieldRule is one candidate way to read a field off a container element.
// An empty Attr means the element's text content; otherwise the named
// attribute of the first match is read.
type FieldRule struct {
	Selector string
	Attr     string
}

// Catalog holds the ordered extraction rules for the target site. Each field
// carries a priority list of alternatives so a site redesign that renames one
// class does not kill the whole pipeline: the first rule yielding non-empty
// text wins.
type Catalog struct {
	//Result-list containers, tried in order until one matches at least once
	Containers []string

	//Per-field fallback chains, evaluated per container
	Title       []FieldRule
	Link        []FieldRule
	Description []FieldRule
	Company     []FieldRule
	Location    []FieldRule

	//Detail-page content containers for single-job mode, tried in order
	DetailContent []string
}

// DefaultCatalog covers the layout variants the target site is known to serve.
func DefaultCatalog() Catalog {
	return Catalog{
		Containers: []string{
			".job-item-search-result",
			".job-item",
			"article.job-card",
			`[data-testid="job-card"]`,
		},
		Title: []FieldRule{
			{Selector: "h3.title a"},
			{Selector: ".title-block a"},
			{Selector: "a.title"},
			{Selector: "h2 a"},
		},
		Link: []FieldRule{
			{Selector: "h3.title a", Attr: "href"},
			{Selector: ".title-block a", Attr: "href"},
			{Selector: "a.title", Attr: "href"},
			{Selector: "h2 a", Attr: "href"},
		},
		Description: []FieldRule{
			{Selector: ".job-description"},
			{Selector: ".description"},
			{Selector: ".snippet"},
		},
		Company: []FieldRule{
			{Selector: ".company-name"},
			{Selector: "a.company"},
			{Selector: ".employer"},
		},
		Location: []FieldRule{
			{Selector: ".address"},
			{Selector: ".location"},
			{Selector: ".label-address"},
		},
		DetailContent: []string{
			".job-description",
			"#job-details",
			"article.job-view",
			"main",
		},
	}
}
