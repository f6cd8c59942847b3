package scraper

// Node is the slice of DOM behavior the extraction engine needs from one
// result-list container. A missing sub-element is an ordinary data case
// (ok=false), never an error.
type Node interface {
	//Text returns the text content of the first descendant matching selector.
	Text(selector string) (text string, ok bool)

	//Attr returns the named attribute of the first descendant matching selector.
	Attr(selector, name string) (value string, ok bool)
}

// Document is one loaded page.
type Document interface {
	//QueryAll returns all nodes matching selector, in document order.
	QueryAll(selector string) ([]Node, error)

	//InnerText returns the visible text of the first node matching selector.
	InnerText(selector string) (text string, ok bool)

	//BodyText returns the full visible page text.
	BodyText() (string, error)

	//BaseURL is the document's URL, used to absolutize relative links.
	BaseURL() string
}
