package rule

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Nodes is a Collection of raw HTML nodes.
type Nodes []*html.Node

// Length returns the number of matched nodes.
func (n Nodes) Length() int {
	return len(n)
}

// FromSelection queries the descendants of s.
func FromSelection(s *goquery.Selection) Query {
	return func(selector string) Collection {
		return s.Find(selector)
	}
}

// FromDocument queries a parsed goquery document.
func FromDocument(doc *goquery.Document) Query {
	return FromSelection(doc.Selection)
}

// FromNode queries an html.Node tree with cascadia. Selectors that fail to
// compile match nothing.
func FromNode(root *html.Node) Query {
	return func(selector string) Collection {
		sel, err := cascadia.Compile(selector)
		if err != nil {
			return Nodes(nil)
		}
		return Nodes(sel.MatchAll(root))
	}
}
