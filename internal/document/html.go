package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/GriffinCanCode/seolint/internal/rule"
	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// MaxHTMLSize limits HTML input to 10MB to prevent memory exhaustion
const MaxHTMLSize = 10 * 1024 * 1024

var (
	ErrEmpty    = errors.New("html content required")
	ErrTooLarge = fmt.Errorf("html exceeds maximum size of %d bytes", MaxHTMLSize)
	ErrNotText  = errors.New("content is not text")

	ErrNoFetcher = errors.New("url loading is not configured")
)

// Engine selects the selector backend rules query through.
type Engine string

const (
	// EngineGoquery parses into a goquery document.
	EngineGoquery Engine = "goquery"
	// EngineCascadia parses into a bare html.Node tree queried with cascadia.
	EngineCascadia Engine = "cascadia"
)

// ParseEngine validates an engine name. Empty means goquery.
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(s))) {
	case EngineGoquery, "":
		return EngineGoquery, nil
	case EngineCascadia:
		return EngineCascadia, nil
	default:
		return "", fmt.Errorf("unknown query engine %q", s)
	}
}

// Document is a parsed page. Exactly one of Doc and Node is set, depending
// on the engine it was parsed with.
type Document struct {
	Name string
	Doc  *goquery.Document
	Node *html.Node
}

// Query returns the selector query handle rules run against.
func (d *Document) Query() rule.Query {
	if d.Doc != nil {
		return rule.FromDocument(d.Doc)
	}
	return rule.FromNode(d.Node)
}

// ValidateHTML checks HTML size and returns error if empty or too large
func ValidateHTML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmpty
	}
	if len(data) > MaxHTMLSize {
		return ErrTooLarge
	}
	return nil
}

// DetectCharset reports the charset of data. A byte order mark or <meta>
// declaration wins; undeclared non-UTF-8 input is sniffed with chardet.
func DetectCharset(data []byte) string {
	_, name, certain := charset.DetermineEncoding(data, "text/html")
	// windows-1252 is also the fallback, so only trust it when declared
	if certain || name != "windows-1252" || declaresCharset(data) {
		return name
	}
	// The fallback only looks at the first 1KB
	if utf8.Valid(data) {
		return "utf-8"
	}

	detector := chardet.NewHtmlDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return name
	}
	return strings.ToLower(result.Charset)
}

// prescanSize matches the window browsers scan for a charset declaration.
const prescanSize = 1024

// declaresCharset reports whether the head of data carries a <meta> charset
// declaration with a known label.
func declaresCharset(data []byte) bool {
	if len(data) > prescanSize {
		data = data[:prescanSize]
	}

	z := html.NewTokenizer(bytes.NewReader(data))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "meta" {
				continue
			}
			if label := metaCharset(tok.Attr); label != "" {
				if enc, _ := charset.Lookup(label); enc != nil {
					return true
				}
			}
		}
	}
}

// metaCharset extracts the label from <meta charset> or an http-equiv
// content-type declaration.
func metaCharset(attrs []html.Attribute) string {
	var httpEquiv bool
	var content string
	for _, a := range attrs {
		switch strings.ToLower(a.Key) {
		case "charset":
			return strings.TrimSpace(a.Val)
		case "http-equiv":
			httpEquiv = strings.EqualFold(strings.TrimSpace(a.Val), "content-type")
		case "content":
			content = a.Val
		}
	}
	if !httpEquiv {
		return ""
	}

	lower := strings.ToLower(content)
	i := strings.Index(lower, "charset=")
	if i < 0 {
		return ""
	}
	label := strings.Trim(content[i+len("charset="):], ` "';`)
	if j := strings.IndexAny(label, " ;"); j >= 0 {
		label = label[:j]
	}
	return label
}

// utf8Reader converts data to UTF-8 using the detected charset.
func utf8Reader(data []byte) io.Reader {
	contentType := "text/html; charset=" + DetectCharset(data)
	r, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		// Fallback to direct parsing
		return bytes.NewReader(data)
	}
	return r
}

// Parse validates and parses data into a goquery-backed Document.
func Parse(name string, data []byte) (*Document, error) {
	return ParseWith(name, data, EngineGoquery)
}

// ParseWith validates and parses data for the given engine.
func ParseWith(name string, data []byte, engine Engine) (*Document, error) {
	if engine == EngineCascadia {
		node, err := ParseNode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return &Document{Name: name, Node: node}, nil
	}

	if err := ValidateHTML(data); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: parse failed: %w", name, err)
	}

	return &Document{Name: name, Doc: doc}, nil
}

// ParseNode parses data into an html.Node tree, for callers that query with
// rule.FromNode instead of goquery.
func ParseNode(data []byte) (*html.Node, error) {
	if err := ValidateHTML(data); err != nil {
		return nil, err
	}
	return htmlquery.Parse(utf8Reader(data))
}
