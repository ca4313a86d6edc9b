package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// StdinLocation names standard input as a document location.
const StdinLocation = "-"

// Fetcher downloads a page body.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Loader resolves document locations into parsed Documents.
type Loader struct {
	fetcher Fetcher
	stdin   io.Reader
	engine  Engine
}

// NewLoader creates a loader. A nil fetcher disables URL locations.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher, stdin: os.Stdin, engine: EngineGoquery}
}

// WithEngine selects the query engine loaded documents use.
func (l *Loader) WithEngine(e Engine) *Loader {
	if e != "" {
		l.engine = e
	}
	return l
}

// Engine returns the loader's query engine.
func (l *Loader) Engine() Engine {
	return l.engine
}

// WithStdin replaces the reader used for the "-" location.
func (l *Loader) WithStdin(r io.Reader) *Loader {
	l.stdin = r
	return l
}

// IsURL reports whether location is an http(s) URL.
func IsURL(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load loads a document from a file path, a URL, or "-" for stdin.
func (l *Loader) Load(ctx context.Context, location string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case location == StdinLocation:
		data, err := readLimited(l.stdin)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return ParseWith("stdin", data, l.engine)
	case IsURL(location):
		if l.fetcher == nil {
			return nil, fmt.Errorf("%s: %w", location, ErrNoFetcher)
		}
		data, err := l.fetcher.Get(ctx, location)
		if err != nil {
			return nil, err
		}
		return ParseWith(location, data, l.engine)
	default:
		data, err := ReadFile(location)
		if err != nil {
			return nil, err
		}
		return ParseWith(location, data, l.engine)
	}
}

// LoadReader reads and parses a document from r.
func LoadReader(name string, r io.Reader) (*Document, error) {
	data, err := readLimited(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return Parse(name, data)
}

// LoadFile reads and parses a page from disk.
func LoadFile(path string) (*Document, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// ReadFile reads a page from disk. Compressed pages are inflated and
// non-text files are rejected.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	data, err = decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := ValidateHTML(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if mtype := mimetype.Detect(data); !isText(mtype) {
		return nil, fmt.Errorf("%s: %w (%s)", path, ErrNotText, mtype.String())
	}

	return data, nil
}

// decompress inflates gzip and zstd payloads and returns anything else as is.
func decompress(data []byte) ([]byte, error) {
	mtype := mimetype.Detect(data)

	switch {
	case mtype.Is("application/gzip"):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		return readLimited(zr)

	case mtype.Is("application/zstd"):
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		return readLimited(zr)

	default:
		return data, nil
	}
}

// isText reports whether mtype is text/plain or one of its descendants.
func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// readLimited reads at most MaxHTMLSize bytes and fails on anything longer.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxHTMLSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxHTMLSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
