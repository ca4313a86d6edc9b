package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// DefaultPattern matches plain and compressed HTML pages.
const DefaultPattern = "**/*.{html,htm,xhtml,html.gz,html.zst}"

// Discover walks root and returns every file whose slash-separated path
// relative to root matches the doublestar pattern, sorted.
func Discover(ctx context.Context, root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	var (
		mu      sync.Mutex
		matches []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
			mu.Lock()
			matches = append(matches, p)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}

	sort.Strings(matches)
	return matches, nil
}

// Expand replaces directory locations with the pages discovered under them.
// URLs, stdin and plain files pass through in order. Paths that cannot be
// stat'ed also pass through so the load failure lands on their report.
func Expand(ctx context.Context, locations []string, pattern string) ([]string, error) {
	var out []string
	for _, loc := range locations {
		if loc == StdinLocation || IsURL(loc) {
			out = append(out, loc)
			continue
		}

		info, err := os.Stat(loc)
		if err != nil || !info.IsDir() {
			out = append(out, loc)
			continue
		}

		found, err := Discover(ctx, loc, pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}
