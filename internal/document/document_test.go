package document

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const pageHTML = `<!DOCTYPE html>
<html>
<head><title>Document</title></head>
<body><h1>Hello</h1><img src="/a.png"></body>
</html>`

type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(page), nil
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestParse(t *testing.T) {
	doc, err := Parse("page", []byte(pageHTML))
	require.NoError(t, err)

	assert.Equal(t, "page", doc.Name)
	assert.Equal(t, "Document", doc.Doc.Find("title").Text())
	assert.Equal(t, 1, doc.Query()("body img").Length())
}

func TestValidateHTML(t *testing.T) {
	assert.NoError(t, ValidateHTML([]byte(pageHTML)))
	assert.ErrorIs(t, ValidateHTML(nil), ErrEmpty)
	assert.ErrorIs(t, ValidateHTML([]byte("  \n\t")), ErrEmpty)
	assert.ErrorIs(t, ValidateHTML(make([]byte, MaxHTMLSize+1)), ErrTooLarge)
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse("empty", nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestDetectCharset(t *testing.T) {
	assert.Equal(t, "utf-8", DetectCharset([]byte(pageHTML)))
	assert.Equal(t, "utf-8", DetectCharset([]byte("<p>café</p>")))

	// High bytes beyond the first kilobyte still count as UTF-8
	late := strings.Repeat(" ", 2048) + "<p>café</p>"
	assert.Equal(t, "utf-8", DetectCharset([]byte(late)))

	sjis := []byte("<html><head><meta charset=\"shift_jis\"></head></html>")
	assert.Equal(t, "shift_jis", DetectCharset(sjis))
}

func TestDetectCharsetKeepsDeclaredWindows1252(t *testing.T) {
	body := bytes.Repeat([]byte{0x93, 0xfa, 0x96, 0x7b}, 64)

	for name, head := range map[string]string{
		"meta charset": `<meta charset="windows-1252">`,
		"latin1 label": `<meta charset="iso-8859-1">`,
		"http-equiv":   `<meta http-equiv="Content-Type" content="text/html; charset=windows-1252">`,
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			buf.WriteString("<html><head>" + head + "<title>")
			buf.Write(body[:4])
			buf.WriteString("</title></head><body><p>")
			buf.Write(body)
			buf.WriteString("</p></body></html>")

			assert.Equal(t, "windows-1252", DetectCharset(buf.Bytes()))

			doc, err := Parse(name, buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, "\u201c\u00fa\u2013{", doc.Doc.Find("title").Text())
		})
	}
}

func TestMetaCharset(t *testing.T) {
	attr := func(kv ...string) []html.Attribute {
		var out []html.Attribute
		for i := 0; i < len(kv); i += 2 {
			out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
		}
		return out
	}

	assert.Equal(t, "utf-8", metaCharset(attr("charset", " utf-8 ")))
	assert.Equal(t, "windows-1252", metaCharset(attr("http-equiv", "content-type", "content", "text/html; charset=windows-1252")))
	assert.Equal(t, "", metaCharset(attr("content", "text/html; charset=windows-1252")))
	assert.Equal(t, "", metaCharset(attr("name", "description", "content", "x")))
}

func TestParseConvertsDeclaredCharset(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(`<html><head><meta charset="shift_jis"><title>`)
	buf.Write([]byte{0x93, 0xfa, 0x96, 0x7b}) // 日本 in Shift_JIS
	buf.WriteString(`</title></head></html>`)

	doc, err := Parse("sjis", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "日本", doc.Doc.Find("title").Text())
}

func TestParseNode(t *testing.T) {
	node, err := ParseNode([]byte(pageHTML))
	require.NoError(t, err)
	require.NotNil(t, node)

	_, err = ParseNode(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("plain", func(t *testing.T) {
		path := writeFile(t, dir, "index.html", []byte(pageHTML))
		doc, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, path, doc.Name)
		assert.Equal(t, "Document", doc.Doc.Find("title").Text())
	})

	t.Run("gzip", func(t *testing.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(pageHTML))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		path := writeFile(t, dir, "index.html.gz", buf.Bytes())
		doc, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Document", doc.Doc.Find("title").Text())
	})

	t.Run("zstd", func(t *testing.T) {
		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = zw.Write([]byte(pageHTML))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		path := writeFile(t, dir, "index.html.zst", buf.Bytes())
		doc, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Document", doc.Doc.Find("title").Text())
	})

	t.Run("binary", func(t *testing.T) {
		png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
		path := writeFile(t, dir, "logo.html", png)
		_, err := LoadFile(path)
		assert.ErrorIs(t, err, ErrNotText)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.html"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty", func(t *testing.T) {
		path := writeFile(t, dir, "empty.html", nil)
		_, err := LoadFile(path)
		assert.ErrorIs(t, err, ErrEmpty)
	})
}

func TestParseEngine(t *testing.T) {
	for in, want := range map[string]Engine{"": EngineGoquery, "goquery": EngineGoquery, " Cascadia ": EngineCascadia} {
		got, err := ParseEngine(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEngine("xpath")
	assert.Error(t, err)
}

func TestParseWithCascadia(t *testing.T) {
	doc, err := ParseWith("page", []byte(pageHTML), EngineCascadia)
	require.NoError(t, err)
	assert.Nil(t, doc.Doc)
	require.NotNil(t, doc.Node)
	assert.Equal(t, 1, doc.Query()("head title").Length())

	_, err = ParseWith("empty", nil, EngineCascadia)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoaderEngine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "index.html", []byte(pageHTML))

	loader := NewLoader(nil).WithEngine(EngineCascadia).WithStdin(strings.NewReader(pageHTML))
	assert.Equal(t, EngineCascadia, loader.Engine())

	for _, loc := range []string{path, StdinLocation} {
		doc, err := loader.Load(context.Background(), loc)
		require.NoError(t, err, loc)
		assert.Nil(t, doc.Doc, loc)
		assert.Equal(t, 1, doc.Query()("head title").Length(), loc)
	}

	assert.Equal(t, EngineGoquery, NewLoader(nil).WithEngine("").Engine())
}

func TestLoaderLoad(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{pages: map[string]string{"https://example.com/": pageHTML}}
	dir := t.TempDir()
	path := writeFile(t, dir, "page.html", []byte(pageHTML))

	loader := NewLoader(fetcher).WithStdin(strings.NewReader(pageHTML))

	doc, err := loader.Load(ctx, StdinLocation)
	require.NoError(t, err)
	assert.Equal(t, "stdin", doc.Name)

	doc, err = loader.Load(ctx, "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", doc.Name)
	assert.Equal(t, []string{"https://example.com/"}, fetcher.calls)

	_, err = loader.Load(ctx, "https://example.com/missing")
	assert.Error(t, err)

	doc, err = loader.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Name)
}

func TestLoaderWithoutFetcher(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), "http://example.com")
	assert.ErrorIs(t, err, ErrNoFetcher)
}

func TestLoaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(nil).Load(ctx, "page.html")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("http://example.com"))
	assert.True(t, IsURL("HTTPS://example.com"))
	assert.False(t, IsURL("site/index.html"))
	assert.False(t, IsURL("ftp://example.com"))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", []byte(pageHTML))
	writeFile(t, dir, "blog/post.htm", []byte(pageHTML))
	writeFile(t, dir, "blog/2024/archive.html.gz", []byte("x"))
	writeFile(t, dir, "assets/app.js", []byte("x"))
	writeFile(t, dir, "notes.txt", []byte("x"))

	found, err := Discover(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "blog/2024/archive.html.gz"),
		filepath.Join(dir, "blog/post.htm"),
		filepath.Join(dir, "index.html"),
	}, found)

	found, err = Discover(context.Background(), dir, "blog/**/*.htm")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "blog/post.htm")}, found)

	_, err = Discover(context.Background(), dir, "[")
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "site/index.html", []byte(pageHTML))
	single := writeFile(t, dir, "single.html", []byte(pageHTML))

	out, err := Expand(context.Background(), []string{
		"https://example.com",
		filepath.Join(dir, "site"),
		single,
		StdinLocation,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com", page, single, StdinLocation}, out)

	missing := filepath.Join(dir, "missing")
	out, err = Expand(context.Background(), []string{missing}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{missing}, out)

	_, err = Expand(context.Background(), []string{filepath.Join(dir, "site")}, "[")
	assert.Error(t, err)
}
