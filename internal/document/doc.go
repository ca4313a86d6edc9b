// Package document loads HTML pages for auditing.
//
// Pages come from files, directories, stdin or live URLs. Every source goes
// through the same pipeline:
//   - size validation (10MB cap)
//   - charset detection (BOM, <meta>, UTF-8, then chardet sniffing)
//   - conversion to UTF-8 and parsing with goquery
//
// Files are sniffed with mimetype; gzip and zstd compressed pages are
// decompressed transparently and binary payloads are rejected.
//
// Example Usage:
//
//	loader := document.NewLoader(fetcher)
//	doc, err := loader.Load(ctx, "site/index.html")
//	res := check(doc.Query())
package document
