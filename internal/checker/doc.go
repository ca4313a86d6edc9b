// Package checker runs rule sets over documents and aggregates defects.
//
// Every rule runs exactly once per document, in order. Run loads and checks
// many locations on a bounded worker pool; a document that fails to load
// yields an error report instead of aborting the batch.
//
// Example Usage:
//
//	rules, _ := ruleset.Default().Compile()
//	c := checker.New(rules, checker.WithLoader(loader), checker.WithLogger(logger))
//	reports, err := c.Run(ctx, []string{"site/index.html", "https://example.com/"})
package checker
