// Package rule provides the SEO lint predicates.
//
// Each factory captures its configuration and returns a Validator. A
// Validator runs exactly one CSS selector against a Query handle and
// returns a Result: the zero Result is a pass, a failure carries a single
// defect message (possibly empty, when a custom message is empty).
//
// Factories:
//   - DetectExistTag: "root tag" must match at least once
//   - DetectExistTagWithAttribute: "root tag[attr]" must match
//   - DetectExistTagWithAttributeValue: "root tag[attr*=value]" must match
//   - DetectLimitOfTagCount: "root tag" may match at most limit times
//   - DetectCountWithoutTagWithAttribute: "root tag:not([attr])" must not match
//
// Query adapters exist for goquery selections and raw html.Node trees.
//
// Example Usage:
//
//	check := rule.DetectExistTag("head", "title")
//	if res := check(rule.FromDocument(doc)); res.Failed() {
//	    fmt.Println(res.Defect)
//	}
package rule
