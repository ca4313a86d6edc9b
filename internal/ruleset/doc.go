// Package ruleset declares SEO rules as data.
//
// A Definition names one of the rule factories (its Kind) and carries the
// factory's arguments. Sets of definitions load from YAML, TOML or JSON
// files and compile into named validators for the checker.
//
// Example rules.yaml:
//
//	rules:
//	  - name: img-alt
//	    kind: count_without_attribute
//	    root: html
//	    tag: img
//	    attr: alt
//	  - name: h1-limit
//	    kind: limit_tag_count
//	    root: html
//	    tag: h1
//	    limit: 1
//	    message: This page has more than one <h1>
package ruleset
