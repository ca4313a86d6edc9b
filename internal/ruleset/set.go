package ruleset

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/seolint/internal/checker"
)

// Set is an ordered collection of rule definitions.
type Set struct {
	// IncludeDefaults merges the file's rules over the built-in set.
	IncludeDefaults bool         `json:"include_defaults,omitempty" yaml:"include_defaults,omitempty" toml:"include_defaults,omitempty"`
	Rules           []Definition `json:"rules" yaml:"rules" toml:"rules"`
}

// Default returns the built-in SEO rule set.
func Default() *Set {
	return &Set{Rules: []Definition{
		{Name: "img-alt", Kind: KindCountWithoutAttribute, Root: "html", Tag: "img", Attr: "alt"},
		{Name: "a-rel", Kind: KindCountWithoutAttribute, Root: "html", Tag: "a", Attr: "rel"},
		{Name: "head-title", Kind: KindExistTag, Root: "head", Tag: "title"},
		{Name: "meta-description", Kind: KindExistAttributeValue, Root: "head", Tag: "meta", Attr: "name", Value: "description"},
		{Name: "meta-keywords", Kind: KindExistAttributeValue, Root: "head", Tag: "meta", Attr: "name", Value: "keywords"},
		{Name: "strong-limit", Kind: KindLimitTagCount, Root: "html", Tag: "strong", Limit: 15},
		{Name: "h1-limit", Kind: KindLimitTagCount, Root: "html", Tag: "h1", Limit: 1},
	}}
}

// Validate checks every definition and rejects duplicate names.
func (s *Set) Validate() error {
	seen := make(map[string]bool, len(s.Rules))
	for _, d := range s.Rules {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Name] {
			return fmt.Errorf("%w: duplicate rule name %q", ErrInvalid, d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// Names returns rule names in definition order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Rules))
	for _, d := range s.Rules {
		names = append(names, d.Name)
	}
	return names
}

// Lookup finds a definition by name.
func (s *Set) Lookup(name string) (Definition, bool) {
	for _, d := range s.Rules {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Enabled returns the definitions that are not disabled.
func (s *Set) Enabled() []Definition {
	out := make([]Definition, 0, len(s.Rules))
	for _, d := range s.Rules {
		if !d.Disabled {
			out = append(out, d)
		}
	}
	return out
}

// Select returns a set holding only the named rules, in definition order.
// Naming a rule selects it even when it is disabled. Blank names are
// ignored; a list with no real names selects all.
func (s *Set) Select(names ...string) (*Set, error) {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := s.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
		want[name] = true
	}
	if len(want) == 0 {
		return s, nil
	}

	out := &Set{}
	for _, d := range s.Rules {
		if want[d.Name] {
			d.Disabled = false
			out.Rules = append(out.Rules, d)
		}
	}
	return out, nil
}

// Merge overlays other onto s: same-named definitions are replaced in place,
// new ones are appended.
func (s *Set) Merge(other *Set) *Set {
	out := &Set{Rules: append([]Definition(nil), s.Rules...)}
	index := make(map[string]int, len(out.Rules))
	for i, d := range out.Rules {
		index[d.Name] = i
	}

	for _, d := range other.Rules {
		if i, ok := index[d.Name]; ok {
			out.Rules[i] = d
			continue
		}
		index[d.Name] = len(out.Rules)
		out.Rules = append(out.Rules, d)
	}
	return out
}

// Compile builds the enabled rules for the checker.
func (s *Set) Compile() ([]checker.Rule, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	enabled := s.Enabled()
	rules := make([]checker.Rule, 0, len(enabled))
	for _, d := range enabled {
		v, err := d.Build()
		if err != nil {
			return nil, err
		}
		rules = append(rules, checker.Rule{Name: d.Name, Validate: v})
	}
	return rules, nil
}
