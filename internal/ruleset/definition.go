package ruleset

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/seolint/internal/rule"
)

// Kind selects the rule factory a Definition builds.
type Kind string

const (
	KindExistTag              Kind = "exist_tag"
	KindExistAttribute        Kind = "exist_attribute"
	KindExistAttributeValue   Kind = "exist_attribute_value"
	KindLimitTagCount         Kind = "limit_tag_count"
	KindCountWithoutAttribute Kind = "count_without_attribute"
)

// Kinds lists every supported kind.
var Kinds = []Kind{
	KindExistTag,
	KindExistAttribute,
	KindExistAttributeValue,
	KindLimitTagCount,
	KindCountWithoutAttribute,
}

var (
	ErrUnknownKind = errors.New("unknown rule kind")
	ErrUnknownRule = errors.New("unknown rule")
	ErrInvalid     = errors.New("invalid rule definition")
)

// Definition is a declarative rule.
type Definition struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Kind     Kind   `json:"kind" yaml:"kind" toml:"kind"`
	Root     string `json:"root,omitempty" yaml:"root,omitempty" toml:"root,omitempty"`
	Tag      string `json:"tag" yaml:"tag" toml:"tag"`
	Attr     string `json:"attr,omitempty" yaml:"attr,omitempty" toml:"attr,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Limit    int    `json:"limit,omitempty" yaml:"limit,omitempty" toml:"limit,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled,omitempty"`
}

// Validate checks the fields the definition's kind requires.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalid)
	}
	if d.Tag == "" {
		return fmt.Errorf("%w: %s: tag required", ErrInvalid, d.Name)
	}

	switch d.Kind {
	case KindExistTag:
	case KindExistAttribute, KindCountWithoutAttribute:
		if d.Attr == "" {
			return fmt.Errorf("%w: %s: attr required for %s", ErrInvalid, d.Name, d.Kind)
		}
	case KindExistAttributeValue:
		if d.Attr == "" || d.Value == "" {
			return fmt.Errorf("%w: %s: attr and value required for %s", ErrInvalid, d.Name, d.Kind)
		}
	case KindLimitTagCount:
		if d.Limit < 0 {
			return fmt.Errorf("%w: %s: limit must not be negative", ErrInvalid, d.Name)
		}
	default:
		return fmt.Errorf("%w: %s: %q", ErrUnknownKind, d.Name, d.Kind)
	}
	return nil
}

// Selector returns the CSS selector the built validator runs.
func (d Definition) Selector() string {
	switch d.Kind {
	case KindExistAttribute:
		return rule.AttributeSelector(d.Root, d.Tag, d.Attr)
	case KindExistAttributeValue:
		return rule.AttributeValueSelector(d.Root, d.Tag, d.Attr, d.Value)
	case KindCountWithoutAttribute:
		return rule.MissingAttributeSelector(d.Root, d.Tag, d.Attr)
	default:
		return rule.TagSelector(d.Root, d.Tag)
	}
}

// Build validates the definition and returns its validator.
func (d Definition) Build() (rule.Validator, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var opts []rule.Option
	if d.Message != "" {
		opts = append(opts, rule.WithMessage(d.Message))
	}

	switch d.Kind {
	case KindExistTag:
		return rule.DetectExistTag(d.Root, d.Tag, opts...), nil
	case KindExistAttribute:
		return rule.DetectExistTagWithAttribute(d.Root, d.Tag, d.Attr, opts...), nil
	case KindExistAttributeValue:
		return rule.DetectExistTagWithAttributeValue(d.Root, d.Tag, d.Attr, d.Value, opts...), nil
	case KindLimitTagCount:
		return rule.DetectLimitOfTagCount(d.Root, d.Tag, d.Limit, opts...), nil
	default:
		return rule.DetectCountWithoutTagWithAttribute(d.Root, d.Tag, d.Attr, opts...), nil
	}
}
