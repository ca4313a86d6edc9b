package rule

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Collection is the result of a selector query.
type Collection interface {
	Length() int
}

// Query runs a CSS selector against a document.
type Query func(selector string) Collection

// Result is the outcome of one validation. The zero value is a pass. A
// failure may carry an empty message when a custom message is empty, so
// Failed is the test, not the Defect text.
type Result struct {
	Defect string
	failed bool
}

// Fail returns a failed Result carrying msg verbatim.
func Fail(msg string) Result {
	return Result{Defect: msg, failed: true}
}

// Passed reports whether the validation found no defect.
func (r Result) Passed() bool {
	return !r.Failed()
}

// Failed reports whether the validation found a defect.
func (r Result) Failed() bool {
	return r.failed || r.Defect != ""
}

type resultJSON struct {
	Defect *string `json:"defect,omitempty"`
}

// MarshalJSON encodes a pass as {} and a failure as {"defect": msg}, even
// when msg is empty.
func (r Result) MarshalJSON() ([]byte, error) {
	var out resultJSON
	if r.Failed() {
		msg := r.Defect
		out.Defect = &msg
	}
	return sonic.Marshal(out)
}

// UnmarshalJSON treats a present defect key as a failure.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := sonic.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Defect == nil {
		*r = Result{}
		return nil
	}
	*r = Fail(*in.Defect)
	return nil
}

// Validator checks a document through its query handle.
type Validator func(q Query) Result

// Option customizes a validator at construction time.
type Option func(*options)

type options struct {
	message string
	custom  bool
}

// WithMessage replaces the default defect message verbatim.
func WithMessage(msg string) Option {
	return func(o *options) {
		o.message = msg
		o.custom = true
	}
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// defect picks the custom message when one was supplied.
func (o options) defect(fallback func() string) Result {
	if o.custom {
		return Fail(o.message)
	}
	return Fail(fallback())
}

// DetectExistTag fails when no tag exists under root.
func DetectExistTag(root, tag string, opts ...Option) Validator {
	o := collect(opts)
	selector := TagSelector(root, tag)

	return func(q Query) Result {
		if q(selector).Length() > 0 {
			return Result{}
		}
		return o.defect(func() string {
			return fmt.Sprintf("This HTML without %s %s tag", root, tag)
		})
	}
}

// DetectExistTagWithAttribute fails when no tag under root carries attr.
func DetectExistTagWithAttribute(root, tag, attr string, opts ...Option) Validator {
	o := collect(opts)
	selector := AttributeSelector(root, tag, attr)

	return func(q Query) Result {
		if q(selector).Length() > 0 {
			return Result{}
		}
		return o.defect(func() string {
			return fmt.Sprintf("This HTML without %s %s tag include attribute %s", root, tag, attr)
		})
	}
}

// DetectExistTagWithAttributeValue fails when no tag under root has an attr
// value containing value.
func DetectExistTagWithAttributeValue(root, tag, attr, value string, opts ...Option) Validator {
	o := collect(opts)
	selector := AttributeValueSelector(root, tag, attr, value)

	return func(q Query) Result {
		if q(selector).Length() > 0 {
			return Result{}
		}
		return o.defect(func() string {
			return fmt.Sprintf("This HTML without %s %s tag include attribute value %s=%s", root, tag, attr, value)
		})
	}
}

// DetectLimitOfTagCount fails when root holds more than limit tags.
func DetectLimitOfTagCount(root, tag string, limit int, opts ...Option) Validator {
	o := collect(opts)
	selector := TagSelector(root, tag)

	return func(q Query) Result {
		if q(selector).Length() <= limit {
			return Result{}
		}
		return o.defect(func() string {
			return fmt.Sprintf("This HTML has more than %d %s %s tag", limit, root, tag)
		})
	}
}

// DetectCountWithoutTagWithAttribute fails when any tag under root lacks
// attr. The default message carries the count observed on this call.
func DetectCountWithoutTagWithAttribute(root, tag, attr string, opts ...Option) Validator {
	o := collect(opts)
	selector := MissingAttributeSelector(root, tag, attr)

	return func(q Query) Result {
		count := q(selector).Length()
		if count == 0 {
			return Result{}
		}
		return o.defect(func() string {
			return fmt.Sprintf("There are %d %s %s without %s attribute", count, root, tag, attr)
		})
	}
}

// TagSelector matches tag under root.
func TagSelector(root, tag string) string {
	return scope(root, tag)
}

// AttributeSelector matches tag under root carrying attr.
func AttributeSelector(root, tag, attr string) string {
	return fmt.Sprintf("%s[%s]", scope(root, tag), attr)
}

// AttributeValueSelector matches tag under root whose attr contains value.
func AttributeValueSelector(root, tag, attr, value string) string {
	return fmt.Sprintf("%s[%s*=%s]", scope(root, tag), attr, quote(value))
}

// MissingAttributeSelector matches tag under root lacking attr.
func MissingAttributeSelector(root, tag, attr string) string {
	return fmt.Sprintf("%s:not([%s])", scope(root, tag), attr)
}

// scope joins root and tag with the descendant combinator.
func scope(root, tag string) string {
	if strings.TrimSpace(root) == "" {
		return tag
	}
	return root + " " + tag
}

// quote renders value as a CSS string literal.
func quote(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for _, r := range value {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
