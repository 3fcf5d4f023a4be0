// Package extract pulls charter request fields out of free-text messages.
//
// Every rule is an independent regular expression searched across the whole
// message, so labels may appear in any order and surrounded by other text.
package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Marker is the case-insensitive phrase a message must contain to be considered.
const Marker = "charter request"

// ErrNotCharterRequest is returned for messages without Marker.
var ErrNotCharterRequest = errors.New("not a charter request")

// MissingFieldsError lists required fields whose rule did not match, in rule order.
type MissingFieldsError struct {
	Fields []Field
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(names, ", "))
}

// Fields holds matched values. Absent keys are fields whose rule did not match.
type Fields map[Field]string

// Get returns the value for f, or "" when f did not match.
func (f Fields) Get(field Field) string {
	return f[field]
}

// Has reports whether f matched.
func (f Fields) Has(field Field) bool {
	_, ok := f[field]
	return ok
}

// Extractor applies an ordered rule set.
type Extractor struct {
	rules        []Rule
	shortCircuit bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRules replaces DefaultRules.
func WithRules(rules []Rule) Option {
	return func(e *Extractor) { e.rules = rules }
}

// WithShortCircuit stops at the first required rule that misses instead of
// evaluating every rule. The accept/reject decision is the same; only the
// reported missing set shrinks to one field.
func WithShortCircuit() Option {
	return func(e *Extractor) { e.shortCircuit = true }
}

// New creates an Extractor using DefaultRules unless overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{rules: DefaultRules}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the matched fields of text. Optional fields that miss are
// left out of the result. A miss on any required field yields a
// *MissingFieldsError along with whatever did match.
func (e *Extractor) Extract(text string) (Fields, error) {
	if !strings.Contains(strings.ToLower(text), Marker) {
		return nil, ErrNotCharterRequest
	}

	fields := make(Fields, len(e.rules))
	var missing []Field
	for _, rule := range e.rules {
		value, ok := apply(rule, text)
		if ok {
			fields[rule.Field] = value
			continue
		}
		if !rule.Required {
			continue
		}
		missing = append(missing, rule.Field)
		if e.shortCircuit {
			break
		}
	}

	if len(missing) > 0 {
		return fields, &MissingFieldsError{Fields: missing}
	}
	return fields, nil
}

func apply(rule Rule, text string) (string, bool) {
	m := rule.Pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	value := strings.TrimSpace(m[1])
	if rule.Normalize != nil {
		value = rule.Normalize(value)
	}
	if value == "" {
		return "", false
	}
	return value, true
}
