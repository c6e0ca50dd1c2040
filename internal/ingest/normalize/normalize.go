// Package normalize verifies semi-structured bill-status records against
// field contracts: required keys must be present, absent optional keys are
// filled with an explicit nil, and unknown keys are stripped so upstream
// schema drift cannot leak into the pipeline.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SchemaError reports a record missing required fields. It aborts the whole
// document; the caller retries the document from scratch.
type SchemaError struct {
	Entity  string
	URL     string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s at %s: missing required fields %s",
		e.Entity, e.URL, strings.Join(e.Missing, ", "))
}

// Contract is the field contract for one record shape.
type Contract struct {
	Entity   string
	Required []string
	Optional []string
}

// Normalize checks raw against the contract and returns a cleaned copy.
// String-typed leaf records pass through unchanged: they have no keys to
// check. For map-shaped records, missing required keys raise a *SchemaError,
// absent optional keys are filled with nil, and any other key is dropped.
func Normalize(raw any, c Contract, url string) (any, error) {
	rec, ok := asRecord(raw)
	if !ok {
		return raw, nil
	}

	var missing []string
	for _, key := range c.Required {
		if _, ok := rec[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Entity: c.Entity, URL: url, Missing: missing}
	}

	cleaned := Record{}
	for _, key := range c.Required {
		cleaned[key] = rec[key]
	}
	for _, key := range c.Optional {
		value, ok := rec[key]
		if !ok {
			value = nil
		}
		cleaned[key] = value
	}
	return cleaned, nil
}

// NormalizeList applies the contract to every element of a homogeneous list.
func NormalizeList(raw []any, c Contract, url string) ([]any, error) {
	cleaned := make([]any, 0, len(raw))
	for _, element := range raw {
		normalized, err := Normalize(element, c, url)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, normalized)
	}
	return cleaned, nil
}

// Doc wraps one decoded document with its source URL so lookups can log and
// fail with context.
type Doc struct {
	rec Record
	url string
	log *slog.Logger
}

func NewDoc(rec Record, url string, log *slog.Logger) *Doc {
	if log == nil {
		log = slog.Default()
	}
	return &Doc{rec: rec, url: url, log: log}
}

// URL returns the source URL the document was fetched from.
func (d *Doc) URL() string { return d.url }

// Value walks the key path and returns the value at its end. A missing or
// empty intermediate (a bill omitting an entire optional subsection, e.g. no
// policyArea at all) degrades to nil with a warning; a missing leaf key is a
// *SchemaError.
func (d *Doc) Value(path ...string) (any, error) {
	var current any = d.rec
	for i, key := range path {
		last := i == len(path)-1
		rec, ok := asRecord(current)
		if !ok {
			if current == nil {
				d.log.Warn("empty subsection while parsing document",
					"path", strings.Join(path, "."), "url", d.url)
				return nil, nil
			}
			return nil, &SchemaError{Entity: strings.Join(path, "."), URL: d.url, Missing: []string{key}}
		}
		next, ok := rec[key]
		if !ok {
			if !last {
				d.log.Warn("missing subsection while parsing document",
					"path", strings.Join(path, "."), "url", d.url)
				return nil, nil
			}
			return nil, &SchemaError{Entity: strings.Join(path, "."), URL: d.url, Missing: []string{key}}
		}
		current = next
	}
	return current, nil
}

// String returns the string at the key path, or "" when the path degraded to
// an absent value.
func (d *Doc) String(path ...string) (string, error) {
	value, err := d.Value(path...)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", &SchemaError{Entity: strings.Join(path, "."), URL: d.url, Missing: path[len(path)-1:]}
	}
	return s, nil
}

// List walks the key path, unwraps the archive's `item` wrapper element, and
// coerces a collapsed single element into a one-element list. A nil
// subsection degrades to an empty list. This is how single-sponsor bills and
// bills with no cosponsors at all normalize uniformly.
func (d *Doc) List(path ...string) ([]any, error) {
	value, err := d.Value(path...)
	if err != nil {
		return nil, err
	}
	rec, ok := asRecord(value)
	if !ok {
		if value == nil {
			return nil, nil
		}
		return nil, &SchemaError{Entity: strings.Join(path, "."), URL: d.url, Missing: []string{"item"}}
	}
	items, ok := rec["item"]
	if !ok {
		return nil, &SchemaError{Entity: strings.Join(path, "."), URL: d.url, Missing: []string{"item"}}
	}
	switch v := items.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	default:
		return []any{v}, nil
	}
}

// Str reads a string field from a contract-normalized record, treating nil
// (an absent optional) as the empty string.
func Str(rec Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

func asRecord(v any) (Record, bool) {
	switch rec := v.(type) {
	case Record:
		return rec, true
	case map[string]any:
		return Record(rec), true
	default:
		return nil, false
	}
}

// Date layouts consumed from the archive.
const (
	DateLayout         = "2006-01-02"
	LastModifiedLayout = "02-Jan-2006 15:04"
)

// ParseDate parses a date string in the given layout and anchors it to UTC.
func ParseDate(value, layout, name, url string) (time.Time, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s %q from %s: %w", name, value, url, err)
	}
	return t.UTC(), nil
}
