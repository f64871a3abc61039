package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PayloadKind discriminates the variants of an input payload.
type PayloadKind int

const (
	PayloadText PayloadKind = iota
	PayloadMapping
	PayloadSequence
	PayloadScalar
)

// Payload is the tagged-variant form of an input report: either free
// text, or an arbitrarily nested structure of string-keyed mappings and
// sequences whose leaves are scalars. Exactly one field per variant is
// populated.
type Payload struct {
	Kind     PayloadKind
	Text     string
	Mapping  []MappingEntry
	Sequence []*Payload
	Scalar   string
}

// MappingEntry is one key/value pair of a mapping payload. Entries keep
// a deterministic order so extraction output is stable for identical
// inputs.
type MappingEntry struct {
	Key   string
	Value *Payload
}

// TextPayload wraps free text as a payload.
func TextPayload(text string) *Payload {
	return &Payload{Kind: PayloadText, Text: text}
}

// UnmarshalJSON builds the variant tree from a JSON document. Strings
// at the top level become text payloads; nested strings, numbers and
// booleans become scalars; anything unrecognized is coerced to its
// string form rather than rejected.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	built := buildPayload(raw, true)
	if built == nil {
		return fmt.Errorf("decoding payload: unsupported document")
	}
	*p = *built
	return nil
}

// buildPayload converts a decoded JSON value into a payload variant.
// top marks the document root, where a bare string means free text.
func buildPayload(v interface{}, top bool) *Payload {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]MappingEntry, 0, len(keys))
		for _, k := range keys {
			child := buildPayload(val[k], false)
			if child == nil {
				continue
			}
			entries = append(entries, MappingEntry{Key: k, Value: child})
		}
		return &Payload{Kind: PayloadMapping, Mapping: entries}
	case []interface{}:
		seq := make([]*Payload, 0, len(val))
		for _, item := range val {
			child := buildPayload(item, false)
			if child == nil {
				continue
			}
			seq = append(seq, child)
		}
		return &Payload{Kind: PayloadSequence, Sequence: seq}
	case string:
		if top {
			return TextPayload(val)
		}
		return &Payload{Kind: PayloadScalar, Scalar: val}
	case float64:
		return &Payload{Kind: PayloadScalar, Scalar: strconv.FormatFloat(val, 'f', -1, 64)}
	case bool:
		return &Payload{Kind: PayloadScalar, Scalar: strconv.FormatBool(val)}
	case nil:
		return nil
	default:
		return &Payload{Kind: PayloadScalar, Scalar: fmt.Sprintf("%v", val)}
	}
}

// ScalarString returns the string form of a scalar or text payload and
// reports whether the payload was scalar-like.
func (p *Payload) ScalarString() (string, bool) {
	switch p.Kind {
	case PayloadScalar:
		return p.Scalar, true
	case PayloadText:
		return p.Text, true
	default:
		return "", false
	}
}

// FlatString renders any payload as a single string: scalars and text
// as themselves, sequences as comma-joined elements, mappings as
// "key: value" pairs joined with semicolons.
func (p *Payload) FlatString() string {
	switch p.Kind {
	case PayloadText:
		return p.Text
	case PayloadScalar:
		return p.Scalar
	case PayloadSequence:
		parts := make([]string, 0, len(p.Sequence))
		for _, item := range p.Sequence {
			parts = append(parts, item.FlatString())
		}
		return strings.Join(parts, ", ")
	case PayloadMapping:
		parts := make([]string, 0, len(p.Mapping))
		for _, e := range p.Mapping {
			parts = append(parts, e.Key+": "+e.Value.FlatString())
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

// Lookup returns the value for a mapping key, if present.
func (p *Payload) Lookup(key string) (*Payload, bool) {
	if p.Kind != PayloadMapping {
		return nil, false
	}
	for _, e := range p.Mapping {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}
