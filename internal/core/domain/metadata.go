package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueKind enumerates the closed set of metadata value types.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a closed string/number/bool/null variant for metadata entries.
// Keeping the variant closed keeps filter semantics well-defined across
// the store and the search index.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

// String creates a string metadata value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number creates a numeric metadata value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Boolean creates a boolean metadata value.
func Boolean(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Null creates a null metadata value.
func Null() Value { return Value{Kind: KindNull} }

// Text renders the value as the string form used for index-side filtering.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindNumber:
		return v.Num == other.Num
	case KindBool:
		return v.Bool == other.Bool
	default:
		return true
	}
}

// MarshalJSON renders the value as its natural JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts string, number, bool or null.
// Any other JSON type is rejected to keep the variant closed.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(val)
	case float64:
		*v = Number(val)
	case bool:
		*v = Boolean(val)
	default:
		return fmt.Errorf("%w: metadata value must be string, number, bool or null", ErrInvalidInput)
	}
	return nil
}

// Metadata is a free-form tag map with closed value types.
type Metadata map[string]Value

// Keys returns the metadata keys in sorted order for deterministic output.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fingerprint renders the metadata as a canonical encoding used for cache
// keys. Keys and values are length-prefixed and values carry their kind tag,
// so separator characters in the content or equal Text() across kinds cannot
// produce colliding fingerprints.
func (m Metadata) Fingerprint() string {
	var b strings.Builder
	for _, k := range m.Keys() {
		v := m[k]
		text := v.Text()
		fmt.Fprintf(&b, "%d:%s=%d/%d:%s;", len(k), k, v.Kind, len(text), text)
	}
	return b.String()
}
