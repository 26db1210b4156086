package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Record is one server-side entity as returned by the API. Keys are canonical
// (see Canonical); values are passed through untouched.
type Record map[string]any

// Collection is an ordered list of records in server response order.
type Collection []Record

// Canonical returns the canonical spelling of a wire field name: the first
// rune lower-cased, or the whole key when it has no lower-case letters.
// "Id" -> "id", "ID" -> "id", "LocationId" -> "locationId". Trailing
// acronyms are left alone, so "LocationID" becomes "locationID".
func Canonical(key string) string {
	if strings.IndexFunc(key, unicode.IsLower) < 0 {
		return strings.ToLower(key)
	}
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return key
	}
	return string(unicode.ToLower(r)) + key[size:]
}

// Normalize builds a Record with canonical keys from a decoded JSON object.
// When the same field arrives in two casings the already-canonical one wins.
func Normalize(raw map[string]any) Record {
	rec := make(Record, len(raw))
	for k, v := range raw {
		ck := Canonical(k)
		if _, exists := rec[ck]; exists && ck != k {
			continue
		}
		rec[ck] = v
	}
	return rec
}

// Clone returns a shallow copy. Drafts are built from clones so edits never
// reach the collection they came from.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get reads a field by any casing.
func (r Record) Get(key string) (any, bool) {
	v, ok := r[Canonical(key)]
	return v, ok
}

// Value reads a field by any casing, nil when absent.
func (r Record) Value(key string) any {
	v, _ := r.Get(key)
	return v
}

// String renders a field as text. Missing and null fields render as "".
func (r Record) String(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// ID returns the primary key stored under field as a string.
func (r Record) ID(field string) string {
	return r.String(field)
}

// Status returns the lower-cased status-like field.
func (r Record) Status(field string) string {
	return strings.ToLower(r.String(field))
}

// Stringify formats a decoded JSON value for display and for URL ids.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Number parses a field as a float. Strings holding numbers are accepted since
// form input arrives as text.
func (r Record) Number(key string) (float64, bool) {
	v, ok := r.Get(key)
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// Find returns the first record whose primary key equals id.
func (c Collection) Find(field, id string) (Record, bool) {
	for _, rec := range c {
		if rec.ID(field) == id {
			return rec, true
		}
	}
	return nil, false
}
