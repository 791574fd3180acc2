// Package fields reads loosely-typed JSON records whose keys may arrive under
// several aliases (bilingual, any casing, with or without accents or separators).
package fields

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key folds a field name for alias comparison: "Salida_Colación" and "salidacolacion"
// give the same key.
func Key(s string) string {
	// transformers are stateful, so build a fresh chain per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, out)
}

// Lookup returns the value of the first alias (in priority order) that is present with a
// non-blank value. An exact key match is preferred over a folded one for the same alias.
// When several keys fold to the same alias, the first non-blank one in byte order wins.
func Lookup(m map[string]any, aliases ...string) (any, bool) {
	if len(m) == 0 {
		return nil, false
	}
	var folded map[string]any
	for _, a := range aliases {
		if v, ok := m[a]; ok && !Blank(v) {
			return v, true
		}
		if folded == nil {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			folded = make(map[string]any, len(m))
			for _, k := range keys {
				v := m[k]
				fk := Key(k)
				if prev, dup := folded[fk]; dup && !Blank(prev) {
					continue
				}
				folded[fk] = v
			}
		}
		if v, ok := folded[Key(a)]; ok && !Blank(v) {
			return v, true
		}
	}
	return nil, false
}

func Blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// String renders scalar JSON values as text. Integral numbers have no exponent or decimals,
// so 20240301 stays "20240301".
func String(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

// Number parses numbers and numeric strings. Non-finite results are rejected.
func Number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func List(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// Records finds the record list inside a payload: the payload itself when it is an array,
// otherwise the first array found under one of the envelope keys.
func Records(payload any, envelopes ...string) []any {
	if l, ok := List(payload); ok {
		return l
	}
	m, ok := Object(payload)
	if !ok {
		return nil
	}
	v, ok := Lookup(m, envelopes...)
	if !ok {
		return nil
	}
	if l, ok := List(v); ok {
		return l
	}
	// doubly wrapped, e.g. data: { items: [...] }
	if inner, ok := Object(v); ok {
		return Records(inner, envelopes...)
	}
	return nil
}

// Decode unmarshals raw JSON keeping numbers as float64. Invalid JSON gives nil.
func Decode(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
