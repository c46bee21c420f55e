// internal/schema/coerce.go
package schema

import (
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// Coerce builds a schema-complete record from a parsed reply. Every declared
// field is present in the result with its declared Go type; keys the schema
// does not declare are dropped.
func (s *Schema) Coerce(obj gjson.Result) map[string]any {
	return coerceObject(s.Fields, obj.Map(), nil)
}

func coerceObject(fields []Field, values, parent map[string]gjson.Result) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Name] = coerceField(f, values, parent)
	}
	return out
}

func coerceField(f Field, values, parent map[string]gjson.Result) any {
	raw, ok := values[f.Name]

	switch f.Type {
	case Object:
		var members map[string]gjson.Result
		if ok && raw.IsObject() {
			members = raw.Map()
		}
		// members of a nested object fall back to keys of the object
		// that contains it
		return coerceObject(f.Fields, members, values)
	case ObjectList:
		items := []map[string]any{}
		if ok && raw.IsArray() {
			for _, item := range raw.Array() {
				if item.IsObject() {
					items = append(items, coerceObject(f.Fields, item.Map(), values))
				}
			}
		}
		return items
	}

	if v, valid := scalar(f, raw, ok); valid {
		return v
	}
	if f.Fallback != "" {
		if fb, found := parent[f.Fallback]; found {
			if v, valid := scalar(f, fb, true); valid {
				return v
			}
		}
	}
	return defaultValue(f)
}

// scalar converts raw to the Go type of f. The second result is false when
// raw is absent, null or of the wrong JSON type.
func scalar(f Field, raw gjson.Result, present bool) (any, bool) {
	if !present || raw.Type == gjson.Null {
		return nil, false
	}

	switch f.Type {
	case String:
		if raw.Type != gjson.String || strings.TrimSpace(raw.Str) == "" {
			return nil, false
		}
		return raw.Str, true
	case Int:
		if raw.Type != gjson.Number {
			return nil, false
		}
		return int(clamp(f, math.Round(raw.Num))), true
	case Float:
		if raw.Type != gjson.Number {
			return nil, false
		}
		return clamp(f, raw.Num), true
	case Bool:
		if raw.Type != gjson.True && raw.Type != gjson.False {
			return nil, false
		}
		return raw.Bool(), true
	case StringList:
		if !raw.IsArray() {
			return nil, false
		}
		items := lo.FilterMap(raw.Array(), func(item gjson.Result, _ int) (string, bool) {
			return item.Str, item.Type == gjson.String
		})
		if items == nil {
			items = []string{}
		}
		return items, true
	}
	return nil, false
}

func clamp(f Field, v float64) float64 {
	if f.Range == nil {
		return v
	}
	return lo.Clamp(v, f.Range.Min, f.Range.Max)
}

func defaultValue(f Field) any {
	switch f.Type {
	case String:
		s, _ := f.Default.(string)
		return s
	case Int:
		n, _ := f.Default.(int)
		return n
	case Float:
		n, _ := f.Default.(float64)
		return n
	case Bool:
		b, _ := f.Default.(bool)
		return b
	case StringList:
		items, _ := f.Default.([]string)
		// never hand out the shared default slice
		return append([]string{}, items...)
	}
	return nil
}
