// internal/schema/schema.go
package schema

import (
	"errors"

	"github.com/tidwall/gjson"
)

// Type is the declared JSON type of a field.
type Type int

const (
	String Type = iota
	Int
	Float
	Bool
	StringList
	Object
	ObjectList
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case StringList:
		return "[]string"
	case Object:
		return "object"
	case ObjectList:
		return "[]object"
	default:
		return "unknown"
	}
}

// Range is an inclusive numeric clamp range.
type Range struct {
	Min float64
	Max float64
}

// Field describes one expected key of a model reply.
type Field struct {
	Name    string
	Type    Type
	Default any
	Range   *Range
	// Fields describes the members of Object and ObjectList fields.
	Fields []Field
	// Fallback names a key of the enclosing object whose value is used
	// before Default when this field is missing.
	Fallback string
}

// Sentinel marks a reply that explicitly reports "no recognizable subject".
type Sentinel struct {
	Field string
	Value string
}

// Schema is a declarative description of a normalized result.
type Schema struct {
	Name     string
	Fields   []Field
	Sentinel *Sentinel
}

var (
	ErrNotJSON   = errors.New("response is not valid JSON")
	ErrNotObject = errors.New("response is not a JSON object")
)

func StringField(name, def string) Field {
	return Field{Name: name, Type: String, Default: def}
}

func IntField(name string, def int) Field {
	return Field{Name: name, Type: Int, Default: def}
}

func FloatField(name string, def float64) Field {
	return Field{Name: name, Type: Float, Default: def}
}

func BoolField(name string, def bool) Field {
	return Field{Name: name, Type: Bool, Default: def}
}

func StringListField(name string) Field {
	return Field{Name: name, Type: StringList, Default: []string{}}
}

func ObjectField(name string, fields ...Field) Field {
	return Field{Name: name, Type: Object, Fields: fields}
}

func ObjectListField(name string, fields ...Field) Field {
	return Field{Name: name, Type: ObjectList, Fields: fields}
}

// Clamped returns a copy of f whose numeric value is clamped into [min, max].
func (f Field) Clamped(min, max float64) Field {
	f.Range = &Range{Min: min, Max: max}
	return f
}

// FallbackTo returns a copy of f that reads key from the enclosing object
// when its own value is missing or invalid.
func (f Field) FallbackTo(key string) Field {
	f.Fallback = key
	return f
}

// Parse strictly decodes text as a single JSON object.
func Parse(text string) (gjson.Result, error) {
	if !gjson.Valid(text) {
		return gjson.Result{}, ErrNotJSON
	}
	obj := gjson.Parse(text)
	if !obj.IsObject() {
		return gjson.Result{}, ErrNotObject
	}
	return obj, nil
}

// MatchesSentinel reports whether obj carries the schema's sentinel value.
func (s *Schema) MatchesSentinel(obj gjson.Result) bool {
	if s.Sentinel == nil {
		return false
	}
	v := obj.Get(s.Sentinel.Field)
	return v.Type == gjson.String && v.Str == s.Sentinel.Value
}
