package structex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Schema is an advisory description of the desired output shape. It is a
// recursively-structured tree: a leaf carries a free-form type hint (e.g.
// "str", "int", "YYYY-MM-DD"), an object maps field names to child schemas,
// and a list wraps a single item schema for repeated objects.
//
// The schema is rendered into prompt instructions only; responses are never
// validated against it. A field declared "int" arriving as a string is
// passed through untouched.
type Schema struct {
	kind   schemaKind
	hint   string
	fields []SchemaField
	item   *Schema
}

// SchemaField is one named field of an object schema. Field order is
// preserved from the source document so prompt rendering is deterministic.
type SchemaField struct {
	Name   string
	Schema *Schema
}

type schemaKind int

const (
	kindLeaf schemaKind = iota
	kindObject
	kindList
)

// Leaf returns a leaf schema with the given type hint.
func Leaf(hint string) *Schema {
	return &Schema{kind: kindLeaf, hint: hint}
}

// Object returns an object schema with the given fields, in order.
func Object(fields ...SchemaField) *Schema {
	return &Schema{kind: kindObject, fields: fields}
}

// Field constructs a SchemaField for use with Object.
func Field(name string, s *Schema) SchemaField {
	return SchemaField{Name: name, Schema: s}
}

// List returns a list schema whose elements conform to item.
func List(item *Schema) *Schema {
	return &Schema{kind: kindList, item: item}
}

// IsList reports whether the schema's top level is a repeated-object list.
func (s *Schema) IsList() bool {
	return s != nil && s.kind == kindList
}

// Item returns the element schema of a list, or the schema itself otherwise.
func (s *Schema) Item() *Schema {
	if s.IsList() {
		return s.item
	}
	return s
}

// ParseSchema parses a JSON schema description. Leaf values are strings
// (type hints), objects are JSON objects, and lists are single-element JSON
// arrays. Field order from the document is preserved.
func ParseSchema(data []byte) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	s, err := parseValue(dec)
	if err != nil {
		return nil, err
	}

	// Reject trailing content after the schema value.
	if _, err := dec.Token(); err != io.EOF {
		return nil, Errorf(EINVALID, "unexpected content after schema")
	}
	return s, nil
}

func parseValue(dec *json.Decoder) (*Schema, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, Errorf(EINVALID, "invalid schema: %v", err)
	}

	switch t := tok.(type) {
	case string:
		return Leaf(t), nil
	case json.Number:
		// Numeric hints appear in hand-written schemas ("price": 9.99).
		return Leaf(t.String()), nil
	case bool:
		return Leaf(fmt.Sprintf("%v", t)), nil
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseList(dec)
		}
	}
	return nil, Errorf(EINVALID, "invalid schema: unsupported value %v", tok)
}

func parseObject(dec *json.Decoder) (*Schema, error) {
	var fields []SchemaField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, Errorf(EINVALID, "invalid schema: %v", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, Errorf(EINVALID, "invalid schema: non-string field name %v", tok)
		}
		child, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, SchemaField{Name: name, Schema: child})
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, Errorf(EINVALID, "invalid schema: %v", err)
	}
	return Object(fields...), nil
}

func parseList(dec *json.Decoder) (*Schema, error) {
	if !dec.More() {
		return nil, Errorf(EINVALID, "invalid schema: list must contain exactly one item schema")
	}
	item, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, Errorf(EINVALID, "invalid schema: list must contain exactly one item schema")
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, Errorf(EINVALID, "invalid schema: %v", err)
	}
	return List(item), nil
}

// Describe renders the schema as a compact JSON-like shape description for
// inclusion in a prompt. Output is deterministic for identical schemas.
func (s *Schema) Describe() string {
	var sb strings.Builder
	s.describe(&sb)
	return sb.String()
}

func (s *Schema) describe(sb *strings.Builder) {
	switch s.kind {
	case kindLeaf:
		fmt.Fprintf(sb, "%q", s.hint)
	case kindList:
		sb.WriteString("[")
		s.item.describe(sb)
		sb.WriteString("]")
	case kindObject:
		sb.WriteString("{")
		for i, f := range s.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q: ", f.Name)
			f.Schema.describe(sb)
		}
		sb.WriteString("}")
	}
}
