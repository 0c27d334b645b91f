// Package rtdb reads and writes the realtime database over its REST API and
// prints read results to a console writer.
package rtdb

import (
	"bytes"
	"strings"

	"github.com/tidwall/gjson"
)

// Type tags reported by Result.DataType.
const (
	TypeNull    = "null"
	TypeInt     = "int"
	TypeFloat   = "float"
	TypeBoolean = "boolean"
	TypeString  = "string"
	TypeJSON    = "json"
	TypeArray   = "array"
)

// Result is the value read from (or echoed back by) the database at a path.
type Result struct {
	path     string
	dataType string
	raw      []byte
	value    gjson.Result
}

// NewResult builds a Result for path from a raw JSON payload, inferring its
// type tag.
func NewResult(path string, payload []byte) *Result {
	raw := bytes.TrimSpace(payload)
	value := gjson.ParseBytes(raw)
	return &Result{
		path:     path,
		dataType: inferType(value),
		raw:      raw,
		value:    value,
	}
}

func inferType(v gjson.Result) string {
	switch v.Type {
	case gjson.True, gjson.False:
		return TypeBoolean
	case gjson.String:
		return TypeString
	case gjson.Number:
		if strings.ContainsAny(v.Raw, ".eE") {
			return TypeFloat
		}
		return TypeInt
	case gjson.JSON:
		if v.IsArray() {
			return TypeArray
		}
		return TypeJSON
	default:
		return TypeNull
	}
}

// DataPath is the database path the result belongs to.
func (r *Result) DataPath() string {
	if r == nil {
		return ""
	}
	return r.path
}

// DataType is the inferred type tag.
func (r *Result) DataType() string {
	if r == nil || r.dataType == "" {
		return TypeNull
	}
	return r.dataType
}

// StringData renders the payload as text: strings unquoted, scalars as their
// literal, composites as raw JSON and null as the empty string.
func (r *Result) StringData() string {
	switch r.DataType() {
	case TypeNull:
		return ""
	case TypeString:
		return r.value.String()
	case TypeJSON, TypeArray:
		return r.compact()
	default:
		return r.value.Raw
	}
}

// JSONString returns the serialized document for json and array results,
// compacted to a single line, and the empty string otherwise.
func (r *Result) JSONString() string {
	switch r.DataType() {
	case TypeJSON, TypeArray:
		return r.compact()
	default:
		return ""
	}
}

func (r *Result) compact() string {
	return gjson.GetBytes(r.raw, "@ugly").Raw
}

// IntData returns the payload as an integer; non-numeric payloads give 0.
func (r *Result) IntData() int64 {
	if r == nil {
		return 0
	}
	return r.value.Int()
}

// FloatData returns the payload as a float; non-numeric payloads give 0.
func (r *Result) FloatData() float64 {
	if r == nil {
		return 0
	}
	return r.value.Float()
}

// BoolData returns the payload as a boolean.
func (r *Result) BoolData() bool {
	if r == nil {
		return false
	}
	return r.value.Bool()
}

// Raw returns the payload bytes as received.
func (r *Result) Raw() []byte {
	if r == nil {
		return nil
	}
	return r.raw
}
