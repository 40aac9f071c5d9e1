/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package mode6

import (
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ValueType tags the variant held by a Value
type ValueType int

// Value variants
const (
	TypeInt ValueType = iota
	TypeFloat
	TypeString
)

// Value is one variable value from a textual mode 6 response:
// integer, floating point or string.
type Value struct {
	typ ValueType
	i   int64
	f   float64
	s   string
}

// IntValue wraps an integer
func IntValue(i int64) Value {
	return Value{typ: TypeInt, i: i}
}

// FloatValue wraps a float
func FloatValue(f float64) Value {
	return Value{typ: TypeFloat, f: f}
}

// StringValue wraps a string
func StringValue(s string) Value {
	return Value{typ: TypeString, s: s}
}

// Type returns the variant tag
func (v Value) Type() ValueType {
	return v.typ
}

// Int returns the integer variant, 0 for other variants
func (v Value) Int() int64 {
	return v.i
}

// Float returns the float variant; integers convert, strings yield 0
func (v Value) Float() float64 {
	if v.typ == TypeInt {
		return float64(v.i)
	}
	return v.f
}

// String renders the value the way it would appear in a response
func (v Value) String() string {
	switch v.typ {
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return v.s
	}
}

// ParseValue types a raw textual value. Precedence: integer (any base via
// 0x/0o/0b prefixes), then float, then quote-stripped string, then the raw
// string as-is.
func ParseValue(raw string) Value {
	if i, err := strconv.ParseInt(raw, 0, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return FloatValue(f)
	}
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return StringValue(raw[1 : len(raw)-1])
	}
	return StringValue(raw)
}

// VarMap is an ordered mapping of variable names to typed values.
// Iteration order is the order names first appeared in the response.
type VarMap struct {
	names  []string
	values map[string]Value
}

// NewVarMap returns an empty mapping
func NewVarMap() *VarMap {
	return &VarMap{values: map[string]Value{}}
}

// Set stores a value. A repeated name updates the value but keeps the
// position of its first occurrence.
func (m *VarMap) Set(name string, v Value) {
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = v
}

// Get looks up a value by name
func (m *VarMap) Get(name string) (Value, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Keys returns variable names in insertion order
func (m *VarMap) Keys() []string {
	return m.names
}

// Len returns the number of variables
func (m *VarMap) Len() int {
	return len(m.names)
}

// String renders the mapping back into the k=v,k=v textual form
func (m *VarMap) String() string {
	parts := make([]string, 0, len(m.names))
	for _, name := range m.names {
		parts = append(parts, name+"="+m.values[name].String())
	}
	return strings.Join(parts, ",")
}

// parseVars decodes the reassembled textual payload of a read variables
// response. Trailing NULs then trailing whitespace are stripped; items are
// comma-separated with only the first = splitting name from value, so values
// may embed spaces. Items without = are skipped with a warning.
func parseVars(response []byte) *VarMap {
	text := strings.TrimRight(string(response), "\x00")
	text = strings.TrimRight(text, " \t\r\n")
	vars := NewVarMap()
	if text == "" {
		return vars
	}
	for _, pair := range strings.Split(text, ",") {
		eq := strings.Index(pair, "=")
		if eq < 0 {
			log.Warningf("ill-formed item %q in response", pair)
			continue
		}
		name := strings.TrimSpace(pair[:eq])
		val := strings.TrimSpace(pair[eq+1:])
		vars.Set(name, ParseValue(val))
	}
	return vars
}
