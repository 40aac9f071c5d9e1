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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"1", IntValue(1)},
		{"-24", IntValue(-24)},
		{"0x1f", IntValue(31)},
		{"0o17", IntValue(15)},
		{"2.5", FloatValue(2.5)},
		{"-0.180", FloatValue(-0.18)},
		{`"hi"`, StringValue("hi")},
		{`"ntpd 4.2.6p5"`, StringValue("ntpd 4.2.6p5")},
		{"ntpd", StringValue("ntpd")},
		{"174.141.68.116", StringValue("174.141.68.116")},
		{`"unterminated`, StringValue(`"unterminated`)},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseValue(tt.in), "parsing %q", tt.in)
	}
}

func TestVarMapOrder(t *testing.T) {
	m := NewVarMap()
	m.Set("c", IntValue(1))
	m.Set("a", IntValue(2))
	m.Set("b", IntValue(3))
	// repeated name updates value but keeps position
	m.Set("c", IntValue(9))
	require.Equal(t, []string{"c", "a", "b"}, m.Keys())
	v, ok := m.Get("c")
	require.True(t, ok)
	require.Equal(t, int64(9), v.Int())
	require.Equal(t, 3, m.Len())
	_, ok = m.Get("missing")
	require.False(t, ok)
}

func TestParseVarsTyping(t *testing.T) {
	vars := parseVars([]byte(`x=1,y=2.5,z="hi"`))
	require.Equal(t, []string{"x", "y", "z"}, vars.Keys())
	x, _ := vars.Get("x")
	require.Equal(t, TypeInt, x.Type())
	require.Equal(t, int64(1), x.Int())
	y, _ := vars.Get("y")
	require.Equal(t, TypeFloat, y.Type())
	require.Equal(t, 2.5, y.Float())
	z, _ := vars.Get("z")
	require.Equal(t, TypeString, z.Type())
	require.Equal(t, "hi", z.String())
}

// re-encoding and re-parsing must preserve keys and types
func TestParseVarsIdempotent(t *testing.T) {
	vars := parseVars([]byte(`x=1,y=2.5,z="hi"`))
	again := parseVars([]byte(vars.String()))
	require.Equal(t, vars.Keys(), again.Keys())
	for _, name := range vars.Keys() {
		want, _ := vars.Get(name)
		got, _ := again.Get(name)
		require.Equal(t, want.Type(), got.Type(), "type of %s", name)
	}
}

func TestParseVarsTrailingNULs(t *testing.T) {
	plain := parseVars([]byte("leap=0,stratum=4"))
	padded := parseVars([]byte("leap=0,stratum=4 \r\n\x00\x00\x00"))
	require.Equal(t, plain.Keys(), padded.Keys())
	for _, name := range plain.Keys() {
		want, _ := plain.Get(name)
		got, _ := padded.Get(name)
		require.Equal(t, want, got)
	}
}

func TestParseVarsValuesWithSpaces(t *testing.T) {
	vars := parseVars([]byte(`filtdelay= 0.33 0.16 0.14, version="ntpd 4.2.6p5@1.2349-o Fri Apr 13 12:52:27 UTC 2018 (1)"`))
	fd, ok := vars.Get("filtdelay")
	require.True(t, ok)
	require.Equal(t, TypeString, fd.Type())
	require.Equal(t, "0.33 0.16 0.14", fd.String())
	v, ok := vars.Get("version")
	require.True(t, ok)
	require.Equal(t, `ntpd 4.2.6p5@1.2349-o Fri Apr 13 12:52:27 UTC 2018 (1)`, v.String())
}

// only the first = splits name from value
func TestParseVarsFirstEquals(t *testing.T) {
	vars := parseVars([]byte("reftime=0xdfb39d2d.8598591b,expr=a=b"))
	e, ok := vars.Get("expr")
	require.True(t, ok)
	require.Equal(t, "a=b", e.String())
}

func TestParseVarsIllFormed(t *testing.T) {
	vars := parseVars([]byte("leap=0,bogus,stratum=4"))
	require.Equal(t, []string{"leap", "stratum"}, vars.Keys())
}

func TestParseVarsEmpty(t *testing.T) {
	require.Equal(t, 0, parseVars(nil).Len())
	require.Equal(t, 0, parseVars([]byte("\x00\x00")).Len())
}
