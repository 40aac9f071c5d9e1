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

package control

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpHexPrintable(t *testing.T) {
	buf := new(bytes.Buffer)
	DumpHexPrintable(buf, []byte("version=ntpd\x00\x00"))
	want := "76 65 72 73 69 6f 6e 3d 6e 74 70 64 00 00       version=ntpd..\n"
	require.Equal(t, want, buf.String())
}

func TestDumpHexPrintableMultiRow(t *testing.T) {
	buf := new(bytes.Buffer)
	DumpHexPrintable(buf, bytes.Repeat([]byte{'a'}, 17))
	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	require.Len(t, lines, 2)
	require.Equal(t, "61 61 61 61 61 61 61 61 61 61 61 61 61 61 61 61 aaaaaaaaaaaaaaaa", string(lines[0]))
	// short row: one hex octet, 15 blank slots, one printable char
	require.Equal(t, 49, len(lines[1]))
	require.Equal(t, "61 ", string(lines[1][:3]))
	require.Equal(t, uint8('a'), lines[1][48])
}

func TestDumpHexPrintableEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	DumpHexPrintable(buf, nil)
	require.Empty(t, buf.String())
}
