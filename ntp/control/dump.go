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
	"fmt"
	"io"
)

// DumpHexPrintable writes data as rows of 16 hex octets followed by their
// printable-ASCII rendering, the familiar packet dump layout.
func DumpHexPrintable(w io.Writer, data []byte) {
	for start := 0; start < len(data); start += 16 {
		row := data[start:]
		if len(row) > 16 {
			row = row[:16]
		}
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(w, "%02x ", row[i])
			} else {
				fmt.Fprint(w, "   ")
			}
		}
		for _, c := range row {
			if c >= 0x20 && c < 0x7f {
				fmt.Fprintf(w, "%c", c)
			} else {
				fmt.Fprint(w, ".")
			}
		}
		fmt.Fprint(w, "\n")
	}
}
