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

/*
Package mode6 implements the client side of the NTP Control Protocol
(mode 6): a Session connected to one server over UDP, queries that
reassemble multi-fragment responses with deduplication and a bounded retry,
and parsers turning the textual payloads into typed variable mappings and
peer status lists.

Responses to a query may arrive as up to 32 datagram fragments, out of
order, interleaved with stragglers from earlier queries. GetResponse
tolerates all of that: stragglers and malformed fragments are dropped with
a debug-level note, duplicate or overlapping fragments with a warning, and
only a persistent flood turns into an error.

Typical use:

	s := mode6.NewSession()
	if err := s.OpenHost("ntp.example.com", ""); err != nil {
		...
	}
	defer s.Close()
	peers, err := s.ReadStat(0)
	vars, err := s.ReadVar(0, nil, control.OpReadVariables)
*/
package mode6
