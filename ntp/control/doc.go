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
Package control implements the wire format of the NTP Control Protocol
(RFC-1305 Appendix B), which for some reason is missing from the more
recent NTPv4 RFC-5905.

It covers the 12-octet message header with its packed bit fields, the
encoding and decoding of whole packets including payload padding, and the
decoding of system and peer status words into something usable. Where the
RFC and ntpd disagree, values follow what ntpd actually sends, as described
in http://doc.ntp.org/current-stable/decode.html.

The request/response session machinery lives in the mode6 package.
*/
package control
