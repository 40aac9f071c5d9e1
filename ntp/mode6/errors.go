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

import "fmt"

// ErrorKind classifies everything that can go wrong while talking mode 6
type ErrorKind int

// Error kinds. The first eight mirror the server error codes carried in the
// status word of an error response; the rest are generated client-side.
const (
	KindUnspec ErrorKind = iota
	KindPermission
	KindBadFormat
	KindBadOp
	KindBadAssoc
	KindUnknownVar
	KindBadValue
	KindRestrict
	KindTimeout
	KindIncomplete
	KindTooMuch
	KindSelectFailed
	KindWriteFailed
	KindNoHost
	KindBadLength
	KindTooLong
	KindNotImplemented
)

var kindMessages = map[ErrorKind]string{
	KindUnspec:         "server returned an unspecified error",
	KindPermission:     "server disallowed request (authentication?)",
	KindBadFormat:      "server reports a bad format request packet",
	KindBadOp:          "server reports a bad opcode in request",
	KindBadAssoc:       "association ID %d unknown to server",
	KindUnknownVar:     "a request variable unknown to the server",
	KindBadValue:       "server indicates a request variable was bad",
	KindRestrict:       "server restricted this request",
	KindTimeout:        "request timed out",
	KindIncomplete:     "response from server was incomplete",
	KindTooMuch:        "buffer size exceeded for returned data",
	KindSelectFailed:   "waiting for server response failed",
	KindWriteFailed:    "write to server failed",
	KindNoHost:         "no host open",
	KindBadLength:      "response length should have been a multiple of 4",
	KindTooLong:        "internal error, request data too long",
	KindNotImplemented: "authenticated requests are not implemented",
}

func (k ErrorKind) String() string {
	switch k {
	case KindUnspec:
		return "Unspec"
	case KindPermission:
		return "Permission"
	case KindBadFormat:
		return "BadFormat"
	case KindBadOp:
		return "BadOp"
	case KindBadAssoc:
		return "BadAssoc"
	case KindUnknownVar:
		return "UnknownVar"
	case KindBadValue:
		return "BadValue"
	case KindRestrict:
		return "Restrict"
	case KindTimeout:
		return "Timeout"
	case KindIncomplete:
		return "Incomplete"
	case KindTooMuch:
		return "TooMuch"
	case KindSelectFailed:
		return "SelectFailed"
	case KindWriteFailed:
		return "WriteFailed"
	case KindNoHost:
		return "NoHost"
	case KindBadLength:
		return "BadLength"
	case KindTooLong:
		return "TooLong"
	case KindNotImplemented:
		return "NotImplemented"
	default:
		return fmt.Sprintf("unknown (%d)", int(k))
	}
}

// ControlError is the error type surfaced by Session operations.
// BadAssoc errors carry the association ID the request was about.
type ControlError struct {
	Kind    ErrorKind
	AssocID uint16
	cause   error
}

func (e *ControlError) Error() string {
	msg, ok := kindMessages[e.Kind]
	if !ok {
		msg = kindMessages[KindUnspec]
	}
	if e.Kind == KindBadAssoc {
		msg = fmt.Sprintf(msg, e.AssocID)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap exposes the underlying OS or codec error, if any
func (e *ControlError) Unwrap() error {
	return e.cause
}

// Is makes errors.Is match on Kind so callers can compare against
// bare &ControlError{Kind: ...} sentinels.
func (e *ControlError) Is(target error) bool {
	t, ok := target.(*ControlError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind) *ControlError {
	return &ControlError{Kind: kind}
}

func newAssocError(kind ErrorKind, associd uint16) *ControlError {
	return &ControlError{Kind: kind, AssocID: associd}
}

func wrapError(kind ErrorKind, cause error) *ControlError {
	return &ControlError{Kind: kind, cause: cause}
}

// IsKind reports whether err is a ControlError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	e, ok := err.(*ControlError)
	return ok && e.Kind == kind
}

// ServerError converts a non-zero server error code from an error response
// into the matching ControlError. Codes outside the defined range map to Unspec.
func ServerError(code uint8, associd uint16) *ControlError {
	switch code {
	case 1:
		return newError(KindPermission)
	case 2:
		return newError(KindBadFormat)
	case 3:
		return newError(KindBadOp)
	case 4:
		return newAssocError(KindBadAssoc, associd)
	case 5:
		return newError(KindUnknownVar)
	case 6:
		return newError(KindBadValue)
	case 7:
		return newError(KindRestrict)
	default:
		return newError(KindUnspec)
	}
}
