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
	"encoding/binary"

	"github.com/pkg/errors"
)

// Protocol constants lifted from ntp_magic.h and ntp_control.h.
const (
	// Mode is the NTP mode field value of a control message
	Mode = 6
	// NTPVersion is the highest packet version accepted in responses
	NTPVersion = 4
	// NTPOldVersion is the lowest packet version accepted in responses
	NTPOldVersion = 2
	// HeaderLen is the fixed size of NTPControlMsgHead on the wire
	HeaderLen = 12
	// MaxDataLen is the maximum payload a single request packet may carry
	MaxDataLen = 468
	// MaxFrags is the expected upper bound on fragments per logical response
	MaxFrags = 32
)

// Control message operation codes
const (
	OpUnspec         uint8 = 0
	OpReadStatus     uint8 = 1
	OpReadVariables  uint8 = 2
	OpWriteVariables uint8 = 3
	OpReadClock      uint8 = 4
	OpWriteClock     uint8 = 5
	OpConfigure      uint8 = 8
	OpSaveConfig     uint8 = 9
	OpReadMRU        uint8 = 10
	OpReadOrdlist    uint8 = 11
	OpRequestNonce   uint8 = 12
)

// MakeVnMode packs protocol version and mode into the VnMode octet
func MakeVnMode(version int, mode int) uint8 {
	return uint8(((version & 0x7) << 3) | (mode & 0x7))
}

// NTPControlMsgHead structure is described in NTPv3 RFC-1119 Appendix B. NTP Control Messages
// for some reason it's missing from more recent NTPv4 RFC-5905.
// We don't have Data defined here as data size is variable and binary package
// simply doesn't support reading or writing structs with non-fixed fields.
type NTPControlMsgHead struct {
	// 0: 00 Version(3bit) Mode(3bit)
	VnMode uint8
	// 1: Response Error More Operation(5bit)
	REMOp uint8
	// 2-3: Sequence (16bit)
	Sequence uint16
	// 4-5: Status (16bit)
	Status uint16
	// 6-7: Association ID (16bit)
	AssociationID uint16
	// 8-9: Offset (16bit)
	Offset uint16
	// 10-11: Count (16bit)
	Count uint16
	// 12+: variable amount of data follows, stored in NTPControlMsg
}

// NTPControlMsg is just a NTPControlMsgHead with data
type NTPControlMsg struct {
	NTPControlMsgHead
	Data []uint8
}

// GetVersion gets int version from Version+Mode 8bit word
func (n NTPControlMsgHead) GetVersion() int {
	return int((n.VnMode & 0x38) >> 3) // get 3 bits offset by 3 bits
}

// GetMode gets int mode from Version+Mode 8bit word
func (n NTPControlMsgHead) GetMode() int {
	return int(n.VnMode & 0x7) // get last 3 bits
}

// IsResponse returns true if packet is a response
func (n NTPControlMsgHead) IsResponse() bool {
	return n.REMOp&0x80 != 0 // response, bit 7
}

// HasError returns true if packet has error flag set
func (n NTPControlMsgHead) HasError() bool {
	return n.REMOp&0x40 != 0 // error flag, bit 6
}

// HasMore returns true if packet has More flag set
func (n NTPControlMsgHead) HasMore() bool {
	return n.REMOp&0x20 != 0 // more flag, bit 5
}

// GetOperation returns int operation extracted from REMOp 8bit word
func (n NTPControlMsgHead) GetOperation() uint8 {
	return uint8(n.REMOp & 0x1f) // last 5 bits
}

// GetError returns the server error code carried in the high byte of Status
func (n NTPControlMsgHead) GetError() uint8 {
	return uint8((n.Status >> 8) & 0xff)
}

// End returns the offset one past this fragment's payload within the logical response
func (n NTPControlMsgHead) End() int {
	return int(n.Offset) + int(n.Count)
}

// Encode serializes the message into wire format: 12-byte header followed by
// payload, zero-padded so the overall length is a multiple of 4.
// Count is always set from the actual payload length.
func (n *NTPControlMsg) Encode() ([]byte, error) {
	if len(n.Data) > MaxDataLen {
		return nil, errors.Errorf("payload of %d octets exceeds maximum of %d", len(n.Data), MaxDataLen)
	}
	head := n.NTPControlMsgHead
	head.Count = uint16(len(n.Data))
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.BigEndian, head); err != nil {
		return nil, err
	}
	buf.Write(n.Data)
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

// DecodePacket parses one datagram into NTPControlMsg.
// Payload bytes beyond Count (wire padding) are dropped.
func DecodePacket(b []byte) (*NTPControlMsg, error) {
	if len(b) < HeaderLen {
		return nil, errors.Errorf("packet of %d octets is too short for a control message", len(b))
	}
	head := &NTPControlMsgHead{}
	if err := binary.Read(bytes.NewReader(b[:HeaderLen]), binary.BigEndian, head); err != nil {
		return nil, err
	}
	if int(head.Count) > len(b)-HeaderLen {
		return nil, errors.Errorf("count %d exceeds %d octets of data in packet", head.Count, len(b)-HeaderLen)
	}
	data := make([]uint8, head.Count)
	copy(data, b[HeaderLen:HeaderLen+int(head.Count)])
	return &NTPControlMsg{NTPControlMsgHead: *head, Data: data}, nil
}
