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
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/yiqifeiyang/ntpsec/ntp/control"
)

// fragStats formats one received fragment for incomplete-response diagnostics
func fragStats(f *control.NTPControlMsg) string {
	return fmt.Sprintf("%5d %5d\t%3d octets", f.Offset, f.End(), f.Count)
}

// SendRequest ships one mode 6 request. The sequence counter is bumped on
// every send so stale responses to earlier requests can't match.
// Authenticated sends are refused rather than silently downgraded.
func (s *Session) SendRequest(opcode uint8, associd uint16, qdata []byte, auth bool) error {
	if len(qdata) > control.MaxDataLen {
		log.Warningf("request data of %d octets exceeds %d", len(qdata), control.MaxDataLen)
		return newError(KindTooLong)
	}
	s.sequence++
	pkt := &control.NTPControlMsg{
		NTPControlMsgHead: control.NTPControlMsgHead{
			VnMode:        control.MakeVnMode(s.PktVersion, control.Mode),
			REMOp:         opcode & 0x1f,
			Sequence:      s.sequence,
			AssociationID: associd,
		},
		Data: qdata,
	}
	if auth || s.AlwaysAuth {
		return newError(KindNotImplemented)
	}
	data, err := pkt.Encode()
	if err != nil {
		return wrapError(KindTooLong, err)
	}
	return s.sendPkt(data)
}

// GetResponse assembles a logical response to the last request from up to
// MaxFrags datagrams. On success the reassembled payload is stored in
// s.Response, the terminal fragment's status word in s.RStatus, and the
// returned code is 0. An error response from the server yields its error
// code with a nil error. reportTimeouts controls whether timeouts log
// diagnostics; they surface as errors either way so the caller can retry.
func (s *Session) GetResponse(opcode uint8, associd uint16, reportTimeouts bool) (int, error) {
	// We may get between 1 and MaxFrags packets back in response to the
	// request. Peel the data out of each and collect it in one long block:
	// once the terminal packet arrives we know how much we should have had.
	fragments := []*control.NTPControlMsg{}
	s.Response = nil
	seenLastFrag := false
	bail := 0

	for {
		// Discarding invalid packets can make us loop more than MaxFrags
		// times, but keep a sane bound on how long we're willing to spend here.
		bail++
		if bail >= 2*control.MaxFrags {
			log.Warningf("too many packets in response; bailing out")
			return 0, newError(KindTooMuch)
		}

		tvo := s.PrimaryTimeout
		if len(fragments) > 0 {
			tvo = s.SecondaryTimeout
		}
		rawdata, timedOut, err := s.recv(tvo)
		if err != nil {
			return 0, err
		}
		if timedOut {
			if len(fragments) == 0 {
				if reportTimeouts {
					log.Warningf("%s: timed out, nothing received", s.Hostname)
				}
				return 0, newError(KindTimeout)
			}
			if reportTimeouts {
				log.Warningf("%s: timed out with incomplete data", s.Hostname)
				for i, frag := range fragments {
					log.Debugf("%d: %s", i+1, fragStats(frag))
				}
				last := "not received"
				if seenLastFrag {
					last = "received"
				}
				log.Debugf("last fragment %s", last)
			}
			return 0, newError(KindIncomplete)
		}
		log.Debugf("received %d octets", len(rawdata))

		rpkt, err := control.DecodePacket(rawdata)
		if err != nil {
			log.Warningf("packet analysis failed: %v", err)
			return 0, wrapError(KindUnspec, err)
		}

		// Stragglers from earlier queries and unrelated traffic are dropped
		// without counting against the caller; only the bail bound above
		// protects us from a persistent flood.
		if rpkt.GetVersion() > control.NTPVersion || rpkt.GetVersion() < control.NTPOldVersion {
			log.Debugf("packet received with version %d", rpkt.GetVersion())
			continue
		}
		if rpkt.GetMode() != control.Mode {
			log.Debugf("packet received with mode %d", rpkt.GetMode())
			continue
		}
		if !rpkt.IsResponse() {
			log.Debugf("received request, wanted response")
		}
		if rpkt.Sequence != s.sequence {
			log.Debugf("received sequence number %d, wanted %d", rpkt.Sequence, s.sequence)
			continue
		}
		if rpkt.GetOperation() != opcode {
			log.Debugf("received opcode %d, wanted %d", rpkt.GetOperation(), opcode)
			continue
		}

		// Check the error code. If non-zero, return it.
		if rpkt.HasError() {
			if rpkt.HasMore() {
				log.Warningf("error %d received on non-final packet", rpkt.GetError())
			}
			return int(rpkt.GetError()), nil
		}

		// Some servers clear the association ID on certain control
		// responses, so a mismatch is noted but the fragment is kept.
		if rpkt.AssociationID != associd {
			log.Warningf("association ID %d doesn't match expected %d", rpkt.AssociationID, associd)
		}

		if rpkt.Count == 0 && rpkt.HasMore() {
			log.Debugf("received count of 0 in non-final fragment")
			continue
		}
		if seenLastFrag && !rpkt.HasMore() {
			log.Debugf("received second last fragment packet")
			continue
		}

		// So far, so good. Find where the fragment belongs in the sorted
		// list and make sure it neither duplicates nor overlaps a neighbor.
		idx := sort.Search(len(fragments), func(i int) bool {
			return fragments[i].Offset >= rpkt.Offset
		})
		if idx < len(fragments) && fragments[idx].Offset == rpkt.Offset {
			log.Warningf("duplicate %d octets at %d ignored, prior %d at %d",
				rpkt.Count, rpkt.Offset, fragments[idx].Count, fragments[idx].Offset)
			continue
		}
		if idx > 0 && fragments[idx-1].End() > int(rpkt.Offset) {
			log.Warningf("received frag at %d overlaps with %d octet frag at %d",
				rpkt.Offset, fragments[idx-1].Count, fragments[idx-1].Offset)
			continue
		}
		if idx < len(fragments) && rpkt.End() > int(fragments[idx].Offset) {
			log.Warningf("received %d octet frag at %d overlaps with frag at %d",
				rpkt.Count, rpkt.Offset, fragments[idx].Offset)
			continue
		}

		// Passed all tests, insert it into the frag list.
		fragments = append(fragments, nil)
		copy(fragments[idx+1:], fragments[idx:])
		fragments[idx] = rpkt

		// Record status out of the terminal packet.
		if !rpkt.HasMore() {
			seenLastFrag = true
			s.RStatus = rpkt.Status
		}

		// If we've seen the last fragment, look for holes in the sequence.
		// If there aren't any, we're done.
		if seenLastFrag && fragments[0].Offset == 0 {
			gap := false
			for i := 1; i < len(fragments); i++ {
				if fragments[i-1].End() != int(fragments[i].Offset) {
					gap = true
					break
				}
			}
			if !gap {
				response := new(bytes.Buffer)
				for _, frag := range fragments {
					response.Write(frag.Data)
				}
				s.Response = response.Bytes()
				if s.Debug >= 4 {
					buf := new(bytes.Buffer)
					control.DumpHexPrintable(buf, s.Response)
					log.Debugf("response packet:\n%s", buf.String())
				}
				return 0, nil
			}
		}
	}
}

// DoQuery sends a request and gathers the response into s.Response.
// A single retry shields against one stray timeout or incomplete response;
// the first attempt keeps quiet about timeouts so only a second failure
// reaches the operator. Returns the server error code, 0 on data success.
func (s *Session) DoQuery(opcode uint8, associd uint16, qdata []byte, auth bool) (int, error) {
	if !s.HaveHost() {
		return 0, newError(KindNoHost)
	}
	retry := true
	for {
		if err := s.SendRequest(opcode, associd, qdata, auth); err != nil {
			return 0, err
		}
		rcode, err := s.GetResponse(opcode, associd, !retry)
		if err != nil {
			if retry && (IsKind(err, KindTimeout) || IsKind(err, KindIncomplete)) {
				retry = false
				continue
			}
			return 0, err
		}
		return rcode, nil
	}
}

// Peer is the information we have about one NTP association.
// Variables stays nil until ReadVars populates it.
type Peer struct {
	AssocID   uint16
	Status    uint16
	Variables *VarMap
}

// ReadVars populates the peer's variable mapping from the session
func (p *Peer) ReadVars(s *Session) error {
	vars, err := s.ReadVar(p.AssocID, nil, control.OpReadVariables)
	if err != nil {
		return err
	}
	p.Variables = vars
	return nil
}

func (p *Peer) String() string {
	return fmt.Sprintf("<Peer: associd=%d status=%04x>", p.AssocID, p.Status)
}

// ReadStat reads the association status list: pairs of 16bit association ID
// and status word, returned sorted by ascending association ID.
func (s *Session) ReadStat(associd uint16) ([]*Peer, error) {
	rcode, err := s.DoQuery(control.OpReadStatus, associd, nil, false)
	if err != nil {
		return nil, err
	}
	if rcode != 0 {
		return nil, ServerError(uint8(rcode), associd)
	}
	if len(s.Response)%4 != 0 {
		return nil, newError(KindBadLength)
	}
	peers := make([]*Peer, 0, len(s.Response)/4)
	for i := 0; i+4 <= len(s.Response); i += 4 {
		peers = append(peers, &Peer{
			AssocID: binary.BigEndian.Uint16(s.Response[i : i+2]),
			Status:  binary.BigEndian.Uint16(s.Response[i+2 : i+4]),
		})
	}
	sort.Slice(peers, func(i, j int) bool {
		return peers[i].AssocID < peers[j].AssocID
	})
	return peers, nil
}

// ReadVar reads variables from the host as an ordered typed mapping.
// An empty varlist asks the server for its default set. opcode is normally
// OpReadVariables but OpReadClock takes the same form.
func (s *Session) ReadVar(associd uint16, varlist []string, opcode uint8) (*VarMap, error) {
	var qdata []byte
	if len(varlist) > 0 {
		qdata = []byte(strings.Join(varlist, ","))
	}
	rcode, err := s.DoQuery(opcode, associd, qdata, false)
	if err != nil {
		return nil, err
	}
	if rcode != 0 {
		return nil, ServerError(uint8(rcode), associd)
	}
	return parseVars(s.Response), nil
}
