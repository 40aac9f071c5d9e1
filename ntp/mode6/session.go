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
	"net"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yiqifeiyang/ntpsec/ntp/control"
)

// Session talks mode 6 to one NTP server. It is not safe for concurrent use;
// callers serialize. Configuration fields may be adjusted between OpenHost
// and the first query.
type Session struct {
	// Debug gates extra diagnostics: >=3 dumps outgoing packets,
	// >=4 dumps reassembled responses
	Debug int
	// AIFamily restricts resolution: "udp", "udp4" or "udp6". Empty means "udp".
	AIFamily string
	// Port overrides the NTP service port when non-zero
	Port int
	// PrimaryTimeout bounds the wait for the first fragment of a response
	PrimaryTimeout time.Duration
	// SecondaryTimeout bounds the wait for each subsequent fragment
	SecondaryTimeout time.Duration
	// PktVersion is the NTP version we put in request packets
	PktVersion int
	// AlwaysAuth forces authenticated requests (not implemented, requests fail)
	AlwaysAuth bool
	// KeyID and Password are reserved for authenticated requests
	KeyID    int
	Password string

	// Hostname is the canonical name of the open host
	Hostname string
	// IsNum is true when the host was given as an address literal
	IsNum bool
	// Response holds the reassembled payload of the last successful query
	Response []byte
	// RStatus holds the status word from the last fragment of the last response
	RStatus uint16

	conn     net.Conn
	sequence uint16
}

// NewSession returns a Session with the standard ntpq defaults
func NewSession() *Session {
	return &Session{
		PrimaryTimeout:   5 * time.Second,
		SecondaryTimeout: 3 * time.Second,
		PktVersion:       control.NTPOldVersion + 1,
	}
}

// HaveHost reports whether the session is connected to a host
func (s *Session) HaveHost() bool {
	return s.conn != nil
}

// Close releases the socket. Safe to call on a closed session.
func (s *Session) Close() {
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			log.Debugf("closing socket: %v", err)
		}
		s.conn = nil
	}
}

func (s *Session) network(family string) string {
	if family != "" {
		return family
	}
	if s.AIFamily != "" {
		return s.AIFamily
	}
	return "udp"
}

func (s *Session) ntpPort(network string) int {
	if s.Port != 0 {
		return s.Port
	}
	port, err := net.LookupPort(network, "ntp")
	if err != nil {
		return 123
	}
	return port
}

// lookupHost tries different ways to interpret an address: first as a
// numeric literal, then a regular lookup, and as a last resort against the
// ndp service name, which shakes loose some broken resolvers.
func (s *Session) lookupHost(hname string, network string) (*net.UDPAddr, error) {
	port := s.ntpPort(network)
	if ip := net.ParseIP(hname); ip != nil {
		return &net.UDPAddr{IP: ip, Port: port}, nil
	}
	addr, err := net.ResolveUDPAddr(network, net.JoinHostPort(hname, strconv.Itoa(port)))
	if err == nil {
		return addr, nil
	}
	log.Debugf("standard-mode lookup of %s failed: %v", hname, err)
	if dnsErr, ok := err.(*net.DNSError); !ok || !dnsErr.IsNotFound {
		return nil, err
	}
	addr, err = net.ResolveUDPAddr(network, net.JoinHostPort(hname, "ndp"))
	if err != nil {
		log.Debugf("ndp lookup of %s failed: %v", hname, err)
		return nil, err
	}
	return addr, nil
}

// OpenHost resolves hname and connects the session's UDP socket to it.
// family may be "udp4" or "udp6" to override the session preference.
func (s *Session) OpenHost(hname string, family string) error {
	if len(hname) >= 2 && hname[0] == '[' && hname[len(hname)-1] == ']' {
		hname = hname[1 : len(hname)-1]
	}
	network := s.network(family)
	isnum := net.ParseIP(hname) != nil
	addr, err := s.lookupHost(hname, network)
	if err != nil {
		return wrapError(KindNoHost, err)
	}
	hostname := hname
	if !isnum {
		if cname, err := net.LookupCNAME(hname); err == nil && cname != "" {
			hostname = cname
		}
	}
	log.Debugf("opening host %s (%s)", hostname, addr)
	conn, err := net.DialUDP(network, nil, addr)
	if err != nil {
		return wrapError(KindNoHost, err)
	}
	s.Close()
	s.conn = conn
	s.Hostname = hostname
	s.IsNum = isnum
	return nil
}

// sendPkt pads data to a multiple of 4 octets and writes one datagram
func (s *Session) sendPkt(data []byte) error {
	for len(data)%4 != 0 {
		data = append(data, 0)
	}
	if s.Debug >= 3 {
		log.Debugf("sending %d octets", len(data))
	}
	if _, err := s.conn.Write(data); err != nil {
		log.Warningf("write to %s failed: %v", s.Hostname, err)
		return wrapError(KindWriteFailed, err)
	}
	if s.Debug >= 3 {
		buf := new(bytes.Buffer)
		control.DumpHexPrintable(buf, data)
		log.Debugf("request packet:\n%s", buf.String())
	}
	return nil
}

// recv waits up to timeout for one datagram. The second return is true when
// the wait timed out.
func (s *Session) recv(timeout time.Duration) ([]byte, bool, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, false, wrapError(KindSelectFailed, err)
	}
	buf := make([]byte, 4096)
	n, err := s.conn.Read(buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, true, nil
		}
		log.Warningf("read from %s failed: %v", s.Hostname, err)
		return nil, false, wrapError(KindSelectFailed, err)
	}
	return buf[:n], false, nil
}
