// Copyright 2026 The MeshDAT Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"net"
	"net/netip"

	"github.com/meshproto/meshdat/pkg/private/serrors"
)

// Message payloads exchanged between daemons. A mapping is one byte of
// address length, the address bytes and a 6-byte link address; a query
// carries the address only.

const linkAddrLen = 6

func encodeMapping(addr netip.Addr, link net.HardwareAddr) []byte {
	ab := addr.AsSlice()
	buf := make([]byte, 1+len(ab)+len(link))
	buf[0] = byte(len(ab))
	copy(buf[1:], ab)
	copy(buf[1+len(ab):], link)
	return buf
}

func decodeMapping(b []byte) (netip.Addr, net.HardwareAddr, error) {
	addr, rest, err := decodeAddr(b)
	if err != nil {
		return netip.Addr{}, nil, err
	}
	if len(rest) != linkAddrLen {
		return netip.Addr{}, nil, serrors.New("bad link address length", "len", len(rest))
	}
	return addr, net.HardwareAddr(bytes.Clone(rest)), nil
}

func encodeQuery(addr netip.Addr) []byte {
	ab := addr.AsSlice()
	buf := make([]byte, 1+len(ab))
	buf[0] = byte(len(ab))
	copy(buf[1:], ab)
	return buf
}

func decodeQuery(b []byte) (netip.Addr, error) {
	addr, rest, err := decodeAddr(b)
	if err != nil {
		return netip.Addr{}, err
	}
	if len(rest) != 0 {
		return netip.Addr{}, serrors.New("trailing bytes", "len", len(rest))
	}
	return addr, nil
}

func decodeAddr(b []byte) (netip.Addr, []byte, error) {
	if len(b) < 1 {
		return netip.Addr{}, nil, serrors.New("empty payload")
	}
	al := int(b[0])
	if al != net.IPv4len && al != net.IPv6len {
		return netip.Addr{}, nil, serrors.New("bad address length", "len", al)
	}
	if len(b) < 1+al {
		return netip.Addr{}, nil, serrors.New("truncated payload",
			"len", len(b), "want", 1+al)
	}
	addr, ok := netip.AddrFromSlice(b[1 : 1+al])
	if !ok {
		return netip.Addr{}, nil, serrors.New("bad address bytes")
	}
	return addr.Unmap(), b[1+al:], nil
}
