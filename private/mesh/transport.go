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

package mesh

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/netip"

	"github.com/meshproto/meshdat/dat"
	"github.com/meshproto/meshdat/pkg/log"
	"github.com/meshproto/meshdat/pkg/private/serrors"
)

// maxDatagram bounds the size of a single table message on the wire.
const maxDatagram = 9216

// Handler processes one received table message.
type Handler func(msg dat.Message, from netip.AddrPort)

// UDPTransport sends and receives table messages as unicast UDP datagrams.
// The wire format is a single kind byte followed by the payload. Delivery is
// at-most-once with no retries.
type UDPTransport struct {
	conn *net.UDPConn
}

// NewUDPTransport opens a UDP socket bound to local.
func NewUDPTransport(local netip.AddrPort) (*UDPTransport, error) {
	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(local))
	if err != nil {
		return nil, serrors.Wrap("binding transport socket", err, "local", local)
	}
	return &UDPTransport{conn: conn}, nil
}

// LocalAddr returns the bound address of the transport socket.
func (t *UDPTransport) LocalAddr() netip.AddrPort {
	return t.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Send writes msg to nextHop as a single datagram.
func (t *UDPTransport) Send(ctx context.Context, msg dat.Message, nextHop netip.AddrPort) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.Payload) > maxDatagram-1 {
		return serrors.New("payload too large",
			"size", len(msg.Payload), "max", maxDatagram-1)
	}
	buf := make([]byte, 1+len(msg.Payload))
	buf[0] = byte(msg.Kind)
	copy(buf[1:], msg.Payload)
	if _, err := t.conn.WriteToUDPAddrPort(buf, nextHop); err != nil {
		return serrors.Wrap("writing datagram", err, "next_hop", nextHop)
	}
	return nil
}

// Serve reads datagrams and dispatches them to handler until the transport
// is closed. Malformed datagrams are dropped. Serve returns nil after Close.
func (t *UDPTransport) Serve(handler Handler) error {
	logger := log.New("comp", "mesh.transport", "local", t.LocalAddr())
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := t.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return serrors.Wrap("reading datagram", err)
		}
		if n < 1 {
			logger.Debug("Dropping empty datagram", "from", from)
			continue
		}
		kind := dat.MessageKind(buf[0])
		if kind != dat.KindGet && kind != dat.KindPut {
			logger.Debug("Dropping datagram with unknown kind",
				"kind", uint8(buf[0]), "from", from)
			continue
		}
		handler(dat.Message{Kind: kind, Payload: bytes.Clone(buf[1:n])}, from)
	}
}

// Close shuts the socket down and unblocks Serve.
func (t *UDPTransport) Close() error {
	return t.conn.Close()
}
