// Package wire defines the fixed-size header that precedes every encoded
// block on the transport layer, so a receiver can tell which (k, m, row) a
// datagram belongs to before it has reassembled enough of the stream to know
// anything else about it.
package wire

import "encoding/binary"

// Scheme identifies which erasure/fountain code produced a block's payload.
// transport/ sends SchemeCauchyRS by default and SchemeRaptorQ when the
// sender sets SendOptions.Scheme to it; the scheme is not negotiated with
// the peer.
const (
	SchemeCauchyRS uint8 = 0
	SchemeRaptorQ  uint8 = 1
)

// Header precedes every block on the wire.
type Header struct {
	Version    uint8  // 1
	Scheme     uint8  // SchemeCauchyRS or SchemeRaptorQ
	StreamID   uint32 // generation index within one transfer
	K          uint16
	M          uint16
	Row        uint16 // crs.Block.Row: 0..K-1 original, K..K+M-1 recovery
	Flags      uint8  // reserved
	PayloadLen uint32 // length of the block payload that follows
}

// Len is the marshaled size of a Header in bytes.
const Len = 1 + 1 + 4 + 2 + 2 + 2 + 1 + 4

// MarshalBinary writes h into b, growing b if it is too small to hold Len
// bytes, and returns the Len-byte slice actually written.
func (h *Header) MarshalBinary(b []byte) []byte {
	if len(b) < Len {
		b = make([]byte, Len)
	}
	b[0] = h.Version
	b[1] = h.Scheme
	binary.LittleEndian.PutUint32(b[2:6], h.StreamID)
	binary.LittleEndian.PutUint16(b[6:8], h.K)
	binary.LittleEndian.PutUint16(b[8:10], h.M)
	binary.LittleEndian.PutUint16(b[10:12], h.Row)
	b[12] = h.Flags
	binary.LittleEndian.PutUint32(b[13:17], h.PayloadLen)
	return b[:Len]
}

// UnmarshalBinary reads a Header out of b. It reports false if b is shorter
// than Len.
func (h *Header) UnmarshalBinary(b []byte) bool {
	if len(b) < Len {
		return false
	}
	h.Version = b[0]
	h.Scheme = b[1]
	h.StreamID = binary.LittleEndian.Uint32(b[2:6])
	h.K = binary.LittleEndian.Uint16(b[6:8])
	h.M = binary.LittleEndian.Uint16(b[8:10])
	h.Row = binary.LittleEndian.Uint16(b[10:12])
	h.Flags = b[12]
	h.PayloadLen = binary.LittleEndian.Uint32(b[13:17])
	return true
}

// IsRecovery reports whether Row addresses a recovery block rather than an
// original data block.
func (h *Header) IsRecovery() bool {
	return h.Row >= h.K
}
