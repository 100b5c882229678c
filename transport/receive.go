package transport

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"

	quic "github.com/quic-go/quic-go"
	rqq "github.com/xssnick/raptorq"

	"github.com/cauchy256/crs/crs"
	"github.com/cauchy256/crs/wire"
)

// Receive accepts one connection on ln, reads the file header stream, then
// assembles coded datagrams generation by generation until the whole file
// is reconstructed. It returns the reassembled bytes.
func Receive(ctx context.Context, ln *quic.Listener) ([]byte, error) {
	conn, err := ln.Accept(ctx)
	if err != nil {
		return nil, fmt.Errorf("transport: accept: %w", err)
	}
	defer conn.CloseWithError(0, "done")

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("transport: accept header stream: %w", err)
	}
	hdrBytes := make([]byte, fileHeaderLen)
	if _, err := io.ReadFull(stream, hdrBytes); err != nil {
		return nil, fmt.Errorf("transport: read header: %w", err)
	}
	var hdr fileHeader
	if err := hdr.unmarshal(hdrBytes); err != nil {
		return nil, err
	}

	out := make([]byte, hdr.FileSize)

	pending := map[uint32][]crs.Block{}
	decoded := map[uint32][]byte{}
	var nextWrite uint32
	var written int

	for written < len(out) {
		b, err := conn.ReceiveDatagram(ctx)
		if err != nil {
			return nil, fmt.Errorf("transport: receive datagram: %w", err)
		}
		var h wire.Header
		if !h.UnmarshalBinary(b) {
			continue
		}
		if int(h.PayloadLen) > len(b)-wire.Len {
			continue
		}
		payload := append([]byte(nil), b[wire.Len:wire.Len+int(h.PayloadLen)]...)

		if _, ok := decoded[h.StreamID]; ok {
			continue // already have this generation
		}
		pending[h.StreamID] = append(pending[h.StreamID], crs.Block{Data: payload, Row: int(h.Row)})

		if len(pending[h.StreamID]) >= int(hdr.K) {
			chunk, err := decodeGeneration(h.Scheme, int(hdr.K), int(hdr.M), int(hdr.BlockLen), pending[h.StreamID])
			if err == nil {
				decoded[h.StreamID] = chunk
				delete(pending, h.StreamID)
			}
		}

		for {
			chunk, ok := decoded[nextWrite]
			if !ok {
				break
			}
			remaining := len(out) - written
			n := len(chunk)
			if n > remaining {
				n = remaining
			}
			copy(out[written:], chunk[:n])
			written += n
			delete(decoded, nextWrite)
			nextWrite++
		}
	}

	sum := sha256.Sum256(out)
	if sum != hdr.SHA256 {
		return nil, fmt.Errorf("transport: sha256 mismatch after reassembly")
	}
	return out, nil
}

func decodeGeneration(scheme uint8, k, m, blockLen int, blocks []crs.Block) ([]byte, error) {
	if scheme == wire.SchemeRaptorQ {
		return decodeGenerationRaptorQ(k, m, blockLen, blocks)
	}

	// Decode needs exactly k blocks; once more than k have arrived for a
	// generation, keep only the first k seen (any k survivors decode).
	if len(blocks) > k {
		blocks = blocks[:k]
	}
	got, err := crs.Decode(k, m, blocks)
	if err != nil {
		return nil, err
	}
	chunk := make([]byte, 0, k*blockLen)
	for _, b := range got {
		chunk = append(chunk, b...)
	}
	return chunk, nil
}

func decodeGenerationRaptorQ(k, m, blockLen int, blocks []crs.Block) ([]byte, error) {
	rq := rqq.NewRaptorQ(uint32(blockLen))
	dec, err := rq.CreateDecoder(uint32(k * blockLen))
	if err != nil {
		return nil, fmt.Errorf("transport: raptorq decoder: %w", err)
	}
	for _, blk := range blocks {
		if _, err := dec.AddSymbol(uint32(blk.Row), blk.Data); err != nil {
			continue
		}
	}
	ok, data, err := dec.Decode()
	if err != nil || !ok {
		return nil, fmt.Errorf("transport: raptorq decode incomplete")
	}
	return data, nil
}

