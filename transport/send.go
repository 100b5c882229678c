// Package transport demonstrates the Cauchy Reed-Solomon core over a real
// network path: it chunks a byte stream into k-block generations, sends
// each block as one QUIC datagram, and reconstructs generations at the
// receiver from any k of the k+m datagrams that arrive.
package transport

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	quic "github.com/quic-go/quic-go"
	rqq "github.com/xssnick/raptorq"

	"github.com/cauchy256/crs/crs"
	"github.com/cauchy256/crs/wire"
)

// ALPN is the protocol this package's client and server negotiate.
const ALPN = "crs-transport/1"

const (
	DefaultK        = 16
	DefaultM        = 4
	DefaultBlockLen = 1184 // multiple of 8, comfortably under a typical QUIC datagram's MTU headroom
)

// fileHeader is sent once on a reliable stream before any coded datagrams.
//
//	MAGIC    4B   "CRSF"
//	VERSION  u16  1
//	FILESIZE u64
//	SHA256   32B
//	BLOCKLEN u32
//	K        u16
//	M        u16
const (
	fileHeaderMagic = "CRSF"
	fileHeaderLen   = 4 + 2 + 8 + 32 + 4 + 2 + 2
)

type fileHeader struct {
	Version  uint16
	FileSize uint64
	SHA256   [32]byte
	BlockLen uint32
	K        uint16
	M        uint16
}

func (h *fileHeader) marshal() []byte {
	b := make([]byte, fileHeaderLen)
	copy(b[0:4], fileHeaderMagic)
	binary.LittleEndian.PutUint16(b[4:6], h.Version)
	binary.LittleEndian.PutUint64(b[6:14], h.FileSize)
	copy(b[14:46], h.SHA256[:])
	binary.LittleEndian.PutUint32(b[46:50], h.BlockLen)
	binary.LittleEndian.PutUint16(b[50:52], h.K)
	binary.LittleEndian.PutUint16(b[52:54], h.M)
	return b
}

func (h *fileHeader) unmarshal(b []byte) error {
	if len(b) < fileHeaderLen {
		return errors.New("transport: short file header")
	}
	if string(b[0:4]) != fileHeaderMagic {
		return errors.New("transport: bad file header magic")
	}
	h.Version = binary.LittleEndian.Uint16(b[4:6])
	if h.Version != 1 {
		return fmt.Errorf("transport: unsupported file header version %d", h.Version)
	}
	h.FileSize = binary.LittleEndian.Uint64(b[6:14])
	copy(h.SHA256[:], b[14:46])
	h.BlockLen = binary.LittleEndian.Uint32(b[46:50])
	h.K = binary.LittleEndian.Uint16(b[50:52])
	h.M = binary.LittleEndian.Uint16(b[52:54])
	return nil
}

// SendOptions configures Send. Zero values fall back to DefaultK/DefaultM/
// DefaultBlockLen.
type SendOptions struct {
	K, M        int
	BlockLen    int
	InsecureTLS bool
	Scheme      uint8 // wire.SchemeCauchyRS (default) or wire.SchemeRaptorQ

	// Drop, if set, is consulted before each block is sent and lets a
	// caller simulate datagram loss without a real lossy network path.
	// It is called with the generation's stream ID and the block's row.
	Drop func(streamID uint32, row uint16) bool
}

func (o *SendOptions) setDefaults() {
	if o.K <= 0 {
		o.K = DefaultK
	}
	if o.M <= 0 {
		o.M = DefaultM
	}
	if o.BlockLen <= 0 {
		o.BlockLen = DefaultBlockLen
	}
}

// Send dials addr over QUIC and transmits data as a sequence of CRS-coded
// generations, one per chunk of K*BlockLen bytes (the last generation is
// zero-padded up to that size). It returns once the receiver has closed the
// connection, or with an error when ctx ends first.
func Send(ctx context.Context, addr string, data []byte, opts SendOptions) error {
	opts.setDefaults()
	if opts.BlockLen%8 != 0 {
		return fmt.Errorf("transport: block length %d must be a multiple of 8", opts.BlockLen)
	}

	tlsConf := ClientTLSConfig(ALPN, opts.InsecureTLS)
	qconf := &quic.Config{EnableDatagrams: true, KeepAlivePeriod: 50 * time.Millisecond}
	conn, err := quic.DialAddr(ctx, addr, tlsConf, qconf)
	if err != nil {
		return fmt.Errorf("transport: dial: %w", err)
	}
	defer conn.CloseWithError(0, "done")

	sum := sha256.Sum256(data)
	hdr := fileHeader{
		Version:  1,
		FileSize: uint64(len(data)),
		SHA256:   sum,
		BlockLen: uint32(opts.BlockLen),
		K:        uint16(opts.K),
		M:        uint16(opts.M),
	}
	str, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return fmt.Errorf("transport: open header stream: %w", err)
	}
	if _, err := str.Write(hdr.marshal()); err != nil {
		return fmt.Errorf("transport: write header: %w", err)
	}
	if err := str.Close(); err != nil {
		return fmt.Errorf("transport: close header stream: %w", err)
	}

	chunkLen := opts.K * opts.BlockLen
	var streamID uint32
	for offset := 0; offset < len(data); offset += chunkLen {
		end := offset + chunkLen
		var chunk []byte
		if end <= len(data) {
			chunk = data[offset:end]
		} else {
			chunk = make([]byte, chunkLen)
			copy(chunk, data[offset:])
		}

		blocks := make([][]byte, opts.K)
		for i := range blocks {
			blocks[i] = chunk[i*opts.BlockLen : (i+1)*opts.BlockLen]
		}

		if err := sendGeneration(conn, streamID, blocks, opts); err != nil {
			return err
		}
		streamID++
	}

	// Keep the connection open until the receiver has finished and closed
	// it; closing first would abort the header stream and the datagrams
	// still in flight.
	select {
	case <-conn.Context().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("transport: waiting for receiver: %w", ctx.Err())
	}
}

func sendGeneration(conn quic.Connection, streamID uint32, blocks [][]byte, opts SendOptions) error {
	if opts.Scheme == wire.SchemeRaptorQ {
		return sendGenerationRaptorQ(conn, streamID, blocks, opts)
	}

	recovery, err := crs.Encode(opts.K, opts.M, blocks)
	if err != nil {
		return fmt.Errorf("transport: encode generation %d: %w", streamID, err)
	}

	for i, b := range blocks {
		if err := sendBlock(conn, streamID, opts, wire.SchemeCauchyRS, uint16(i), b); err != nil {
			return err
		}
	}
	for j, r := range recovery {
		if err := sendBlock(conn, streamID, opts, wire.SchemeCauchyRS, uint16(opts.K+j), r); err != nil {
			return err
		}
	}
	return nil
}

// sendGenerationRaptorQ is the fallback path used when the deployment opts
// into RaptorQ instead of the Cauchy core — wire.Header carries the same
// (K, M, Row) shape either way, so receive.go dispatches purely on
// h.Scheme.
func sendGenerationRaptorQ(conn quic.Connection, streamID uint32, blocks [][]byte, opts SendOptions) error {
	payload := make([]byte, 0, opts.K*opts.BlockLen)
	for _, b := range blocks {
		payload = append(payload, b...)
	}
	rq := rqq.NewRaptorQ(uint32(opts.BlockLen))
	enc, err := rq.CreateEncoder(payload)
	if err != nil {
		return fmt.Errorf("transport: raptorq encoder: %w", err)
	}
	for id := 0; id < opts.K+opts.M; id++ {
		sym := enc.GenSymbol(uint32(id))
		if err := sendBlock(conn, streamID, opts, wire.SchemeRaptorQ, uint16(id), sym); err != nil {
			return err
		}
	}
	return nil
}

func sendBlock(conn quic.Connection, streamID uint32, opts SendOptions, scheme uint8, row uint16, payload []byte) error {
	if opts.Drop != nil && opts.Drop(streamID, row) {
		return nil
	}
	h := wire.Header{
		Version:    1,
		Scheme:     scheme,
		StreamID:   streamID,
		K:          uint16(opts.K),
		M:          uint16(opts.M),
		Row:        row,
		PayloadLen: uint32(len(payload)),
	}
	buf := make([]byte, wire.Len+len(payload))
	copy(buf[:wire.Len], h.MarshalBinary(nil))
	copy(buf[wire.Len:], payload)

	if err := conn.SendDatagram(buf); err != nil {
		var tooLarge *quic.DatagramTooLargeError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("transport: datagram too large for path MTU: %w", err)
		}
		return fmt.Errorf("transport: send datagram: %w", err)
	}
	return nil
}

// TLSConfigFromCert wraps an operator-supplied certificate for the QUIC
// listener handed to Receive, bypassing the self-signed ServerTLSConfig
// helper.
func TLSConfigFromCert(cert tls.Certificate) *tls.Config {
	return &tls.Config{Certificates: []tls.Certificate{cert}, NextProtos: []string{ALPN}}
}
