package transport

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	mrand "math/rand"
	"testing"
	"time"

	quic "github.com/quic-go/quic-go"
	"github.com/stretchr/testify/require"

	"github.com/cauchy256/crs/internal/erasure"
)

func TestSendReceiveSurvivesLossWithinBudget(t *testing.T) {
	const k, m = 6, 3
	const blockLen = 64

	ln, err := quic.ListenAddr("127.0.0.1:0", mustServerTLS(t), &quic.Config{EnableDatagrams: true})
	require.NoError(t, err)
	defer ln.Close()

	payload := make([]byte, 5*k*blockLen+17) // spans multiple generations, last one padded
	_, err = rand.Read(payload)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	recvErrCh := make(chan error, 1)
	recvDataCh := make(chan []byte, 1)
	go func() {
		data, err := Receive(ctx, ln)
		recvDataCh <- data
		recvErrCh <- err
	}()

	rng := mrand.New(mrand.NewSource(99))
	patterns := map[uint32][]bool{}
	drop := func(streamID uint32, row uint16) bool {
		survive, ok := patterns[streamID]
		if !ok {
			survive = erasure.ExactlyKOf(rng, k+m, k)
			patterns[streamID] = survive
		}
		return !survive[row]
	}

	opts := SendOptions{K: k, M: m, BlockLen: blockLen, InsecureTLS: true, Drop: drop}
	err = Send(ctx, ln.Addr().String(), payload, opts)
	require.NoError(t, err)

	got := <-recvDataCh
	require.NoError(t, <-recvErrCh)
	require.Equal(t, payload, got)
}

func TestSendReceiveRaptorQFallback(t *testing.T) {
	const k, m = 4, 2
	const blockLen = 32

	ln, err := quic.ListenAddr("127.0.0.1:0", mustServerTLS(t), &quic.Config{EnableDatagrams: true})
	require.NoError(t, err)
	defer ln.Close()

	payload := make([]byte, k*blockLen)
	_, err = rand.Read(payload)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	recvErrCh := make(chan error, 1)
	recvDataCh := make(chan []byte, 1)
	go func() {
		data, err := Receive(ctx, ln)
		recvDataCh <- data
		recvErrCh <- err
	}()

	opts := SendOptions{K: k, M: m, BlockLen: blockLen, InsecureTLS: true, Scheme: 1}
	err = Send(ctx, ln.Addr().String(), payload, opts)
	require.NoError(t, err)

	got := <-recvDataCh
	require.NoError(t, <-recvErrCh)
	require.Equal(t, payload, got)
}

func mustServerTLS(t *testing.T) *tls.Config {
	conf, err := ServerTLSConfig(ALPN)
	require.NoError(t, err)
	return conf
}
