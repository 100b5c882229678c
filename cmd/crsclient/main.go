package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/cauchy256/crs/internal/erasure"
	"github.com/cauchy256/crs/transport"
	"github.com/cauchy256/crs/wire"
)

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:4444", "server address")
		filePath = flag.String("file", "", "file to send")
		insecure = flag.Bool("insecure", true, "skip TLS verification")
		k        = flag.Int("k", transport.DefaultK, "source blocks per generation")
		m        = flag.Int("m", transport.DefaultM, "recovery blocks per generation")
		blockLen = flag.Int("block-len", transport.DefaultBlockLen, "bytes per block, multiple of 8")
		raptorq  = flag.Bool("raptorq", false, "use the RaptorQ fallback scheme instead of Cauchy Reed-Solomon")
		loss     = flag.Float64("loss", 0, "sender drop probability, simulated locally per datagram")
		seed     = flag.Int64("seed", 1, "seed for -loss simulation")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "error: -file is required")
		os.Exit(1)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	opts := transport.SendOptions{K: *k, M: *m, BlockLen: *blockLen, InsecureTLS: *insecure}
	if *raptorq {
		opts.Scheme = wire.SchemeRaptorQ
	}
	if *loss > 0 {
		bern := erasure.NewBernoulli(*loss, rand.New(rand.NewSource(*seed)))
		opts.Drop = func(streamID uint32, row uint16) bool { return bern.Drop() }
	}

	if err := transport.Send(ctx, *addr, data, opts); err != nil {
		fmt.Fprintln(os.Stderr, "send error:", err)
		os.Exit(1)
	}
	fmt.Printf("sent %d bytes to %s\n", len(data), *addr)
}
