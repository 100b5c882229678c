package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	quic "github.com/quic-go/quic-go"

	"github.com/cauchy256/crs/transport"
)

func main() {
	var (
		addr    = flag.String("addr", ":4444", "listen address")
		out     = flag.String("out", "received.bin", "output file path")
		timeout = flag.Duration("timeout", 120*time.Second, "server timeout")
	)
	flag.Parse()

	tlsConf, err := transport.ServerTLSConfig(transport.ALPN)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tls error:", err)
		os.Exit(1)
	}

	ln, err := quic.ListenAddr(*addr, tlsConf, &quic.Config{EnableDatagrams: true})
	if err != nil {
		fmt.Fprintln(os.Stderr, "listen error:", err)
		os.Exit(1)
	}
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("listening on", *addr)
	data, err := transport.Receive(ctx, ln)
	if err != nil {
		fmt.Fprintln(os.Stderr, "receive error:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write error:", err)
		os.Exit(1)
	}
	fmt.Printf("stored %d bytes at %s\n", len(data), *out)
}
