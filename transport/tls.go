package transport

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"math/big"
)

// ServerTLSConfig generates a minimal self-signed Ed25519 certificate for
// alpn. It exists so cmd/crsserver can start without an operator-supplied
// certificate; production deployments should build the listener passed to
// Receive from their own *tls.Config instead.
func ServerTLSConfig(alpn string) (*tls.Config, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	template := x509.Certificate{SerialNumber: big.NewInt(1)}
	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, priv.Public(), priv)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{certDER},
			PrivateKey:  priv,
		}},
		NextProtos: []string{alpn},
	}, nil
}

// ClientTLSConfig returns a TLS config for dialing a crsserver. insecure
// skips certificate verification, which is the only option against a
// self-signed ServerTLSConfig unless the client has the server's
// certificate pinned out of band.
func ClientTLSConfig(alpn string, insecure bool) *tls.Config {
	return &tls.Config{InsecureSkipVerify: insecure, NextProtos: []string{alpn}}
}
