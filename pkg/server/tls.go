package server

import (
	"crypto/tls"
	"errors"
	"fmt"
)

// ErrIncompleteTLS is returned when only one of the certificate and key is
// configured.
var ErrIncompleteTLS = errors.New("server: tls needs both cert and key")

// TLSConfig holds TLS configuration for the server.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// Enabled reports whether any TLS file is configured.
func (c TLSConfig) Enabled() bool {
	return c.CertFile != "" || c.KeyFile != ""
}

// LoadCertificates loads TLS certificates from files.
func (c TLSConfig) LoadCertificates() ([]tls.Certificate, error) {
	if c.CertFile == "" || c.KeyFile == "" {
		return nil, ErrIncompleteTLS
	}

	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading tls key pair: %w", err)
	}
	return []tls.Certificate{cert}, nil
}

// ServerTLSConfig returns the TLS 1.3 configuration used by the server.
func ServerTLSConfig(certificates []tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: certificates,
		MinVersion:   tls.VersionTLS13,
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
		NextProtos: []string{"h2", "http/1.1"},
	}
}
