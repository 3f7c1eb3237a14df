package gateway

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
)

// TLSFiles names the optional PEM files used to reach the API over TLS.
type TLSFiles struct {
	// CAFile is a CA bundle used to verify the server.
	CAFile string
	// CertFile and KeyFile form a client certificate pair for mutual TLS.
	CertFile string
	KeyFile  string
}

// NewHTTPClient builds the transport for the gateway. With no files set it
// returns a plain client. No timeout is configured.
func NewHTTPClient(files TLSFiles) (*http.Client, error) {
	if files.CAFile == "" && files.CertFile == "" && files.KeyFile == "" {
		return &http.Client{}, nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if files.CAFile != "" {
		caCert, err := os.ReadFile(files.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caPool
	}

	if files.CertFile != "" || files.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return &http.Client{Transport: &http.Transport{TLSClientConfig: tlsConfig}}, nil
}
