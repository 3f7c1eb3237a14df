package main

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readCert(t *testing.T, path string) *x509.Certificate {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		t.Fatalf("%s is not PEM", path)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return cert
}

func TestRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	o := options{dir: dir, hosts: "localhost,127.0.0.1", client: "ann", ttl: time.Hour}
	if err := run(o); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"ca.crt", "ca.key", "server.crt", "server.key", "client.crt", "client.key"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	ca := readCert(t, filepath.Join(dir, "ca.crt"))
	server := readCert(t, filepath.Join(dir, "server.crt"))
	client := readCert(t, filepath.Join(dir, "client.crt"))

	if err := server.CheckSignatureFrom(ca); err != nil {
		t.Errorf("server cert not signed by CA: %v", err)
	}
	if err := client.CheckSignatureFrom(ca); err != nil {
		t.Errorf("client cert not signed by CA: %v", err)
	}
	if client.Subject.CommonName != "ann" {
		t.Errorf("client CN = %q; want ann", client.Subject.CommonName)
	}
	if len(server.IPAddresses) != 1 || len(server.DNSNames) != 1 {
		t.Errorf("server SANs = %v %v", server.DNSNames, server.IPAddresses)
	}
}

func TestRun_ReusesCA(t *testing.T) {
	dir := t.TempDir()
	o := options{dir: dir, hosts: "localhost", client: "ann", ttl: time.Hour}
	if err := run(o); err != nil {
		t.Fatal(err)
	}
	first := readCert(t, filepath.Join(dir, "ca.crt"))

	if err := run(o); err != nil {
		t.Fatal(err)
	}
	second := readCert(t, filepath.Join(dir, "ca.crt"))
	if !first.Equal(second) {
		t.Error("CA was regenerated")
	}
	if err := readCert(t, filepath.Join(dir, "client.crt")).CheckSignatureFrom(first); err != nil {
		t.Errorf("client not signed by reused CA: %v", err)
	}
}
