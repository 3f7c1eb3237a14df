package certgen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func parseCert(t *testing.T, certPEM []byte) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("not a certificate PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse cert: %v", err)
	}
	return cert
}

func TestNewAuthority(t *testing.T) {
	ca, err := NewAuthority("taskdock CA", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewAuthority: %v", err)
	}
	if !ca.Cert.IsCA || !ca.Cert.BasicConstraintsValid {
		t.Error("authority certificate must be a CA")
	}
	if ca.Cert.KeyUsage&x509.KeyUsageCertSign == 0 {
		t.Errorf("KeyUsage = %v; want CertSign", ca.Cert.KeyUsage)
	}
	if ca.Cert.Subject.CommonName != "taskdock CA" {
		t.Errorf("CommonName = %q", ca.Cert.Subject.CommonName)
	}
}

func TestIssue_Client(t *testing.T) {
	ca, err := NewAuthority("CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	pair, err := ca.Issue("alice", ClientAuth, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cert := parseCert(t, pair.CertPEM)
	if cert.Subject.CommonName != "alice" {
		t.Errorf("CommonName = %q; want alice", cert.Subject.CommonName)
	}
	if !reflect.DeepEqual(cert.ExtKeyUsage, []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}) {
		t.Errorf("ExtKeyUsage = %v", cert.ExtKeyUsage)
	}
	if err := cert.CheckSignatureFrom(ca.Cert); err != nil {
		t.Errorf("certificate not signed by CA: %v", err)
	}
	if _, err := tls.X509KeyPair(pair.CertPEM, pair.KeyPEM); err != nil {
		t.Errorf("cert and key do not match: %v", err)
	}
}

func TestIssue_ServerHosts(t *testing.T) {
	ca, err := NewAuthority("CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	pair, err := ca.Issue("api", ServerAuth, time.Hour, "localhost", "127.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	cert := parseCert(t, pair.CertPEM)
	if !reflect.DeepEqual(cert.DNSNames, []string{"localhost"}) {
		t.Errorf("DNSNames = %v", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 1 || cert.IPAddresses[0].String() != "127.0.0.1" {
		t.Errorf("IPAddresses = %v", cert.IPAddresses)
	}

	pair, err = ca.Issue("api.example.com", ServerAuth, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if got := parseCert(t, pair.CertPEM).DNSNames; !reflect.DeepEqual(got, []string{"api.example.com"}) {
		t.Errorf("DNSNames = %v; want common name", got)
	}
}

func TestWriteAndLoadAuthority(t *testing.T) {
	dir := t.TempDir()
	ca, err := NewAuthority("CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	pair, err := ca.Pair()
	if err != nil {
		t.Fatal(err)
	}
	certPath := filepath.Join(dir, "nested", "ca.crt")
	keyPath := filepath.Join(dir, "nested", "ca.key")
	if err := pair.Write(certPath, keyPath); err != nil {
		t.Fatalf("Write: %v", err)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("key perm = %v; want 0600", info.Mode().Perm())
	}

	loaded, err := LoadAuthority(certPath, keyPath)
	if err != nil {
		t.Fatalf("LoadAuthority: %v", err)
	}
	if !loaded.Cert.Equal(ca.Cert) {
		t.Error("loaded certificate differs")
	}
	issued, err := loaded.Issue("bob", ClientAuth, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := parseCert(t, issued.CertPEM).CheckSignatureFrom(ca.Cert); err != nil {
		t.Errorf("loaded authority cannot sign: %v", err)
	}
}

func TestLoadAuthority_RSA(t *testing.T) {
	dir := t.TempDir()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "RSA CA"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	pair := Pair{
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
	}
	certPath, keyPath := filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key")
	if err := pair.Write(certPath, keyPath); err != nil {
		t.Fatal(err)
	}

	ca, err := LoadAuthority(certPath, keyPath)
	if err != nil {
		t.Fatalf("LoadAuthority: %v", err)
	}
	if _, ok := ca.Key.(*rsa.PrivateKey); !ok {
		t.Errorf("key type = %T; want *rsa.PrivateKey", ca.Key)
	}
}

func TestLoadAuthority_Errors(t *testing.T) {
	dir := t.TempDir()
	ca, _ := NewAuthority("CA", time.Hour)
	caPair, _ := ca.Pair()
	leaf, _ := ca.Issue("leaf", ClientAuth, time.Hour)

	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0600); err != nil {
			t.Fatal(err)
		}
		return p
	}
	caCert := write("ca.crt", caPair.CertPEM)
	caKey := write("ca.key", caPair.KeyPEM)

	tests := []struct {
		name     string
		cert     string
		key      string
		contains string
	}{
		{"missing cert", "/no/such/file.pem", caKey, "read ca cert"},
		{"missing key", caCert, "/no/such/key.pem", "read ca key"},
		{"bad cert pem", write("bad.crt", []byte("junk")), caKey, "invalid CA cert PEM"},
		{"not a CA", write("leaf.crt", leaf.CertPEM), caKey, "not a CA"},
		{"bad key pem", caCert, write("bad.key", []byte("junk")), "invalid CA key PEM"},
		{"unsupported key", caCert, write("odd.key", pem.EncodeToMemory(&pem.Block{Type: "DSA PRIVATE KEY", Bytes: []byte{1}})), "unsupported key type"},
		{"corrupt key", caCert, write("corrupt.key", pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: []byte{1}})), "parse ca key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAuthority(tt.cert, tt.key)
			if err == nil || !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("got %v; want error containing %q", err, tt.contains)
			}
		})
	}
}
