package chassis

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"time"
)

// TLS modes accepted in Config.TLSMode.
const (
	TLSOff   = "off"
	TLSDev   = "dev"
	TLSFiles = "files"
)

// GenerateSelfSignedCert generates an ECDSA P-256 self-signed cert for localhost.
// Development only.
func GenerateSelfSignedCert() (tls.Certificate, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate serial: %w", err)
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"coo-registry dev"},
			CommonName:   "localhost",
		},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(30 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("create certificate: %w", err)
	}
	privBytes, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("marshal private key: %w", err)
	}

	return tls.X509KeyPair(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}),
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privBytes}),
	)
}

// TLSConfig builds the listener TLS config for mode. It returns nil for TLSOff.
func TLSConfig(mode, certFile, keyFile string) (*tls.Config, error) {
	var cert tls.Certificate
	var err error
	switch mode {
	case "", TLSOff:
		return nil, nil
	case TLSDev:
		cert, err = GenerateSelfSignedCert()
	case TLSFiles:
		if certFile == "" || keyFile == "" {
			return nil, fmt.Errorf("tls mode %q needs cert_file and key_file", mode)
		}
		cert, err = tls.LoadX509KeyPair(certFile, keyFile)
	default:
		return nil, fmt.Errorf("unknown tls mode %q (off, dev, files)", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("tls %s: %w", mode, err)
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS13,
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"h2", "http/1.1"},
	}, nil
}
