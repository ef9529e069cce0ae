package appconfig

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"github.com/netgfx/slack-jira-automation/common/log"
)

// GetTLSConfig returns the TLS configuration of the http server. It's nil when the
// server must listen in plain text, usually when a proxy terminates TLS in front of it.
func (c Config) GetTLSConfig() (*tls.Config, error) {
	if c.generateTLS {
		log.Infof("GENERATE_SELF_SIGNED_TLS is set to true, generating self-signed certificate")
		cert, err := generateSelfSignedCert()
		if err != nil {
			return nil, err
		}
		return buildTLSConfig(cert, nil), nil
	}

	var certPool *x509.CertPool
	if c.tlsCA != "" {
		certPool = x509.NewCertPool()
		if !certPool.AppendCertsFromPEM([]byte(c.tlsCA)) {
			return nil, fmt.Errorf("failed creating cert pool for TLS_CA")
		}
	}

	if c.tlsCert != "" && c.tlsKey != "" {
		cert, err := tls.X509KeyPair([]byte(c.tlsCert), []byte(c.tlsKey))
		if err != nil {
			return nil, fmt.Errorf("failed loading TLS_CERT and TLS_KEY: %v", err)
		}
		log.Infof("loaded TLS certificate from TLS_CERT and TLS_KEY")
		return buildTLSConfig(cert, certPool), nil
	}
	return nil, nil
}

// generateSelfSignedCert creates a self-signed TLS certificate
func generateSelfSignedCert() (cert tls.Certificate, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return cert, fmt.Errorf("failed to generate private key: %v", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return cert, fmt.Errorf("failed to generate serial number: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   "Slack Jira Relay",
			Organization: []string{"Slack Jira Relay"},
			Country:      []string{"US"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour * 24 * 365), // valid for 1 year
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return cert, fmt.Errorf("failed to create certificate: %v", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  key,
	}, nil
}

// buildTLSConfig constructs a tls.Config from the provided certificate and certificate pool.
func buildTLSConfig(cert tls.Certificate, certPool *x509.CertPool) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      certPool,
		MinVersion:   tls.VersionTLS12,
	}
}
