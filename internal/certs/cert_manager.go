package certs

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

// ErrExpired is returned when the configured certificate is no longer valid.
var ErrExpired = errors.New("certificate expired")

// CertManager manages the server's TLS certificate and key files.
type CertManager struct {
	certFile string
	keyFile  string
	now      func() time.Time
}

// NewCertManager creates a new CertManager for the given PEM files.
func NewCertManager(certFile, keyFile string) *CertManager {
	return &CertManager{certFile: certFile, keyFile: keyFile, now: time.Now}
}

// LoadCertificate loads the key pair and parses its leaf certificate.
func (cm *CertManager) LoadCertificate() (tls.Certificate, *x509.Certificate, error) {
	pair, err := tls.LoadX509KeyPair(cm.certFile, cm.keyFile)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("load key pair: %w", err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("parse certificate: %w", err)
	}
	pair.Leaf = leaf
	return pair, leaf, nil
}

// IsExpired checks if a certificate is expired or not yet valid.
func (cm *CertManager) IsExpired(cert *x509.Certificate) bool {
	now := cm.now()
	return now.After(cert.NotAfter) || now.Before(cert.NotBefore)
}

// ExpiresWithin reports whether cert stops being valid within d.
func (cm *CertManager) ExpiresWithin(cert *x509.Certificate, d time.Duration) bool {
	return cm.now().Add(d).After(cert.NotAfter)
}

// TLSConfig loads the certificate and refuses one that is already expired.
func (cm *CertManager) TLSConfig() (*tls.Config, *x509.Certificate, error) {
	pair, leaf, err := cm.LoadCertificate()
	if err != nil {
		return nil, nil, err
	}
	if cm.IsExpired(leaf) {
		return nil, nil, fmt.Errorf("%s valid %s to %s: %w", cm.certFile,
			leaf.NotBefore.Format(time.RFC3339), leaf.NotAfter.Format(time.RFC3339), ErrExpired)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{pair},
		MinVersion:   tls.VersionTLS12,
	}, leaf, nil
}
