package certs

import (
	"crypto/x509"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileManager_GetOrCreateCertificate(t *testing.T) {
	tests := []struct {
		setup         func(t *testing.T, m *FileManager)
		name          string
		errorContains string
		wantFresh     bool
		wantErr       bool
	}{
		{
			name:      "creates certificate when none exists",
			wantFresh: true,
		},
		{
			name: "reuses valid certificate",
			setup: func(t *testing.T, m *FileManager) {
				t.Helper()
				_, err := m.GetOrCreateCertificate()
				require.NoError(t, err)
			},
		},
		{
			name: "regenerates unreadable files",
			setup: func(t *testing.T, m *FileManager) {
				t.Helper()
				require.NoError(t, os.MkdirAll(m.certDir, 0o700))
				require.NoError(t, os.WriteFile(m.certFile, []byte("invalid certificate data"), 0o600))
				require.NoError(t, os.WriteFile(m.keyFile, []byte("invalid key data"), 0o600))
			},
			wantFresh: true,
		},
		{
			name: "regenerates expired certificate",
			setup: func(t *testing.T, m *FileManager) {
				t.Helper()
				m.now = func() time.Time { return time.Now().Add(-2 * validity) }
				_, err := m.GetOrCreateCertificate()
				require.NoError(t, err)
				m.now = time.Now
			},
			wantFresh: true,
		},
		{
			name: "fails when directory is a file",
			setup: func(t *testing.T, m *FileManager) {
				t.Helper()
				require.NoError(t, os.MkdirAll(filepath.Dir(m.certDir), 0o700))
				require.NoError(t, os.WriteFile(m.certDir, []byte("not a directory"), 0o600))
			},
			wantErr:       true,
			errorContains: "failed to check",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFileManager(filepath.Join(t.TempDir(), "certs"))
			var before time.Time
			if tt.setup != nil {
				tt.setup(t, m)
				if info, err := os.Stat(m.certFile); err == nil {
					before = info.ModTime()
				}
			}

			cert, err := m.GetOrCreateCertificate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			require.Len(t, cert.Certificate, 1)

			parsed, err := x509.ParseCertificate(cert.Certificate[0])
			require.NoError(t, err)
			assert.True(t, parsed.NotAfter.After(time.Now()), "certificate should be valid now")
			require.NoError(t, parsed.VerifyHostname("localhost"))

			if !tt.wantFresh {
				info, statErr := os.Stat(m.certFile)
				require.NoError(t, statErr)
				assert.Equal(t, before, info.ModTime(), "certificate should not be rewritten")
			}
		})
	}
}

func TestFileManager_Hosts(t *testing.T) {
	m := NewFileManager(t.TempDir(), "categorizer.lan", "10.0.0.5", "localhost")
	assert.Equal(t, []string{"localhost", "127.0.0.1", "::1", "categorizer.lan", "10.0.0.5"}, m.hosts)

	cert, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	assert.Contains(t, parsed.DNSNames, "categorizer.lan")
	assert.True(t, containsIP(parsed.IPAddresses, net.ParseIP("10.0.0.5")))
	assert.True(t, containsIP(parsed.IPAddresses, net.IPv6loopback))

	// A manager that needs a host the stored certificate lacks regenerates it.
	wider := NewFileManager(m.certDir, "other.lan")
	cert, err = wider.GetOrCreateCertificate()
	require.NoError(t, err)
	parsed, err = x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	assert.Contains(t, parsed.DNSNames, "other.lan")
}

func TestFileManager_TLSConfig(t *testing.T) {
	m := NewFileManager(t.TempDir())

	cfg, err := m.TLSConfig()
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)

	certFile, keyFile := m.Paths()
	assert.FileExists(t, certFile)
	assert.FileExists(t, keyFile)

	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCertificateExists(t *testing.T) {
	m := NewFileManager(t.TempDir())

	exists, err := m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(m.certFile, []byte("x"), 0o600))
	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists, "key file is still missing")

	require.NoError(t, os.WriteFile(m.keyFile, []byte("x"), 0o600))
	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.True(t, exists)
}

func containsIP(ips []net.IP, want net.IP) bool {
	for _, ip := range ips {
		if ip.Equal(want) {
			return true
		}
	}
	return false
}
