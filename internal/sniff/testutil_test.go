package sniff_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// genSelfSignedCert generates a self-signed certificate for testing
func genSelfSignedCert(t *testing.T) (der []byte, cert *x509.Certificate, key *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	templ := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: "Test Cert"},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(2 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	der, err = x509.CreateCertificate(rand.Reader, templ, templ, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err = x509.ParseCertificate(der)
	require.NoError(t, err)
	return der, cert, key
}

// pfxShaped builds the smallest byte sequence carrying the PKCS#12
// structural signature: SEQUENCE { INTEGER version, SEQUENCE { OID } }.
func pfxShaped(version byte, oid []byte) []byte {
	inner := append([]byte{0x30, byte(len(oid))}, oid...)
	body := append([]byte{0x02, 0x01, version}, inner...)
	return append([]byte{0x30, byte(len(body))}, body...)
}

var (
	oidPKCS7Data       = []byte{0x06, 0x09, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x07, 0x01}
	oidPKCS7SignedData = []byte{0x06, 0x09, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x07, 0x02}
	oidCommonName      = []byte{0x06, 0x03, 0x55, 0x04, 0x03}
)
