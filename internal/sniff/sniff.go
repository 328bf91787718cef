// Package sniff classifies opaque blobs of cryptographic material by
// structure alone: no passphrase, no semantic parsing, no re-encoding.
package sniff

import (
	"bytes"
	"math/big"

	"github.com/certhound/certhound/internal/tlv"
)

// Format is the classification result for a blob of key material.
type Format string

const (
	FormatPEM     Format = "PEM"
	FormatDER     Format = "DER"
	FormatPKCS12  Format = "PKCS12"
	FormatUnknown Format = "UNKNOWN"
)

// pemMarker is the mandatory ASCII banner opening every PEM block.
var pemMarker = []byte("-----BEGIN")

// pfxVersion is the version INTEGER of a PKCS#12 PFX structure.
var pfxVersion = big.NewInt(3)

// Classify maps b to one of PEM, DER, PKCS12 or UNKNOWN. It is a pure
// function, total over all byte sequences: truncated, adversarial and empty
// inputs come back as UNKNOWN, never as a panic or an error.
//
// PEM is recognized by its banner before any binary decoding is attempted.
// A blob that decodes as definite-length TLV is PKCS12 when it carries the
// PFX structural signature, and DER otherwise. The DER fallback deliberately
// assumes raw key or certificate material, which is the common case for
// structurally valid input, at the price of false positives on unrelated
// ASN.1 payloads.
func Classify(b []byte) Format {
	if len(b) == 0 {
		return FormatUnknown
	}
	b = trimLineEnd(b)
	if bytes.HasPrefix(b, pemMarker) {
		return FormatPEM
	}
	root, err := tlv.Decode(b)
	if err != nil {
		return FormatUnknown
	}
	if sniffPKCS12(root) {
		return FormatPKCS12
	}
	return FormatDER
}

// trimLineEnd drops one trailing line terminator if present.
func trimLineEnd(b []byte) []byte {
	switch {
	case bytes.HasSuffix(b, []byte("\r\n")):
		return b[:len(b)-2]
	case len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r'):
		return b[:len(b)-1]
	}
	return b
}

// sniffPKCS12 tests the PFX structural signature:
//
//	SEQUENCE {
//	    version    INTEGER (3),
//	    authSafe   SEQUENCE { contentType OBJECT IDENTIFIER, ... },
//	    ...
//	}
//
// where contentType names the PKCS#7 data or signedData content type. The
// signature sits outside the encrypted payload, so no passphrase is needed.
func sniffPKCS12(root tlv.Node) bool {
	if root.Kind() != tlv.KindSequence {
		return false
	}
	kids, err := root.Children()
	if err != nil || len(kids) < 2 {
		return false
	}

	version, err := kids[0].AsBigInt()
	if err != nil || version.Cmp(pfxVersion) != 0 {
		return false
	}

	if kids[1].Kind() != tlv.KindSequence {
		return false
	}
	content, err := kids[1].Children()
	if err != nil || len(content) == 0 {
		return false
	}

	name, err := content[0].AsIdentifier()
	if err != nil {
		return false
	}
	return name == "pkcs7-data" || name == "pkcs7-signedData"
}
