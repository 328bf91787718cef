package tlv

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Kind is the closed set of node shapes callers dispatch on. Everything the
// format detection does not care about collapses into KindOther.
type Kind int

const (
	KindOther Kind = iota
	KindInteger
	KindOctetString
	KindObjectIdentifier
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindOctetString:
		return "OCTET STRING"
	case KindObjectIdentifier:
		return "OBJECT IDENTIFIER"
	case KindSequence:
		return "SEQUENCE"
	}
	return "OTHER"
}

// Universal tag numbers recognized by Kind.
const (
	tagInteger          = 2
	tagOctetString      = 4
	tagObjectIdentifier = 6
	tagSequence         = 16
)

// KindMismatchError is returned when a typed accessor is called on a node of
// a different kind. It indicates a caller bug: check Kind first.
type KindMismatchError struct {
	Want Kind
	Got  Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("tlv: node is %s, not %s", e.Got, e.Want)
}

// Kind classifies the node by its (class, number, constructed) triple.
// INTEGER, OCTET STRING and OBJECT IDENTIFIER must be primitive, SEQUENCE
// must be constructed; any other universal tag and any non-universal class
// is KindOther.
func (n Node) Kind() Kind {
	if n.class != ClassUniversal {
		return KindOther
	}
	switch {
	case n.number == tagInteger && !n.constructed:
		return KindInteger
	case n.number == tagOctetString && !n.constructed:
		return KindOctetString
	case n.number == tagObjectIdentifier && !n.constructed:
		return KindObjectIdentifier
	case n.number == tagSequence && n.constructed:
		return KindSequence
	}
	return KindOther
}

// AsBigInt interprets the payload as a big-endian two's-complement integer.
func (n Node) AsBigInt() (*big.Int, error) {
	if k := n.Kind(); k != KindInteger {
		return nil, &KindMismatchError{Want: KindInteger, Got: k}
	}
	i := new(big.Int).SetBytes(n.payload)
	if len(n.payload) > 0 && n.payload[0]&0x80 != 0 {
		i.Sub(i, new(big.Int).Lsh(big.NewInt(1), uint(len(n.payload))*8))
	}
	return i, nil
}

// Children returns the ordered child nodes of a SEQUENCE.
func (n Node) Children() ([]Node, error) {
	if k := n.Kind(); k != KindSequence {
		return nil, &KindMismatchError{Want: KindSequence, Got: k}
	}
	return n.children, nil
}

// oidNames covers the PKCS#7 content-type arc, the only identifiers the
// format detection needs by name. Anything else is reported in dotted form.
var oidNames = map[string]string{
	"1.2.840.113549.1.7.1": "pkcs7-data",
	"1.2.840.113549.1.7.2": "pkcs7-signedData",
	"1.2.840.113549.1.7.3": "pkcs7-envelopedData",
	"1.2.840.113549.1.7.4": "pkcs7-signedAndEnvelopedData",
	"1.2.840.113549.1.7.5": "pkcs7-digestData",
	"1.2.840.113549.1.7.6": "pkcs7-encryptedData",
}

// AsIdentifier decodes the payload as an OBJECT IDENTIFIER and returns the
// symbolic name when known, the dotted numeric form otherwise.
func (n Node) AsIdentifier() (string, error) {
	if k := n.Kind(); k != KindObjectIdentifier {
		return "", &KindMismatchError{Want: KindObjectIdentifier, Got: k}
	}
	dotted, err := dottedOID(n.payload)
	if err != nil {
		return "", err
	}
	if name, ok := oidNames[dotted]; ok {
		return name, nil
	}
	return dotted, nil
}

// dottedOID renders base-128 encoded OID content bytes as dotted numbers.
// The first subidentifier packs the two leading arcs.
func dottedOID(b []byte) (string, error) {
	if len(b) == 0 {
		return "", errors.New("tlv: empty object identifier")
	}

	var sb strings.Builder
	arc := 0
	octets := 0
	first := true
	for i, c := range b {
		octets++
		if octets > 4 {
			return "", errors.New("tlv: object identifier arc does not fit 28 bits")
		}
		arc = arc<<7 | int(c&0x7f)
		if c&0x80 != 0 {
			if i == len(b)-1 {
				return "", errors.New("tlv: truncated object identifier")
			}
			continue
		}

		if first {
			hi, lo := arc/40, arc%40
			if arc >= 80 {
				hi, lo = 2, arc-80
			}
			sb.WriteString(strconv.Itoa(hi))
			sb.WriteByte('.')
			sb.WriteString(strconv.Itoa(lo))
			first = false
		} else {
			sb.WriteByte('.')
			sb.WriteString(strconv.Itoa(arc))
		}
		arc = 0
		octets = 0
	}
	return sb.String(), nil
}
