package tlv_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/certhound/certhound/internal/tlv"
	"github.com/stretchr/testify/require"
)

func Test_Decode_Primitive(t *testing.T) {
	t.Parallel()

	// INTEGER 3
	n, err := tlv.Decode([]byte{0x02, 0x01, 0x03})
	require.NoError(t, err)
	require.Equal(t, tlv.ClassUniversal, n.Class())
	require.Equal(t, 2, n.TagNumber())
	require.False(t, n.Constructed())
	require.Equal(t, []byte{0x03}, n.Payload())
}

func Test_Decode_Constructed(t *testing.T) {
	t.Parallel()

	// SEQUENCE { INTEGER 3, OCTET STRING "hi" }
	b := []byte{
		0x30, 0x07,
		0x02, 0x01, 0x03,
		0x04, 0x02, 'h', 'i',
	}
	n, err := tlv.Decode(b)
	require.NoError(t, err)
	require.True(t, n.Constructed())
	require.Nil(t, n.Payload())

	kids, err := n.Children()
	require.NoError(t, err)
	require.Len(t, kids, 2)
	require.Equal(t, 2, kids[0].TagNumber())
	require.Equal(t, []byte("hi"), kids[1].Payload())
}

func Test_Decode_LongFormLength(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 200)
	b := append([]byte{0x04, 0x81, 200}, payload...)
	n, err := tlv.Decode(b)
	require.NoError(t, err)
	require.Len(t, n.Payload(), 200)
}

func Test_Decode_HighTagNumber(t *testing.T) {
	t.Parallel()

	// context-specific tag 128, primitive, empty
	n, err := tlv.Decode([]byte{0x9f, 0x81, 0x00, 0x00})
	require.NoError(t, err)
	require.Equal(t, tlv.ClassContextSpecific, n.Class())
	require.Equal(t, 128, n.TagNumber())
}

func Test_Decode_IgnoresTrailingBytes(t *testing.T) {
	t.Parallel()

	n, err := tlv.Decode([]byte{0x02, 0x01, 0x00, 0xde, 0xad})
	require.NoError(t, err)
	require.Equal(t, tlv.KindInteger, n.Kind())
}

func Test_Decode_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scenario string
		input    []byte
		then     error
	}{
		{"empty", nil, tlv.ErrTruncated},
		{"tag only", []byte{0x30}, tlv.ErrTruncated},
		{"body shorter than declared", []byte{0x30, 0x02, 0xff}, tlv.ErrTruncated},
		{"truncated long form length", []byte{0x30, 0x84, 0x01}, tlv.ErrTruncated},
		{"length exceeds buffer", []byte{0x30, 0x84, 0x7f, 0xff, 0xff, 0xff, 0x00}, tlv.ErrTruncated},
		{"indefinite length", []byte{0x30, 0x80, 0x02, 0x01, 0x00, 0x00, 0x00}, tlv.ErrIndefiniteLength},
		{"reserved length form", []byte{0x30, 0xff, 0x00}, tlv.ErrReservedLength},
		{"truncated high tag number", []byte{0x9f, 0x81}, tlv.ErrTruncated},
		{"child overruns parent", []byte{0x30, 0x03, 0x02, 0x04, 0x00}, tlv.ErrTruncated},
	}

	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			t.Parallel()
			_, err := tlv.Decode(tt.input)
			require.Error(t, err)
			require.ErrorIs(t, err, tt.then)

			var decodeErr *tlv.DecodeError
			require.ErrorAs(t, err, &decodeErr)
		})
	}
}

func Test_Decode_DepthBound(t *testing.T) {
	t.Parallel()

	// 100 nested sequences, deeper than the decoder allows
	b := []byte{0x30, 0x00}
	for range 100 {
		l := len(b)
		b = append([]byte{0x30, 0x82, byte(l >> 8), byte(l)}, b...)
	}
	_, err := tlv.Decode(b)
	require.Error(t, err)
	require.ErrorIs(t, err, tlv.ErrTooDeep)
}

func Test_Decode_RSAPrivateKey(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der := x509.MarshalPKCS1PrivateKey(key)

	n, err := tlv.Decode(der)
	require.NoError(t, err)
	require.Equal(t, tlv.KindSequence, n.Kind())

	kids, err := n.Children()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(kids), 3)

	version, err := kids[0].AsBigInt()
	require.NoError(t, err)
	require.Zero(t, version.Sign())

	modulus, err := kids[1].AsBigInt()
	require.NoError(t, err)
	require.Zero(t, modulus.Cmp(key.N))
}
