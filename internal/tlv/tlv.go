// Package tlv decodes definite-length Tag-Length-Value structures as used by
// ASN.1 DER. It is purely structural: payloads are kept as raw bytes and
// interpreted only on demand through the typed accessors in kind.go.
package tlv

import (
	"errors"
	"fmt"
)

// Class is the tag class encoded in the top two bits of the first tag octet.
type Class uint8

const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "universal"
	case ClassApplication:
		return "application"
	case ClassContextSpecific:
		return "context-specific"
	case ClassPrivate:
		return "private"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// maxDepth bounds the nesting of constructed values, so crafted input cannot
// drive the recursion arbitrarily deep.
const maxDepth = 64

var (
	ErrTruncated        = errors.New("unexpected end of data")
	ErrIndefiniteLength = errors.New("indefinite length encoding is not supported")
	ErrReservedLength   = errors.New("reserved length form")
	ErrTooDeep          = errors.New("structure nested too deep")
)

// DecodeError reports a malformed or truncated TLV structure and the offset
// at which decoding failed.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("tlv: offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Node is one decoded TLV element. A node is either constructed and owns
// child nodes, or primitive and owns a raw payload, never both. Nodes are
// values and are not modified after Decode returns them.
type Node struct {
	class       Class
	number      int
	constructed bool
	payload     []byte
	children    []Node
}

// Class returns the tag class of the node.
func (n Node) Class() Class { return n.class }

// TagNumber returns the tag number. It is only meaningful for the
// universal class.
func (n Node) TagNumber() int { return n.number }

// Constructed reports whether the node owns child nodes.
func (n Node) Constructed() bool { return n.constructed }

// Payload returns the raw content bytes of a primitive node. It is nil for
// constructed nodes.
func (n Node) Payload() []byte { return n.payload }

// Decode parses the first TLV element of b into a Node tree. Bytes following
// the first element are ignored, matching the usual behavior of ASN.1
// unmarshalers. The input slice is referenced, not copied.
func Decode(b []byte) (Node, error) {
	n, _, err := decodeNode(b, 0, 0)
	return n, err
}

// decodeNode reads one element from the start of b. base is the offset of b
// within the original buffer and is used for error reporting only.
// It returns the node and the number of bytes it consumed.
func decodeNode(b []byte, base, depth int) (Node, int, error) {
	if depth > maxDepth {
		return Node{}, 0, &DecodeError{Offset: base, Err: ErrTooDeep}
	}
	if len(b) == 0 {
		return Node{}, 0, &DecodeError{Offset: base, Err: ErrTruncated}
	}

	first := b[0]
	off := 1
	node := Node{
		class:       Class(first >> 6),
		number:      int(first & 0x1f),
		constructed: first&0x20 != 0,
	}

	// Tag numbers >= 31 use the high-tag-number form: base-128 octets with a
	// continuation bit.
	if node.number == 0x1f {
		number := 0
		for i := 0; ; i++ {
			if off >= len(b) {
				return Node{}, 0, &DecodeError{Offset: base + off, Err: ErrTruncated}
			}
			if i == 4 {
				return Node{}, 0, &DecodeError{Offset: base + off, Err: errors.New("tag number does not fit 28 bits")}
			}
			c := b[off]
			off++
			number = number<<7 | int(c&0x7f)
			if c&0x80 == 0 {
				break
			}
		}
		node.number = number
	}

	length, used, err := decodeLength(b[off:], base+off)
	if err != nil {
		return Node{}, 0, err
	}
	off += used
	if length > len(b)-off {
		return Node{}, 0, &DecodeError{
			Offset: base + off,
			Err:    fmt.Errorf("declared length %d exceeds %d remaining bytes: %w", length, len(b)-off, ErrTruncated),
		}
	}

	content := b[off : off+length]
	if node.constructed {
		node.children, err = decodeSiblings(content, base+off, depth+1)
		if err != nil {
			return Node{}, 0, err
		}
	} else {
		node.payload = content
	}
	return node, off + length, nil
}

// decodeSiblings consumes b completely as a sequence of adjacent elements.
func decodeSiblings(b []byte, base, depth int) ([]Node, error) {
	var nodes []Node
	for off := 0; off < len(b); {
		n, used, err := decodeNode(b[off:], base+off, depth)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		off += used
	}
	return nodes, nil
}

// decodeLength reads the length octets at the start of b. Short form is the
// literal count, long form carries the count of following big-endian length
// octets in its low seven bits. 0x80 marks the indefinite form and 0xff is
// reserved, both are rejected.
func decodeLength(b []byte, base int) (length, used int, err error) {
	if len(b) == 0 {
		return 0, 0, &DecodeError{Offset: base, Err: ErrTruncated}
	}
	first := b[0]
	if first < 0x80 {
		return int(first), 1, nil
	}
	if first == 0x80 {
		return 0, 0, &DecodeError{Offset: base, Err: ErrIndefiniteLength}
	}
	if first == 0xff {
		return 0, 0, &DecodeError{Offset: base, Err: ErrReservedLength}
	}

	n := int(first & 0x7f)
	if n > len(b)-1 {
		return 0, 0, &DecodeError{Offset: base + 1, Err: ErrTruncated}
	}
	for i := 1; i <= n; i++ {
		length = length<<8 | int(b[i])
		// No valid definite length can exceed the buffer itself; bailing out
		// here also keeps the shift from overflowing on absurd length octets.
		if length > len(b) {
			return 0, 0, &DecodeError{
				Offset: base + i,
				Err:    fmt.Errorf("declared length %d exceeds buffer: %w", length, ErrTruncated),
			}
		}
	}
	return length, 1 + n, nil
}
