package identity

import (
	"encoding/base32"
	"encoding/binary"
	"hash/crc32"
	"strings"
)

const (
	// maxPrincipalLength is the maximum canonical byte length of a principal.
	maxPrincipalLength = 29

	// anonymousTag is the single canonical byte of the anonymous principal.
	anonymousTag = 0x04

	// textGroupSize is the dash-separated group width of the textual form.
	textGroupSize = 5
)

// principalEncoding is the unpadded base32 alphabet of the textual form.
var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Principal is a value object representing an opaque caller identity.
// Principals are compared by canonical byte form.
//
// The canonical serialization this core commits to:
//   - canonical form: the raw identity bytes, 1 to 29 bytes
//   - textual form: base32 (RFC 4648 alphabet, no padding, lowercase) of
//     CRC32-IEEE(bytes) big-endian followed by the bytes, split into
//     dash-separated groups of five characters
//
// The anonymous principal is the single byte 0x04.
type Principal struct {
	blob string
}

// PrincipalFromBytes creates a Principal from its canonical byte form.
// Returns an error if the slice is empty or longer than 29 bytes.
func PrincipalFromBytes(b []byte) (Principal, error) {
	if len(b) == 0 {
		return Principal{}, ErrPrincipalEmpty
	}
	if len(b) > maxPrincipalLength {
		return Principal{}, ErrPrincipalTooLong
	}
	return Principal{blob: string(b)}, nil
}

// MustPrincipalFromBytes creates a Principal from canonical bytes and panics
// on invalid input. Only use in tests or with known-valid input.
func MustPrincipalFromBytes(b []byte) Principal {
	p, err := PrincipalFromBytes(b)
	if err != nil {
		panic(err) // Intentional panic for Must* function
	}
	return p
}

// ParsePrincipal parses the dash-separated textual form into a Principal.
// Parsing verifies the embedded CRC32 checksum.
func ParsePrincipal(s string) (Principal, error) {
	compact := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "")
	raw, err := principalEncoding.DecodeString(compact)
	if err != nil {
		return Principal{}, ErrPrincipalText
	}
	if len(raw) < crc32.Size+1 {
		return Principal{}, ErrPrincipalText
	}

	payload := raw[crc32.Size:]
	want := binary.BigEndian.Uint32(raw[:crc32.Size])
	if crc32.ChecksumIEEE(payload) != want {
		return Principal{}, ErrPrincipalChecksum
	}

	return PrincipalFromBytes(payload)
}

// MustParsePrincipal parses a textual principal and panics on error.
// Only use in tests or when the input is guaranteed to be valid.
func MustParsePrincipal(s string) Principal {
	p, err := ParsePrincipal(s)
	if err != nil {
		panic(err) // Intentional panic for Must* function
	}
	return p
}

// AnonymousPrincipal returns the well-known anonymous principal.
func AnonymousPrincipal() Principal {
	return Principal{blob: string([]byte{anonymousTag})}
}

// Bytes returns a copy of the canonical byte form.
func (p Principal) Bytes() []byte {
	return []byte(p.blob)
}

// String returns the checksummed textual form.
func (p Principal) String() string {
	if p.IsZero() {
		return ""
	}

	payload := []byte(p.blob)
	raw := make([]byte, crc32.Size+len(payload))
	binary.BigEndian.PutUint32(raw, crc32.ChecksumIEEE(payload))
	copy(raw[crc32.Size:], payload)

	encoded := strings.ToLower(principalEncoding.EncodeToString(raw))

	var b strings.Builder
	for i, r := range encoded {
		if i > 0 && i%textGroupSize == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsAnonymous returns true if this is the anonymous principal.
func (p Principal) IsAnonymous() bool {
	return len(p.blob) == 1 && p.blob[0] == anonymousTag
}

// IsZero returns true if this is the zero value.
func (p Principal) IsZero() bool {
	return p.blob == ""
}

// Equal returns true if both principals have the same canonical bytes.
func (p Principal) Equal(other Principal) bool {
	return p.blob == other.blob
}
