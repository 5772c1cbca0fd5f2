// Package hashes is the pluggable cryptographic digest registry. Every
// digest is computed from scratch per call — no streaming state is
// retained, which keeps the chain kernel's hot loop free of per-worker
// hasher lifecycle management.
package hashes

import (
	"crypto/md5"
	"crypto/sha1"

	sha256simd "github.com/minio/sha256-simd"
	"github.com/rawblock/rainbow-engine/internal/errs"
	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/sha3"
)

// Kind enumerates the supported hash kinds.
type Kind uint8

const (
	MD4 Kind = iota
	MD5
	NTLM
	SHA1
	SHA2_256
	SHA3_256

	numKinds
)

// String names a Kind for logging and for the table file header.
func (k Kind) String() string {
	switch k {
	case MD4:
		return "MD4"
	case MD5:
		return "MD5"
	case NTLM:
		return "NTLM"
	case SHA1:
		return "SHA1"
	case SHA2_256:
		return "SHA2_256"
	case SHA3_256:
		return "SHA3_256"
	default:
		return "unknown"
	}
}

// ParseKind maps the on-disk/CLI byte value back to a Kind, rejecting
// anything the registry doesn't know — readers MUST reject unknown hash
// kinds per the table file format's external interface.
func ParseKind(b uint8) (Kind, error) {
	if b >= uint8(numKinds) {
		return 0, errs.New(errs.InvalidParameter, "hashes: unknown hash kind")
	}
	return Kind(b), nil
}

// Size returns the digest width in bytes for the given kind.
func (k Kind) Size() int {
	switch k {
	case MD4, MD5, NTLM:
		return 16
	case SHA1:
		return 20
	case SHA2_256, SHA3_256:
		return 32
	default:
		return 0
	}
}

// Digest computes the digest of plaintext under the given hash kind.
func (k Kind) Digest(plaintext []byte) []byte {
	switch k {
	case MD4:
		h := md4.New()
		h.Write(plaintext)
		return h.Sum(nil)
	case MD5:
		sum := md5.Sum(plaintext)
		return sum[:]
	case NTLM:
		return ntlmHash(plaintext)
	case SHA1:
		sum := sha1.Sum(plaintext)
		return sum[:]
	case SHA2_256:
		sum := sha256simd.Sum256(plaintext)
		return sum[:]
	case SHA3_256:
		sum := sha3.Sum256(plaintext)
		return sum[:]
	default:
		panic("hashes: unknown kind")
	}
}

// ntlmHash is MD4 of the UTF-16LE encoding of plaintext. Non-ASCII bytes
// are upcast as ISO-8859-1 code points, the conventional mapping when a
// plaintext byte has no defined UTF-16 code unit of its own.
func ntlmHash(plaintext []byte) []byte {
	utf16le := make([]byte, 0, len(plaintext)*2)
	for _, b := range plaintext {
		utf16le = append(utf16le, b, 0x00)
	}
	h := md4.New()
	h.Write(utf16le)
	return h.Sum(nil)
}

// First8LE interprets the first 8 bytes of a digest as a little-endian
// uint64, truncating wider digests as the reduction family requires.
func First8LE(digest []byte) uint64 {
	var v uint64
	n := len(digest)
	if n > 8 {
		n = 8
	}
	for i := 0; i < n; i++ {
		v |= uint64(digest[i]) << (8 * uint(i))
	}
	return v
}
