package fingerprint

import (
	"crypto/sha256"
	"strconv"
	"strings"

	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// HashAlgorithm names the 256-bit digest applied to the canonical bytes.
type HashAlgorithm string

const (
	SHA256   HashAlgorithm = "sha256"
	SHA3_256 HashAlgorithm = "sha3-256"
	BLAKE3   HashAlgorithm = "blake3"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = SHA256

// DigestSize is the length in bytes of every supported digest.
const DigestSize = 32

// ParseHashAlgorithm maps a configuration identifier to a HashAlgorithm.
func ParseHashAlgorithm(s string) (HashAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sha256", "sha-256", "sha2-256":
		return SHA256, nil
	case "sha3-256", "sha3_256":
		return SHA3_256, nil
	case "blake3", "blake3-256":
		return BLAKE3, nil
	default:
		return "", invalidInput("algorithm", "unsupported hash algorithm "+strconv.Quote(s))
	}
}

func (a HashAlgorithm) String() string { return string(a) }

// Sum returns the digest of data.
func (a HashAlgorithm) Sum(data []byte) ([]byte, error) {
	switch a {
	case SHA256:
		s := sha256.Sum256(data)
		return s[:], nil
	case SHA3_256:
		s := sha3.Sum256(data)
		return s[:], nil
	case BLAKE3:
		s := blake3.Sum256(data)
		return s[:], nil
	default:
		return nil, invalidInput("algorithm", "unsupported hash algorithm "+strconv.Quote(string(a)))
	}
}

// MultihashCode is the multicodec code of the algorithm, used for CIDs.
func (a HashAlgorithm) MultihashCode() (uint64, error) {
	switch a {
	case SHA256:
		return multihash.SHA2_256, nil
	case SHA3_256:
		return multihash.SHA3_256, nil
	case BLAKE3:
		return multihash.BLAKE3, nil
	default:
		return 0, invalidInput("algorithm", "unsupported hash algorithm "+strconv.Quote(string(a)))
	}
}
