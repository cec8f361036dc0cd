package fingerprint

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// DefaultPrefix marks the hex digest, as expected by attestation registries.
const DefaultPrefix = "0x"

// Fingerprint is the prefixed lowercase hex digest of a canonical record.
type Fingerprint string

func (f Fingerprint) String() string { return string(f) }

// Hex returns the digest without the prefix.
func (f Fingerprint) Hex(prefix string) string {
	return strings.TrimPrefix(string(f), prefix)
}

// ParseFingerprint checks that s is prefix followed by 64 lowercase hex
// characters. Uppercase hex is rejected rather than normalized, since the
// fingerprint is compared byte for byte.
func ParseFingerprint(s, prefix string) (Fingerprint, error) {
	if !strings.HasPrefix(s, prefix) {
		return "", invalidInput("fingerprint", "missing prefix "+strconv.Quote(prefix))
	}
	digest := s[len(prefix):]
	if len(digest) != 2*DigestSize {
		return "", invalidInput("fingerprint", "expected "+strconv.Itoa(2*DigestSize)+" hex characters")
	}
	for i := 0; i < len(digest); i++ {
		c := digest[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return "", invalidInput("fingerprint", "digest must be lowercase hex")
		}
	}
	return Fingerprint(s), nil
}

// Generator serializes canonical records and hashes them.
type Generator struct {
	algorithm HashAlgorithm
	prefix    string
}

// NewGenerator validates the algorithm. An empty algorithm selects the
// default; the prefix is used verbatim (it may be empty).
func NewGenerator(algorithm HashAlgorithm, prefix string) (*Generator, error) {
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	if _, err := algorithm.MultihashCode(); err != nil {
		return nil, err
	}
	return &Generator{algorithm: algorithm, prefix: prefix}, nil
}

func (g *Generator) Algorithm() HashAlgorithm { return g.algorithm }
func (g *Generator) Prefix() string           { return g.prefix }

// Generate returns the fingerprint of the record.
func (g *Generator) Generate(r CanonicalRecord) (Fingerprint, error) {
	payload, err := Serialize(r)
	if err != nil {
		return "", err
	}
	digest, err := g.algorithm.Sum(payload)
	if err != nil {
		return "", err
	}
	return g.render(digest), nil
}

// Generate fingerprints r with the default algorithm and prefix.
func Generate(r CanonicalRecord) (Fingerprint, error) {
	g := &Generator{algorithm: DefaultAlgorithm, prefix: DefaultPrefix}
	return g.Generate(r)
}

func (g *Generator) render(digest []byte) Fingerprint {
	return Fingerprint(g.prefix + hex.EncodeToString(digest))
}

// CID wraps a payload digest produced by the generator's algorithm into a
// CIDv1 (raw codec) and returns its default base32 string form.
func (g *Generator) CID(digest []byte) (string, error) {
	code, err := g.algorithm.MultihashCode()
	if err != nil {
		return "", err
	}
	mh, err := multihash.Encode(digest, code)
	if err != nil {
		return "", wrapInvalidInput("digest", "cannot encode multihash", err)
	}
	return cid.NewCidV1(cid.Raw, mh).String(), nil
}
