package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// Algorithm selects the digest behind a hash or HMAC.
type Algorithm int

const (
	SHA256 Algorithm = iota
	SHA512
)

func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case SHA512:
		return "sha512"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// HexLength is the length of a hex digest produced by the algorithm.
func (a Algorithm) HexLength() int {
	switch a {
	case SHA512:
		return sha512.Size * 2
	default:
		return sha256.Size * 2
	}
}

func (a Algorithm) newHash() func() hash.Hash {
	if a == SHA512 {
		return sha512.New
	}
	return sha256.New
}

// HMAC keys the digest with key and returns the lowercase hex MAC of message.
// Both inputs are taken as UTF-8 text.
func HMAC(alg Algorithm, message, key string) string {
	mac := hmac.New(alg.newHash(), []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Hash returns the lowercase hex digest of input.
func Hash(alg Algorithm, input string) string {
	return HashBytes(alg, []byte(input))
}

// HashBytes returns the lowercase hex digest of raw bytes.
func HashBytes(alg Algorithm, input []byte) string {
	h := alg.newHash()()
	h.Write(input)
	return hex.EncodeToString(h.Sum(nil))
}

// HexDecode turns a hex string back into the bytes it encodes.
func HexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: hex string has odd length %d", ErrInvalidInput, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return b, nil
}

// CommitmentHash is the SHA-256 of the server seed that the operator
// publishes before the round.
func CommitmentHash(serverSeed string) string {
	return Hash(SHA256, serverSeed)
}

// Message joins the client seed, nonce and any extra segments with ':'.
func Message(clientSeed string, nonce Nonce, extra ...string) string {
	parts := make([]string, 0, 2+len(extra))
	parts = append(parts, clientSeed, string(nonce))
	parts = append(parts, extra...)
	return strings.Join(parts, ":")
}

// KeyedHash derives the round hash HMAC(client:nonce[:extra], server).
func KeyedHash(alg Algorithm, seeds Seeds, nonce Nonce, extra ...string) (string, error) {
	if err := seeds.Validate(); err != nil {
		return "", err
	}
	return HMAC(alg, Message(seeds.Client, nonce, extra...), seeds.Server), nil
}

// ValidateHashLength checks that hash is exactly one digest of alg.
func ValidateHashLength(alg Algorithm, hash string) error {
	if want := alg.HexLength(); len(hash) != want {
		return fmt.Errorf("%w: %s hash must be %d hex chars, got %d", ErrInvalidHashLength, alg, want, len(hash))
	}
	return nil
}
