package store

import (
	"errors"

	"github.com/harrylevesque/rentnest/internal/crypto"
)

// sealedTag prefixes every sealed value. Phone numbers never start with it,
// so untagged values are plaintext written while encryption was off.
const sealedTag byte = 0x01

// ErrSealed is returned when a sealed value is read without the master key.
var ErrSealed = errors.New("value is sealed but no master key is configured")

// Sealer protects personal data columns at rest.
type Sealer interface {
	Seal(plain []byte) ([]byte, error)
	Open(blob []byte) ([]byte, error)
}

func isSealed(blob []byte) bool { return len(blob) > 0 && blob[0] == sealedTag }

// PlainSealer stores values unchanged.
type PlainSealer struct{}

func (PlainSealer) Seal(plain []byte) ([]byte, error) { return plain, nil }

func (PlainSealer) Open(blob []byte) ([]byte, error) {
	if isSealed(blob) {
		return nil, ErrSealed
	}
	return blob, nil
}

// AESSealer seals values with AES-256-GCM under a key derived from the master
// key. Plaintext values are passed through on Open.
type AESSealer struct {
	key  []byte
	seal bool
}

// NewAESSealer derives the PII key from the master key.
func NewAESSealer(masterKey []byte) (*AESSealer, error) {
	key, err := crypto.DeriveKey(masterKey, "rentnest-pii")
	if err != nil {
		return nil, err
	}
	return &AESSealer{key: key, seal: true}, nil
}

// NewAESOpener is an AESSealer that writes new values in the clear but can
// still read values sealed while encryption was on.
func NewAESOpener(masterKey []byte) (*AESSealer, error) {
	s, err := NewAESSealer(masterKey)
	if err != nil {
		return nil, err
	}
	s.seal = false
	return s, nil
}

func (s *AESSealer) Seal(plain []byte) ([]byte, error) {
	if !s.seal {
		return plain, nil
	}
	ct, err := crypto.EncryptAESGCM(s.key, plain)
	if err != nil {
		return nil, err
	}
	return append([]byte{sealedTag}, ct...), nil
}

func (s *AESSealer) Open(blob []byte) ([]byte, error) {
	if !isSealed(blob) {
		return blob, nil
	}
	return crypto.DecryptAESGCM(s.key, blob[1:])
}
