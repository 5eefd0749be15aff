package files

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrylevesque/rentnest/internal/crypto"
)

// MasterKeyEnv holds the hex master key and takes precedence over the key file.
const MasterKeyEnv = "MASTER_KEY_HEX"

// ErrKeyExists is returned by GenerateMasterKey when the file is already there.
var ErrKeyExists = errors.New("master key file already exists")

// ReadMasterKey reads MASTER_KEY_HEX, falling back to the file at path.
func ReadMasterKey(path string) ([]byte, error) {
	h := os.Getenv(MasterKeyEnv)
	if h == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s not set and %s unreadable: %w", MasterKeyEnv, path, err)
		}
		h = string(data)
	}
	return decodeMasterKey(h)
}

// GenerateMasterKey writes a fresh hex key to path with 0600 perms. It refuses
// to overwrite an existing file.
func GenerateMasterKey(path string) ([]byte, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrKeyExists)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	key := crypto.MustRandom(crypto.KeySize)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, err
	}
	if _, err := f.WriteString(hex.EncodeToString(key) + "\n"); err != nil {
		f.Close()
		return nil, err
	}
	return key, f.Close()
}

// LoadOrCreateMasterKey reads the key, generating the file on first run.
// The environment variable still wins when set.
func LoadOrCreateMasterKey(path string) (key []byte, created bool, err error) {
	if os.Getenv(MasterKeyEnv) == "" {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			key, err = GenerateMasterKey(path)
			return key, err == nil, err
		}
	}
	key, err = ReadMasterKey(path)
	return key, false, err
}

func decodeMasterKey(h string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return nil, fmt.Errorf("master key hex decode error: %w", err)
	}
	if len(b) != crypto.KeySize {
		return nil, fmt.Errorf("master key length must be %d bytes (hex %d chars)", crypto.KeySize, 2*crypto.KeySize)
	}
	return b, nil
}
