// Package files keeps listing photos and the master key on the local disk.
package files

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/harrylevesque/rentnest/internal/utils"
)

// Accepted photo formats and the extension each is stored under.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// StoredImage describes a file written by Save.
type StoredImage struct {
	FileName    string // relative to the store root: <propertyID>/<uuid>.<ext>
	ContentType string
	Size        int64
	Hash        string // hex BLAKE3-256 of the content
}

// ImageStore writes photos under <dir>/<propertyID>/.
type ImageStore struct {
	dir      string
	maxBytes int64
	mu       sync.RWMutex
}

// NewImageStore creates the root directory if needed. maxBytes <= 0 means no limit.
func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("files: create image dir: %w", err)
	}
	return &ImageStore{dir: dir, maxBytes: maxBytes}, nil
}

// Inspect sniffs the content type and hashes data without writing it.
func (s *ImageStore) Inspect(data []byte) (StoredImage, error) {
	if len(data) == 0 {
		return StoredImage{}, utils.Invalid("image is empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return StoredImage{}, fmt.Errorf("image is %d bytes, limit %d: %w", len(data), s.maxBytes, utils.ErrTooLarge)
	}
	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		return StoredImage{}, utils.Invalid("unsupported image type %s", contentType)
	}
	sum := blake3.Sum256(data)
	return StoredImage{
		ContentType: contentType,
		Size:        int64(len(data)),
		Hash:        hex.EncodeToString(sum[:]),
	}, nil
}

// Save validates data and writes it under a fresh name in the property's directory.
func (s *ImageStore) Save(propertyID string, data []byte) (StoredImage, error) {
	img, err := s.Inspect(data)
	if err != nil {
		return StoredImage{}, err
	}
	if err := checkName(propertyID); err != nil {
		return StoredImage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, propertyID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return StoredImage{}, fmt.Errorf("files: create property dir: %w", err)
	}
	img.FileName = propertyID + "/" + uuid.NewString() + imageExtensions[img.ContentType]
	if err := os.WriteFile(filepath.Join(s.dir, filepath.FromSlash(img.FileName)), data, 0600); err != nil {
		return StoredImage{}, fmt.Errorf("files: write image: %w", err)
	}
	return img, nil
}

// Open returns the stored file for reading. The caller closes it.
func (s *ImageStore) Open(fileName string) (*os.File, error) {
	path, err := s.path(fileName)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("image file %s: %w", fileName, utils.ErrNotFound)
	}
	return f, err
}

// Remove deletes one file. A missing file is not an error.
func (s *ImageStore) Remove(fileName string) error {
	path, err := s.path(fileName)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveAll deletes the property's directory and everything in it.
func (s *ImageStore) RemoveAll(propertyID string) error {
	if err := checkName(propertyID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.RemoveAll(filepath.Join(s.dir, propertyID))
}

// path resolves a stored name, refusing anything that escapes the root.
func (s *ImageStore) path(fileName string) (string, error) {
	parts := strings.Split(fileName, "/")
	if len(parts) != 2 {
		return "", utils.Invalid("bad image file name %q", fileName)
	}
	for _, p := range parts {
		if err := checkName(p); err != nil {
			return "", err
		}
	}
	return filepath.Join(s.dir, parts[0], parts[1]), nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return utils.Invalid("bad path element %q", name)
	}
	return nil
}
