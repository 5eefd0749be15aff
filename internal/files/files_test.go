package files

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrylevesque/rentnest/internal/utils"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestImageStoreSaveOpenRemove(t *testing.T) {
	s, err := NewImageStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}

	img, err := s.Save("prop1", pngHeader)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if img.ContentType != "image/png" || img.Size != int64(len(pngHeader)) || len(img.Hash) != 64 {
		t.Errorf("stored = %+v", img)
	}
	if filepath.Ext(img.FileName) != ".png" || filepath.Dir(img.FileName) != "prop1" {
		t.Errorf("file name = %s", img.FileName)
	}

	again, _ := s.Inspect(pngHeader)
	if again.Hash != img.Hash {
		t.Error("hash is not stable")
	}

	f, err := s.Open(img.FileName)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(f)
	f.Close()
	if !bytes.Equal(got, pngHeader) {
		t.Error("content mismatch")
	}

	if err := s.Remove(img.FileName); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(img.FileName); err != nil {
		t.Errorf("second Remove: %v", err)
	}
	if _, err := s.Open(img.FileName); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("Open removed err = %v, want ErrNotFound", err)
	}
}

func TestImageStoreRejects(t *testing.T) {
	s, err := NewImageStore(t.TempDir(), 16)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}
	if _, err := s.Save("p", nil); utils.StatusOf(err) != 400 {
		t.Errorf("empty err = %v", err)
	}
	if _, err := s.Save("p", []byte("plain text")); utils.StatusOf(err) != 400 {
		t.Errorf("text err = %v", err)
	}
	if _, err := s.Save("p", pngHeader); !errors.Is(err, utils.ErrTooLarge) {
		t.Errorf("oversize err = %v, want ErrTooLarge", err)
	}
	for _, name := range []string{"../x", "a/../../b", "a", ""} {
		if _, err := s.Open(name); utils.StatusOf(err) != 400 {
			t.Errorf("Open(%q) err = %v, want 400", name, err)
		}
	}
}

func TestImageStoreRemoveAll(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewImageStore(dir, 0)
	if _, err := s.Save("prop1", pngHeader); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.RemoveAll("prop1"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "prop1")); !os.IsNotExist(err) {
		t.Errorf("property dir still present: %v", err)
	}
}

func TestMasterKey(t *testing.T) {
	t.Setenv(MasterKeyEnv, "")
	path := filepath.Join(t.TempDir(), "keys", "master.key")

	key, created, err := LoadOrCreateMasterKey(path)
	if err != nil || !created || len(key) != 32 {
		t.Fatalf("LoadOrCreateMasterKey = %d bytes, %v, %v", len(key), created, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}

	again, created, err := LoadOrCreateMasterKey(path)
	if err != nil || created || !bytes.Equal(again, key) {
		t.Errorf("reload = %v, %v", created, err)
	}
	if _, err := GenerateMasterKey(path); !errors.Is(err, ErrKeyExists) {
		t.Errorf("overwrite err = %v, want ErrKeyExists", err)
	}

	t.Setenv(MasterKeyEnv, "zz")
	if _, err := ReadMasterKey(path); err == nil {
		t.Error("bad hex accepted")
	}
	t.Setenv(MasterKeyEnv, "00ff")
	if _, err := ReadMasterKey(path); err == nil {
		t.Error("short key accepted")
	}
}
