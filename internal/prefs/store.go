// Package prefs persists the client's session token and display theme.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/harrylevesque/rentnest/internal/models"
)

// DefaultServerURL is used until the user points the client elsewhere.
const DefaultServerURL = "http://localhost:8080"

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("prefs: CBOR encoder initialization failed: " + err.Error())
	}
}

// Store reads and writes one preferences file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is ~/.rentnest/prefs.cbor.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".rentnest", "prefs.cbor"), nil
}

func (s *Store) Path() string { return s.path }

// Load returns the stored preferences. A missing file yields the defaults.
func (s *Store) Load() (models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the stored preferences.
func (s *Store) Save(p models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(p)
}

// SetSession remembers a login.
func (s *Store) SetSession(serverURL, token, userID, email string) error {
	return s.update(func(p *models.Preferences) error {
		if serverURL != "" {
			p.ServerURL = serverURL
		}
		p.Token, p.UserID, p.Email = token, userID, email
		return nil
	})
}

// ClearSession forgets the login but keeps server and theme.
func (s *Store) ClearSession() error {
	return s.update(func(p *models.Preferences) error {
		p.Token, p.UserID, p.Email = "", "", ""
		return nil
	})
}

// SetTheme validates and stores the theme.
func (s *Store) SetTheme(theme string) (models.Theme, error) {
	t, err := models.ParseTheme(theme)
	if err != nil {
		return "", err
	}
	return t, s.update(func(p *models.Preferences) error {
		p.Theme = t
		return nil
	})
}

func (s *Store) SetServerURL(url string) error {
	return s.update(func(p *models.Preferences) error {
		p.ServerURL = url
		return nil
	})
}

func (s *Store) update(fn func(p *models.Preferences) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(&p); err != nil {
		return err
	}
	return s.save(p)
}

func (s *Store) load() (models.Preferences, error) {
	p := models.Preferences{ServerURL: DefaultServerURL, Theme: models.ThemeSystem}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	if err := cbor.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("prefs: decode %s: %w", s.path, err)
	}
	if p.ServerURL == "" {
		p.ServerURL = DefaultServerURL
	}
	if _, err := models.ParseTheme(string(p.Theme)); err != nil {
		p.Theme = models.ThemeSystem
	}
	return p, nil
}

// save writes via a temp file then rename so a crash never leaves a torn file.
func (s *Store) save(p models.Preferences) error {
	b, err := encMode.Marshal(p)
	if err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(0600); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
