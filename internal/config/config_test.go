package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
addr: ":9090"
data_dir: /srv/rentnest
session_ttl: 48h
pii_encryption: false
max_images_per_property: 5
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":9090" {
		t.Errorf("Addr = %q", c.Addr)
	}
	if time.Duration(c.SessionTTL) != 48*time.Hour {
		t.Errorf("SessionTTL = %s", c.SessionTTL)
	}
	if c.EncryptPII() {
		t.Error("pii_encryption: false was ignored")
	}
	if c.DatabasePath != filepath.Join("/srv/rentnest", "rentnest.db") {
		t.Errorf("DatabasePath = %q", c.DatabasePath)
	}
	if c.MaxImagesPerProperty != 5 || c.MaxImageBytes != DefaultMaxImageBytes {
		t.Errorf("image limits = %d/%d", c.MaxImagesPerProperty, c.MaxImageBytes)
	}
}

func TestLoadJSONCWithComments(t *testing.T) {
	path := writeFile(t, "config.jsonc", `{
  // listen on loopback only
  "addr": "127.0.0.1:8081",
  "session_ttl": "2h", /* short sessions */
  "gzip": false,
}`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != "127.0.0.1:8081" || c.GzipEnabled() {
		t.Errorf("got addr=%q gzip=%v", c.Addr, c.GzipEnabled())
	}
	if !c.EncryptPII() {
		t.Error("pii encryption should default to on")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RENTNEST_ADDR", ":7000")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":7000" {
		t.Errorf("Addr = %q, want env override", c.Addr)
	}
}

func TestLoadWithOverrideMovesDerivedPaths(t *testing.T) {
	t.Setenv("RENTNEST_ADDR", ":7000")
	c, err := LoadWith("", func(c *Config) {
		c.Addr = ":7100"
		c.DataDir = "/var/lib/rentnest"
	})
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if c.Addr != ":7100" {
		t.Errorf("Addr = %q, flag should beat env", c.Addr)
	}
	if c.DatabasePath != filepath.Join("/var/lib/rentnest", "rentnest.db") {
		t.Errorf("DatabasePath = %q", c.DatabasePath)
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	c.TLSCert = "cert.pem"
	if err := c.Validate(); err == nil {
		t.Error("tls_cert without tls_key accepted")
	}
	c = Default()
	c.BcryptCost = 2
	if err := c.Validate(); err == nil {
		t.Error("bcrypt_cost 2 accepted")
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "config.toml", "addr = 1")
	if _, err := Load(path); err == nil {
		t.Fatal("toml config accepted")
	}
}
