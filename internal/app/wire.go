// Package app assembles the rentnest server from its configuration.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/harrylevesque/rentnest/internal/api"
	"github.com/harrylevesque/rentnest/internal/auth"
	"github.com/harrylevesque/rentnest/internal/config"
	"github.com/harrylevesque/rentnest/internal/crypto"
	"github.com/harrylevesque/rentnest/internal/db"
	"github.com/harrylevesque/rentnest/internal/files"
	"github.com/harrylevesque/rentnest/internal/leads"
	"github.com/harrylevesque/rentnest/internal/listings"
	"github.com/harrylevesque/rentnest/internal/profile"
	"github.com/harrylevesque/rentnest/internal/store"
)

// Wire bundles the pool, stores and services behind the HTTP handler.
type Wire struct {
	Pool     *db.Pool
	Store    *store.Store
	Images   *files.ImageStore
	Auth     *auth.Service
	Listings *listings.Service
	Leads    *leads.Service
	Profile  *profile.Service
	Handler  http.Handler

	// KeyCreated is set when a new master key file was written on this start.
	KeyCreated bool
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg *config.Config, logger *slog.Logger) (*Wire, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0700); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	master, created, err := files.LoadOrCreateMasterKey(cfg.MasterKeyFile)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	tokenKey, err := crypto.DeriveKey(master, "rentnest-session")
	if err != nil {
		return nil, err
	}

	// With PII encryption off new phones are written in the clear, but
	// phones sealed earlier stay readable.
	newSealer := store.NewAESOpener
	if cfg.EncryptPII() {
		newSealer = store.NewAESSealer
	}
	sealer, err := newSealer(master)
	if err != nil {
		return nil, err
	}

	pool, err := db.Open(db.Config{Path: cfg.DatabasePath, PoolSize: cfg.PoolSize, Logger: logger})
	if err != nil {
		return nil, err
	}
	images, err := files.NewImageStore(cfg.ImageDir, cfg.MaxImageBytes)
	if err != nil {
		pool.Close()
		return nil, err
	}
	st := store.New(pool, sealer)

	authSvc := auth.NewService(st, auth.Config{
		SessionTTL: time.Duration(cfg.SessionTTL),
		BcryptCost: cfg.BcryptCost,
		TokenKey:   tokenKey,
	}, logger)
	listingSvc := listings.NewService(st, images, listings.Config{MaxImagesPerProperty: cfg.MaxImagesPerProperty}, logger)
	leadSvc := leads.NewService(st, logger)
	profileSvc := profile.NewService(st, authSvc, logger)

	handler := api.NewHandler(api.Services{
		Auth:     authSvc,
		Listings: listingSvc,
		Leads:    leadSvc,
		Profile:  profileSvc,
	}, api.Options{
		Gzip:          cfg.GzipEnabled(),
		MaxImageBytes: cfg.MaxImageBytes,
		Logger:        logger,
	})

	return &Wire{
		Pool:       pool,
		Store:      st,
		Images:     images,
		Auth:       authSvc,
		Listings:   listingSvc,
		Leads:      leadSvc,
		Profile:    profileSvc,
		Handler:    handler,
		KeyCreated: created,
	}, nil
}

// Close releases the database pool.
func (w *Wire) Close() error {
	return w.Pool.Close()
}
