package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/rentnest/internal/auth"
	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/utils"
)

type statusRequest struct {
	Status string `json:"status"`
}

func (s *server) searchListings(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.Listings.Search(r.Context(), auth.UserFrom(r.Context()), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *server) getListing(w http.ResponseWriter, r *http.Request) {
	p, err := s.Listings.Get(r.Context(), mux.Vars(r)["id"], auth.UserFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) postListing(w http.ResponseWriter, r *http.Request) {
	var draft models.Property
	if err := decode(w, r, &draft); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.Listings.Post(r.Context(), auth.UserFrom(r.Context()), draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *server) updateListing(w http.ResponseWriter, r *http.Request) {
	var patch models.PropertyPatch
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.Listings.Update(r.Context(), auth.UserFrom(r.Context()), mux.Vars(r)["id"], patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) deleteListing(w http.ResponseWriter, r *http.Request) {
	if err := s.Listings.Delete(r.Context(), auth.UserFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) setListingStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.Listings.SetStatus(r.Context(), auth.UserFrom(r.Context()), mux.Vars(r)["id"], models.PropertyStatus(req.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) myListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q, "page")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	size, err := intParam(q, "page_size")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.Listings.MyListings(r.Context(), auth.UserFrom(r.Context()), page, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// uploadImage accepts either a multipart form with an "image" file or the raw
// image as the request body.
func (s *server) uploadImage(w http.ResponseWriter, r *http.Request) {
	data, err := s.readImage(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	img, err := s.Listings.AddImage(r.Context(), auth.UserFrom(r.Context()), mux.Vars(r)["id"], data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (s *server) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	const multipartOverhead = 64 << 10
	r.Body = http.MaxBytesReader(w, r.Body, s.maxImageBytes+multipartOverhead)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, tooLargeOr(err, utils.Invalid("multipart upload needs an \"image\" file: %v", err))
		}
		defer file.Close()
		src = file
	}
	data, err := io.ReadAll(io.LimitReader(src, s.maxImageBytes+1))
	if err != nil {
		return nil, tooLargeOr(err, err)
	}
	if int64(len(data)) > s.maxImageBytes {
		return nil, fmt.Errorf("image over %d bytes: %w", s.maxImageBytes, utils.ErrTooLarge)
	}
	return data, nil
}

func tooLargeOr(err, fallback error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return fmt.Errorf("upload over %d bytes: %w", tooBig.Limit, utils.ErrTooLarge)
	}
	return fallback
}

func (s *server) deleteImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.Listings.RemoveImage(r.Context(), auth.UserFrom(r.Context()), vars["id"], vars["imageID"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) serveImage(w http.ResponseWriter, r *http.Request) {
	img, f, err := s.Listings.OpenImage(r.Context(), mux.Vars(r)["imageID"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.Header().Set("ETag", `"`+img.Hash+`"`)
	http.ServeContent(w, r, "", img.CreatedAt, f)
}

func (s *server) shortlist(w http.ResponseWriter, r *http.Request) {
	list, err := s.Listings.Shortlist(r.Context(), auth.UserFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) addToShortlist(w http.ResponseWriter, r *http.Request) {
	if err := s.Listings.AddToShortlist(r.Context(), auth.UserFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) removeFromShortlist(w http.ResponseWriter, r *http.Request) {
	if err := s.Listings.RemoveFromShortlist(r.Context(), auth.UserFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) recentSearches(w http.ResponseWriter, r *http.Request) {
	list, err := s.Listings.RecentSearches(r.Context(), auth.UserFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) clearSearches(w http.ResponseWriter, r *http.Request) {
	if err := s.Listings.ClearSearches(r.Context(), auth.UserFrom(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
