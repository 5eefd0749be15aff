package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/harrylevesque/rentnest/internal/utils"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) { utils.WriteJSON(w, status, v) }

func writeMessage(w http.ResponseWriter, status int, msg string) { utils.WriteError(w, status, msg) }

// writeError maps err to its status. Server-side failures are logged and
// answered with the generic status text.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := utils.StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, status, http.StatusText(status))
		return
	}
	writeMessage(w, status, err.Error())
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("request body over %d bytes: %w", tooBig.Limit, utils.ErrTooLarge)
		}
		if errors.Is(err, io.EOF) {
			return utils.Invalid("request body is empty")
		}
		return utils.Invalid("malformed JSON: %v", err)
	}
	return nil
}
