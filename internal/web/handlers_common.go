package web

// handlers_common.go holds request parsing and response helpers shared by
// every handler.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/stockpos/internal/core"
	"github.com/JonMunkholm/stockpos/internal/logging"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// parseIntParam parses a non-negative integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// listOptions reads ?q=, ?limit= and ?offset=.
func listOptions(r *http.Request) core.ListOptions {
	return core.ListOptions{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  parseIntParam(r, "limit", core.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	}
}

// decodeJSON reads a JSON object into v. Unknown fields are rejected so
// typos in field names surface as errors instead of silently doing nothing.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body over %d bytes", errFileTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: trailing data after JSON object", errInvalidBody)
	}
	return nil
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// crud wires the five standard handlers of one resource to service calls.
type crud[T, In, Patch any] struct {
	create func(*http.Request, In) (*T, error)
	get    func(*http.Request, string) (*T, error)
	list   func(*http.Request, core.ListOptions) ([]T, error)
	update func(*http.Request, string, Patch) (*T, error)
	remove func(*http.Request, string) error
}

func (c crud[T, In, Patch]) mount(r chi.Router) {
	r.Get("/", c.handleList)
	r.Post("/", c.handleCreate)
	r.Get("/{id}", c.handleGet)
	r.Patch("/{id}", c.handleUpdate)
	r.Delete("/{id}", c.handleDelete)
}

func (c crud[T, In, Patch]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := c.list(r, listOptions(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (c crud[T, In, Patch]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in In
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	item, err := c.create(r, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, item)
}

func (c crud[T, In, Patch]) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := c.get(r, idParam(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (c crud[T, In, Patch]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var p Patch
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, r, err)
		return
	}
	item, err := c.update(r, idParam(r), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (c crud[T, In, Patch]) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.remove(r, idParam(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
