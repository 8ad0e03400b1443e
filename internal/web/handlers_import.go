package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/stockpos/internal/core"
	"github.com/JonMunkholm/stockpos/internal/logging"
)

// multipartOverhead is allowed on top of the file size for form boundaries
// and headers.
const multipartOverhead = 64 << 10

// handleImport runs a CSV import from the multipart field "file". A file
// with a rejected header still answers 200; the result carries the errors.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	if def, ok := core.GetEntity(entity); !ok || !def.Importable() {
		respondError(w, r, fmt.Errorf("%w: %s", core.ErrUnknownEntity, entity))
		return
	}

	// WriteTimeout on the server is sized for ordinary requests.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Now().Add(s.importDeadline())); err != nil {
		logging.FromContext(r.Context()).Debug("write deadline not extended", "error", err)
	}

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, maxSize))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		respondError(w, r, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, maxSize))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	result, err := s.service.Import(r.Context(), entity, header.Filename, data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleExport streams every record of an entity as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	var buf bytes.Buffer
	if err := s.service.Export(r.Context(), entity, &buf); err != nil {
		respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", entity, time.Now().UTC().Format("20060102_150405"))
	writeCSV(w, filename, buf.Bytes())
}

// handleTemplate returns the header-only import file for an entity.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	var buf bytes.Buffer
	if err := s.service.Template(entity, &buf); err != nil {
		respondError(w, r, err)
		return
	}
	writeCSV(w, entity+"_template.csv", buf.Bytes())
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	defs := core.Entities()
	out := make([]entityResponse, len(defs))
	for i, d := range defs {
		out[i] = entityResponse{Key: d.Key, Label: d.Label, Importable: d.Importable(), Columns: d.Columns}
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.ImportStatus())
}

// writeCSV sends body as an attachment. The body is buffered so a failed
// export still gets a JSON error instead of a truncated file.
func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(body) //nolint:errcheck // client gone
}
