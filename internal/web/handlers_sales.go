package web

import (
	"bytes"
	"net/http"
	"strings"
)

func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	sale, err := s.service.RecordSale(r.Context(), req.toCore())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, sale)
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := s.service.ListSales(r.Context(), listOptions(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sales)
}

func (s *Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := s.service.GetSale(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sale)
}

// handleReceipt returns the receipt as JSON, or as plain text when the
// client asks for text/plain or passes ?format=text.
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.service.Receipt(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") != "text" && !strings.Contains(r.Header.Get("Accept"), "text/plain") {
		writeJSON(w, r, http.StatusOK, receipt)
		return
	}

	var buf bytes.Buffer
	if err := receipt.WriteText(&buf); err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck // client gone
}
