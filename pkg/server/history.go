package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/history"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// AddHistoryRequest is the body of POST /api/v1/history.
type AddHistoryRequest struct {
	Name   string          `json:"name"`
	Source history.Source  `json:"source"`
	Data   json.RawMessage `json:"data"`
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	entries, err := s.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleAddHistory stores a document that parses as a workflow.
func (s *Server) handleAddHistory(w http.ResponseWriter, r *http.Request) {
	var req AddHistoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Data) == 0 {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "data is required"))
		return
	}
	if _, err := workflow.ParseAs(req.Data, workflow.FormatJSON); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.history.Add(r.Context(), history.Entry{
		Name:   req.Name,
		Source: req.Source,
		Data:   req.Data,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
