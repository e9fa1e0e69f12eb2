package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/seqops/virsam/internal/journal"
)

// Journal handlers

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Parse pagination
	limit := 20
	if l := q.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
			if limit > 100 {
				limit = 100
			}
		}
	}

	var (
		entries []journal.Entry
		err     error
	)
	switch {
	case q.Get("q") != "":
		entries, err = s.journal.Search(q.Get("q"), limit)
	case q.Get("kind") != "":
		kind := q.Get("kind")
		if kind != journal.KindSample && kind != journal.KindStudy && kind != journal.KindUmbrella {
			s.writeError(w, http.StatusBadRequest, "Unknown kind. Supported: sample, study, umbrella")
			return
		}
		entries, err = s.journal.ListByKind(kind, limit)
	default:
		entries, err = s.journal.History(limit)
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": entries,
		"total":       len(entries),
		"limit":       limit,
	})
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	entry, err := s.journal.Get(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.writeError(w, http.StatusNotFound, "Submission not found")
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleLatestSubmission(w http.ResponseWriter, r *http.Request) {
	runDir := r.URL.Query().Get("run_dir")
	if runDir == "" {
		s.writeError(w, http.StatusBadRequest, "run_dir query parameter required")
		return
	}

	entry, err := s.journal.FindByRunDir(runDir)
	if err != nil {
		if strings.Contains(err.Error(), "no submission recorded") {
			s.writeError(w, http.StatusNotFound, "No submission recorded for this run directory")
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, entry)
}

// Statistics handler

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.journal.GetStats()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}
