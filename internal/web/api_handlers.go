package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/evcraddock/client-visits/internal/export"
	"github.com/evcraddock/client-visits/internal/visit"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// storeError maps store and form errors to API responses.
func storeError(w http.ResponseWriter, err error) {
	var fe *visit.FormError
	switch {
	case errors.As(err, &fe):
		apiJSON(w, map[string]interface{}{"error": fe.Error(), "fields": fe.Fields}, http.StatusBadRequest)
	case errors.Is(err, visit.ErrNotFound):
		apiError(w, "visit not found", http.StatusNotFound)
	case errors.Is(err, visit.ErrInvalidStatus):
		apiError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, visit.ErrInvalidTransition):
		apiError(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("visit store", "error", err)
		apiError(w, "internal error", http.StatusInternalServerError)
	}
}

// createRequest is the body of POST /api/visits.
type createRequest struct {
	visit.Form
	Status visit.Status `json:"status"`
}

// handleAPIVisits routes /api/visits requests.
func (s *Server) handleAPIVisits(w http.ResponseWriter, r *http.Request) {
	view, _ := s.view(r)
	if view == nil {
		apiError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/visits"), "/")

	// /api/visits: list or create
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListVisits(w, r, view)
		case http.MethodPost:
			s.apiCreateVisit(w, r, view)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/visits/{id}/submit
	if id, ok := strings.CutSuffix(path, "/submit"); ok && id != "" && !strings.Contains(id, "/") {
		if r.Method != http.MethodPost {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiSubmitVisit(w, r, view, id)
		return
	}

	if strings.Contains(path, "/") {
		apiError(w, "not found", http.StatusNotFound)
		return
	}

	// /api/visits/{id}: show or update
	switch r.Method {
	case http.MethodGet:
		s.apiGetVisit(w, view, path)
	case http.MethodPatch:
		s.apiUpdateVisit(w, r, view, path)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// listOwner returns the owner filter for a listing request. Users see their
// own visits unless they ask for all of them; scoped views ignore the ask.
func listOwner(r *http.Request, view *visit.View) string {
	if r.URL.Query().Get("all") == "true" {
		return ""
	}
	return view.OwnerID()
}

// apiListVisits returns the visible visits, optionally filtered by status.
func (s *Server) apiListVisits(w http.ResponseWriter, r *http.Request, view *visit.View) {
	filter, err := visit.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	visits := visit.FilterStatus(view.List(listOwner(r, view)), filter)
	apiJSON(w, visits, http.StatusOK)
}

// apiCreateVisit validates a form and stores it as a new visit.
func (s *Server) apiCreateVisit(w http.ResponseWriter, r *http.Request, view *visit.View) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	status := req.Status
	if status == "" {
		status = visit.Draft
	}
	if !status.IsValid() {
		apiError(w, fmt.Sprintf("invalid status %q (use draft or submitted)", status), http.StatusBadRequest)
		return
	}

	_, user := s.view(r)
	draft, err := req.Form.Draft(user.ID, user.Name, status)
	if err != nil {
		storeError(w, err)
		return
	}

	v, err := view.Create(r.Context(), draft)
	if err != nil {
		storeError(w, err)
		return
	}

	apiJSON(w, v, http.StatusCreated)
}

// apiGetVisit returns a single visit.
func (s *Server) apiGetVisit(w http.ResponseWriter, view *visit.View, id string) {
	v, ok := view.Get(id)
	if !ok {
		apiError(w, "visit not found", http.StatusNotFound)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

// apiUpdateVisit applies a partial update. Content changes are validated
// against the visit form before they reach the store.
func (s *Server) apiUpdateVisit(w http.ResponseWriter, r *http.Request, view *visit.View, id string) {
	var patch visit.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if patch.IsEmpty() {
		apiError(w, "nothing to update", http.StatusBadRequest)
		return
	}

	current, ok := view.Get(id)
	if !ok {
		apiError(w, "visit not found", http.StatusNotFound)
		return
	}
	if patch.TouchesContent() {
		if err := visit.FormOf(patch.ApplyTo(current)).Validate(); err != nil {
			storeError(w, err)
			return
		}
	}

	if err := view.Update(r.Context(), id, patch); err != nil {
		storeError(w, err)
		return
	}
	s.apiGetVisit(w, view, id)
}

// apiSubmitVisit marks a visit as submitted.
func (s *Server) apiSubmitVisit(w http.ResponseWriter, r *http.Request, view *visit.View, id string) {
	if err := view.MarkSubmitted(r.Context(), id); err != nil {
		storeError(w, err)
		return
	}
	s.apiGetVisit(w, view, id)
}

// handleAPISummary returns the dashboard summary for the visible visits.
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	view, _ := s.view(r)
	if view == nil {
		apiError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	recent := DefaultRecent
	if recentStr := r.URL.Query().Get("recent"); recentStr != "" {
		n, err := strconv.Atoi(recentStr)
		if err != nil || n < 0 {
			apiError(w, "recent must be a non-negative number", http.StatusBadRequest)
			return
		}
		recent = n
	}

	apiJSON(w, visit.Summarize(view.List(listOwner(r, view)), recent), http.StatusOK)
}

// handleAPIExport streams the visible visits as an .xlsx workbook.
func (s *Server) handleAPIExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	view, _ := s.view(r)
	if view == nil {
		apiError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	filter, err := visit.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, visit.FilterStatus(view.List(listOwner(r, view)), filter)); err != nil {
		slog.Error("exporting visits", "error", err)
		apiError(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="client-visits.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("writing export", "error", err)
	}
}

// handleAPIMe returns the authenticated user.
func (s *Server) handleAPIMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	view, user := s.view(r)
	if user == nil {
		apiError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	apiJSON(w, map[string]interface{}{"user": user, "scoping": view.IsScoped()}, http.StatusOK)
}
