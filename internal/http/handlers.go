package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"renewme/internal/core"
	"renewme/internal/export"
	applog "renewme/internal/log"
	"renewme/internal/services"
)

type metaResponse struct {
	Currencies  []core.Currency    `json:"currencies"`
	Frequencies []core.Frequency   `json:"frequencies"`
	Categories  []string           `json:"categories"`
	SortKeys    []services.SortKey `json:"sortKeys"`
	Defaults    core.Subscription  `json:"defaults"`
}

func (s *Server) handleMeta(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metaResponse{
		Currencies:  core.Currencies,
		Frequencies: core.Frequencies,
		Categories:  core.Categories,
		SortKeys:    []services.SortKey{services.SortByName, services.SortByAmount, services.SortByDate},
		Defaults:    core.NewSubscriptionDefaults(services.Today(s.svc.Now())),
	})
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.Filter{
		Query:    sanitizeInput(q.Get("q")),
		Category: sanitizeInput(q.Get("category")),
		Sort:     services.SortKey(strings.ToLower(strings.TrimSpace(q.Get("sort")))),
	}
	if f.Sort == "" {
		f.Sort = services.SortByName
	}
	if !f.Sort.IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid sort %q: must be one of name, amount, date", f.Sort))
		return
	}

	subs, err := s.svc.List(r.Context(), f)
	if err != nil {
		handleServiceError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// readSubscription decodes and validates a request body. It writes the error
// response itself and reports false when the request is unusable.
func (s *Server) readSubscription(w http.ResponseWriter, r *http.Request) (core.Subscription, bool) {
	var req SubscriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return core.Subscription{}, false
	}
	if err := Validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation failed", validationMessages(err)...)
		return core.Subscription{}, false
	}
	sub, err := req.ToSubscription(services.Today(s.svc.Now()))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return core.Subscription{}, false
	}
	return sub, true
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.readSubscription(w, r)
	if !ok {
		return
	}
	created, err := s.svc.Create(r.Context(), sub)
	if err != nil {
		handleServiceError(w, r, applog.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/api/v1/subscriptions/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.readSubscription(w, r)
	if !ok {
		return
	}
	updated, err := s.svc.Update(r.Context(), chi.URLParam(r, "id"), sub)
	if err != nil {
		handleServiceError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.svc.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, applog.OpToggle, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context())
	if err != nil {
		handleServiceError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Projection(r.Context())
	if err != nil {
		handleServiceError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.All(r.Context())
	if err != nil {
		handleServiceError(w, r, applog.OpExport, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, subs); err != nil {
		handleServiceError(w, r, applog.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment("renewme-subscriptions", s.svc.Now(), "json"))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	subs, err := export.ReadJSON(http.MaxBytesReader(w, r.Body, export.MaxImportBytes))
	if err != nil {
		if errors.Is(err, export.ErrEmptyImport) {
			handleServiceError(w, r, applog.OpImport, err)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.svc.Import(r.Context(), subs)
	if err != nil {
		handleServiceError(w, r, applog.OpImport, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Subscriptions imported",
		applog.FieldOperation, applog.OpImport,
		"count", n)
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.All(r.Context())
	if err != nil {
		handleServiceError(w, r, applog.OpExport, err)
		return
	}
	now := s.svc.Now()
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, export.BuildReport(subs, now)); err != nil {
		handleServiceError(w, r, applog.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", attachment("renewme-report", now, "pdf"))
	_, _ = w.Write(buf.Bytes())
}

func attachment(prefix string, now time.Time, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s-%s.%s"`, prefix, now.Format(time.DateOnly), ext)
}
