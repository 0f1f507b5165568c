package httpapi

import (
	"net/http"
	"strings"

	"jobdesk.org/internal/audit"
	"jobdesk.org/internal/auth"
	"jobdesk.org/internal/jobs"
	"jobdesk.org/internal/obs"
	"jobdesk.org/internal/profile"
)

type applyRequest struct {
	JobID string `json:"job_id"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type applicationListResponse struct {
	Items []jobs.Application `json:"items"`
}

// applicationDetail is an application with the seeker's profile at read
// time. The only retrievable resume address is the snapshot carried on
// the application itself, so the profile's current address is never
// advertised here.
type applicationDetail struct {
	jobs.Application
	SeekerProfile *profile.SeekerProfile `json:"seeker_profile,omitempty"`
}

func (a *API) handleApplications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req applyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		writeError(w, r, http.StatusBadRequest, "job_id is required")
		return
	}

	app, err := a.jobs.Apply(r.Context(), identity, req.JobID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	obs.ApplicationSubmitted()
	_ = audit.LogEvent(r.Context(), "applications.submitted", map[string]any{
		"application_id": app.ID,
		"job_id":         app.JobID,
	})
	writeJSON(w, http.StatusCreated, app)
}

func (a *API) handleSeekerApplications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := a.jobs.SeekerApplications(r.Context(), identity)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationListResponse{Items: items})
}

func (a *API) handleEmployerApplications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := a.jobs.EmployerApplications(r.Context(), identity)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationListResponse{Items: items})
}

func (a *API) handleApplicationByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/applications/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		app, err := a.jobs.Application(r.Context(), identity, id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		detail := applicationDetail{Application: *app}
		if p, err := a.profiles.ByAccount(r.Context(), app.SeekerID); err == nil {
			snapshot := *p
			snapshot.ResumeURL = ""
			detail.SeekerProfile = &snapshot
		}
		writeJSON(w, http.StatusOK, detail)
	case http.MethodPut:
		var req statusUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		app, err := a.jobs.UpdateStatus(r.Context(), identity, id, req.Status)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}

		obs.ApplicationTransition(string(app.Status))
		_ = audit.LogEvent(r.Context(), "applications.status_changed", map[string]any{
			"application_id": app.ID,
			"status":         string(app.Status),
		})
		writeJSON(w, http.StatusOK, app)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}
