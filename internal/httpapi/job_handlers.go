package httpapi

import (
	"net/http"
	"strings"

	"jobdesk.org/internal/audit"
	"jobdesk.org/internal/auth"
	"jobdesk.org/internal/jobs"
)

type createJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

type jobStatusRequest struct {
	Status string `json:"status"`
}

type jobListResponse struct {
	Items []jobs.JobPosting `json:"items"`
}

func (a *API) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := a.jobs.Jobs(r.Context())
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, jobListResponse{Items: items})
	case http.MethodPost:
		a.createJob(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createJob(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	posting, err := a.jobs.CreateJob(r.Context(), identity, jobs.CreateJobParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "jobs.posting.created", map[string]any{
		"job_id": posting.ID,
		"title":  posting.Title,
	})
	writeJSON(w, http.StatusCreated, posting)
}

func (a *API) handleJobByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	id, sub, hasSub := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if hasSub {
		if sub != "status" {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.updateJobStatus(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		posting, err := a.jobs.Job(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, posting)
	case http.MethodDelete:
		a.deleteJob(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) updateJobStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req jobStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status != string(jobs.JobClosed) {
		writeError(w, r, http.StatusBadRequest, "status must be \"closed\"")
		return
	}

	posting, err := a.jobs.CloseJob(r.Context(), identity, id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "jobs.posting.closed", map[string]any{
		"job_id": posting.ID,
	})
	writeJSON(w, http.StatusOK, posting)
}

func (a *API) deleteJob(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := a.jobs.DeleteJob(r.Context(), identity, id); err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "jobs.posting.deleted", map[string]any{
		"job_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}
