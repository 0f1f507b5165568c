package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"jobdesk.org/internal/auth"
	"jobdesk.org/internal/jobs"
	"jobdesk.org/internal/obs"
	"jobdesk.org/internal/profile"
	"jobdesk.org/internal/resume"
)

// ReadyProbe reports whether downstream dependencies answer.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps collects everything the HTTP layer needs.
type Deps struct {
	Tokens     *auth.Tokens
	Accounts   *auth.Service
	Jobs       *jobs.Service
	Profiles   *profile.Service
	Artifacts  *resume.Store
	ReadyProbe ReadyProbe
	Version    string
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	tokens     *auth.Tokens
	accounts   *auth.Service
	jobs       *jobs.Service
	profiles   *profile.Service
	artifacts  *resume.Store
	readyProbe ReadyProbe
	version    string
}

func New(d Deps) *API {
	a := &API{
		mux:        http.NewServeMux(),
		tokens:     d.Tokens,
		accounts:   d.Accounts,
		jobs:       d.Jobs,
		profiles:   d.Profiles,
		artifacts:  d.Artifacts,
		readyProbe: d.ReadyProbe,
		version:    d.Version,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/signup", a.handleSignUp)
	a.mux.HandleFunc("/v1/auth/signin", a.handleSignIn)
	a.mux.HandleFunc("/v1/auth/me", a.handleMe)

	a.mux.HandleFunc("/v1/jobs", a.handleJobs)
	a.mux.HandleFunc("/v1/jobs/", a.handleJobByID)

	a.mux.HandleFunc("/v1/applications", a.handleApplications)
	a.mux.Handle("/v1/applications/my-applications",
		RequireRole(auth.RoleSeeker)(http.HandlerFunc(a.handleSeekerApplications)))
	a.mux.Handle("/v1/applications/employer/my-applications",
		RequireRole(auth.RoleEmployer)(http.HandlerFunc(a.handleEmployerApplications)))
	a.mux.HandleFunc("/v1/applications/", a.handleApplicationByID)

	a.mux.Handle("/v1/profile/seeker",
		RequireRole(auth.RoleSeeker)(http.HandlerFunc(a.handleSeekerProfile)))
	a.mux.HandleFunc("/v1/profile/resume/", a.handleResumeDownload)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the mux wrapped with authentication and metrics.
// Outer middlewares (request id, logging, limits) are stacked in cmd/api.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.withAuth(a.mux))
}

// --- health / info ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "jobdesk-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "jobdesk-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleDomainError maps sentinel errors from the service layer onto
// HTTP status codes. Unknown errors never leak their message.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, jobs.ErrInvalidInput),
		errors.Is(err, jobs.ErrInvalidStatus), errors.Is(err, resume.ErrUnsupportedType),
		errors.Is(err, resume.ErrInvalidAddress):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, jobs.ErrForbidden), errors.Is(err, profile.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, jobs.ErrNotFound),
		errors.Is(err, profile.ErrNotFound), errors.Is(err, resume.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, auth.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "email already registered")
	case errors.Is(err, jobs.ErrDuplicate):
		writeError(w, r, http.StatusConflict, "application already submitted")
	case errors.Is(err, jobs.ErrJobClosed), errors.Is(err, jobs.ErrInvalidTransition):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, resume.ErrTooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
