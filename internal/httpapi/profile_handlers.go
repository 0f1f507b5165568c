package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"jobdesk.org/internal/audit"
	"jobdesk.org/internal/auth"
	"jobdesk.org/internal/obs"
	"jobdesk.org/internal/profile"
	"jobdesk.org/internal/resume"
)

// multipart text parts stay in memory; the resume file part spills to
// a temp file above this threshold.
const multipartMemory = 1 << 20

func (a *API) handleSeekerProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := a.profiles.Get(r.Context(), identity)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		a.updateSeekerProfile(w, r, identity)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) updateSeekerProfile(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart form expected")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	params := profile.UpdateParams{
		Headline: formField(r, "headline"),
		Bio:      formField(r, "bio"),
		Location: formField(r, "location"),
	}

	file, header, err := r.FormFile("resume")
	switch {
	case err == nil:
		defer file.Close()
		params.Resume = &profile.Upload{
			Name:   header.Filename,
			Size:   header.Size,
			Reader: file,
		}
	case errors.Is(err, http.ErrMissingFile):
		// profile-only update
	default:
		writeError(w, r, http.StatusBadRequest, "malformed resume part")
		return
	}

	p, err := a.profiles.Update(r.Context(), identity, params)
	if err != nil {
		recordUploadRejection(err)
		handleDomainError(w, r, err)
		return
	}

	fields := map[string]any{
		"account_id": identity.SubjectID,
	}
	if params.Resume != nil {
		fields["resume_url"] = p.ResumeURL
	}
	_ = audit.LogEvent(r.Context(), "profile.updated", fields)
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleResumeDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	address := strings.TrimPrefix(r.URL.Path, "/v1/profile/resume/")
	if err := resume.ValidateAddress(address); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid resume address")
		return
	}
	ownerID, err := resume.OwnerOf(address)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid resume address")
		return
	}

	allowed, err := a.jobs.CanReadResume(r.Context(), identity, address, ownerID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !allowed {
		writeError(w, r, http.StatusForbidden, "forbidden")
		return
	}

	rc, info, err := a.artifacts.Open(address)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", info.OriginalName))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

func formField(r *http.Request, name string) *string {
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func recordUploadRejection(err error) {
	switch {
	case errors.Is(err, resume.ErrUnsupportedType):
		obs.ResumeUploadRejected("unsupported_type")
	case errors.Is(err, resume.ErrTooLarge):
		obs.ResumeUploadRejected("too_large")
	}
}
