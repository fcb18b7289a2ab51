package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

func draftKeyParam(r *http.Request) types.DraftKey {
	return types.DraftKey(chi.URLParam(r, "key"))
}

func (s *Server) handleLoadDraft(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, err := s.uc.Drafts().Load(r.Context(), user.ID, draftKeyParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDraftResponse(d))
}

// handleSaveDraft stores the raw request body as the draft document
func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, r, goerr.Wrap(errBadRequest, "failed to read draft", goerr.V("cause", err.Error())))
		return
	}

	d, err := s.uc.Drafts().Save(r.Context(), user.ID, draftKeyParam(r), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDraftResponse(d))
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.uc.Drafts().Delete(r.Context(), user.ID, draftKeyParam(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
