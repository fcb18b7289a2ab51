package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
)

func (s *Server) handleListQueue(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pending, failed := s.uc.Sync.ListQueue(user.ID)
	writeJSON(w, r, http.StatusOK, &queueResponse{
		Pending: toQueuedActionResponses(pending),
		Failed:  toQueuedActionResponses(failed),
	})
}

func (s *Server) handleClearQueue(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.uc.Sync.ClearQueue(r.Context(), user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplayQueue(w http.ResponseWriter, r *http.Request) {
	result, err := s.uc.Sync.Replay(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toReplayResponse(result))
}

func (s *Server) handleRetryFailed(w http.ResponseWriter, r *http.Request) {
	moved := s.uc.Queue().RetryFailed()
	writeJSON(w, r, http.StatusOK, map[string]int{"moved": moved})
}

func (s *Server) handleRemoveQueued(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.uc.Sync.RemoveQueued(r.Context(), user.ID, chi.URLParam(r, "actionID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNetworkStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, toNetworkResponse(s.uc.Network().Status()))
}

func (s *Server) handleSetOnline(w http.ResponseWriter, r *http.Request) {
	s.setNetwork(w, r, true)
}

func (s *Server) handleSetOffline(w http.ResponseWriter, r *http.Request) {
	s.setNetwork(w, r, false)
}

func (s *Server) setNetwork(w http.ResponseWriter, r *http.Request, online bool) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status, err := s.uc.Sync.SetOnline(r.Context(), user.ID, online)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toNetworkResponse(status))
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, toNotificationResponses(s.uc.Notifications().List()))
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	s.uc.Notifications().Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")
	if !s.uc.Notifications().Dismiss(id) {
		writeError(w, r, goerr.Wrap(errNotFound, "notification not found", goerr.V("notification_id", id)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
