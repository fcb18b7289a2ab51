package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model/auth"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/draft"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/offline"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/errutil"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

const maxRequestBodySize = 1 << 20

var (
	errBadRequest = goerr.New("bad request")
	errNotFound   = goerr.New("not found")
)

type errorResponse struct {
	Error string `json:"error"`
}

type dateConflictErrorResponse struct {
	Error             string `json:"error"`
	ConflictingEvent  any    `json:"conflictingEvent,omitempty"`
	NextAvailableDate any    `json:"nextAvailableDate,omitempty"`
}

var statusByError = []struct {
	err    error
	status int
}{
	{usecase.ErrUnauthenticated, http.StatusUnauthorized},
	{auth.ErrNoUser, http.StatusUnauthorized},
	{usecase.ErrAccessDenied, http.StatusForbidden},
	{usecase.ErrOwnTeamRating, http.StatusForbidden},
	{usecase.ErrEventNotFound, http.StatusNotFound},
	{usecase.ErrTeamNotFound, http.StatusNotFound},
	{draft.ErrNotFound, http.StatusNotFound},
	{usecase.ErrQueuedActionNotFound, http.StatusNotFound},
	{errNotFound, http.StatusNotFound},
	{usecase.ErrDateConflict, http.StatusConflict},
	{usecase.ErrInvalidTransition, http.StatusConflict},
	{usecase.ErrEventNotOpen, http.StatusConflict},
	{usecase.ErrXpAlreadyAwarded, http.StatusConflict},
	{usecase.ErrNotTeamEvent, http.StatusConflict},
	{usecase.ErrNotParticipant, http.StatusConflict},
	{usecase.ErrOffline, http.StatusConflict},
	{usecase.ErrOfflineUnsupported, http.StatusConflict},
	{offline.ErrReplayInProgress, http.StatusConflict},
	{errBadRequest, http.StatusBadRequest},
	{model.ErrInvalidPayload, http.StatusBadRequest},
	{model.ErrMissingRequiredInput, http.StatusBadRequest},
	{model.ErrInvalidDate, http.StatusBadRequest},
	{model.ErrInvalidDateRange, http.StatusBadRequest},
	{model.ErrInvalidTeamCount, http.StatusBadRequest},
	{model.ErrTooManyTeams, http.StatusBadRequest},
	{model.ErrNotEnoughMembers, http.StatusBadRequest},
	{model.ErrXpBatchTooLarge, http.StatusBadRequest},
	{model.ErrXpBatchMissingEvent, http.StatusBadRequest},
	{draft.ErrInvalidKey, http.StatusBadRequest},
	{draft.ErrInvalidData, http.StatusBadRequest},
}

func statusOf(err error) int {
	for _, s := range statusByError {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// writeError maps err to a status code. Client errors are answered with a JSON body and
// logged at warn level; server errors go through errutil.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		errutil.HandleHTTP(r.Context(), w, err, status)
		return
	}

	logging.From(r.Context()).Warn("request rejected", "status", status, "error", err.Error())

	if errors.Is(err, usecase.ErrDateConflict) {
		resp := dateConflictErrorResponse{Error: err.Error()}
		var ge *goerr.Error
		if errors.As(err, &ge) {
			values := ge.Values()
			resp.ConflictingEvent = values["conflicting_event"]
			resp.NextAvailableDate = values["next_available_date"]
		}
		writeJSON(w, r, status, resp)
		return
	}

	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// decodeJSON strictly decodes the request body into dst
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		return goerr.Wrap(errBadRequest, "failed to read request body", goerr.V("cause", err.Error()))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return goerr.Wrap(errBadRequest, "invalid request body", goerr.V("cause", err.Error()))
	}
	return nil
}

func currentUser(r *http.Request) (*auth.User, error) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		return nil, goerr.Wrap(usecase.ErrUnauthenticated, "no user in request")
	}
	return user, nil
}
