package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

type requestEventRequest struct {
	EventName   string   `json:"eventName"`
	Type        string   `json:"type"`
	Format      string   `json:"format"`
	Description string   `json:"description,omitempty"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Organizers  []string `json:"organizers,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type generateTeamsRequest struct {
	NumberOfTeams int `json:"numberOfTeams"`
}

type closeEventRequest struct {
	Xp map[string]map[string]int `json:"xp"`
}

func eventIDParam(r *http.Request) model.EventID {
	return model.EventID(chi.URLParam(r, "eventID"))
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	var statuses []types.EventStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := types.ParseEventStatus(strings.TrimSpace(part))
			if err != nil {
				writeError(w, r, goerr.Wrap(errBadRequest, err.Error()))
				return
			}
			statuses = append(statuses, status)
		}
	}

	events, err := s.uc.Event.ListEvents(r.Context(), statuses...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponses(s.uc.Calendar(), events))
}

func (s *Server) handleRequestEvent(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req requestEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cal := s.uc.Calendar()
	start, err := cal.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := cal.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := s.uc.Event.RequestEvent(r.Context(), user.ID, model.EventDetails{
		EventName:   req.EventName,
		Type:        req.Type,
		Format:      types.EventFormat(req.Format),
		Description: req.Description,
		Date:        model.EventDate{Start: start, End: end},
		Organizers:  req.Organizers,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toEventResponse(cal, event))
}

func (s *Server) handleCheckConflict(w http.ResponseWriter, r *http.Request) {
	cal := s.uc.Calendar()
	q := r.URL.Query()

	start, err := cal.ParseDate(q.Get("start"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := cal.ParseDate(q.Get("end"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	conflict, err := s.uc.Event.CheckDateConflict(r.Context(), start, end, model.EventID(q.Get("exclude")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toConflictResponse(cal, conflict))
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.uc.Event.GetEvent(r.Context(), eventIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponse(s.uc.Calendar(), event))
}

func (s *Server) handleJoinEvent(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := s.uc.Event.JoinEvent(r.Context(), user.ID, eventIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponse(s.uc.Calendar(), event))
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	status, err := types.ParseEventStatus(req.Status)
	if err != nil {
		writeError(w, r, goerr.Wrap(errBadRequest, err.Error()))
		return
	}

	event, err := s.uc.Event.UpdateStatus(r.Context(), user.ID, eventIDParam(r), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponse(s.uc.Calendar(), event))
}

func (s *Server) handleGenerateTeams(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req generateTeamsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	event, err := s.uc.Event.GenerateTeams(r.Context(), user.ID, eventIDParam(r), req.NumberOfTeams)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponse(s.uc.Calendar(), event))
}

func (s *Server) handleCloseEvent(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req closeEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	changes := make(map[string]model.XpFieldUpdates, len(req.Xp))
	for userID, fields := range req.Xp {
		updates := make(model.XpFieldUpdates, len(fields))
		for field, points := range fields {
			updates[types.XpField(field)] = points
		}
		changes[userID] = updates
	}

	event, err := s.uc.Xp.CloseEvent(r.Context(), user.ID, eventIDParam(r), changes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEventResponse(s.uc.Calendar(), event))
}
