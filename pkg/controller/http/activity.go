package http

import (
	"net/http"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
)

type ratingRequest struct {
	TeamName string         `json:"teamName,omitempty"`
	Target   string         `json:"target,omitempty"`
	Scores   map[string]int `json:"scores"`
	Comment  string         `json:"comment,omitempty"`
}

type submissionRequest struct {
	TeamName    string `json:"teamName,omitempty"`
	ProjectName string `json:"projectName"`
	Link        string `json:"link"`
	Description string `json:"description,omitempty"`
}

type feedbackRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment,omitempty"`
}

// actionStatus is 202 when the action was queued, 201 when it was stored and 200 when it
// had already been stored
func actionStatus(result *usecase.ActionResult) int {
	switch {
	case result.Queued:
		return http.StatusAccepted
	case result.Applied:
		return http.StatusCreated
	default:
		return http.StatusOK
	}
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.uc.Activity.SubmitRating(r.Context(), user.ID, &model.RatingInput{
		EventID:  eventIDParam(r),
		TeamName: req.TeamName,
		Target:   req.Target,
		Scores:   req.Scores,
		Comment:  req.Comment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, actionStatus(result), toActionResponse(result))
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req submissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.uc.Activity.CreateSubmission(r.Context(), user.ID, &model.SubmissionInput{
		EventID:     eventIDParam(r),
		TeamName:    req.TeamName,
		ProjectName: req.ProjectName,
		Link:        req.Link,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, actionStatus(result), toActionResponse(result))
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.uc.Activity.SubmitFeedback(r.Context(), user.ID, &model.FeedbackInput{
		EventID: eventIDParam(r),
		Score:   req.Score,
		Comment: req.Comment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, actionStatus(result), toActionResponse(result))
}
