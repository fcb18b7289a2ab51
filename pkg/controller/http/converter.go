package http

import (
	"encoding/json"
	"time"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/offline"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
)

type eventResponse struct {
	ID            string               `json:"id"`
	EventName     string               `json:"eventName"`
	Type          string               `json:"type"`
	Format        string               `json:"format"`
	Description   string               `json:"description,omitempty"`
	StartDate     string               `json:"startDate"`
	EndDate       string               `json:"endDate"`
	Organizers    []string             `json:"organizers"`
	Status        string               `json:"status"`
	RequestedBy   string               `json:"requestedBy"`
	Participants  []string             `json:"participants"`
	Teams         []teamResponse       `json:"teams"`
	Submissions   []submissionResponse `json:"submissions"`
	Ratings       []ratingResponse     `json:"ratings"`
	Feedback      []feedbackResponse   `json:"feedback"`
	XPAwarded     bool                 `json:"xpAwarded"`
	CreatedAt     time.Time            `json:"createdAt"`
	LastUpdatedAt time.Time            `json:"lastUpdatedAt"`
	ClosedAt      *time.Time           `json:"closedAt,omitempty"`
}

type teamResponse struct {
	TeamName    string               `json:"teamName"`
	Members     []string             `json:"members"`
	Submissions []submissionResponse `json:"submissions"`
	Ratings     []ratingResponse     `json:"ratings"`
}

type ratingResponse struct {
	ID      string         `json:"id"`
	RatedBy string         `json:"ratedBy"`
	Target  string         `json:"target,omitempty"`
	Scores  map[string]int `json:"scores"`
	Comment string         `json:"comment,omitempty"`
	RatedAt time.Time      `json:"ratedAt"`
}

type submissionResponse struct {
	ID          string    `json:"id"`
	SubmittedBy string    `json:"submittedBy"`
	ProjectName string    `json:"projectName"`
	Link        string    `json:"link"`
	Description string    `json:"description,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type feedbackResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Score       int       `json:"score"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func toEventResponse(cal *model.Calendar, e *model.Event) *eventResponse {
	resp := &eventResponse{
		ID:            e.ID.String(),
		EventName:     e.Details.EventName,
		Type:          e.Details.Type,
		Format:        e.Details.Format.String(),
		Description:   e.Details.Description,
		StartDate:     cal.Format(e.Details.Date.Start),
		EndDate:       cal.Format(e.Details.Date.End),
		Organizers:    nonNil(e.Details.Organizers),
		Status:        e.Status.String(),
		RequestedBy:   e.RequestedBy,
		Participants:  nonNil(e.Participants),
		Teams:         make([]teamResponse, 0, len(e.Teams)),
		Submissions:   toSubmissionResponses(e.Submissions),
		Ratings:       toRatingResponses(e.Ratings),
		Feedback:      make([]feedbackResponse, 0, len(e.Feedback)),
		XPAwarded:     e.XPAwarded,
		CreatedAt:     e.CreatedAt,
		LastUpdatedAt: e.LastUpdatedAt,
		ClosedAt:      e.ClosedAt,
	}
	for _, t := range e.Teams {
		resp.Teams = append(resp.Teams, teamResponse{
			TeamName:    t.TeamName,
			Members:     nonNil(t.Members),
			Submissions: toSubmissionResponses(t.Submissions),
			Ratings:     toRatingResponses(t.Ratings),
		})
	}
	for _, f := range e.Feedback {
		resp.Feedback = append(resp.Feedback, feedbackResponse{
			ID:          f.ID,
			UserID:      f.UserID,
			Score:       f.Score,
			Comment:     f.Comment,
			SubmittedAt: f.SubmittedAt,
		})
	}
	return resp
}

func toEventResponses(cal *model.Calendar, events []*model.Event) []*eventResponse {
	out := make([]*eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(cal, e))
	}
	return out
}

func toSubmissionResponses(in []model.Submission) []submissionResponse {
	out := make([]submissionResponse, 0, len(in))
	for _, s := range in {
		out = append(out, submissionResponse{
			ID:          s.ID,
			SubmittedBy: s.SubmittedBy,
			ProjectName: s.ProjectName,
			Link:        s.Link,
			Description: s.Description,
			SubmittedAt: s.SubmittedAt,
		})
	}
	return out
}

func toRatingResponses(in []model.Rating) []ratingResponse {
	out := make([]ratingResponse, 0, len(in))
	for _, r := range in {
		out = append(out, ratingResponse{
			ID:      r.ID,
			RatedBy: r.RatedBy,
			Target:  r.Target,
			Scores:  r.Scores,
			Comment: r.Comment,
			RatedAt: r.RatedAt,
		})
	}
	return out
}

type conflictResponse struct {
	HasConflict          bool    `json:"hasConflict"`
	ConflictingEventID   string  `json:"conflictingEventId,omitempty"`
	ConflictingEventName string  `json:"conflictingEventName,omitempty"`
	NextAvailableDate    *string `json:"nextAvailableDate,omitempty"`
}

func toConflictResponse(cal *model.Calendar, c *model.DateConflict) *conflictResponse {
	resp := &conflictResponse{
		HasConflict:          c.HasConflict,
		ConflictingEventName: c.ConflictingEventName,
	}
	if c.ConflictingEvent != nil {
		resp.ConflictingEventID = c.ConflictingEvent.ID.String()
	}
	if c.NextAvailableDate != nil {
		next := cal.Format(*c.NextAvailableDate)
		resp.NextAvailableDate = &next
	}
	return resp
}

type queuedActionResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
	Retries   int             `json:"retries"`
	Error     string          `json:"error,omitempty"`
}

func toQueuedActionResponses(in []*model.QueuedAction) []queuedActionResponse {
	out := make([]queuedActionResponse, 0, len(in))
	for _, a := range in {
		out = append(out, toQueuedActionResponse(a))
	}
	return out
}

func toQueuedActionResponse(a *model.QueuedAction) queuedActionResponse {
	return queuedActionResponse{
		ID:        a.ID,
		Type:      a.Type.String(),
		Payload:   a.Payload,
		Timestamp: a.Timestamp,
		Retries:   a.Retries,
		Error:     a.Error,
	}
}

type queueResponse struct {
	Pending []queuedActionResponse `json:"pending"`
	Failed  []queuedActionResponse `json:"failed"`
}

type replayResponse struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	GivenUp   int `json:"givenUp"`
	Remaining int `json:"remaining"`
}

func toReplayResponse(r *offline.ReplayResult) *replayResponse {
	return &replayResponse{
		Attempted: r.Attempted,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
		GivenUp:   r.GivenUp,
		Remaining: r.Remaining,
	}
}

type actionResponse struct {
	Queued  bool                  `json:"queued"`
	Applied bool                  `json:"applied"`
	Action  *queuedActionResponse `json:"action,omitempty"`
}

func toActionResponse(r *usecase.ActionResult) *actionResponse {
	resp := &actionResponse{Queued: r.Queued, Applied: r.Applied}
	if r.Action != nil {
		a := toQueuedActionResponse(r.Action)
		resp.Action = &a
	}
	return resp
}

type networkResponse struct {
	Online            bool       `json:"online"`
	LastChecked       time.Time  `json:"lastChecked"`
	LastOnline        *time.Time `json:"lastOnline,omitempty"`
	LastOffline       *time.Time `json:"lastOffline,omitempty"`
	ReconnectAttempts int        `json:"reconnectAttempts"`
}

func toNetworkResponse(s model.NetworkStatus) *networkResponse {
	return &networkResponse{
		Online:            s.Online,
		LastChecked:       s.LastChecked,
		LastOnline:        s.LastOnline,
		LastOffline:       s.LastOffline,
		ReconnectAttempts: s.ReconnectAttempts,
	}
}

type notificationResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	DurationMs *int64    `json:"durationMs,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) notificationResponse {
	resp := notificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
	if n.Duration != nil {
		ms := n.Duration.Milliseconds()
		resp.DurationMs = &ms
	}
	return resp
}

func toNotificationResponses(in []model.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(in))
	for _, n := range in {
		out = append(out, toNotificationResponse(n))
	}
	return out
}

type draftResponse struct {
	Key     string          `json:"key"`
	Data    json.RawMessage `json:"data"`
	SavedAt time.Time       `json:"savedAt"`
}

func toDraftResponse(d *model.Draft) *draftResponse {
	return &draftResponse{
		Key:     d.Key.String(),
		Data:    d.Data,
		SavedAt: d.SavedAt,
	}
}

type xpHistoryResponse struct {
	EventID   string    `json:"eventId"`
	EventName string    `json:"eventName"`
	Role      string    `json:"role"`
	Points    int       `json:"points"`
	AwardedAt time.Time `json:"awardedAt"`
}

type userXpResponse struct {
	UserID            string              `json:"userId"`
	Fields            map[string]int      `json:"fields"`
	CountWins         int                 `json:"count_wins"`
	TotalCalculatedXp int                 `json:"totalCalculatedXp"`
	History           []xpHistoryResponse `json:"xpHistory"`
	LastUpdatedAt     time.Time           `json:"lastUpdatedAt"`
}

func toUserXpResponse(xp *model.UserXp) *userXpResponse {
	resp := &userXpResponse{
		UserID:            xp.UserID,
		Fields:            make(map[string]int, len(xp.Fields)),
		CountWins:         xp.CountWins,
		TotalCalculatedXp: xp.TotalCalculatedXp,
		History:           make([]xpHistoryResponse, 0, len(xp.History)),
		LastUpdatedAt:     xp.LastUpdatedAt,
	}
	for _, f := range types.AllXpRoleFields() {
		resp.Fields[string(f)] = xp.Fields[f]
	}
	for _, h := range xp.History {
		resp.History = append(resp.History, xpHistoryResponse{
			EventID:   h.EventID.String(),
			EventName: h.EventName,
			Role:      h.Role,
			Points:    h.Points,
			AwardedAt: h.AwardedAt,
		})
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
