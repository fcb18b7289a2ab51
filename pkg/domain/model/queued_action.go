package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

// QueuedAction is a mutating operation captured while offline and replayed later
type QueuedAction struct {
	ID        string
	Type      types.ActionType
	Payload   json.RawMessage
	Timestamp time.Time
	Retries   int
	Error     string
}

// NewQueuedActionID generates a unique ID for a captured action
func NewQueuedActionID() string {
	return uuid.New().String()
}

// Clone returns a deep copy so callers cannot mutate queue state
func (a *QueuedAction) Clone() *QueuedAction {
	c := *a
	if a.Payload != nil {
		c.Payload = append(json.RawMessage(nil), a.Payload...)
	}
	return &c
}

// DecodePayload strictly decodes raw into dst, rejecting unknown fields and trailing data
func DecodePayload(raw json.RawMessage, dst interface{ Validate() error }) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return goerr.Wrap(ErrInvalidPayload, "failed to decode payload", goerr.V("cause", err.Error()))
	}
	if dec.More() {
		return goerr.Wrap(ErrInvalidPayload, "unexpected data after payload")
	}
	return dst.Validate()
}

// RatingInput is the payload of a submitRating action
type RatingInput struct {
	EventID  EventID        `json:"eventId"`
	TeamName string         `json:"teamName,omitempty"`
	Target   string         `json:"target,omitempty"`
	Scores   map[string]int `json:"scores"`
	Comment  string         `json:"comment,omitempty"`
}

// Validate checks the rating input
func (in *RatingInput) Validate() error {
	if in.EventID == "" {
		return goerr.Wrap(ErrMissingRequiredInput, "eventId is required")
	}
	if in.TeamName == "" && in.Target == "" {
		return goerr.Wrap(ErrMissingRequiredInput, "teamName or target is required", goerr.V(EventIDKey, in.EventID))
	}
	if len(in.Scores) == 0 {
		return goerr.Wrap(ErrMissingRequiredInput, "at least one score is required", goerr.V(EventIDKey, in.EventID))
	}
	for criterion, score := range in.Scores {
		if score < 1 || score > 5 {
			return goerr.Wrap(ErrInvalidPayload, "score must be between 1 and 5",
				goerr.V("criterion", criterion), goerr.V("score", score))
		}
	}
	return nil
}

// SubmissionInput is the payload of a createSubmission action
type SubmissionInput struct {
	EventID     EventID `json:"eventId"`
	TeamName    string  `json:"teamName,omitempty"`
	ProjectName string  `json:"projectName"`
	Link        string  `json:"link"`
	Description string  `json:"description,omitempty"`
}

// Validate checks the submission input
func (in *SubmissionInput) Validate() error {
	if in.EventID == "" {
		return goerr.Wrap(ErrMissingRequiredInput, "eventId is required")
	}
	if strings.TrimSpace(in.ProjectName) == "" {
		return goerr.Wrap(ErrMissingRequiredInput, "projectName is required", goerr.V(EventIDKey, in.EventID))
	}
	if strings.TrimSpace(in.Link) == "" {
		return goerr.Wrap(ErrMissingRequiredInput, "link is required", goerr.V(EventIDKey, in.EventID))
	}
	return nil
}

// FeedbackInput is the payload of a submitFeedback action
type FeedbackInput struct {
	EventID EventID `json:"eventId"`
	Score   int     `json:"score"`
	Comment string  `json:"comment,omitempty"`
}

// Validate checks the feedback input
func (in *FeedbackInput) Validate() error {
	if in.EventID == "" {
		return goerr.Wrap(ErrMissingRequiredInput, "eventId is required")
	}
	if in.Score < 1 || in.Score > 5 {
		return goerr.Wrap(ErrInvalidPayload, "score must be between 1 and 5", goerr.V("score", in.Score))
	}
	return nil
}

// OfflinePayload wraps an action input with the user who performed it.
// The queue stores this envelope so replay acts on behalf of the original user.
type OfflinePayload struct {
	UserID string          `json:"userId"`
	Input  json.RawMessage `json:"input"`
}

// Validate checks the envelope
func (p *OfflinePayload) Validate() error {
	if p.UserID == "" {
		return goerr.Wrap(ErrMissingRequiredInput, "userId is required")
	}
	if len(p.Input) == 0 {
		return goerr.Wrap(ErrMissingRequiredInput, "input is required")
	}
	return nil
}
