package model_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
)

func TestDecodePayload(t *testing.T) {
	t.Run("valid rating", func(t *testing.T) {
		var in model.RatingInput
		err := model.DecodePayload(json.RawMessage(`{"eventId":"ev-1","teamName":"Team 1","scores":{"design":4}}`), &in)
		gt.NoError(t, err).Required()
		gt.Value(t, in.EventID).Equal(model.EventID("ev-1"))
		gt.Value(t, in.Scores["design"]).Equal(4)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		var in model.FeedbackInput
		err := model.DecodePayload(json.RawMessage(`{"eventId":"ev-1","score":3,"admin":true}`), &in)
		gt.Error(t, err).Is(model.ErrInvalidPayload)
	})

	t.Run("trailing data is rejected", func(t *testing.T) {
		var in model.FeedbackInput
		err := model.DecodePayload(json.RawMessage(`{"eventId":"ev-1","score":3}{}`), &in)
		gt.Error(t, err).Is(model.ErrInvalidPayload)
	})

	t.Run("out of range score", func(t *testing.T) {
		var in model.RatingInput
		err := model.DecodePayload(json.RawMessage(`{"eventId":"ev-1","target":"u1","scores":{"design":6}}`), &in)
		gt.Error(t, err).Is(model.ErrInvalidPayload)
	})

	t.Run("missing submission link", func(t *testing.T) {
		var in model.SubmissionInput
		err := model.DecodePayload(json.RawMessage(`{"eventId":"ev-1","projectName":"App"}`), &in)
		gt.Error(t, err).Is(model.ErrMissingRequiredInput)
	})
}

func TestQueuedActionClone(t *testing.T) {
	orig := &model.QueuedAction{ID: "a1", Payload: json.RawMessage(`{"x":1}`)}
	c := orig.Clone()
	c.Payload[0] = '['
	c.Retries = 3
	gt.Value(t, string(orig.Payload)).Equal(`{"x":1}`)
	gt.Value(t, orig.Retries).Equal(0)
}
