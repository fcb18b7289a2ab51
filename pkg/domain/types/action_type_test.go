package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

func TestActionType_IsValid(t *testing.T) {
	tests := []struct {
		name string
		in   types.ActionType
		want bool
	}{
		{"submit rating", types.ActionTypeSubmitRating, true},
		{"create submission", types.ActionTypeCreateSubmission, true},
		{"submit feedback", types.ActionTypeSubmitFeedback, true},
		{"join event is not replayable", types.ActionType("joinEvent"), false},
		{"empty", types.ActionType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.in.IsValid()).Equal(tt.want)
		})
	}
}

func TestParseActionType(t *testing.T) {
	at, err := types.ParseActionType("submitFeedback")
	gt.NoError(t, err).Required()
	gt.Value(t, at).Equal(types.ActionTypeSubmitFeedback)

	_, err = types.ParseActionType("deleteEvent")
	gt.Value(t, err).NotNil()
}
