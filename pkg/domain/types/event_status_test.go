package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

func TestEventStatus_IsValid(t *testing.T) {
	for _, s := range types.AllEventStatuses() {
		t.Run(s.String(), func(t *testing.T) {
			gt.Bool(t, s.IsValid()).True()
		})
	}

	gt.Bool(t, types.EventStatus("").IsValid()).False()
	gt.Bool(t, types.EventStatus("approved").IsValid()).False()
}

func TestEventStatus_IsActive(t *testing.T) {
	tests := []struct {
		status types.EventStatus
		want   bool
	}{
		{types.EventStatusPending, false},
		{types.EventStatusApproved, true},
		{types.EventStatusInProgress, true},
		{types.EventStatusCompleted, true},
		{types.EventStatusCancelled, false},
		{types.EventStatusRejected, false},
		{types.EventStatusClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			gt.Value(t, tt.status.IsActive()).Equal(tt.want)
		})
	}

	gt.Array(t, types.ActiveEventStatuses()).Length(3)
}

func TestEventStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from types.EventStatus
		to   types.EventStatus
		want bool
	}{
		{"pending to approved", types.EventStatusPending, types.EventStatusApproved, true},
		{"pending to rejected", types.EventStatusPending, types.EventStatusRejected, true},
		{"approved to in progress", types.EventStatusApproved, types.EventStatusInProgress, true},
		{"in progress to completed", types.EventStatusInProgress, types.EventStatusCompleted, true},
		{"completed to closed", types.EventStatusCompleted, types.EventStatusClosed, true},
		{"pending to closed", types.EventStatusPending, types.EventStatusClosed, false},
		{"closed to pending", types.EventStatusClosed, types.EventStatusPending, false},
		{"rejected to approved", types.EventStatusRejected, types.EventStatusApproved, false},
		{"completed to in progress", types.EventStatusCompleted, types.EventStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.from.CanTransitionTo(tt.to)).Equal(tt.want)
		})
	}
}

func TestParseEventStatus(t *testing.T) {
	s, err := types.ParseEventStatus("InProgress")
	gt.NoError(t, err).Required()
	gt.Value(t, s).Equal(types.EventStatusInProgress)

	_, err = types.ParseEventStatus("unknown")
	gt.Value(t, err).NotNil()
}
