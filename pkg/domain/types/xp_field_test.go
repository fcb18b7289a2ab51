package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

func TestXpField_Role(t *testing.T) {
	tests := []struct {
		field types.XpField
		role  string
	}{
		{types.XpFieldOrganizer, "organizer"},
		{types.XpFieldProblemSolver, "problemSolver"},
		{types.XpFieldParticipation, "participation"},
	}

	for _, tt := range tests {
		t.Run(tt.field.String(), func(t *testing.T) {
			gt.Value(t, tt.field.Role()).Equal(tt.role)
			gt.Bool(t, tt.field.IsRole()).True()
		})
	}
}

func TestXpField_IsValid(t *testing.T) {
	gt.Bool(t, types.XpFieldCountWins.IsValid()).True()
	gt.Bool(t, types.XpFieldCountWins.IsRole()).False()
	gt.Bool(t, types.XpField("xp_unknown").IsValid()).False()
	gt.Array(t, types.AllXpRoleFields()).Length(6)
}
