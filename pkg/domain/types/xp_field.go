package types

import "strings"

// XpField is a per-user counter field. Role fields carry the "xp_" prefix.
type XpField string

const xpRolePrefix = "xp_"

const (
	XpFieldDeveloper     XpField = "xp_developer"
	XpFieldPresenter     XpField = "xp_presenter"
	XpFieldDesigner      XpField = "xp_designer"
	XpFieldProblemSolver XpField = "xp_problemSolver"
	XpFieldOrganizer     XpField = "xp_organizer"
	XpFieldParticipation XpField = "xp_participation"

	// XpFieldCountWins counts event wins; it is not a role and does not add to the XP total
	XpFieldCountWins XpField = "count_wins"
)

// AllXpRoleFields returns the role-keyed XP fields
func AllXpRoleFields() []XpField {
	return []XpField{
		XpFieldDeveloper,
		XpFieldPresenter,
		XpFieldDesigner,
		XpFieldProblemSolver,
		XpFieldOrganizer,
		XpFieldParticipation,
	}
}

// IsRole reports whether the field is one of the role-keyed XP fields
func (f XpField) IsRole() bool {
	switch f {
	case XpFieldDeveloper,
		XpFieldPresenter,
		XpFieldDesigner,
		XpFieldProblemSolver,
		XpFieldOrganizer,
		XpFieldParticipation:
		return true
	default:
		return false
	}
}

// IsValid checks if the field is a role field or the win counter
func (f XpField) IsValid() bool {
	return f.IsRole() || f == XpFieldCountWins
}

// Role returns the role name without the "xp_" prefix, e.g. "organizer"
func (f XpField) Role() string {
	return strings.TrimPrefix(string(f), xpRolePrefix)
}

// String returns the string representation of the field
func (f XpField) String() string {
	return string(f)
}
