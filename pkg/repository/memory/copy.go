package memory

import (
	"maps"
	"slices"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
)

func copyRating(r model.Rating) model.Rating {
	r.Scores = maps.Clone(r.Scores)
	return r
}

func copyRatings(rs []model.Rating) []model.Rating {
	if rs == nil {
		return nil
	}
	out := make([]model.Rating, len(rs))
	for i, r := range rs {
		out[i] = copyRating(r)
	}
	return out
}

func copyTeam(t model.Team) model.Team {
	return model.Team{
		TeamName:    t.TeamName,
		Members:     slices.Clone(t.Members),
		Submissions: slices.Clone(t.Submissions),
		Ratings:     copyRatings(t.Ratings),
	}
}

// copyEvent creates a deep copy of an event
func copyEvent(e *model.Event) *model.Event {
	c := *e
	c.Details.Organizers = slices.Clone(e.Details.Organizers)
	c.Participants = slices.Clone(e.Participants)
	c.Submissions = slices.Clone(e.Submissions)
	c.Ratings = copyRatings(e.Ratings)
	c.Feedback = slices.Clone(e.Feedback)
	if e.Teams != nil {
		c.Teams = make([]model.Team, len(e.Teams))
		for i, t := range e.Teams {
			c.Teams[i] = copyTeam(t)
		}
	}
	if e.ClosedAt != nil {
		closedAt := *e.ClosedAt
		c.ClosedAt = &closedAt
	}
	return &c
}

func copyUserXp(x *model.UserXp) *model.UserXp {
	c := *x
	c.Fields = maps.Clone(x.Fields)
	c.History = slices.Clone(x.History)
	return &c
}
