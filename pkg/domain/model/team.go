package model

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// MinTeamSize is the smallest team AutoGenerateTeams will create
const MinTeamSize = 2

// Shuffler permutes n elements through swap; rand.Shuffle satisfies it
type Shuffler func(n int, swap func(i, j int))

// AutoGenerateTeams splits participants into numberOfTeams balanced teams.
// Participants are de-duplicated, shuffled with a uniform Fisher-Yates permutation and dealt
// round-robin, so team sizes differ by at most one. maxTeams <= 0 disables the upper bound.
func AutoGenerateTeams(participants []string, numberOfTeams, maxTeams int) ([]Team, error) {
	return AutoGenerateTeamsWith(rand.Shuffle, participants, numberOfTeams, maxTeams)
}

// AutoGenerateTeamsWith is AutoGenerateTeams with an explicit shuffle source
func AutoGenerateTeamsWith(shuffle Shuffler, participants []string, numberOfTeams, maxTeams int) ([]Team, error) {
	if numberOfTeams <= 0 {
		return nil, goerr.Wrap(ErrInvalidTeamCount, "cannot generate teams",
			goerr.V("number_of_teams", numberOfTeams))
	}
	if maxTeams > 0 && numberOfTeams > maxTeams {
		return nil, goerr.Wrap(ErrTooManyTeams, "cannot generate teams",
			goerr.V("number_of_teams", numberOfTeams), goerr.V("max_teams", maxTeams))
	}

	pool := uniqueMembers(participants)
	if len(pool) < numberOfTeams*MinTeamSize {
		return nil, goerr.Wrap(ErrNotEnoughMembers, "cannot generate teams",
			goerr.V("participants", len(pool)),
			goerr.V("number_of_teams", numberOfTeams),
			goerr.V("min_team_size", MinTeamSize))
	}

	shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	teams := make([]Team, numberOfTeams)
	for i := range teams {
		teams[i] = Team{
			TeamName:    fmt.Sprintf("Team %d", i+1),
			Members:     make([]string, 0, len(pool)/numberOfTeams+1),
			Submissions: []Submission{},
			Ratings:     []Rating{},
		}
	}
	for i, member := range pool {
		idx := i % numberOfTeams
		teams[idx].Members = append(teams[idx].Members, member)
	}

	return teams, nil
}

func uniqueMembers(participants []string) []string {
	seen := make(map[string]struct{}, len(participants))
	pool := make([]string, 0, len(participants))
	for _, p := range participants {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		pool = append(pool, p)
	}
	return pool
}
