/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package physics

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTeams = errors.New("invalid teams")

type Player struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Class   string `json:"class,omitempty"`
	School  string `json:"school,omitempty"`
}

type Team struct {
	Name    string   `json:"name"`
	Players []Player `json:"players"`
}

// Teams holds team 1 at index 0 and team 2 at index 1.
type Teams [2]Team

// ValidateTeams checks that both teams are named and have at least one
// fully named player.
func ValidateTeams(teams Teams) error {
	for i, t := range teams {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: team %d has no name", ErrInvalidTeams, i+1)
		}

		players := 0
		for _, p := range t.Players {
			if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Surname) == "" {
				return fmt.Errorf("%w: team %d has a player without a full name", ErrInvalidTeams, i+1)
			}
			players++
		}

		if players == 0 {
			return fmt.Errorf("%w: team %d has no players", ErrInvalidTeams, i+1)
		}
	}

	return nil
}

func (t Teams) clone() Teams {
	var out Teams
	for i, team := range t {
		out[i] = Team{Name: team.Name, Players: append([]Player(nil), team.Players...)}
	}
	return out
}

// Name returns the display label of team n, falling back to a generic label.
func (t Teams) Name(n int) string {
	if n != 1 && n != 2 {
		return "Unknown team"
	}
	if name := strings.TrimSpace(t[n-1].Name); name != "" {
		return name
	}
	return fmt.Sprintf("Team %d", n)
}
