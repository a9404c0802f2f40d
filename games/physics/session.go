/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package physics

type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhasePlaying  Phase = "playing"
	PhasePaused   Phase = "paused"
	PhaseFinished Phase = "finished"
)

// Session is the whole game state. Only Store mutates it; everyone else
// receives copies through Snapshot.
type Session struct {
	Category    CategoryID `json:"category"`
	CardIndex   int        `json:"cardIndex"`
	ActiveTeam  int        `json:"activeTeam"`
	Phase       Phase      `json:"phase"`
	Remaining   int        `json:"remaining"`
	Limit       int        `json:"limit"`
	Board       Board      `json:"board"`
	Scores      Scores     `json:"scores"`
	CanvasEpoch int        `json:"canvasEpoch"`
	Teams       Teams      `json:"teams"`
}

func newSession(category CategoryID, teams Teams) Session {
	seconds := DefaultSeconds(category)

	return Session{
		Category:   category,
		ActiveTeam: 1,
		Phase:      PhaseSetup,
		Remaining:  seconds,
		Limit:      seconds,
		Teams:      teams.clone(),
	}
}

func (s Session) clone() Session {
	s.Teams = s.Teams.clone()
	return s
}

// TimeProgress is the elapsed share of the current round, in percent.
func (s Session) TimeProgress() float64 {
	if s.Limit <= 0 {
		return 0
	}
	return float64(s.Limit-s.Remaining) / float64(s.Limit) * 100
}
