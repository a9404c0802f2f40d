/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package physics

// WinningPosition is the square a team must reach to win.
const WinningPosition = 38

// Board is the shared progress track. It is persisted under the "board" key.
type Board struct {
	Team1Position int `json:"team1Position"`
	Team2Position int `json:"team2Position"`
}

func (b Board) Position(team int) int {
	if team == 2 {
		return b.Team2Position
	}
	return b.Team1Position
}

func (b *Board) move(team, delta int) int {
	pos := &b.Team1Position
	if team == 2 {
		pos = &b.Team2Position
	}

	*pos = max(*pos+delta, 0)

	return *pos
}

// Winner reports the first team at or past WinningPosition. Team 1 is
// checked first, so it wins a tie.
func Winner(b Board) (int, bool) {
	switch {
	case b.Team1Position >= WinningPosition:
		return 1, true
	case b.Team2Position >= WinningPosition:
		return 2, true
	}
	return 0, false
}

// Progress converts a board position into a percentage of the track.
func Progress(position int) float64 {
	p := float64(position) / WinningPosition * 100
	return min(max(p, 0), 100)
}

// TeamScore is one row of the score table.
type TeamScore struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

func (s TeamScore) Get(team int) int {
	if team == 2 {
		return s.Team2
	}
	return s.Team1
}

// Scores is the per-category tally. It is persisted under the "scores" key.
type Scores struct {
	Symbols   TeamScore `json:"symbols"`
	Drawing   TeamScore `json:"drawing"`
	Questions TeamScore `json:"questions"`
	Taboo     TeamScore `json:"taboo"`
}

func (s *Scores) row(id CategoryID) *TeamScore {
	switch id {
	case Symbols:
		return &s.Symbols
	case Drawing:
		return &s.Drawing
	case Questions:
		return &s.Questions
	case Taboo:
		return &s.Taboo
	}
	return nil
}

// Get returns the score of team in category id.
func (s Scores) Get(id CategoryID, team int) int {
	row := s.row(id)
	if row == nil {
		return 0
	}
	return row.Get(team)
}

func (s *Scores) adjust(id CategoryID, team, delta int) {
	row := s.row(id)
	if row == nil {
		return
	}

	cell := &row.Team1
	if team == 2 {
		cell = &row.Team2
	}

	*cell = max(*cell+delta, 0)
}
