/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package physics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
	deletes [][]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string][]byte)}
}

func (f *fakeStorage) Load(_ context.Context, key string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (f *fakeStorage) Save(_ context.Context, key string, value []byte) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, keys ...string) error {
	f.deletes = append(f.deletes, keys)
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStorage) put(t *testing.T, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f.data[key] = data
}

func testDecks() Decks {
	return Decks{
		Symbols: {
			SymbolCard{Concept: "Kuvvet", Kind: KindSymbol, Answer: "F"},
			SymbolCard{Concept: "Kuvvet", Kind: KindUnit, Answer: "Newton (N)"},
			SymbolCard{Concept: "Kütle", Kind: KindSymbol, Answer: "m"},
		},
		Drawing: {
			DrawingCard{Concept: "Makara"},
			DrawingCard{Concept: "Teleskop"},
		},
		Questions: {
			QuestionCard{Question: "Kuvvetin birimi nedir?", Answer: "Newton (N)"},
			QuestionCard{Question: "Enerjinin birimi nedir?", Answer: "Joule (J)"},
			QuestionCard{Question: "Basıncın birimi nedir?", Answer: "Pascal (Pa)"},
			QuestionCard{Question: "Frekansın birimi nedir?", Answer: "Hertz (Hz)"},
		},
		Taboo: {
			TabooCard{Concept: "Atom", Forbidden: []string{"Elektron", "Proton"}},
			TabooCard{Concept: "Güneş", Forbidden: []string{"Yıldız", "Işık"}},
		},
	}
}

func testTeams() Teams {
	return Teams{
		{Name: "Fizik Kahramanları", Players: []Player{{Name: "Ada", Surname: "Yılmaz"}}},
		{Name: "Enerji Savaşçıları", Players: []Player{{Name: "Can", Surname: "Demir"}}},
	}
}

func newTestEngine(t *testing.T, category CategoryID, st *fakeStorage) *Engine {
	t.Helper()

	opts := Options{Decks: testDecks(), Category: category, Teams: testTeams()}
	if st != nil {
		opts.Storage = st
	}

	e, err := New(context.Background(), opts)
	require.NoError(t, err)

	return e
}

func TestNewRejectsUnknownCategory(t *testing.T) {
	_, err := New(context.Background(), Options{Category: "chemistry"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestNewSessionDefaults(t *testing.T) {
	e := newTestEngine(t, Drawing, nil)

	s := e.Snapshot()
	assert.Equal(t, Drawing, s.Category)
	assert.Equal(t, 0, s.CardIndex)
	assert.Equal(t, 1, s.ActiveTeam)
	assert.Equal(t, PhaseSetup, s.Phase)
	assert.Equal(t, 120, s.Remaining)
	assert.Equal(t, Board{}, s.Board)
	assert.Equal(t, Scores{}, s.Scores)
	assert.False(t, e.Ticking())
}

func TestCorrectMovesActiveTeam(t *testing.T) {
	st := newFakeStorage()
	st.put(t, BoardKey, Board{Team1Position: 4, Team2Position: 2})

	e := newTestEngine(t, Questions, st)
	e.Start()

	for n := 0; n < 5; n++ {
		e.Correct()
	}

	s := e.Snapshot()
	assert.Equal(t, 9, s.Board.Team1Position)
	assert.Equal(t, 2, s.Board.Team2Position)
	assert.Equal(t, 5, s.Scores.Questions.Team1)
	assert.Equal(t, 0, s.Scores.Questions.Team2)
	assert.Equal(t, 5%4, s.CardIndex)
	assert.Equal(t, PhasePlaying, s.Phase)
}

func TestCorrectReachingWinningPositionFinishes(t *testing.T) {
	st := newFakeStorage()
	st.put(t, BoardKey, Board{Team1Position: 37, Team2Position: 20})

	e := newTestEngine(t, Questions, st)
	e.Start()
	require.True(t, e.Ticking())

	e.Correct()

	s := e.Snapshot()
	assert.Equal(t, WinningPosition, s.Board.Team1Position)
	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, 0, s.CardIndex, "the winning answer does not draw another card")
	assert.False(t, e.Ticking())

	winner, ok := e.Winner()
	assert.True(t, ok)
	assert.Equal(t, 1, winner)

	e.Correct()
	e.Start()
	assert.Equal(t, WinningPosition, e.Snapshot().Board.Team1Position)
	assert.Equal(t, PhaseFinished, e.Snapshot().Phase)
}

func TestCorrectNeverPassesWinningPosition(t *testing.T) {
	for initial := 30; initial < WinningPosition; initial++ {
		st := newFakeStorage()
		st.put(t, BoardKey, Board{Team1Position: initial})

		e := newTestEngine(t, Symbols, st)
		e.Start()

		for n := 0; n < 20; n++ {
			e.Correct()
		}

		s := e.Snapshot()
		assert.Equal(t, min(initial+20, WinningPosition), s.Board.Team1Position)
		assert.Equal(t, WinningPosition-initial, s.Scores.Symbols.Team1)
	}
}

func TestWrongInTabooCostsAPointAndASquare(t *testing.T) {
	st := newFakeStorage()
	st.put(t, BoardKey, Board{Team1Position: 3})
	st.put(t, ScoresKey, Scores{Taboo: TeamScore{Team1: 2}})

	e := newTestEngine(t, Taboo, st)
	e.Start()

	want := []struct{ position, score int }{{2, 1}, {1, 0}, {0, 0}, {0, 0}}
	for i, w := range want {
		e.Wrong()

		s := e.Snapshot()
		assert.Equal(t, w.position, s.Board.Team1Position, "call %d", i+1)
		assert.Equal(t, w.score, s.Scores.Taboo.Team1, "call %d", i+1)
	}
}

func TestWrongInTabooAtZeroStillAdvances(t *testing.T) {
	e := newTestEngine(t, Taboo, newFakeStorage())
	e.SwitchTeam()
	e.Start()

	e.Wrong()

	s := e.Snapshot()
	assert.Equal(t, 2, s.ActiveTeam)
	assert.Equal(t, 0, s.Board.Team2Position)
	assert.Equal(t, 0, s.Scores.Taboo.Team2)
	assert.Equal(t, 1, s.CardIndex)
}

func TestWrongOutsideTabooOnlyAdvances(t *testing.T) {
	for _, id := range []CategoryID{Symbols, Drawing, Questions} {
		t.Run(string(id), func(t *testing.T) {
			st := newFakeStorage()
			st.put(t, BoardKey, Board{Team1Position: 5, Team2Position: 6})
			st.put(t, ScoresKey, Scores{Symbols: TeamScore{1, 1}, Drawing: TeamScore{2, 2}, Questions: TeamScore{3, 3}})

			e := newTestEngine(t, id, st)
			before := e.Snapshot()

			e.Start()
			e.Wrong()

			after := e.Snapshot()
			assert.Equal(t, before.Board, after.Board)
			assert.Equal(t, before.Scores, after.Scores)
			assert.Equal(t, 1, after.CardIndex)
		})
	}
}

func TestSkipWrapsAroundDeck(t *testing.T) {
	decks := testDecks()

	for _, c := range Categories() {
		t.Run(string(c.ID), func(t *testing.T) {
			e := newTestEngine(t, c.ID, nil)
			e.Start()
			e.Skip()

			start := e.Snapshot().CardIndex
			for n := 0; n < len(decks[c.ID]); n++ {
				e.Skip()
			}

			assert.Equal(t, start, e.Snapshot().CardIndex)
			assert.Equal(t, Scores{}, e.Snapshot().Scores)
		})
	}
}

func TestActionsIgnoredUnlessPlaying(t *testing.T) {
	e := newTestEngine(t, Taboo, newFakeStorage())

	check := func(phase Phase) {
		t.Helper()
		require.Equal(t, phase, e.Snapshot().Phase)

		before := e.Snapshot()
		e.Correct()
		e.Wrong()
		e.Skip()
		assert.Equal(t, before, e.Snapshot())
	}

	check(PhaseSetup)

	e.Start()
	e.Pause()
	check(PhasePaused)
}

func TestSwitchTeamResetsRound(t *testing.T) {
	e := newTestEngine(t, Symbols, nil)
	e.Start()
	e.Tick()
	e.Correct()

	e.SwitchTeam()

	s := e.Snapshot()
	assert.Equal(t, 2, s.ActiveTeam)
	assert.Equal(t, PhaseSetup, s.Phase)
	assert.Equal(t, 30, s.Remaining)
	assert.Equal(t, 1, s.Board.Team1Position)
	assert.Equal(t, 1, s.Scores.Symbols.Team1)

	e.SwitchTeam()
	assert.Equal(t, 1, e.Snapshot().ActiveTeam)
}

func TestChangeCategoryKeepsBoardAndScores(t *testing.T) {
	e := newTestEngine(t, Questions, newFakeStorage())
	e.Start()
	e.Correct()
	e.Correct()
	e.Tick()

	before := e.Snapshot()
	require.NoError(t, e.ChangeCategory(Drawing))

	s := e.Snapshot()
	assert.Equal(t, Drawing, s.Category)
	assert.Equal(t, 0, s.CardIndex)
	assert.Equal(t, PhaseSetup, s.Phase)
	assert.Equal(t, 120, s.Remaining)
	assert.Equal(t, before.Board, s.Board)
	assert.Equal(t, before.Scores, s.Scores)
	assert.Equal(t, before.ActiveTeam, s.ActiveTeam)
	assert.Greater(t, s.CanvasEpoch, before.CanvasEpoch)
}

func TestChangeCategoryRejectsUnknown(t *testing.T) {
	e := newTestEngine(t, Questions, nil)

	before := e.Snapshot()
	err := e.ChangeCategory("astronomy")

	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, before, e.Snapshot())
}

func TestResetClearsEverything(t *testing.T) {
	st := newFakeStorage()
	st.put(t, BoardKey, Board{Team1Position: 20, Team2Position: 38})
	st.put(t, ScoresKey, Scores{Taboo: TeamScore{Team1: 4, Team2: 9}})

	e := newTestEngine(t, Taboo, st)
	require.Equal(t, PhaseFinished, e.Snapshot().Phase)
	e.SwitchTeam()

	e.Reset()

	s := e.Snapshot()
	assert.Equal(t, Board{}, s.Board)
	assert.Equal(t, Scores{}, s.Scores)
	assert.Equal(t, 0, s.CardIndex)
	assert.Equal(t, 1, s.ActiveTeam)
	assert.Equal(t, PhaseSetup, s.Phase)
	assert.Equal(t, 60, s.Remaining)

	require.NotEmpty(t, st.deletes)
	assert.ElementsMatch(t, []string{BoardKey, ScoresKey}, st.deletes[len(st.deletes)-1])
	assert.Empty(t, st.data)
}

func TestBackRewindsAndHalts(t *testing.T) {
	e := newTestEngine(t, Questions, nil)
	e.Start()
	e.Skip()
	e.Skip()

	e.Back()

	s := e.Snapshot()
	assert.Equal(t, 0, s.CardIndex)
	assert.Equal(t, PhaseSetup, s.Phase)
	assert.False(t, e.Ticking())
}

func TestEmptyDeck(t *testing.T) {
	e, err := New(context.Background(), Options{
		Decks:    Decks{Questions: {QuestionCard{Question: "?", Answer: "!"}}},
		Category: Taboo,
	})
	require.NoError(t, err)

	_, ok := e.Card()
	assert.False(t, ok)

	e.Start()
	assert.Equal(t, PhaseSetup, e.Snapshot().Phase)

	e.Correct()
	e.Wrong()
	e.Skip()
	assert.Equal(t, Board{}, e.Snapshot().Board)

	require.NoError(t, e.ChangeCategory(Questions))
	card, ok := e.Card()
	require.True(t, ok)
	assert.Equal(t, QuestionCard{Question: "?", Answer: "!"}, card)
}

func TestCardFollowsIndex(t *testing.T) {
	e := newTestEngine(t, Taboo, nil)

	card, ok := e.Card()
	require.True(t, ok)
	assert.Equal(t, "Atom", card.View().Concept)

	e.Start()
	e.Skip()

	card, ok = e.Card()
	require.True(t, ok)
	assert.Equal(t, []string{"Yıldız", "Işık"}, card.View().Forbidden)
}
