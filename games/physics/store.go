/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package physics

import (
	"context"
	"encoding/json"
	"time"
)

const (
	BoardKey  = "board"
	ScoresKey = "scores"

	storageTimeout = 2 * time.Second
)

// Storage is the persistence port for board and score snapshots.
// Implementations live in the storage package.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Options configures a new Store.
type Options struct {
	Storage  Storage
	Decks    DeckProvider
	Category CategoryID
	Teams    Teams

	// Logf receives persistence failures. They never reach the players.
	Logf func(format string, args ...any)
}

// Store owns the Session and is the only place it is mutated.
type Store struct {
	storage Storage
	decks   DeckProvider
	logf    func(format string, args ...any)

	s Session
}

// NewStore builds a session for opts.Category and restores any persisted
// board and scores.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	if _, err := Lookup(opts.Category); err != nil {
		return nil, err
	}

	st := &Store{
		storage: opts.Storage,
		decks:   opts.Decks,
		logf:    opts.Logf,
		s:       newSession(opts.Category, opts.Teams),
	}
	if st.decks == nil {
		st.decks = DefaultDecks()
	}
	if st.logf == nil {
		st.logf = func(string, ...any) {}
	}

	st.load(ctx)

	if _, won := Winner(st.s.Board); won {
		st.s.Phase = PhaseFinished
	}

	return st, nil
}

func (st *Store) load(ctx context.Context) {
	if st.storage == nil {
		return
	}

	var board Board
	if st.loadKey(ctx, BoardKey, &board) {
		board.Team1Position = min(max(board.Team1Position, 0), WinningPosition)
		board.Team2Position = min(max(board.Team2Position, 0), WinningPosition)
		st.s.Board = board
	}

	var scores Scores
	if st.loadKey(ctx, ScoresKey, &scores) {
		for _, c := range categories {
			row := scores.row(c.ID)
			row.Team1 = max(row.Team1, 0)
			row.Team2 = max(row.Team2, 0)
		}
		st.s.Scores = scores
	}
}

func (st *Store) loadKey(ctx context.Context, key string, v any) bool {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	data, err := st.storage.Load(ctx, key)
	if err != nil {
		st.logf("STORE: Using defaults for %q: %v", key, err)
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		st.logf("STORE: Ignoring corrupt %q snapshot: %v", key, err)
		return false
	}

	return true
}

func (st *Store) persist() {
	if st.storage == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	board, _ := json.Marshal(st.s.Board)
	if err := st.storage.Save(ctx, BoardKey, board); err != nil {
		st.logf("STORE: Failed to save %q: %v", BoardKey, err)
	}

	scores, _ := json.Marshal(st.s.Scores)
	if err := st.storage.Save(ctx, ScoresKey, scores); err != nil {
		st.logf("STORE: Failed to save %q: %v", ScoresKey, err)
	}
}

func (st *Store) clearStorage() {
	if st.storage == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	if err := st.storage.Delete(ctx, BoardKey, ScoresKey); err != nil {
		st.logf("STORE: Failed to clear snapshot: %v", err)
	}
}

// Snapshot returns a copy of the session.
func (st *Store) Snapshot() Session {
	return st.s.clone()
}

func (st *Store) phase() Phase {
	return st.s.Phase
}

func (st *Store) category() CategoryID {
	return st.s.Category
}

func (st *Store) deck() []Card {
	return st.decks.Deck(st.s.Category)
}

// Card returns the current card, or false when the deck is empty.
func (st *Store) Card() (Card, bool) {
	cards := st.deck()
	if len(cards) == 0 {
		return nil, false
	}
	if st.s.CardIndex < 0 || st.s.CardIndex >= len(cards) {
		return cards[0], true
	}
	return cards[st.s.CardIndex], true
}

func (st *Store) advanceCard() {
	cards := st.deck()
	if len(cards) == 0 {
		return
	}

	st.s.CardIndex++
	if st.s.CardIndex >= len(cards) {
		st.s.CardIndex = 0
	}

	if st.s.Category == Drawing {
		st.clearCanvas()
	}
}

func (st *Store) setCategory(id CategoryID) {
	st.s.Category = id
	st.s.CardIndex = 0
}

func (st *Store) rewind() {
	st.s.CardIndex = 0
}

func (st *Store) setPhase(p Phase) {
	st.s.Phase = p
}

func (st *Store) remaining() int {
	return st.s.Remaining
}

func (st *Store) setRemaining(seconds int) {
	st.s.Remaining = max(seconds, 0)
}

func (st *Store) reloadTimer() {
	seconds := DefaultSeconds(st.s.Category)
	st.s.Limit = seconds
	st.s.Remaining = seconds
}

// adjustScore and adjustPosition leave persisting to the caller, which
// saves once per action.
func (st *Store) adjustScore(delta int) {
	st.s.Scores.adjust(st.s.Category, st.s.ActiveTeam, delta)
}

func (st *Store) adjustPosition(delta int) int {
	pos := st.s.Board.move(st.s.ActiveTeam, delta)
	if pos > WinningPosition {
		pos = st.s.Board.move(st.s.ActiveTeam, WinningPosition-pos)
	}
	return pos
}

func (st *Store) switchActiveTeam() {
	if st.s.ActiveTeam == 1 {
		st.s.ActiveTeam = 2
	} else {
		st.s.ActiveTeam = 1
	}
}

func (st *Store) clearCanvas() {
	st.s.CanvasEpoch++
}

func (st *Store) reset() {
	st.s.Board = Board{}
	st.s.Scores = Scores{}
	st.s.CardIndex = 0
	st.s.ActiveTeam = 1
	st.clearStorage()
}

func (st *Store) winner() (int, bool) {
	return Winner(st.s.Board)
}
