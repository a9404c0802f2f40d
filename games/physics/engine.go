/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package physics implements the session rules of the physics review game:
// two teams race along a shared 38-square track by answering cards from four
// categories, each round bounded by a countdown.
//
// An Engine is not safe for concurrent use. The caller serialises actions and
// timer ticks, typically from a single goroutine.
package physics

import (
	"context"
)

// Engine applies player actions to a session.
type Engine struct {
	store *Store
	timer *Timer
}

// New creates an Engine for opts.Category.
func New(ctx context.Context, opts Options) (*Engine, error) {
	store, err := NewStore(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &Engine{
		store: store,
		timer: &Timer{store: store},
	}, nil
}

func (e *Engine) Snapshot() Session {
	return e.store.Snapshot()
}

// Card returns the current card, or false when the category has no cards.
func (e *Engine) Card() (Card, bool) {
	return e.store.Card()
}

// Winner reports the winning team once the game is finished.
func (e *Engine) Winner() (int, bool) {
	return e.store.winner()
}

// Ticking reports whether the round countdown is running.
func (e *Engine) Ticking() bool {
	return e.timer.Ticking()
}

func (e *Engine) hasCards() bool {
	_, ok := e.store.Card()
	return ok
}

func (e *Engine) playing() bool {
	return e.store.phase() == PhasePlaying && e.hasCards()
}

// Start begins or resumes the round.
func (e *Engine) Start() {
	if !e.hasCards() {
		return
	}
	e.timer.Start()
}

func (e *Engine) Pause() {
	e.timer.Pause()
}

// Tick advances the countdown by one second and reports whether time is up.
func (e *Engine) Tick() bool {
	return e.timer.Tick()
}

// Correct credits the active team and moves it one square forward. Reaching
// WinningPosition finishes the game without drawing another card.
func (e *Engine) Correct() {
	if !e.playing() {
		return
	}

	e.store.adjustScore(1)
	pos := e.store.adjustPosition(1)
	e.store.persist()

	if pos >= WinningPosition {
		e.timer.stop()
		return
	}

	e.store.advanceCard()
}

// Wrong moves to the next card. In taboo, a forbidden word also costs the
// active team a point and a square, never going below zero.
func (e *Engine) Wrong() {
	if !e.playing() {
		return
	}

	if n := penalty(e.store.category()); n > 0 {
		e.store.adjustScore(-n)
		e.store.adjustPosition(-n)
		e.store.persist()
	}

	e.store.advanceCard()
}

// Skip moves to the next card without scoring.
func (e *Engine) Skip() {
	if !e.playing() {
		return
	}
	e.store.advanceCard()
}

// SwitchTeam hands the turn to the other team and resets the round.
func (e *Engine) SwitchTeam() {
	e.store.switchActiveTeam()
	e.timer.Halt()
}

// ChangeCategory moves to another category. Scores and board positions
// carry over.
func (e *Engine) ChangeCategory(id CategoryID) error {
	if _, err := Lookup(id); err != nil {
		return err
	}

	e.store.setCategory(id)
	e.timer.Halt()

	return nil
}

// Back leaves the game screen. The round is abandoned and the next visit
// starts from the first card.
func (e *Engine) Back() {
	e.store.rewind()
	e.timer.Halt()
}

// Reset wipes board, scores and the persisted snapshot.
func (e *Engine) Reset() {
	e.store.reset()
	e.timer.Halt()
}

// penalty is what a wrong answer costs in each category.
func penalty(id CategoryID) int {
	switch id {
	case Taboo:
		return 1
	case Symbols, Drawing, Questions:
		return 0
	}
	panic("physics: unhandled category " + string(id))
}
