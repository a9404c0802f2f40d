/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package physics

// Timer is the round countdown. It holds no state of its own; phase and
// remaining time live in the Store so snapshots always agree with it.
//
// The Timer never schedules anything. Whoever drives it calls Tick once a
// second while Ticking reports true and drops the tick source otherwise.
type Timer struct {
	store *Store
}

func (t *Timer) Ticking() bool {
	return t.store.phase() == PhasePlaying
}

// Start begins a round from setup or resumes a paused one.
func (t *Timer) Start() {
	switch t.store.phase() {
	case PhaseSetup:
		t.store.reloadTimer()
	case PhasePaused:
		if t.store.remaining() == 0 {
			t.store.reloadTimer()
		}
	default:
		return
	}

	t.store.setPhase(PhasePlaying)
}

func (t *Timer) Pause() {
	if t.store.phase() != PhasePlaying {
		return
	}
	t.store.setPhase(PhasePaused)
}

// Tick counts down one second and reports whether time ran out.
func (t *Timer) Tick() bool {
	if t.store.phase() != PhasePlaying {
		return false
	}

	t.store.setRemaining(t.store.remaining() - 1)
	if t.store.remaining() > 0 {
		return false
	}

	t.store.setPhase(PhasePaused)
	return true
}

// Halt forces the timer back to setup with the category's full round time.
// A finished game stays finished.
func (t *Timer) Halt() {
	t.store.reloadTimer()

	if _, won := t.store.winner(); won {
		t.store.setPhase(PhaseFinished)
	} else {
		t.store.setPhase(PhaseSetup)
	}

	if t.store.category() == Drawing {
		t.store.clearCanvas()
	}
}

func (t *Timer) stop() {
	t.store.setPhase(PhaseFinished)
}
