package ui

import "sbs-player/player"

// Result is the outcome of the selection dialog: Confirmed or Cancelled
type Result interface {
	isResult()
}

// Confirmed carries the field values at the time the user submitted
type Confirmed struct {
	Selection player.Selection
}

func (Confirmed) isResult() {}

// Cancelled means the user dismissed the dialog
type Cancelled struct{}

func (Cancelled) isResult() {}

// dispatch routes a dialog result. Only a confirmed selection reaches play;
// anything else quits without touching the players or the folders.
func dispatch(r Result, play func(player.Selection), quit func()) {
	switch r := r.(type) {
	case Confirmed:
		play(r.Selection)
	default:
		quit()
	}
}
