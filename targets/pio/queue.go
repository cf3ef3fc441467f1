package pio

import (
	"sync/atomic"

	"kobrafw/dgus"
)

// tuneQueue hands tunes to a single player. The channel is unbuffered, so a
// tune offered while the player is busy is refused rather than queued.
type tuneQueue struct {
	tunes chan dgus.Tune
	gen   atomic.Uint32
}

func newTuneQueue() *tuneQueue {
	return &tuneQueue{tunes: make(chan dgus.Tune)}
}

// offer reports whether the idle player took t
func (q *tuneQueue) offer(t dgus.Tune) bool {
	select {
	case q.tunes <- t:
		return true
	default:
		return false
	}
}

// cancel ends the tune being played after its current note
func (q *tuneQueue) cancel() {
	q.gen.Add(1)
}

// run calls note for every note received until close
func (q *tuneQueue) run(note func(dgus.Note)) {
	for t := range q.tunes {
		gen := q.gen.Load()
		for _, n := range t.Notes {
			if q.gen.Load() != gen {
				break
			}
			note(n)
		}
	}
}
