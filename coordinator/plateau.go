package coordinator

// plateauDetector tracks, per coverage target, how many consecutive
// epochs have passed with zero coverage_delta for that target, emitting
// a coverage_plateau signal once the streak reaches beta. The
// increment-on-stall / clear-on-progress / finalize-at-beta shape is
// grounded on _scaffold/confidence's binaryThreshold.RecordPoll:
// RecordPoll increments a per-termination-condition confidence counter
// on a successful poll and clears it on a change of preference or an
// unsuccessful poll, finalizing once confidence reaches Beta. Here
// "successful poll" becomes "epoch advanced this target's coverage" and
// the roles invert: we finalize (emit plateau) on repeated *failure* to
// advance, not repeated success, so RecordUnsuccessfulPoll supplies the
// increment and RecordPoll-on-progress supplies the clear.
type plateauDetector struct {
	beta      int
	streak    map[string]int
	plateaued map[string]bool
}

func newPlateauDetector(beta int) *plateauDetector {
	if beta <= 0 {
		beta = 1
	}
	return &plateauDetector{
		beta:      beta,
		streak:    make(map[string]int),
		plateaued: make(map[string]bool),
	}
}

// Observe records one epoch's outcome for target: advanced is true if
// its coverage measurably changed this epoch. It returns true exactly
// once, the epoch the streak first reaches beta; a target that has
// already been reported once does not re-fire.
func (p *plateauDetector) Observe(target string, advanced bool) bool {
	if advanced {
		p.streak[target] = 0
		return false
	}
	if p.plateaued[target] {
		return false
	}
	p.streak[target]++
	if p.streak[target] >= p.beta {
		p.plateaued[target] = true
		return true
	}
	return false
}
