package findings

import "errors"

// ErrEmptyCapsule is returned by Replay when given a capsule with no
// recorded steps, which should never happen for a finding recorded from
// a real Terminal call.
var ErrEmptyCapsule = errors.New("findings: replay capsule has no steps")
