package solver

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
)

// RootSeed derives the campaign's root RNG seed from the compiled
// content hash and campaign id (§4.5 "A single seed derived from
// (content hash, campaign id)"), the same canonical-hash-then-truncate
// technique spec.computeContentHash and model.StateHash use elsewhere
// in this repo, reused here instead of reaching for a second hashing
// library just to mix a seed.
func RootSeed(contentHash [32]byte, campaignID string) uint64 {
	h := sha256.New()
	h.Write(contentHash[:])
	h.Write([]byte(campaignID))
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

// SplitSeed derives a child seed for one stage of a stage stack (§4.5
// "split by stage stacks — every solver stage, traversal choice, and
// random decision receives a distinct child seed"). Calling SplitSeed
// repeatedly with a joined stage path ("fracture/partition/0") yields
// the same child for the same path deterministically, so a replay can
// reconstruct any stage's stream without replaying its siblings.
func SplitSeed(parent uint64, stage string) uint64 {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], parent)
	h.Write(buf[:])
	h.Write([]byte(stage))
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

// NewRand returns a *rand.Rand seeded deterministically from seed,
// using rand.New(rand.NewSource(...)) but seeded from the stage-split
// chain instead of time.Now().UnixNano() — the harness's RNG discipline
// requires bit-identical output for identical inputs, which a
// wall-clock seed would break.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}
