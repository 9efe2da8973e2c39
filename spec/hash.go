package spec

import (
	"crypto/sha256"
	"encoding/json"
)

// computeContentHash computes the 32-byte digest over the JSON encoding
// of the source Document, not of the compiled IR (§3, §4.2, §8 "hash
// stability"). encoding/json sorts map keys alphabetically when
// marshaling a Go map and writes struct fields in declaration order,
// which gives a canonical byte representation for every section of
// Document without a bespoke canonicalizer; array order is
// preserved as authored, which is correct since array order is
// semantically significant (e.g. seq[] order, generator Values order).
func computeContentHash(doc *Document) [32]byte {
	// Marshal errors are unreachable here: Document contains only JSON-safe
	// types (maps, slices, strings, ints, bools, pointers to those), no
	// channels/funcs/cyclic structures, so json.Marshal cannot fail on it.
	b, _ := json.Marshal(doc)
	return sha256.Sum256(b)
}
