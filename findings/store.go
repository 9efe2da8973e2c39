package findings

import (
	"sync"

	"github.com/ajhcs/beacon/coordinator"
	"github.com/ajhcs/beacon/metrics"
)

// Store holds every finding recorded so far for one campaign and
// implements coordinator.Recorder, so the coordinator's epoch loop can
// feed it signals without importing this package (§4.8, §4.7
// "Coordinator & adaptation" Recorder hook).
type Store struct {
	mu       sync.Mutex
	findings []Finding
	seq      uint64
	metrics  *metrics.Campaign
}

// New returns an empty store. m may be nil.
func New(m *metrics.Campaign) *Store {
	return &Store{metrics: m}
}

// Record implements coordinator.Recorder: every property_violation,
// discrepancy, crash, or timeout signal becomes a sequenced Finding;
// every other signal kind is ignored.
func (s *Store) Record(epoch uint64, sig coordinator.Signal) {
	f, ok := newFinding(epoch, sig)
	if !ok {
		return
	}
	s.mu.Lock()
	s.seq++
	f.Seq = s.seq
	s.findings = append(s.findings, f)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.FindingsEmitted.WithLabelValues(string(f.Kind)).Inc()
	}
}

var _ coordinator.Recorder = (*Store)(nil)

// Query returns every finding with Seq > sinceSeq, plus the cursor a
// caller should pass next (§4.8 "findings(since_seqno) ... this is the
// sole consumer-facing ordering guarantee").
func (s *Store) Query(sinceSeq uint64) (items []Finding, nextSeqno uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.findings {
		if f.Seq > sinceSeq {
			items = append(items, f)
		}
	}
	next := sinceSeq
	if len(s.findings) > 0 {
		next = s.findings[len(s.findings)-1].Seq
	}
	return items, next
}

// Count returns the total number of findings recorded, for the tool
// surface's status() "findings_count".
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings)
}

// TagObserverBinding records which observer binding a just-recorded
// discrepancy finding depends on, so MarkStaleForObserverSwap can later
// find it. Record itself never sets a binding, since coordinator.Signal
// has no observer-binding field; only findings tagged through this
// method can be marked stale.
func (s *Store) TagObserverBinding(findingID, binding string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.findings {
		if s.findings[i].ID == findingID {
			s.findings[i].ObserverBinding = binding
			return
		}
	}
}

// MarkStaleForObserverSwap marks every existing finding whose
// discrepancy check depends on binding as stale, rather than deleting
// them, following the decided reading of the base spec's open question
// on observer swaps: "Observer swaps invalidate all findings recorded
// before the swap for the swapped observer's bindings only (not the
// whole campaign)".
func (s *Store) MarkStaleForObserverSwap(binding string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.findings {
		if s.findings[i].ObserverBinding == binding {
			s.findings[i].Stale = true
		}
	}
}
