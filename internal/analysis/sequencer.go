package analysis

import "sync"

// Ticket identifies one request issued by a Sequencer
type Ticket uint64

// Sequencer orders asynchronous requests so that only the most recent one may
// apply its result. Begin and Invalidate both advance the generation; a ticket
// from an earlier generation is stale.
type Sequencer struct {
	mu         sync.Mutex
	generation uint64
}

// Begin starts a new request, superseding every earlier ticket
func (s *Sequencer) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return Ticket(s.generation)
}

// Invalidate supersedes in-flight requests without starting a new one
func (s *Sequencer) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// Current reports whether t is still the latest request
func (s *Sequencer) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(t) == s.generation
}

// Commit runs apply only if t is still current. The check and apply happen
// under the sequencer lock, so an Invalidate cannot slip in between.
func (s *Sequencer) Commit(t Ticket, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(t) != s.generation {
		return false
	}
	apply()
	return true
}
