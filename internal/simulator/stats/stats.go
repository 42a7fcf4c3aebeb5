// Package stats tracks session counters for the traffic simulator.
package stats

import "sync"

type Snapshot struct {
	Sent        int
	Duplicates  int
	Errors      int
	LastOrderID string
}

// Stats is safe for concurrent use; auto mode updates it from a
// background goroutine while the menu reads it.
type Stats struct {
	mu          sync.Mutex
	sent        int
	duplicates  int
	errors      int
	lastOrderID string
}

func New() *Stats {
	return &Stats{}
}

func (s *Stats) RecordSent(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent++
	if orderID != "" {
		s.lastOrderID = orderID
	}
}

func (s *Stats) RecordDuplicate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicates++
}

func (s *Stats) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors++
}

func (s *Stats) LastOrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOrderID
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Sent:        s.sent,
		Duplicates:  s.duplicates,
		Errors:      s.errors,
		LastOrderID: s.lastOrderID,
	}
}
