package game

import (
	"strings"
	"sync"
	"time"
)

// Round is the in-memory state of one identity's active word-guessing round.
// Rounds live for process uptime only; a restart forfeits them.
type Round struct {
	Secret    string
	CreatedAt time.Time
	Won       bool
}

// RoundStore maps a wallet address to its single active round. Addresses are
// case-folded so mixed-case callers hit the same round. A new Put for the
// same address silently replaces the prior round (last writer wins).
type RoundStore struct {
	mu     sync.RWMutex
	rounds map[string]*Round
}

func NewRoundStore() *RoundStore {
	return &RoundStore{rounds: make(map[string]*Round)}
}

// Put starts or replaces the round for an address.
func (s *RoundStore) Put(address, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[roundKey(address)] = &Round{Secret: secret, CreatedAt: time.Now()}
}

// Get returns a copy of the round for an address.
func (s *RoundStore) Get(address string) (Round, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rounds[roundKey(address)]
	if !ok {
		return Round{}, false
	}
	return *r, true
}

// Remove drops the round for an address.
func (s *RoundStore) Remove(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rounds, roundKey(address))
}

// MarkWon flags the address's round as won. No-op when no round exists.
func (s *RoundStore) MarkWon(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rounds[roundKey(address)]; ok {
		r.Won = true
	}
}

// HasWin reports whether the address holds an unconsumed win.
func (s *RoundStore) HasWin(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rounds[roundKey(address)]
	return ok && r.Won
}

// ConsumeWin atomically checks and clears the win flag for an address. It
// returns true exactly once per won round.
func (s *RoundStore) ConsumeWin(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[roundKey(address)]
	if !ok || !r.Won {
		return false
	}
	r.Won = false
	return true
}

func roundKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
