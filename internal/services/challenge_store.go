package services

import (
	"sync"
	"time"
)

// MFAChallenge bridges the gap between "password verified" and "second
// factor verified". It is referenced by an opaque ID handed to the client in
// place of final credentials.
type MFAChallenge struct {
	UserID     uint
	Email      string
	RememberMe bool
	Device     DeviceMeta
	CreatedAt  time.Time
}

// lockoutState tracks consecutive second-factor failures per user.
type lockoutState struct {
	failures     int
	lockedUntil  time.Time
	lastActivity time.Time
}

// ChallengeStore holds pending MFA challenges and per-user lockout counters
// in process memory. Safe for concurrent use. State does not survive a
// restart; an interrupted login simply starts over.
type ChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]*MFAChallenge
	lockouts   map[uint]*lockoutState
	ttl        time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewChallengeStore creates a store whose challenges expire after ttl.
// A background loop evicts stale entries until Stop is called.
func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	s := &ChallengeStore{
		challenges: make(map[string]*MFAChallenge),
		lockouts:   make(map[uint]*lockoutState),
		ttl:        ttl,
		stop:       make(chan struct{}),
	}
	go s.evictLoop()
	return s
}

// Put stores a challenge under the given ID.
func (s *ChallengeStore) Put(id string, ch *MFAChallenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch.CreatedAt = time.Now()
	s.challenges[id] = ch
}

// Get returns the challenge if it exists and is within its window.
func (s *ChallengeStore) Get(id string) (*MFAChallenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return nil, false
	}
	if time.Since(ch.CreatedAt) > s.ttl {
		delete(s.challenges, id)
		return nil, false
	}
	return ch, true
}

// Consume removes and returns the challenge, enforcing single use. The
// second concurrent caller gets ok=false.
func (s *ChallengeStore) Consume(id string) (*MFAChallenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return nil, false
	}
	delete(s.challenges, id)
	if time.Since(ch.CreatedAt) > s.ttl {
		return nil, false
	}
	return ch, true
}

// Delete drops a challenge regardless of state.
func (s *ChallengeStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, id)
}

// RecordFailure increments the user's consecutive-failure counter and, once
// maxAttempts is reached, locks the user out for lockout. Returns the
// failure count and whether the user is now locked.
func (s *ChallengeStore) RecordFailure(userID uint, maxAttempts int, lockout time.Duration) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.lockouts[userID]
	if st == nil {
		st = &lockoutState{}
		s.lockouts[userID] = st
	}
	st.failures++
	st.lastActivity = time.Now()
	if st.failures >= maxAttempts {
		st.lockedUntil = time.Now().Add(lockout)
		return st.failures, true
	}
	return st.failures, false
}

// IsLockedOut reports whether the user is inside a lockout window.
func (s *ChallengeStore) IsLockedOut(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.lockouts[userID]
	return st != nil && time.Now().Before(st.lockedUntil)
}

// ResetFailures clears the user's failure counter, called on success.
func (s *ChallengeStore) ResetFailures(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lockouts, userID)
}

// Stop terminates the eviction loop.
func (s *ChallengeStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *ChallengeStore) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictStale()
		}
	}
}

func (s *ChallengeStore) evictStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, ch := range s.challenges {
		if now.Sub(ch.CreatedAt) > s.ttl {
			delete(s.challenges, id)
		}
	}
	// Lockout entries are kept for an hour past their last activity so an
	// attacker cannot clear a counter by waiting out the eviction.
	for userID, st := range s.lockouts {
		if now.After(st.lockedUntil) && now.Sub(st.lastActivity) > time.Hour {
			delete(s.lockouts, userID)
		}
	}
}
