package internal

import "sync"

// Session carries the conversational state for one user session: the video
// that follow-up questions refer to when no explicit hint is given. It is
// injected through App instead of living in package state, so independent
// sessions in one process do not see each other's pointer. Within a session
// the pointer is last-write-wins.
type Session struct {
	mu      sync.Mutex
	current string
}

func NewSession() *Session {
	return &Session{}
}

// SetCurrent records the most recently ingested or referenced video.
func (s *Session) SetCurrent(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = videoID
}

// Current returns the fallback video scope, or "" when no video has been
// referenced yet.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
