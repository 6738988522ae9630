package settings

import "sync"

// MemoryStore holds preferences for the lifetime of the process. It backs
// non-Windows builds and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	language  string
	privacy   bool
	autostart bool
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.language == "" {
		return DefaultLanguage
	}
	return s.language
}

func (s *MemoryStore) SetLanguage(tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = tag
	return nil
}

func (s *MemoryStore) PrivacyMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.privacy
}

func (s *MemoryStore) SetPrivacyMode(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privacy = enabled
	return nil
}

func (s *MemoryStore) AutostartEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autostart
}

func (s *MemoryStore) SetAutostart(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autostart = enabled
	return nil
}
