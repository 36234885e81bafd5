package server

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/ubxwire/internal/protocol/schema"
)

// Entry is the latest packet seen under one message name.
type Entry struct {
	Name   string        `json:"name"`
	Count  uint64        `json:"count"`
	Seen   time.Time     `json:"seen"`
	Packet schema.Packet `json:"packet"`
}

// Store keeps the most recent packet per message. It is written by the
// decode loop and read by HTTP handlers.
type Store struct {
	mu     sync.RWMutex
	latest map[string]*Entry
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{latest: make(map[string]*Entry), now: time.Now}
}

// StoreKey is the name a packet is filed under: its message name, or
// "0xCC-0xII" for unrecognized packets.
func StoreKey(p schema.Packet) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("0x%02x-0x%02x", p.Class, p.ID)
}

// Record files p. Packets that failed to decode carry no body and are
// skipped for recognized names.
func (s *Store) Record(p schema.Packet) {
	if p.Name != "" && !p.Recognized() {
		return
	}
	key := StoreKey(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.latest[key]
	if !ok {
		e = &Entry{Name: key}
		s.latest[key] = e
	}
	e.Count++
	e.Seen = s.now()
	e.Packet = p
}

// Latest returns the newest entry for name, matched case-insensitively.
func (s *Store) Latest(name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.latest[name]; ok {
		return *e, true
	}
	for key, e := range s.latest {
		if strings.EqualFold(key, name) {
			return *e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of every entry sorted by name.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.latest))
	for _, e := range s.latest {
		out = append(out, *e)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.latest)
}
