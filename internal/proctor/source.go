package proctor

import (
	"context"
	"sync"

	"hirevox/internal/interview"
)

// Source adapts the Redis-backed Tracker to the scheduler's poll interface.
// It remembers the last mood it reported per interview so a poll can flag
// transitions rather than raw state.
type Source struct {
	mu      sync.Mutex
	tracker *Tracker
	last    map[string]string // interviewID -> mood at previous poll
}

// NewSource creates a Source over the given Tracker
func NewSource(tracker *Tracker) *Source {
	return &Source{tracker: tracker, last: make(map[string]string)}
}

// Poll returns the current signal snapshot for one interview.
func (s *Source) Poll(ctx context.Context, interviewID string) (interview.ProctorStatus, error) {
	count, err := s.tracker.ViolationCount(ctx, interviewID)
	if err != nil {
		return interview.ProctorStatus{}, err
	}
	mood, err := s.tracker.Mood(ctx, interviewID)
	if err != nil {
		return interview.ProctorStatus{}, err
	}

	s.mu.Lock()
	prev, seen := s.last[interviewID]
	s.last[interviewID] = mood
	s.mu.Unlock()

	return interview.ProctorStatus{
		ViolationCount: count,
		MoodState:      mood,
		MoodChanged:    seen && mood != prev,
	}, nil
}

// Forget drops the per-interview poll memory once a session ends.
func (s *Source) Forget(interviewID string) {
	s.mu.Lock()
	delete(s.last, interviewID)
	s.mu.Unlock()
}
