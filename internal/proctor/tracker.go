package proctor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hirevox/models"
)

const (
	violationKeyFmt = "proctor:violations:%s"
	moodKeyFmt      = "proctor:mood:%s"
	logKeyFmt       = "proctor:log:%s"

	// Sessions run well under this; keys self-clean afterwards.
	signalTTL = 4 * time.Hour
	logMax    = 500
)

// IngestConfig bounds how often the webcam analyzer may report per interview.
type IngestConfig struct {
	MaxViolations   int
	MaxMoods        int
	ViolationWindow time.Duration
	MoodWindow      time.Duration
}

// DefaultIngestConfig returns the default ingest rate limits
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		MaxViolations:   5,
		MaxMoods:        2,
		ViolationWindow: 10 * time.Second,
		MoodWindow:      5 * time.Second,
	}
}

// Tracker accumulates the proctoring signal for live interviews: a violation
// counter, the latest detected mood, and an audit log of raw events.
type Tracker struct {
	rdb    *redis.Client
	config IngestConfig
}

// NewTracker creates a Tracker on the shared Redis client
func NewTracker(config IngestConfig) *Tracker {
	return &Tracker{rdb: GetRedisClient(), config: config}
}

// RecordViolation increments the interview's violation counter and returns
// the new total.
func (t *Tracker) RecordViolation(c context.Context, interviewID, detail string) (int, error) {
	if t == nil || t.rdb == nil {
		return 0, fmt.Errorf("Redis client not available")
	}

	allowed, err := t.allow(c, "rate:violation:"+interviewID, t.config.MaxViolations, t.config.ViolationWindow)
	if err != nil {
		return 0, err
	}
	if !allowed {
		count, _ := t.ViolationCount(c, interviewID)
		return count, nil
	}

	key := fmt.Sprintf(violationKeyFmt, interviewID)
	count, err := t.rdb.Incr(c, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		t.rdb.Expire(c, key, signalTTL)
	}

	t.appendLog(c, interviewID, models.ProctorEvent{
		InterviewID: interviewID,
		Kind:        models.ProctorViolation,
		Detail:      detail,
		Timestamp:   time.Now().Unix(),
	})
	return int(count), nil
}

// RecordMood stores the latest detected mood.
func (t *Tracker) RecordMood(c context.Context, interviewID, mood string) error {
	if t == nil || t.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}

	allowed, err := t.allow(c, "rate:mood:"+interviewID, t.config.MaxMoods, t.config.MoodWindow)
	if err != nil {
		return err
	}
	if !allowed {
		return nil
	}

	key := fmt.Sprintf(moodKeyFmt, interviewID)
	if err := t.rdb.Set(c, key, mood, signalTTL).Err(); err != nil {
		return err
	}

	t.appendLog(c, interviewID, models.ProctorEvent{
		InterviewID: interviewID,
		Kind:        models.ProctorMood,
		Mood:        mood,
		Timestamp:   time.Now().Unix(),
	})
	return nil
}

// ViolationCount reads the current violation total.
func (t *Tracker) ViolationCount(c context.Context, interviewID string) (int, error) {
	if t == nil || t.rdb == nil {
		return 0, fmt.Errorf("Redis client not available")
	}
	count, err := t.rdb.Get(c, fmt.Sprintf(violationKeyFmt, interviewID)).Int()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return count, nil
}

// Mood reads the latest detected mood, defaulting to neutral.
func (t *Tracker) Mood(c context.Context, interviewID string) (string, error) {
	if t == nil || t.rdb == nil {
		return "", fmt.Errorf("Redis client not available")
	}
	mood, err := t.rdb.Get(c, fmt.Sprintf(moodKeyFmt, interviewID)).Result()
	if err == redis.Nil {
		return "neutral", nil
	} else if err != nil {
		return "", err
	}
	return mood, nil
}

// EventLog returns the most recent raw events, newest first.
func (t *Tracker) EventLog(c context.Context, interviewID string, n int64) ([]models.ProctorEvent, error) {
	if t == nil || t.rdb == nil {
		return nil, fmt.Errorf("Redis client not available")
	}
	entries, err := t.rdb.LRange(c, fmt.Sprintf(logKeyFmt, interviewID), 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	events := make([]models.ProctorEvent, 0, len(entries))
	for _, e := range entries {
		var ev models.ProctorEvent
		if err := json.Unmarshal([]byte(e), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// ClearSignal drops every key for an interview once it ends.
func (t *Tracker) ClearSignal(c context.Context, interviewID string) error {
	if t == nil || t.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}
	return t.rdb.Del(c,
		fmt.Sprintf(violationKeyFmt, interviewID),
		fmt.Sprintf(moodKeyFmt, interviewID),
		fmt.Sprintf(logKeyFmt, interviewID),
	).Err()
}

// allow applies the incr-then-expire rate limit pattern.
func (t *Tracker) allow(c context.Context, key string, max int, window time.Duration) (bool, error) {
	count, err := t.rdb.Incr(c, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		t.rdb.Expire(c, key, window)
	}
	return count <= int64(max), nil
}

func (t *Tracker) appendLog(c context.Context, interviewID string, ev models.ProctorEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	key := fmt.Sprintf(logKeyFmt, interviewID)
	pipe := t.rdb.Pipeline()
	pipe.LPush(c, key, string(b))
	pipe.LTrim(c, key, 0, logMax-1)
	pipe.Expire(c, key, signalTTL)
	pipe.Exec(c)
}
