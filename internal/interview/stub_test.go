package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hirevox/models"
)

// stubStore records every durability call so tests can assert on persistence
// without a database.
type stubStore struct {
	mu       sync.Mutex
	inserted []*models.Question
	deleted  []string
	asked    []string
	answers  map[string]string
	evals    map[string]*models.Evaluation
	chunks   []int
}

func newStubStore() *stubStore {
	return &stubStore{
		answers: make(map[string]string),
		evals:   make(map[string]*models.Evaluation),
	}
}

func (s *stubStore) InsertQuestion(ctx context.Context, q *models.Question, insertAfterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted = append(s.inserted, q)
	return nil
}

func (s *stubStore) DeleteQuestion(ctx context.Context, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, questionID)
	return nil
}

func (s *stubStore) MarkAsked(ctx context.Context, questionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, questionID)
	return nil
}

func (s *stubStore) RecordAnswer(ctx context.Context, questionID, answer string, eval *models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.answers[questionID]; ok {
		return nil // already recorded, write-once
	}
	s.answers[questionID] = answer
	s.evals[questionID] = eval
	return nil
}

func (s *stubStore) MarkChunkReady(ctx context.Context, interviewID string, chunk int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunk)
	return nil
}

func (s *stubStore) answerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func (s *stubStore) askedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.asked)
}

// stubEvaluator returns a fixed score, or fails when broken.
type stubEvaluator struct {
	score  int
	broken bool
}

func (e *stubEvaluator) Evaluate(ctx context.Context, q *models.Question, answer string) (*models.Evaluation, error) {
	if e.broken {
		return nil, errors.New("evaluator unavailable")
	}
	return &models.Evaluation{Score: e.score, Reason: "stubbed"}, nil
}

func (e *stubEvaluator) GenerateIdealAnswer(ctx context.Context, text string) (string, []string, error) {
	if e.broken {
		return "", nil, errors.New("evaluator unavailable")
	}
	return "ideal: " + text, []string{"https://example.com/ref"}, nil
}

// stubFollowups returns a canned follow-up, or fails when broken.
type stubFollowups struct {
	broken bool
	calls  int
	tones  []FollowupTone
}

func (f *stubFollowups) Followup(ctx context.Context, questionText, answer string, tone FollowupTone) (string, error) {
	f.calls++
	f.tones = append(f.tones, tone)
	if f.broken {
		return "", errors.New("generator unavailable")
	}
	return fmt.Sprintf("follow-up (%s) on: %s", tone, questionText), nil
}

// holdEvaluator stalls ideal-answer generation for one question until
// released, simulating a preprocessing chunk that lags behind the interview.
type holdEvaluator struct {
	stubEvaluator
	holdText string
	release  chan struct{}
}

func (e *holdEvaluator) GenerateIdealAnswer(ctx context.Context, text string) (string, []string, error) {
	if text == e.holdText {
		<-e.release
	}
	return e.stubEvaluator.GenerateIdealAnswer(ctx, text)
}

// stubSiblings fabricates the medium/hard pair for any base question.
type stubSiblings struct {
	broken bool
}

func (s *stubSiblings) DepthSiblings(ctx context.Context, base *models.Question) ([]*models.Question, error) {
	if s.broken {
		return nil, errors.New("generator unavailable")
	}
	return []*models.Question{
		{ID: base.ID + "-m", Text: base.Text + " (deeper)", Category: models.CategoryTechnical, Difficulty: models.DifficultyMedium},
		{ID: base.ID + "-h", Text: base.Text + " (deepest)", Category: models.CategoryTechnical, Difficulty: models.DifficultyHard},
	}, nil
}

// stubNarrator hands out deterministic audio handles, or fails when broken.
type stubNarrator struct {
	broken bool
}

func (n *stubNarrator) Synthesize(ctx context.Context, text, questionID string) (string, error) {
	if n.broken {
		return "", errors.New("speech engine unavailable")
	}
	return "audio/" + questionID + ".mp3", nil
}

// stubProctor replays a scripted sequence of signal snapshots, repeating the
// last one once the script runs out.
type stubProctor struct {
	mu     sync.Mutex
	script []ProctorStatus
	i      int
}

func (p *stubProctor) Poll(ctx context.Context, interviewID string) (ProctorStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.script) == 0 {
		return ProctorStatus{MoodState: "neutral"}, nil
	}
	s := p.script[p.i]
	if p.i < len(p.script)-1 {
		p.i++
	}
	return s, nil
}

// stubEvents collects session output for assertions.
type stubEvents struct {
	mu       sync.Mutex
	states   []State
	askedQs  []*models.Question
	waiting  []string
	outcome  models.InterviewOutcome
	closing  string
	complete bool
}

func (e *stubEvents) StateChanged(state State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.states = append(e.states, state)
}

func (e *stubEvents) QuestionAsked(q *models.Question) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.askedQs = append(e.askedQs, q)
}

func (e *stubEvents) Waiting(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waiting = append(e.waiting, message)
}

func (e *stubEvents) Completed(outcome models.InterviewOutcome, closing string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outcome = outcome
	e.closing = closing
	e.complete = true
}

func (e *stubEvents) lastQuestion() *models.Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.askedQs) == 0 {
		return nil
	}
	return e.askedQs[len(e.askedQs)-1]
}

func (e *stubEvents) askedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.askedQs)
}

func (e *stubEvents) waitingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.waiting)
}

func (e *stubEvents) lastOutcome() models.InterviewOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}

func (e *stubEvents) lastClosing() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closing
}

type stubClosing struct {
	msg    string
	broken bool
}

func (c *stubClosing) ClosingMessage(ctx context.Context) (string, error) {
	if c.broken {
		return "", errors.New("generator unavailable")
	}
	return c.msg, nil
}

func techQuestion(id, text string) *models.Question {
	return &models.Question{
		ID:          id,
		Text:        text,
		Category:    models.CategoryTechnical,
		TopicID:     id,
		IdealAnswer: "ideal: " + text,
	}
}

func depthSibling(topicID string, d models.Difficulty) *models.Question {
	return &models.Question{
		ID:         topicID + "-" + string(d),
		Text:       "deeper on " + topicID,
		Category:   models.CategoryTechnical,
		Difficulty: d,
		TopicID:    topicID,
	}
}
