package interview

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"hirevox/models"
)

// State is the coarse interview-session state.
type State string

const (
	StateSetup     State = "setup"
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateInterview State = "interview"
	StateComplete  State = "complete"
)

const fallbackClosing = "Thank you for completing the interview. Your responses have been recorded and will be evaluated shortly. We appreciate your time and effort!"

// Events pushes session output toward the transport layer (websocket, tests).
type Events interface {
	StateChanged(state State)
	QuestionAsked(q *models.Question)
	Waiting(message string)
	Completed(outcome models.InterviewOutcome, closing string)
}

// SessionConfig carries the per-session tunables. Zero values fall back to
// the production defaults.
type SessionConfig struct {
	InterviewID    string
	Type           Type
	DepthEnabled   bool
	SignalEnabled  bool
	ViolationLimit int
	PauseWindow    time.Duration // silence before auto-submit
	Duration       time.Duration
	EvalTimeout    time.Duration
	NarrateTimeout time.Duration
	ProctorTimeout time.Duration
	ChunkWait      time.Duration
	ChunkRetries   int
}

func (c *SessionConfig) applyDefaults() {
	if c.PauseWindow == 0 {
		c.PauseWindow = 3 * time.Second
	}
	if c.Duration == 0 {
		c.Duration = 45 * time.Minute
	}
	if c.EvalTimeout == 0 {
		c.EvalTimeout = 30 * time.Second
	}
	if c.NarrateTimeout == 0 {
		c.NarrateTimeout = 20 * time.Second
	}
	if c.ProctorTimeout == 0 {
		c.ProctorTimeout = 5 * time.Second
	}
	if c.ChunkWait == 0 {
		c.ChunkWait = time.Second
	}
	if c.ChunkRetries == 0 {
		c.ChunkRetries = 60
	}
	if c.ViolationLimit == 0 {
		c.ViolationLimit = 3
	}
}

// Session drives one candidate's interview: the setup → loading → ready →
// interview → complete progression and, inside interview, the per-question
// ask → listen → pause-detect → submit → evaluate → route cycle. A session
// is single-flight by construction: the submission guard ensures no two turn
// cycles overlap.
type Session struct {
	mu  sync.Mutex
	cfg SessionConfig

	orch     *Orchestrator
	pipeline *Pipeline
	eval     Evaluator
	narrator Narrator
	proctor  ProctorSource
	store    Store
	closing  ClosingSource
	events   Events

	state        State
	current      *models.Question
	transcript   strings.Builder
	spoke        bool
	muted        bool
	submitting   bool
	ending       bool
	currentChunk int
	outcome      models.InterviewOutcome

	pauseTimer *time.Timer
	expiry     *time.Timer
}

func NewSession(cfg SessionConfig, orch *Orchestrator, pipeline *Pipeline, eval Evaluator, narrator Narrator, proctor ProctorSource, store Store, closing ClosingSource, events Events) *Session {
	cfg.applyDefaults()
	return &Session{
		cfg:          cfg,
		orch:         orch,
		pipeline:     pipeline,
		eval:         eval,
		narrator:     narrator,
		proctor:      proctor,
		store:        store,
		closing:      closing,
		events:       events,
		state:        StateSetup,
		currentChunk: -1,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Current() *models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) Outcome() models.InterviewOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Start moves setup → loading → ready. The first chunk is preprocessed
// synchronously so the opening questions carry their enrichments; later
// chunks are prepared in the background as the interview reaches them.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateSetup {
		s.mu.Unlock()
		return fmt.Errorf("cannot start from state %s", s.state)
	}
	s.state = StateLoading
	s.mu.Unlock()
	s.events.StateChanged(StateLoading)

	s.pipeline.Prepare(ctx, 0)
	s.drainSiblings()

	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()
	s.events.StateChanged(StateReady)
	return nil
}

// Begin moves ready → interview once the candidate confirms their devices
// are warmed up, then asks the first question.
func (s *Session) Begin(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return fmt.Errorf("cannot begin from state %s", s.state)
	}
	s.state = StateInterview
	s.expiry = time.AfterFunc(s.cfg.Duration, func() {
		s.Terminate(context.Background(), models.OutcomeExpired)
	})
	s.mu.Unlock()
	s.events.StateChanged(StateInterview)

	s.askNext(ctx)
	return nil
}

// OnTranscript accumulates one speech fragment and re-arms the pause
// detector. Fragments arriving while muted or mid-submission are dropped.
func (s *Session) OnTranscript(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInterview || s.current == nil || s.submitting || s.muted {
		return
	}
	if strings.TrimSpace(fragment) == "" {
		return
	}
	if s.transcript.Len() > 0 {
		s.transcript.WriteString(" ")
	}
	s.transcript.WriteString(strings.TrimSpace(fragment))
	s.spoke = true
	s.armPauseTimerLocked()
}

// SetMuted suspends or resumes pause detection. No auto-submit ever fires
// while the candidate has muted their input.
func (s *Session) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
	if muted {
		s.stopPauseTimerLocked()
		return
	}
	if s.state == StateInterview && s.spoke && !s.submitting {
		s.armPauseTimerLocked()
	}
}

func (s *Session) armPauseTimerLocked() {
	s.stopPauseTimerLocked()
	s.pauseTimer = time.AfterFunc(s.cfg.PauseWindow, func() {
		s.Submit(context.Background())
	})
}

func (s *Session) stopPauseTimerLocked() {
	if s.pauseTimer != nil {
		s.pauseTimer.Stop()
		s.pauseTimer = nil
	}
}

// Submit freezes the transcript as the candidate's answer, evaluates it, and
// routes the result. Re-entrant calls while a submission is in flight are
// no-ops, as are calls before any speech has been captured.
func (s *Session) Submit(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateInterview || s.current == nil || s.submitting || !s.spoke {
		s.mu.Unlock()
		return
	}
	s.submitting = true
	s.stopPauseTimerLocked()
	q := s.current
	answer := strings.TrimSpace(s.transcript.String())
	s.mu.Unlock()

	if wantsToEnd(answer) {
		log.Printf("[Session] candidate requested early termination")
		if err := s.store.RecordAnswer(ctx, q.ID, answer, nil); err != nil {
			log.Printf("[Session] failed to record answer: %v", err)
		}
		s.mu.Lock()
		q.CandidateAnswer = answer
		// The wrap-up is queued exactly once. Repeating the phrase while
		// answering the wrap-up itself finishes the interview instead of
		// queuing another one.
		if !s.ending {
			s.ending = true
			s.orch.EnqueueFinalWrapup(ctx)
		}
		s.mu.Unlock()
		s.askNext(ctx)
		return
	}

	eval := s.evaluate(ctx, q, answer)

	if err := s.store.RecordAnswer(ctx, q.ID, answer, eval); err != nil {
		log.Printf("[Session] failed to record answer: %v", err)
	}

	s.mu.Lock()
	q.CandidateAnswer = answer
	q.Evaluation = eval
	s.integrateSiblingsLocked()
	s.orch.ApplyEvaluation(ctx, q, eval)
	s.mu.Unlock()

	s.askNext(ctx)
}

// evaluate invokes the collaborator under a bounded wait. Any failure leaves
// the answer unscored: flow-rule mutation is skipped and the session advances
// normally.
func (s *Session) evaluate(ctx context.Context, q *models.Question, answer string) *models.Evaluation {
	if q.IdealAnswer == "" {
		log.Printf("[Session] no ideal answer for %s, skipping evaluation", q.ID)
		return nil
	}
	evalCtx, cancel := context.WithTimeout(ctx, s.cfg.EvalTimeout)
	defer cancel()

	eval, err := s.eval.Evaluate(evalCtx, q, answer)
	if err != nil || eval == nil {
		log.Printf("[Session] evaluation unavailable for %s, advancing unscored: %v", q.ID, err)
		return nil
	}
	if eval.Score < 0 {
		eval.Score = 0
	}
	if eval.Score > 100 {
		eval.Score = 100
	}
	if eval.RouteAction == "" {
		eval.RouteAction = RouteAction(s.cfg.Type, eval.Score)
	}
	return eval
}

// askNext runs one scheduling turn: poll the proctoring signal, select under
// priority rules, gate on chunk readiness, narrate, and open the mic.
func (s *Session) askNext(ctx context.Context) {
	sig := s.pollProctor(ctx)

	s.mu.Lock()
	if s.state != StateInterview {
		s.mu.Unlock()
		return
	}
	s.integrateSiblingsLocked()

	q, err := s.orch.SelectNext(ctx, sig)
	if err == ErrViolationLimit {
		s.completeLocked()
		s.mu.Unlock()
		s.finalize(ctx, models.OutcomeTerminatedForCause)
		return
	}
	if q == nil {
		s.completeLocked()
		s.mu.Unlock()
		s.finalize(ctx, models.OutcomeCompleted)
		return
	}
	s.mu.Unlock()

	s.gateOnChunk(q)

	now := time.Now()
	if err := s.store.MarkAsked(ctx, q.ID, now); err != nil {
		log.Printf("[Session] failed to stamp askedAt for %s: %v", q.ID, err)
	}

	s.mu.Lock()
	q.AskedAt = &now
	s.current = q
	s.transcript.Reset()
	s.spoke = false
	s.submitting = false
	s.stopPauseTimerLocked()
	s.mu.Unlock()

	s.narrate(ctx, q)
	s.events.QuestionAsked(q)
}

// gateOnChunk blocks the turn cycle, with a visible waiting state and bounded
// retries, until the question's chunk is ready. If retries exhaust, the
// question is asked without its enrichments rather than stalling the session.
func (s *Session) gateOnChunk(q *models.Question) {
	chunk := s.pipeline.ChunkOf(q.ID)
	if chunk < 0 {
		return
	}

	if !s.pipeline.Ready(chunk) {
		s.pipeline.PrepareAsync(chunk)
		s.events.Waiting("Preparing the next questions...")
		for attempt := 0; attempt < s.cfg.ChunkRetries; attempt++ {
			if s.pipeline.Ready(chunk) {
				break
			}
			time.Sleep(s.cfg.ChunkWait)
		}
		if !s.pipeline.Ready(chunk) {
			log.Printf("[Session] chunk %d still not ready, asking %s without enrichments", chunk, q.ID)
		}
	}

	s.mu.Lock()
	entering := chunk != s.currentChunk
	s.currentChunk = chunk
	s.mu.Unlock()

	// Begin preparing the next chunk as soon as this one is being served, so
	// chunk boundaries stay invisible when preprocessing keeps pace.
	if entering {
		s.pipeline.PrepareAsync(chunk + 1)
	}
}

// narrate plays back pre-synthesized audio, or falls back to synthesizing at
// ask time; if that fails too, the client narrates the text live.
func (s *Session) narrate(ctx context.Context, q *models.Question) {
	if q.AudioRef != "" || s.narrator == nil {
		return
	}
	narrCtx, cancel := context.WithTimeout(ctx, s.cfg.NarrateTimeout)
	defer cancel()

	ref, err := s.narrator.Synthesize(narrCtx, q.Text, q.ID)
	if err != nil {
		log.Printf("[Session] narration failed for %s, falling back to live narration: %v", q.ID, err)
		return
	}
	q.AudioRef = ref
}

func (s *Session) pollProctor(ctx context.Context) ProctorStatus {
	if !s.cfg.SignalEnabled || s.proctor == nil {
		return ProctorStatus{MoodState: "neutral"}
	}
	pollCtx, cancel := context.WithTimeout(ctx, s.cfg.ProctorTimeout)
	defer cancel()

	sig, err := s.proctor.Poll(pollCtx, s.cfg.InterviewID)
	if err != nil {
		log.Printf("[Session] proctor poll failed, treating signal as neutral: %v", err)
		return ProctorStatus{MoodState: "neutral"}
	}
	return sig
}

func (s *Session) integrateSiblingsLocked() {
	if !s.cfg.DepthEnabled {
		return
	}
	for _, sib := range s.pipeline.DrainSiblings() {
		s.orch.Queues().Q2 = append(s.orch.Queues().Q2, sib)
	}
}

func (s *Session) drainSiblings() {
	s.mu.Lock()
	s.integrateSiblingsLocked()
	s.mu.Unlock()
}

// Terminate ends the session from the outside: time expiry, the candidate
// closing the page, or the proctoring gate. Partial speech is persisted,
// nothing further is evaluated.
func (s *Session) Terminate(ctx context.Context, outcome models.InterviewOutcome) {
	s.mu.Lock()
	if s.state == StateComplete {
		s.mu.Unlock()
		return
	}
	var partialID, partial string
	if s.current != nil && s.spoke && !s.submitting && s.current.CandidateAnswer == "" {
		partialID = s.current.ID
		partial = strings.TrimSpace(s.transcript.String())
	}
	s.completeLocked()
	s.mu.Unlock()

	if partialID != "" && partial != "" {
		if err := s.store.RecordAnswer(ctx, partialID, partial, nil); err != nil {
			log.Printf("[Session] failed to persist partial transcript: %v", err)
		}
	}
	s.finalize(ctx, outcome)
}

// completeLocked flips the state and silences every timer. Callers hold the lock.
func (s *Session) completeLocked() {
	s.state = StateComplete
	s.stopPauseTimerLocked()
	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
}

// finalize announces completion. The closing message is generated only for a
// normally completed interview; terminations surface their outcome directly.
func (s *Session) finalize(ctx context.Context, outcome models.InterviewOutcome) {
	s.mu.Lock()
	if s.outcome != "" {
		s.mu.Unlock()
		return
	}
	s.outcome = outcome
	s.mu.Unlock()

	closing := ""
	if outcome == models.OutcomeCompleted {
		closing = fallbackClosing
		if s.closing != nil {
			msgCtx, cancel := context.WithTimeout(ctx, s.cfg.EvalTimeout)
			if msg, err := s.closing.ClosingMessage(msgCtx); err == nil && msg != "" {
				closing = msg
			}
			cancel()
		}
	}

	s.events.StateChanged(StateComplete)
	s.events.Completed(outcome, closing)
}

func wantsToEnd(answer string) bool {
	lower := strings.ToLower(answer)
	return strings.Contains(lower, "end this interview") ||
		strings.Contains(lower, "stop the interview")
}
