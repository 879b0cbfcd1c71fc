package interview

import (
	"context"
	"fmt"
	"testing"
	"time"

	"hirevox/models"
)

type sessionFixture struct {
	session *Session
	events  *stubEvents
	store   *stubStore
	queues  *QueueSet
}

func newSessionFixture(t *testing.T, cfg SessionConfig, plan []*models.Question, proctor ProctorSource) *sessionFixture {
	t.Helper()
	if cfg.InterviewID == "" {
		cfg.InterviewID = "itv-1"
	}
	if cfg.PauseWindow == 0 {
		cfg.PauseWindow = 20 * time.Millisecond
	}
	if cfg.ChunkWait == 0 {
		cfg.ChunkWait = 5 * time.Millisecond
	}

	store := newStubStore()
	events := &stubEvents{}
	eval := &stubEvaluator{score: 50}
	followups := &stubFollowups{}

	queues := NewQueueSet(cfg.SignalEnabled, cfg.DepthEnabled)
	queues.Q1 = append(queues.Q1, plan...)

	orch := NewOrchestrator(Config{
		InterviewID:    cfg.InterviewID,
		Type:           cfg.Type,
		DepthEnabled:   cfg.DepthEnabled,
		SignalEnabled:  cfg.SignalEnabled,
		ViolationLimit: cfg.ViolationLimit,
	}, queues, store, followups)

	pipeline := NewPipeline(cfg.InterviewID, 5, cfg.DepthEnabled, plan, eval, &stubSiblings{}, &stubNarrator{}, store)

	sess := NewSession(cfg, orch, pipeline, eval, &stubNarrator{}, proctor, store, &stubClosing{msg: "Thanks, we'll be in touch."}, events)
	return &sessionFixture{session: sess, events: events, store: store, queues: queues}
}

func twoQuestionPlan() []*models.Question {
	return []*models.Question{
		{ID: "q1", Text: "Tell me about yourself.", Category: models.CategoryNonTechnical},
		{ID: "q2", Text: "Explain goroutine scheduling.", Category: models.CategoryTechnical, TopicID: "q2"},
	}
}

func answerCurrent(f *sessionFixture, text string) {
	f.session.OnTranscript(text)
	f.session.Submit(context.Background())
}

func TestSessionLifecycle(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical}, twoQuestionPlan(), nil)
	s := f.session

	if s.State() != StateSetup {
		t.Fatalf("initial state = %s", s.State())
	}
	if err := s.Begin(context.Background()); err == nil {
		t.Fatal("Begin before Start must fail")
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateReady {
		t.Fatalf("state after Start = %s, want ready", s.State())
	}
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("double Start must fail")
	}

	if err := s.Begin(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := f.events.lastQuestion(); got == nil || got.ID != "q1" {
		t.Fatalf("first question = %v, want q1", got)
	}
	if got := f.events.lastQuestion(); got.AskedAt == nil {
		t.Error("asked question must carry its timestamp")
	}

	answerCurrent(f, "I have six years of backend experience.")
	if got := f.events.lastQuestion(); got == nil || got.ID != "q2" {
		t.Fatalf("second question = %v, want q2", got)
	}

	answerCurrent(f, "The scheduler multiplexes goroutines onto OS threads.")
	if s.State() != StateComplete {
		t.Fatalf("state = %s, want complete", s.State())
	}
	if f.events.lastOutcome() != models.OutcomeCompleted {
		t.Fatalf("outcome = %s, want completed", f.events.lastOutcome())
	}
	if f.events.lastClosing() != "Thanks, we'll be in touch." {
		t.Errorf("closing = %q", f.events.lastClosing())
	}
	if f.store.answerCount() != 2 {
		t.Errorf("recorded %d answers, want 2", f.store.answerCount())
	}
}

func TestSessionSubmitRequiresSpeech(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical}, twoQuestionPlan(), nil)
	s := f.session
	s.Start(context.Background())
	s.Begin(context.Background())

	s.Submit(context.Background())
	if got := f.events.lastQuestion(); got.ID != "q1" {
		t.Fatalf("submit with no speech must not advance, current = %s", got.ID)
	}
	if f.store.answerCount() != 0 {
		t.Errorf("nothing should be recorded, got %d", f.store.answerCount())
	}
}

func TestSessionAutoSubmitOnPause(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical, PauseWindow: 20 * time.Millisecond}, twoQuestionPlan(), nil)
	s := f.session
	s.Start(context.Background())
	s.Begin(context.Background())

	s.OnTranscript("I studied distributed systems")
	s.OnTranscript("and worked on a payments platform.")

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if q := f.events.lastQuestion(); q != nil && q.ID == "q2" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := f.events.lastQuestion(); got.ID != "q2" {
		t.Fatal("pause detection should have auto-submitted and advanced")
	}
	if ans := f.store.answers["q1"]; ans != "I studied distributed systems and worked on a payments platform." {
		t.Errorf("transcript fragments not joined, got %q", ans)
	}
}

func TestSessionMuteSuspendsPauseDetection(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical, PauseWindow: 20 * time.Millisecond}, twoQuestionPlan(), nil)
	s := f.session
	s.Start(context.Background())
	s.Begin(context.Background())

	s.OnTranscript("Let me think about that.")
	s.SetMuted(true)
	time.Sleep(80 * time.Millisecond)

	if got := f.events.lastQuestion(); got.ID != "q1" {
		t.Fatal("no auto-submit may fire while muted")
	}
	if f.store.answerCount() != 0 {
		t.Fatal("no answer may be recorded while muted")
	}

	s.SetMuted(false)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if q := f.events.lastQuestion(); q != nil && q.ID == "q2" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := f.events.lastQuestion(); got.ID != "q2" {
		t.Fatal("unmuting should re-arm the pause detector")
	}
}

func TestSessionViolationLimitTerminates(t *testing.T) {
	proctor := &stubProctor{script: []ProctorStatus{
		{MoodState: "neutral"},
		{MoodState: "neutral", ViolationCount: 3},
	}}
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical, SignalEnabled: true}, twoQuestionPlan(), proctor)
	s := f.session
	s.Start(context.Background())
	s.Begin(context.Background())

	answerCurrent(f, "Here is my background.")

	if s.State() != StateComplete {
		t.Fatalf("state = %s, want complete", s.State())
	}
	if f.events.lastOutcome() != models.OutcomeTerminatedForCause {
		t.Fatalf("outcome = %s, want terminated_for_cause", f.events.lastOutcome())
	}
	if f.events.lastClosing() != "" {
		t.Errorf("terminations carry no closing message, got %q", f.events.lastClosing())
	}
	// The answer given before the gate fired stays recorded.
	if f.store.answerCount() != 1 {
		t.Errorf("recorded %d answers, want 1", f.store.answerCount())
	}
}

func TestSessionEarlyTerminationPhrase(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical}, twoQuestionPlan(), nil)
	s := f.session
	s.Start(context.Background())
	s.Begin(context.Background())

	answerCurrent(f, "Actually, I'd like to end this interview now.")

	got := f.events.lastQuestion()
	if got == nil || got.Category != models.CategoryFollowup {
		t.Fatalf("a final wrap-up should be asked, got %v", got)
	}
	if got.ID == "q2" {
		t.Fatal("remaining base questions must be dropped")
	}

	answerCurrent(f, "No, nothing else. Thank you.")
	if s.State() != StateComplete {
		t.Fatalf("state = %s, want complete", s.State())
	}
	if f.events.lastOutcome() != models.OutcomeCompleted {
		t.Fatalf("outcome = %s, want completed", f.events.lastOutcome())
	}
}

func TestSessionRepeatedEndPhraseFinishesAfterWrapup(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical}, twoQuestionPlan(), nil)
	s := f.session
	s.Start(context.Background())
	s.Begin(context.Background())

	answerCurrent(f, "Please end this interview.")
	wrapup := f.events.lastQuestion()
	if wrapup == nil || wrapup.Category != models.CategoryFollowup {
		t.Fatalf("a final wrap-up should be asked, got %v", wrapup)
	}

	// Repeating the phrase while answering the wrap-up must finish the
	// interview, not queue another wrap-up.
	answerCurrent(f, "No really, end this interview.")
	if s.State() != StateComplete {
		t.Fatalf("state = %s, want complete", s.State())
	}
	if f.events.lastOutcome() != models.OutcomeCompleted {
		t.Fatalf("outcome = %s, want completed", f.events.lastOutcome())
	}
	if got := f.events.askedCount(); got != 2 {
		t.Fatalf("asked %d questions, want 2 (first question plus one wrap-up)", got)
	}
}

func TestSessionSubmitIsIdempotent(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical, PauseWindow: time.Minute}, twoQuestionPlan(), nil)
	s := f.session
	s.Start(context.Background())
	s.Begin(context.Background())

	s.OnTranscript("Here is my answer.")

	done := make(chan struct{})
	go func() {
		s.Submit(context.Background())
		close(done)
	}()
	s.Submit(context.Background())
	<-done

	if f.store.answerCount() != 1 {
		t.Fatalf("recorded %d answers, want 1", f.store.answerCount())
	}
	if got := f.events.lastQuestion(); got == nil || got.ID != "q2" {
		t.Fatalf("double submit should advance exactly once, current = %v", got)
	}
	if got := f.store.askedCount(); got != 2 {
		t.Fatalf("stamped %d questions asked, want 2", got)
	}
}

func TestSessionGatesOnChunkReadiness(t *testing.T) {
	var plan []*models.Question
	for i := 1; i <= 6; i++ {
		plan = append(plan, &models.Question{
			ID:       fmt.Sprintf("q%d", i),
			Text:     fmt.Sprintf("Question %d", i),
			Category: models.CategoryNonTechnical,
		})
	}

	release := make(chan struct{})
	eval := &holdEvaluator{stubEvaluator: stubEvaluator{score: 50}, holdText: "Question 6", release: release}
	store := newStubStore()
	events := &stubEvents{}

	cfg := SessionConfig{
		InterviewID: "itv-1",
		Type:        TypeBehavioral,
		PauseWindow: time.Minute,
		ChunkWait:   5 * time.Millisecond,
	}
	queues := NewQueueSet(false, false)
	queues.Q1 = append(queues.Q1, plan...)
	orch := NewOrchestrator(Config{InterviewID: "itv-1", Type: TypeBehavioral}, queues, store, &stubFollowups{})
	pipeline := NewPipeline("itv-1", 5, false, plan, eval, &stubSiblings{}, &stubNarrator{}, store)
	s := NewSession(cfg, orch, pipeline, eval, &stubNarrator{}, nil, store, &stubClosing{msg: "bye"}, events)

	s.Start(context.Background())
	s.Begin(context.Background())

	// Work through chunk 0 while chunk 1 is stalled on its last question.
	for i := 1; i <= 4; i++ {
		s.OnTranscript("A reasonable answer.")
		s.Submit(context.Background())
	}
	time.AfterFunc(30*time.Millisecond, func() { close(release) })
	s.OnTranscript("A reasonable answer.")
	s.Submit(context.Background())

	if events.waitingCount() == 0 {
		t.Fatal("crossing into an unready chunk must surface the waiting state")
	}
	got := events.lastQuestion()
	if got == nil || got.ID != "q6" {
		t.Fatalf("expected q6 once its chunk readied, got %v", got)
	}
	if got.IdealAnswer == "" {
		t.Fatal("q6 must not be served before its preparation completed")
	}
}

func TestSessionExpiry(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical, Duration: 30 * time.Millisecond}, twoQuestionPlan(), nil)
	s := f.session
	s.Start(context.Background())
	s.Begin(context.Background())

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && s.State() != StateComplete {
		time.Sleep(5 * time.Millisecond)
	}
	if s.State() != StateComplete {
		t.Fatal("session should expire")
	}
	if f.events.lastOutcome() != models.OutcomeExpired {
		t.Fatalf("outcome = %s, want expired", f.events.lastOutcome())
	}
}

func TestSessionTerminatePersistsPartialTranscript(t *testing.T) {
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical, PauseWindow: time.Minute}, twoQuestionPlan(), nil)
	s := f.session
	s.Start(context.Background())
	s.Begin(context.Background())

	s.OnTranscript("I was in the middle of saying")
	s.Terminate(context.Background(), models.OutcomeExpired)

	if f.store.answers["q1"] != "I was in the middle of saying" {
		t.Errorf("partial transcript not persisted, got %q", f.store.answers["q1"])
	}
	if s.State() != StateComplete {
		t.Fatalf("state = %s, want complete", s.State())
	}

	// A second Terminate is a no-op.
	s.Terminate(context.Background(), models.OutcomeCompleted)
	if f.events.lastOutcome() != models.OutcomeExpired {
		t.Fatalf("outcome overwritten to %s", f.events.lastOutcome())
	}
}

func TestSessionDepthSiblingsReachQueue2(t *testing.T) {
	plan := []*models.Question{
		{ID: "q1", Text: "Explain indexing.", Category: models.CategoryTechnical, TopicID: "q1"},
		{ID: "q2", Text: "Explain transactions.", Category: models.CategoryTechnical, TopicID: "q2"},
	}
	f := newSessionFixture(t, SessionConfig{Type: TypeTechnical, DepthEnabled: true}, plan, nil)
	s := f.session
	s.Start(context.Background())

	if len(f.queues.Q2) != 4 {
		t.Fatalf("chunk 0 preprocessing should pool 4 depth siblings, got %d", len(f.queues.Q2))
	}
	s.Begin(context.Background())

	// A mid-band answer leaves the pool untouched and advances to q2.
	answerCurrent(f, "A reasonable answer about indexing.")
	if got := f.events.lastQuestion(); got == nil || got.ID != "q2" {
		t.Fatalf("expected q2 next, got %v", got)
	}
	if len(f.queues.Q2) != 4 {
		t.Fatalf("mid-band answers must not drain the depth pool, got %d", len(f.queues.Q2))
	}
}
