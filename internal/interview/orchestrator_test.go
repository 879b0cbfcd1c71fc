package interview

import (
	"context"
	"testing"

	"hirevox/models"
)

func newTechOrchestrator(store Store, followups FollowupGenerator) (*Orchestrator, *QueueSet) {
	qs := NewQueueSet(true, true)
	o := NewOrchestrator(Config{
		InterviewID:    "itv-1",
		Type:           TypeTechnical,
		DepthEnabled:   true,
		SignalEnabled:  true,
		ViolationLimit: 3,
	}, qs, store, followups)
	return o, qs
}

func TestSelectNextPriorityOrder(t *testing.T) {
	store := newStubStore()
	o, qs := newTechOrchestrator(store, &stubFollowups{})

	qs.Q1 = append(qs.Q1, techQuestion("base-1", "Explain indexing."))
	qs.Q3 = append(qs.Q3, &models.Question{ID: "fu-1", Text: "Can you elaborate?", Category: models.CategoryFollowup})

	sig := ProctorStatus{MoodState: "neutral"}

	q, err := o.SelectNext(context.Background(), sig)
	if err != nil {
		t.Fatal(err)
	}
	if q.ID != "fu-1" {
		t.Fatalf("follow-ups outrank base questions, got %s first", q.ID)
	}
	if q.QueueOrigin != models.OriginQ3 {
		t.Errorf("origin = %s, want Q3", q.QueueOrigin)
	}

	q, err = o.SelectNext(context.Background(), sig)
	if err != nil {
		t.Fatal(err)
	}
	if q.ID != "base-1" {
		t.Fatalf("expected base-1 next, got %s", q.ID)
	}

	q, err = o.SelectNext(context.Background(), sig)
	if err != nil || q != nil {
		t.Fatalf("empty queues should report completion, got q=%v err=%v", q, err)
	}
}

func TestSelectNextViolationGate(t *testing.T) {
	store := newStubStore()
	o, qs := newTechOrchestrator(store, &stubFollowups{})
	qs.Q1 = append(qs.Q1, techQuestion("base-1", "Explain indexing."))

	if _, err := o.SelectNext(context.Background(), ProctorStatus{ViolationCount: 2, MoodState: "neutral"}); err != nil {
		t.Fatalf("two violations should not terminate: %v", err)
	}

	_, err := o.SelectNext(context.Background(), ProctorStatus{ViolationCount: 3, MoodState: "neutral"})
	if err != ErrViolationLimit {
		t.Fatalf("three violations must terminate, got %v", err)
	}
}

func TestSelectNextTopicDeDup(t *testing.T) {
	store := newStubStore()
	o, qs := newTechOrchestrator(store, &stubFollowups{})

	first := techQuestion("base-1", "Explain indexing.")
	dup := &models.Question{ID: "base-1-dup", Text: "Explain indexing again.", Category: models.CategoryTechnical, TopicID: "base-1"}
	other := techQuestion("base-2", "Explain transactions.")
	qs.Q1 = append(qs.Q1, first, dup, other)

	sig := ProctorStatus{MoodState: "neutral"}
	q, _ := o.SelectNext(context.Background(), sig)
	if q.ID != "base-1" {
		t.Fatalf("got %s first", q.ID)
	}
	q, _ = o.SelectNext(context.Background(), sig)
	if q.ID != "base-2" {
		t.Fatalf("duplicate topic at the same difficulty must be skipped, got %s", q.ID)
	}
}

func TestPromotionReServesTopicAtHigherDifficulty(t *testing.T) {
	store := newStubStore()
	o, qs := newTechOrchestrator(store, &stubFollowups{})

	base := techQuestion("base-1", "Explain indexing.")
	qs.Q1 = append(qs.Q1, base, techQuestion("base-2", "Explain transactions."))
	qs.Q2 = append(qs.Q2, depthSibling("base-1", models.DifficultyMedium), depthSibling("base-1", models.DifficultyHard))

	sig := ProctorStatus{MoodState: "neutral"}
	q, _ := o.SelectNext(context.Background(), sig)
	if q.ID != "base-1" {
		t.Fatalf("got %s first", q.ID)
	}
	q.CandidateAnswer = "a strong answer"
	o.ApplyEvaluation(context.Background(), q, &models.Evaluation{Score: 85})

	q, _ = o.SelectNext(context.Background(), sig)
	if q.ID != "base-1-medium" {
		t.Fatalf("medium sibling should be promoted ahead of base-2, got %s", q.ID)
	}
	if q.QueueOrigin != models.OriginQ2 {
		t.Errorf("promoted question origin = %s, want Q2", q.QueueOrigin)
	}
	if len(qs.Q2) != 1 || qs.Q2[0].Difficulty != models.DifficultyHard {
		t.Errorf("only the hard sibling should remain pooled, Q2 = %d entries", len(qs.Q2))
	}

	// Strong answer on medium promotes hard; strong answer on hard is terminal.
	q.CandidateAnswer = "another strong answer"
	o.ApplyEvaluation(context.Background(), q, &models.Evaluation{Score: 90})
	q, _ = o.SelectNext(context.Background(), sig)
	if q.ID != "base-1-hard" {
		t.Fatalf("hard sibling should follow, got %s", q.ID)
	}
	q.CandidateAnswer = "an expert answer"
	o.ApplyEvaluation(context.Background(), q, &models.Evaluation{Score: 95})
	q, _ = o.SelectNext(context.Background(), sig)
	if q == nil || q.ID != "base-2" {
		t.Fatalf("after the hard rung the interview moves on, got %v", q)
	}
}

func TestWeakAnswerDiscardsTopicAndAsksCorrective(t *testing.T) {
	store := newStubStore()
	fu := &stubFollowups{}
	o, qs := newTechOrchestrator(store, fu)

	base := techQuestion("base-1", "Explain indexing.")
	qs.Q1 = append(qs.Q1, base, techQuestion("base-2", "Explain transactions."))
	qs.Q2 = append(qs.Q2, depthSibling("base-1", models.DifficultyMedium), depthSibling("base-1", models.DifficultyHard))

	sig := ProctorStatus{MoodState: "neutral"}
	q, _ := o.SelectNext(context.Background(), sig)
	q.CandidateAnswer = "i do not know"
	o.ApplyEvaluation(context.Background(), q, &models.Evaluation{Score: 5})

	if len(qs.Q2) != 0 {
		t.Fatalf("topic's depth siblings must be discarded, %d remain", len(qs.Q2))
	}
	if len(store.deleted) != 2 {
		t.Errorf("discards must be persisted, got %d deletions", len(store.deleted))
	}
	if fu.calls != 1 || fu.tones[0] != ToneCorrective {
		t.Fatalf("a corrective follow-up should be generated, calls=%d", fu.calls)
	}

	q, _ = o.SelectNext(context.Background(), sig)
	if q.Category != models.CategoryFollowup {
		t.Fatalf("the corrective follow-up must be asked next, got %s (%s)", q.ID, q.Category)
	}
	if q.ParentQuestionID != "base-1" {
		t.Errorf("follow-up parent = %q, want base-1", q.ParentQuestionID)
	}
}

func TestWeakAnswerTrimsSerialDepthQuestions(t *testing.T) {
	store := newStubStore()
	o, qs := newTechOrchestrator(store, &stubFollowups{broken: true})

	qs.Q1 = append(qs.Q1, techQuestion("base-1", "Explain indexing."))
	// Siblings for other topics, in generation order.
	qs.Q2 = append(qs.Q2,
		depthSibling("base-2", models.DifficultyMedium),
		depthSibling("base-2", models.DifficultyHard),
		depthSibling("base-3", models.DifficultyMedium),
	)

	sig := ProctorStatus{MoodState: "neutral"}
	q, _ := o.SelectNext(context.Background(), sig)
	o.ApplyEvaluation(context.Background(), q, &models.Evaluation{Score: 12})

	// Score 12 is past the <=10 same-topic discard but inside the <20 trim:
	// the next two pooled questions go, the third survives.
	if len(qs.Q2) != 1 || qs.Q2[0].ID != "base-3-medium" {
		t.Fatalf("expected only base-3-medium to survive the serial trim, Q2 = %d entries", len(qs.Q2))
	}
}

func TestFollowupNeverChains(t *testing.T) {
	store := newStubStore()
	fu := &stubFollowups{}
	o, qs := newTechOrchestrator(store, fu)

	parent := &models.Question{
		ID:          "fu-1",
		Text:        "Can you elaborate?",
		Category:    models.CategoryFollowup,
		QueueOrigin: models.OriginQ3,
	}
	qs.Q3 = append(qs.Q3, parent)

	q, _ := o.SelectNext(context.Background(), ProctorStatus{MoodState: "neutral"})
	q.CandidateAnswer = "still wrong"
	o.ApplyEvaluation(context.Background(), q, &models.Evaluation{Score: 3})

	if fu.calls != 0 {
		t.Fatalf("a follow-up answer must not spawn another follow-up, generator called %d times", fu.calls)
	}
	if len(qs.Q3) != 0 {
		t.Errorf("Q3 should stay empty, has %d", len(qs.Q3))
	}
}

func TestUnscoredAnswerIsStructuralNoOp(t *testing.T) {
	store := newStubStore()
	fu := &stubFollowups{}
	o, qs := newTechOrchestrator(store, fu)

	qs.Q1 = append(qs.Q1, techQuestion("base-1", "Explain indexing."))
	qs.Q2 = append(qs.Q2, depthSibling("base-1", models.DifficultyMedium))

	q, _ := o.SelectNext(context.Background(), ProctorStatus{MoodState: "neutral"})
	o.ApplyEvaluation(context.Background(), q, nil)

	if len(qs.Q2) != 1 || fu.calls != 0 || len(store.deleted) != 0 {
		t.Error("nil evaluation must leave the queues untouched")
	}
}

func TestMoodFollowupOncePerTransition(t *testing.T) {
	store := newStubStore()
	o, qs := newTechOrchestrator(store, &stubFollowups{})
	qs.Q1 = append(qs.Q1,
		techQuestion("base-1", "Explain indexing."),
		techQuestion("base-2", "Explain transactions."),
		techQuestion("base-3", "Explain replication."),
	)

	q, _ := o.SelectNext(context.Background(), ProctorStatus{MoodState: "neutral"})
	if q.ID != "base-1" {
		t.Fatalf("got %s first", q.ID)
	}

	// Mood flips to anxious: the contextual check-in preempts the next base question.
	q, _ = o.SelectNext(context.Background(), ProctorStatus{MoodState: "anxious", MoodChanged: true})
	if q.Category != models.CategoryInterruption {
		t.Fatalf("mood change should insert a check-in, got %s (%s)", q.ID, q.Category)
	}

	// Same mood persisting must not fire again, changed flag or not.
	q, _ = o.SelectNext(context.Background(), ProctorStatus{MoodState: "anxious", MoodChanged: true})
	if q.Category == models.CategoryInterruption {
		t.Fatal("a sustained mood must not re-trigger the check-in")
	}

	// A transition to a different non-neutral mood fires once more.
	q, _ = o.SelectNext(context.Background(), ProctorStatus{MoodState: "happy", MoodChanged: true})
	if q.Category != models.CategoryInterruption {
		t.Fatalf("a new mood transition should fire, got %s (%s)", q.ID, q.Category)
	}
}

func TestMoodNeutralNeverInterrupts(t *testing.T) {
	store := newStubStore()
	o, qs := newTechOrchestrator(store, &stubFollowups{})
	qs.Q1 = append(qs.Q1, techQuestion("base-1", "Explain indexing."), techQuestion("base-2", "Explain transactions."))

	o.SelectNext(context.Background(), ProctorStatus{MoodState: "neutral"})
	q, _ := o.SelectNext(context.Background(), ProctorStatus{MoodState: "neutral", MoodChanged: true})
	if q.Category == models.CategoryInterruption {
		t.Fatal("returning to neutral is not an interruption trigger")
	}
}

func TestMoodRetriggersAfterNeutralReset(t *testing.T) {
	store := newStubStore()
	o, qs := newTechOrchestrator(store, &stubFollowups{})
	qs.Q1 = append(qs.Q1,
		techQuestion("base-1", "Explain indexing."),
		techQuestion("base-2", "Explain transactions."),
		techQuestion("base-3", "Explain replication."),
	)

	q, _ := o.SelectNext(context.Background(), ProctorStatus{MoodState: "anxious", MoodChanged: true})
	if q.Category != models.CategoryInterruption {
		t.Fatalf("anxious transition should insert a check-in, got %s (%s)", q.ID, q.Category)
	}

	// A neutral reading in between closes the transition.
	q, _ = o.SelectNext(context.Background(), ProctorStatus{MoodState: "neutral", MoodChanged: true})
	if q.Category == models.CategoryInterruption {
		t.Fatal("neutral never interrupts")
	}

	// The same mood returning after neutral counts as a fresh transition.
	q, _ = o.SelectNext(context.Background(), ProctorStatus{MoodState: "anxious", MoodChanged: true})
	if q.Category != models.CategoryInterruption {
		t.Fatalf("anxious returning after neutral should fire again, got %s (%s)", q.ID, q.Category)
	}
}

func TestBehavioralProbingFollowup(t *testing.T) {
	store := newStubStore()
	fu := &stubFollowups{}
	qs := NewQueueSet(false, false)
	o := NewOrchestrator(Config{InterviewID: "itv-2", Type: TypeBehavioral}, qs, store, fu)

	qs.Q1 = append(qs.Q1, &models.Question{
		ID: "b1", Text: "Tell me about a conflict.", Category: models.CategoryNonTechnical, IdealAnswer: "rubric",
	})

	q, _ := o.SelectNext(context.Background(), ProctorStatus{})
	q.CandidateAnswer = "a strong story"
	o.ApplyEvaluation(context.Background(), q, &models.Evaluation{Score: 90})

	if fu.calls != 1 || fu.tones[0] != ToneProbing {
		t.Fatalf("score 90 should generate a probing follow-up, calls=%d tones=%v", fu.calls, fu.tones)
	}
	next, _ := o.SelectNext(context.Background(), ProctorStatus{})
	if next == nil || next.Category != models.CategoryFollowup {
		t.Fatalf("probing follow-up should be served next, got %v", next)
	}
}

func TestGeneratorFailureSkipsFollowup(t *testing.T) {
	store := newStubStore()
	o, qs := newTechOrchestrator(store, &stubFollowups{broken: true})
	qs.Q1 = append(qs.Q1, techQuestion("base-1", "Explain indexing."), techQuestion("base-2", "Explain transactions."))

	q, _ := o.SelectNext(context.Background(), ProctorStatus{MoodState: "neutral"})
	o.ApplyEvaluation(context.Background(), q, &models.Evaluation{Score: 5})

	next, _ := o.SelectNext(context.Background(), ProctorStatus{MoodState: "neutral"})
	if next.ID != "base-2" {
		t.Fatalf("generation failure should advance normally, got %s", next.ID)
	}
}

func TestEnqueueFinalWrapup(t *testing.T) {
	store := newStubStore()
	o, qs := newTechOrchestrator(store, &stubFollowups{})
	qs.Q1 = append(qs.Q1, techQuestion("base-1", "Explain indexing."), techQuestion("base-2", "Explain transactions."))
	qs.Q3 = append(qs.Q3, &models.Question{ID: "fu-1", Text: "Elaborate?", Category: models.CategoryFollowup})

	o.EnqueueFinalWrapup(context.Background())

	sig := ProctorStatus{MoodState: "neutral"}
	q, _ := o.SelectNext(context.Background(), sig)
	if q == nil || q.Category != models.CategoryFollowup || len(qs.Q1) != 0 {
		t.Fatalf("wrap-up must be the only remaining question, got %v with %d in Q1", q, len(qs.Q1))
	}
	if next, _ := o.SelectNext(context.Background(), sig); next != nil {
		t.Fatalf("nothing should follow the wrap-up, got %s", next.ID)
	}
}
