package interview

import (
	"context"
	"errors"
	"log"

	"hirevox/models"

	"github.com/google/uuid"
)

// ErrViolationLimit signals that the proctoring gate forced termination.
var ErrViolationLimit = errors.New("proctoring violation limit reached")

// Config parameterizes a single orchestrator. "Has depth tier" and "has
// proctoring signal" are flags, not separate code paths.
type Config struct {
	InterviewID    string
	Type           Type
	DepthEnabled   bool
	SignalEnabled  bool
	ViolationLimit int
}

// Orchestrator owns the queue set. It decides which question to ask next
// under the priority protocol and applies flow-rule output after each answer.
type Orchestrator struct {
	cfg       Config
	queues    *QueueSet
	store     Store
	followups FollowupGenerator

	asked    map[string]bool // topic keys already served this session
	current  *models.Question
	lastMood string // last mood that fired a follow-up, to gate re-triggers
}

func NewOrchestrator(cfg Config, queues *QueueSet, store Store, followups FollowupGenerator) *Orchestrator {
	if cfg.ViolationLimit <= 0 {
		cfg.ViolationLimit = 3
	}
	return &Orchestrator{
		cfg:       cfg,
		queues:    queues,
		store:     store,
		followups: followups,
		asked:     make(map[string]bool),
		lastMood:  "neutral",
	}
}

func (o *Orchestrator) Queues() *QueueSet { return o.queues }

// Remaining reports whether any question is still queued.
func (o *Orchestrator) Remaining() int {
	return len(o.queues.Q1) + len(o.queues.Q3)
}

// SelectNext applies the priority protocol: Q0 gate, then Q3, then Q1.
// It returns ErrViolationLimit when the signal forces termination and
// (nil, nil) when no question remains.
func (o *Orchestrator) SelectNext(ctx context.Context, sig ProctorStatus) (*models.Question, error) {
	if o.cfg.SignalEnabled {
		o.queues.Signal.ViolationCount = sig.ViolationCount
		o.queues.Signal.MoodState = sig.MoodState

		if sig.ViolationCount >= o.cfg.ViolationLimit {
			return nil, ErrViolationLimit
		}
		o.maybeMoodFollowup(ctx, sig)
	}

	for {
		var q *models.Question
		var origin models.QueueOrigin

		switch {
		case len(o.queues.Q3) > 0:
			q = o.queues.popQ3()
			origin = models.OriginQ3
		case len(o.queues.Q1) > 0:
			q = o.queues.popQ1()
			origin = models.OriginQ1
		default:
			return nil, nil
		}

		// Guards against a promoted depth question racing an older queued
		// instance of the same topic. The key includes difficulty so that
		// promotion, which legitimately re-serves a topic one level up, is
		// never mistaken for a duplicate.
		key := q.TopicKey() + "/" + string(q.Difficulty)
		if o.asked[key] {
			log.Printf("[Orchestrator] skipping %s: topic %s already asked", q.ID, key)
			continue
		}
		o.asked[key] = true

		// Promoted Q2 questions keep their origin; everything else records
		// the queue it was drawn from.
		if q.QueueOrigin == "" {
			q.QueueOrigin = origin
		}
		o.current = q
		return q, nil
	}
}

// moodFollowupText maps a detected mood onto a contextual check-in prompt.
var moodFollowupText = map[string]string{
	"happy":     "I noticed you seem enthusiastic! Can you tell me what aspect of this topic excites you the most?",
	"sad":       "You seem a bit uncertain. Would you like me to rephrase the question or provide more context?",
	"angry":     "I sense some frustration. Would you like to take a moment, or shall we approach this differently?",
	"surprised": "That's an interesting reaction! What aspect of this topic surprised you?",
	"anxious":   "Take your time. Would you like me to break down the question into smaller parts?",
}

// maybeMoodFollowup pushes a mood-contextual question to the front of Q3, at
// most once per mood transition.
func (o *Orchestrator) maybeMoodFollowup(ctx context.Context, sig ProctorStatus) {
	// A neutral reading closes the transition: the same mood returning later
	// counts as a fresh one.
	if sig.MoodState == "neutral" {
		o.lastMood = "neutral"
		return
	}
	if !sig.MoodChanged || sig.MoodState == o.lastMood {
		return
	}
	text, ok := moodFollowupText[sig.MoodState]
	if !ok {
		return
	}
	o.lastMood = sig.MoodState

	q := &models.Question{
		ID:          uuid.NewString(),
		InterviewID: o.cfg.InterviewID,
		Text:        text,
		Category:    models.CategoryInterruption,
	}
	if o.current != nil {
		q.ParentQuestionID = o.current.ID
	}
	o.queues.pushQ3Front(q)

	afterID := ""
	if o.current != nil {
		afterID = o.current.ID
	}
	if err := o.store.InsertQuestion(ctx, q, afterID); err != nil {
		log.Printf("[Orchestrator] failed to persist mood follow-up: %v", err)
	}
}

// ApplyEvaluation feeds one scored answer through the flow rules and mutates
// the queues accordingly. A nil evaluation (unscored answer) advances without
// structural changes. Called exactly once per answer, before the next
// SelectNext.
func (o *Orchestrator) ApplyEvaluation(ctx context.Context, q *models.Question, eval *models.Evaluation) {
	if eval == nil {
		return
	}

	d := Decide(o.cfg.Type, q, eval.Score)

	if o.cfg.DepthEnabled && q.Category == models.CategoryTechnical {
		if d.DeleteTopicFromQ2 != "" {
			for _, dq := range o.queues.deleteQ2Topic(d.DeleteTopicFromQ2) {
				if err := o.store.DeleteQuestion(ctx, dq.ID); err != nil {
					log.Printf("[Orchestrator] failed to delete depth question %s: %v", dq.ID, err)
				}
			}
		}
		if d.Promote != nil {
			o.promote(ctx, d.Promote)
		}
	}

	// Technical interviews trim the next two unanswered depth questions in
	// serial order on a weak answer, beyond the same-topic discard above.
	if o.cfg.DepthEnabled && o.cfg.Type == TypeTechnical && eval.Score < 20 {
		for _, dq := range o.queues.takeQ2Serial(2) {
			if err := o.store.DeleteQuestion(ctx, dq.ID); err != nil {
				log.Printf("[Orchestrator] failed to delete depth question %s: %v", dq.ID, err)
			}
		}
	}

	o.maybeAnswerFollowup(ctx, q, eval)
}

// promote moves the named depth sibling from Q2 to the front of Q1. A missing
// sibling is a consistency no-op, logged and ignored.
func (o *Orchestrator) promote(ctx context.Context, p *Promotion) {
	sibling := o.queues.findQ2Sibling(p.TopicID, p.ToDifficulty)
	if sibling == nil {
		log.Printf("[Orchestrator] no %s sibling to promote for topic %s", p.ToDifficulty, p.TopicID)
		return
	}
	o.queues.removeQ2(sibling.ID)
	sibling.QueueOrigin = models.OriginQ2
	o.queues.pushQ1Front(sibling)
}

// maybeAnswerFollowup generates and enqueues the low/high-score follow-up.
// Technical interviews use a single sub-20 corrective gate; behavioral ones
// use the dual corrective/probing bands from the flow rules.
func (o *Orchestrator) maybeAnswerFollowup(ctx context.Context, q *models.Question, eval *models.Evaluation) {
	// A follow-up never spawns another follow-up from the same root answer.
	if q.QueueOrigin == models.OriginQ3 {
		return
	}

	tone := ToneCorrective
	switch o.cfg.Type {
	case TypeTechnical:
		if eval.Score >= 20 {
			return
		}
	default:
		d := decideBehavioral(eval.Score)
		if !d.GenerateFollowup {
			return
		}
		tone = d.Tone
	}

	text, err := o.followups.Followup(ctx, q.Text, q.CandidateAnswer, tone)
	if err != nil || text == "" {
		log.Printf("[Orchestrator] follow-up generation skipped for %s: %v", q.ID, err)
		return
	}

	fq := &models.Question{
		ID:               uuid.NewString(),
		InterviewID:      o.cfg.InterviewID,
		Text:             text,
		Category:         models.CategoryFollowup,
		ParentQuestionID: q.ID,
	}
	// Front of Q3 so it reads as the natural next turn after its parent.
	o.queues.pushQ3Front(fq)
	if err := o.store.InsertQuestion(ctx, fq, q.ID); err != nil {
		log.Printf("[Orchestrator] failed to persist follow-up: %v", err)
	}
}

// EnqueueFinalWrapup queues the last check-in asked when a candidate requests
// early termination, and drops everything else still pending.
func (o *Orchestrator) EnqueueFinalWrapup(ctx context.Context) {
	q := &models.Question{
		ID:          uuid.NewString(),
		InterviewID: o.cfg.InterviewID,
		Text:        "Before we conclude, is there anything specific you'd like to discuss or clarify?",
		Category:    models.CategoryFollowup,
	}
	if o.current != nil {
		q.ParentQuestionID = o.current.ID
	}
	o.queues.Q1 = nil
	o.queues.Q3 = nil
	o.queues.pushQ3Front(q)
	if err := o.store.InsertQuestion(ctx, q, q.ParentQuestionID); err != nil {
		log.Printf("[Orchestrator] failed to persist wrap-up question: %v", err)
	}
}
