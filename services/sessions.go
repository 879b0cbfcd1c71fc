package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"hirevox/config"
	"hirevox/db"
	"hirevox/internal/interview"
	"hirevox/internal/proctor"
	"hirevox/models"
	"hirevox/utils"
)

// SessionManager owns the live interview sessions. One session per interview;
// a second connection for the same interview reattaches instead of restarting.
type SessionManager struct {
	sessions map[string]*interview.Session
	mutex    sync.RWMutex

	cfg      *config.Config
	store    *db.InterviewStore
	narrator *S3Narrator
	source   *proctor.Source
	tracker  *proctor.Tracker
}

var (
	sessionManager *SessionManager
	once           sync.Once
)

// InitSessionManager wires the singleton with its collaborators. Called once
// from main after config, DB, Redis, and the Gemini client are up.
func InitSessionManager(cfg *config.Config, narrator *S3Narrator, tracker *proctor.Tracker, source *proctor.Source) {
	once.Do(func() {
		sessionManager = &SessionManager{
			sessions: make(map[string]*interview.Session),
			cfg:      cfg,
			store:    db.NewInterviewStore(),
			narrator: narrator,
			source:   source,
			tracker:  tracker,
		}
	})
}

// GetSessionManager returns the singleton session manager
func GetSessionManager() *SessionManager {
	return sessionManager
}

// Get returns the live session for an interview, if any.
func (sm *SessionManager) Get(interviewID string) (*interview.Session, bool) {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	s, ok := sm.sessions[interviewID]
	return s, ok
}

// Open creates (or resumes) the session for an interview and registers it.
// The events sink is the caller's transport; completion side effects are
// handled here before forwarding.
func (sm *SessionManager) Open(ctx context.Context, itv *models.Interview, events interview.Events) (*interview.Session, error) {
	sm.mutex.Lock()
	if existing, ok := sm.sessions[itv.ID]; ok {
		sm.mutex.Unlock()
		return existing, fmt.Errorf("session already open for interview %s: state %s", itv.ID, existing.State())
	}
	sm.mutex.Unlock()

	if itv.Status == models.StatusCompleted {
		return nil, fmt.Errorf("interview %s already completed", itv.ID)
	}

	typ := interview.TypeTechnical
	if itv.Type == string(interview.TypeBehavioral) {
		typ = interview.TypeBehavioral
	}
	depthEnabled := typ == interview.TypeTechnical

	plan, queues, err := sm.buildQueues(ctx, itv, typ, depthEnabled)
	if err != nil {
		return nil, err
	}

	evaluator := &GeminiEvaluator{Type: typ}
	followups := &GeminiFollowups{}

	orch := interview.NewOrchestrator(interview.Config{
		InterviewID:    itv.ID,
		Type:           typ,
		DepthEnabled:   depthEnabled,
		SignalEnabled:  itv.Proctored,
		ViolationLimit: sm.cfg.Interview.ViolationLimit,
	}, queues, sm.store, followups)

	pipeline := interview.NewPipeline(itv.ID, sm.cfg.Interview.ChunkSize, depthEnabled,
		plan, evaluator, &GeminiSiblings{}, sm.narrator, sm.store)
	pipeline.MarkReady(itv.ReadyChunks)

	duration := time.Duration(itv.DurationMinutes) * time.Minute
	if duration == 0 {
		duration = time.Duration(sm.cfg.Interview.DurationMinutes) * time.Minute
	}

	sessionCfg := interview.SessionConfig{
		InterviewID:    itv.ID,
		Type:           typ,
		DepthEnabled:   depthEnabled,
		SignalEnabled:  itv.Proctored,
		ViolationLimit: sm.cfg.Interview.ViolationLimit,
		PauseWindow:    time.Duration(sm.cfg.Interview.PauseSeconds) * time.Second,
		Duration:       duration,
		EvalTimeout:    time.Duration(sm.cfg.Interview.EvalTimeoutSec) * time.Second,
		NarrateTimeout: time.Duration(sm.cfg.Interview.NarrateTimeoutSec) * time.Second,
		ChunkWait:      time.Duration(sm.cfg.Interview.ChunkWaitSec) * time.Second,
		ChunkRetries:   sm.cfg.Interview.ChunkRetries,
	}

	sink := &sessionEvents{manager: sm, interviewID: itv.ID, forward: events}
	session := interview.NewSession(sessionCfg, orch, pipeline, evaluator, sm.narrator, sm.source, sm.store, followups, sink)

	sm.mutex.Lock()
	sm.sessions[itv.ID] = session
	sm.mutex.Unlock()

	if itv.Status == models.StatusInactive {
		if err := sm.store.MarkStarted(ctx, itv.ID); err != nil {
			log.Printf("[Sessions] failed to mark interview %s started: %v", itv.ID, err)
		}
	}
	return session, nil
}

// buildQueues loads persisted questions for a resumed interview, or generates
// a fresh plan, and partitions them into the queue set.
func (sm *SessionManager) buildQueues(ctx context.Context, itv *models.Interview, typ interview.Type, depthEnabled bool) ([]*models.Question, *interview.QueueSet, error) {
	queues := interview.NewQueueSet(itv.Proctored, depthEnabled)

	stored, err := sm.store.ListQuestions(ctx, itv.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load questions: %w", err)
	}

	if len(stored) == 0 {
		generated, err := GenerateBaseQuestions(ctx, itv, sm.cfg.Interview.QuestionCount)
		if err != nil {
			return nil, nil, fmt.Errorf("question generation failed: %w", err)
		}
		plan := interview.BuildQueue1(generated)
		for _, q := range plan {
			q.InterviewID = itv.ID
		}
		queues.Q1 = append(queues.Q1, plan...)
		return plan, queues, nil
	}

	// Resume: answered questions are history, the rest return to their queues.
	var plan []*models.Question
	for i := range stored {
		q := &stored[i]
		isBase := q.Category == models.CategoryTechnical && q.Difficulty == "" ||
			q.Category == models.CategoryNonTechnical
		if isBase {
			plan = append(plan, q)
		}
		if q.CandidateAnswer != "" || q.AskedAt != nil {
			continue
		}
		switch {
		case q.Category == models.CategoryFollowup || q.Category == models.CategoryInterruption:
			queues.Q3 = append(queues.Q3, q)
		case depthEnabled && q.Difficulty != "":
			queues.Q2 = append(queues.Q2, q)
		default:
			queues.Q1 = append(queues.Q1, q)
		}
	}
	// ListQuestions sorts by askedAt, which puts unasked documents first;
	// the plan must follow the original chunk layout instead.
	sort.SliceStable(plan, func(i, j int) bool { return plan[i].ChunkIndex < plan[j].ChunkIndex })

	log.Printf("[Sessions] resuming interview %s: %d in Q1, %d in Q2, %d in Q3",
		itv.ID, len(queues.Q1), len(queues.Q2), len(queues.Q3))
	return plan, queues, nil
}

// Close drops a session without completing it (client disconnected mid-way).
// The session itself stays resumable from persisted state.
func (sm *SessionManager) Close(interviewID string) {
	sm.mutex.Lock()
	delete(sm.sessions, interviewID)
	sm.mutex.Unlock()
}

// sessionEvents persists completion side effects before forwarding events to
// the transport layer.
type sessionEvents struct {
	manager     *SessionManager
	interviewID string
	forward     interview.Events
}

func (e *sessionEvents) StateChanged(state interview.State) {
	if e.forward != nil {
		e.forward.StateChanged(state)
	}
}

func (e *sessionEvents) QuestionAsked(q *models.Question) {
	if e.forward != nil {
		e.forward.QuestionAsked(q)
	}
}

func (e *sessionEvents) Waiting(message string) {
	if e.forward != nil {
		e.forward.Waiting(message)
	}
}

func (e *sessionEvents) Completed(outcome models.InterviewOutcome, closing string) {
	ctx := context.Background()
	sm := e.manager

	if err := sm.store.CompleteInterview(ctx, e.interviewID, outcome, closing); err != nil {
		log.Printf("[Sessions] failed to persist completion for %s: %v", e.interviewID, err)
	}
	if itv, err := sm.store.GetInterview(ctx, e.interviewID); err == nil {
		go func() {
			if err := utils.SendResultsReadyEmail(sm.cfg, itv.EmployerEmail, itv.ID, itv.CandidateEmail); err != nil {
				log.Printf("[Sessions] results email failed for %s: %v", itv.ID, err)
			}
		}()
	}
	if sm.tracker != nil {
		if err := sm.tracker.ClearSignal(ctx, e.interviewID); err != nil {
			log.Printf("[Sessions] failed to clear proctor signal for %s: %v", e.interviewID, err)
		}
	}
	if sm.source != nil {
		sm.source.Forget(e.interviewID)
	}
	sm.Close(e.interviewID)

	if e.forward != nil {
		e.forward.Completed(outcome, closing)
	}
}
