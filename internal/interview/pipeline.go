package interview

import (
	"context"
	"log"
	"sync"

	"hirevox/models"
)

// Pipeline prepares question material ahead of the live turn cycle. The plan
// (the full Q1 list in serving order) is split into fixed-size chunks; for
// each chunk it generates the ideal answer or rubric, the narrated audio
// handle, and, for technical questions with a depth tier, the medium/hard
// siblings. A chunk is marked ready only once every question in it has been
// processed.
type Pipeline struct {
	mu       sync.Mutex
	running  bool
	ready    map[int]bool
	plan     []*models.Question
	pending  []*models.Question // generated depth siblings awaiting pickup
	prepared map[string]bool

	interviewID  string
	chunkSize    int
	depthEnabled bool

	eval     Evaluator
	siblings SiblingGenerator
	narrator Narrator
	store    Store
}

func NewPipeline(interviewID string, chunkSize int, depthEnabled bool, plan []*models.Question, eval Evaluator, siblings SiblingGenerator, narrator Narrator, store Store) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = 5
	}
	return &Pipeline{
		ready:        make(map[int]bool),
		prepared:     make(map[string]bool),
		plan:         plan,
		interviewID:  interviewID,
		chunkSize:    chunkSize,
		depthEnabled: depthEnabled,
		eval:         eval,
		siblings:     siblings,
		narrator:     narrator,
		store:        store,
	}
}

// ChunkCount reports how many chunks the plan divides into.
func (p *Pipeline) ChunkCount() int {
	return (len(p.plan) + p.chunkSize - 1) / p.chunkSize
}

// ChunkOf maps a planned question id to its chunk index, or -1 for dynamic
// questions (follow-ups, interruptions) that are never preprocessed.
func (p *Pipeline) ChunkOf(questionID string) int {
	for i, q := range p.plan {
		if q.ID == questionID {
			return i / p.chunkSize
		}
	}
	return -1
}

// Ready reports whether a chunk has completed preprocessing.
func (p *Pipeline) Ready(chunk int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready[chunk]
}

// MarkReady seeds readiness from a resumed session's persisted state.
func (p *Pipeline) MarkReady(chunks []int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range chunks {
		p.ready[c] = true
	}
}

// Prepare processes one chunk synchronously. At most one chunk job runs at a
// time; a call that finds another in flight returns immediately without work.
func (p *Pipeline) Prepare(ctx context.Context, chunk int) {
	p.mu.Lock()
	if p.running || p.ready[chunk] {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	start := chunk * p.chunkSize
	if start >= len(p.plan) {
		return
	}
	end := start + p.chunkSize
	if end > len(p.plan) {
		end = len(p.plan)
	}

	log.Printf("[Preprocess] chunk %d: preparing questions %d-%d", chunk, start, end-1)

	for _, q := range p.plan[start:end] {
		p.prepareQuestion(ctx, q, chunk)
	}

	if err := p.store.MarkChunkReady(ctx, p.interviewID, chunk); err != nil {
		log.Printf("[Preprocess] failed to mark chunk %d ready: %v", chunk, err)
	}

	p.mu.Lock()
	p.ready[chunk] = true
	p.mu.Unlock()
	log.Printf("[Preprocess] chunk %d ready", chunk)
}

// PrepareAsync kicks a chunk job off the live path. Used for chunk N+1 as
// soon as the engine begins asking from chunk N.
func (p *Pipeline) PrepareAsync(chunk int) {
	if chunk >= p.ChunkCount() || p.Ready(chunk) {
		return
	}
	go p.Prepare(context.Background(), chunk)
}

// prepareQuestion enriches one planned question in place. Failures degrade:
// a question without an ideal answer is still askable, it just won't be
// scored and spawns no depth siblings.
func (p *Pipeline) prepareQuestion(ctx context.Context, q *models.Question, chunk int) {
	p.mu.Lock()
	already := p.prepared[q.ID]
	p.prepared[q.ID] = true
	p.mu.Unlock()
	if already {
		return
	}

	q.ChunkIndex = chunk

	if q.IdealAnswer == "" {
		ideal, sources, err := p.eval.GenerateIdealAnswer(ctx, q.Text)
		if err != nil {
			log.Printf("[Preprocess] ideal answer unavailable for %s: %v", q.ID, err)
		} else {
			q.IdealAnswer = ideal
			q.SourceURLs = sources
		}
	}

	if q.AudioRef == "" {
		ref, err := p.narrator.Synthesize(ctx, q.Text, q.ID)
		if err != nil {
			log.Printf("[Preprocess] narration unavailable for %s, will narrate live: %v", q.ID, err)
		} else {
			q.AudioRef = ref
		}
	}

	if err := p.store.InsertQuestion(ctx, q, ""); err != nil {
		log.Printf("[Preprocess] failed to persist question %s: %v", q.ID, err)
	}

	if p.depthEnabled && q.Category == models.CategoryTechnical && q.IdealAnswer != "" {
		p.prepareSiblings(ctx, q, chunk)
	}
}

// prepareSiblings generates the medium/hard depth pair for a base question
// and files them into the Q2 pool.
func (p *Pipeline) prepareSiblings(ctx context.Context, base *models.Question, chunk int) {
	siblings, err := p.siblings.DepthSiblings(ctx, base)
	if err != nil {
		log.Printf("[Preprocess] depth siblings unavailable for %s: %v", base.ID, err)
		return
	}
	for _, s := range siblings {
		s.InterviewID = p.interviewID
		s.TopicID = base.TopicKey()
		s.ParentQuestionID = base.ID
		s.ChunkIndex = chunk
		if err := p.store.InsertQuestion(ctx, s, base.ID); err != nil {
			log.Printf("[Preprocess] failed to persist depth question %s: %v", s.ID, err)
			continue
		}
		p.mu.Lock()
		p.pending = append(p.pending, s)
		p.mu.Unlock()
	}
}

// DrainSiblings hands freshly generated depth questions to the caller. The
// session integrates them into the Q2 pool on its own turn, keeping the queue
// set single-owner.
func (p *Pipeline) DrainSiblings() []*models.Question {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.pending
	p.pending = nil
	return out
}
