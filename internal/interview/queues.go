package interview

import "hirevox/models"

// Signal is the Q0 proctoring side-channel. It is a priority gate, not a
// queue of questions: the scheduler consults it before any queue check.
type Signal struct {
	Enabled        bool
	ViolationCount int
	MoodState      string
}

// QueueSet is the mutable session state. It is owned exclusively by the
// Orchestrator and mutated only through SelectNext and ApplyEvaluation.
//
//	Q1: base questions, FIFO
//	Q2: depth pool (medium/hard), promoted into Q1 or deleted, never served directly
//	Q3: dynamic follow-ups, FIFO, highest question priority after Q0
type QueueSet struct {
	Signal Signal
	Q1     []*models.Question
	Q2     []*models.Question // nil when the interview type has no depth tier
	Q3     []*models.Question
}

func NewQueueSet(signalEnabled, depthEnabled bool) *QueueSet {
	qs := &QueueSet{Signal: Signal{Enabled: signalEnabled, MoodState: "neutral"}}
	if depthEnabled {
		qs.Q2 = []*models.Question{}
	}
	return qs
}

func (qs *QueueSet) popQ1() *models.Question {
	if len(qs.Q1) == 0 {
		return nil
	}
	q := qs.Q1[0]
	qs.Q1 = qs.Q1[1:]
	return q
}

func (qs *QueueSet) popQ3() *models.Question {
	if len(qs.Q3) == 0 {
		return nil
	}
	q := qs.Q3[0]
	qs.Q3 = qs.Q3[1:]
	return q
}

func (qs *QueueSet) pushQ1Front(q *models.Question) {
	qs.Q1 = append([]*models.Question{q}, qs.Q1...)
}

func (qs *QueueSet) pushQ3Front(q *models.Question) {
	qs.Q3 = append([]*models.Question{q}, qs.Q3...)
}

// findQ2Sibling returns the depth sibling for a topic at the given difficulty.
func (qs *QueueSet) findQ2Sibling(topicID string, difficulty models.Difficulty) *models.Question {
	for _, q := range qs.Q2 {
		if q.TopicID == topicID && q.Difficulty == difficulty {
			return q
		}
	}
	return nil
}

func (qs *QueueSet) removeQ2(id string) bool {
	for i, q := range qs.Q2 {
		if q.ID == id {
			qs.Q2 = append(qs.Q2[:i], qs.Q2[i+1:]...)
			return true
		}
	}
	return false
}

// deleteQ2Topic removes every depth sibling sharing the topic and returns them.
func (qs *QueueSet) deleteQ2Topic(topicID string) []*models.Question {
	var deleted []*models.Question
	kept := qs.Q2[:0]
	for _, q := range qs.Q2 {
		if q.TopicID == topicID {
			deleted = append(deleted, q)
		} else {
			kept = append(kept, q)
		}
	}
	qs.Q2 = kept
	return deleted
}

// takeQ2Serial removes up to n depth questions from the front of the pool in
// generation order.
func (qs *QueueSet) takeQ2Serial(n int) []*models.Question {
	if n > len(qs.Q2) {
		n = len(qs.Q2)
	}
	taken := qs.Q2[:n]
	qs.Q2 = qs.Q2[n:]
	return taken
}
