package interview

import (
	"context"
	"time"

	"hirevox/models"
)

// FollowupTone selects the flavor of a generated follow-up question.
type FollowupTone string

const (
	ToneCorrective FollowupTone = "corrective"
	ToneProbing    FollowupTone = "probing"
)

// Evaluator scores a submitted answer against an ideal answer or rubric.
// Implementations fail closed: a malformed or missing result is reported as
// an error and the caller treats the answer as unscored.
type Evaluator interface {
	Evaluate(ctx context.Context, q *models.Question, candidateAnswer string) (*models.Evaluation, error)
	GenerateIdealAnswer(ctx context.Context, questionText string) (ideal string, sources []string, err error)
}

// FollowupGenerator synthesizes a dynamic follow-up question from the parent
// question and the candidate's answer. Failure means no follow-up is inserted.
type FollowupGenerator interface {
	Followup(ctx context.Context, questionText, candidateAnswer string, tone FollowupTone) (string, error)
}

// SiblingGenerator produces the medium/hard depth siblings for a base
// technical question, linked by topicId and parentQuestionId.
type SiblingGenerator interface {
	DepthSiblings(ctx context.Context, base *models.Question) ([]*models.Question, error)
}

// Narrator pre-synthesizes speech for a question. An empty handle means the
// client narrates live at ask time; that is a fallback, not an error.
type Narrator interface {
	Synthesize(ctx context.Context, text, questionID string) (string, error)
}

// ProctorStatus is the Q0 side-channel snapshot polled once per turn.
type ProctorStatus struct {
	ViolationCount int
	MoodState      string
	MoodChanged    bool
}

// ProctorSource exposes the proctoring signal. Implementations own the
// webcam/violation plumbing; the core only consumes the summary.
type ProctorSource interface {
	Poll(ctx context.Context, interviewID string) (ProctorStatus, error)
}

// Store is the durability contract for queue and question mutations. The
// orchestrator and pipeline call it as their sole means of making mutations
// durable so the in-memory queue set and the persisted record stay consistent.
type Store interface {
	InsertQuestion(ctx context.Context, q *models.Question, insertAfterID string) error
	DeleteQuestion(ctx context.Context, questionID string) error
	MarkAsked(ctx context.Context, questionID string, at time.Time) error
	RecordAnswer(ctx context.Context, questionID, answer string, eval *models.Evaluation) error
	MarkChunkReady(ctx context.Context, interviewID string, chunk int) error
}

// ClosingSource produces the wrap-up message shown on completion.
type ClosingSource interface {
	ClosingMessage(ctx context.Context) (string, error)
}
