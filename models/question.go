package models

import "time"

type QuestionCategory string

const (
	CategoryTechnical    QuestionCategory = "technical"
	CategoryNonTechnical QuestionCategory = "non-technical"
	CategoryFollowup     QuestionCategory = "followup"
	CategoryInterruption QuestionCategory = "interruption"
)

type Difficulty string

const (
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QueueOrigin records which queue a question was drawn from when it was
// asked. It is persisted for audit only and never used for re-routing.
type QueueOrigin string

const (
	OriginQ1 QueueOrigin = "Q1"
	OriginQ2 QueueOrigin = "Q2"
	OriginQ3 QueueOrigin = "Q3"
)

// Evaluation is the scored result for a submitted answer.
type Evaluation struct {
	Score       int    `bson:"score" json:"score"` // 0-100
	Reason      string `bson:"reason" json:"reason"`
	RouteAction string `bson:"routeAction" json:"routeAction"`
}

// Question is a single interview prompt. Once AskedAt is set the document is
// immutable except for CandidateAnswer and Evaluation, each written exactly once.
type Question struct {
	ID               string           `bson:"_id" json:"id"`
	InterviewID      string           `bson:"interviewId" json:"interviewId"`
	Text             string           `bson:"text" json:"text"`
	Category         QuestionCategory `bson:"category" json:"category"`
	Difficulty       Difficulty       `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	IdealAnswer      string           `bson:"idealAnswer,omitempty" json:"idealAnswer,omitempty"` // ideal answer, rubric, or puzzle solution
	SourceURLs       []string         `bson:"sourceUrls,omitempty" json:"sourceUrls,omitempty"`
	TopicID          string           `bson:"topicId,omitempty" json:"topicId,omitempty"`
	ParentQuestionID string           `bson:"parentQuestionId,omitempty" json:"parentQuestionId,omitempty"`
	QueueOrigin      QueueOrigin      `bson:"queueOrigin,omitempty" json:"queueOrigin,omitempty"`
	AudioRef         string           `bson:"audioRef,omitempty" json:"audioRef,omitempty"` // pre-synthesized narration handle
	ChunkIndex       int              `bson:"chunkIndex" json:"chunkIndex"`
	AskedAt          *time.Time       `bson:"askedAt,omitempty" json:"askedAt,omitempty"`
	CandidateAnswer  string           `bson:"candidateAnswer,omitempty" json:"candidateAnswer,omitempty"`
	Evaluation       *Evaluation      `bson:"evaluation,omitempty" json:"evaluation,omitempty"`
}

// TopicKey groups a base question with its depth siblings. Topic-less
// questions fall back to their own id so de-duplication still applies.
func (q *Question) TopicKey() string {
	if q.TopicID != "" {
		return q.TopicID
	}
	return q.ID
}
