package models

import "time"

type InterviewStatus string

const (
	StatusInactive  InterviewStatus = "inactive"
	StatusActive    InterviewStatus = "active"
	StatusCompleted InterviewStatus = "completed"
)

type InterviewOutcome string

const (
	OutcomeCompleted          InterviewOutcome = "completed"
	OutcomeTerminatedForCause InterviewOutcome = "terminated_for_cause"
	OutcomeExpired            InterviewOutcome = "expired"
)

// Interview is one scheduled interview session for a candidate.
type Interview struct {
	ID              string           `bson:"_id" json:"id"`
	CandidateEmail  string           `bson:"candidateEmail" json:"candidateEmail"`
	EmployerEmail   string           `bson:"employerEmail" json:"employerEmail"`
	Type            string           `bson:"type" json:"type"` // technical | behavioral
	Status          InterviewStatus  `bson:"status" json:"status"`
	Outcome         InterviewOutcome `bson:"outcome,omitempty" json:"outcome,omitempty"`
	DurationMinutes int              `bson:"durationMinutes" json:"durationMinutes"`
	Proctored       bool             `bson:"proctored" json:"proctored"`
	ReadyChunks     []int            `bson:"readyChunks" json:"readyChunks"`
	ClosingMessage  string           `bson:"closingMessage,omitempty" json:"closingMessage,omitempty"`
	Job             *JobData         `bson:"job,omitempty" json:"job,omitempty"`
	Resume          *ResumeData      `bson:"resume,omitempty" json:"resume,omitempty"`
	CreatedAt       time.Time        `bson:"createdAt" json:"createdAt"`
	StartedAt       *time.Time       `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt     *time.Time       `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// JobData is the employer-side context used for question generation.
type JobData struct {
	Title        string   `bson:"title" json:"title"`
	Department   string   `bson:"department,omitempty" json:"department,omitempty"`
	Seniority    string   `bson:"seniority,omitempty" json:"seniority,omitempty"`
	TechStack    []string `bson:"techStack,omitempty" json:"techStack,omitempty"`
	Description  string   `bson:"description,omitempty" json:"description,omitempty"`
	Requirements string   `bson:"requirements,omitempty" json:"requirements,omitempty"`
}

// ResumeData is the candidate-side context used for question generation.
type ResumeData struct {
	Summary  string   `bson:"summary,omitempty" json:"summary,omitempty"`
	Skills   string   `bson:"skills,omitempty" json:"skills,omitempty"`
	Work     []string `bson:"work,omitempty" json:"work,omitempty"`
	Projects []string `bson:"projects,omitempty" json:"projects,omitempty"`
}
