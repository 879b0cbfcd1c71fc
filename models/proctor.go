package models

const (
	ProctorViolation = "violation"
	ProctorMood      = "mood"
)

// ProctorEvent is one webcam-side observation pushed by the proctoring client.
// The server treats these as an opaque signal source; no vision logic lives here.
type ProctorEvent struct {
	InterviewID string `json:"interviewId"`
	Kind        string `json:"kind"` // violation | mood
	Detail      string `json:"detail,omitempty"`
	Mood        string `json:"mood,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}
