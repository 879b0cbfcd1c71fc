package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"hirevox/db"
	"hirevox/internal/interview"
	"hirevox/models"
	"hirevox/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is what the interview page sends over the socket.
type clientMessage struct {
	Type    string `json:"type"`    // begin | transcript | mute | submit | leave
	Content string `json:"content,omitempty"`
	IsMuted bool   `json:"isMuted,omitempty"`
}

// serverMessage is what the engine pushes back.
type serverMessage struct {
	Type      string           `json:"type"` // state | question | waiting | complete
	State     string           `json:"state,omitempty"`
	Question  *models.Question `json:"question,omitempty"`
	Content   string           `json:"content,omitempty"`
	Outcome   string           `json:"outcome,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// wsEvents adapts the session's event callbacks onto one websocket connection.
type wsEvents struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func (e *wsEvents) send(msg serverMessage) {
	msg.Timestamp = time.Now().Unix()
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if err := e.conn.WriteJSON(msg); err != nil {
		log.Printf("[WS] write failed: %v", err)
	}
}

func (e *wsEvents) StateChanged(state interview.State) {
	e.send(serverMessage{Type: "state", State: string(state)})
}

func (e *wsEvents) QuestionAsked(q *models.Question) {
	// The candidate never sees the ideal answer or the routing metadata.
	visible := &models.Question{
		ID:       q.ID,
		Text:     q.Text,
		Category: q.Category,
		AudioRef: q.AudioRef,
	}
	e.send(serverMessage{Type: "question", Question: visible})
}

func (e *wsEvents) Waiting(message string) {
	e.send(serverMessage{Type: "waiting", Content: message})
}

func (e *wsEvents) Completed(outcome models.InterviewOutcome, closing string) {
	e.send(serverMessage{Type: "complete", Outcome: string(outcome), Content: closing})
}

// InterviewHandler runs one candidate's live interview over a websocket.
func InterviewHandler(c *gin.Context) {
	interviewID := c.Param("id")
	email := c.GetString("userEmail")

	store := db.NewInterviewStore()
	itv, err := store.GetInterview(c, interviewID)
	if err != nil {
		c.JSON(404, gin.H{"error": "Interview not found"})
		return
	}
	if itv.CandidateEmail != email {
		c.JSON(403, gin.H{"error": "Not your interview"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events := &wsEvents{conn: conn}
	manager := services.GetSessionManager()

	session, err := manager.Open(context.Background(), itv, events)
	if err != nil {
		events.send(serverMessage{Type: "state", State: "error", Content: err.Error()})
		return
	}
	defer manager.Close(interviewID)

	// Preprocess the opening chunk before the candidate can begin.
	go func() {
		if err := session.Start(context.Background()); err != nil {
			log.Printf("[WS] start failed for %s: %v", interviewID, err)
		}
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("[WS] connection closed for %s: %v", interviewID, err)
			return
		}

		switch msg.Type {
		case "begin":
			go func() {
				if err := session.Begin(context.Background()); err != nil {
					log.Printf("[WS] begin failed for %s: %v", interviewID, err)
				}
			}()
		case "transcript":
			session.OnTranscript(msg.Content)
		case "mute":
			session.SetMuted(msg.IsMuted)
		case "submit":
			go session.Submit(context.Background())
		case "leave":
			// Leaving keeps the interview resumable; the deadline timer still
			// expires it if the candidate never returns.
			return
		default:
			log.Printf("[WS] unknown message type %q from %s", msg.Type, interviewID)
		}

		if session.State() == interview.StateComplete {
			return
		}
	}
}
