package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"hirevox/internal/interview"
)

// GeminiFollowups generates the dynamic follow-up questions asked after a
// notably weak or notably strong answer. Implements interview.FollowupGenerator
// and interview.ClosingSource.
type GeminiFollowups struct{}

// Followup produces one follow-up question in the requested tone.
func (g *GeminiFollowups) Followup(ctx context.Context, questionText, candidateAnswer string, tone interview.FollowupTone) (string, error) {
	if geminiClient == nil {
		return "", errors.New("Gemini client not initialized")
	}

	var guidance string
	switch tone {
	case interview.ToneProbing:
		guidance = `The candidate answered very well. Ask ONE probing follow-up that digs deeper into the same topic: an edge case, a trade-off, or a "what would break if" scenario that tests whether their understanding goes beyond the surface.`
	default:
		guidance = `The candidate struggled with this question. Ask ONE gentler follow-up on the same topic that gives them a chance to recover: simplify the framing or approach the concept from a more practical angle. Do not repeat the original question verbatim and do not reveal the answer.`
	}

	prompt := fmt.Sprintf(
		`You are conducting a live voice interview.

Original question: %s

Candidate's answer: %s

%s

Return only the follow-up question text, nothing else.`,
		questionText, candidateAnswer, guidance,
	)

	text, err := generateModelText(ctx, prompt)
	if err != nil {
		log.Printf("[Followup] Gemini error: %v", err)
		return "", err
	}
	text = strings.TrimSpace(strings.Trim(text, `"`))
	if text == "" {
		return "", errors.New("empty follow-up returned")
	}
	return text, nil
}

// ClosingMessage writes the short wrap-up spoken when the interview completes.
func (g *GeminiFollowups) ClosingMessage(ctx context.Context) (string, error) {
	if geminiClient == nil {
		return "", errors.New("Gemini client not initialized")
	}

	prompt := `Write a brief, warm closing message for a candidate who has just finished an automated voice interview. Two or three sentences: thank them, tell them their responses will be reviewed, and wish them well. Return only the message text.`

	text, err := generateModelText(ctx, prompt)
	if err != nil {
		log.Printf("[Followup] Gemini error: %v", err)
		return "", err
	}
	return strings.TrimSpace(strings.Trim(text, `"`)), nil
}
