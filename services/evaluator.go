package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"hirevox/internal/interview"
	"hirevox/models"
)

// GeminiEvaluator scores candidate answers against the question's ideal
// answer or rubric. It implements interview.Evaluator and fails closed:
// malformed model output is reported as an error, never as a guessed score.
type GeminiEvaluator struct {
	Type interview.Type
}

// Evaluate scores one answer on the 0-100 scale.
func (e *GeminiEvaluator) Evaluate(ctx context.Context, q *models.Question, candidateAnswer string) (*models.Evaluation, error) {
	if geminiClient == nil {
		return nil, errors.New("Gemini client not initialized")
	}

	rubricLabel := "ideal answer"
	if e.Type == interview.TypeBehavioral {
		rubricLabel = "evaluation rubric"
	}

	prompt := fmt.Sprintf(
		`Act as a senior interviewer and score the candidate's answer to the question below against the %s. Score out of 100 considering correctness, depth, and communication. Be strict: an answer that misses the core of the question scores below 20; an excellent, complete answer scores 80 or above.

Question: %s

%s:
%s

Candidate's answer:
%s

Required Output Format (JSON):
{
  "score": X,
  "reason": "one or two sentences explaining the score"
}`,
		rubricLabel, q.Text, rubricLabel, q.IdealAnswer, candidateAnswer,
	)

	text, err := generateModelText(ctx, prompt)
	if err != nil {
		log.Printf("[Evaluator] Gemini error: %v", err)
		return nil, err
	}

	var eval models.Evaluation
	if err := json.Unmarshal([]byte(text), &eval); err != nil {
		log.Printf("[Evaluator] failed to parse evaluation JSON: %v. Raw: %s", err, text)
		return nil, err
	}
	if eval.Score < 0 || eval.Score > 100 {
		return nil, fmt.Errorf("score %d out of range", eval.Score)
	}
	eval.RouteAction = interview.RouteAction(e.Type, eval.Score)
	return &eval, nil
}

// GenerateIdealAnswer produces the reference answer a submission is scored
// against, with the sources it draws on.
func (e *GeminiEvaluator) GenerateIdealAnswer(ctx context.Context, questionText string) (string, []string, error) {
	if geminiClient == nil {
		return "", nil, errors.New("Gemini client not initialized")
	}

	prompt := fmt.Sprintf(
		`Act as a subject-matter expert and write the ideal answer to the interview question below. The answer should be what a strong candidate would say in two to four minutes: correct, concrete, and well structured. Also list up to three authoritative reference URLs.

Question: %s

Required Output Format (JSON):
{
  "idealAnswer": "text",
  "sourceUrls": ["url", ...]
}`,
		questionText,
	)

	text, err := generateModelText(ctx, prompt)
	if err != nil {
		log.Printf("[Evaluator] Gemini error: %v", err)
		return "", nil, err
	}

	var out struct {
		IdealAnswer string   `json:"idealAnswer"`
		SourceURLs  []string `json:"sourceUrls"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		log.Printf("[Evaluator] failed to parse ideal answer JSON: %v. Raw: %s", err, text)
		return "", nil, err
	}
	if out.IdealAnswer == "" {
		return "", nil, errors.New("empty ideal answer returned")
	}
	return out.IdealAnswer, out.SourceURLs, nil
}
