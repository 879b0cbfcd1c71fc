package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"hirevox/models"

	"github.com/google/uuid"
)

// GenerateBaseQuestions produces the interview's base question list from the
// job description and the candidate's resume. The returned questions are raw
// material for queue construction; ordering and intro/outro pinning happen
// later.
func GenerateBaseQuestions(ctx context.Context, itv *models.Interview, count int) ([]*models.Question, error) {
	if geminiClient == nil {
		return nil, errors.New("Gemini client not initialized")
	}
	if count <= 0 {
		count = 12
	}

	prompt := fmt.Sprintf(
		`Act as a senior interviewer preparing a %s interview. Generate %d interview questions tailored to the job and the candidate below. Mix mostly role-specific technical questions with a few non-technical ones (background, motivation, collaboration). Include one "Tell me about yourself" style opener and one "Do you have any questions for us?" style closer.

Job:
%s

Candidate resume:
%s

Required Output Format (JSON):
[
  {"text": "question text", "category": "technical"},
  {"text": "question text", "category": "non-technical"},
  ...
]`,
		itv.Type, count, describeJob(itv.Job), describeResume(itv.Resume),
	)

	text, err := generateModelText(ctx, prompt)
	if err != nil {
		log.Printf("[QuestionGen] Gemini error: %v", err)
		return nil, err
	}

	var raw []struct {
		Text     string `json:"text"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		log.Printf("[QuestionGen] failed to parse questions JSON: %v. Raw: %s", err, text)
		return nil, err
	}

	questions := make([]*models.Question, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		category := models.CategoryNonTechnical
		if r.Category == "technical" {
			category = models.CategoryTechnical
		}
		questions = append(questions, &models.Question{
			ID:          uuid.NewString(),
			InterviewID: itv.ID,
			Text:        strings.TrimSpace(r.Text),
			Category:    category,
		})
	}
	if len(questions) == 0 {
		return nil, errors.New("no questions returned")
	}
	return questions, nil
}

// GeminiSiblings generates the medium/hard depth pair for a base technical
// question. Implements interview.SiblingGenerator.
type GeminiSiblings struct{}

// DepthSiblings returns exactly one medium and one hard variant on the base
// question's topic, each with its own ideal answer.
func (g *GeminiSiblings) DepthSiblings(ctx context.Context, base *models.Question) ([]*models.Question, error) {
	if geminiClient == nil {
		return nil, errors.New("Gemini client not initialized")
	}

	prompt := fmt.Sprintf(
		`The base interview question below will be asked first. Generate two harder questions on the SAME topic, to be asked only if the candidate answers the previous level well: one "medium" question that goes one step deeper, and one "hard" question that tests expert-level understanding. Write an ideal answer for each.

Base question: %s

Base ideal answer: %s

Required Output Format (JSON):
[
  {"text": "question text", "difficulty": "medium", "idealAnswer": "text"},
  {"text": "question text", "difficulty": "hard", "idealAnswer": "text"}
]`,
		base.Text, base.IdealAnswer,
	)

	text, err := generateModelText(ctx, prompt)
	if err != nil {
		log.Printf("[QuestionGen] Gemini error: %v", err)
		return nil, err
	}

	var raw []struct {
		Text        string `json:"text"`
		Difficulty  string `json:"difficulty"`
		IdealAnswer string `json:"idealAnswer"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		log.Printf("[QuestionGen] failed to parse siblings JSON: %v. Raw: %s", err, text)
		return nil, err
	}

	var siblings []*models.Question
	for _, r := range raw {
		difficulty := models.Difficulty(r.Difficulty)
		if difficulty != models.DifficultyMedium && difficulty != models.DifficultyHard {
			continue
		}
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		siblings = append(siblings, &models.Question{
			ID:          uuid.NewString(),
			InterviewID: base.InterviewID,
			Text:        strings.TrimSpace(r.Text),
			Category:    models.CategoryTechnical,
			Difficulty:  difficulty,
			IdealAnswer: r.IdealAnswer,
		})
	}
	if len(siblings) == 0 {
		return nil, errors.New("no depth siblings returned")
	}
	return siblings, nil
}

func describeJob(job *models.JobData) string {
	if job == nil {
		return "(no job description provided)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", job.Title)
	if job.Seniority != "" {
		fmt.Fprintf(&b, "Seniority: %s\n", job.Seniority)
	}
	if len(job.TechStack) > 0 {
		fmt.Fprintf(&b, "Tech stack: %s\n", strings.Join(job.TechStack, ", "))
	}
	if job.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", job.Description)
	}
	if job.Requirements != "" {
		fmt.Fprintf(&b, "Requirements: %s\n", job.Requirements)
	}
	return b.String()
}

func describeResume(resume *models.ResumeData) string {
	if resume == nil {
		return "(no resume provided)"
	}
	var b strings.Builder
	if resume.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", resume.Summary)
	}
	if resume.Skills != "" {
		fmt.Fprintf(&b, "Skills: %s\n", resume.Skills)
	}
	if len(resume.Work) > 0 {
		fmt.Fprintf(&b, "Work history:\n- %s\n", strings.Join(resume.Work, "\n- "))
	}
	if len(resume.Projects) > 0 {
		fmt.Fprintf(&b, "Projects:\n- %s\n", strings.Join(resume.Projects, "\n- "))
	}
	return b.String()
}
