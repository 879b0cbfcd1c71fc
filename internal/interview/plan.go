package interview

import (
	"math/rand"
	"strings"

	"hirevox/models"

	"github.com/google/uuid"
)

// BuildQueue1 arranges freshly generated base questions into serving order:
// an introduction pinned first, a wrap-up pinned last, at most 20%
// non-technical in the shuffled middle. This is content policy, applied once
// before the session starts; the scheduler never reorders Q1 afterwards.
func BuildQueue1(questions []*models.Question) []*models.Question {
	if len(questions) == 0 {
		return nil
	}

	var technical, nonTechnical []*models.Question
	for _, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.Category == models.CategoryTechnical {
			// Base questions anchor their own topic group.
			if q.TopicID == "" {
				q.TopicID = q.ID
			}
			technical = append(technical, q)
		} else {
			nonTechnical = append(nonTechnical, q)
		}
	}

	intro := findByPhrase(nonTechnical, "tell me about yourself", "introduce yourself")
	outro := findByPhrase(nonTechnical, "any questions for", "anything else")

	if intro == nil && len(nonTechnical) > 0 {
		intro = nonTechnical[0]
	}
	if intro == nil {
		intro = &models.Question{
			ID:       uuid.NewString(),
			Text:     "Tell me about yourself and your background.",
			Category: models.CategoryNonTechnical,
		}
	}
	if outro == nil && len(nonTechnical) > 1 {
		outro = nonTechnical[len(nonTechnical)-1]
	}
	if outro == nil || outro == intro {
		outro = &models.Question{
			ID:       uuid.NewString(),
			Text:     "Do you have any questions for us, or is there anything else you'd like to add?",
			Category: models.CategoryNonTechnical,
		}
	}

	var middleNonTech []*models.Question
	for _, q := range nonTechnical {
		if q != intro && q != outro {
			middleNonTech = append(middleNonTech, q)
		}
	}

	maxNonTech := (len(technical) + len(middleNonTech)) * 20 / 100
	if len(middleNonTech) > maxNonTech {
		middleNonTech = middleNonTech[:maxNonTech]
	}

	middle := append(append([]*models.Question{}, technical...), middleNonTech...)
	rand.Shuffle(len(middle), func(i, j int) {
		middle[i], middle[j] = middle[j], middle[i]
	})

	plan := make([]*models.Question, 0, len(middle)+2)
	plan = append(plan, intro)
	plan = append(plan, middle...)
	plan = append(plan, outro)
	return plan
}

func findByPhrase(pool []*models.Question, phrases ...string) *models.Question {
	for _, q := range pool {
		lower := strings.ToLower(q.Text)
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				return q
			}
		}
	}
	return nil
}
