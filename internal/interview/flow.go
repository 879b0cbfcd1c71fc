package interview

import "hirevox/models"

// Type selects the rule set an interview runs under.
type Type string

const (
	TypeTechnical  Type = "technical"
	TypeBehavioral Type = "behavioral"
)

// Promotion names the depth sibling to move from Q2 to the front of Q1.
type Promotion struct {
	TopicID      string
	ToDifficulty models.Difficulty
}

// Decision is the pure routing outcome for one scored answer. The orchestrator
// applies it against live queue state; the bands themselves never touch queues.
type Decision struct {
	DeleteTopicFromQ2 string // topicId whose depth siblings are discarded, or ""
	Promote           *Promotion
	GenerateFollowup  bool
	Tone              FollowupTone
}

// Decide maps a score onto queue mutations for the answered question.
//
// Technical: score <= 10 discards the topic's depth siblings and asks a
// corrective follow-up; score >= 80 promotes the next difficulty; anything
// between is a no-op. Behavioral: score < 20 corrective, score > 80 probing,
// both boundaries inclusive on the no-op band. Depth progression only applies
// to technical-category questions; intros and behavioral prompts have no
// medium/hard siblings to move.
func Decide(typ Type, q *models.Question, score int) Decision {
	switch typ {
	case TypeBehavioral:
		return decideBehavioral(score)
	default:
		return decideTechnical(q, score)
	}
}

func decideTechnical(q *models.Question, score int) Decision {
	if q.Category != models.CategoryTechnical {
		if score <= 10 {
			return Decision{GenerateFollowup: true, Tone: ToneCorrective}
		}
		return Decision{}
	}

	switch {
	case score <= 10:
		return Decision{
			DeleteTopicFromQ2: q.TopicKey(),
			GenerateFollowup:  true,
			Tone:              ToneCorrective,
		}
	case score >= 80:
		var next models.Difficulty
		switch q.Difficulty {
		case "":
			next = models.DifficultyMedium
		case models.DifficultyMedium:
			next = models.DifficultyHard
		default:
			// already hard, nothing above it
			return Decision{}
		}
		return Decision{Promote: &Promotion{TopicID: q.TopicKey(), ToDifficulty: next}}
	default:
		return Decision{}
	}
}

func decideBehavioral(score int) Decision {
	switch {
	case score < 20:
		return Decision{GenerateFollowup: true, Tone: ToneCorrective}
	case score > 80:
		return Decision{GenerateFollowup: true, Tone: ToneProbing}
	default:
		return Decision{}
	}
}

// RouteAction labels the band an evaluation landed in, for persistence. The
// names differ per interview type but always reduce to the same three bands.
func RouteAction(typ Type, score int) string {
	if typ == TypeBehavioral {
		switch {
		case score < 20:
			return "followup_negative"
		case score > 80:
			return "followup_positive"
		default:
			return "normal_flow"
		}
	}
	switch {
	case score < 20:
		return "followup"
	case score >= 80:
		return "next_difficulty"
	default:
		return "normal_flow"
	}
}
