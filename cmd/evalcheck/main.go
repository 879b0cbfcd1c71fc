package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"hirevox/config"
	"hirevox/internal/interview"
	"hirevox/models"
	"hirevox/services"
)

// evalcheck scores one canned answer from the command line so prompt changes
// can be sanity-checked against the routing bands without running a session.
func main() {
	configPath := flag.String("config", "./config/config.prod.yml", "path to config file")
	interviewType := flag.String("type", "technical", "interview type: technical | behavioral")
	question := flag.String("question", "", "question text")
	ideal := flag.String("ideal", "", "ideal answer or rubric (generated when empty)")
	answer := flag.String("answer", "", "candidate answer to score")
	flag.Parse()

	if *question == "" || *answer == "" {
		log.Fatal("both -question and -answer are required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	services.InitInterviewAI(cfg)

	typ := interview.TypeTechnical
	if *interviewType == "behavioral" {
		typ = interview.TypeBehavioral
	}
	evaluator := &services.GeminiEvaluator{Type: typ}

	ctx := context.Background()

	idealText := *ideal
	if idealText == "" {
		generated, sources, err := evaluator.GenerateIdealAnswer(ctx, *question)
		if err != nil {
			log.Fatalf("Failed to generate ideal answer: %v", err)
		}
		idealText = generated
		fmt.Printf("Generated ideal answer:\n%s\n\nSources: %v\n\n", idealText, sources)
	}

	q := &models.Question{
		ID:          "evalcheck",
		Text:        *question,
		Category:    models.CategoryTechnical,
		IdealAnswer: idealText,
	}
	if typ == interview.TypeBehavioral {
		q.Category = models.CategoryNonTechnical
	}

	eval, err := evaluator.Evaluate(ctx, q, *answer)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	fmt.Printf("Score:       %d\n", eval.Score)
	fmt.Printf("Reason:      %s\n", eval.Reason)
	fmt.Printf("RouteAction: %s\n", eval.RouteAction)

	d := interview.Decide(typ, q, eval.Score)
	switch {
	case d.Promote != nil:
		fmt.Printf("Routing:     promote topic to %s\n", d.Promote.ToDifficulty)
	case d.GenerateFollowup:
		fmt.Printf("Routing:     %s follow-up\n", d.Tone)
	default:
		fmt.Println("Routing:     normal flow")
	}
}
