package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"hirevox/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InterviewStore persists interview sessions and their question documents.
// It is the durable mirror of the in-memory queue set: every queue mutation
// made by the orchestrator or the preprocessing pipeline goes through here.
type InterviewStore struct{}

func NewInterviewStore() *InterviewStore {
	return &InterviewStore{}
}

func (s *InterviewStore) CreateInterview(ctx context.Context, iv *models.Interview) error {
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now()
	}
	if iv.Status == "" {
		iv.Status = models.StatusInactive
	}
	_, err := InterviewCollection.InsertOne(ctx, iv)
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

func (s *InterviewStore) GetInterview(ctx context.Context, id string) (*models.Interview, error) {
	var iv models.Interview
	err := InterviewCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&iv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("interview not found: %s", id)
		}
		return nil, err
	}
	return &iv, nil
}

func (s *InterviewStore) ListInterviews(ctx context.Context, email string) ([]models.Interview, error) {
	filter := bson.M{"$or": []bson.M{
		{"candidateEmail": email},
		{"employerEmail": email},
	}}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := InterviewCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var interviews []models.Interview
	if err := cursor.All(ctx, &interviews); err != nil {
		return nil, err
	}
	return interviews, nil
}

func (s *InterviewStore) MarkStarted(ctx context.Context, id string) error {
	now := time.Now()
	_, err := InterviewCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": models.StatusActive, "startedAt": now},
	})
	return err
}

// CompleteInterview records the terminal outcome and closing message.
func (s *InterviewStore) CompleteInterview(ctx context.Context, id string, outcome models.InterviewOutcome, closing string) error {
	now := time.Now()
	_, err := InterviewCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":         models.StatusCompleted,
			"outcome":        outcome,
			"closingMessage": closing,
			"completedAt":    now,
		},
	})
	return err
}

// InsertQuestion upserts a question document. When insertAfterID is set the
// document records its position relative to the question that spawned it, so
// the served sequence reads naturally in the transcript view.
func (s *InterviewStore) InsertQuestion(ctx context.Context, q *models.Question, insertAfterID string) error {
	if insertAfterID != "" && q.ParentQuestionID == "" {
		q.ParentQuestionID = insertAfterID
	}
	opts := options.Replace().SetUpsert(true)
	_, err := QuestionCollection.ReplaceOne(ctx, bson.M{"_id": q.ID}, q, opts)
	if err != nil {
		return fmt.Errorf("failed to insert question %s: %w", q.ID, err)
	}
	return nil
}

func (s *InterviewStore) DeleteQuestion(ctx context.Context, questionID string) error {
	_, err := QuestionCollection.DeleteOne(ctx, bson.M{"_id": questionID})
	if err != nil {
		return fmt.Errorf("failed to delete question %s: %w", questionID, err)
	}
	return nil
}

// MarkAsked stamps askedAt when the question is actually played to the
// candidate, never at generation time.
func (s *InterviewStore) MarkAsked(ctx context.Context, questionID string, at time.Time) error {
	_, err := QuestionCollection.UpdateOne(ctx,
		bson.M{"_id": questionID, "askedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"askedAt": at}})
	return err
}

// RecordAnswer writes the frozen transcript and its evaluation. The filter
// only matches documents without an existing answer, so the write happens
// exactly once per question.
func (s *InterviewStore) RecordAnswer(ctx context.Context, questionID, answer string, eval *models.Evaluation) error {
	set := bson.M{"candidateAnswer": answer}
	if eval != nil {
		set["evaluation"] = eval
	}
	res, err := QuestionCollection.UpdateOne(ctx,
		bson.M{"_id": questionID, "candidateAnswer": bson.M{"$exists": false}},
		bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to record answer for %s: %w", questionID, err)
	}
	if res.MatchedCount == 0 {
		log.Printf("[Store] answer for %s already recorded, skipping", questionID)
	}
	return nil
}

// MarkChunkReady adds the chunk index to the interview's ready set.
func (s *InterviewStore) MarkChunkReady(ctx context.Context, interviewID string, chunk int) error {
	_, err := InterviewCollection.UpdateOne(ctx, bson.M{"_id": interviewID}, bson.M{
		"$addToSet": bson.M{"readyChunks": chunk},
	})
	return err
}

// ListQuestions returns all question documents for an interview in served order.
func (s *InterviewStore) ListQuestions(ctx context.Context, interviewID string) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.M{"askedAt": 1})
	cursor, err := QuestionCollection.Find(ctx, bson.M{"interviewId": interviewID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []models.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
