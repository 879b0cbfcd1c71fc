package controllers

import (
	"log"
	"time"

	"hirevox/db"
	"hirevox/models"
	"hirevox/structs"
	"hirevox/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateInterview schedules an interview and invites the candidate. Employer only.
func CreateInterview(ctx *gin.Context) {
	var request structs.CreateInterviewRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	employerEmail := ctx.GetString("userEmail")

	itv := &models.Interview{
		ID:              uuid.NewString(),
		CandidateEmail:  request.CandidateEmail,
		EmployerEmail:   employerEmail,
		Type:            request.Type,
		Status:          models.StatusInactive,
		DurationMinutes: request.DurationMinutes,
		Proctored:       request.Proctored,
		Job:             request.Job,
		Resume:          request.Resume,
		CreatedAt:       time.Now(),
	}
	if itv.DurationMinutes == 0 {
		itv.DurationMinutes = appConfig.Interview.DurationMinutes
	}

	store := db.NewInterviewStore()
	if err := store.CreateInterview(ctx, itv); err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to create interview", "message": err.Error()})
		return
	}

	go func() {
		if err := utils.SendInterviewInvite(appConfig, itv.CandidateEmail, itv.ID, itv.Job.Title); err != nil {
			log.Printf("[Interview] invite email failed for %s: %v", itv.ID, err)
		}
	}()

	ctx.JSON(200, gin.H{"message": "Interview created", "interview": itv})
}

// GetInterview returns one interview. Only its candidate or employer may see it.
func GetInterview(ctx *gin.Context) {
	id := ctx.Param("id")
	email := ctx.GetString("userEmail")

	store := db.NewInterviewStore()
	itv, err := store.GetInterview(ctx, id)
	if err != nil {
		ctx.JSON(404, gin.H{"error": "Interview not found"})
		return
	}
	if itv.CandidateEmail != email && itv.EmployerEmail != email {
		ctx.JSON(403, gin.H{"error": "Not your interview"})
		return
	}

	ctx.JSON(200, gin.H{"interview": itv})
}

// ListInterviews returns every interview the caller is part of.
func ListInterviews(ctx *gin.Context) {
	email := ctx.GetString("userEmail")

	store := db.NewInterviewStore()
	interviews, err := store.ListInterviews(ctx, email)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to list interviews", "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"interviews": interviews})
}

// GetInterviewResults returns the full transcript with per-question scores.
// Employer only, and only after the interview completed.
func GetInterviewResults(ctx *gin.Context) {
	id := ctx.Param("id")
	email := ctx.GetString("userEmail")

	store := db.NewInterviewStore()
	itv, err := store.GetInterview(ctx, id)
	if err != nil {
		ctx.JSON(404, gin.H{"error": "Interview not found"})
		return
	}
	if itv.EmployerEmail != email {
		ctx.JSON(403, gin.H{"error": "Not your interview"})
		return
	}
	if itv.Status != models.StatusCompleted {
		ctx.JSON(409, gin.H{"error": "Interview not completed yet"})
		return
	}

	questions, err := store.ListQuestions(ctx, id)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to load transcript", "message": err.Error()})
		return
	}

	// Only asked questions belong in the transcript; unserved depth siblings
	// and trimmed documents stay out of the report.
	var transcript []models.Question
	total, scored := 0, 0
	for _, q := range questions {
		if q.AskedAt == nil {
			continue
		}
		transcript = append(transcript, q)
		if q.Evaluation != nil {
			total += q.Evaluation.Score
			scored++
		}
	}

	average := 0
	if scored > 0 {
		average = total / scored
	}

	ctx.JSON(200, gin.H{
		"interview":    itv,
		"transcript":   transcript,
		"averageScore": average,
		"scoredCount":  scored,
	})
}
