package controllers

import (
	"hirevox/db"
	"hirevox/internal/proctor"
	"hirevox/models"
	"hirevox/structs"

	"github.com/gin-gonic/gin"
)

var proctorTracker *proctor.Tracker

// SetProctorTracker hands the Redis-backed tracker to the ingest endpoints
func SetProctorTracker(t *proctor.Tracker) {
	proctorTracker = t
}

// IngestProctorEvent receives one webcam observation from the proctoring
// client. Only the interview's candidate may push events, and only while the
// interview is live.
func IngestProctorEvent(ctx *gin.Context) {
	id := ctx.Param("id")
	email := ctx.GetString("userEmail")

	var request structs.ProctorEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	store := db.NewInterviewStore()
	itv, err := store.GetInterview(ctx, id)
	if err != nil {
		ctx.JSON(404, gin.H{"error": "Interview not found"})
		return
	}
	if itv.CandidateEmail != email {
		ctx.JSON(403, gin.H{"error": "Not your interview"})
		return
	}
	if !itv.Proctored || itv.Status != models.StatusActive {
		ctx.JSON(409, gin.H{"error": "Interview is not accepting proctor events"})
		return
	}

	switch request.Kind {
	case models.ProctorViolation:
		count, err := proctorTracker.RecordViolation(ctx, id, request.Detail)
		if err != nil {
			ctx.JSON(500, gin.H{"error": "Failed to record violation", "message": err.Error()})
			return
		}
		ctx.JSON(200, gin.H{"message": "Violation recorded", "violationCount": count})
	case models.ProctorMood:
		if err := proctorTracker.RecordMood(ctx, id, request.Mood); err != nil {
			ctx.JSON(500, gin.H{"error": "Failed to record mood", "message": err.Error()})
			return
		}
		ctx.JSON(200, gin.H{"message": "Mood recorded"})
	default:
		ctx.JSON(400, gin.H{"error": "Unknown event kind"})
	}
}

// GetProctorLog returns the raw proctoring events for an interview. Employer only.
func GetProctorLog(ctx *gin.Context) {
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

	events, err := proctorTracker.EventLog(ctx, id, 100)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to load proctor log", "message": err.Error()})
		return
	}
	count, _ := proctorTracker.ViolationCount(ctx, id)

	ctx.JSON(200, gin.H{"events": events, "violationCount": count})
}
