package structs

import "hirevox/models"

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=candidate employer"`
}

type VerifyEmailRequest struct {
	Email            string `json:"email" binding:"required,email"`
	ConfirmationCode string `json:"confirmationCode" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyForgotPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type CreateInterviewRequest struct {
	CandidateEmail  string             `json:"candidateEmail" binding:"required,email"`
	Type            string             `json:"type" binding:"required,oneof=technical behavioral"`
	DurationMinutes int                `json:"durationMinutes"`
	Proctored       bool               `json:"proctored"`
	Job             *models.JobData    `json:"job" binding:"required"`
	Resume          *models.ResumeData `json:"resume"`
}

type ProctorEventRequest struct {
	Kind   string `json:"kind" binding:"required,oneof=violation mood"`
	Detail string `json:"detail"`
	Mood   string `json:"mood"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
}
