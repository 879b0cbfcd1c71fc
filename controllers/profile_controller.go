package controllers

import (
	"hirevox/db"
	"hirevox/models"
	"hirevox/structs"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// GetProfile returns the authenticated user's profile
func GetProfile(ctx *gin.Context) {
	email := ctx.GetString("userEmail")

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		ctx.JSON(404, gin.H{"error": "Profile not found"})
		return
	}

	ctx.JSON(200, gin.H{"profile": user})
}

// UpdateProfile updates the display name
func UpdateProfile(ctx *gin.Context) {
	email := ctx.GetString("userEmail")

	var request structs.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	_, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"displayName": request.DisplayName}})
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to update profile", "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"message": "Profile updated"})
}
