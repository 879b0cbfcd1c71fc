package controllers

import (
	"context"
	"fmt"
	"log"
	"time"

	"hirevox/config"
	"hirevox/db"
	"hirevox/models"
	"hirevox/structs"
	"hirevox/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var appConfig *config.Config

// SetConfig hands the loaded configuration to the controllers
func SetConfig(cfg *config.Config) {
	appConfig = cfg
}

func SignUp(ctx *gin.Context) {
	var request structs.SignUpRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	err := signUpWithCognito(appConfig.Cognito.AppClientId, appConfig.Cognito.AppClientSecret, request.Email, request.Password, ctx)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to sign up", "message": err.Error()})
		return
	}

	user := models.User{
		ID:          uuid.NewString(),
		Email:       request.Email,
		DisplayName: utils.ExtractNameFromEmail(request.Email),
		Role:        request.Role,
		CreatedAt:   time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := db.UserCollection.ReplaceOne(ctx, bson.M{"email": request.Email}, user, opts); err != nil {
		log.Println("Failed to store user profile:", err)
	}

	ctx.JSON(200, gin.H{"message": "Sign-up successful"})
}

func VerifyEmail(ctx *gin.Context) {
	var request structs.VerifyEmailRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	err := verifyEmailWithCognito(appConfig.Cognito.AppClientId, appConfig.Cognito.AppClientSecret, request.Email, request.ConfirmationCode, ctx)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to verify email", "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"message": "Email verification successful"})
}

func Login(ctx *gin.Context) {
	var request structs.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": "Check email and password format"})
		return
	}

	if err := loginWithCognito(appConfig.Cognito.AppClientId, appConfig.Cognito.AppClientSecret, request.Email, request.Password, ctx); err != nil {
		ctx.JSON(401, gin.H{"error": "Failed to sign in", "message": "Invalid email or password"})
		return
	}

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"email": request.Email}).Decode(&user); err != nil {
		log.Println("No profile for", request.Email, "- defaulting to candidate")
		user = models.User{ID: uuid.NewString(), Email: request.Email, Role: "candidate"}
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Email, user.Role)
	if err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to issue token"})
		return
	}

	ctx.JSON(200, gin.H{"message": "Sign-in successful", "accessToken": token, "role": user.Role})
}

func ForgotPassword(ctx *gin.Context) {
	var request structs.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": "Check email format"})
		return
	}

	if err := initiateForgotPassword(appConfig.Cognito.AppClientId, appConfig.Cognito.AppClientSecret, request.Email, ctx); err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to initiate password reset", "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"message": "Password reset initiated. Check your email for further instructions."})
}

func VerifyForgotPassword(ctx *gin.Context) {
	var request structs.VerifyForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	if err := confirmForgotPassword(appConfig.Cognito.AppClientId, appConfig.Cognito.AppClientSecret, request.Email, request.Code, request.NewPassword, ctx); err != nil {
		ctx.JSON(500, gin.H{"error": "Failed to confirm password reset", "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"message": "Password successfully changed"})
}

func VerifyToken(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		ctx.JSON(401, gin.H{"error": "Missing token"})
		return
	}

	token := authHeader
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		token = authHeader[7:]
	}

	valid, _, err := utils.ValidateTokenAndFetchEmail(token)
	if err != nil || !valid {
		ctx.JSON(401, gin.H{"error": "Token is invalid or expired"})
		return
	}

	ctx.JSON(200, gin.H{"message": "Token is valid"})
}

func cognitoClient(ctx context.Context) (*cognitoidentityprovider.Client, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(appConfig.Cognito.Region))
	if err != nil {
		log.Println("Error loading AWS config:", err)
		return nil, fmt.Errorf("failed to load AWS config: %v", err)
	}
	return cognitoidentityprovider.NewFromConfig(cfg), nil
}

func signUpWithCognito(appClientId, appClientSecret, email, password string, ctx *gin.Context) error {
	client, err := cognitoClient(ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, appClientId, appClientSecret)

	signupInput := cognitoidentityprovider.SignUpInput{
		ClientId:   aws.String(appClientId),
		Password:   aws.String(password),
		SecretHash: aws.String(secretHash),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{
				Name:  aws.String("email"),
				Value: aws.String(email),
			},
			{
				Name:  aws.String("nickname"),
				Value: aws.String(utils.ExtractNameFromEmail(email)),
			},
		},
	}

	if _, err := client.SignUp(ctx, &signupInput); err != nil {
		log.Println("Error during sign-up:", err)
		return fmt.Errorf("sign-up failed: %v", err)
	}
	return nil
}

func verifyEmailWithCognito(appClientId, appClientSecret, email, confirmationCode string, ctx *gin.Context) error {
	client, err := cognitoClient(ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, appClientId, appClientSecret)

	confirmSignUpInput := cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(appClientId),
		ConfirmationCode: aws.String(confirmationCode),
		Username:         aws.String(email),
		SecretHash:       aws.String(secretHash),
	}

	if _, err := client.ConfirmSignUp(ctx, &confirmSignUpInput); err != nil {
		log.Println("Error during email verification:", err)
		return fmt.Errorf("email verification failed: %v", err)
	}
	return nil
}

func loginWithCognito(appClientId, appClientSecret, email, password string, ctx *gin.Context) error {
	client, err := cognitoClient(ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, appClientId, appClientSecret)

	authInput := cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(appClientId),
		AuthParameters: map[string]string{
			"USERNAME":    email,
			"PASSWORD":    password,
			"SECRET_HASH": secretHash,
		},
	}

	if _, err := client.InitiateAuth(ctx, &authInput); err != nil {
		return fmt.Errorf("authentication failed")
	}
	return nil
}

func initiateForgotPassword(appClientId, appClientSecret, email string, ctx *gin.Context) error {
	client, err := cognitoClient(ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, appClientId, appClientSecret)

	forgotPasswordInput := cognitoidentityprovider.ForgotPasswordInput{
		ClientId:   aws.String(appClientId),
		Username:   aws.String(email),
		SecretHash: aws.String(secretHash),
	}

	if _, err := client.ForgotPassword(ctx, &forgotPasswordInput); err != nil {
		return fmt.Errorf("error initiating forgot password: %v", err)
	}
	return nil
}

func confirmForgotPassword(appClientId, appClientSecret, email, code, newPassword string, ctx *gin.Context) error {
	client, err := cognitoClient(ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, appClientId, appClientSecret)

	confirmForgotPasswordInput := cognitoidentityprovider.ConfirmForgotPasswordInput{
		ClientId:         aws.String(appClientId),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       aws.String(secretHash),
	}

	if _, err := client.ConfirmForgotPassword(ctx, &confirmForgotPasswordInput); err != nil {
		return fmt.Errorf("error confirming forgot password: %v", err)
	}
	return nil
}
