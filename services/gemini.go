package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"hirevox/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// Global Gemini client instance
var geminiClient *genai.Client

// InitInterviewAI initializes the Gemini client using the API key from the config
func InitInterviewAI(cfg *config.Config) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.ApiKey))
	if err != nil {
		log.Printf("[AI] failed to initialize Gemini client: %v", err)
		return
	}
	geminiClient = client
	log.Println("[AI] Gemini client initialized")
}

// interviewModel returns a model handle with safety settings relaxed for
// interview content (candidates discuss security topics, failure stories etc.)
func interviewModel() *genai.GenerativeModel {
	model := geminiClient.GenerativeModel(defaultGeminiModel)
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
	}
	return model
}

func generateModelText(ctx context.Context, prompt string) (string, error) {
	if geminiClient == nil {
		return "", errors.New("Gemini client not initialized")
	}

	resp, err := interviewModel().GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content returned")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return cleanModelOutput(string(text)), nil
		}
	}
	return "", errors.New("no text part returned")
}

func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
