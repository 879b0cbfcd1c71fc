package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SpeechEngine turns question text into spoken audio. Implementations wrap
// whichever TTS provider is configured; the narrator only stores the result.
type SpeechEngine interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// HTTPSpeechEngine calls a TTS service over HTTP and expects audio bytes back.
type HTTPSpeechEngine struct {
	Endpoint string
	APIKey   string
}

func (e *HTTPSpeechEngine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"text": text, "format": "mp3"})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.Endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", e.APIKey))

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS API error: %s", string(body))
	}
	if len(body) == 0 {
		return nil, errors.New("TTS returned empty audio")
	}
	return body, nil
}

// S3Narrator synthesizes narration and stores it in S3, handing the object
// key back as the playback reference. Implements interview.Narrator.
type S3Narrator struct {
	client *s3.Client
	bucket string
	engine SpeechEngine
}

// NewS3Narrator creates an S3Narrator in the given region and bucket
func NewS3Narrator(ctx context.Context, region, bucket string, engine SpeechEngine) (*S3Narrator, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Narrator{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		engine: engine,
	}, nil
}

// Synthesize produces and uploads narration for one question, returning the
// object key the client streams from.
func (n *S3Narrator) Synthesize(ctx context.Context, text, questionID string) (string, error) {
	audio, err := n.engine.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("narration/%s.mp3", questionID)
	_, err = n.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(n.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(audio),
		ContentType: aws.String("audio/mpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload narration: %w", err)
	}
	return key, nil
}

// DeleteInterviewAudio removes the narration objects for a finished interview.
func (n *S3Narrator) DeleteInterviewAudio(ctx context.Context, questionIDs []string) {
	for _, id := range questionIDs {
		key := fmt.Sprintf("narration/%s.mp3", id)
		_, err := n.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(n.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			log.Printf("[Narrator] failed to delete %s: %v", key, err)
		}
	}
}
