package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Cognito struct {
		AppClientId     string `yaml:"appClientId"`
		AppClientSecret string `yaml:"appClientSecret"`
		UserPoolId      string `yaml:"userPoolId"`
		Region          string `yaml:"region"`
	} `yaml:"cognito"`

	Gemini struct {
		ApiKey string `yaml:"apiKey"`
	} `yaml:"gemini"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Audio struct {
		Region      string `yaml:"region"`
		Bucket      string `yaml:"bucket"`
		TTSEndpoint string `yaml:"ttsEndpoint"`
		TTSApiKey   string `yaml:"ttsApiKey"`
	} `yaml:"audio"`

	Interview struct {
		PauseSeconds      int `yaml:"pauseSeconds"`      // silence window before auto-submit
		ChunkSize         int `yaml:"chunkSize"`         // questions per preprocessing chunk
		ViolationLimit    int `yaml:"violationLimit"`    // proctoring violations before termination
		DurationMinutes   int `yaml:"durationMinutes"`   // default session length
		EvalTimeoutSec    int `yaml:"evalTimeoutSec"`    // wait on the evaluator before degrading
		NarrateTimeoutSec int `yaml:"narrateTimeoutSec"` // wait on narration before live fallback
		ChunkWaitSec      int `yaml:"chunkWaitSec"`      // per-retry wait on an unready chunk
		ChunkRetries      int `yaml:"chunkRetries"`
		QuestionCount     int `yaml:"questionCount"` // base questions generated per interview
	} `yaml:"interview"`

	JWT struct {
		Secret string `yaml:"secret"`
		Expiry int    `yaml:"expiry"` // minutes
	} `yaml:"jwt"`

	SMTP struct {
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		SenderEmail string `yaml:"senderEmail"`
		SenderName  string `yaml:"senderName"`
	} `yaml:"smtp"`
}

// LoadConfig reads the configuration file and applies interview defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if cfg.Interview.PauseSeconds == 0 {
		cfg.Interview.PauseSeconds = 3
	}
	if cfg.Interview.ChunkSize == 0 {
		cfg.Interview.ChunkSize = 5
	}
	if cfg.Interview.ViolationLimit == 0 {
		cfg.Interview.ViolationLimit = 3
	}
	if cfg.Interview.DurationMinutes == 0 {
		cfg.Interview.DurationMinutes = 45
	}
	if cfg.Interview.EvalTimeoutSec == 0 {
		cfg.Interview.EvalTimeoutSec = 30
	}
	if cfg.Interview.NarrateTimeoutSec == 0 {
		cfg.Interview.NarrateTimeoutSec = 20
	}
	if cfg.Interview.ChunkWaitSec == 0 {
		cfg.Interview.ChunkWaitSec = 1
	}
	if cfg.Interview.ChunkRetries == 0 {
		cfg.Interview.ChunkRetries = 60
	}
	if cfg.Interview.QuestionCount == 0 {
		cfg.Interview.QuestionCount = 12
	}

	return &cfg, nil
}
