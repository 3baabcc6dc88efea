// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	// VoiceURL is the websocket address handed to the browser for the
	// voice channel.
	VoiceURL string

	Groq  GroqConfig
	Voice VoiceConfig
}

// GroqConfig selects the Groq API models used for chat, transcription, and
// speech synthesis.
type GroqConfig struct {
	APIKey    string
	ChatModel string
	STTModel  string
	TTSModel  string
	TTSVoice  string
}

// VoiceConfig bounds the audio pipeline.
type VoiceConfig struct {
	MaxWorkers        int
	TranscribeTimeout time.Duration
	ChatTimeout       time.Duration
	SpeakTimeout      time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/erp.db"),
		VoiceURL:    getEnv("VOICE_URL", "ws://localhost:8080/ws/voice"),
		Groq: GroqConfig{
			APIKey:    getEnv("GROQ_API_KEY", ""),
			ChatModel: getEnv("GROQ_CHAT_MODEL", "llama-3.3-70b-versatile"),
			STTModel:  getEnv("GROQ_STT_MODEL", "whisper-large-v3-turbo"),
			TTSModel:  getEnv("GROQ_TTS_MODEL", "playai-tts"),
			TTSVoice:  getEnv("GROQ_TTS_VOICE", "Fritz-PlayAI"),
		},
		Voice: VoiceConfig{
			MaxWorkers:        getEnvInt("VOICE_MAX_WORKERS", 4),
			TranscribeTimeout: getEnvDuration("VOICE_TRANSCRIBE_TIMEOUT", 30*time.Second),
			ChatTimeout:       getEnvDuration("VOICE_CHAT_TIMEOUT", 60*time.Second),
			SpeakTimeout:      getEnvDuration("VOICE_SPEAK_TIMEOUT", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Groq.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY cannot be empty")
	}
	if c.Voice.MaxWorkers <= 0 {
		return fmt.Errorf("VOICE_MAX_WORKERS must be > 0")
	}
	if c.Voice.TranscribeTimeout <= 0 || c.Voice.ChatTimeout <= 0 || c.Voice.SpeakTimeout <= 0 {
		return fmt.Errorf("voice timeouts must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
