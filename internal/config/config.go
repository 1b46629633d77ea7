// Package config loads pipeline configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"doc-translator/internal/logger"
)

// Config holds every runtime setting of the translation service.
type Config struct {
	// Translation backend: "ollama" (default) or "openai"
	TranslatorBackend string

	// Ollama-compatible chat endpoint
	OllamaURL   string
	OllamaModel string

	// OpenAI-compatible endpoint, used when TranslatorBackend == "openai"
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Whisper transcription server
	WhisperURL string

	// Speech synthesis server; empty means the capability is absent
	TTSURL string

	// Target language code (BCP-47), e.g. "fr"
	TargetLanguage string

	// Translation settings
	MaxChunkTokens         int
	TranslationConcurrency int

	// File paths
	UploadDir string
	OutputDir string
	DBPath    string

	// HTTP server port
	Port int
}

// Load reads configuration from the environment, consulting an optional
// .env file first. Missing keys fall back to defaults.
func Load() *Config {
	// Absent .env is fine; env vars still apply
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env file")
	}

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	maxTokens, _ := strconv.Atoi(getEnv("MAX_CHUNK_TOKENS", "800"))
	concurrency, _ := strconv.Atoi(getEnv("TRANSLATION_CONCURRENCY", "5"))

	return &Config{
		TranslatorBackend:      getEnv("TRANSLATOR_BACKEND", "ollama"),
		OllamaURL:              getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:            getEnv("OLLAMA_MODEL", "mistral:7b"),
		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:          os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:            getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		WhisperURL:             getEnv("WHISPER_URL", "http://localhost:9000"),
		TTSURL:                 os.Getenv("TTS_URL"),
		TargetLanguage:         getEnv("TARGET_LANGUAGE", "fr"),
		MaxChunkTokens:         maxTokens,
		TranslationConcurrency: concurrency,
		UploadDir:              getEnv("UPLOAD_DIR", "./uploads"),
		OutputDir:              getEnv("OUTPUT_DIR", "./outputs"),
		DBPath:                 getEnv("DB_PATH", "./doc-translator.db"),
		Port:                   port,
	}
}

// Validate checks settings that would otherwise fail deep inside a job.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.TargetLanguage); err != nil {
		return fmt.Errorf("invalid TARGET_LANGUAGE %q: %w", c.TargetLanguage, err)
	}
	if c.TranslatorBackend != "ollama" && c.TranslatorBackend != "openai" {
		return fmt.Errorf("unknown TRANSLATOR_BACKEND %q", c.TranslatorBackend)
	}
	if c.TranslatorBackend == "openai" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("TRANSLATOR_BACKEND=openai requires OPENAI_API_KEY")
	}
	if c.TranslationConcurrency <= 0 {
		return fmt.Errorf("TRANSLATION_CONCURRENCY must be positive")
	}
	return nil
}

// EnsureDirectories creates the upload and output directories if needed.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.UploadDir, c.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
