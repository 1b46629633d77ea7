package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// SystemPrompt is the fixed instruction sent with every translation
// request.
const SystemPrompt = `You are a professional English-to-French translator.
Translate the given text accurately and naturally.

Rules:
- Preserve the original meaning precisely
- Use formal French (standard professional register)
- Keep formatting markers like bullet points, numbers, or special characters exactly as-is
- Do NOT add explanations or commentary
- Return ONLY the translated text, nothing else
- If the input is a title or header, keep the translation concise`

// requestTimeout bounds one chat call so a stuck model request cannot hang
// the whole batch.
const requestTimeout = 5 * time.Minute

// Message is one chat message in the request payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the wire format of a translation request.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

// ChatResponse is the wire format of a translation reply.
type ChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// OllamaTranslator translates single texts against an Ollama chat endpoint.
type OllamaTranslator struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaTranslator creates a backend for the given server and model.
func NewOllamaTranslator(baseURL, model string) *OllamaTranslator {
	return &OllamaTranslator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// TranslateText sends one two-message exchange and sanitizes the reply.
func (o *OllamaTranslator) TranslateText(ctx context.Context, text, contextHint string) (string, error) {
	userMessage := text
	if contextHint != "" {
		userMessage = fmt.Sprintf("%s\n\n[Context: %s]", text, contextHint)
	}

	reqBody := ChatRequest{
		Model: o.model,
		Messages: []Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature: 0.1,
		Stream:      false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to marshal chat request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to create chat request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", types.NewAppError(types.ErrNetwork, "chat request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewAppError(types.ErrNetwork, "failed to read chat response", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Debug("chat endpoint returned error status",
			logger.Int("statusCode", resp.StatusCode))
		return "", types.NewAppErrorWithDetails(types.ErrTranslation,
			"translation service error",
			fmt.Sprintf("status %d", resp.StatusCode),
			nil)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", types.NewAppError(types.ErrTranslation, "malformed chat response", err)
	}

	return SanitizeReply(chatResp.Message.Content, text), nil
}

// Close releases idle connections held by the HTTP client.
func (o *OllamaTranslator) Close() {
	o.client.CloseIdleConnections()
}
