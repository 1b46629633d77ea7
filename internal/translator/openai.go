package translator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"doc-translator/internal/config"
	"doc-translator/internal/types"
)

// OpenAITranslator translates against any OpenAI-compatible chat endpoint.
type OpenAITranslator struct {
	chatModel *openai.ChatModel
}

// NewOpenAITranslator creates a backend from the OpenAI section of the
// configuration.
func NewOpenAITranslator(cfg *config.Config) (*OpenAITranslator, error) {
	temperature := float32(0.1)

	chatModel, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		Model:       cfg.OpenAIModel,
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create chat model", err)
	}

	return &OpenAITranslator{chatModel: chatModel}, nil
}

// TranslateText sends one exchange through the chat model and sanitizes
// the reply.
func (o *OpenAITranslator) TranslateText(ctx context.Context, text, contextHint string) (string, error) {
	userMessage := text
	if contextHint != "" {
		userMessage = fmt.Sprintf("%s\n\n[Context: %s]", text, contextHint)
	}

	messages := []*schema.Message{
		schema.SystemMessage(SystemPrompt),
		schema.UserMessage(userMessage),
	}

	result, err := o.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", types.NewAppError(types.ErrTranslation, "chat model generation failed", err)
	}

	return SanitizeReply(result.Content, text), nil
}

// Close is a no-op; the chat model holds no pooled resources.
func (o *OpenAITranslator) Close() {}
