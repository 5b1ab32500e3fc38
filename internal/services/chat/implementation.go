package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/rubiogarciadental/iadental/internal/assistant/models"
	"github.com/rubiogarciadental/iadental/internal/config"
	openaiinfra "github.com/rubiogarciadental/iadental/internal/infrastructure/openai"
	"github.com/rubiogarciadental/iadental/internal/services/tools"
)

// Implementation answers assistant dispatches through the OpenAI chat
// completions API. Admin-mode requests carry the SQL tool and loop through
// tool calls until a content answer is produced; patient-mode requests carry
// no tools at all.
type Implementation struct {
	mu     sync.RWMutex
	client *openai.Client
	tools  *tools.Service
	model  string
}

func NewService(openAIService *openaiinfra.Service, toolService *tools.Service) (*Implementation, error) {
	if openAIService == nil {
		return nil, fmt.Errorf("OpenAI service is required")
	}

	return &Implementation{
		client: openAIService.GetClient(),
		tools:  toolService,
		model:  config.GetOpenAIModel(),
	}, nil
}

func (s *Implementation) Respond(ctx context.Context, history []models.Message, mode models.Mode) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log.Debug().
		Int("history_len", len(history)).
		Str("mode", string(mode)).
		Msg("Processing assistant request")

	if len(history) == 0 {
		return "", fmt.Errorf("empty message history")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt(mode),
	})
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Sender == models.SenderAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Text,
		})
	}

	var requestTools []openai.Tool
	if models.PolicyFor(mode).AllowDatabase() && s.tools != nil {
		requestTools = s.tools.GetTools()
	}

	for {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    s.model,
			Messages: messages,
			Tools:    requestTools,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to get chat completion")
			return "", fmt.Errorf("failed to get chat completion: %w", err)
		}

		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no response choices returned")
		}

		message := resp.Choices[0].Message

		if message.Role == openai.ChatMessageRoleAssistant && message.Content != "" && len(message.ToolCalls) == 0 {
			return message.Content, nil
		}

		if message.Role == openai.ChatMessageRoleAssistant && len(message.ToolCalls) > 0 {
			messages = append(messages, message)

			for _, toolCall := range message.ToolCalls {
				result, err := s.tools.GetExecutor().ExecuteToolCall(ctx, toolCall)
				if err != nil {
					return "", fmt.Errorf("tool call failed: %w", err)
				}

				messages = append(messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    result,
					ToolCallID: toolCall.ID,
				})
			}
			continue
		}

		return "", fmt.Errorf("unexpected message type from assistant")
	}
}
