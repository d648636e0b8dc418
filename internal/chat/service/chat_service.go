// Package service implements the memory assistant conversation.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"echo-memory/backend/internal/chat/domain"
	"echo-memory/backend/internal/chat/repository"
)

// FallbackReply is returned when the assistant backend is unreachable. The
// conversation must keep working for the user even when the model does not.
const FallbackReply = "I'm sorry, I'm having trouble connecting to my memory banks right now."

// contextMemories is how many recent narratives are fed to the model as
// conversation grounding.
const contextMemories = 5

// MemoryReader supplies recent narratives for conversation grounding.
type MemoryReader interface {
	RecentNarratives(ctx context.Context, userID int64, limit int) ([]string, error)
}

// Completer is the slice of the OpenAI client the service uses.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewAzureCompleter returns an OpenAI client configured for an Azure OpenAI
// deployment. Returns nil when endpoint or key is empty; the service then
// always answers with the fallback reply.
func NewAzureCompleter(endpoint, apiKey, deployment string) Completer {
	if endpoint == "" || apiKey == "" {
		return nil
	}
	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	cfg.AzureModelMapperFunc = func(string) string { return deployment }
	return openai.NewClientWithConfig(cfg)
}

// ChatService answers user questions grounded in their recent memories and
// persists both sides of the conversation.
type ChatService struct {
	messages  repository.Repository
	memories  MemoryReader
	completer Completer
	model     string
	logger    *slog.Logger
}

func NewChatService(messages repository.Repository, memories MemoryReader, completer Completer, model string, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &ChatService{messages: messages, memories: memories, completer: completer, model: model, logger: logger}
}

// Ask sends the user's message to the assistant with their recent narratives
// as context and returns the reply. Both messages are persisted; a model
// failure yields the fallback reply, not an error.
func (s *ChatService) Ask(ctx context.Context, userID int64, message string) (string, error) {
	narratives, err := s.memories.RecentNarratives(ctx, userID, contextMemories)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	userMsg := &domain.Message{
		UserID:    userID,
		Role:      domain.RoleUser,
		Content:   message,
		Type:      domain.TypeText,
		CreatedAt: now,
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return "", err
	}

	reply := s.complete(ctx, message, strings.Join(narratives, "\n"))

	assistantMsg := &domain.Message{
		UserID:    userID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		Type:      domain.TypeText,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		return "", err
	}
	return reply, nil
}

// History returns the user's conversation in chronological order.
func (s *ChatService) History(ctx context.Context, userID int64) ([]*domain.Message, error) {
	return s.messages.ListByUser(ctx, userID)
}

func (s *ChatService) complete(ctx context.Context, message, memoryContext string) string {
	if s.completer == nil {
		return FallbackReply
	}
	resp, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are EchoMemory Assistant. Help the user remember things based on their context: \n" +
					memoryContext,
			},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Temperature: 0.7,
	})
	if err != nil {
		s.logger.Error("assistant completion failed", "error", err)
		return FallbackReply
	}
	if len(resp.Choices) == 0 {
		return FallbackReply
	}
	return resp.Choices[0].Message.Content
}
