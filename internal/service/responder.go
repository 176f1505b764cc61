package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"jetrent/internal/dialogue"
	"jetrent/internal/model"
)

// ResponseGenerator phrases assistant replies with the language model
type ResponseGenerator struct {
	aiClient AIClient
	logger   *logrus.Logger
}

// NewResponseGenerator creates a new response generator
func NewResponseGenerator(aiClient AIClient, logger *logrus.Logger) *ResponseGenerator {
	return &ResponseGenerator{aiClient: aiClient, logger: logger}
}

var _ dialogue.StreamingResponder = (*ResponseGenerator)(nil)

// Respond implements dialogue.Responder
func (g *ResponseGenerator) Respond(ctx context.Context, history []model.PromptMessage, instruction string) (string, error) {
	if !g.aiClient.IsEnabled() {
		return "", fmt.Errorf("response generation is not enabled")
	}

	reply, err := g.aiClient.GenerateResponse(ctx, buildMessages(history, instruction))
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if reply == "" {
		return dialogue.EmptyResponseMessage, nil
	}
	return reply, nil
}

// RespondStream implements dialogue.StreamingResponder
func (g *ResponseGenerator) RespondStream(ctx context.Context, history []model.PromptMessage, instruction string, onDelta func(delta string) error) (string, error) {
	if !g.aiClient.IsEnabled() {
		return "", fmt.Errorf("response generation is not enabled")
	}

	reply, err := g.aiClient.GenerateResponseStream(ctx, buildMessages(history, instruction), onDelta)
	if err != nil {
		return "", fmt.Errorf("failed to stream response: %w", err)
	}
	if reply == "" {
		return dialogue.EmptyResponseMessage, nil
	}
	return reply, nil
}

// buildMessages frames the conversation: persona first, then history, then the
// instruction for this turn
func buildMessages(history []model.PromptMessage, instruction string) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: model.RoleSystem, Content: dialogue.AssistantPersona})
	for _, m := range history {
		messages = append(messages, ChatMessage{Role: m.Role, Content: m.Content})
	}
	if instruction != "" {
		messages = append(messages, ChatMessage{Role: model.RoleSystem, Content: instruction})
	}
	return messages
}
