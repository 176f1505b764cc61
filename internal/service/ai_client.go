package service

import (
	"context"
)

// AIClient is the interface for AI service providers
type AIClient interface {
	// ExtractSearchParameters turns one user message into search parameters
	ExtractSearchParameters(ctx context.Context, text string) (*AIExtractionResponse, error)

	// GenerateResponse returns a plain-text assistant reply
	GenerateResponse(ctx context.Context, messages []ChatMessage) (string, error)

	// GenerateResponseStream returns the reply and reports each content delta
	GenerateResponseStream(ctx context.Context, messages []ChatMessage, onDelta func(delta string) error) (string, error)

	// IsEnabled returns whether the AI client is configured and ready
	IsEnabled() bool
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific, e.g., DeepSeek)
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool

	// Provider-specific metadata
	Metadata map[string]interface{}
}

// AIExtractionResponse is the JSON object the model returns for a message
type AIExtractionResponse struct {
	Location          *string  `json:"location,omitempty"`
	State             *string  `json:"state,omitempty"`
	Zipcode           *string  `json:"zipcode,omitempty"`
	Bedrooms          *float64 `json:"bedrooms,omitempty" validate:"omitempty,min=0,max=20"`
	Budget            *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
	MissingParameters []string `json:"missingParameters,omitempty"`
	IsGreeting        bool     `json:"isGreeting"`
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
