package service

import (
	"encoding/json"
	"strings"
)

// OpenAIStreamChunkParser parses standard OpenAI-format streaming chunks
type OpenAIStreamChunkParser struct{}

// ParseChunk converts a standard OpenAI chunk to a StreamChunk
func (p *OpenAIStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var raw rawStreamChunk
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw.toChunk(false), nil
}

// ReasoningStreamChunkParser parses chunks from providers that stream
// reasoning_content next to the reply (NVIDIA, DeepSeek)
type ReasoningStreamChunkParser struct{}

// ParseChunk converts a reasoning-capable chunk to a StreamChunk
func (p *ReasoningStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var raw rawStreamChunk
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw.toChunk(true), nil
}

type rawStreamChunk struct {
	Choices []struct {
		Delta struct {
			Role             string  `json:"role,omitempty"`
			Content          string  `json:"content,omitempty"`
			ReasoningContent *string `json:"reasoning_content,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Model string `json:"model,omitempty"`
}

func (r rawStreamChunk) toChunk(reasoning bool) *StreamChunk {
	chunk := &StreamChunk{
		Metadata: make(map[string]interface{}),
	}
	if r.Model != "" {
		chunk.Metadata["model"] = r.Model
	}
	if len(r.Choices) == 0 {
		return chunk
	}

	delta := r.Choices[0].Delta
	chunk.Role = delta.Role
	chunk.Content = delta.Content
	if reasoning && delta.ReasoningContent != nil {
		chunk.ThinkingContent = *delta.ReasoningContent
	}
	chunk.Done = r.Choices[0].FinishReason != ""
	return chunk
}

// Provider names reported by DetectProvider
const (
	ProviderOpenAI     = "openai"
	ProviderNVIDIA     = "nvidia"
	ProviderDeepSeek   = "deepseek"
	ProviderCompatible = "compatible"
)

// DetectProvider guesses the provider from the API base URL
func DetectProvider(baseURL string) string {
	base := strings.ToLower(baseURL)
	switch {
	case strings.Contains(base, "integrate.api.nvidia.com"):
		return ProviderNVIDIA
	case strings.Contains(base, "api.deepseek.com"):
		return ProviderDeepSeek
	case strings.Contains(base, "api.openai.com"):
		return ProviderOpenAI
	default:
		return ProviderCompatible
	}
}

// chunkParserFor returns the stream parser that fits the provider
func chunkParserFor(provider string) StreamChunkParser {
	switch provider {
	case ProviderNVIDIA, ProviderDeepSeek:
		return &ReasoningStreamChunkParser{}
	default:
		return &OpenAIStreamChunkParser{}
	}
}
