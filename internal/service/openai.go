package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"jetrent/internal/config"
	"jetrent/internal/utils"
)

// StreamChunkParser is the interface for provider-specific chunk parsing
type StreamChunkParser interface {
	ParseChunk(data []byte) (*StreamChunk, error)
}

// OpenAIClient handles OpenAI-compatible API interactions
type OpenAIClient struct {
	config      *config.OpenAIConfig
	httpClient  *http.Client
	chunkParser StreamChunkParser // Provider-specific chunk parser
	validate    *validator.Validate
	logger      *logrus.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client with auto-detection of provider
func NewOpenAIClient(cfg *config.OpenAIConfig, logger *logrus.Logger) *OpenAIClient {
	provider := DetectProvider(cfg.APIBase)
	logger.WithFields(logrus.Fields{
		"provider": provider,
		"base":     cfg.APIBase,
		"model":    cfg.ChatModel,
	}).Info("🔧 Language model provider configured")

	return &OpenAIClient{
		config:      cfg,
		chunkParser: chunkParserFor(provider),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		validate: validator.New(),
		logger:   logger,
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	TopP           float64         `json:"top_p,omitempty"` // For DeepSeek/NVIDIA API
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`     // For streaming responses
	ExtraBody      map[string]any  `json:"extra_body,omitempty"` // For DeepSeek: {"chat_template_kwargs": {"thinking":True}}
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// StreamCallback is called for each chunk in streaming mode
// Generic callback that works with all providers
type StreamCallback func(chunk *StreamChunk) error

// applyDefaults fills unset request fields from configuration
func (c *OpenAIClient) applyDefaults(req *ChatCompletionRequest) {
	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.Temperature == 0 && c.config.ChatTemperature > 0 {
		req.Temperature = c.config.ChatTemperature
	}
	if req.TopP == 0 && c.config.ChatTopP > 0 {
		req.TopP = c.config.ChatTopP
	}
	if req.MaxTokens == 0 && c.config.ChatMaxTokens > 0 {
		req.MaxTokens = c.config.ChatMaxTokens
	}

	// Parse and apply extra_body from config if not already set
	if req.ExtraBody == nil && c.config.ChatExtraBody != "" {
		var extraBody map[string]any
		if err := json.Unmarshal([]byte(c.config.ChatExtraBody), &extraBody); err == nil {
			req.ExtraBody = extraBody
		} else {
			c.logger.WithError(err).Warn("Failed to parse OPENAI_CHAT_EXTRA_BODY")
		}
	}
}

func (c *OpenAIClient) newRequest(ctx context.Context, req ChatCompletionRequest) (*http.Request, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
	return httpReq, nil
}

// ChatCompletion performs a chat completion request
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("OpenAI API is not enabled (missing API key)")
	}

	c.applyDefaults(&req)

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, utils.Truncate(string(body), 300))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// ChatCompletionStream performs a streaming chat completion request
func (c *OpenAIClient) ChatCompletionStream(ctx context.Context, req ChatCompletionRequest, callback StreamCallback) error {
	if !c.config.Enabled {
		return fmt.Errorf("OpenAI API is not enabled (missing API key)")
	}

	c.applyDefaults(&req)
	req.Stream = true

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, utils.Truncate(string(body), 300))
	}

	// Process streaming response
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read stream: %w", err)
		}
		eof := err == io.EOF

		// Parse SSE format: "data: {...}"
		line = bytes.TrimSpace(line)
		if data, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			data = bytes.TrimSpace(data)

			// Check for [DONE] marker
			if bytes.Equal(data, []byte("[DONE]")) {
				break
			}

			// Parse chunk using provider-specific parser
			chunk, err := c.chunkParser.ParseChunk(data)
			if err != nil {
				c.logger.WithError(err).Warn("Failed to parse stream chunk")
			} else if err := callback(chunk); err != nil {
				return fmt.Errorf("callback error: %w", err)
			}
		}

		if eof {
			break
		}
	}

	return nil
}

const extractionPrompt = `Extract apartment search parameters from user queries. You are an expert at understanding natural language requests for housing in the United States.

Return a JSON object with these keys:
- location: The city or neighborhood where the user wants to find an apartment
- state: Two-letter US state code for the location (e.g. NY, CA, IL)
- zipcode: Five-digit ZIP code of the location
- bedrooms: Number of bedrooms (use 0 for studio apartments)
- budget: Maximum monthly rent in USD (as a number, no dollar signs or commas)
- missingParameters: Array of parameters that were not found in the query (options: "location", "state", "zipcode", "bedrooms", "budget")
- isGreeting: Boolean flag indicating if the user's message is just a greeting or small talk

IMPORTANT: If the user's message is just a greeting (hi, hello, hey) or small talk with no apartment search intent,
set isGreeting to true and don't set any other parameters.

Be flexible in extracting information:

For LOCATION:
- Handle city names, neighborhoods, areas, boroughs, etc.
- Normalize common abbreviations (NYC = New York, LA = Los Angeles)
- If a user refers to a specific neighborhood, extract it (SoHo, Brooklyn Heights, etc.)

For STATE and ZIPCODE:
- Use the state the user names, or infer it when the location makes it unambiguous (Brooklyn = NY)
- Only give a zipcode when the user states it or the neighborhood clearly has a single ZIP code

For BEDROOMS:
- Handle various formats: "2 bed", "2 bedroom", "2 br", "2-bedroom", etc.
- Understand "studio" as 0 bedrooms
- Convert text numbers to digits (e.g., "two bedrooms" = 2)
- ONLY set bedrooms if explicitly mentioned - DO NOT assume

For BUDGET:
- Handle various formats: $2000, 2000, 2k, 2,000, etc.
- Interpret "k" notation (e.g., 2k = 2000)
- Understand phrases like "under $2000", "maximum $2000", "up to 2k", etc.
- If the user's message is just a number or number with 'k' (like "3k" or "2500"), interpret it as the budget in dollars

If a user responds to a specific question with just a value, return only that parameter.

Always correctly identify which parameters are missing and include them in the missingParameters array.
NEVER make assumptions about parameters that aren't explicitly mentioned by the user.

CRITICAL: For any parameter that is missing (listed in missingParameters), DO NOT provide a default value -
leave that parameter completely undefined in the response. Only include parameters that were explicitly mentioned by the user.`

// ExtractSearchParameters asks the model for the search parameters in one message
func (c *OpenAIClient) ExtractSearchParameters(ctx context.Context, text string) (*AIExtractionResponse, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("OpenAI API is not enabled")
	}

	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: extractionPrompt},
			{Role: "user", Content: text},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := c.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	// Use robust JSON parser to handle various AI output formats
	var result AIExtractionResponse
	content := resp.Choices[0].Message.Content
	if err := utils.ParseModelJSON(content, &result); err != nil {
		c.logger.WithField("content", utils.Truncate(content, 200)).Warn("Failed to parse AI extraction")
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	if err := c.validate.Struct(&result); err != nil {
		return nil, fmt.Errorf("AI response validation failed: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"tokens":   resp.Usage.TotalTokens,
		"greeting": result.IsGreeting,
		"missing":  result.MissingParameters,
	}).Debug("AI extraction completed")

	return &result, nil
}

// GenerateResponse returns a plain-text reply for the conversation
func (c *OpenAIClient) GenerateResponse(ctx context.Context, messages []ChatMessage) (string, error) {
	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateResponseStream streams a plain-text reply. Thinking content is
// logged but not forwarded.
func (c *OpenAIClient) GenerateResponseStream(ctx context.Context, messages []ChatMessage, onDelta func(delta string) error) (string, error) {
	var full strings.Builder
	thinking := 0

	err := c.ChatCompletionStream(ctx, ChatCompletionRequest{Messages: messages}, func(chunk *StreamChunk) error {
		thinking += len(chunk.ThinkingContent)
		if chunk.Content == "" {
			return nil
		}
		full.WriteString(chunk.Content)
		return onDelta(chunk.Content)
	})
	if err != nil {
		return full.String(), fmt.Errorf("streaming error: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"content_chars":  full.Len(),
		"thinking_chars": thinking,
	}).Debug("AI stream completed")

	return strings.TrimSpace(full.String()), nil
}
