package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetrent/internal/config"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeCompletionServer answers /chat/completions with content and records the
// last request body
func fakeCompletionServer(t *testing.T, content string, last *ChatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if last != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(last))
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "test-model",
			"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"}},
			"usage":   map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testOpenAIConfig(base string) *config.OpenAIConfig {
	return &config.OpenAIConfig{
		APIKey:          "test-key",
		APIBase:         base,
		ChatModel:       "test-model",
		ChatTemperature: 0.2,
		ChatMaxTokens:   256,
		Timeout:         5,
		Enabled:         true,
	}
}

func TestOpenAIClient_ExtractSearchParameters(t *testing.T) {
	var sent ChatCompletionRequest
	content := "```json\n{\"location\": \"Brooklyn\", \"state\": \"NY\", \"bedrooms\": 1, \"budget\": 2500, \"missingParameters\": [\"zipcode\"], \"isGreeting\": false,}\n```"
	server := fakeCompletionServer(t, content, &sent)
	defer server.Close()

	client := NewOpenAIClient(testOpenAIConfig(server.URL), quietLogger())
	resp, err := client.ExtractSearchParameters(context.Background(), "1 bed in Brooklyn under 2500")
	require.NoError(t, err)

	require.NotNil(t, resp.Location)
	assert.Equal(t, "Brooklyn", *resp.Location)
	require.NotNil(t, resp.Bedrooms)
	assert.Equal(t, 1.0, *resp.Bedrooms)
	require.NotNil(t, resp.Budget)
	assert.Equal(t, 2500.0, *resp.Budget)
	assert.Equal(t, []string{"zipcode"}, resp.MissingParameters)

	assert.Equal(t, "test-model", sent.Model)
	assert.Equal(t, 256, sent.MaxTokens)
	require.NotNil(t, sent.ResponseFormat)
	assert.Equal(t, "json_object", sent.ResponseFormat.Type)
	require.Len(t, sent.Messages, 2)
	assert.Equal(t, "system", sent.Messages[0].Role)
	assert.Equal(t, "1 bed in Brooklyn under 2500", sent.Messages[1].Content)
}

func TestOpenAIClient_ExtractSearchParameters_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"not json", "I could not understand that", "failed to parse AI response"},
		{"bedrooms out of range", `{"bedrooms": 45, "missingParameters": []}`, "validation failed"},
		{"negative budget", `{"budget": -100}`, "validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := fakeCompletionServer(t, tt.content, nil)
			defer server.Close()

			client := NewOpenAIClient(testOpenAIConfig(server.URL), quietLogger())
			_, err := client.ExtractSearchParameters(context.Background(), "anything")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestOpenAIClient_Disabled(t *testing.T) {
	cfg := testOpenAIConfig("http://127.0.0.1:1")
	cfg.Enabled = false
	client := NewOpenAIClient(cfg, quietLogger())

	assert.False(t, client.IsEnabled())
	_, err := client.ExtractSearchParameters(context.Background(), "hi")
	assert.Error(t, err)
	_, err = client.GenerateResponse(context.Background(), nil)
	assert.Error(t, err)
}

func TestOpenAIClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient(testOpenAIConfig(server.URL), quietLogger())
	_, err := client.GenerateResponse(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestOpenAIClient_GenerateResponse(t *testing.T) {
	var sent ChatCompletionRequest
	server := fakeCompletionServer(t, "  Happy to help you find a place!  ", &sent)
	defer server.Close()

	client := NewOpenAIClient(testOpenAIConfig(server.URL), quietLogger())
	reply, err := client.GenerateResponse(context.Background(), []ChatMessage{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Happy to help you find a place!", reply)
	assert.Nil(t, sent.ResponseFormat)
	assert.Len(t, sent.Messages, 2)
}

func TestOpenAIClient_GenerateResponseStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Here ", "are ", "your results."} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewOpenAIClient(testOpenAIConfig(server.URL), quietLogger())

	var deltas []string
	reply, err := client.GenerateResponseStream(context.Background(), []ChatMessage{{Role: "user", Content: "go"}}, func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Here are your results.", reply)
	assert.Equal(t, []string{"Here ", "are ", "your results."}, deltas)
}

func TestOpenAIClient_GenerateResponseStream_CallbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"one\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"two\"}}]}\n\n")
	}))
	defer server.Close()

	client := NewOpenAIClient(testOpenAIConfig(server.URL), quietLogger())
	_, err := client.GenerateResponseStream(context.Background(), nil, func(string) error {
		return fmt.Errorf("client went away")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client went away")
}

func TestOpenAIClient_ExtraBody(t *testing.T) {
	var sent ChatCompletionRequest
	server := fakeCompletionServer(t, "ok", &sent)
	defer server.Close()

	cfg := testOpenAIConfig(server.URL)
	cfg.ChatExtraBody = `{"chat_template_kwargs":{"thinking":true}}`
	client := NewOpenAIClient(cfg, quietLogger())

	_, err := client.GenerateResponse(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	require.NotNil(t, sent.ExtraBody)
	assert.Contains(t, sent.ExtraBody, "chat_template_kwargs")
}

func TestStreamChunkParsers(t *testing.T) {
	data := []byte(`{"model":"m","choices":[{"delta":{"role":"assistant","content":"hi","reasoning_content":"thinking"},"finish_reason":"stop"}]}`)

	plain, err := (&OpenAIStreamChunkParser{}).ParseChunk(data)
	require.NoError(t, err)
	assert.Equal(t, "hi", plain.Content)
	assert.Equal(t, "assistant", plain.Role)
	assert.Empty(t, plain.ThinkingContent)
	assert.True(t, plain.Done)
	assert.Equal(t, "m", plain.Metadata["model"])

	reasoning, err := (&ReasoningStreamChunkParser{}).ParseChunk(data)
	require.NoError(t, err)
	assert.Equal(t, "thinking", reasoning.ThinkingContent)

	empty, err := (&OpenAIStreamChunkParser{}).ParseChunk([]byte(`{"choices":[]}`))
	require.NoError(t, err)
	assert.Empty(t, empty.Content)
	assert.False(t, empty.Done)

	_, err = (&OpenAIStreamChunkParser{}).ParseChunk([]byte(`{`))
	assert.Error(t, err)
}

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://api.openai.com/v1", ProviderOpenAI},
		{"https://integrate.api.nvidia.com/v1", ProviderNVIDIA},
		{"https://api.deepseek.com", ProviderDeepSeek},
		{"http://localhost:11434/v1", ProviderCompatible},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectProvider(tt.base))
		})
	}

	assert.IsType(t, &ReasoningStreamChunkParser{}, chunkParserFor(ProviderNVIDIA))
	assert.IsType(t, &OpenAIStreamChunkParser{}, chunkParserFor(ProviderCompatible))
}
