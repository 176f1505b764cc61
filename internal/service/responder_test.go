package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetrent/internal/dialogue"
	"jetrent/internal/model"
)

func TestResponseGenerator_Respond(t *testing.T) {
	ai := &fakeAIClient{enabled: true, reply: "Which city are you looking in?"}
	gen := NewResponseGenerator(ai, quietLogger())

	history := []model.PromptMessage{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: dialogue.WelcomeMessage},
	}
	reply, err := gen.Respond(context.Background(), history, "Ask for the location.")
	require.NoError(t, err)
	assert.Equal(t, "Which city are you looking in?", reply)

	require.Len(t, ai.messages, 4)
	assert.Equal(t, ChatMessage{Role: model.RoleSystem, Content: dialogue.AssistantPersona}, ai.messages[0])
	assert.Equal(t, "hi", ai.messages[1].Content)
	assert.Equal(t, ChatMessage{Role: model.RoleSystem, Content: "Ask for the location."}, ai.messages[3])
}

func TestResponseGenerator_EmptyReply(t *testing.T) {
	gen := NewResponseGenerator(&fakeAIClient{enabled: true}, quietLogger())

	reply, err := gen.Respond(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, dialogue.EmptyResponseMessage, reply)
}

func TestResponseGenerator_Errors(t *testing.T) {
	_, err := NewResponseGenerator(&fakeAIClient{enabled: false}, quietLogger()).Respond(context.Background(), nil, "x")
	assert.Error(t, err)

	_, err = NewResponseGenerator(&fakeAIClient{enabled: true, err: errors.New("boom")}, quietLogger()).Respond(context.Background(), nil, "x")
	assert.ErrorContains(t, err, "boom")
}

func TestResponseGenerator_RespondStream(t *testing.T) {
	ai := &fakeAIClient{enabled: true, reply: "Found 2 places.", deltas: []string{"Found ", "2 places."}}
	gen := NewResponseGenerator(ai, quietLogger())

	var got []string
	reply, err := gen.RespondStream(context.Background(), nil, "Present the results.", func(d string) error {
		got = append(got, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Found 2 places.", reply)
	assert.Equal(t, []string{"Found ", "2 places."}, got)
	assert.Len(t, ai.messages, 2)
}
