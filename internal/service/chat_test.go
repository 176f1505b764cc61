package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetrent/internal/dialogue"
	"jetrent/internal/model"
	"jetrent/internal/repository"
	"jetrent/internal/search"
)

// blockingExtractor holds every call until release is closed
type blockingExtractor struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingExtractor) Extract(ctx context.Context, text string) (*model.ExtractionResult, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return NewRuleExtractor().Extract(ctx, text)
}

type failingStore struct {
	loadErr error
	saveErr error
}

func (f failingStore) Load(context.Context, string) (model.ConversationState, bool, error) {
	return model.ConversationState{}, false, f.loadErr
}

func (f failingStore) Save(context.Context, model.ConversationState) error { return f.saveErr }

func (f failingStore) Delete(context.Context, string) error { return nil }

func newTestChatService(t *testing.T, extractor dialogue.Extractor) (*ChatService, *repository.ConversationStore) {
	t.Helper()
	logger := quietLogger()
	dispatcher, err := search.NewStaticDispatcher(logger)
	require.NoError(t, err)

	store := repository.NewConversationStore(repository.NewMemoryStore(), logger)
	pipeline := dialogue.NewPipeline(extractor, dispatcher, logger)
	return NewChatService(pipeline, store, logger), store
}

func TestChatService_SubmitPersists(t *testing.T) {
	ctx := context.Background()
	chat, store := newTestChatService(t, NewRuleExtractor())

	first, err := chat.Submit(ctx, &model.ChatRequest{ConversationID: "c1", Message: "two bedrooms in NYC"})
	require.NoError(t, err)
	assert.Equal(t, dialogue.WelcomeTurnID, first.Turns[0].ID)
	assert.Equal(t, []string{"budget"}, first.MissingFields)

	second, err := chat.Submit(ctx, &model.ChatRequest{ConversationID: "c1", Message: "under $4000"})
	require.NoError(t, err)
	assert.NotEqual(t, dialogue.WelcomeTurnID, second.Turns[0].ID)
	assert.Empty(t, second.MissingFields)
	assert.Equal(t, "New York", second.Slots.LocationValue())

	state, found, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, state.Turns, len(first.Turns)+len(second.Turns))
	assert.True(t, state.AllSlotsFilled)
	assert.True(t, state.SearchOffered)
}

func TestChatService_BusyGate(t *testing.T) {
	ctx := context.Background()
	extractor := &blockingExtractor{entered: make(chan struct{}), release: make(chan struct{})}
	chat, _ := newTestChatService(t, extractor)

	done := make(chan error, 1)
	go func() {
		_, err := chat.Submit(ctx, &model.ChatRequest{ConversationID: "busy", Message: "hello"})
		done <- err
	}()

	select {
	case <-extractor.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the extractor")
	}

	_, err := chat.Submit(ctx, &model.ChatRequest{ConversationID: "busy", Message: "hello again"})
	assert.ErrorIs(t, err, ErrConversationBusy)

	_, err = chat.Reset(ctx, "busy")
	assert.ErrorIs(t, err, ErrConversationBusy)

	close(extractor.release)
	require.NoError(t, <-done)

	// the flag is cleared once the first submission finishes
	_, err = chat.Submit(ctx, &model.ChatRequest{ConversationID: "busy", Message: "hello again"})
	assert.NoError(t, err)
}

func TestChatService_OtherConversationsNotBlocked(t *testing.T) {
	ctx := context.Background()
	extractor := &blockingExtractor{entered: make(chan struct{}), release: make(chan struct{})}
	chat, _ := newTestChatService(t, extractor)

	go func() {
		_, _ = chat.Submit(ctx, &model.ChatRequest{ConversationID: "a", Message: "hi"})
	}()
	<-extractor.entered

	result := make(chan error, 1)
	go func() {
		_, err := chat.Submit(ctx, &model.ChatRequest{ConversationID: "b", Message: "hi"})
		result <- err
	}()
	close(extractor.release)

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second conversation did not finish")
	}
}

func TestChatService_Errors(t *testing.T) {
	ctx := context.Background()
	chat, _ := newTestChatService(t, NewRuleExtractor())

	_, err := chat.Submit(ctx, &model.ChatRequest{ConversationID: "x", Message: "  "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = chat.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = chat.SetResultsPanel(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)

	logger := quietLogger()
	dispatcher, _ := search.NewStaticDispatcher(logger)
	pipeline := dialogue.NewPipeline(NewRuleExtractor(), dispatcher, logger)

	tests := []struct {
		name  string
		store failingStore
		want  string
	}{
		{name: "load failure", store: failingStore{loadErr: errors.New("disk gone")}, want: "disk gone"},
		{name: "save failure", store: failingStore{saveErr: errors.New("read only")}, want: "read only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := NewChatService(pipeline, tt.store, logger)

			// a failed turn must release the conversation
			for i := 0; i < 2; i++ {
				_, err := broken.Submit(ctx, &model.ChatRequest{ConversationID: "x", Message: "hi"})
				assert.ErrorContains(t, err, tt.want)
				assert.NotErrorIs(t, err, ErrConversationBusy)
			}

			_, err := broken.SetResultsPanel(ctx, "x", true)
			assert.NotErrorIs(t, err, ErrConversationBusy)
		})
	}
}

func TestChatService_ResetAndResultsPanel(t *testing.T) {
	ctx := context.Background()
	chat, _ := newTestChatService(t, NewRuleExtractor())

	_, err := chat.Submit(ctx, &model.ChatRequest{ConversationID: "r", Message: "1 bedroom in Brooklyn, NY under $3000"})
	require.NoError(t, err)
	result, err := chat.Submit(ctx, &model.ChatRequest{ConversationID: "r", Message: "yes"})
	require.NoError(t, err)
	require.True(t, result.ResultsPanel)

	state, err := chat.SetResultsPanel(ctx, "r", false)
	require.NoError(t, err)
	assert.False(t, state.ResultsPanelVisible)

	conv, err := chat.Get(ctx, "r")
	require.NoError(t, err)
	assert.False(t, conv.State.ResultsPanelVisible)
	assert.True(t, conv.State.SearchPerformed)

	reset, err := chat.Reset(ctx, "r")
	require.NoError(t, err)
	assert.True(t, reset.Slots.IsEmpty())
	assert.False(t, reset.SearchPerformed)
	require.Len(t, reset.Turns, 1)
	assert.Equal(t, dialogue.WelcomeMessage, reset.Turns[0].Text)
}

func TestChatService_SubmitStreamEvents(t *testing.T) {
	ctx := context.Background()
	chat, _ := newTestChatService(t, NewRuleExtractor())

	var events []string
	result, err := chat.SubmitStream(ctx, &model.ChatRequest{ConversationID: "s", Message: "hi"}, func(event string, data any) error {
		events = append(events, event)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, string(dialogue.StateGreeting), result.Decision)
	assert.Equal(t, []string{EventStart, EventExtraction, EventDecision, EventContent, EventTurns}, events)
}

func TestChatService_SubmitStreamCallbackFailure(t *testing.T) {
	ctx := context.Background()
	chat, store := newTestChatService(t, NewRuleExtractor())

	calls := 0
	result, err := chat.SubmitStream(ctx, &model.ChatRequest{ConversationID: "gone", Message: "hi"}, func(string, any) error {
		calls++
		return errors.New("client disconnected")
	})
	assert.ErrorContains(t, err, "client disconnected")
	require.NotNil(t, result)
	assert.Equal(t, 1, calls)

	_, found, loadErr := store.Load(ctx, "gone")
	require.NoError(t, loadErr)
	assert.True(t, found)
}
