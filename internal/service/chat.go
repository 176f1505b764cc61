package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"jetrent/internal/dialogue"
	"jetrent/internal/model"
	"jetrent/internal/repository"
	"jetrent/internal/search"
)

var (
	// ErrConversationBusy is returned when a message arrives while the
	// previous one in the same conversation is still being processed
	ErrConversationBusy = errors.New("conversation is busy")

	// ErrNotFound is returned for unknown conversations, bookmarks and labels
	ErrNotFound = repository.ErrNotFound

	// ErrEmptyMessage is returned for blank user messages
	ErrEmptyMessage = errors.New("message is empty")
)

// StateStore persists conversation state between turns
type StateStore interface {
	Load(ctx context.Context, id string) (model.ConversationState, bool, error)
	Save(ctx context.Context, state model.ConversationState) error
	Delete(ctx context.Context, id string) error
}

// ChatEventCallback is called for streaming chat events
type ChatEventCallback func(event string, data any) error

// Chat stream events, in the order they are emitted
const (
	EventStart      = "start"
	EventExtraction = "extraction"
	EventListings   = "listings"
	EventDecision   = "decision"
	EventContent    = "content"
	EventTurns      = "turns"
	EventError      = "error"
	EventDone       = "done"
)

// ChatService runs user messages through the dialogue pipeline, one at a
// time per conversation
type ChatService struct {
	pipeline *dialogue.Pipeline
	store    StateStore
	busy     sync.Map
	now      func() time.Time
	logger   *logrus.Logger
}

// NewChatService creates a new chat service
func NewChatService(pipeline *dialogue.Pipeline, store StateStore, logger *logrus.Logger) *ChatService {
	return &ChatService{
		pipeline: pipeline,
		store:    store,
		now:      time.Now,
		logger:   logger,
	}
}

// Submit processes one user message and persists the new state
func (s *ChatService) Submit(ctx context.Context, req *model.ChatRequest) (*model.TurnResult, error) {
	return s.submit(ctx, req, dialogue.Hooks{}, nil)
}

// SubmitStream processes one user message, reporting progress through callback.
// A failing callback stops further events but the turn is still saved.
func (s *ChatService) SubmitStream(ctx context.Context, req *model.ChatRequest, callback ChatEventCallback) (*model.TurnResult, error) {
	var streamErr error
	emit := func(event string, data any) {
		if streamErr != nil {
			return
		}
		if err := callback(event, data); err != nil {
			streamErr = err
			s.logger.WithError(err).WithField("event", event).Warn("Failed to send chat event")
		}
	}

	hooks := dialogue.Hooks{
		OnExtraction: func(extraction *model.ExtractionResult) {
			emit(EventExtraction, extraction)
		},
		OnListings: func(result search.DispatchResult, searchURL string) {
			emit(EventListings, model.ListingSearchResponse{
				Listings:  result.Listings,
				Source:    result.Source,
				SearchURL: searchURL,
				Error:     result.Error,
			})
		},
		OnDecision: func(decision dialogue.Decision) {
			emit(EventDecision, decision)
		},
		OnContent: func(delta string) {
			emit(EventContent, map[string]any{"content": delta})
		},
	}

	result, err := s.submit(ctx, req, hooks, func(id string) {
		emit(EventStart, map[string]any{"conversation_id": id})
	})
	if err != nil {
		return nil, err
	}

	emit(EventTurns, result.Turns)
	return result, streamErr
}

func (s *ChatService) submit(ctx context.Context, req *model.ChatRequest, hooks dialogue.Hooks, onStart func(id string)) (*model.TurnResult, error) {
	startTime := time.Now()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	id := strings.TrimSpace(req.ConversationID)
	if id == "" {
		id = uuid.NewString()
	}

	if _, loaded := s.busy.LoadOrStore(id, struct{}{}); loaded {
		return nil, ErrConversationBusy
	}
	defer s.busy.Delete(id)

	state, found, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	var turns []model.ConversationTurn
	if !found {
		state = dialogue.NewConversation(id, s.now())
		turns = append(turns, state.Turns...)
	}

	if onStart != nil {
		onStart(id)
	}

	outcome := s.pipeline.ProcessWithHooks(ctx, state, message, hooks)

	if err := s.store.Save(ctx, outcome.State); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	result := &model.TurnResult{
		ConversationID: id,
		Decision:       string(outcome.Decision.State),
		Intent:         string(outcome.Decision.Intent),
		Turns:          append(turns, outcome.Turns...),
		Extraction:     outcome.Extraction,
		Slots:          outcome.State.Slots,
		MissingFields:  dialogue.MissingRequired(outcome.State.Slots),
		Listings:       outcome.Listings,
		SearchURL:      outcome.SearchURL,
		SearchError:    outcome.SearchError,
		ResultsPanel:   outcome.State.ResultsPanelVisible,
		Took:           time.Since(startTime).Milliseconds(),
	}

	s.logger.WithFields(logrus.Fields{
		"conversation_id": id,
		"decision":        result.Decision,
		"listings":        len(result.Listings),
		"took_ms":         result.Took,
	}).Info("chat turn processed")

	return result, nil
}

// Get returns a conversation and the slots it still needs
func (s *ChatService) Get(ctx context.Context, id string) (*model.ConversationResponse, error) {
	state, found, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &model.ConversationResponse{
		State:         state,
		MissingFields: dialogue.MissingRequired(state.Slots),
	}, nil
}

// Reset clears a conversation and starts it over with the welcome turn
func (s *ChatService) Reset(ctx context.Context, id string) (*model.ConversationState, error) {
	if _, loaded := s.busy.LoadOrStore(id, struct{}{}); loaded {
		return nil, ErrConversationBusy
	}
	defer s.busy.Delete(id)

	if err := s.store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete conversation: %w", err)
	}

	state := dialogue.NewConversation(id, s.now())
	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	s.logger.WithField("conversation_id", id).Info("conversation reset")
	return &state, nil
}

// SetResultsPanel shows or hides the results panel of a conversation
func (s *ChatService) SetResultsPanel(ctx context.Context, id string, visible bool) (*model.ConversationState, error) {
	if _, loaded := s.busy.LoadOrStore(id, struct{}{}); loaded {
		return nil, ErrConversationBusy
	}
	defer s.busy.Delete(id)

	state, found, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	state.ResultsPanelVisible = visible
	state.UpdatedAt = s.now()
	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}
	return &state, nil
}
