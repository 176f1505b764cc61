package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"jetrent/internal/model"
)

// Per-conversation entry suffixes
const (
	entrySlots        = "slots"
	entryExtraction   = "extraction"
	entryResultsPanel = "results_panel"
	entryTurns        = "turns"
	entryFlags        = "flags"
)

var conversationEntries = []string{entrySlots, entryExtraction, entryResultsPanel, entryTurns, entryFlags}

// ConversationKey returns the storage key of one conversation entry
func ConversationKey(id, entry string) string {
	return fmt.Sprintf("conversation:%s:%s", id, entry)
}

type conversationFlags struct {
	AllSlotsFilled  bool      `json:"all_slots_filled"`
	SearchPerformed bool      `json:"search_performed"`
	SearchOffered   bool      `json:"search_offered"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ConversationStore loads and saves conversation state as separate key/value
// entries. An entry that does not decode is logged and replaced by its empty
// default.
type ConversationStore struct {
	kv     KV
	logger *logrus.Logger
}

// NewConversationStore creates a conversation store over kv
func NewConversationStore(kv KV, logger *logrus.Logger) *ConversationStore {
	return &ConversationStore{kv: kv, logger: logger}
}

// Load returns the conversation and whether any of its entries exist
func (s *ConversationStore) Load(ctx context.Context, id string) (model.ConversationState, bool, error) {
	state := model.ConversationState{ID: id, Turns: []model.ConversationTurn{}}

	slots, hasSlots, err := loadEntry[model.SearchSlots](ctx, s, id, entrySlots)
	if err != nil {
		return state, false, err
	}
	extraction, hasExtraction, err := loadEntry[*model.ExtractionResult](ctx, s, id, entryExtraction)
	if err != nil {
		return state, false, err
	}
	panel, hasPanel, err := loadEntry[bool](ctx, s, id, entryResultsPanel)
	if err != nil {
		return state, false, err
	}
	turns, hasTurns, err := loadEntry[[]model.ConversationTurn](ctx, s, id, entryTurns)
	if err != nil {
		return state, false, err
	}
	flags, hasFlags, err := loadEntry[conversationFlags](ctx, s, id, entryFlags)
	if err != nil {
		return state, false, err
	}

	if !hasSlots && !hasExtraction && !hasPanel && !hasTurns && !hasFlags {
		return state, false, nil
	}

	state.Slots = slots
	state.LastExtraction = extraction
	state.ResultsPanelVisible = panel
	if turns != nil {
		state.Turns = turns
	}
	state.AllSlotsFilled = flags.AllSlotsFilled
	state.SearchPerformed = flags.SearchPerformed
	state.SearchOffered = flags.SearchOffered
	state.UpdatedAt = flags.UpdatedAt
	return state, true, nil
}

// loadEntry decodes one entry. A malformed value counts as present and
// decodes to the zero value of T.
func loadEntry[T any](ctx context.Context, s *ConversationStore, id, entry string) (T, bool, error) {
	var zero T
	raw, ok, err := s.kv.Get(ctx, ConversationKey(id, entry))
	if err != nil {
		return zero, false, fmt.Errorf("failed to load %s: %w", entry, err)
	}
	if !ok {
		return zero, false, nil
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		s.logger.WithFields(logrus.Fields{
			"conversation_id": id,
			"entry":           entry,
		}).WithError(err).Warn("Malformed conversation entry, using default")
		return zero, true, nil
	}
	return value, true, nil
}

// Save writes every entry of the conversation
func (s *ConversationStore) Save(ctx context.Context, state model.ConversationState) error {
	turns := state.Turns
	if turns == nil {
		turns = []model.ConversationTurn{}
	}

	values := map[string]any{
		entrySlots:        state.Slots,
		entryExtraction:   state.LastExtraction,
		entryResultsPanel: state.ResultsPanelVisible,
		entryTurns:        turns,
		entryFlags: conversationFlags{
			AllSlotsFilled:  state.AllSlotsFilled,
			SearchPerformed: state.SearchPerformed,
			SearchOffered:   state.SearchOffered,
			UpdatedAt:       state.UpdatedAt,
		},
	}

	entries := make(map[string][]byte, len(values))
	for entry, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", entry, err)
		}
		entries[ConversationKey(state.ID, entry)] = raw
	}

	return s.kv.SetMany(ctx, entries)
}

// Delete removes every entry of the conversation
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	keys := make([]string, 0, len(conversationEntries))
	for _, entry := range conversationEntries {
		keys = append(keys, ConversationKey(id, entry))
	}
	return s.kv.Delete(ctx, keys...)
}
