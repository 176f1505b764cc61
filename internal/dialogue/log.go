package dialogue

import (
	"time"

	"github.com/google/uuid"

	"jetrent/internal/model"
)

// WelcomeTurnID is the fixed ID of the first assistant turn
const WelcomeTurnID = "welcome"

// NewConversation returns an empty conversation holding only the welcome turn.
// An empty id gets a fresh UUID.
func NewConversation(id string, now time.Time) model.ConversationState {
	if id == "" {
		id = uuid.NewString()
	}
	return model.ConversationState{
		ID: id,
		Turns: []model.ConversationTurn{{
			ID:        WelcomeTurnID,
			Role:      model.RoleAssistant,
			Text:      WelcomeMessage,
			Timestamp: now,
		}},
		UpdatedAt: now,
	}
}

// NewTurn creates an immutable log entry with a unique ID
func NewTurn(role, text string, now time.Time) model.ConversationTurn {
	return model.ConversationTurn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: now,
	}
}

// AppendTurns returns turns with extra appended, never modifying the input backing array
func AppendTurns(turns []model.ConversationTurn, extra ...model.ConversationTurn) []model.ConversationTurn {
	out := make([]model.ConversationTurn, 0, len(turns)+len(extra))
	out = append(out, turns...)
	return append(out, extra...)
}

// History converts the newest limit turns into prompt messages.
// limit <= 0 keeps all turns.
func History(turns []model.ConversationTurn, limit int) []model.PromptMessage {
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	messages := make([]model.PromptMessage, 0, len(turns))
	for _, t := range turns {
		role := model.RoleAssistant
		if t.Role == model.RoleUser {
			role = model.RoleUser
		}
		messages = append(messages, model.PromptMessage{Role: role, Content: t.Text})
	}
	return messages
}
