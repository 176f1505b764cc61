package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"jetrent/internal/model"
	"jetrent/internal/search"
	"jetrent/internal/zillow"
)

// Extractor turns one user message into search parameters. It sees only the
// raw text, never the conversation.
type Extractor interface {
	Extract(ctx context.Context, text string) (*model.ExtractionResult, error)
}

// Responder phrases an assistant reply from the conversation history and an
// instruction describing what the reply must say
type Responder interface {
	Respond(ctx context.Context, history []model.PromptMessage, instruction string) (string, error)
}

// StreamingResponder is a Responder that can emit the reply incrementally
type StreamingResponder interface {
	Responder
	RespondStream(ctx context.Context, history []model.PromptMessage, instruction string, onDelta func(delta string) error) (string, error)
}

// Hooks observe a turn while it is processed. Nil hooks are skipped.
type Hooks struct {
	OnExtraction func(extraction *model.ExtractionResult)
	OnDecision   func(decision Decision)
	OnListings   func(result search.DispatchResult, searchURL string)
	OnContent    func(delta string)
}

// Outcome is the result of processing one user message
type Outcome struct {
	State         model.ConversationState
	Turns         []model.ConversationTurn // turns appended by this call, in order
	Decision      Decision
	Extraction    *model.ExtractionResult
	Missing       []string
	Listings      []model.ListingResult
	SearchURL     string
	SearchError   string
	ExtractionErr error
}

// Pipeline runs the dialogue core: extract, merge, decide, optionally search,
// then reply. It holds no conversation state of its own.
type Pipeline struct {
	extractor    Extractor
	dispatcher   search.Dispatcher
	responder    Responder
	buildURL     func(model.SearchSlots) string
	now          func() time.Time
	historyLimit int
	logger       *logrus.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithResponder phrases replies through a language model instead of templates
func WithResponder(r Responder) Option {
	return func(p *Pipeline) { p.responder = r }
}

// WithClock overrides the time source used for turn timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithURLBuilder overrides how the outbound deep link is built
func WithURLBuilder(build func(model.SearchSlots) string) Option {
	return func(p *Pipeline) { p.buildURL = build }
}

// WithHistoryLimit caps how many turns are sent to the responder
func WithHistoryLimit(n int) Option {
	return func(p *Pipeline) { p.historyLimit = n }
}

// NewPipeline wires the dialogue core to its collaborators
func NewPipeline(extractor Extractor, dispatcher search.Dispatcher, logger *logrus.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:    extractor,
		dispatcher:   dispatcher,
		buildURL:     zillow.SearchURLForSlots,
		now:          time.Now,
		historyLimit: 20,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles one user message. The input state is not modified; the new
// state and the turns appended to it are returned.
func (p *Pipeline) Process(ctx context.Context, state model.ConversationState, text string) Outcome {
	return p.ProcessWithHooks(ctx, state, text, Hooks{})
}

// ProcessWithHooks is Process with progress callbacks for streaming surfaces
func (p *Pipeline) ProcessWithHooks(ctx context.Context, state model.ConversationState, text string, hooks Hooks) Outcome {
	next := state.Clone()
	log := p.logger.WithField("conversation_id", next.ID)

	var added []model.ConversationTurn
	appendTurn := func(role, text string) {
		turn := NewTurn(role, text, p.now())
		added = append(added, turn)
		next.Turns = AppendTurns(next.Turns, turn)
		next.UpdatedAt = turn.Timestamp
	}

	appendTurn(model.RoleUser, text)

	extraction, err := p.extractor.Extract(ctx, text)
	if err == nil && extraction == nil {
		err = fmt.Errorf("extractor returned no result")
	}
	if err != nil {
		log.WithError(err).Warn("parameter extraction failed")
		appendTurn(model.RoleAssistant, ExtractionFailureMessage)
		if hooks.OnContent != nil {
			hooks.OnContent(ExtractionFailureMessage)
		}
		return Outcome{
			State:         next,
			Turns:         added,
			Decision:      Decision{State: StateAwaitingInput, Intent: IntentOrdinary, Missing: MissingRequired(next.Slots)},
			Missing:       MissingRequired(next.Slots),
			ExtractionErr: err,
		}
	}
	if hooks.OnExtraction != nil {
		hooks.OnExtraction(extraction)
	}

	slots, missing := Merge(next.Slots, extraction)
	intent := ClassifyIntent(text, extraction, next.SearchOffered)
	decision := Decide(intent, missing)

	log.WithFields(logrus.Fields{
		"intent":   decision.Intent,
		"state":    decision.State,
		"missing":  missing,
		"greeting": extraction.IsGreeting,
	}).Info("dialogue decision")

	next.Slots = slots
	next.LastExtraction = extraction
	next.AllSlotsFilled = len(missing) == 0

	if summary := ExtractionSummary(extraction); summary != "" {
		appendTurn(model.RoleAssistant, summary)
	}

	out := Outcome{Extraction: extraction, Missing: missing}

	if decision.ShouldSearch() {
		result := p.dispatcher.Dispatch(ctx, slots)
		out.Listings = result.Listings
		out.SearchError = result.Error
		out.SearchURL = p.buildURL(slots)

		next.SearchPerformed = true
		next.ResultsPanelVisible = true
		decision = decision.Presented()

		log.WithFields(logrus.Fields{
			"source": result.Source,
			"count":  len(result.Listings),
			"error":  result.Error,
		}).Info("search dispatched")

		if hooks.OnListings != nil {
			hooks.OnListings(result, out.SearchURL)
		}
	}
	next.SearchOffered = decision.State == StateAcknowledging

	if hooks.OnDecision != nil {
		hooks.OnDecision(decision)
	}

	reply := ComposeReply(decision, slots, out.Listings, out.SearchError, out.SearchURL)
	appendTurn(model.RoleAssistant, p.respond(ctx, log, next.Turns, reply, hooks.OnContent))

	out.State = next
	out.Turns = added
	out.Decision = decision
	return out
}

// respond asks the responder to phrase the reply, falling back to the template
func (p *Pipeline) respond(ctx context.Context, log *logrus.Entry, turns []model.ConversationTurn, reply Reply, onContent func(string)) string {
	if p.responder == nil || reply.Instruction == "" {
		if onContent != nil {
			onContent(reply.Template)
		}
		return reply.Template
	}

	history := History(turns, p.historyLimit)

	var (
		text string
		err  error
		sent strings.Builder
	)
	if streamer, ok := p.responder.(StreamingResponder); ok && onContent != nil {
		text, err = streamer.RespondStream(ctx, history, reply.Instruction, func(delta string) error {
			sent.WriteString(delta)
			onContent(delta)
			return nil
		})
	} else {
		text, err = p.responder.Respond(ctx, history, reply.Instruction)
	}

	// whatever reached the client is the reply, even if the stream broke off
	if streamed := strings.TrimSpace(sent.String()); streamed != "" {
		if err != nil {
			log.WithError(err).Warn("response stream interrupted, keeping partial reply")
		}
		return streamed
	}

	text = strings.TrimSpace(text)
	if err != nil || text == "" || text == EmptyResponseMessage {
		if err != nil {
			log.WithError(err).Warn("response generation failed, using template")
		}
		if onContent != nil {
			onContent(reply.Template)
		}
		return reply.Template
	}

	if onContent != nil {
		onContent(text)
	}
	return text
}
