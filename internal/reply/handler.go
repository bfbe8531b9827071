package reply

import (
	"context"
	"fmt"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// Outcome describes what Handle did with an update.
type Outcome int

const (
	// OutcomeIgnoredChat means the update was not a group or supergroup message.
	OutcomeIgnoredChat Outcome = iota
	// OutcomeGateClosed means the random draw was at or above the threshold.
	OutcomeGateClosed
	// OutcomeNoText means the store had nothing to offer.
	OutcomeNoText
	// OutcomeSent means a reply was sent.
	OutcomeSent
	// OutcomeSendFailed means the transport rejected the reply.
	OutcomeSendFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnoredChat:
		return "ignored_chat"
	case OutcomeGateClosed:
		return "gate_closed"
	case OutcomeNoText:
		return "no_text"
	case OutcomeSent:
		return "sent"
	case OutcomeSendFailed:
		return "send_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// TextSource supplies reply texts.
type TextSource interface {
	FetchRandomText(ctx context.Context) (string, bool)
}

// Sender delivers a text message. *tbot.Bot satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, params *tbot.SendMessageParams) (*models.Message, error)
}

// Handler decides, per inbound message, whether to reply.
// It holds no per-chat state and is safe for concurrent use.
type Handler struct {
	source TextSource
	gate   *Gate
	log    zerolog.Logger
}

// NewHandler creates a new message handler
func NewHandler(source TextSource, gate *Gate, log zerolog.Logger) *Handler {
	return &Handler{source: source, gate: gate, log: log}
}

// Handle processes one update and sends at most one message through sender.
// Only a failed send is reported as an error.
func (h *Handler) Handle(ctx context.Context, sender Sender, update *models.Update) (Outcome, error) {
	if update == nil || update.Message == nil {
		return OutcomeIgnoredChat, nil
	}

	chat := update.Message.Chat
	if !isGroup(chat.Type) {
		return OutcomeIgnoredChat, nil
	}

	if !h.gate.Open() {
		return OutcomeGateClosed, nil
	}

	text, ok := h.source.FetchRandomText(ctx)
	if !ok {
		return OutcomeNoText, nil
	}

	if _, err := sender.SendMessage(ctx, &tbot.SendMessageParams{
		ChatID: chat.ID,
		Text:   text,
	}); err != nil {
		return OutcomeSendFailed, fmt.Errorf("unable to send reply to chat %d: %w", chat.ID, err)
	}

	h.log.Debug().Int64("chat_id", chat.ID).Msg("reply sent")
	return OutcomeSent, nil
}

func isGroup(t models.ChatType) bool {
	return t == models.ChatTypeGroup || t == models.ChatTypeSupergroup
}
