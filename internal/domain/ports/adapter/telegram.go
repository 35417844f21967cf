// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"
	"errors"
	"fmt"
)

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// SendOptions controls rendering of an outbound message.
type SendOptions struct {
	HTML               bool
	DisableLinkPreview bool
}

// Transport is the message send primitive used by broadcasts and relays.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, opts SendOptions) error
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, opts SendOptions) error
}

// TelegramBotAdapter is the interactive side of the bot.
type TelegramBotAdapter interface {
	Transport
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
}

// TransportError is a failed send reported by the messaging API.
type TransportError struct {
	Code        int
	Description string
	RetryAfter  int
}

func (e *TransportError) Error() string {
	if e.Code == 0 {
		return e.Description
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Description)
}

// StatusCode extracts the API status code from err, or 0 when none is present.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Code
	}
	return 0
}
