package model

import (
	"time"

	"nomadlybot/internal/domain"
)

// Recipient is a bot user that can receive promotional broadcasts.
type Recipient struct {
	ChatID    int64
	Username  string
	Language  Language
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewRecipient(chatID int64, username string, lang Language) (*Recipient, error) {
	if chatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	now := time.Now()
	return &Recipient{
		ChatID:    chatID,
		Username:  username,
		Language:  lang,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// OptOut suppresses all promotional sends to a chat while OptedOut is true.
type OptOut struct {
	ChatID    int64
	OptedOut  bool
	UpdatedAt time.Time
}
