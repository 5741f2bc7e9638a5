package bot

import "context"

// EventKind discriminates inbound chat events.
type EventKind int

const (
	EventText EventKind = iota
	EventPhoto
	EventCallback
)

// Event is one inbound thing a user did: typed text, sent a photo, or
// pressed an inline button.
type Event struct {
	ChatID       int64
	Kind         EventKind
	Text         string
	PhotoFileID  string
	CallbackData string
}

// Button is one inline choice attached to an outbound message.
type Button struct {
	Label string
	Data  string
}

// Outbound delivers replies back through the chat platform.
type Outbound interface {
	SendText(ctx context.Context, chatID int64, text string, buttons []Button) error
}

// PhotoFetcher downloads a photo the user sent, by platform file reference.
type PhotoFetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// Recognizer turns an image into best-effort raw text. Output is noisy;
// extraction downstream has to cope.
type Recognizer interface {
	ImageToText(ctx context.Context, image []byte) (string, error)
}
