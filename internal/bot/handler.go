package bot

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler accepts Telegram webhook updates and feeds them to the
// dispatcher. The webhook is ACKed immediately: Telegram retries on
// non-200, and the reply goes out through the outbound client anyway.
type Handler struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewHandler(dispatcher *Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, logger: logger}
}

type update struct {
	Message *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text  string `json:"text"`
		Photo []struct {
			FileID string `json:"file_id"`
		} `json:"photo"`
	} `json:"message"`
	CallbackQuery *struct {
		Data    string `json:"data"`
		Message struct {
			Chat struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"callback_query"`
}

func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var u update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	ev, ok := eventFromUpdate(u)
	if !ok {
		// Edits, stickers, joins and so on: acknowledge and ignore.
		w.WriteHeader(http.StatusOK)
		return
	}

	h.dispatcher.Submit(ev)
	w.WriteHeader(http.StatusOK)
}

func eventFromUpdate(u update) (Event, bool) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.Data != "":
		return Event{
			ChatID:       u.CallbackQuery.Message.Chat.ID,
			Kind:         EventCallback,
			CallbackData: u.CallbackQuery.Data,
		}, true

	case u.Message != nil && len(u.Message.Photo) > 0:
		// Telegram lists photo sizes smallest first; take the largest.
		last := u.Message.Photo[len(u.Message.Photo)-1]
		return Event{
			ChatID:      u.Message.Chat.ID,
			Kind:        EventPhoto,
			PhotoFileID: last.FileID,
		}, true

	case u.Message != nil && u.Message.Text != "":
		return Event{
			ChatID: u.Message.Chat.ID,
			Kind:   EventText,
			Text:   u.Message.Text,
		}, true
	}
	return Event{}, false
}
