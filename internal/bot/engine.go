package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/avtopoisk/vin-parts-bridge/internal/decode"
	"github.com/avtopoisk/vin-parts-bridge/internal/parts"
	"github.com/avtopoisk/vin-parts-bridge/internal/session"
	"github.com/avtopoisk/vin-parts-bridge/internal/vin"
)

// maxCandidates bounds how many search results get presented to the user.
const maxCandidates = 4

var affirmatives = map[string]bool{
	"да":    true,
	"верно": true,
	"yes":   true,
}

// Engine is the conversation state machine. One event at a time per chat
// (the dispatcher guarantees ordering); provider and OCR calls go through a
// shared semaphore with a bounded timeout so one slow backend cannot stall
// the rest of the bot.
type Engine struct {
	store    *session.Store
	decoder  decode.Decoder
	searcher parts.Searcher
	photos   PhotoFetcher
	ocr      Recognizer
	outbound Outbound
	logger   *slog.Logger

	photoDir string
	timeout  time.Duration
	workers  *semaphore.Weighted
}

func NewEngine(
	store *session.Store,
	decoder decode.Decoder,
	searcher parts.Searcher,
	photos PhotoFetcher,
	ocr Recognizer,
	outbound Outbound,
	logger *slog.Logger,
	photoDir string,
	timeout time.Duration,
	workerLimit int64,
) *Engine {
	return &Engine{
		store:    store,
		decoder:  decoder,
		searcher: searcher,
		photos:   photos,
		ocr:      ocr,
		outbound: outbound,
		logger:   logger,
		photoDir: photoDir,
		timeout:  timeout,
		workers:  semaphore.NewWeighted(workerLimit),
	}
}

// HandleEvent processes one inbound event to completion, including sending
// the reply. Never returns provider errors: every failure becomes a
// user-facing retry message.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) {
	sess := e.store.Get(ev.ChatID)

	e.logger.Info("event",
		"chat_id", ev.ChatID,
		"kind", ev.Kind,
		"phase", sess.Phase.String(),
	)

	switch ev.Kind {
	case EventText:
		e.handleText(ctx, ev.ChatID, sess, ev.Text)
	case EventPhoto:
		e.handlePhoto(ctx, ev.ChatID, sess, ev.PhotoFileID)
	case EventCallback:
		e.handleCallback(ctx, ev.ChatID, sess, ev.CallbackData)
	}
}

func (e *Engine) handleText(ctx context.Context, chatID int64, sess *session.Session, text string) {
	text = strings.TrimSpace(text)

	if text == "/start" {
		sess.Phase = session.PhaseAwaitingVIN
		e.reply(ctx, chatID, replyGreeting, []Button{
			{Label: "📸 Загрузить фото VIN-кода", Data: callbackUploadPhoto},
			{Label: "✏️ Ввести VIN-код вручную", Data: callbackEnterVIN},
		})
		return
	}

	// A fresh 17-character VIN restarts the cycle from any phase,
	// discarding the previous vehicle and selection.
	if candidate, ok := vin.FromText(text); ok {
		e.decodeAndConfirm(ctx, chatID, sess, candidate)
		return
	}

	switch sess.Phase {
	case session.PhaseAwaitingConfirm:
		if affirmatives[strings.ToLower(text)] {
			sess.Phase = session.PhaseAwaitingPartQuery
			e.reply(ctx, chatID, replyEnterPart, nil)
			return
		}
		// Anything non-affirmative means the decode was wrong: forget it.
		e.store.Clear(chatID)
		e.reply(ctx, chatID, replyEnterVIN, nil)

	case session.PhaseAwaitingPartQuery, session.PhasePresentedOptions:
		e.searchParts(ctx, chatID, sess, text)

	default:
		sess.Phase = session.PhaseAwaitingVIN
		e.reply(ctx, chatID, replyBadVIN, nil)
	}
}

func (e *Engine) handlePhoto(ctx context.Context, chatID int64, sess *session.Session, fileID string) {
	var ocrText string
	err := e.offload(ctx, func(ctx context.Context) error {
		image, err := e.photos.Fetch(ctx, fileID)
		if err != nil {
			return fmt.Errorf("photo fetch: %w", err)
		}

		path, err := e.savePhoto(fileID, image)
		if err != nil {
			return fmt.Errorf("photo save: %w", err)
		}
		// Temp file is scoped to this event; gone whatever OCR says.
		defer os.Remove(path)

		e.logger.Info("photo saved", "chat_id", chatID, "path", path)

		ocrText, err = e.ocr.ImageToText(ctx, image)
		if err != nil {
			return fmt.Errorf("ocr: %w", err)
		}
		return nil
	})
	if err != nil {
		e.logger.Warn("photo pipeline failed", "chat_id", chatID, "error", err)
		sess.Phase = session.PhaseAwaitingVIN
		e.reply(ctx, chatID, replyOCRFailed, nil)
		return
	}

	candidate, ok := vin.FromOCRText(ocrText)
	if !ok {
		sess.Phase = session.PhaseAwaitingVIN
		e.reply(ctx, chatID, replyOCRFailed, nil)
		return
	}

	e.decodeAndConfirm(ctx, chatID, sess, candidate)
}

func (e *Engine) handleCallback(ctx context.Context, chatID int64, sess *session.Session, data string) {
	switch {
	case data == callbackUploadPhoto:
		sess.Phase = session.PhaseAwaitingVIN
		e.reply(ctx, chatID, replyUploadPhoto, nil)

	case data == callbackEnterVIN:
		sess.Phase = session.PhaseAwaitingVIN
		e.reply(ctx, chatID, replyTypeVIN, nil)

	case strings.HasPrefix(data, callbackSelectPrefix):
		if sess.Phase != session.PhasePresentedOptions {
			e.logger.Warn("selection outside presented options", "chat_id", chatID, "phase", sess.Phase.String())
			return
		}
		article := strings.TrimPrefix(data, callbackSelectPrefix)
		sess.SelectedArticle = article
		sess.Phase = session.PhaseSelected
		e.reply(ctx, chatID, fmt.Sprintf(replySelectedFmt, article), nil)

	default:
		e.logger.Warn("unknown callback", "chat_id", chatID, "data", data)
	}
}

// decodeAndConfirm runs the decoder off the dispatch path and, on success,
// moves the session to the confirm step. On failure the session keeps its
// VIN-less state and the user is asked to retry.
func (e *Engine) decodeAndConfirm(ctx context.Context, chatID int64, sess *session.Session, candidate string) {
	var vehicle decode.Vehicle
	err := e.offload(ctx, func(ctx context.Context) error {
		var err error
		vehicle, err = e.decoder.Decode(ctx, candidate)
		return err
	})
	if err != nil {
		e.logger.Warn("decode failed", "chat_id", chatID, "error", err)
		sess.Phase = session.PhaseAwaitingVIN
		switch {
		case errors.Is(err, decode.ErrProviderUnavailable), errors.Is(err, decode.ErrProviderTimeout):
			e.reply(ctx, chatID, replyDecodeUnavailable, nil)
		default:
			e.reply(ctx, chatID, replyDecodeFailed, nil)
		}
		return
	}

	sess.VIN = candidate
	sess.Vehicle = &vehicle
	sess.Phase = session.PhaseAwaitingConfirm
	sess.SelectedArticle = ""
	sess.PendingQuery = ""

	e.reply(ctx, chatID, fmt.Sprintf(replyVehicleConfirmFmt, vehicle.String()), nil)
}

func (e *Engine) searchParts(ctx context.Context, chatID int64, sess *session.Session, query string) {
	if !parts.RecognizedQuery(query) {
		sess.Phase = session.PhaseAwaitingPartQuery
		e.reply(ctx, chatID, replyClarify, nil)
		return
	}

	var found []parts.Candidate
	err := e.offload(ctx, func(ctx context.Context) error {
		var err error
		found, err = e.searcher.Search(ctx, sess.VIN, query)
		return err
	})
	if err != nil || len(found) == 0 {
		if err != nil {
			e.logger.Warn("part search failed", "chat_id", chatID, "error", err)
		}
		sess.Phase = session.PhaseAwaitingPartQuery
		e.reply(ctx, chatID, replyNothingFound, nil)
		return
	}

	if len(found) > maxCandidates {
		found = found[:maxCandidates]
	}

	buttons := make([]Button, 0, len(found))
	var sb strings.Builder
	sb.WriteString(replyFoundHeader)
	for i, c := range found {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, c.Name))
		if c.Price != "" {
			sb.WriteString(", " + c.Price)
		}
		if c.Availability != "" {
			sb.WriteString(", наличие: " + c.Availability)
		}
		buttons = append(buttons, Button{
			Label: fmt.Sprintf("%d. %s", i+1, c.Article),
			Data:  callbackSelectPrefix + c.Article,
		})
	}

	sess.PendingQuery = query
	sess.Phase = session.PhasePresentedOptions
	e.reply(ctx, chatID, sb.String(), buttons)
}

// offload runs a blocking provider call under the shared worker semaphore
// with the configured timeout.
func (e *Engine) offload(ctx context.Context, fn func(context.Context) error) error {
	if err := e.workers.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.workers.Release(1)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return fn(ctx)
}

func (e *Engine) savePhoto(fileID string, image []byte) (string, error) {
	if err := os.MkdirAll(e.photoDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(e.photoDir, fileID+".jpg")
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (e *Engine) reply(ctx context.Context, chatID int64, text string, buttons []Button) {
	if err := e.outbound.SendText(ctx, chatID, text, buttons); err != nil {
		e.logger.Error("send failed", "chat_id", chatID, "error", err)
	}
}
