package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TelegramOutbound talks to the Telegram Bot API: sends replies with
// optional inline keyboards and downloads user photos. Implements both
// Outbound and PhotoFetcher.
type TelegramOutbound struct {
	apiBase  string
	fileBase string
	token    string
	client   *http.Client
}

func NewTelegramOutbound(token string) *TelegramOutbound {
	return &TelegramOutbound{
		apiBase:  "https://api.telegram.org",
		fileBase: "https://api.telegram.org/file",
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

func (t *TelegramOutbound) SendText(ctx context.Context, chatID int64, text string, buttons []Button) error {
	body := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if len(buttons) > 0 {
		rows := make([][]inlineButton, 0, len(buttons))
		for _, b := range buttons {
			rows = append(rows, []inlineButton{{Text: b.Label, CallbackData: b.Data}})
		}
		body["reply_markup"] = map[string]any{"inline_keyboard": rows}
	}
	return t.post(ctx, "/sendMessage", body)
}

// Fetch resolves a file_id to a download path via getFile, then pulls the
// bytes from the file endpoint.
func (t *TelegramOutbound) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := t.call(ctx, "/getFile", map[string]any{"file_id": fileID})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		OK     bool `json:"ok"`
		Result struct {
			FilePath string `json:"file_path"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return nil, fmt.Errorf("telegram getFile parse: %w", err)
	}
	if !parsed.OK || parsed.Result.FilePath == "" {
		return nil, errors.New("telegram getFile: no file path")
	}

	url := t.fileBase + "/bot" + t.token + "/" + parsed.Result.FilePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram file download: status %d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

func (t *TelegramOutbound) post(ctx context.Context, method string, body any) error {
	_, err := t.call(ctx, method, body)
	return err
}

func (t *TelegramOutbound) call(ctx context.Context, method string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := t.apiBase + "/bot" + t.token + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, errors.New("telegram api error: " + resp.Status + " body=" + string(respBody))
	}
	return respBody, nil
}
