package decode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIDecoder asks a chat model to decode the VIN. Useful where no catalog
// covers the manufacturer; answers are best-effort and format-guarded.
type OpenAIDecoder struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAIDecoder(apiKey, model string, logger *slog.Logger) *OpenAIDecoder {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIDecoder{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Жёсткий форматный guard последним system-сообщением, как и в остальных наших
// интеграциях: без него модель любит дописывать пояснения вокруг JSON.
const jsonGuard = `
Отвечай ТОЛЬКО валидным JSON.
Никакого текста вне JSON.
Формат строго:
{"make":"строка","model":"строка","year":0}
Если VIN нельзя расшифровать, верни {"make":"","model":"","year":0}.
`

type openaiVehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

func (d *OpenAIDecoder) Decode(ctx context.Context, vin string) (Vehicle, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Расшифруй VIN-код автомобиля: " + vin,
			},
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: jsonGuard,
			},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Vehicle{}, fmt.Errorf("%w: %v", ErrProviderTimeout, err)
		}
		d.logger.Error("openai decode failed", "error", err)
		return Vehicle{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return Vehicle{}, fmt.Errorf("%w: empty choices", ErrProviderUnavailable)
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	// Модель иногда заворачивает JSON в markdown-блок.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var out openaiVehicle
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		d.logger.Error("openai decode returned non-JSON", "raw", short(raw), "error", err)
		return Vehicle{}, fmt.Errorf("%w: unparseable reply", ErrProviderUnavailable)
	}
	if out.Make == "" {
		return Vehicle{}, fmt.Errorf("%w: model could not decode", ErrMalformedVIN)
	}

	return Vehicle{
		Make:       out.Make,
		Model:      out.Model,
		Year:       out.Year,
		Provenance: "openai",
	}, nil
}

func short(s string) string {
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}
