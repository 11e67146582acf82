package llmprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/chattersys/chatter/internal/observability"
)

// OpenAIConfig is the minimal provider config, read from the environment by
// FromEnv. It is not validated against a schema before a client is built.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAI is the remote HTTP variant of Provider, backed by the OpenAI Chat
// Completions API, trimmed to a single non-streaming, non-tool-call
// completion operation.
type OpenAI struct {
	sdk   sdk.Client
	model string
}

// NewOpenAI constructs a remote provider from cfg. A nil httpClient is
// replaced by an otelhttp-instrumented default client; a non-nil one is used
// as given.
func NewOpenAI(cfg OpenAIConfig, httpClient *http.Client) *OpenAI {
	if httpClient == nil {
		httpClient = observability.NewHTTPClient(http.DefaultClient)
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithHTTPClient(httpClient)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{sdk: sdk.NewClient(opts...), model: cfg.Model}
}

// Complete implements Provider via a single-turn chat completion request.
func (o *OpenAI) Complete(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	messages := []sdk.ChatCompletionMessageParamUnion{}
	if req.SystemPrompt != "" {
		messages = append(messages, sdk.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, sdk.UserMessage(req.UserPrompt))

	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(model),
		Messages: messages,
	}

	start := time.Now()
	comp, err := o.sdk.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		if body, marshalErr := json.Marshal(params); marshalErr == nil {
			observability.LoggerWithTrace(ctx).Error().
				RawJSON("request", observability.RedactJSON(body)).
				Err(err).Msg("llmprovider_openai_completion_failed")
		}
		return Response{}, fmt.Errorf("llmprovider: openai completion: %w", err)
	}
	if len(comp.Choices) == 0 {
		return Response{}, fmt.Errorf("llmprovider: openai completion: empty choices")
	}

	return Response{
		Text:      comp.Choices[0].Message.Content,
		Provider:  "openai",
		Model:     model,
		LatencyMS: latency.Milliseconds(),
	}, nil
}

// Describe implements Provider.
func (o *OpenAI) Describe() Description {
	return Description{Name: "openai", Kind: "remote"}
}
