package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chatcal/pkg/ai"
	"chatcal/pkg/config"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	openAIDefaultModel   = "gpt-4o"
	openAIDefaultTimeout = 30
)

func init() {
	ai.RegisterProvider(ai.ProviderInfo{
		Type:        ai.ProviderOpenAI,
		Name:        "OpenAI",
		Description: "Direct OpenAI API access with forced tool calls",
		RequiresKey: true,
	}, NewOpenAIProvider)
}

// OpenAIProvider implements the Provider interface for any endpoint that
// speaks the OpenAI chat completions wire format.
type OpenAIProvider struct {
	name               string
	client             openai.Client
	defaultModel       string
	defaultTemperature float64
	defaultMaxTokens   int
}

// NewOpenAIProvider creates a new OpenAI provider from config.
func NewOpenAIProvider(cfg ai.ProviderConfig) (ai.Provider, error) {
	providerCfg := cfg.Config.Providers.OpenAI
	httpClient := &http.Client{Timeout: timeoutOrDefault(providerCfg.APITimeoutSeconds, openAIDefaultTimeout)}
	return newOpenAICompatibleProvider(openAIEndpoint{
		name:       string(ai.ProviderOpenAI),
		defaultURL: config.DefaultOpenAIAPIURL,
		model:      openAIDefaultModel,
	}, providerCfg, httpClient)
}

type openAIEndpoint struct {
	name       string
	defaultURL string
	model      string
	headers    map[string]string
}

func newOpenAICompatibleProvider(ep openAIEndpoint, cfg config.ProviderConfig, httpClient *http.Client) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		slog.Debug("provider_missing_key", "provider", ep.name)
		return nil, fmt.Errorf("%s api_key is required", ep.name)
	}

	apiURL := strings.TrimSpace(cfg.APIURL)
	if apiURL == "" {
		apiURL = ep.defaultURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = ep.model
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(apiURL),
		// Retries would turn one user action into several calls.
		option.WithMaxRetries(0),
	}
	for k, v := range ep.headers {
		opts = append(opts, option.WithHeader(k, v))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	slog.Debug("provider_ready", "provider", ep.name, "model", model, "api_url", apiURL)
	return &OpenAIProvider{
		name:               ep.name,
		client:             openai.NewClient(opts...),
		defaultModel:       model,
		defaultTemperature: cfg.Temperature,
		defaultMaxTokens:   cfg.MaxTokens,
	}, nil
}

// CreateFunctionCall sends a chat completion request that forces a call to
// req.Function and returns the first function tool call of the reply.
func (p *OpenAIProvider) CreateFunctionCall(ctx context.Context, req ai.FunctionCallRequest) (ai.FunctionCallResponse, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return ai.FunctionCallResponse{}, err
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return ai.FunctionCallResponse{}, err
	}

	out := ai.FunctionCallResponse{Model: resp.Model}
	if len(resp.Choices) == 0 {
		return out, nil
	}

	msg := resp.Choices[0].Message
	out.Content = msg.Content
	for _, call := range msg.ToolCalls {
		if call.Type != "function" {
			continue
		}
		out.Call = &ai.FunctionCall{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
		return out, nil
	}
	// Some OpenAI-compatible gateways still answer with the legacy field.
	if msg.FunctionCall.Name != "" {
		out.Call = &ai.FunctionCall{
			Name:      msg.FunctionCall.Name,
			Arguments: msg.FunctionCall.Arguments,
		}
	}
	return out, nil
}

func (p *OpenAIProvider) buildParams(req ai.FunctionCallRequest) (openai.ChatCompletionNewParams, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.defaultModel
	}
	if model == "" {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("messages are required")
	}
	if strings.TrimSpace(req.Function.Name) == "" {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("function name is required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		param, err := toChatMessageParam(msg)
		if err != nil {
			return openai.ChatCompletionNewParams{}, err
		}
		messages = append(messages, param)
	}

	fn := openai.FunctionDefinitionParam{
		Name:       req.Function.Name,
		Parameters: openai.FunctionParameters(req.Function.Parameters),
	}
	if req.Function.Description != "" {
		fn.Description = openai.String(req.Function.Description)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
		Tools:    []openai.ChatCompletionToolUnionParam{openai.ChatCompletionFunctionTool(fn)},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfFunctionToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: req.Function.Name},
			},
		},
	}

	temperature := p.defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	params.Temperature = openai.Float(temperature)

	maxTokens := p.defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	return params, nil
}

func toChatMessageParam(msg ai.Message) (openai.ChatCompletionMessageParamUnion, error) {
	role := strings.ToLower(strings.TrimSpace(msg.Role))
	switch role {
	case "system":
		return openai.SystemMessage(msg.Content), nil
	case "user":
		return openai.UserMessage(msg.Content), nil
	case "assistant":
		return openai.AssistantMessage(msg.Content), nil
	case "developer":
		return openai.DeveloperMessage(msg.Content), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported role: %s", msg.Role)
	}
}

func timeoutOrDefault(seconds, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

// Ensure interface compliance
var _ ai.Provider = (*OpenAIProvider)(nil)
