package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chatcal/pkg/ai"

	"google.golang.org/genai"
)

const (
	googleDefaultModel   = "gemini-2.5-flash"
	googleDefaultTimeout = 60
)

func init() {
	ai.RegisterProvider(ai.ProviderInfo{
		Type:        ai.ProviderGoogle,
		Name:        "Google",
		Description: "Gemini API with forced function calling",
		RequiresKey: true,
	}, NewGoogleProvider)
}

type googleModelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGoogleClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// GoogleProvider implements the Provider interface using the native Google AI SDK.
type GoogleProvider struct {
	models             googleModelsClient
	defaultModel       string
	defaultTemperature float64
	defaultMaxTokens   int
	defaultTimeout     time.Duration
}

// NewGoogleProvider creates a new Google provider from config.
func NewGoogleProvider(cfg ai.ProviderConfig) (ai.Provider, error) {
	providerCfg := cfg.Config.Providers.Google

	apiKey := strings.TrimSpace(providerCfg.APIKey)
	if apiKey == "" {
		slog.Debug("provider_missing_key", "provider", ai.ProviderGoogle)
		return nil, fmt.Errorf("google api_key is required")
	}

	model := strings.TrimSpace(providerCfg.Model)
	if model == "" {
		model = googleDefaultModel
	}

	client, err := newGoogleClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create google client: %w", err)
	}

	timeout := timeoutOrDefault(providerCfg.APITimeoutSeconds, googleDefaultTimeout)
	slog.Debug("provider_ready",
		"provider", ai.ProviderGoogle,
		"model", model,
		"timeout", timeout,
	)
	return &GoogleProvider{
		models:             client.Models,
		defaultModel:       model,
		defaultTemperature: providerCfg.Temperature,
		defaultMaxTokens:   providerCfg.MaxTokens,
		defaultTimeout:     timeout,
	}, nil
}

// CreateFunctionCall asks Gemini for a call to req.Function using function
// calling mode ANY restricted to that single name.
func (p *GoogleProvider) CreateFunctionCall(ctx context.Context, req ai.FunctionCallRequest) (ai.FunctionCallResponse, error) {
	model, contents, cfg, err := p.buildRequest(req)
	if err != nil {
		return ai.FunctionCallResponse{}, err
	}

	callCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	resp, err := p.models.GenerateContent(callCtx, model, contents, cfg)
	if err != nil {
		return ai.FunctionCallResponse{}, err
	}

	out := ai.FunctionCallResponse{Model: model}
	if resp == nil {
		return out, nil
	}
	out.Content = extractVisibleText(resp)

	calls := resp.FunctionCalls()
	if len(calls) == 0 || calls[0] == nil {
		return out, nil
	}

	// Gemini hands back decoded args; re-serialize so every provider
	// reports arguments the same way.
	args := calls[0].Args
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return ai.FunctionCallResponse{}, fmt.Errorf("encode function args: %w", err)
	}
	out.Call = &ai.FunctionCall{
		Name:      calls[0].Name,
		Arguments: string(raw),
	}
	return out, nil
}

func (p *GoogleProvider) buildRequest(req ai.FunctionCallRequest) (string, []*genai.Content, *genai.GenerateContentConfig, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.defaultModel
	}
	if model == "" {
		return "", nil, nil, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return "", nil, nil, fmt.Errorf("messages are required")
	}
	if strings.TrimSpace(req.Function.Name) == "" {
		return "", nil, nil, fmt.Errorf("function name is required")
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	systemParts := make([]string, 0, 2)

	for _, msg := range req.Messages {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		switch role {
		case "system", "developer":
			if content := strings.TrimSpace(msg.Content); content != "" {
				systemParts = append(systemParts, content)
			}
		case "assistant":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return "", nil, nil, fmt.Errorf("at least one user or assistant message is required")
	}

	temperature := p.defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	maxTokens := p.defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:                 req.Function.Name,
				Description:          req.Function.Description,
				ParametersJsonSchema: req.Function.Parameters,
			}},
		}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{req.Function.Name},
			},
		},
	}
	if len(systemParts) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser)
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}

	return model, contents, config, nil
}

func (p *GoogleProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline || p.defaultTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, p.defaultTimeout)
}

// Ensure interface compliance
var _ ai.Provider = (*GoogleProvider)(nil)

func extractVisibleText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
