package providers

import (
	"net/http"

	"chatcal/pkg/ai"
	"chatcal/pkg/config"
)

const (
	openRouterDefaultModel   = "openai/gpt-4o-mini"
	openRouterDefaultTimeout = 30
	openRouterReferer        = "https://github.com/chatcal/chatcal"
	openRouterTitle          = "chatcal"
)

func init() {
	ai.RegisterProvider(ai.ProviderInfo{
		Type:        ai.ProviderOpenRouter,
		Name:        "OpenRouter",
		Description: "Tool-calling models through the OpenRouter API",
		RequiresKey: true,
	}, NewOpenRouterProvider)
}

// NewOpenRouterProvider creates an OpenAI-compatible provider pointed at OpenRouter.
func NewOpenRouterProvider(cfg ai.ProviderConfig) (ai.Provider, error) {
	orCfg := cfg.Config.Providers.OpenRouter
	httpClient := &http.Client{Timeout: timeoutOrDefault(orCfg.APITimeoutSeconds, openRouterDefaultTimeout)}
	return newOpenRouterProviderWithHTTPClient(orCfg, httpClient)
}

func newOpenRouterProviderWithHTTPClient(cfg config.ProviderConfig, httpClient *http.Client) (*OpenAIProvider, error) {
	return newOpenAICompatibleProvider(openAIEndpoint{
		name:       string(ai.ProviderOpenRouter),
		defaultURL: config.DefaultOpenRouterAPIURL,
		model:      openRouterDefaultModel,
		headers: map[string]string{
			"HTTP-Referer": openRouterReferer,
			"X-Title":      openRouterTitle,
		},
	}, cfg, httpClient)
}
