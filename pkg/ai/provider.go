package ai

import "context"

// Message represents a single chat message for LLM requests.
type Message struct {
	Role    string
	Content string
}

// FunctionSpec declares a function the model may call. Parameters is a
// JSON Schema object.
type FunctionSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// FunctionCallRequest asks the model to answer by calling Function instead
// of replying with text.
type FunctionCallRequest struct {
	Model       string
	Messages    []Message
	Function    FunctionSpec
	Temperature *float64
	MaxTokens   *int
}

// FunctionCall is a normalized function invocation returned by a provider.
// Arguments holds the serialized JSON object exactly as the model produced it.
type FunctionCall struct {
	Name      string
	Arguments string
}

// FunctionCallResponse is a normalized response from an LLM. Call is nil
// when the model answered without invoking a function.
type FunctionCallResponse struct {
	Call    *FunctionCall
	Content string
	Model   string
}

// Provider defines the LLM interface used by the app.
type Provider interface {
	CreateFunctionCall(ctx context.Context, req FunctionCallRequest) (FunctionCallResponse, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, req FunctionCallRequest) (FunctionCallResponse, error)

// CreateFunctionCall calls f.
func (f ProviderFunc) CreateFunctionCall(ctx context.Context, req FunctionCallRequest) (FunctionCallResponse, error) {
	return f(ctx, req)
}
