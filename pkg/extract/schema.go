package extract

import (
	"fmt"
	"strings"
	"time"

	"chatcal/pkg/ai"
)

// FunctionName is the single function the model is forced to call.
const FunctionName = "create_event_trace"

const (
	systemInstruction   = "You help schedule calendar events based on prompts."
	functionDescription = "Create a structured event from a scheduling prompt"
)

// FunctionSchema returns the declaration sent with every extraction request.
func FunctionSchema() ai.FunctionSpec {
	return ai.FunctionSpec{
		Name:        FunctionName,
		Description: functionDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Short name of the event",
				},
				"timestamp": map[string]any{
					"type":        "string",
					"format":      "date-time",
					"description": "Event start as an ISO-8601 date-time",
				},
				"duration": map[string]any{
					"type":        "number",
					"description": "Event length in minutes",
				},
			},
			"required": []string{"title", "timestamp", "duration"},
		},
	}
}

// buildMessages returns the system turn followed by the user turn. The
// system turn carries the current time so relative dates resolve.
func buildMessages(utterance string, now time.Time) []ai.Message {
	var sb strings.Builder
	sb.WriteString(systemInstruction)
	fmt.Fprintf(&sb, "\nThe current date and time is %s (%s, %s).",
		now.Format(time.RFC3339), now.Weekday(), now.Location())
	sb.WriteString("\nAnswer only by calling the function. Give timestamp with a UTC offset and duration in minutes.")

	return []ai.Message{
		{Role: "system", Content: sb.String()},
		{Role: "user", Content: utterance},
	}
}
