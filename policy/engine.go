// Package policy gates inbound chat requests with an OPA/rego policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.chat_policy.decision"),
		rego.Module("chat_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// ChatInput is the evaluation input for one inbound chat message.
type ChatInput struct {
	UserID        string `json:"user_id"`
	Provider      string `json:"provider"`
	MessageLength int    `json:"message_length"`
}

// Evaluate checks the chat policy for one request.
// Returns the decision ("allow" or "block") and an optional reason.
func (e *Engine) Evaluate(ctx context.Context, input ChatInput) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default; an empty result means it did not load.
		return "allow", "default", nil
	}

	val := results[0].Expressions[0].Value
	if s, ok := val.(string); ok {
		return s, "", nil
	}

	return "allow", "unexpected return type", nil
}

// MaxMessageLength is the largest user message the default policy accepts.
const MaxMessageLength = 8000

// DefaultPolicy is the default policy content: only supported providers
// pass, and empty or oversized messages are blocked before any provider
// call.
const DefaultPolicy = `
package chat_policy

default decision := "block"

decision := "allow" if {
	input.provider in {"openai", "gemini"}
	input.message_length > 0
	input.message_length <= 8000
}
`
