package llm

import "context"

// PromptResponder hands the assembled prompt back unchanged, for use with
// an external model.
type PromptResponder struct{}

func NewPromptResponder() *PromptResponder {
	return &PromptResponder{}
}

func (PromptResponder) Respond(_ context.Context, prompt string) (string, error) {
	return prompt, nil
}

func (PromptResponder) ModelName() string {
	return "prompt"
}
