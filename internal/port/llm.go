package port

import "context"

// Responder turns an assembled prompt into the text shown to the user.
type Responder interface {
	// Respond returns the response for the prompt.
	Respond(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model, or "prompt" when no model is used.
	ModelName() string
}
