package inference

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agent-api/core/pkg/agent"
	"github.com/agent-api/core/types"
	"github.com/agent-api/ollama"
)

// Engine is the boundary to the external vision capability: one logical
// call takes an image plus an instruction and returns free-form text.
// Nothing outside this package talks to the service directly.
type Engine interface {
	Describe(ctx context.Context, imagePath, prompt string) (string, error)
}

const systemPrompt = "You are a video editing analyst. You review still frames " +
	"sampled from short-form videos and report what is on screen, the apparent " +
	"genre, and concrete editing improvements. Answer only in the requested format."

// AgentEngine drives a vision model through an agent-api ollama provider.
type AgentEngine struct {
	agent *agent.DefaultAgent
}

// AgentOptions configures the ollama-backed engine.
type AgentOptions struct {
	BaseURL string
	Port    int
	Model   string
	Logger  *slog.Logger
}

// NewAgentEngine initializes the vision agent.
func NewAgentEngine(ctx context.Context, opts AgentOptions) (*AgentEngine, error) {
	provider := ollama.NewProvider(&ollama.ProviderOpts{
		Logger:  opts.Logger,
		BaseURL: opts.BaseURL,
		Port:    opts.Port,
	})
	provider.UseModel(ctx, &types.Model{ID: opts.Model})

	a := agent.NewAgent(&agent.NewAgentConfig{
		Provider:     provider,
		Logger:       opts.Logger,
		SystemPrompt: systemPrompt,
	})

	return &AgentEngine{agent: a}, nil
}

// Describe sends one frame with the given instruction to the model.
func (e *AgentEngine) Describe(ctx context.Context, imagePath, prompt string) (string, error) {
	response := e.agent.Run(
		ctx,
		agent.WithInput(prompt),
		agent.WithImagePath(imagePath),
	)
	if response.Err != nil {
		return "", response.Err
	}

	if len(response.Messages) == 0 {
		return "", fmt.Errorf("no response messages received from model")
	}

	// The last message is the model's answer, not the prompt.
	return response.Messages[len(response.Messages)-1].Content, nil
}
