package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaGenerator generates text with a local Ollama server
type OllamaGenerator struct {
	client    *ollama.LLM
	serverURL string
	model     string
}

// NewOllamaGenerator creates a generator for the configured Ollama server.
// The configured model is used when Generate is called without a model name.
func NewOllamaGenerator(config model.LLMConfig) (*OllamaGenerator, error) {
	serverURL := config.ServerURL
	if serverURL == "" {
		serverURL = defaultOllamaURL
	}

	opts := []ollama.Option{
		ollama.WithServerURL(serverURL),
	}
	if config.Model != "" {
		opts = append(opts, ollama.WithModel(config.Model))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, helper.NewError("create ollama client", err)
	}

	return &OllamaGenerator{
		client:    client,
		serverURL: strings.TrimRight(serverURL, "/"),
		model:     config.Model,
	}, nil
}

// Generate sends a single prompt and returns the completion text
func (g *OllamaGenerator) Generate(ctx context.Context, modelName, prompt string) (*model.Generation, error) {
	if modelName == "" {
		modelName = g.model
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, llms.WithModel(modelName))
	if err != nil {
		return nil, helper.NewError(fmt.Sprintf("generate with %s", modelName), err)
	}

	return &model.Generation{Text: text}, nil
}

// Ping checks that the Ollama server answers its model listing endpoint
func (g *OllamaGenerator) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.serverURL+"/api/tags", nil)
	if err != nil {
		return helper.NewError("create request", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return helper.NewError("ping ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return helper.NewError("ping ollama", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return nil
}
