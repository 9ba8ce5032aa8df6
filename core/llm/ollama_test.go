package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siherrmann/fingrapher/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama answers /api/chat with a fixed assistant message and records
// the requested model.
func fakeOllama(t *testing.T, reply string, status int) (*httptest.Server, *string) {
	var requestedModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			requestedModel, _ = body["model"].(string)

			if status != http.StatusOK {
				w.WriteHeader(status)
				w.Write([]byte(`{"error":"model not found"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"model":   requestedModel,
				"message": map[string]string{"role": "assistant", "content": reply},
				"done":    true,
			})
		case "/api/tags":
			w.WriteHeader(status)
			w.Write([]byte(`{"models":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &requestedModel
}

func TestOllamaGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("Generate returns the completion text", func(t *testing.T) {
		server, requestedModel := fakeOllama(t, "Apple faces supply chain risks.", http.StatusOK)

		generator, err := NewOllamaGenerator(model.LLMConfig{Model: "llama3.2", ServerURL: server.URL})
		require.NoError(t, err)

		generation, err := generator.Generate(ctx, "mistral", "What are Apple's risks?")
		require.NoError(t, err)
		assert.Equal(t, "Apple faces supply chain risks.", generation.Text)
		assert.Equal(t, "mistral", *requestedModel)
	})

	t.Run("Generate falls back to the configured model", func(t *testing.T) {
		server, requestedModel := fakeOllama(t, "ok", http.StatusOK)

		generator, err := NewOllamaGenerator(model.LLMConfig{Model: "llama3.2", ServerURL: server.URL})
		require.NoError(t, err)

		_, err = generator.Generate(ctx, "", "prompt")
		require.NoError(t, err)
		assert.Equal(t, "llama3.2", *requestedModel)
	})

	t.Run("Generate reports server errors", func(t *testing.T) {
		server, _ := fakeOllama(t, "", http.StatusInternalServerError)

		generator, err := NewOllamaGenerator(model.LLMConfig{Model: "llama3.2", ServerURL: server.URL})
		require.NoError(t, err)

		_, err = generator.Generate(ctx, "llama3.2", "prompt")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "generate with llama3.2")
	})

	t.Run("Ping succeeds against a running server", func(t *testing.T) {
		server, _ := fakeOllama(t, "", http.StatusOK)

		generator, err := NewOllamaGenerator(model.LLMConfig{ServerURL: server.URL + "/"})
		require.NoError(t, err)
		assert.NoError(t, generator.Ping(ctx))
	})

	t.Run("Ping fails on error status", func(t *testing.T) {
		server, _ := fakeOllama(t, "", http.StatusServiceUnavailable)

		generator, err := NewOllamaGenerator(model.LLMConfig{ServerURL: server.URL})
		require.NoError(t, err)
		assert.Error(t, generator.Ping(ctx))
	})
}

func TestGeneratorFunc(t *testing.T) {
	t.Run("Function adapter implements Generator", func(t *testing.T) {
		var generator Generator = GeneratorFunc(func(ctx context.Context, modelName, prompt string) (*model.Generation, error) {
			return &model.Generation{Text: modelName + ":" + prompt}, nil
		})

		generation, err := generator.Generate(context.Background(), "m", "p")
		require.NoError(t, err)
		assert.Equal(t, "m:p", generation.Text)
	})
}
