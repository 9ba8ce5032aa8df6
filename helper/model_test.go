package helper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOnnx(t *testing.T, modelPath string, onnxFilePath string) {
	t.Helper()
	onnx := filepath.Join(modelPath, onnxFilePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(onnx), 0750))
	require.NoError(t, os.WriteFile(onnx, []byte("onnx"), 0600))
}

func TestLocalModelPath(t *testing.T) {
	t.Run("Slashes in the model name become underscores", func(t *testing.T) {
		path := LocalModelPath("./models", "sentence-transformers/all-MiniLM-L6-v2")
		assert.Equal(t, filepath.Join("models", "sentence-transformers_all-MiniLM-L6-v2"), path)
	})

	t.Run("Name without slash is kept", func(t *testing.T) {
		assert.Equal(t, filepath.Join("models", "finbert"), LocalModelPath("models", "finbert"))
	})
}

func TestPrepareModel(t *testing.T) {
	t.Run("Reuse local embedding model with its onnx file", func(t *testing.T) {
		modelDir := t.TempDir()
		modelPath := LocalModelPath(modelDir, "sentence-transformers/all-MiniLM-L6-v2")
		writeOnnx(t, modelPath, "onnx/model.onnx")

		path, err := prepareModelIn(modelDir, "sentence-transformers/all-MiniLM-L6-v2", "onnx/model.onnx")
		require.NoError(t, err)
		assert.Equal(t, modelPath, path)
	})

	t.Run("Reuse local NER model with a root onnx file", func(t *testing.T) {
		modelDir := t.TempDir()
		modelPath := LocalModelPath(modelDir, "KnightsAnalytics/distilbert-NER")
		writeOnnx(t, modelPath, "model.onnx")

		path, err := prepareModelIn(modelDir, "KnightsAnalytics/distilbert-NER", "model.onnx")
		require.NoError(t, err)
		assert.Equal(t, modelPath, path)
	})

	t.Run("Reuse any local directory without onnx file path", func(t *testing.T) {
		modelDir := t.TempDir()
		modelPath := LocalModelPath(modelDir, "fin/local-model")
		require.NoError(t, os.MkdirAll(modelPath, 0750))

		path, err := prepareModelIn(modelDir, "fin/local-model", "")
		require.NoError(t, err)
		assert.Equal(t, modelPath, path)
	})

	t.Run("Empty model name fails", func(t *testing.T) {
		_, err := prepareModelIn(t.TempDir(), " ", "")
		assert.Error(t, err)
	})
}

func TestModelAvailable(t *testing.T) {
	modelDir := t.TempDir()

	t.Run("Missing directory is not available", func(t *testing.T) {
		assert.False(t, modelAvailable(filepath.Join(modelDir, "missing"), ""))
	})

	t.Run("Directory without onnx file is not available", func(t *testing.T) {
		modelPath := filepath.Join(modelDir, "partial")
		require.NoError(t, os.MkdirAll(modelPath, 0750))
		assert.False(t, modelAvailable(modelPath, "onnx/model.onnx"))
		assert.True(t, modelAvailable(modelPath, ""))
	})

	t.Run("File in place of the model directory is not available", func(t *testing.T) {
		modelPath := filepath.Join(modelDir, "file")
		require.NoError(t, os.WriteFile(modelPath, []byte("x"), 0600))
		assert.False(t, modelAvailable(modelPath, ""))
	})

	t.Run("Directory with onnx file is available", func(t *testing.T) {
		modelPath := filepath.Join(modelDir, "complete")
		writeOnnx(t, modelPath, "onnx/model.onnx")
		assert.True(t, modelAvailable(modelPath, "onnx/model.onnx"))
	})
}
