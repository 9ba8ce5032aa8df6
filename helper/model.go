package helper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
)

// ModelDir is the directory PrepareModel keeps downloaded models in
const ModelDir = "./models"

// PrepareModel downloads the model if it doesn't exist and returns the model path.
// The model is stored under ModelDir with slashes in its name replaced by underscores.
func PrepareModel(modelName string, onnxFilePath string) (string, error) {
	return prepareModelIn(ModelDir, modelName, onnxFilePath)
}

// LocalModelPath returns the directory a model is stored in below modelDir
func LocalModelPath(modelDir string, modelName string) string {
	return filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
}

func prepareModelIn(modelDir string, modelName string, onnxFilePath string) (string, error) {
	if strings.TrimSpace(modelName) == "" {
		return "", fmt.Errorf("model name is empty")
	}

	modelPath := LocalModelPath(modelDir, modelName)
	if modelAvailable(modelPath, onnxFilePath) {
		return modelPath, nil
	}

	if err := os.MkdirAll(modelDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	downloadOptions := hugot.NewDownloadOptions()
	if onnxFilePath != "" {
		downloadOptions.OnnxFilePath = onnxFilePath
	}
	downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
	if err != nil {
		return "", fmt.Errorf("failed to download model: %w", err)
	}

	return downloadedPath, nil
}

// modelAvailable reports whether modelPath is a directory holding the onnx file.
// Without an onnx file path any existing directory counts.
func modelAvailable(modelPath string, onnxFilePath string) bool {
	info, err := os.Stat(modelPath)
	if err != nil || !info.IsDir() {
		return false
	}
	if onnxFilePath == "" {
		return true
	}
	onnxInfo, err := os.Stat(filepath.Join(modelPath, onnxFilePath))
	return err == nil && !onnxInfo.IsDir()
}
