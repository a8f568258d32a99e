package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelle/internal/envstore"
)

func TestDetectStatus_FirstTime(t *testing.T) {
	env := envstore.ForRoot(t.TempDir())
	assert.Equal(t, StatusFirstTime, DetectStatus(env))
}

func TestDetectStatus(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Status
	}{
		{
			name:    "empty file",
			content: "",
			want:    StatusIncomplete,
		},
		{
			name:    "engine only",
			content: "COMFYUI_BASE_URL=http://localhost:8188\n",
			want:    StatusIncomplete,
		},
		{
			name:    "provider only",
			content: "OPENAI_API_KEY=sk-test\n",
			want:    StatusIncomplete,
		},
		{
			name:    "empty engine value",
			content: "COMFYUI_BASE_URL=\"\"\nOPENAI_API_KEY=sk-test\n",
			want:    StatusIncomplete,
		},
		{
			name:    "empty credential",
			content: "COMFYUI_BASE_URL=http://localhost:8188\nOPENAI_API_KEY=''\n",
			want:    StatusIncomplete,
		},
		{
			name:    "commented credential",
			content: "COMFYUI_BASE_URL=http://localhost:8188\n# OPENAI_API_KEY=sk-test\n",
			want:    StatusIncomplete,
		},
		{
			name:    "openai",
			content: "COMFYUI_BASE_URL=http://localhost:8188\nOPENAI_API_KEY=\"sk-test\"\n",
			want:    StatusComplete,
		},
		{
			name:    "ollama base url counts as credential",
			content: "COMFYUI_BASE_URL=http://localhost:8188\nOLLAMA_BASE_URL=http://localhost:11434/v1\n",
			want:    StatusComplete,
		},
		{
			name:    "malformed lines ignored",
			content: "garbage line\n=\nCOMFYUI_BASE_URL=http://x\n\n  QWEN_API_KEY = 'k'  \n",
			want:    StatusComplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, envstore.FileName), []byte(tt.content), 0o600))
			assert.Equal(t, tt.want, DetectStatus(envstore.ForRoot(dir)))
		})
	}
}

func TestStatusOf_NoValues(t *testing.T) {
	assert.Equal(t, StatusIncomplete, StatusOf(nil))
}
