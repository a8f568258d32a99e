package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrder(t *testing.T) {
	assert.Equal(t, []ID{OpenAI, Ollama, Gemini, DeepSeek, Claude, Qwen}, IDs())
}

func TestCredentialKeys(t *testing.T) {
	assert.Equal(t, []string{
		"OPENAI_API_KEY",
		"OLLAMA_BASE_URL",
		"GEMINI_API_KEY",
		"DEEPSEEK_API_KEY",
		"CLAUDE_API_KEY",
		"QWEN_API_KEY",
	}, CredentialKeys())
}

func TestRegistryEntriesAreConsistent(t *testing.T) {
	for _, s := range All() {
		t.Run(string(s.ID), func(t *testing.T) {
			assert.NotEmpty(t, s.DefaultEndpoint)
			assert.NotEmpty(t, s.DisplayName)
			if s.Discovery == DiscoveryNone {
				assert.NotEmpty(t, s.DefaultModels, "providers without discovery need defaults")
			}
			assert.Equal(t, strings.ToUpper(string(s.ID))+"_MODELS", s.ModelsKey())
		})
	}
}

func TestParse(t *testing.T) {
	id, err := Parse(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, OpenAI, id)

	_, err = Parse("mistral")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mistral")
	assert.Contains(t, err.Error(), "qwen")
}

func TestRemaining(t *testing.T) {
	rest := Remaining([]ID{OpenAI, Claude})
	var ids []ID
	for _, s := range rest {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []ID{Ollama, Gemini, DeepSeek, Qwen}, ids)
	assert.Empty(t, Remaining(IDs()))
}

func TestMustLookupPanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { MustLookup(ID("nope")) })
	assert.Equal(t, "https://api.openai.com/v1", MustLookup(OpenAI).DefaultEndpoint)
}
