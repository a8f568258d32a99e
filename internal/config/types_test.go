package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelle/internal/provider"
)

func TestProviderSet_RejectsDuplicates(t *testing.T) {
	var set ProviderSet
	require.NoError(t, set.Add(ProviderConfig{ID: provider.OpenAI, Credential: "a", Models: []string{"gpt-4o"}}))

	err := set.Add(ProviderConfig{ID: provider.OpenAI, Credential: "b", Models: []string{"gpt-4"}})
	assert.ErrorIs(t, err, ErrDuplicateProvider)
	assert.Equal(t, 1, set.Len())

	p, ok := set.Get(provider.OpenAI)
	require.True(t, ok)
	assert.Equal(t, "a", p.Credential)
}

func TestUnifiedConfig_DefaultModel(t *testing.T) {
	assert.Empty(t, UnifiedConfig{}.DefaultModel())

	set, err := NewProviderSet(
		ProviderConfig{ID: provider.Ollama},
		ProviderConfig{ID: provider.Qwen, Credential: "k", Models: []string{"qwen-plus", "qwen-turbo"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "qwen-plus", UnifiedConfig{Providers: set}.DefaultModel())
}

func TestServiceConfig(t *testing.T) {
	tests := []struct {
		svc     ServiceConfig
		wantErr bool
	}{
		{ServiceConfig{Host: "localhost", Port: 9004}, false},
		{ServiceConfig{Host: "localhost", Port: 0}, true},
		{ServiceConfig{Host: "localhost", Port: 65536}, true},
		{ServiceConfig{Host: "", Port: 80}, true},
	}
	for _, tt := range tests {
		err := tt.svc.Validate()
		assert.Equal(t, tt.wantErr, err != nil, "%+v", tt.svc)
	}

	svc := ServiceConfig{Host: "0.0.0.0", Port: 9004}
	assert.True(t, svc.IsPublic())
	assert.Equal(t, "http://0.0.0.0:9004", svc.BaseURL())
}

func TestProviderConfig_Validate(t *testing.T) {
	assert.Error(t, ProviderConfig{ID: provider.OpenAI, Models: []string{"gpt-4o"}}.Validate(), "missing key")
	assert.Error(t, ProviderConfig{ID: provider.OpenAI, Credential: "k"}.Validate(), "no models")
	assert.Error(t, ProviderConfig{ID: provider.OpenAI, Credential: "k", Models: []string{"a", "a"}}.Validate())
	assert.NoError(t, ProviderConfig{ID: provider.Ollama, Models: []string{"llama3"}}.Validate())
}
