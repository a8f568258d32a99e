package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModels(t *testing.T) {
	models, err := ParseModels(" gpt-4o-mini , gpt-4o ")
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o-mini", "gpt-4o"}, models)

	_, err = ParseModels("")
	assert.ErrorIs(t, err, ErrNoModels)

	_, err = ParseModels("a,,b")
	assert.ErrorIs(t, err, ErrEmptyModel)

	_, err = ParseModels("a,b,a")
	var dup *DuplicateModelError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Model)
}

func TestJoinParseInverse(t *testing.T) {
	lists := [][]string{
		{"gpt-4o-mini"},
		{"gpt-4o-mini", "gpt-4o"},
		{"claude-3-sonnet-20240229", "claude-3-haiku-20240307", "x"},
		{"llama3:8b", "qwen2.5:14b"},
	}
	for _, list := range lists {
		got, err := ParseModels(JoinModels(list))
		require.NoError(t, err)
		assert.Equal(t, list, got)
	}
}

func TestSplitModels(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitModels(" a,, b ,"))
	assert.Nil(t, SplitModels(""))
}

func TestPartition(t *testing.T) {
	spec := MustLookup(OpenAI)
	found := []string{"davinci-002", "gpt-3.5-turbo", "gpt-4o", "gpt-4o-mini", "text-embedding"}

	rec, others := spec.Partition(found)
	assert.Equal(t, []string{"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"}, rec)
	assert.Equal(t, []string{"davinci-002", "text-embedding"}, others)
	assert.True(t, spec.IsRecommended("gpt-4"))

	rec, others = MustLookup(Ollama).Partition([]string{"llama3"})
	assert.Empty(t, rec)
	assert.Equal(t, []string{"llama3"}, others)
}
