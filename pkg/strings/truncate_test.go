package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"truncated", "connection refused by peer", 10, "connect..."},
		{"whitespace collapsed", "dial tcp\n\t127.0.0.1:1:   refused", 80, "dial tcp 127.0.0.1:1: refused"},
		{"unicode safe", "模型列表无法获取", 6, "模型列..."},
		{"tiny max clamped", "abcdef", 1, "a..."},
		{"empty", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.maxLen))
		})
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "*****", Mask("short"))
	assert.Equal(t, "sk-p****", Mask("sk-proj-abcdefghijkl"))
	assert.NotContains(t, Mask("sk-proj-abcdefghijkl"), "abcdef")
}
