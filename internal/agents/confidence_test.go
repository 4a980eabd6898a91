package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractConfidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{"section header format", "=== Confidence ===\n82\nReason: strong sources", intPtr(82)},
		{"slash hundred", "I would rate this 87/100 overall", intPtr(87)},
		{"percent", "I am 95% sure about this", intPtr(95)},
		{"confidence score label", "confidence score: 73", intPtr(73)},
		{"confidence label", "Confidence: 64", intPtr(64)},
		{"confidence label with dash", "Confidence - 58", intPtr(58)},
		{"no number", "no number here", nil},
		{"empty text", "", nil},
		{"out of range rejected", "Confidence: 105", nil},
		{"zero is valid", "Confidence: 0", intPtr(0)},
		{"hundred is valid", "Confidence: 100", intPtr(100)},
		{"first pattern wins", "Score 40/100. Confidence: 90", intPtr(40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractConfidence(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestExtractConfidence_Idempotent(t *testing.T) {
	text := "=== Confidence ===\n82\nReason: strong sources"
	first := ExtractConfidence(text)
	second := ExtractConfidence(text)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func intPtr(v int) *int { return &v }
