package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestComputeCost(t *testing.T) {
	c := ComputeCost("gemini-2.5-flash", &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 200_000, TotalTokens: 1_200_000})
	assert.InDelta(t, 0.30, c.InputCost, 1e-9)
	assert.InDelta(t, 0.50, c.OutputCost, 1e-9)
	assert.InDelta(t, 0.80, c.TotalCost, 1e-9)
	assert.Equal(t, 1_200_000, c.TotalTokens)
}

func TestComputeCost_UnknownModelAndNilUsage(t *testing.T) {
	c := ComputeCost("some-local-model", &schema.TokenUsage{PromptTokens: 500, CompletionTokens: 20})
	assert.Zero(t, c.TotalCost)
	assert.Equal(t, 500, c.PromptTokens)

	assert.Equal(t, UsageCost{Model: "gpt-4o"}, ComputeCost("gpt-4o", nil))
}
