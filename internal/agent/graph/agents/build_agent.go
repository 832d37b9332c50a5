package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/schema-designer/server/internal/agent/graph/prompts"
	"github.com/schema-designer/server/internal/agent/model"
	logx "github.com/schema-designer/server/pkg/logger"
)

// Agent produces a reply for the rendered prompt variables. The reply is
// expected, but not guaranteed, to be a structured BuildAgentResponse.
type Agent interface {
	Generate(ctx context.Context, vars model.PromptVariables) (string, error)
}

// BuildAgent asks a chat model for schema changes.
type BuildAgent struct {
	chatModel einomodel.BaseChatModel
	modelName string
}

var _ Agent = (*BuildAgent)(nil)

func NewBuildAgent(chatModel einomodel.BaseChatModel, modelName string) (*BuildAgent, error) {
	if chatModel == nil {
		return nil, errors.New("build agent: chat model is nil")
	}
	return &BuildAgent{chatModel: chatModel, modelName: modelName}, nil
}

// Generate renders the prompt, calls the chat model and returns the
// assistant content verbatim.
func (a *BuildAgent) Generate(ctx context.Context, vars model.PromptVariables) (string, error) {
	ctx = callbacks.EnsureRunInfo(ctx, "BuildAgent", "Agent")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"user_message": vars.UserMessage,
		"model":        a.modelName,
	})

	content, err := a.generate(ctx, vars)
	if err != nil {
		callbacks.OnError(ctx, err)
		return "", err
	}

	callbacks.OnEnd(ctx, map[string]any{"content_length": len(content)})
	return content, nil
}

func (a *BuildAgent) generate(ctx context.Context, vars model.PromptVariables) (string, error) {
	msgs, err := prompts.RenderBuildAgentMessages(ctx, vars)
	if err != nil {
		return "", err
	}

	out, err := a.chatModel.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("build agent generate: %w", err)
	}
	if out == nil {
		return "", errors.New("build agent generate: empty message")
	}

	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		c := model.ComputeCost(a.modelName, out.ResponseMeta.Usage)
		logx.Debug().
			Str("model", c.Model).
			Int("prompt_tokens", c.PromptTokens).
			Int("completion_tokens", c.CompletionTokens).
			Int("total_tokens", c.TotalTokens).
			Float64("input_cost_usd", c.InputCost).
			Float64("output_cost_usd", c.OutputCost).
			Float64("total_cost_usd", c.TotalCost).
			Msg("LLM usage")
	}

	return out.Content, nil
}
