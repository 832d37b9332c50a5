package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/schema-designer/server/internal/agent/model"
)

//go:embed template/build_agent_prompt.txt
var buildAgentSystemPrompt string

// NewBuildAgentTemplate returns the chat template for the build agent:
// a system message carrying the schema and history, then the user message.
func NewBuildAgentTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(buildAgentSystemPrompt),
		schema.UserMessage("{{.user_message}}"),
	)
}

// RenderBuildAgentMessages renders the build agent messages via the Eino
// prompt component so prompt callbacks fire.
func RenderBuildAgentMessages(ctx context.Context, vars model.PromptVariables) ([]*schema.Message, error) {
	msgs, err := NewBuildAgentTemplate().Format(ctx, vars.Map())
	if err != nil {
		return nil, fmt.Errorf("build agent prompt render: %w", err)
	}
	if len(msgs) != 2 || msgs[0] == nil || msgs[1] == nil {
		return nil, fmt.Errorf("build agent prompt render: unexpected result of %d messages", len(msgs))
	}
	return msgs, nil
}
