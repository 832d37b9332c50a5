package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/schema-designer/server/internal/agent/graph/agents"
	"github.com/schema-designer/server/internal/agent/graph/parsers"
	"github.com/schema-designer/server/internal/agent/model"
	"github.com/schema-designer/server/internal/dbstructure"
	logx "github.com/schema-designer/server/pkg/logger"
)

// FailedToUpdateSchema is reported when the repository fails without a message.
const FailedToUpdateSchema = "Failed to update schema"

// DesignSchemaNode asks the build agent for schema changes and records them
// as a new schema version.
type DesignSchemaNode struct {
	agent      agents.Agent
	schemaRepo model.SchemaRepository
}

func NewDesignSchemaNode(agent agents.Agent, schemaRepo model.SchemaRepository) (*DesignSchemaNode, error) {
	if agent == nil {
		return nil, errors.New("design schema node: agent is nil")
	}
	if schemaRepo == nil {
		return nil, errors.New("design schema node: schema repository is nil")
	}
	return &DesignSchemaNode{agent: agent, schemaRepo: schemaRepo}, nil
}

// Run returns the state updated with the generated answer. Agent failures
// are returned as errors; schema update failures are reported in
// WorkflowState.Error.
func (n *DesignSchemaNode) Run(ctx context.Context, state model.WorkflowState) (model.WorkflowState, error) {
	log := logx.Node(NodeDesignSchema)
	log.Info().
		Str("conversation_id", state.ConversationID).
		Str("building_schema_id", state.BuildingSchemaID).
		Msgf("[%s] Started", NodeDesignSchema)

	vars := prepareSchemaDesign(state)

	response, err := n.agent.Generate(ctx, vars)
	if err != nil {
		return state, fmt.Errorf("%s: build agent: %w", NodeDesignSchema, err)
	}

	result := n.handleBuildAgentResponse(ctx, response, state)

	log.Info().
		Str("conversation_id", state.ConversationID).
		Str("building_schema_id", state.BuildingSchemaID).
		Msgf("[%s] Completed", NodeDesignSchema)
	return result, nil
}

func prepareSchemaDesign(state model.WorkflowState) model.PromptVariables {
	return model.PromptVariables{
		SchemaText:  dbstructure.ConvertSchemaToText(state.SchemaData),
		ChatHistory: state.FormattedHistory,
		UserMessage: state.UserInput,
	}
}

func (n *DesignSchemaNode) handleBuildAgentResponse(ctx context.Context, response string, state model.WorkflowState) model.WorkflowState {
	parsed, err := parsers.ParseBuildAgentResponse(response)
	if err != nil {
		logx.Warn().Err(err).
			Str("node", NodeDesignSchema).
			Msg("Failed to parse build agent response as structured JSON, using raw response")
		state.GeneratedAnswer = response
		return state
	}
	return n.handleSchemaChanges(ctx, parsed, state)
}

func (n *DesignSchemaNode) handleSchemaChanges(ctx context.Context, parsed *model.BuildAgentResponse, state model.WorkflowState) model.WorkflowState {
	if len(parsed.SchemaChanges) == 0 {
		state.GeneratedAnswer = parsed.Message
		return state
	}
	return n.applySchemaChanges(ctx, parsed.SchemaChanges, parsed.Message, state)
}

func (n *DesignSchemaNode) applySchemaChanges(ctx context.Context, changes []dbstructure.Operation, message string, state model.WorkflowState) model.WorkflowState {
	result, err := n.schemaRepo.CreateVersion(ctx, model.CreateVersionParams{
		BuildingSchemaID:    state.BuildingSchemaID,
		LatestVersionNumber: state.LatestVersionNumber,
		Patch:               changes,
	})
	state.GeneratedAnswer = message

	if err != nil {
		reason := err.Error()
		if reason == "" {
			reason = FailedToUpdateSchema
		}
		logx.Error().Err(err).
			Str("node", NodeDesignSchema).
			Str("building_schema_id", state.BuildingSchemaID).
			Int("latest_version_number", state.LatestVersionNumber).
			Msg("Schema update failed")
		state.Error = reason
		return state
	}

	state.Error = ""
	if result != nil {
		state.LatestVersionNumber = result.VersionNumber
		state.SchemaData = result.Schema
	}
	return state
}
