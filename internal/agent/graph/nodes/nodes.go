package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/schema-designer/server/internal/agent/graph/conversations"
	"github.com/schema-designer/server/internal/agent/model"
	logx "github.com/schema-designer/server/pkg/logger"
)

const (
	NodeLoadContext  = "loadContextNode"
	NodeDesignSchema = "designSchemaNode"
	NodeSaveAnswer   = "saveAnswerNode"
)

// NewLoadContextNode builds the initial WorkflowState from a DesignRequest:
// it formats the prior history, loads the latest schema snapshot and only then
// stores the new user message.
func NewLoadContextNode(
	mm *conversations.MessagesManager,
	schemaRepo model.SchemaRepository,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.DesignRequest) (model.WorkflowState, error) {
		if strings.TrimSpace(in.BuildingSchemaID) == "" {
			return model.WorkflowState{}, fmt.Errorf("%s: building schema id is empty", NodeLoadContext)
		}

		history, err := mm.FormatHistory(ctx, in.ConversationID)
		if err != nil {
			return model.WorkflowState{}, fmt.Errorf("error getting conversation history: %w", err)
		}

		snapshot, err := schemaRepo.GetLatest(ctx, in.BuildingSchemaID)
		if err != nil {
			return model.WorkflowState{}, fmt.Errorf("error loading building schema: %w", err)
		}

		if err := mm.SaveUserMessage(ctx, in.ConversationID, in.UserInput); err != nil {
			return model.WorkflowState{}, fmt.Errorf("error saving user message: %w", err)
		}

		logx.Debug().
			Str("conversation_id", in.ConversationID).
			Str("building_schema_id", in.BuildingSchemaID).
			Int("latest_version_number", snapshot.LatestVersionNumber).
			Int("table_count", len(snapshot.Schema.Tables)).
			Msg("Workflow context loaded")

		return model.WorkflowState{
			ConversationID:      in.ConversationID,
			UserInput:           in.UserInput,
			FormattedHistory:    history,
			SchemaData:          snapshot.Schema,
			BuildingSchemaID:    in.BuildingSchemaID,
			LatestVersionNumber: snapshot.LatestVersionNumber,
		}, nil
	})
}

// NewDesignSchemaLambda exposes a DesignSchemaNode as a graph lambda.
func NewDesignSchemaLambda(node *DesignSchemaNode) *compose.Lambda {
	return compose.InvokableLambda(node.Run)
}

// NewSaveAnswerNode stores the generated answer as the assistant's reply.
// Persistence failures are logged and do not fail the run.
func NewSaveAnswerNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state model.WorkflowState) (*model.WorkflowState, error) {
		if strings.TrimSpace(state.GeneratedAnswer) == "" {
			return &state, nil
		}
		if err := mm.SaveResponse(ctx, state.ConversationID, state.GeneratedAnswer); err != nil {
			logx.Error().
				Str("conversation_id", state.ConversationID).
				Err(err).
				Msg("Error saving assistant response")
		} else {
			logx.Debug().
				Str("conversation_id", state.ConversationID).
				Msg("Successfully saved assistant response to Redis")
		}
		return &state, nil
	})
}
