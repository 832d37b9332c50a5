package model

import (
	"github.com/schema-designer/server/internal/dbstructure"
)

// DesignRequest is the public input of the schema design graph.
type DesignRequest struct {
	ConversationID   string `json:"conversation_id"`
	BuildingSchemaID string `json:"building_schema_id"`
	UserInput        string `json:"user_input"`
}

// WorkflowState is the state threaded through the schema design workflow.
// Nodes treat it as a value: each returns an updated copy.
type WorkflowState struct {
	ConversationID   string
	UserInput        string
	FormattedHistory string

	SchemaData          dbstructure.Schema
	BuildingSchemaID    string
	LatestVersionNumber int // 0 when the schema has no versions yet

	GeneratedAnswer string
	// Error holds the last schema update failure; empty means none.
	Error string
}

// BuildAgentResponse is the structured output expected from the build agent.
type BuildAgentResponse struct {
	Message       string                  `json:"message"`
	SchemaChanges []dbstructure.Operation `json:"schemaChanges"`
}

// PromptVariables are the inputs rendered into the build agent prompt.
type PromptVariables struct {
	SchemaText  string
	ChatHistory string
	UserMessage string
}

// Map returns the variables keyed the way the prompt template expects.
func (v PromptVariables) Map() map[string]any {
	return map[string]any{
		"schema_text":  v.SchemaText,
		"chat_history": v.ChatHistory,
		"user_message": v.UserMessage,
	}
}
