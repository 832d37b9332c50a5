package model

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/schema-designer/server/internal/dbstructure"
)

// ConversationRepository stores chat messages per conversation.
type ConversationRepository interface {
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)
	ClearHistory(ctx context.Context, conversationID string) error
	GetMessageCount(ctx context.Context, conversationID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}

// SchemaRepository stores building schemas and their version history.
type SchemaRepository interface {
	// GetLatest returns the current schema and its latest version number.
	GetLatest(ctx context.Context, buildingSchemaID string) (*SchemaSnapshot, error)

	// CreateVersion applies Patch on top of LatestVersionNumber and records
	// the result as the next version. It fails if LatestVersionNumber is
	// no longer the latest.
	CreateVersion(ctx context.Context, params CreateVersionParams) (*CreateVersionResult, error)
}

type SchemaSnapshot struct {
	BuildingSchemaID    string
	Schema              dbstructure.Schema
	LatestVersionNumber int
}

type CreateVersionParams struct {
	BuildingSchemaID    string
	LatestVersionNumber int
	Patch               []dbstructure.Operation
}

type CreateVersionResult struct {
	VersionID     string
	VersionNumber int
	Schema        dbstructure.Schema
}
