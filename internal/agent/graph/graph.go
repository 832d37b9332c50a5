package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/schema-designer/server/internal/agent/graph/agents"
	"github.com/schema-designer/server/internal/agent/graph/conversations"
	"github.com/schema-designer/server/internal/agent/graph/nodes"
	"github.com/schema-designer/server/internal/agent/graph/observers"
	"github.com/schema-designer/server/internal/agent/model"
	logx "github.com/schema-designer/server/pkg/logger"
)

const maxRunSteps = 10

// Runner is a thin wrapper to execute the compiled graph with the public DesignRequest.
type Runner interface {
	Invoke(ctx context.Context, in model.DesignRequest) (*model.WorkflowState, error)
}

// Config holds everything needed to compose the design graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs the
// chat model, build agent and MessagesManager.
type Config struct {
	APIKey           string
	BaseURL          string
	BuildModel       model.BuildAgentModelConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
	SchemaRepo       model.SchemaRepository
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	Agent           agents.Agent
	MessagesManager *conversations.MessagesManager
	SchemaRepo      model.SchemaRepository
}

// GraphBuilder handles the construction of the schema design graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.DesignRequest, *model.WorkflowState]
}

type graphRunner struct {
	runnable compose.Runnable[model.DesignRequest, *model.WorkflowState]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.DesignRequest) (*model.WorkflowState, error) {
	return r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
}

// BuildDesignGraph creates the chat model, build agent and MessagesManager,
// builds the graph, and returns a Runner.
func BuildDesignGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.SchemaRepo == nil {
		return nil, fmt.Errorf("schema repo is nil")
	}

	chatModel, err := nodes.NewChatModel(ctx, nodes.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Build:   &cfg.BuildModel,
	})
	if err != nil {
		return nil, err
	}

	agent, err := agents.NewBuildAgent(chatModel, cfg.BuildModel.Model)
	if err != nil {
		return nil, err
	}

	runner, err := NewRunner(ctx, &GraphConfig{
		Agent:           agent,
		MessagesManager: conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation),
		SchemaRepo:      cfg.SchemaRepo,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Design graph built successfully")
	return runner, nil
}

// NewRunner compiles the graph for already constructed collaborators.
func NewRunner(ctx context.Context, config *GraphConfig) (Runner, error) {
	runnable, err := BuildGraph(ctx, config)
	if err != nil {
		return nil, err
	}
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled design graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.DesignRequest, *model.WorkflowState], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}

	designNode, err := nodes.NewDesignSchemaNode(config.Agent, config.SchemaRepo)
	if err != nil {
		return nil, err
	}

	builder := &GraphBuilder{
		config: config,
		graph:  compose.NewGraph[model.DesignRequest, *model.WorkflowState](),
	}

	if err := builder.addNodes(designNode); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes(designNode *nodes.DesignSchemaNode) error {
	lambdas := []struct {
		name   string
		lambda *compose.Lambda
	}{
		{nodes.NodeLoadContext, nodes.NewLoadContextNode(b.config.MessagesManager, b.config.SchemaRepo)},
		{nodes.NodeDesignSchema, nodes.NewDesignSchemaLambda(designNode)},
		{nodes.NodeSaveAnswer, nodes.NewSaveAnswerNode(b.config.MessagesManager)},
	}

	for _, l := range lambdas {
		if err := b.graph.AddLambdaNode(l.name, l.lambda, compose.WithNodeName(l.name)); err != nil {
			logx.Error().Err(err).Str("node", l.name).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", l.name, err)
		}
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeLoadContext},
		{nodes.NodeLoadContext, nodes.NodeDesignSchema},
		{nodes.NodeDesignSchema, nodes.NodeSaveAnswer},
		{nodes.NodeSaveAnswer, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.DesignRequest, *model.WorkflowState], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
