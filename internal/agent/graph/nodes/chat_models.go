package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/schema-designer/server/internal/agent/model"
	logx "github.com/schema-designer/server/pkg/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey  string
	BaseURL string
	Build   *model.BuildAgentModelConfig
}

// NewChatModel creates the build agent chat model for the configured provider.
func NewChatModel(ctx context.Context, config ChatModelConfig) (einomodel.BaseChatModel, error) {
	if config.Build == nil {
		return nil, fmt.Errorf("build agent model config is nil")
	}

	switch strings.ToLower(strings.TrimSpace(config.Build.Provider)) {
	case ProviderGemini, "":
		return newGeminiChatModel(ctx, config)
	case ProviderOpenAI:
		return newOpenAIChatModel(ctx, config)
	default:
		return nil, fmt.Errorf("unknown chat model provider %q", config.Build.Provider)
	}
}

func newGeminiChatModel(ctx context.Context, config ChatModelConfig) (einomodel.BaseChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	build := config.Build
	cfg := &gemini.Config{
		Client:      client,
		Model:       build.Model,
		Temperature: &build.Temperature,
		MaxTokens:   &build.MaxTokens,
	}
	if build.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(build.ThinkingBudget),
		}
	}

	chatModel, err := gemini.NewChatModel(ctx, cfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating build agent model")
		return nil, fmt.Errorf("error creating build agent model: %w", err)
	}
	return chatModel, nil
}

func newOpenAIChatModel(ctx context.Context, config ChatModelConfig) (einomodel.BaseChatModel, error) {
	build := config.Build
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      config.APIKey,
		Model:       build.Model,
		BaseURL:     config.BaseURL,
		MaxTokens:   &build.MaxTokens,
		Temperature: &build.Temperature,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating build agent model")
		return nil, fmt.Errorf("error creating build agent model: %w", err)
	}
	return chatModel, nil
}
