package model

// ================ Config ================
type ConversationConfig struct {
	TTL             string `envconfig:"CONVERSATION_TTL" default:"24h"`
	HistoryMaxTurns int    `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"10"`
}

type BuildAgentModelConfig struct {
	Provider       string  `envconfig:"BUILD_AGENT_PROVIDER" default:"gemini"`
	Model          string  `envconfig:"BUILD_AGENT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens      int     `envconfig:"BUILD_AGENT_MAX_TOKENS" default:"8192"`
	Temperature    float32 `envconfig:"BUILD_AGENT_TEMPERATURE" default:"0.2"`
	ThinkingBudget int32   `envconfig:"BUILD_AGENT_THINKING_BUDGET" default:"2000"`
}
