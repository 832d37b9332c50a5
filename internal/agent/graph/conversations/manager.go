package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/schema-designer/server/internal/agent/model"
)

const defaultHistoryMaxTurns = 10

// MessagesManager turns stored conversation messages into the chat history
// the build agent sees, and records new turns.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	historyMaxTurns  int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	maxTurns := config.HistoryMaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultHistoryMaxTurns
	}
	return &MessagesManager{
		conversationRepo: conversationRepo,
		historyMaxTurns:  maxTurns,
	}
}

// FormatHistory renders the most recent messages of a conversation as
// "User: ..." / "Assistant: ..." lines. Empty conversations yield "".
func (cm *MessagesManager) FormatHistory(ctx context.Context, conversationID string) (string, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return "", err
	}
	return FormatMessages(trimTail(history.Messages, cm.historyMaxTurns)), nil
}

func (cm *MessagesManager) SaveUserMessage(ctx context.Context, conversationID string, content string) error {
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(content))
}

func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.AssistantMessage(content, nil))
}

// FormatMessages renders user and assistant messages one per line. Other
// roles and empty messages are skipped.
func FormatMessages(messages []*schema.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			lines = append(lines, "User: "+msg.Content)
		case schema.Assistant:
			lines = append(lines, "Assistant: "+msg.Content)
		}
	}
	return strings.Join(lines, "\n")
}

func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
