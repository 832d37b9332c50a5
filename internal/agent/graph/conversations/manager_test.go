package conversations

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schema-designer/server/internal/agent/model"
)

type memoryRepo struct {
	messages map[string][]*schema.Message
	loadErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{messages: map[string][]*schema.Message{}}
}

func (m *memoryRepo) AddMessage(_ context.Context, id string, msg *schema.Message) error {
	m.messages[id] = append(m.messages[id], msg)
	return nil
}

func (m *memoryRepo) LoadHistory(_ context.Context, id string) (*model.ConversationHistory, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return &model.ConversationHistory{ConversationID: id, Messages: m.messages[id]}, nil
}

func (m *memoryRepo) ClearHistory(_ context.Context, id string) error {
	delete(m.messages, id)
	return nil
}

func (m *memoryRepo) GetMessageCount(_ context.Context, id string) (int, error) {
	return len(m.messages[id]), nil
}

func TestMessagesManager_FormatHistory(t *testing.T) {
	repo := newMemoryRepo()
	mm := NewMessagesManager(repo, model.ConversationConfig{HistoryMaxTurns: 3})
	ctx := context.Background()

	require.NoError(t, mm.SaveUserMessage(ctx, "c1", "I need a blog schema"))
	require.NoError(t, mm.SaveResponse(ctx, "c1", "Added users and posts."))
	require.NoError(t, mm.SaveUserMessage(ctx, "c1", "Add comments"))
	require.NoError(t, mm.SaveResponse(ctx, "c1", "Added comments."))

	got, err := mm.FormatHistory(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Assistant: Added users and posts.\nUser: Add comments\nAssistant: Added comments.", got)
}

func TestMessagesManager_FormatHistory_Empty(t *testing.T) {
	mm := NewMessagesManager(newMemoryRepo(), model.ConversationConfig{})
	got, err := mm.FormatHistory(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMessagesManager_FormatHistory_Error(t *testing.T) {
	repo := newMemoryRepo()
	repo.loadErr = errors.New("redis down")
	mm := NewMessagesManager(repo, model.ConversationConfig{})

	_, err := mm.FormatHistory(context.Background(), "c1")
	assert.EqualError(t, err, "redis down")
}

func TestFormatMessages_SkipsOtherRoles(t *testing.T) {
	got := FormatMessages([]*schema.Message{
		schema.SystemMessage("system"),
		nil,
		schema.UserMessage("  "),
		schema.UserMessage("hello"),
		schema.ToolMessage("{}", "call_1"),
	})
	assert.Equal(t, "User: hello", got)
}
