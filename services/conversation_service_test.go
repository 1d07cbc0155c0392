package services

import (
	"testing"
	"time"

	"github.com/learnlab/learnlab-backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgAt(sender, receiver uuid.UUID, content string, read bool, at time.Time) models.Message {
	return models.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		Read:       read,
		CreatedAt:  at,
	}
}

func TestDeriveConversationsGroupsByCounterpart(t *testing.T) {
	user := uuid.New()
	partnerA := uuid.New()
	partnerB := uuid.New()
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	messages := []models.Message{
		msgAt(partnerA, user, "hi from A", false, base),
		msgAt(user, partnerA, "reply to A", false, base.Add(time.Minute)),
		msgAt(partnerB, user, "hi from B", false, base.Add(2*time.Minute)),
	}

	conversations := DeriveConversations(user, messages)
	require.Len(t, conversations, 2)

	// Sorted by most recent activity.
	assert.Equal(t, partnerB, conversations[0].PartnerID)
	assert.Equal(t, "hi from B", conversations[0].LastMessage.Content)
	assert.Equal(t, 1, conversations[0].UnreadCount)

	assert.Equal(t, partnerA, conversations[1].PartnerID)
	assert.Equal(t, "reply to A", conversations[1].LastMessage.Content, "own reply is the latest message with A")
	assert.Equal(t, 1, conversations[1].UnreadCount, "only unread messages addressed to the user count")
}

func TestDeriveConversationsUnreadCountIgnoresReadAndOutgoing(t *testing.T) {
	user := uuid.New()
	partner := uuid.New()
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	messages := []models.Message{
		msgAt(partner, user, "first", true, base),
		msgAt(partner, user, "second", false, base.Add(time.Minute)),
		msgAt(partner, user, "third", false, base.Add(2*time.Minute)),
		msgAt(user, partner, "outgoing unread on their side", false, base.Add(3*time.Minute)),
	}

	conversations := DeriveConversations(user, messages)
	require.Len(t, conversations, 1)
	assert.Equal(t, 2, conversations[0].UnreadCount)
	assert.Equal(t, "outgoing unread on their side", conversations[0].LastMessage.Content)
}

func TestDeriveConversationsEmptyAndUnordered(t *testing.T) {
	user := uuid.New()
	assert.Empty(t, DeriveConversations(user, nil))

	partner := uuid.New()
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	// Out-of-order input still yields the latest message.
	messages := []models.Message{
		msgAt(partner, user, "newest", false, base.Add(time.Hour)),
		msgAt(partner, user, "oldest", false, base),
	}
	conversations := DeriveConversations(user, messages)
	require.Len(t, conversations, 1)
	assert.Equal(t, "newest", conversations[0].LastMessage.Content)
}
