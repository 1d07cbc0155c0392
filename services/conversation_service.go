package services

import (
	"sort"

	"github.com/learnlab/learnlab-backend/models"
	"github.com/google/uuid"
)

// ConversationSummary is a derived view of a user's messages with one
// counterpart. Conversations are never stored.
type ConversationSummary struct {
	PartnerID   uuid.UUID      `json:"partner_id"`
	LastMessage models.Message `json:"last_message"`
	UnreadCount int            `json:"unread_count"`
}

// DeriveConversations groups a user's flat message list by counterpart,
// keeping the most recent message per partner and counting unread messages
// addressed to the user from that partner.
func DeriveConversations(userID uuid.UUID, messages []models.Message) []ConversationSummary {
	byPartner := make(map[uuid.UUID]*ConversationSummary)

	for _, msg := range messages {
		partnerID := msg.SenderID
		if msg.SenderID == userID {
			partnerID = msg.ReceiverID
		}
		if partnerID == userID {
			continue
		}

		summary, ok := byPartner[partnerID]
		if !ok {
			summary = &ConversationSummary{PartnerID: partnerID, LastMessage: msg}
			byPartner[partnerID] = summary
		} else if msg.CreatedAt.After(summary.LastMessage.CreatedAt) {
			summary.LastMessage = msg
		}

		if msg.ReceiverID == userID && !msg.Read {
			summary.UnreadCount++
		}
	}

	conversations := make([]ConversationSummary, 0, len(byPartner))
	for _, summary := range byPartner {
		conversations = append(conversations, *summary)
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})
	return conversations
}
