package handlers

import (
	"errors"
	"fmt"
	"log"
	"sync"

	config "github.com/learnlab/learnlab-backend/configs"
	"github.com/learnlab/learnlab-backend/database"
	"github.com/learnlab/learnlab-backend/models"
	"github.com/learnlab/learnlab-backend/realtime"
	"github.com/learnlab/learnlab-backend/services"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
	Content    string `json:"content" validate:"required"`
}

func SendMessage(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	senderID, _ := uuid.Parse(claims["user_id"].(string))

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	receiverID, _ := uuid.Parse(req.ReceiverID)

	var receiver models.User
	if err := database.DB.First(&receiver, "id = ?", receiverID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Recipient not found"})
	}

	message := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    req.Content,
	}
	if err := database.DB.Create(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send message"})
	}

	publishEvent("messages", "INSERT", receiverID, message)

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetConversations derives the conversation list from the user's flat
// message history: one entry per counterpart with the most recent message
// and an unread count.
func GetConversations(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var messages []models.Message
	if err := database.DB.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}

	conversations := services.DeriveConversations(userID, messages)

	partnerIDs := make([]uuid.UUID, 0, len(conversations))
	for _, conv := range conversations {
		partnerIDs = append(partnerIDs, conv.PartnerID)
	}
	partners := make(map[uuid.UUID]models.User, len(partnerIDs))
	if len(partnerIDs) > 0 {
		var users []models.User
		database.DB.Where("id IN ?", partnerIDs).Find(&users)
		for _, u := range users {
			partners[u.ID] = u
		}
	}

	type conversationResponse struct {
		Partner     interface{}    `json:"partner"`
		LastMessage models.Message `json:"last_message"`
		UnreadCount int            `json:"unread_count"`
	}
	response := make([]conversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		entry := conversationResponse{LastMessage: conv.LastMessage, UnreadCount: conv.UnreadCount}
		if partner, ok := partners[conv.PartnerID]; ok {
			entry.Partner = partner
		} else {
			entry.Partner = fiber.Map{"id": conv.PartnerID}
		}
		response = append(response, entry)
	}

	return c.JSON(response)
}

func GetMessagesWith(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	partnerID, err := uuid.Parse(c.Params("partnerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid partner ID"})
	}

	var messages []models.Message
	if err := database.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID).
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}

	return c.JSON(messages)
}

func MarkConversationRead(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	partnerID, err := uuid.Parse(c.Params("partnerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid partner ID"})
	}

	if err := database.DB.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", partnerID, userID, false).
		Update("read", true).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark messages as read"})
	}

	return c.JSON(fiber.Map{"message": "Conversation marked as read"})
}

type jsonWriter interface {
	WriteJSON(v interface{}) error
}

// syncWriter serializes writes to a websocket connection. Hub events arrive
// on publisher goroutines while the read loop writes echoes and errors on
// its own; the connection forbids concurrent writers.
type syncWriter struct {
	mu   sync.Mutex
	conn jsonWriter
}

func (w *syncWriter) WriteJSON(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

// ServeWs authenticates the socket with a JWT auth frame, then subscribes
// the user's entity channels on the hub so row changes stream to the client.
// Incoming frames are persisted direct messages.
func ServeWs(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: invalid token, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		log.Printf("WebSocket auth failed: invalid user_id, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	log.Printf("WebSocket client authenticated: %s", userID)

	writer := &syncWriter{conn: c}

	subs := make([]*realtime.Subscription, 0, 5)
	for _, table := range []string{"messages", "sessions", "earnings", "files", "enrollments"} {
		sub := hub.Subscribe(realtime.ChannelName(table, userID), func(evt realtime.Event) {
			if err := writer.WriteJSON(evt); err != nil {
				log.Printf("Error delivering %s event to client %s: %v", evt.Table, userID, err)
			}
		})
		subs = append(subs, sub)
	}
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
		c.Close()
		log.Printf("WebSocket client disconnected: %s", userID)
	}()

	type messagePayload struct {
		ReceiverID string `json:"receiver_id"`
		Content    string `json:"content"`
	}
	for {
		var msg messagePayload
		if err := c.ReadJSON(&msg); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", userID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			break
		}

		receiverID, err := uuid.Parse(msg.ReceiverID)
		if err != nil || msg.Content == "" {
			_ = writer.WriteJSON(fiber.Map{"error": "Invalid message payload"})
			continue
		}

		dbMessage := models.Message{
			SenderID:   userID,
			ReceiverID: receiverID,
			Content:    msg.Content,
		}
		if err := database.DB.Create(&dbMessage).Error; err != nil {
			log.Printf("Failed to save message for client %s: %v", userID, err)
			_ = writer.WriteJSON(fiber.Map{"error": "Failed to save message"})
			continue
		}

		publishEvent("messages", "INSERT", receiverID, dbMessage)
		_ = writer.WriteJSON(dbMessage)
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
