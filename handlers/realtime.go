package handlers

import (
	"github.com/learnlab/learnlab-backend/realtime"
	"github.com/google/uuid"
)

var hub *realtime.Hub

// InitRealtime hands the handlers the hub owned by the process entry point.
func InitRealtime(h *realtime.Hub) {
	hub = h
}

func publishEvent(table, action string, userID uuid.UUID, payload interface{}) {
	if hub == nil {
		return
	}
	hub.Publish(realtime.Event{
		Channel: realtime.ChannelName(table, userID),
		Table:   table,
		Action:  action,
		Payload: payload,
	})
}
