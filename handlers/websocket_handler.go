package handlers

import (
	"log"
	"net/http"

	"github.com/bowlhaus/strafenkatalog/live"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Single-club deployment behind the clubhouse network; origin
		// checks stay permissive.
		return true
	},
}

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeGame subscribes the connection to one game's summary updates.
func (h *WebSocketHandler) ServeGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade connection for game %d: %v", gameID, err)
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.GameRoom(gameID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
