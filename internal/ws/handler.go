// Package ws attaches websocket clients to broadcast rooms. Events pushed
// here are re-fetch hints; a client that misses some (slow consumer drop,
// reconnect) re-subscribes and re-fetches authoritative state over HTTP.
package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/shivam222343/verbafest-backend/internal/hub"
)

// ClientMessage lets a connected client adjust its room set without
// reconnecting.
type ClientMessage struct {
	Type string `json:"type"` // "subscribe" | "unsubscribe"
	Room string `json:"room,omitempty"`
}

// ServerMessage wraps pushed events and per-connection errors.
type ServerMessage struct {
	Type  string     `json:"type"` // "Event" | "Error"
	Event *hub.Event `json:"event,omitempty"`
	Error string     `json:"error,omitempty"`
}

func Handler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomsParam := r.URL.Query().Get("rooms")
		if roomsParam == "" {
			http.Error(w, "missing rooms", http.StatusBadRequest)
			return
		}
		rooms := strings.Split(roomsParam, ",")

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan hub.Event, 16)
		clientID := randID(6)

		joined := map[string]bool{}
		for _, room := range rooms {
			room = strings.TrimSpace(room)
			if room == "" {
				continue
			}
			h.Inbox() <- hub.Subscribe{Room: room, ClientID: clientID, Outbox: out}
			joined[room] = true
		}
		defer func() {
			for room := range joined {
				h.Inbox() <- hub.Unsubscribe{Room: room, ClientID: clientID}
			}
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case <-writeCtx.Done():
					return
				case ev := <-out:
					msg := ServerMessage{Type: "Event", Event: &ev}
					payload, _ := json.Marshal(msg)
					ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
					_ = conn.Write(ctx, websocket.MessageText, payload)
					cancel()
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			switch cm.Type {
			case "subscribe":
				if cm.Room != "" && !joined[cm.Room] {
					h.Inbox() <- hub.Subscribe{Room: cm.Room, ClientID: clientID, Outbox: out}
					joined[cm.Room] = true
				}
			case "unsubscribe":
				if joined[cm.Room] {
					h.Inbox() <- hub.Unsubscribe{Room: cm.Room, ClientID: clientID}
					delete(joined, cm.Room)
				}
			default:
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
			}
		}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
