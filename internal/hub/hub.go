// Package hub is the real-time broadcast bus: a registry of room actors
// that fan domain events out to subscribed clients. Delivery is
// fire-and-forget; the write path never waits on a subscriber.
package hub

import "context"

type HubMsg interface{ isHubMsg() }

type Subscribe struct {
	Room     string
	ClientID string
	Outbox   chan Event
}

type Unsubscribe struct {
	Room     string
	ClientID string
}

type Publish struct {
	Event Event
}

type GetRoom struct {
	Room  string
	Reply chan *Room
}

type ShutdownHub struct{}

func (Subscribe) isHubMsg()   {}
func (Unsubscribe) isHubMsg() {}
func (Publish) isHubMsg()     {}
func (GetRoom) isHubMsg()     {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*Room
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*Room),
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Publish is the convenience entry the orchestration layer uses. It never
// blocks the caller beyond the hub inbox handoff.
func (h *Hub) Publish(room, name string, payload map[string]string) {
	select {
	case h.inbox <- Publish{Event: Event{Room: room, Name: name, Payload: payload}}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Subscribe:
				rm := h.rooms[msg.Room]
				if rm == nil {
					rm = NewRoom(h.ctx, msg.Room)
					h.rooms[msg.Room] = rm
				}
				rm.Inbox() <- Join{ClientID: msg.ClientID, Outbox: msg.Outbox}

			case Unsubscribe:
				if rm := h.rooms[msg.Room]; rm != nil {
					rm.Inbox() <- Leave{ClientID: msg.ClientID}
				}

			case Publish:
				// No room means no subscribers; the event is dropped and
				// clients reconcile by re-fetch.
				if rm := h.rooms[msg.Event.Room]; rm != nil {
					rm.Inbox() <- Deliver{Event: msg.Event}
				}

			case GetRoom:
				msg.Reply <- h.rooms[msg.Room] // may be nil

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, rm := range h.rooms {
		rm.Inbox() <- RoomShutdown{}
	}
	clear(h.rooms)
	h.cancel()
}
