package hub

import "context"

type RoomMsg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan Event // where this client wants to receive events
}

type Leave struct{ ClientID string }

type Deliver struct{ Event Event }

type RoomStats struct {
	Reply chan RoomView
}

type RoomShutdown struct{}

func (Join) isRoomMsg()         {}
func (Leave) isRoomMsg()        {}
func (Deliver) isRoomMsg()      {}
func (RoomStats) isRoomMsg()    {}
func (RoomShutdown) isRoomMsg() {}

type RoomView struct {
	Name       string
	NumClients int
}

// Room fans events out to its subscribers. A single goroutine owns the
// client map, so deliveries within one room keep publish order.
type Room struct {
	name    string
	inbox   chan RoomMsg
	clients map[string]chan Event
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewRoom(parent context.Context, name string) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		name:    name,
		inbox:   make(chan RoomMsg, 64),
		clients: make(map[string]chan Event),
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- RoomMsg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = msg.Outbox

			case Leave:
				delete(r.clients, msg.ClientID)

			case Deliver:
				r.broadcast(msg.Event)

			case RoomStats:
				msg.Reply <- RoomView{Name: r.name, NumClients: len(r.clients)}

			case RoomShutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	clear(r.clients)
	r.cancel()
}

func (r *Room) broadcast(ev Event) {
	for id, ch := range r.clients {
		select {
		case ch <- ev:
			// ok
		default:
			// Client is slow/full - drop them. A client may sit in several
			// rooms on one outbox, so the channel is never closed here; the
			// ws layer owns its lifetime.
			delete(r.clients, id)
		}
	}
}
