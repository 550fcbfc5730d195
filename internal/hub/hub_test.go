package hub

import (
	"context"
	"testing"
	"time"
)

// helper: receive one event with a timeout so tests never hang
func recvEvent(t *testing.T, ch <-chan Event, within time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(within):
		t.Fatalf("timed out waiting for event")
		return Event{} // unreachable
	}
}

func recvNoEvent(t *testing.T, ch <-chan Event, within time.Duration) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("expected no event within %v, but got: %+v", within, ev)
	case <-time.After(within):
		// good: no event
	}
}

func roomStats(t *testing.T, h *Hub, room string) RoomView {
	t.Helper()
	reply := make(chan *Room, 1)
	h.Inbox() <- GetRoom{Room: room, Reply: reply}
	rm := <-reply
	if rm == nil {
		t.Fatalf("room %s does not exist", room)
	}
	statsReply := make(chan RoomView, 1)
	rm.Inbox() <- RoomStats{Reply: statsReply}
	select {
	case v := <-statsReply:
		return v
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timed out waiting for room stats")
		return RoomView{} // unreachable
	}
}

func TestHub_PublishReachesSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx)
	out := make(chan Event, 4)
	h.Inbox() <- Subscribe{Room: RoundRoom("r1"), ClientID: "c1", Outbox: out}

	h.Publish(RoundRoom("r1"), EventGroupFormed, map[string]string{"group_id": "g1"})

	ev := recvEvent(t, out, 100*time.Millisecond)
	if ev.Name != EventGroupFormed {
		t.Fatalf("want %s, got %s", EventGroupFormed, ev.Name)
	}
	if ev.Payload["group_id"] != "g1" {
		t.Fatalf("want payload group_id=g1, got %+v", ev.Payload)
	}
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx)
	out := make(chan Event, 4)
	h.Inbox() <- Subscribe{Room: PanelRoom("p1"), ClientID: "c1", Outbox: out}

	h.Publish(PanelRoom("p2"), EventGroupAssigned, nil)
	recvNoEvent(t, out, 50*time.Millisecond)

	h.Publish(PanelRoom("p1"), EventGroupAssigned, nil)
	ev := recvEvent(t, out, 100*time.Millisecond)
	if ev.Room != PanelRoom("p1") {
		t.Fatalf("want room %s, got %s", PanelRoom("p1"), ev.Room)
	}
}

func TestHub_DeliveryKeepsPublishOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx)
	out := make(chan Event, 8)
	h.Inbox() <- Subscribe{Room: RoomAdmin, ClientID: "c1", Outbox: out}

	names := []string{EventPanelCreated, EventJudgeLoggedIn, EventEvaluationSubmitted}
	for _, n := range names {
		h.Publish(RoomAdmin, n, nil)
	}
	for _, want := range names {
		ev := recvEvent(t, out, 100*time.Millisecond)
		if ev.Name != want {
			t.Fatalf("want %s, got %s", want, ev.Name)
		}
	}
}

func TestRoom_DropsSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx)
	out := make(chan Event) // unbuffered and never read: always "slow"
	h.Inbox() <- Subscribe{Room: RoomAdmin, ClientID: "slow", Outbox: out}

	h.Publish(RoomAdmin, EventAdminRequest, nil)

	// give the room loop a moment to process the delivery
	time.Sleep(20 * time.Millisecond)
	if v := roomStats(t, h, RoomAdmin); v.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", v.NumClients)
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx)
	out := make(chan Event, 4)
	h.Inbox() <- Subscribe{Room: SubEventRoom("se1"), ClientID: "c1", Outbox: out}
	h.Publish(SubEventRoom("se1"), EventRoundStarted, nil)
	recvEvent(t, out, 100*time.Millisecond)

	h.Inbox() <- Unsubscribe{Room: SubEventRoom("se1"), ClientID: "c1"}
	h.Publish(SubEventRoom("se1"), EventRoundEnded, nil)
	recvNoEvent(t, out, 50*time.Millisecond)
}
