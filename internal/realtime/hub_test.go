package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"social-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStore struct {
	created []*models.Message
	err     error
}

func (f *fakeStore) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	msg.ID = primitive.NewObjectID()
	f.created = append(f.created, msg)
	return msg, nil
}

type fakeRooms struct {
	room *models.ChatRoom
	err  error
}

func (f *fakeRooms) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ChatRoom, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.room, nil
}

type fakeNotifier struct {
	recipients []primitive.ObjectID
	err        error
}

func (f *fakeNotifier) NotifyMessage(ctx context.Context, recipient primitive.ObjectID, msg *models.Message) error {
	f.recipients = append(f.recipients, recipient)
	return f.err
}

type fakeStatus struct {
	online  []string
	offline []string
}

func (f *fakeStatus) SetUserOnline(ctx context.Context, userID string) error {
	f.online = append(f.online, userID)
	return nil
}

func (f *fakeStatus) SetUserOffline(ctx context.Context, userID string) error {
	f.offline = append(f.offline, userID)
	return nil
}

func newTestHub(store *fakeStore, rooms *fakeRooms, notifier *fakeNotifier, status *fakeStatus) *Hub {
	var tracker StatusTracker
	if status != nil {
		tracker = status
	}
	return NewHub(NewDirectory(), store, rooms, notifier, tracker)
}

// drainEvents decodes everything queued on the client's send channel
func drainEvents(t *testing.T, c *Client) []Event {
	t.Helper()

	var events []Event
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return events
			}
			var e Event
			if err := json.Unmarshal(raw, &e); err != nil {
				t.Fatalf("failed to decode queued event: %v", err)
			}
			events = append(events, e)
		default:
			return events
		}
	}
}

func register(hub *Hub, userID string) *Client {
	c := NewClient(hub, nil)
	raw, _ := json.Marshal(RegisterData{UserID: userID})
	hub.HandleEvent(c, &Event{Type: EventRegister, Data: raw})
	return c
}

func sendMessage(hub *Hub, c *Client, data SendMessageData) {
	raw, _ := json.Marshal(data)
	hub.HandleEvent(c, &Event{Type: EventSendMessage, Data: raw})
}

func TestHubRegister(t *testing.T) {
	status := &fakeStatus{}
	hub := newTestHub(&fakeStore{}, &fakeRooms{}, &fakeNotifier{}, status)

	c := register(hub, "507f1f77bcf86cd799439011")

	if c.UserID() != "507f1f77bcf86cd799439011" {
		t.Errorf("expected userID bound to client, got %q", c.UserID())
	}
	if got := len(hub.Directory().ConnectionsFor("507f1f77bcf86cd799439011")); got != 1 {
		t.Errorf("expected client in directory, got %d connections", got)
	}
	if len(status.online) != 1 {
		t.Errorf("expected one online transition, got %d", len(status.online))
	}
}

func TestHubRegisterInvalidPayload(t *testing.T) {
	hub := newTestHub(&fakeStore{}, &fakeRooms{}, &fakeNotifier{}, nil)
	c := NewClient(hub, nil)

	hub.HandleEvent(c, &Event{Type: EventRegister, Data: json.RawMessage(`{}`)})

	events := drainEvents(t, c)
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected one error event, got %v", events)
	}

	var errData ErrorData
	json.Unmarshal(events[0].Data, &errData)
	if errData.Code != ErrCodeInvalidPayload {
		t.Errorf("expected %s, got %s", ErrCodeInvalidPayload, errData.Code)
	}
}

func TestHubDirectMessageDelivery(t *testing.T) {
	sender := primitive.NewObjectID()
	receiver := primitive.NewObjectID()

	store := &fakeStore{}
	notifier := &fakeNotifier{}
	hub := newTestHub(store, &fakeRooms{}, notifier, nil)

	senderConn := register(hub, sender.Hex())
	// Two devices for the receiver; both must get the push
	recvConn1 := register(hub, receiver.Hex())
	recvConn2 := register(hub, receiver.Hex())

	sendMessage(hub, senderConn, SendMessageData{
		Sender:   sender.Hex(),
		Receiver: receiver.Hex(),
		Content:  "hello",
	})

	if len(store.created) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(store.created))
	}

	for i, conn := range []*Client{recvConn1, recvConn2} {
		events := drainEvents(t, conn)
		if len(events) != 1 || events[0].Type != EventReceiveMessage {
			t.Errorf("receiver connection %d: expected one receiveMessage, got %v", i, events)
		}
	}

	// The sender gets no echo and no error
	if events := drainEvents(t, senderConn); len(events) != 0 {
		t.Errorf("sender should receive nothing, got %v", events)
	}

	if len(notifier.recipients) != 1 || notifier.recipients[0] != receiver {
		t.Errorf("expected one notification for the receiver, got %v", notifier.recipients)
	}
}

func TestHubOfflineRecipient(t *testing.T) {
	sender := primitive.NewObjectID()
	receiver := primitive.NewObjectID()

	store := &fakeStore{}
	notifier := &fakeNotifier{}
	hub := newTestHub(store, &fakeRooms{}, notifier, nil)

	senderConn := register(hub, sender.Hex())

	sendMessage(hub, senderConn, SendMessageData{
		Sender:   sender.Hex(),
		Receiver: receiver.Hex(),
		Content:  "are you there",
	})

	// Persisted for later retrieval, no error to the sender
	if len(store.created) != 1 {
		t.Fatalf("expected message persisted despite offline receiver, got %d", len(store.created))
	}
	if events := drainEvents(t, senderConn); len(events) != 0 {
		t.Errorf("offline recipient is not an error, got %v", events)
	}
	if len(notifier.recipients) != 1 {
		t.Errorf("offline recipient still gets a notification, got %d", len(notifier.recipients))
	}
}

func TestHubPersistFailure(t *testing.T) {
	sender := primitive.NewObjectID()
	receiver := primitive.NewObjectID()

	store := &fakeStore{err: errors.New("datastore down")}
	notifier := &fakeNotifier{}
	hub := newTestHub(store, &fakeRooms{}, notifier, nil)

	senderConn := register(hub, sender.Hex())
	recvConn := register(hub, receiver.Hex())

	sendMessage(hub, senderConn, SendMessageData{
		Sender:   sender.Hex(),
		Receiver: receiver.Hex(),
		Content:  "doomed",
	})

	// Error goes to the sender only
	events := drainEvents(t, senderConn)
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected one error event for the sender, got %v", events)
	}
	var errData ErrorData
	json.Unmarshal(events[0].Data, &errData)
	if errData.Code != ErrCodeDeliveryFailure {
		t.Errorf("expected %s, got %s", ErrCodeDeliveryFailure, errData.Code)
	}

	if events := drainEvents(t, recvConn); len(events) != 0 {
		t.Errorf("receiver must not see an unpersisted message, got %v", events)
	}
	if len(notifier.recipients) != 0 {
		t.Errorf("no notification without persistence, got %d", len(notifier.recipients))
	}
}

func TestHubRoomFanOut(t *testing.T) {
	sender := primitive.NewObjectID()
	memberB := primitive.NewObjectID()
	memberC := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	rooms := &fakeRooms{room: &models.ChatRoom{
		ID: roomID,
		Participants: []models.Participant{
			{UserID: sender},
			{UserID: memberB},
			{UserID: memberC},
		},
	}}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	hub := newTestHub(store, rooms, notifier, nil)

	senderConn := register(hub, sender.Hex())
	bConn := register(hub, memberB.Hex())
	cConn := register(hub, memberC.Hex())

	sendMessage(hub, senderConn, SendMessageData{
		Sender:  sender.Hex(),
		Room:    roomID.Hex(),
		Content: "hi all",
	})

	for name, conn := range map[string]*Client{"b": bConn, "c": cConn} {
		events := drainEvents(t, conn)
		if len(events) != 1 || events[0].Type != EventReceiveMessage {
			t.Errorf("participant %s: expected one receiveMessage, got %v", name, events)
		}
	}

	// Every participant except the sender is a recipient
	if events := drainEvents(t, senderConn); len(events) != 0 {
		t.Errorf("sender should not receive their own room message, got %v", events)
	}
	if len(notifier.recipients) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(notifier.recipients))
	}
}

func TestHubOrderPreservedPerSender(t *testing.T) {
	sender := primitive.NewObjectID()
	receiver := primitive.NewObjectID()

	store := &fakeStore{}
	hub := newTestHub(store, &fakeRooms{}, &fakeNotifier{}, nil)

	senderConn := register(hub, sender.Hex())
	recvConn := register(hub, receiver.Hex())

	for _, content := range []string{"a", "b", "c"} {
		sendMessage(hub, senderConn, SendMessageData{
			Sender:   sender.Hex(),
			Receiver: receiver.Hex(),
			Content:  content,
		})
	}

	events := drainEvents(t, recvConn)
	if len(events) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(events))
	}
	for i, want := range []string{"a", "b", "c"} {
		var msg models.Message
		if err := json.Unmarshal(events[i].Data, &msg); err != nil {
			t.Fatalf("failed to decode delivery %d: %v", i, err)
		}
		if msg.Content != want {
			t.Errorf("delivery %d: expected %q, got %q", i, want, msg.Content)
		}
	}
}

func TestHubNotifierFailureDoesNotBlockDelivery(t *testing.T) {
	sender := primitive.NewObjectID()
	receiver := primitive.NewObjectID()

	store := &fakeStore{}
	notifier := &fakeNotifier{err: errors.New("notification store down")}
	hub := newTestHub(store, &fakeRooms{}, notifier, nil)

	senderConn := register(hub, sender.Hex())
	recvConn := register(hub, receiver.Hex())

	sendMessage(hub, senderConn, SendMessageData{
		Sender:   sender.Hex(),
		Receiver: receiver.Hex(),
		Content:  "still delivered",
	})

	if events := drainEvents(t, recvConn); len(events) != 1 {
		t.Errorf("delivery must survive notifier failure, got %v", events)
	}
	if events := drainEvents(t, senderConn); len(events) != 0 {
		t.Errorf("notifier failure is invisible to the sender, got %v", events)
	}
}

func TestHubSendMessageValidation(t *testing.T) {
	hub := newTestHub(&fakeStore{}, &fakeRooms{}, &fakeNotifier{}, nil)
	sender := primitive.NewObjectID()
	senderConn := register(hub, sender.Hex())

	cases := []struct {
		name string
		data SendMessageData
	}{
		{"MissingTarget", SendMessageData{Sender: sender.Hex(), Content: "x"}},
		{"BothTargets", SendMessageData{Sender: sender.Hex(), Receiver: primitive.NewObjectID().Hex(), Room: primitive.NewObjectID().Hex(), Content: "x"}},
		{"MissingContent", SendMessageData{Sender: sender.Hex(), Receiver: primitive.NewObjectID().Hex()}},
		{"MissingSender", SendMessageData{Receiver: primitive.NewObjectID().Hex(), Content: "x"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sendMessage(hub, senderConn, tc.data)

			events := drainEvents(t, senderConn)
			if len(events) != 1 || events[0].Type != EventError {
				t.Fatalf("expected one error event, got %v", events)
			}
			var errData ErrorData
			json.Unmarshal(events[0].Data, &errData)
			if errData.Code != ErrCodeInvalidPayload {
				t.Errorf("expected %s, got %s", ErrCodeInvalidPayload, errData.Code)
			}
		})
	}
}

func TestHubDisconnect(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	status := &fakeStatus{}
	hub := newTestHub(&fakeStore{}, &fakeRooms{}, &fakeNotifier{}, status)

	c1 := register(hub, userID)
	c2 := register(hub, userID)

	hub.HandleDisconnect(c1)
	if len(status.offline) != 0 {
		t.Errorf("user with a remaining connection must not go offline, got %v", status.offline)
	}

	hub.HandleDisconnect(c2)
	if len(status.offline) != 1 || status.offline[0] != userID {
		t.Errorf("expected offline transition after last disconnect, got %v", status.offline)
	}

	t.Run("UnregisteredConnection", func(t *testing.T) {
		// Disconnecting a never-registered connection is a no-op
		hub.HandleDisconnect(NewClient(hub, nil))
		if len(status.offline) != 1 {
			t.Errorf("no extra offline transitions expected, got %d", len(status.offline))
		}
	})
}

func TestHubUnknownEvent(t *testing.T) {
	hub := newTestHub(&fakeStore{}, &fakeRooms{}, &fakeNotifier{}, nil)
	c := NewClient(hub, nil)

	hub.HandleEvent(c, &Event{Type: "typing"})

	events := drainEvents(t, c)
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected one error event, got %v", events)
	}

	var errData ErrorData
	json.Unmarshal(events[0].Data, &errData)
	if errData.Code != ErrCodeInvalidEvent {
		t.Errorf("expected %s, got %s", ErrCodeInvalidEvent, errData.Code)
	}
}

func TestSendEventBufferOverflow(t *testing.T) {
	hub := newTestHub(&fakeStore{}, &fakeRooms{}, &fakeNotifier{}, nil)
	c := NewClient(hub, nil)

	// Fill the send buffer without a consumer
	for i := 0; i < 256; i++ {
		if err := c.SendEvent(EventReceiveMessage, map[string]string{"n": "x"}); err != nil {
			t.Fatalf("send %d should fit in the buffer: %v", i, err)
		}
	}

	if err := c.SendEvent(EventReceiveMessage, map[string]string{"n": "overflow"}); !errors.Is(err, ErrClientDisconnected) {
		t.Errorf("expected ErrClientDisconnected on overflow, got %v", err)
	}
	if !c.isClosed() {
		t.Error("client should be closed after buffer overflow")
	}
}

// A push racing a disconnect must never panic the relay: stale handles are
// dropped silently, whatever the interleaving.
func TestSendEventConcurrentWithDisconnect(t *testing.T) {
	hub := newTestHub(&fakeStore{}, &fakeRooms{}, &fakeNotifier{}, nil)

	for i := 0; i < 200; i++ {
		c := register(hub, primitive.NewObjectID().Hex())

		var wg sync.WaitGroup
		for s := 0; s < 4; s++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 16; j++ {
					err := c.SendEvent(EventReceiveMessage, map[string]string{"n": "x"})
					if err != nil && !errors.Is(err, ErrClientDisconnected) {
						t.Errorf("unexpected send error: %v", err)
					}
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.HandleDisconnect(c)
		}()
		wg.Wait()

		if got := len(hub.Directory().ConnectionsFor(c.UserID())); got != 0 {
			t.Fatalf("iteration %d: expected empty presence set after disconnect, got %d", i, got)
		}
	}
}
