package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := ViewEvent{ID: "evt-1", Section: SectionOverview}
	if err := hook.ViewUpdated(context.Background(), event); err != nil {
		t.Fatalf("ViewUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.Section != event.Section {
			t.Fatalf("expected section %s, got %s", event.Section, e.Section)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookReplaysLastEvent(t *testing.T) {
	hook := NewBroadcastHook()
	_ = hook.ViewUpdated(context.Background(), ViewEvent{ID: "old", Generation: 1})
	_ = hook.ViewUpdated(context.Background(), ViewEvent{ID: "new", Generation: 2})

	ch, cancel := hook.Subscribe()
	defer cancel()
	require.Len(t, ch, 1)
	assert.Equal(t, "new", (<-ch).ID)
}

func TestBroadcastHookDropsWhenSubscriberIsFull(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	for i := 0; i < 20; i++ {
		if err := hook.ViewUpdated(context.Background(), ViewEvent{Reason: "refresh"}); err != nil {
			t.Fatalf("ViewUpdated returned error: %v", err)
		}
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected buffered channel to be full, got %d", len(ch))
	}
	cancel()
	cancel()
	assert.Equal(t, 0, hook.Subscribers())
}

func TestBroadcastHookClose(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	hook.Close()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.NoError(t, hook.ViewUpdated(context.Background(), ViewEvent{ID: "late"}))

	late, _ := hook.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hook.ViewUpdated(context.Background(), ViewEvent{ID: "evt-ws", Reason: "refresh"}))

	var got ViewEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "evt-ws", got.ID)
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()
	_ = hook.ViewUpdated(context.Background(), ViewEvent{ID: "evt-sse", Reason: "navigate", Section: SectionModels})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		hook.ServeSSE(rec, req)
		close(done)
	}()
	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "id: evt-sse\n")
	assert.Contains(t, body, "event: navigate\n")
	assert.Contains(t, body, `"section":"models"`)
}

type stubNotificationsClient struct {
	channels []string
	events   []ViewEvent
}

func (s *stubNotificationsClient) PublishDashboardEvent(_ context.Context, channel string, event ViewEvent) error {
	s.channels = append(s.channels, channel)
	s.events = append(s.events, event)
	return nil
}

func TestRefreshHooksFanOut(t *testing.T) {
	client := &stubNotificationsClient{}
	broadcast := NewBroadcastHook()
	ch, cancel := broadcast.Subscribe()
	defer cancel()

	hooks := RefreshHooks{broadcast, &NotificationsHook{Client: client}, nil}
	if err := hooks.ViewUpdated(context.Background(), ViewEvent{ID: "evt-2", Reason: "refresh"}); err != nil {
		t.Fatalf("ViewUpdated returned error: %v", err)
	}
	if len(client.events) != 1 || client.events[0].ID != "evt-2" {
		t.Fatalf("expected notifications client to receive event, got %+v", client.events)
	}
	assert.Equal(t, []string{"dashboard"}, client.channels)
	if len(ch) != 1 {
		t.Fatalf("expected broadcast subscriber to receive event")
	}
	var empty *NotificationsHook
	if err := empty.ViewUpdated(context.Background(), ViewEvent{}); err != nil {
		t.Fatalf("nil hook should be a no-op, got %v", err)
	}
}

func TestNotificationsHookFilters(t *testing.T) {
	client := &stubNotificationsClient{}
	hook := &NotificationsHook{Client: client, Channel: "ops"}
	ctx := context.Background()

	_ = hook.ViewUpdated(ctx, ViewEvent{ID: "tick", Reason: reasonLiveTick})
	_ = hook.ViewUpdated(ctx, ViewEvent{ID: "nav", Reason: "navigate"})
	require.Len(t, client.events, 1)
	assert.Equal(t, "nav", client.events[0].ID)
	assert.Equal(t, "ops", client.channels[0])

	client.events = nil
	hook.FailuresOnly = true
	_ = hook.ViewUpdated(ctx, ViewEvent{ID: "ok", Reason: "refresh"})
	_ = hook.ViewUpdated(ctx, ViewEvent{ID: "bad", Reason: "refresh", Error: "backend down"})
	require.Len(t, client.events, 1)
	assert.Equal(t, "bad", client.events[0].ID)

	client.events = nil
	hook.FailuresOnly = false
	hook.Reasons = []string{"sort"}
	_ = hook.ViewUpdated(ctx, ViewEvent{ID: "nav", Reason: "navigate"})
	_ = hook.ViewUpdated(ctx, ViewEvent{ID: "sorted", Reason: "sort"})
	require.Len(t, client.events, 1)
	assert.Equal(t, "sorted", client.events[0].ID)
}
