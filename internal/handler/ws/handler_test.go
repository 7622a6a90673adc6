package ws

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/manga-thumb/backend/internal/bot"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
)

type fakeDispatcher struct {
	mu        sync.Mutex
	inputs    []chat.Input
	users     map[string]struct{}
	forgotten chan string
	image     string
}

func (f *fakeDispatcher) Handle(ctx context.Context, userKey string, in chat.Input, sender bot.Sender) error {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.users[userKey] = struct{}{}
	f.mu.Unlock()

	if in.Kind == chat.InputPhoto {
		return sender.Send(ctx, chat.Reply{ImagePath: f.image, Caption: "Here's your manga thumbnail!"})
	}
	return sender.Send(ctx, chat.Reply{Text: "Now choose a color scheme:", Options: []string{"Red", "Blue"}})
}

func (f *fakeDispatcher) Forget(_ context.Context, userKey string) {
	f.forgotten <- userKey
}

func dial(t *testing.T, dispatcher *fakeDispatcher) (*websocket.Conn, func()) {
	t.Helper()
	r := chi.NewRouter()
	New(dispatcher, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func newFakeDispatcher(t *testing.T) *fakeDispatcher {
	image := filepath.Join(t.TempDir(), "thumb.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg-bytes"), 0o600))
	return &fakeDispatcher{
		users:     map[string]struct{}{},
		forgotten: make(chan string, 1),
		image:     image,
	}
}

func TestWebSocketConversation(t *testing.T) {
	dispatcher := newFakeDispatcher(t)
	conn, closeAll := dial(t, dispatcher)
	defer closeAll()

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "command", Text: "/start"}))
	var reply outgoingMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "text", reply.Type)
	assert.Equal(t, []string{"Red", "Blue"}, reply.Options)

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "photo", Data: []byte{0xff, 0xd8}}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "photo", reply.Type)
	assert.Equal(t, "Here's your manga thumbnail!", reply.Caption)
	decoded, err := base64.StdEncoding.DecodeString(reply.Data)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), decoded)

	dispatcher.mu.Lock()
	assert.Equal(t, chat.CommandInput(chat.CommandStart), dispatcher.inputs[0])
	assert.Equal(t, []byte{0xff, 0xd8}, dispatcher.inputs[1].Data)
	assert.Len(t, dispatcher.users, 1)
	dispatcher.mu.Unlock()
}

func TestWebSocketUnsupportedFrame(t *testing.T) {
	dispatcher := newFakeDispatcher(t)
	conn, closeAll := dial(t, dispatcher)
	defer closeAll()

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "voice"}))
	var reply outgoingMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Type)
	assert.Contains(t, reply.Text, "voice")
}

func TestWebSocketCloseForgetsSession(t *testing.T) {
	dispatcher := newFakeDispatcher(t)
	conn, closeAll := dial(t, dispatcher)
	defer closeAll()

	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "text", Text: "Solo Leveling"}))
	var reply outgoingMessage
	require.NoError(t, conn.ReadJSON(&reply))
	require.NoError(t, conn.Close())

	select {
	case key := <-dispatcher.forgotten:
		assert.True(t, strings.HasPrefix(key, "ws:"))
	case <-time.After(2 * time.Second):
		t.Fatal("session was not forgotten")
	}
}

func TestConvert(t *testing.T) {
	in, err := convert(inboundMessage{Type: "document", FileName: "brush.ttf", Data: []byte("f")})
	require.NoError(t, err)
	assert.Equal(t, chat.Input{Kind: chat.InputDocument, FileName: "brush.ttf", Data: []byte("f")}, in)

	in, err = convert(inboundMessage{Type: "command", Text: "cancel"})
	require.NoError(t, err)
	assert.Equal(t, chat.CommandInput(chat.CommandCancel), in)

	_, err = convert(inboundMessage{Type: "sticker"})
	assert.Error(t, err)
}
