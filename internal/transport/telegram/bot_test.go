package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zhouzirui/manga-thumb/backend/internal/bot"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	fileURL  string
	updates  chan tgbotapi.Update
	stopped  bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return f.fileURL + "/" + fileID, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) HandleUpdate(r *http.Request) (*tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return nil, err
	}
	return &update, nil
}

type handled struct {
	userKey string
	in      chat.Input
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []handled
	done  chan struct{}
}

func (f *fakeDispatcher) Handle(ctx context.Context, userKey string, in chat.Input, sender bot.Sender) error {
	f.mu.Lock()
	f.calls = append(f.calls, handled{userKey: userKey, in: in})
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return sender.Send(ctx, chat.Reply{Text: "ok"})
}

func commandMessage(command string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 42},
		Chat:     &tgbotapi.Chat{ID: 99},
		Text:     "/" + command,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}},
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		msg  *tgbotapi.Message
		want chat.Input
	}{
		{name: "command", msg: commandMessage("start"), want: chat.CommandInput(chat.CommandStart)},
		{name: "text", msg: &tgbotapi.Message{Text: "Solo Leveling"}, want: chat.TextInput("Solo Leveling")},
		{
			name: "photo",
			msg:  &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}},
			want: chat.Input{Kind: chat.InputPhoto},
		},
		{
			name: "document",
			msg:  &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", FileName: "brush.otf"}},
			want: chat.Input{Kind: chat.InputDocument, FileName: "brush.otf"},
		},
		{name: "sticker", msg: &tgbotapi.Message{Sticker: &tgbotapi.Sticker{FileID: "s"}}, want: chat.Input{Kind: chat.InputOther}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.msg))
		})
	}
}

func TestFileIDPrefersLargestPhoto(t *testing.T) {
	msg := &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}}
	assert.Equal(t, "large", fileID(msg))
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "tg:42", UserKey(commandMessage("start")))
	assert.Equal(t, "tg:-100", UserKey(&tgbotapi.Message{Chat: &tgbotapi.Chat{ID: -100}}))
}

func TestRunPollingHandlesUpdatesInOrder(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bytes-of-" + r.URL.Path[1:]))
	}))
	defer files.Close()

	api := &fakeAPI{fileURL: files.URL, updates: make(chan tgbotapi.Update, 3)}
	dispatcher := &fakeDispatcher{}
	b := New(api, dispatcher, NewDownloader(files.Client()), Options{}, nil)

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: commandMessage("start")}
	api.updates <- tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{
		From:  &tgbotapi.User{ID: 42},
		Chat:  &tgbotapi.Chat{ID: 99},
		Photo: []tgbotapi.PhotoSize{{FileID: "thumb"}, {FileID: "full"}},
	}}
	api.updates <- tgbotapi.Update{UpdateID: 3}
	close(api.updates)

	require.NoError(t, b.Run(context.Background()))

	require.Len(t, dispatcher.calls, 2)
	assert.Equal(t, "tg:42", dispatcher.calls[0].userKey)
	assert.Equal(t, chat.InputCommand, dispatcher.calls[0].in.Kind)
	assert.Equal(t, chat.InputPhoto, dispatcher.calls[1].in.Kind)
	assert.Equal(t, []byte("bytes-of-full"), dispatcher.calls[1].in.Data)

	assert.True(t, api.stopped)
	require.Len(t, api.requests, 1)
	assert.IsType(t, tgbotapi.DeleteWebhookConfig{}, api.requests[0])
	assert.Len(t, api.sent, 2)
}

func TestDownloadFailureRepliesWithoutDispatch(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer files.Close()

	api := &fakeAPI{fileURL: files.URL, updates: make(chan tgbotapi.Update, 1)}
	dispatcher := &fakeDispatcher{}
	b := New(api, dispatcher, NewDownloader(files.Client()), Options{}, nil)

	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 1},
		Chat:     &tgbotapi.Chat{ID: 1},
		Document: &tgbotapi.Document{FileID: "missing", FileName: "a.ttf"},
	}}
	close(api.updates)

	require.NoError(t, b.Run(context.Background()))

	assert.Empty(t, dispatcher.calls)
	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, downloadFailedText, msg.Text)
}

func TestWebhookFeedsRunLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{}
	dispatcher := &fakeDispatcher{done: make(chan struct{}, 1)}
	b := New(api, dispatcher, nil, Options{WebhookURL: "https://bot.example.com", WebhookPath: "/telegram/token"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- b.Run(ctx) }()

	body, err := json.Marshal(tgbotapi.Update{UpdateID: 5, Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 7},
		Chat: &tgbotapi.Chat{ID: 7},
		Text: "Solo Leveling",
	}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/token", bytes.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-dispatcher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("update was not dispatched")
	}

	cancel()
	require.NoError(t, <-errc)

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, chat.TextInput("Solo Leveling"), dispatcher.calls[0].in)

	api.mu.Lock()
	defer api.mu.Unlock()
	require.NotEmpty(t, api.requests)
	wh, ok := api.requests[0].(tgbotapi.WebhookConfig)
	require.True(t, ok)
	assert.Equal(t, "https://bot.example.com/telegram/token", wh.URL.String())
}

func TestServeHTTPRejectsGarbage(t *testing.T) {
	b := New(&fakeAPI{}, &fakeDispatcher{}, nil, Options{WebhookURL: "https://x"}, nil)

	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/token", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeHTTPAfterRunStopped(t *testing.T) {
	b := New(&fakeAPI{}, &fakeDispatcher{}, nil, Options{WebhookURL: "https://bot.example.com", WebhookPath: "/telegram/token"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, b.Run(ctx))

	body, err := json.Marshal(tgbotapi.Update{UpdateID: 9, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "hi"}})
	require.NoError(t, err)

	served := make(chan int, 1)
	go func() {
		rec := httptest.NewRecorder()
		b.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/token", bytes.NewReader(body)))
		served <- rec.Code
	}()

	select {
	case code := <-served:
		assert.Equal(t, http.StatusServiceUnavailable, code)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook request blocked after the bot stopped")
	}
}
