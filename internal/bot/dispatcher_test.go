package bot

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/manga-thumb/backend/internal/conversation"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/catalog"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
	"github.com/zhouzirui/manga-thumb/backend/internal/render"
	chatservice "github.com/zhouzirui/manga-thumb/backend/internal/service/chat"
	thumbnailservice "github.com/zhouzirui/manga-thumb/backend/internal/service/thumbnail"
	"github.com/zhouzirui/manga-thumb/backend/internal/storage/tempfs"
)

type recordingSender struct {
	replies []chat.Reply
	images  []image.Config
}

func (s *recordingSender) Send(_ context.Context, reply chat.Reply) error {
	if reply.ImagePath != "" {
		data, err := os.ReadFile(reply.ImagePath)
		if err != nil {
			return err
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return err
		}
		s.images = append(s.images, cfg)
	}
	s.replies = append(s.replies, reply)
	return nil
}

// failingSender refuses the reply whose text equals failOn.
type failingSender struct {
	recordingSender
	failOn string
}

func (s *failingSender) Send(ctx context.Context, reply chat.Reply) error {
	if reply.Text == s.failOn {
		return errors.New("chat unreachable")
	}
	return s.recordingSender.Send(ctx, reply)
}

func (s *recordingSender) last() chat.Reply {
	return s.replies[len(s.replies)-1]
}

type fixture struct {
	dispatcher *Dispatcher
	sessions   *chatservice.Service
	store      *tempfs.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := tempfs.New(t.TempDir(), nil)
	require.NoError(t, err)

	sessions := chatservice.NewService()
	collector := conversation.NewCollector(catalog.NewMemoryStore(catalog.Default()), store)
	thumbs := thumbnailservice.NewService(render.New(render.Config{}, nil), store, 90, nil)

	return fixture{
		dispatcher: New(sessions, collector, thumbs, nil),
		sessions:   sessions,
		store:      store,
	}
}

func profilePicture(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x90, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (f fixture) send(t *testing.T, sender *recordingSender, inputs ...chat.Input) {
	t.Helper()
	for _, in := range inputs {
		require.NoError(t, f.dispatcher.Handle(context.Background(), "tg:7", in, sender))
	}
}

func soloLevelingInputs(t *testing.T, confirmation string) []chat.Input {
	return []chat.Input{
		chat.CommandInput(chat.CommandStart),
		chat.TextInput("Solo Leveling"),
		{Kind: chat.InputPhoto, Data: profilePicture(t)},
		chat.TextInput("E-rank hunter Sung Jinwoo gains the power to level up."),
		chat.TextInput("95"),
		chat.TextInput("2018"),
		chat.TextInput("Chugong"),
		chat.TextInput("Style 1 - Default"),
		chat.TextInput("Red"),
		chat.TextInput("Standard"),
		chat.TextInput("demo"),
		chat.TextInput(confirmation),
	}
}

func TestHandleEndToEndDeliversThumbnail(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}

	f.send(t, sender, soloLevelingInputs(t, "yes")...)

	require.Len(t, sender.images, 1)
	assert.Equal(t, 800, sender.images[0].Width)
	assert.Equal(t, 1000, sender.images[0].Height)
	assert.Equal(t, CaptionText, sender.last().Caption)
	assert.Equal(t, 0, f.sessions.Len())

	left, err := os.ReadDir(f.store.Dir())
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestHandleDeclinedConfirmationDiscards(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}

	f.send(t, sender, soloLevelingInputs(t, "nope")...)

	assert.Empty(t, sender.images)
	assert.Equal(t, conversation.CancelledText, sender.last().Text)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestHandleCancelMidConversation(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}

	inputs := soloLevelingInputs(t, "yes")
	f.send(t, sender, inputs[:5]...)
	f.send(t, sender, chat.CommandInput(chat.CommandCancel))

	assert.Equal(t, conversation.CancelledText, sender.last().Text)
	assert.Equal(t, 0, f.sessions.Len())

	// the rest of the answers now arrive without a session
	f.send(t, sender, inputs[5:]...)
	assert.Empty(t, sender.images)
	assert.Equal(t, conversation.NoSessionText, sender.last().Text)
}

func TestHandleWithoutSessionHintsStart(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}

	f.send(t, sender, chat.TextInput("hello"))

	require.Len(t, sender.replies, 1)
	assert.Equal(t, conversation.NoSessionText, sender.replies[0].Text)
}

func TestHandleInvalidPercentageKeepsSession(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}

	inputs := soloLevelingInputs(t, "yes")
	f.send(t, sender, inputs[:4]...)
	f.send(t, sender, chat.TextInput("150"))

	session, err := f.sessions.Get(context.Background(), "tg:7")
	require.NoError(t, err)
	assert.Equal(t, chat.StatePercentage, session.State)
	assert.Equal(t, "Please enter a valid percentage between 0 and 100:", sender.last().Text)
}

func TestHandleRenderFailureReportsGenericError(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}

	inputs := soloLevelingInputs(t, "YES")
	inputs[2] = chat.Input{Kind: chat.InputPhoto, Data: []byte("corrupt")}
	f.send(t, sender, inputs...)

	assert.Empty(t, sender.images)
	assert.Equal(t, FailureText, sender.last().Text)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestHandleRestartReleasesUploadedFont(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}

	inputs := soloLevelingInputs(t, "yes")
	f.send(t, sender, inputs[:9]...)
	f.send(t, sender,
		chat.TextInput("Custom"),
		chat.Input{Kind: chat.InputDocument, FileName: "brush.ttf", Data: []byte("font")},
	)

	files, err := os.ReadDir(f.store.Dir())
	require.NoError(t, err)
	require.Len(t, files, 1)

	f.send(t, sender, chat.CommandInput(chat.CommandStart))

	files, err = os.ReadDir(f.store.Dir())
	require.NoError(t, err)
	assert.Empty(t, files)

	session, err := f.sessions.Get(context.Background(), "tg:7")
	require.NoError(t, err)
	assert.Equal(t, chat.StateName, session.State)
}

func TestForgetDropsSession(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}

	f.send(t, sender, chat.CommandInput(chat.CommandStart))
	require.Equal(t, 1, f.sessions.Len())

	f.dispatcher.Forget(context.Background(), "tg:7")
	assert.Equal(t, 0, f.sessions.Len())
	assert.Len(t, sender.replies, 1)
}

func TestHandleUnsupportedInputReprompts(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}

	f.send(t, sender, chat.CommandInput(chat.CommandStart), chat.Input{Kind: chat.InputOther})

	session, err := f.sessions.Get(context.Background(), "tg:7")
	require.NoError(t, err)
	assert.Equal(t, chat.StateName, session.State)
	assert.Len(t, sender.replies, 2)
}

func TestHandleFailedGeneratingReplyReleasesFont(t *testing.T) {
	f := newFixture(t)
	sender := &failingSender{failOn: conversation.GeneratingText}

	inputs := soloLevelingInputs(t, "yes")
	for _, in := range inputs[:9] {
		require.NoError(t, f.dispatcher.Handle(context.Background(), "tg:7", in, sender))
	}
	for _, in := range []chat.Input{
		chat.TextInput("Custom"),
		{Kind: chat.InputDocument, FileName: "brush.ttf", Data: []byte("font")},
		chat.TextInput("demo"),
	} {
		require.NoError(t, f.dispatcher.Handle(context.Background(), "tg:7", in, sender))
	}

	files, err := os.ReadDir(f.store.Dir())
	require.NoError(t, err)
	require.Len(t, files, 1)

	err = f.dispatcher.Handle(context.Background(), "tg:7", chat.TextInput("yes"), sender)
	require.Error(t, err)

	files, err = os.ReadDir(f.store.Dir())
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, sender.images)
	assert.Equal(t, 0, f.sessions.Len())
}
