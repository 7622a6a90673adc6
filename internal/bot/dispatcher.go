package bot

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/zhouzirui/manga-thumb/backend/internal/conversation"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/thumbnail"
	chatservice "github.com/zhouzirui/manga-thumb/backend/internal/service/chat"
	thumbnailservice "github.com/zhouzirui/manga-thumb/backend/internal/service/thumbnail"
)

const (
	// CaptionText accompanies the delivered thumbnail.
	CaptionText = "Here's your manga thumbnail!"
	// FailureText is the only detail a user sees about a failed render.
	FailureText = "Sorry, there was an error generating your thumbnail. Please try again."
)

// Sender delivers replies back through the transport a message arrived on.
type Sender interface {
	Send(ctx context.Context, reply chat.Reply) error
}

// Thumbnails renders and delivers a finished answer record.
type Thumbnails interface {
	Deliver(ctx context.Context, userKey string, answers thumbnail.Answers, deliver thumbnailservice.DeliverFunc) (thumbnailservice.Report, error)
}

// Dispatcher is the transport-independent entry point: it owns the session store,
// feeds inputs to the collector and triggers rendering on confirmation.
type Dispatcher struct {
	sessions   *chatservice.Service
	collector  *conversation.Collector
	thumbnails Thumbnails
	logger     *zap.Logger
}

// New creates a Dispatcher.
func New(sessions *chatservice.Service, collector *conversation.Collector, thumbnails Thumbnails, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sessions:   sessions,
		collector:  collector,
		thumbnails: thumbnails,
		logger:     logger.Named("dispatcher"),
	}
}

// Handle processes one input from userKey and sends every resulting reply.
func (d *Dispatcher) Handle(ctx context.Context, userKey string, in chat.Input, sender Sender) error {
	if in.Kind == chat.InputCommand {
		switch in.Command {
		case chat.CommandStart:
			return d.start(ctx, userKey, sender)
		case chat.CommandCancel:
			return d.cancel(ctx, userKey, sender)
		}
	}

	session, err := d.sessions.Get(ctx, userKey)
	if errors.Is(err, chatservice.ErrSessionNotFound) {
		return sender.Send(ctx, chat.Reply{Text: conversation.NoSessionText})
	}
	if err != nil {
		return err
	}

	out := d.collector.Handle(ctx, session, in)
	d.logger.Debug("input handled",
		zap.String("user", userKey),
		zap.String("kind", string(in.Kind)),
		zap.Stringer("from", session.State),
		zap.Stringer("to", out.Session.State),
		zap.Bool("advanced", out.Advanced))

	switch {
	case out.Discard:
		d.discard(ctx, userKey)
	case out.Render:
		d.sessions.Discard(ctx, userKey)
	default:
		if err := d.sessions.Save(ctx, out.Session); err != nil {
			return err
		}
	}

	if err := d.sendAll(ctx, sender, out.Replies); err != nil {
		if out.Render {
			// the session is already gone and Deliver will not run to remove its font
			d.collector.Release(out.Session)
		}
		return err
	}

	if out.Render {
		return d.render(ctx, userKey, out.Session.Answers, sender)
	}
	return nil
}

func (d *Dispatcher) start(ctx context.Context, userKey string, sender Sender) error {
	d.discard(ctx, userKey)

	if _, err := d.sessions.Start(ctx, userKey); err != nil {
		return err
	}
	d.logger.Info("session started", zap.String("user", userKey))
	return sender.Send(ctx, conversation.Welcome())
}

func (d *Dispatcher) cancel(ctx context.Context, userKey string, sender Sender) error {
	if d.discard(ctx, userKey) {
		d.logger.Info("session cancelled", zap.String("user", userKey))
	}
	return sender.Send(ctx, chat.Reply{Text: conversation.CancelledText, RemoveKeyboard: true})
}

// Forget drops the session of a user whose transport went away, without replying.
func (d *Dispatcher) Forget(ctx context.Context, userKey string) {
	if d.discard(ctx, userKey) {
		d.logger.Info("session dropped", zap.String("user", userKey))
	}
}

// discard drops the session and its uploaded artifacts, reporting whether one existed.
func (d *Dispatcher) discard(ctx context.Context, userKey string) bool {
	session, ok := d.sessions.Discard(ctx, userKey)
	if ok {
		d.collector.Release(session)
	}
	return ok
}

func (d *Dispatcher) render(ctx context.Context, userKey string, answers thumbnail.Answers, sender Sender) error {
	_, err := d.thumbnails.Deliver(ctx, userKey, answers, func(ctx context.Context, path string) error {
		return sender.Send(ctx, chat.Reply{ImagePath: path, Caption: CaptionText})
	})
	if err == nil {
		return nil
	}

	d.logger.Error("error generating thumbnail", zap.String("user", userKey), zap.Error(err))
	return sender.Send(ctx, chat.Reply{Text: FailureText})
}

func (d *Dispatcher) sendAll(ctx context.Context, sender Sender, replies []chat.Reply) error {
	for _, reply := range replies {
		if err := sender.Send(ctx, reply); err != nil {
			return err
		}
	}
	return nil
}
