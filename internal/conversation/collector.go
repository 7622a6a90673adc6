package conversation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/zhouzirui/manga-thumb/backend/internal/model/catalog"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
)

// FontStore 保存用户上传的自定义字体文件。
type FontStore interface {
	Save(prefix, ext string, data []byte) (string, error)
	Remove(path string)
}

// Outcome 描述一次输入处理的结果。
type Outcome struct {
	Session chat.Session
	Replies []chat.Reply
	// Advanced is false when the input was rejected and the same question re-asked.
	Advanced bool
	// Render asks the caller to render Session.Answers and then discard the session.
	Render bool
	// Discard asks the caller to drop the session without rendering.
	Discard bool
}

// Collector drives the questionnaire. It holds no per-user state; sessions are passed in.
type Collector struct {
	catalog     catalog.Store
	fonts       FontStore
	randomColor func() string
}

// Option customises a Collector.
type Option func(*Collector)

// WithRandomColor overrides the generator used for the "Random" color choice.
func WithRandomColor(fn func() string) Option {
	return func(c *Collector) {
		if fn != nil {
			c.randomColor = fn
		}
	}
}

// NewCollector creates a Collector over the given option catalog.
func NewCollector(store catalog.Store, fonts FontStore, opts ...Option) *Collector {
	c := &Collector{
		catalog:     store,
		fonts:       fonts,
		randomColor: RandomColor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RandomColor returns a uniformly random 24-bit color as "#rrggbb".
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}

// Handle applies one user input to the session according to the transition table.
func (c *Collector) Handle(_ context.Context, session chat.Session, in chat.Input) Outcome {
	if in.Kind == chat.InputCommand && in.Command == chat.CommandCancel {
		session.State = chat.StateDone
		return Outcome{
			Session: session,
			Replies: []chat.Reply{{Text: CancelledText, RemoveKeyboard: true}},
			Discard: true,
		}
	}

	if session.State.Terminal() {
		return Outcome{Session: session, Replies: []chat.Reply{{Text: NoSessionText}}}
	}

	fn, ok := transitions[transitionKey{state: session.State, kind: in.Kind}]
	if !ok {
		return c.reject(session, mismatchHint(session.State))
	}

	res := fn(c, &session, in)
	if res.reject != "" {
		return c.reject(session, res.reject)
	}

	session.State = res.next
	out := Outcome{
		Session:  session,
		Advanced: true,
		Render:   res.render,
		Discard:  res.discard,
	}
	switch {
	case res.reply != nil:
		out.Replies = append(out.Replies, *res.reply)
	case !session.State.Terminal():
		out.Replies = append(out.Replies, c.Prompt(session.State, session.Answers))
	}
	return out
}

// Release deletes artifacts owned by a session that is being dropped.
func (c *Collector) Release(session chat.Session) {
	if c.fonts != nil && session.Answers.CustomFontPath != "" {
		c.fonts.Remove(session.Answers.CustomFontPath)
	}
}

// reject re-asks the current question, prefixed by a hint about what went wrong.
func (c *Collector) reject(session chat.Session, hint string) Outcome {
	prompt := c.Prompt(session.State, session.Answers)
	prompt.Text = hint
	return Outcome{Session: session, Replies: []chat.Reply{prompt}}
}

func mismatchHint(state chat.State) string {
	switch state {
	case chat.StateImage:
		return invalidImageText
	case chat.StateCustomFont:
		return invalidFontText
	case chat.StateTemplate, chat.StateColor, chat.StateFont:
		return chooseOptionText
	default:
		return expectTextText
	}
}
