package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/manga-thumb/backend/internal/bot"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
)

// API is the subset of *tgbotapi.BotAPI the transport uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// Dispatcher consumes converted inputs.
type Dispatcher interface {
	Handle(ctx context.Context, userKey string, in chat.Input, sender bot.Sender) error
}

// Options 控制接收更新的方式。WebhookURL 为空时使用长轮询。
type Options struct {
	WebhookURL  string
	WebhookPath string
	Timeout     int
}

const downloadFailedText = "Sorry, I couldn't download that file. Please send it again."

// Bot 把 Telegram 更新转换为对话输入，并把回复发回聊天。
type Bot struct {
	api        API
	dispatcher Dispatcher
	files      *Downloader
	opts       Options
	updates    chan tgbotapi.Update
	done       chan struct{}
	logger     *zap.Logger
}

// NewAPI 使用 token 创建 Telegram 客户端。
func NewAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	api.Debug = debug
	return api, nil
}

// New creates a Bot. files may be nil to use http.DefaultClient.
func New(api API, dispatcher Dispatcher, files *Downloader, opts Options, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if files == nil {
		files = NewDownloader(nil)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60
	}
	return &Bot{
		api:        api,
		dispatcher: dispatcher,
		files:      files,
		opts:       opts,
		updates:    make(chan tgbotapi.Update),
		done:       make(chan struct{}),
		logger:     logger.Named("telegram"),
	}
}

// Webhook reports whether updates arrive through ServeHTTP.
func (b *Bot) Webhook() bool {
	return b.opts.WebhookURL != ""
}

// Run 接收更新直到 ctx 结束。更新逐条顺序处理。Run 只能调用一次。
func (b *Bot) Run(ctx context.Context) error {
	defer close(b.done)
	if b.Webhook() {
		return b.runWebhook(ctx)
	}
	return b.runPolling(ctx)
}

func (b *Bot) runPolling(ctx context.Context) error {
	// getUpdates is refused while a webhook is registered.
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.opts.Timeout
	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("polling for updates", zap.Int("timeout", cfg.Timeout))
	return b.consume(ctx, updates)
}

func (b *Bot) runWebhook(ctx context.Context) error {
	wh, err := tgbotapi.NewWebhook(b.opts.WebhookURL + b.opts.WebhookPath)
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	b.logger.Info("webhook registered", zap.String("url", b.opts.WebhookURL))
	return b.consume(ctx, b.updates)
}

func (b *Bot) consume(ctx context.Context, updates <-chan tgbotapi.Update) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// ServeHTTP 接收 webhook 推送并交给 Run 中的处理循环。
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("invalid webhook update", zap.Error(err))
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}

	select {
	case b.updates <- *update:
		w.WriteHeader(http.StatusOK)
	case <-b.done:
		http.Error(w, "bot stopped", http.StatusServiceUnavailable)
	case <-r.Context().Done():
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	userKey := UserKey(msg)
	sender := &Sender{api: b.api, chatID: msg.Chat.ID}

	in, err := b.input(ctx, msg)
	if err != nil {
		b.logger.Warn("download failed", zap.String("user", userKey), zap.Error(err))
		if err := sender.Send(ctx, chat.Reply{Text: downloadFailedText}); err != nil {
			b.logger.Warn("send failed", zap.String("user", userKey), zap.Error(err))
		}
		return
	}

	if err := b.dispatcher.Handle(ctx, userKey, in, sender); err != nil {
		b.logger.Error("handle update", zap.String("user", userKey), zap.Int("update", update.UpdateID), zap.Error(err))
	}
}

// UserKey identifies the sender of msg. Channel posts have no From and fall back to the chat.
func UserKey(msg *tgbotapi.Message) string {
	if msg.From != nil {
		return "tg:" + strconv.FormatInt(msg.From.ID, 10)
	}
	return "tg:" + strconv.FormatInt(msg.Chat.ID, 10)
}

func (b *Bot) input(ctx context.Context, msg *tgbotapi.Message) (chat.Input, error) {
	in := Convert(msg)
	if in.Kind != chat.InputPhoto && in.Kind != chat.InputDocument {
		return in, nil
	}

	fileID := fileID(msg)
	if fileID == "" {
		return chat.Input{}, errNoAttachment
	}
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return chat.Input{}, fmt.Errorf("resolve file %s: %w", fileID, err)
	}
	data, err := b.files.Fetch(ctx, url)
	if err != nil {
		return chat.Input{}, err
	}
	in.Data = data
	return in, nil
}

// Convert maps a message to an input without downloading attachments.
func Convert(msg *tgbotapi.Message) chat.Input {
	switch {
	case msg.IsCommand():
		return chat.CommandInput(msg.Command())
	case len(msg.Photo) > 0:
		return chat.Input{Kind: chat.InputPhoto, Text: msg.Caption}
	case msg.Document != nil:
		return chat.Input{Kind: chat.InputDocument, FileName: msg.Document.FileName}
	case msg.Text != "":
		return chat.TextInput(msg.Text)
	default:
		return chat.Input{Kind: chat.InputOther}
	}
}

// fileID picks the attachment to download; the last photo size is the largest.
func fileID(msg *tgbotapi.Message) string {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Document != nil {
		return msg.Document.FileID
	}
	return ""
}

var errNoAttachment = errors.New("message has no attachment")
