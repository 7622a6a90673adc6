package ws

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/manga-thumb/backend/internal/bot"
	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
	// maxFrameSize bounds one inbound frame; images and fonts arrive base64 encoded.
	maxFrameSize = 30 << 20
)

// Dispatcher consumes converted inputs and drops sessions of closed connections.
type Dispatcher interface {
	Handle(ctx context.Context, userKey string, in chat.Input, sender bot.Sender) error
	Forget(ctx context.Context, userKey string)
}

// Handler WebSocket 对话处理器，每个连接对应一个独立用户。
type Handler struct {
	dispatcher Dispatcher
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// New 创建WebSocket处理器
func New(dispatcher Dispatcher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.Named("websocket"),
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

// inboundMessage 客户端发来的一帧。Data 为 base64 编码的图片或字体文件。
type inboundMessage struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     []byte `json:"data,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

type outgoingMessage struct {
	Type           string   `json:"type"`
	Text           string   `json:"text,omitempty"`
	Options        []string `json:"options,omitempty"`
	RemoveKeyboard bool     `json:"removeKeyboard,omitempty"`
	Data           string   `json:"data,omitempty"`
	Caption        string   `json:"caption,omitempty"`
	Timestamp      int64    `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	userKey := "ws:" + uuid.NewString()
	h.logger.Info("new connection", zap.String("user", userKey))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer h.dispatcher.Forget(context.WithoutCancel(ctx), userKey)

	sender := &connSender{conn: conn}

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go sender.pingLoop(ctx)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("read error", zap.String("user", userKey), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		in, err := convert(msg)
		if err != nil {
			if err := sender.sendError(err.Error()); err != nil {
				return
			}
			continue
		}

		if err := h.dispatcher.Handle(ctx, userKey, in, sender); err != nil {
			h.logger.Error("handle message", zap.String("user", userKey), zap.Error(err))
			return
		}
	}
}

// convert maps a frame to a conversation input. Commands may be sent with or without the slash.
func convert(msg inboundMessage) (chat.Input, error) {
	switch chat.InputKind(msg.Type) {
	case chat.InputText:
		return chat.TextInput(msg.Text), nil
	case chat.InputCommand:
		return chat.CommandInput(strings.TrimPrefix(strings.TrimSpace(msg.Text), "/")), nil
	case chat.InputPhoto:
		return chat.Input{Kind: chat.InputPhoto, Data: msg.Data}, nil
	case chat.InputDocument:
		return chat.Input{Kind: chat.InputDocument, Data: msg.Data, FileName: msg.FileName}, nil
	default:
		return chat.Input{}, fmt.Errorf("unsupported message type: %s", msg.Type)
	}
}

// connSender 串行化对连接的写入；gorilla 连接只允许一个并发写者。
type connSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *connSender) Send(_ context.Context, reply chat.Reply) error {
	msg := outgoingMessage{
		Type:           "text",
		Text:           reply.Text,
		Options:        reply.Options,
		RemoveKeyboard: reply.RemoveKeyboard,
		Timestamp:      time.Now().Unix(),
	}
	if reply.ImagePath != "" {
		data, err := os.ReadFile(reply.ImagePath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		msg.Type = "photo"
		msg.Data = base64.StdEncoding.EncodeToString(data)
		msg.Caption = reply.Caption
	}
	return s.write(msg)
}

func (s *connSender) sendError(message string) error {
	return s.write(outgoingMessage{Type: "error", Text: message, Timestamp: time.Now().Unix()})
}

func (s *connSender) write(msg outgoingMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// pingLoop 定期发送ping消息
func (s *connSender) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
