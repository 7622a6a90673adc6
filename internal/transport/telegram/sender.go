package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
)

// Sender 把回复发送到一个聊天。
type Sender struct {
	api    API
	chatID int64
}

// Send renders reply as a photo or a text message with its keyboard.
func (s *Sender) Send(_ context.Context, reply chat.Reply) error {
	if reply.ImagePath != "" {
		photo := tgbotapi.NewPhoto(s.chatID, tgbotapi.FilePath(reply.ImagePath))
		photo.Caption = reply.Caption
		if _, err := s.api.Send(photo); err != nil {
			return fmt.Errorf("send photo: %w", err)
		}
		return nil
	}

	if _, err := s.api.Send(Message(s.chatID, reply)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Message builds the text message for reply, attaching a one-time keyboard
// when it carries options.
func Message(chatID int64, reply chat.Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	switch {
	case len(reply.Options) > 0:
		msg.ReplyMarkup = Keyboard(reply.Options)
	case reply.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	return msg
}

// Keyboard lays the options out one per row.
func Keyboard(options []string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for _, option := range options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(option)))
	}
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true
	return keyboard
}
