package chat_test

import (
	"context"
	"errors"
	"testing"

	model "github.com/zhouzirui/manga-thumb/backend/internal/model/chat"
	chat "github.com/zhouzirui/manga-thumb/backend/internal/service/chat"
)

func TestServiceStartAndGet(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.Start(ctx, "tg:42")
	if err != nil {
		t.Fatalf("Start err: %v", err)
	}
	if session.State != model.StateName {
		t.Fatalf("expected initial state name, got %s", session.State)
	}

	got, err := svc.Get(ctx, "tg:42")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.UserKey != "tg:42" {
		t.Fatalf("unexpected user key: %s", got.UserKey)
	}
}

func TestServiceStartRequiresKey(t *testing.T) {
	svc := chat.NewService()

	if _, err := svc.Start(context.Background(), ""); !errors.Is(err, chat.ErrUserKeyRequired) {
		t.Fatalf("expected ErrUserKeyRequired, got %v", err)
	}
}

func TestServiceSavePersistsState(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.Start(ctx, "ws:a")
	session.State = model.StateSynopsis
	session.Answers.Name = "Berserk"
	if err := svc.Save(ctx, session); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	got, _ := svc.Get(ctx, "ws:a")
	if got.State != model.StateSynopsis || got.Answers.Name != "Berserk" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestServiceSaveUnknownSession(t *testing.T) {
	svc := chat.NewService()

	err := svc.Save(context.Background(), model.Session{UserKey: "missing"})
	if !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestServiceDiscard(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	_, _ = svc.Start(ctx, "tg:1")
	if _, ok := svc.Discard(ctx, "tg:1"); !ok {
		t.Fatal("expected discard to find session")
	}
	if _, err := svc.Get(ctx, "tg:1"); err == nil {
		t.Fatal("expected session to be gone")
	}
	if svc.Len() != 0 {
		t.Fatalf("expected empty store, got %d", svc.Len())
	}
}
