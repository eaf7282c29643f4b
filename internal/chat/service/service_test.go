package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	chatdomain "github.com/healthsync/backend/internal/chat/domain"
	"github.com/healthsync/backend/internal/chat/repository"
	"github.com/healthsync/backend/internal/clock"
	"github.com/healthsync/backend/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (chatdomain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := conn.AutoMigrate(&chatdomain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(zap.NewNop(), repository.New(db.NewTestProvider(conn)), node, clk), clk
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	view, err := svc.Create(context.Background(), "owner-1", chatdomain.CreateRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Title != chatdomain.DefaultTitle {
		t.Fatalf("expected default title, got %q", view.Title)
	}
	if string(view.Messages) != "[]" {
		t.Fatalf("expected empty messages, got %s", view.Messages)
	}
}

func TestCreateRejectsNonArrayMessages(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "owner-1", chatdomain.CreateRequest{
		Messages: json.RawMessage(`{"role":"user"}`),
	})
	if !errors.Is(err, chatdomain.ErrInvalidMessages) {
		t.Fatalf("expected ErrInvalidMessages, got %v", err)
	}
}

func TestListOwnerScopedNewestFirst(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, "owner-1", chatdomain.CreateRequest{Title: fmt.Sprintf("chat %d", i)}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		clk.Advance(time.Minute)
	}
	if _, err := svc.Create(ctx, "owner-2", chatdomain.CreateRequest{Title: "other"}); err != nil {
		t.Fatalf("create other owner: %v", err)
	}

	views, err := svc.List(ctx, "owner-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(views))
	}
	if views[0].Title != "chat 2" || views[2].Title != "chat 0" {
		t.Fatalf("unexpected order: %q .. %q", views[0].Title, views[2].Title)
	}
}

func TestListLimit(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	for i := 0; i < chatdomain.ListLimit+5; i++ {
		if _, err := svc.Create(ctx, "owner-1", chatdomain.CreateRequest{}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		clk.Advance(time.Second)
	}

	views, err := svc.List(ctx, "owner-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != chatdomain.ListLimit {
		t.Fatalf("expected %d sessions, got %d", chatdomain.ListLimit, len(views))
	}
}

func TestGetScopedToOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", chatdomain.CreateRequest{Title: "mine"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, "owner-1", created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "mine" {
		t.Fatalf("unexpected title %q", got.Title)
	}

	if _, err := svc.Get(ctx, "owner-2", created.ID); !errors.Is(err, chatdomain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for foreign owner, got %v", err)
	}
}

func TestGetInvalidID(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Get(context.Background(), "owner-1", "not-a-number"); !errors.Is(err, chatdomain.ErrInvalidSessionID) {
		t.Fatalf("expected ErrInvalidSessionID, got %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", chatdomain.CreateRequest{
		Title:    "before",
		Messages: json.RawMessage(`[{"role":"user","content":"hi"}]`),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clk.Advance(time.Minute)
	title := "after"
	if err := svc.Update(ctx, "owner-1", created.ID, chatdomain.UpdateRequest{Title: &title}); err != nil {
		t.Fatalf("update title: %v", err)
	}

	got, err := svc.Get(ctx, "owner-1", created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "after" {
		t.Fatalf("expected updated title, got %q", got.Title)
	}
	// Messages untouched by a title-only patch.
	if string(got.Messages) != `[{"role":"user","content":"hi"}]` {
		t.Fatalf("messages changed: %s", got.Messages)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected bumped updated_at, got %v", got.UpdatedAt)
	}
}

func TestUpdateForeignOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", chatdomain.CreateRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "hijacked"
	err = svc.Update(ctx, "owner-2", created.ID, chatdomain.UpdateRequest{Title: &title})
	if !errors.Is(err, chatdomain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", chatdomain.CreateRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "owner-2", created.ID); !errors.Is(err, chatdomain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for foreign owner, got %v", err)
	}
	if err := svc.Delete(ctx, "owner-1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "owner-1", created.ID); !errors.Is(err, chatdomain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
