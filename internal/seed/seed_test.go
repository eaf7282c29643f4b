package seed

import (
	"testing"

	communitydomain "github.com/healthsync/backend/internal/community/domain"
	"github.com/healthsync/backend/pkg/db"
	"go.uber.org/zap"
)

func TestEnsureCommunityPostsIsIdempotent(t *testing.T) {
	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := conn.AutoMigrate(&communitydomain.Post{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := EnsureCommunityPosts(conn, zap.NewNop()); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	var count int64
	if err := conn.Model(&communitydomain.Post{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 seeded posts, got %d", count)
	}
}

func TestSeedSkipsNonEmptyBoard(t *testing.T) {
	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := conn.AutoMigrate(&communitydomain.Post{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	existing := communitydomain.Post{ID: 1, AuthorName: "A", AuthorRole: "B", Content: "c", Rating: 5, Approved: true}
	if err := conn.Create(&existing).Error; err != nil {
		t.Fatalf("create existing: %v", err)
	}

	if err := EnsureCommunityPosts(conn, zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var count int64
	if err := conn.Model(&communitydomain.Post{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected board untouched, got %d posts", count)
	}
}
