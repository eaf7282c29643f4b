// Package seed populates an empty database with default content.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	communitydomain "github.com/healthsync/backend/internal/community/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureCommunityPosts seeds the default testimonials when the community
// board is empty, so a fresh install shows real-looking content.
func EnsureCommunityPosts(conn *gorm.DB, log *zap.Logger) error {
	if conn == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&communitydomain.Post{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		posts := []communitydomain.Post{
			{
				ID:         node.Generate(),
				AuthorName: "Sarah M.",
				AuthorRole: "Clinic Administrator",
				Content:    "HealthSync EMR helped our clinic reduce documentation time and improve patient handoffs.",
				Rating:     5,
				Approved:   true,
				CreatedAt:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			},
			{
				ID:         node.Generate(),
				AuthorName: "James T.",
				AuthorRole: "Physician",
				Content:    "Integrations with labs and imaging streamlined our workflow and reduced turnaround.",
				Rating:     5,
				Approved:   true,
				CreatedAt:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				ID:         node.Generate(),
				AuthorName: "Emma L.",
				AuthorRole: "Nurse Manager",
				Content:    "Secure, easy-to-use EMR that supports our clinical workflows.",
				Rating:     5,
				Approved:   true,
				CreatedAt:  time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			},
		}

		if err := tx.Create(&posts).Error; err != nil {
			return err
		}
		log.Info("seeded community posts with default testimonials", zap.Int("count", len(posts)))
		return nil
	})
}
