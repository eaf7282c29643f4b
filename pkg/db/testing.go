package db

import (
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewTest opens an in-memory sqlite database for tests.
func NewTest() (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
}

// NewTestProvider wraps an already-open connection in a connected Provider
// so repository code under test skips the lazy dial.
func NewTestProvider(conn *gorm.DB) *Provider {
	return &Provider{
		state: StateConnected,
		conn:  conn,
		log:   zap.NewNop(),
	}
}
