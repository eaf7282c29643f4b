package server

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/healthsync/backend/internal/auth/domain"
	chatdomain "github.com/healthsync/backend/internal/chat/domain"
	communitydomain "github.com/healthsync/backend/internal/community/domain"
	"github.com/healthsync/backend/internal/clock"
	"github.com/healthsync/backend/internal/config"
	"github.com/healthsync/backend/internal/token"
	"go.uber.org/zap"
)

type fakeAuthService struct {
	bindResult *authdomain.BindResult
	bindErr    error
	user       *authdomain.UserView
	userErr    error
	resetErr   error
	resets     []string
}

func (f *fakeAuthService) Bind(ctx context.Context, req authdomain.BindRequest) (*authdomain.BindResult, error) {
	if f.bindErr != nil {
		return nil, f.bindErr
	}
	return f.bindResult, nil
}

func (f *fakeAuthService) CurrentUser(ctx context.Context, sub token.Subject) (*authdomain.UserView, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *fakeAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	f.resets = append(f.resets, email)
	return f.resetErr
}

type fakeChatService struct {
	sessions []chatdomain.SessionView
	err      error

	lastOwner string
}

func (f *fakeChatService) List(ctx context.Context, ownerID string) ([]chatdomain.SessionView, error) {
	f.lastOwner = ownerID
	return f.sessions, f.err
}

func (f *fakeChatService) Get(ctx context.Context, ownerID, id string) (*chatdomain.SessionView, error) {
	f.lastOwner = ownerID
	if f.err != nil {
		return nil, f.err
	}
	if len(f.sessions) == 0 {
		return nil, chatdomain.ErrSessionNotFound
	}
	return &f.sessions[0], nil
}

func (f *fakeChatService) Create(ctx context.Context, ownerID string, req chatdomain.CreateRequest) (*chatdomain.SessionView, error) {
	f.lastOwner = ownerID
	if f.err != nil {
		return nil, f.err
	}
	view := chatdomain.SessionView{ID: "1", Title: req.Title, Messages: req.Messages}
	if view.Title == "" {
		view.Title = chatdomain.DefaultTitle
	}
	return &view, nil
}

func (f *fakeChatService) Update(ctx context.Context, ownerID, id string, req chatdomain.UpdateRequest) error {
	f.lastOwner = ownerID
	return f.err
}

func (f *fakeChatService) Delete(ctx context.Context, ownerID, id string) error {
	f.lastOwner = ownerID
	return f.err
}

type fakeCommunityService struct {
	posts []communitydomain.PostView
	err   error
}

func (f *fakeCommunityService) List(ctx context.Context) ([]communitydomain.PostView, error) {
	return f.posts, f.err
}

func (f *fakeCommunityService) Create(ctx context.Context, sub token.Subject, req communitydomain.CreateRequest) (*communitydomain.PostView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &communitydomain.PostView{ID: "1", Content: req.Content, Rating: req.Rating}, nil
}

func (f *fakeCommunityService) Delete(ctx context.Context, ownerID, id string) error {
	return f.err
}

type testHarness struct {
	server    *Server
	engine    *gin.Engine
	codec     *token.Codec
	clk       *clock.FakeClock
	auth      *fakeAuthService
	chat      *fakeChatService
	community *fakeCommunityService
}

func newTestHarness(t *testing.T, secret string) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	codec := token.NewCodec(config.Config{AuthJWTSecret: secret, AuthTokenTTL: time.Hour}, clk)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	h := &testHarness{
		engine:    engine,
		codec:     codec,
		clk:       clk,
		auth:      &fakeAuthService{},
		chat:      &fakeChatService{},
		community: &fakeCommunityService{},
	}
	h.server = NewServer(ServerParams{
		Gin:          engine,
		Cfg:          config.Config{},
		Log:          zap.NewNop(),
		Codec:        codec,
		AuthSvc:      h.auth,
		ChatSvc:      h.chat,
		CommunitySvc: h.community,
	})
	h.server.RegisterRoutes()
	return h
}

func (h *testHarness) issue(t *testing.T, sub token.Subject) string {
	t.Helper()
	raw, _, err := h.codec.Issue(sub)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw
}
