package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/healthsync/backend/internal/chat/domain"
	"github.com/healthsync/backend/internal/clock"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clk   clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("chat.service"),
		repo:  repo,
		genID: genID,
		clk:   clk,
	}
}

func (s *Service) List(ctx context.Context, ownerID string) ([]domain.SessionView, error) {
	sessions, err := s.repo.List(ctx, ownerID, domain.ListLimit)
	if err != nil {
		return nil, err
	}
	views := make([]domain.SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, viewOf(&sessions[i]))
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*domain.SessionView, error) {
	sid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	session, err := s.repo.FindByID(ctx, ownerID, sid)
	if err != nil {
		return nil, err
	}
	view := viewOf(session)
	return &view, nil
}

func (s *Service) Create(ctx context.Context, ownerID string, req domain.CreateRequest) (*domain.SessionView, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = domain.DefaultTitle
	}
	messages, err := normalizeMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	session := &domain.Session{
		ID:        s.genID.Generate(),
		OwnerID:   ownerID,
		Title:     title,
		Messages:  datatypes.JSON(messages),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	view := viewOf(session)
	return &view, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id string, req domain.UpdateRequest) error {
	sid, err := parseID(id)
	if err != nil {
		return err
	}

	fields := map[string]any{"updated_at": s.clk.Now()}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Messages != nil {
		messages, err := normalizeMessages(req.Messages)
		if err != nil {
			return err
		}
		fields["messages"] = datatypes.JSON(messages)
	}

	return s.repo.UpdateFields(ctx, ownerID, sid, fields)
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	sid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, ownerID, sid)
}

func parseID(id string) (snowflake.ID, error) {
	sid, err := snowflake.ParseString(id)
	if err != nil {
		return 0, domain.ErrInvalidSessionID
	}
	return sid, nil
}

// normalizeMessages accepts only a JSON array, defaulting absent input to
// an empty one.
func normalizeMessages(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return json.RawMessage(`[]`), nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' || !json.Valid(trimmed) {
		return nil, domain.ErrInvalidMessages
	}
	return trimmed, nil
}

func viewOf(session *domain.Session) domain.SessionView {
	title := session.Title
	if strings.TrimSpace(title) == "" {
		title = domain.FallbackTitle
	}
	messages := json.RawMessage(session.Messages)
	if len(messages) == 0 {
		messages = json.RawMessage(`[]`)
	}
	return domain.SessionView{
		ID:        session.ID.String(),
		Title:     title,
		Messages:  messages,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}
