package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/healthsync/backend/internal/auth/domain"
	"github.com/healthsync/backend/internal/clock"
	"github.com/healthsync/backend/internal/community/domain"
	"github.com/healthsync/backend/internal/token"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	users authdomain.Service
	genID *snowflake.Node
	clk   clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, users authdomain.Service, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("community.service"),
		repo:  repo,
		users: users,
		genID: genID,
		clk:   clk,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.PostView, error) {
	posts, err := s.repo.ListApproved(ctx, domain.ListLimit)
	if err != nil {
		return nil, err
	}
	views := make([]domain.PostView, 0, len(posts))
	for i := range posts {
		views = append(views, viewOf(&posts[i]))
	}
	return views, nil
}

func (s *Service) Create(ctx context.Context, sub token.Subject, req domain.CreateRequest) (*domain.PostView, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.ErrEmptyContent
	}
	rating := req.Rating
	if rating == 0 {
		rating = domain.DefaultRating
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, domain.ErrInvalidRating
	}

	authorName, authorRole, err := s.author(ctx, sub)
	if err != nil {
		return nil, err
	}

	ownerID := sub.UserID
	if ownerID == "" {
		ownerID = sub.Email
	}

	post := &domain.Post{
		ID:         s.genID.Generate(),
		OwnerID:    ownerID,
		AuthorName: authorName,
		AuthorRole: authorRole,
		Content:    content,
		Rating:     rating,
		Approved:   true,
		CreatedAt:  s.clk.Now(),
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	view := viewOf(post)
	return &view, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	pid, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidPostID
	}
	return s.repo.DeleteOwned(ctx, ownerID, pid)
}

// author derives the display identity from the caller's directory record.
// Callers without a record publish anonymously.
func (s *Service) author(ctx context.Context, sub token.Subject) (name, role string, err error) {
	name, role = domain.AnonymousAuthor, domain.DefaultAuthorRole

	user, err := s.users.CurrentUser(ctx, sub)
	if errors.Is(err, authdomain.ErrUserNotFound) {
		return name, role, nil
	}
	if err != nil {
		return "", "", err
	}

	profile, perr := authdomain.ParseProfile(user.Role, user.Profile)
	switch user.Role {
	case authdomain.RoleDoctor:
		role = "Physician"
		if perr == nil && profile.DisplayName() != "" {
			name = profile.DisplayName()
		} else if local := emailLocalPart(user.Email); local != "" {
			name = local
		}
	case authdomain.RoleOrganization:
		role = "Organization Admin"
		if perr == nil && profile.DisplayName() != "" {
			name = profile.DisplayName()
		}
	}
	return name, role, nil
}

func emailLocalPart(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return ""
	}
	return local
}

func viewOf(post *domain.Post) domain.PostView {
	return domain.PostView{
		ID:         post.ID.String(),
		AuthorName: post.AuthorName,
		AuthorRole: post.AuthorRole,
		Content:    post.Content,
		Rating:     post.Rating,
		CreatedAt:  post.CreatedAt,
	}
}
