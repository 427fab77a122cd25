package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
)

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, userID, authorUsername string) (*model.User, error)
	Unfollow(ctx context.Context, userID, authorUsername string) (*model.User, error)
	Following(ctx context.Context, userID, authorID string) (bool, error)
}

type relationshipService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
}

func NewRelationshipService(follows repository.FollowRepository, users repository.UserRepository) RelationshipService {
	return &relationshipService{follows: follows, users: users}
}

func (s *relationshipService) resolveAuthor(ctx context.Context, username string) (*model.User, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return author, nil
}

// Follow is idempotent: the repository upserts with a unique (user,
// author) key, so concurrent duplicates collapse to one row.
func (s *relationshipService) Follow(ctx context.Context, userID, authorUsername string) (*model.User, error) {
	author, err := s.resolveAuthor(ctx, authorUsername)
	if err != nil {
		return nil, err
	}
	if author.ID == userID {
		return author, ErrFollowSelf
	}
	if err := s.follows.Create(ctx, userID, author.ID); err != nil {
		return author, err
	}
	return author, nil
}

// Unfollow is a no-op when the pair is absent.
func (s *relationshipService) Unfollow(ctx context.Context, userID, authorUsername string) (*model.User, error) {
	author, err := s.resolveAuthor(ctx, authorUsername)
	if err != nil {
		return nil, err
	}
	if err := s.follows.Delete(ctx, userID, author.ID); err != nil {
		return author, err
	}
	return author, nil
}

func (s *relationshipService) Following(ctx context.Context, userID, authorID string) (bool, error) {
	return s.follows.Exists(ctx, userID, authorID)
}
