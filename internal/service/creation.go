package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quickai/quickai/internal/auth"
	"github.com/quickai/quickai/internal/metrics"
	"github.com/quickai/quickai/internal/model"
	"github.com/quickai/quickai/internal/repository"
)

// CreationReader queries and mutates existing creations.
type CreationReader interface {
	GetCreationByID(ctx context.Context, id string) (*model.Creation, error)
	ListCreationsByUser(ctx context.Context, userID string) ([]*model.Creation, error)
	ListPublishedCreations(ctx context.Context) ([]*model.Creation, error)
	SetCreationPublish(ctx context.Context, id, userID string, publish bool) error
	AddLike(ctx context.Context, id, userID string) (bool, error)
	RemoveLike(ctx context.Context, id, userID string) (bool, error)
}

// CreationService handles the feed and social operations.
type CreationService struct {
	store   CreationReader
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewCreationService creates a CreationService.
func NewCreationService(store CreationReader, logger *slog.Logger, recorder metrics.Recorder) *CreationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CreationService{store: store, logger: logger, metrics: recorder}
}

// ListOwnCreations returns the caller's full history, newest first,
// regardless of publish state.
func (s *CreationService) ListOwnCreations(ctx context.Context) ([]*model.Creation, error) {
	claims := auth.ClaimsFromContext(ctx)
	if claims == nil {
		return nil, ErrUnauthenticated
	}

	creations, err := s.store.ListCreationsByUser(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list own creations: %w", err)
	}
	return creations, nil
}

// ListPublicFeed returns all published creations, newest first.
// No authentication required.
func (s *CreationService) ListPublicFeed(ctx context.Context) ([]*model.Creation, error) {
	creations, err := s.store.ListPublishedCreations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list public feed: %w", err)
	}
	return creations, nil
}

// TogglePublish sets the publish flag on a creation the caller owns.
// A caller can never change visibility on somebody else's creation.
func (s *CreationService) TogglePublish(ctx context.Context, id string, publish bool) (*model.Creation, error) {
	claims := auth.ClaimsFromContext(ctx)
	if claims == nil {
		return nil, ErrUnauthenticated
	}

	creation, err := s.store.GetCreationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCreationNotFound) {
			return nil, ErrCreationNotFound
		}
		return nil, err
	}

	if creation.UserID != claims.UserID {
		s.logger.Warn("publish toggle denied",
			slog.String("creation_id", id),
			slog.String("owner_id", creation.UserID),
			slog.String("caller_id", claims.UserID),
		)
		return nil, ErrNotOwner
	}

	if err := s.store.SetCreationPublish(ctx, id, claims.UserID, publish); err != nil {
		if errors.Is(err, repository.ErrCreationNotFound) {
			return nil, ErrCreationNotFound
		}
		return nil, fmt.Errorf("failed to toggle publish: %w", err)
	}

	creation.Publish = publish
	s.metrics.IncPublishToggled()
	return creation, nil
}

// ToggleLikeOutput bundles the refreshed creation with what happened.
type ToggleLikeOutput struct {
	Creation *model.Creation
	Liked    bool
}

// ToggleLike flips the caller's membership in a creation's likes set and
// returns the refreshed creation. Calling it twice restores the original
// membership. Add and remove are guarded UPDATEs, so concurrent toggles by
// different users cannot drop each other's change.
func (s *CreationService) ToggleLike(ctx context.Context, id string) (*ToggleLikeOutput, error) {
	claims := auth.ClaimsFromContext(ctx)
	if claims == nil {
		return nil, ErrUnauthenticated
	}

	creation, err := s.store.GetCreationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCreationNotFound) {
			return nil, ErrCreationNotFound
		}
		return nil, err
	}

	liked := !creation.LikedBy(claims.UserID)
	if liked {
		_, err = s.store.AddLike(ctx, id, claims.UserID)
	} else {
		_, err = s.store.RemoveLike(ctx, id, claims.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	refreshed, err := s.store.GetCreationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload creation: %w", err)
	}

	s.metrics.IncLikeToggled()
	return &ToggleLikeOutput{Creation: refreshed, Liked: liked}, nil
}
