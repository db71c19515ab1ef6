package notifications

import (
	"context"
	"time"

	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	pkgerrors "github.com/agriconnect/agriconnect-backend/pkg/errors"
	"github.com/agriconnect/agriconnect-backend/pkg/pagination"
	"github.com/agriconnect/agriconnect-backend/pkg/types"
	"github.com/google/uuid"
)

// ListNotificationsRequest filters the actor's notification feed.
type ListNotificationsRequest struct {
	UnreadOnly bool
	Limit      int
	Cursor     string
}

// Service defines the recipient-facing notification operations.
type Service interface {
	List(ctx context.Context, actor types.Actor, req ListNotificationsRequest) ([]models.Notification, string, error)
	UnreadCount(ctx context.Context, actor types.Actor) (int64, error)
	MarkRead(ctx context.Context, actor types.Actor, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, actor types.Actor) (int64, error)
}

type service struct {
	repo Repository
}

// NewService wires the notification service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, actor types.Actor, req ListNotificationsRequest) ([]models.Notification, string, error) {
	params := ListParams{
		RecipientID: actor.UserID,
		UnreadOnly:  req.UnreadOnly,
		Limit:       req.Limit,
	}
	if req.Cursor != "" {
		cursor, err := pagination.ParseCursor(req.Cursor)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	list, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return list, nextCursor, nil
}

func (s *service) UnreadCount(ctx context.Context, actor types.Actor) (int64, error) {
	count, err := s.repo.CountUnread(ctx, actor.UserID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, actor types.Actor, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	affected, err := s.repo.MarkRead(ctx, actor.UserID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark read")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, actor types.Actor) (int64, error) {
	affected, err := s.repo.MarkAllRead(ctx, actor.UserID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all read")
	}
	return affected, nil
}
