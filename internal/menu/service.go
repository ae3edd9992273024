package menu

import (
	"context"
	"errors"
	"log/slog"

	"bistro/internal/storage"
	"bistro/pkg/domain"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/audit"
	"bistro/pkg/platform/sentinel"
)

// AuditEmitter receives catalogue events. *audit.Emitter satisfies it.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event)
}

type Service struct {
	items  Store
	audit  AuditEmitter
	logger *slog.Logger
}

func NewService(items Store, emitter AuditEmitter, logger *slog.Logger) (*Service, error) {
	if items == nil {
		return nil, errors.New("menu store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{items: items, audit: emitter, logger: logger}, nil
}

func (s *Service) List(ctx context.Context) ([]*Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list menu")
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id domain.MenuItemID) (*Item, error) {
	item, err := s.items.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "menu item not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load menu item")
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req ItemRequest) (storage.InsertResult, error) {
	item := req.toItem(domain.NewMenuItemID())
	if err := s.items.Insert(ctx, item); err != nil {
		return storage.InsertResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create menu item")
	}
	s.emit(ctx, audit.ActionMenuItemCreated, item.ID)
	return storage.Inserted(item.ID.String()), nil
}

func (s *Service) Update(ctx context.Context, id domain.MenuItemID, req ItemRequest) (storage.UpdateResult, error) {
	res, err := s.items.Update(ctx, req.toItem(id))
	if err != nil {
		return storage.UpdateResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update menu item")
	}
	if res.ModifiedCount > 0 {
		s.emit(ctx, audit.ActionMenuItemUpdated, id)
	}
	return res, nil
}

func (s *Service) Delete(ctx context.Context, id domain.MenuItemID) (storage.DeleteResult, error) {
	res, err := s.items.Delete(ctx, id)
	if err != nil {
		return storage.DeleteResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete menu item")
	}
	if res.DeletedCount > 0 {
		s.emit(ctx, audit.ActionMenuItemDeleted, id)
	}
	return res, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, id domain.MenuItemID) {
	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{Action: action, Subject: id.String()})
	}
}
