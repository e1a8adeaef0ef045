package services

import (
	"context"
	"strings"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/storage"
)

// CategoryService is the read side of the category catalogue plus the
// operator-only create/delete used by tooling.
type CategoryService struct {
	store    storage.CategoryStore
	resolver *CachedCategoryResolver
	logger   *applog.Logger
}

func NewCategoryService(store storage.CategoryStore, resolver *CachedCategoryResolver, logger *applog.Logger) *CategoryService {
	if logger == nil {
		logger = applog.Nop()
	}
	return &CategoryService{store: store, resolver: resolver, logger: logger.WithComponent(applog.ComponentLedger)}
}

func (s *CategoryService) ListCategories(ctx context.Context, ownerID string, kind core.Kind) ([]core.Category, error) {
	if kind != "" && !kind.Valid() {
		return nil, &core.ValidationError{Field: "kind", Value: string(kind), Err: core.ErrInvalidKind}
	}
	cats, err := s.store.ListCategories(ctx, ownerID, kind)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []core.Category{}
	}
	return cats, nil
}

// CreateCategory adds a category. A nil OwnerID makes it global.
func (s *CategoryService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return core.Category{}, &core.ValidationError{Field: "name", Err: core.ErrInvalidCategory}
	}
	if !c.Kind.Valid() {
		return core.Category{}, &core.ValidationError{Field: "kind", Value: string(c.Kind), Err: core.ErrInvalidKind}
	}
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	return s.store.CreateCategory(ctx, c)
}

// DeleteCategory removes a category. Transactions keep their dangling id and
// report under the fallback category from then on.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	if s.resolver != nil {
		s.resolver.Invalidate(id)
	}
	s.logger.InfoContext(ctx, "Category deleted", applog.FieldCategoryID, id)
	return nil
}
