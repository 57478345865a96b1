package domain

import (
	"context"
	"fmt"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/entity"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/tx"
	"swiftpos/pkg/logger"
)

// CatalogService carries the shared CRUD flow for reference data:
// validate, run before-hooks, persist in a transaction, run after-hooks.
// Entity-specific services embed it and register hooks for their rules.
type CatalogService[T entity.Validatable] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName appears in error messages and log fields.
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T entity.Validatable] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	EntityName string
}

func NewCatalogService[T entity.Validatable](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks exposes the registry so callers can attach lifecycle rules.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Create validates and inserts a new entity.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	write := func(ctx context.Context) error {
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	}
	return s.persist(ctx, entity, BeforeCreate, AfterCreate, write)
}

// Update validates and saves an existing entity.
func (s *CatalogService[T]) Update(ctx context.Context, entity T) error {
	write := func(ctx context.Context) error {
		if err := s.repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	}
	return s.persist(ctx, entity, BeforeUpdate, AfterUpdate, write)
}

// persist runs the shared write flow. After-hooks fire outside the
// transaction: the entity is already saved, a failing hook must not
// undo that, so failures are only logged.
func (s *CatalogService[T]) persist(
	ctx context.Context,
	entity T,
	before, after HookEvent,
	write func(ctx context.Context) error,
) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, before, entity); err != nil {
		return err
	}

	if err := s.txManager.RunInTransaction(ctx, write); err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, after, entity); err != nil {
		logger.Warn(ctx, "post-write hook failed",
			"entity", s.entityName, "event", string(after), "error", err)
	}
	return nil
}

// Delete fetches the entity first so delete hooks can inspect it, then
// removes it.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}

	if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, entityID); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterDelete, entity); err != nil {
		logger.Warn(ctx, "post-write hook failed",
			"entity", s.entityName, "event", string(AfterDelete), "error", err)
	}
	return nil
}

// GetByID retrieves an entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return entity, s.normalizeGetErr(err, entityID.String())
	}
	return entity, nil
}

// GetByName retrieves an entity by its unique name.
func (s *CatalogService[T]) GetByName(ctx context.Context, name string) (T, error) {
	entity, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return entity, s.normalizeGetErr(err, name)
	}
	return entity, nil
}

// List retrieves entities with filtering.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}

// Exists checks whether an entity with the given ID exists.
func (s *CatalogService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

// normalizeGetErr maps repository lookup failures onto structured
// errors carrying the entity name.
func (s *CatalogService[T]) normalizeGetErr(err error, idOrName any) error {
	switch {
	case err == nil:
		return nil
	case apperror.IsNotFound(err):
		return apperror.NewNotFound(s.entityName, fmt.Sprintf("%v", idOrName))
	case apperror.IsAppError(err):
		return err
	default:
		return apperror.NewInternal(err).
			WithDetail("entity", s.entityName).
			WithDetail("id", idOrName)
	}
}
