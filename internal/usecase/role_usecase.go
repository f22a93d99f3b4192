package usecase

import (
	"context"
	"errors"
	"strings"

	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/repository"
	"skill-gap/internal/search"
)

type RoleUsecase interface {
	List(ctx context.Context, query string) ([]skillgap.Role, error)
	Get(ctx context.Context, id string) (skillgap.Role, error)
}

type Roles struct {
	store repository.Store
}

func NewRoleUsecase(store repository.Store) *Roles {
	return &Roles{store: store}
}

// List returns the catalog, or the roles matching query ranked best first.
func (u *Roles) List(ctx context.Context, query string) ([]skillgap.Role, error) {
	roles, err := u.store.ListRoles(ctx)
	if err != nil {
		return nil, ErrInternal
	}
	return search.Roles(roles, query), nil
}

func (u *Roles) Get(ctx context.Context, id string) (skillgap.Role, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return skillgap.Role{}, ErrRoleNotFound
	}
	role, err := u.store.GetRole(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return skillgap.Role{}, ErrRoleNotFound
		}
		return skillgap.Role{}, ErrInternal
	}
	return role, nil
}
