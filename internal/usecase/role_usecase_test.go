package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestRoles_List(t *testing.T) {
	store := newFakeStore()
	uc := NewRoleUsecase(store)

	all, err := uc.List(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected full catalog, got %d roles", len(all))
	}

	ranked, err := uc.List(context.Background(), "ml intern")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ranked) == 0 || ranked[0].ID != "ml" {
		t.Fatalf("expected ml first, got %+v", ranked)
	}

	store.rolesErr = errors.New("db down")
	if _, err := uc.List(context.Background(), ""); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestRoles_Get(t *testing.T) {
	uc := NewRoleUsecase(newFakeStore())

	role, err := uc.Get(context.Background(), " ml ")
	if err != nil || role.ID != "ml" {
		t.Fatalf("unexpected result %q %v", role.ID, err)
	}
	for _, id := range []string{"", "unknown"} {
		if _, err := uc.Get(context.Background(), id); !errors.Is(err, ErrRoleNotFound) {
			t.Fatalf("id %q: expected ErrRoleNotFound, got %v", id, err)
		}
	}
}
