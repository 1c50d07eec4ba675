package service

import (
	"context"
	"errors"
	"testing"

	"taskcli/internal/repo"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	store := repo.NewMemStore()
	svc := NewUserService(store.Users())
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.PasswordHash == "secret123" {
		t.Fatal("password stored in plain text")
	}

	got, err := svc.Authenticate(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("authenticated as %d, want %d", got.ID, u.ID)
	}

	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	store := repo.NewMemStore()
	svc := NewUserService(store.Users())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "Imposter", "alice@example.com", "another1"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	store := repo.NewMemStore()
	svc := NewUserService(store.Users())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "a@example.com", "secret123"); !IsValidation(err) {
		t.Errorf("missing name: expected ValidationError, got %v", err)
	}
	if _, err := svc.Register(ctx, "A", "a@example.com", "short"); !IsValidation(err) {
		t.Errorf("short password: expected ValidationError, got %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	t.Parallel()

	store := repo.NewMemStore()
	users := NewUserService(store.Users())
	tasks := NewTaskService(store.Tasks(), nil)
	ctx := context.Background()

	alice, err := users.Register(ctx, "Alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	bob, err := users.Register(ctx, "Bob", "bob@example.com", "secret123")
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	if _, err := tasks.Create(ctx, alice.ID, CreateTaskInput{Name: "a", DueDate: "2023-10-01", Recurrence: "daily_7"}); err != nil {
		t.Fatalf("create alice tasks: %v", err)
	}
	kept, err := tasks.Create(ctx, bob.ID, CreateTaskInput{Name: "b", DueDate: "2023-10-01"})
	if err != nil {
		t.Fatalf("create bob task: %v", err)
	}

	if err := users.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("delete alice: %v", err)
	}

	remaining, err := tasks.List(ctx, repo.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != kept[0].ID {
		t.Fatalf("expected only bob's task to remain, got %d tasks", len(remaining))
	}

	if err := users.Delete(ctx, alice.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("second delete: expected ErrUserNotFound, got %v", err)
	}
}
