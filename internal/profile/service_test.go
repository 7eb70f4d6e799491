package profile

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	getFn    func(ctx context.Context, userID string) (Row, error)
	updateFn func(ctx context.Context, userID string, changes map[string]interface{}) error

	getCalls    int
	updateCalls int
}

func (f *fakeStore) GetByUserID(ctx context.Context, userID string) (Row, error) {
	f.getCalls++

	if f.getFn != nil {
		return f.getFn(ctx, userID)
	}

	return Row{UserID: userID}, nil
}

func (f *fakeStore) Update(ctx context.Context, userID string, changes map[string]interface{}) error {
	f.updateCalls++

	if f.updateFn != nil {
		return f.updateFn(ctx, userID, changes)
	}

	return nil
}

func strPtr(s string) *string { return &s }

func TestGetRequiresIdentity(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	_, err := svc.Get(context.Background(), "")

	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	if store.getCalls != 0 {
		t.Error("store must not be queried without an identity")
	}
}

func TestGetAppliesDefaults(t *testing.T) {
	store := &fakeStore{
		getFn: func(ctx context.Context, userID string) (Row, error) {
			return Row{
				UserID: userID,
				Email:  "a@example.com",
				// role and timezone absent
			}, nil
		},
	}
	svc := NewService(store)

	p, err := svc.Get(context.Background(), "usr_1")

	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if p.Role != "user" {
		t.Errorf("role = %q, want user default", p.Role)
	}

	if p.Timezone != "UTC" {
		t.Errorf("timezone = %q, want UTC default", p.Timezone)
	}
}

func TestGetPropagatesStoreFailure(t *testing.T) {
	store := &fakeStore{
		getFn: func(ctx context.Context, userID string) (Row, error) {
			return Row{}, ErrNotFound
		},
	}
	svc := NewService(store)

	_, err := svc.Get(context.Background(), "usr_1")

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyCombinesFullName(t *testing.T) {
	var gotChanges map[string]interface{}

	store := &fakeStore{
		updateFn: func(ctx context.Context, userID string, changes map[string]interface{}) error {
			gotChanges = changes
			return nil
		},
	}

	svc := NewService(store)
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.Apply(context.Background(), "usr_1", Update{
		FirstName: strPtr("A"),
		LastName:  strPtr("B"),
	})

	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if gotChanges["full_name"] != "A B" {
		t.Errorf("full_name = %v, want \"A B\"", gotChanges["full_name"])
	}

	if gotChanges["first_name"] != "A" || gotChanges["last_name"] != "B" {
		t.Errorf("unexpected name columns: %v", gotChanges)
	}

	if gotChanges["updated_at"] != fixed {
		t.Errorf("updated_at = %v, want stamped %v", gotChanges["updated_at"], fixed)
	}

	// first_name, last_name, full_name, updated_at and nothing else
	if len(gotChanges) != 4 {
		t.Errorf("expected exactly 4 changed columns, got %v", gotChanges)
	}
}

func TestApplyLeavesOmittedFieldsUntouched(t *testing.T) {
	var gotChanges map[string]interface{}

	store := &fakeStore{
		updateFn: func(ctx context.Context, userID string, changes map[string]interface{}) error {
			gotChanges = changes
			return nil
		},
	}

	svc := NewService(store)

	_, err := svc.Apply(context.Background(), "usr_1", Update{Phone: strPtr("512-555-0101")})

	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if gotChanges["phone"] != "512-555-0101" {
		t.Errorf("phone = %v", gotChanges["phone"])
	}

	if _, ok := gotChanges["full_name"]; ok {
		t.Error("full_name must not change without both name fields")
	}

	if len(gotChanges) != 2 { // phone + updated_at
		t.Errorf("expected 2 changed columns, got %v", gotChanges)
	}
}

func TestApplyWithNoChangesSkipsWrite(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	_, err := svc.Apply(context.Background(), "usr_1", Update{})

	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if store.updateCalls != 0 {
		t.Error("empty patch must not write")
	}

	if store.getCalls != 1 {
		t.Error("empty patch should still re-read the profile")
	}
}

func TestApplyRequiresIdentity(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	_, err := svc.Apply(context.Background(), "", Update{Phone: strPtr("x")})

	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	if store.updateCalls != 0 || store.getCalls != 0 {
		t.Error("store must not be touched without an identity")
	}
}
