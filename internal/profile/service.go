package profile

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("profile not found")
)

// Store is the row-level access the service needs. The postgres repo
// implements it; tests use function-field fakes.
type Store interface {
	GetByUserID(ctx context.Context, userID string) (Row, error)
	Update(ctx context.Context, userID string, changes map[string]interface{}) error
}

// Update is a partial view-model patch: nil means "leave untouched".
type Update struct {
	FirstName           *string `json:"firstName"`
	LastName            *string `json:"lastName"`
	Phone               *string `json:"phone"`
	Company             *string `json:"company"`
	Timezone            *string `json:"timezone"`
	EmailNotifications  *bool   `json:"emailNotifications"`
	OnboardingCompleted *bool   `json:"onboardingCompleted"`
	OnboardingStep      *int    `json:"onboardingStep"`
}

// Service translates between the profile table and the view-model.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Get resolves the caller's profile. An empty user id means there is no
// authenticated identity; the store is never touched in that case.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrNotAuthenticated
	}

	row, err := s.store.GetByUserID(ctx, userID)

	if err != nil {
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}

	return FromRow(row), nil
}

// Apply writes a partial update and re-reads the row through the same
// mapping as Get. Only provided fields are touched; first and last name
// together also refresh the combined full_name column.
func (s *Service) Apply(ctx context.Context, userID string, updates Update) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrNotAuthenticated
	}

	changes := map[string]interface{}{}

	setStr(changes, "first_name", updates.FirstName)
	setStr(changes, "last_name", updates.LastName)
	setStr(changes, "phone", updates.Phone)
	setStr(changes, "company", updates.Company)
	setStr(changes, "timezone", updates.Timezone)

	if updates.EmailNotifications != nil {
		changes["email_notifications"] = *updates.EmailNotifications
	}

	if updates.OnboardingCompleted != nil {
		changes["onboarding_completed"] = *updates.OnboardingCompleted
	}

	if updates.OnboardingStep != nil {
		changes["onboarding_step"] = *updates.OnboardingStep
	}

	if updates.FirstName != nil && updates.LastName != nil {
		changes["full_name"] = *updates.FirstName + " " + *updates.LastName
	}

	if len(changes) > 0 {
		changes["updated_at"] = s.now()

		if err := s.store.Update(ctx, userID, changes); err != nil {
			return Profile{}, fmt.Errorf("update profile: %w", err)
		}
	}

	return s.Get(ctx, userID)
}

func setStr(changes map[string]interface{}, column string, v *string) {
	if v != nil {
		changes[column] = *v
	}
}
