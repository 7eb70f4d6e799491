package onboarding

import (
	"context"
	"fmt"

	"github.com/movepost/movepost/internal/profile"
)

// Status is what the completion flow needs to know: has the user finished
// onboarding, and if not, which step they were last on.
type Status struct {
	Completed   bool `json:"onboardingCompleted"`
	CurrentStep int  `json:"currentStep"`
}

const (
	DashboardRoute = "/dashboard"
	LoginRoute     = "/login"
)

// NextRoute decides where a freshly signed-in user lands. An unset step
// restarts at step 1; a status lookup failure routes to the dashboard
// rather than blocking the user (fail-open).
func NextRoute(status Status, err error) string {
	if err != nil {
		return DashboardRoute
	}

	if status.Completed {
		return DashboardRoute
	}

	step := status.CurrentStep

	if step <= 0 {
		step = 1
	}

	return fmt.Sprintf("/onboarding/step/%d", step)
}

// Store reads the profile row carrying the onboarding columns.
type Store interface {
	GetByUserID(ctx context.Context, userID string) (profile.Row, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetStatus(ctx context.Context, userID string) (Status, error) {
	row, err := s.store.GetByUserID(ctx, userID)

	if err != nil {
		return Status{}, fmt.Errorf("fetch onboarding status: %w", err)
	}

	return Status{
		Completed:   row.OnboardingCompleted,
		CurrentStep: row.OnboardingStep,
	}, nil
}
