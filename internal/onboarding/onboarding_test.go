package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/movepost/movepost/internal/profile"
)

func TestNextRoute(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		err    error
		want   string
	}{
		{"incomplete at step 3", Status{Completed: false, CurrentStep: 3}, nil, "/onboarding/step/3"},
		{"incomplete with unset step", Status{Completed: false}, nil, "/onboarding/step/1"},
		{"incomplete with negative step", Status{CurrentStep: -2}, nil, "/onboarding/step/1"},
		{"completed", Status{Completed: true, CurrentStep: 4}, nil, DashboardRoute},
		{"status check failed, fail open", Status{}, errors.New("boom"), DashboardRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRoute(tt.status, tt.err)

			if got != tt.want {
				t.Errorf("NextRoute(%+v, %v) = %q, want %q", tt.status, tt.err, got, tt.want)
			}
		})
	}
}

type fakeRows struct {
	row profile.Row
	err error
}

func (f *fakeRows) GetByUserID(ctx context.Context, userID string) (profile.Row, error) {
	return f.row, f.err
}

func TestGetStatus(t *testing.T) {
	svc := NewService(&fakeRows{row: profile.Row{OnboardingCompleted: false, OnboardingStep: 2}})

	status, err := svc.GetStatus(context.Background(), "usr_1")

	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}

	if status.Completed || status.CurrentStep != 2 {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestGetStatusError(t *testing.T) {
	svc := NewService(&fakeRows{err: errors.New("db down")})

	_, err := svc.GetStatus(context.Background(), "usr_1")

	if err == nil {
		t.Fatal("expected error")
	}
}
