package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/movepost/movepost/internal/observability"
	"github.com/movepost/movepost/internal/profile"
)

type ProfilesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProfilesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProfilesRepo {
	return &ProfilesRepo{pool: pool, prom: prom}
}

func (r *ProfilesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const profileColumns = `user_id, email, first_name, last_name, full_name, role, is_blocked,
	phone, company, timezone, email_notifications, onboarding_completed, onboarding_step,
	created_at, updated_at`

func (r *ProfilesRepo) GetByUserID(ctx context.Context, userID string) (profile.Row, error) {
	var row profile.Row

	err := r.observe("profiles.get_by_user_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+profileColumns+` FROM profile WHERE user_id = $1`,
			userID,
		).Scan(
			&row.UserID,
			&row.Email,
			&row.FirstName,
			&row.LastName,
			&row.FullName,
			&row.Role,
			&row.IsBlocked,
			&row.Phone,
			&row.Company,
			&row.Timezone,
			&row.EmailNotifications,
			&row.OnboardingCompleted,
			&row.OnboardingStep,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Row{}, profile.ErrNotFound
		}

		return profile.Row{}, err
	}

	return row, nil
}

// allowed update columns; anything else is a programming error upstream.
var updatableProfileColumns = map[string]struct{}{
	"first_name":           {},
	"last_name":            {},
	"full_name":            {},
	"phone":                {},
	"company":              {},
	"timezone":             {},
	"email_notifications":  {},
	"onboarding_completed": {},
	"onboarding_step":      {},
	"updated_at":           {},
}

// Update writes only the provided columns. Column names are sorted so the
// generated SQL is deterministic.
func (r *ProfilesRepo) Update(ctx context.Context, userID string, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}

	columns := make([]string, 0, len(changes))

	for col := range changes {
		if _, ok := updatableProfileColumns[col]; !ok {
			return fmt.Errorf("profile column %q is not updatable", col)
		}

		columns = append(columns, col)
	}

	sort.Strings(columns)

	sets := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+1)

	for i, col := range columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, changes[col])
	}

	args = append(args, userID)

	query := fmt.Sprintf("UPDATE profile SET %s WHERE user_id = $%d",
		strings.Join(sets, ", "), len(columns)+1)

	var tag pgconn.CommandTag

	err := r.observe("profiles.update", func() error {
		var execErr error
		tag, execErr = r.pool.Exec(ctx, query, args...)
		return execErr
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return profile.ErrNotFound
	}

	return nil
}

// CreateDefault inserts the signup-time profile row: role "user", nothing
// blocked, onboarding at step 1.
func (r *ProfilesRepo) CreateDefault(ctx context.Context, userID, email, role string) error {
	now := time.Now().UTC()

	return r.observe("profiles.create_default", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO profile (user_id, email, role, is_blocked, email_notifications,
				onboarding_completed, onboarding_step, created_at, updated_at)
			 VALUES ($1, $2, $3, false, true, false, 1, $4, $4)`,
			userID, email, role, now,
		)
		return err
	})
}
