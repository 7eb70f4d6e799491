package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/movepost/movepost/internal/config"
	"github.com/movepost/movepost/internal/profile"
	"github.com/movepost/movepost/internal/security"
)

// EnsureAdminUser seeds the first super_admin account and its profile row.
// No-op when the account exists or no seed credentials are configured.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()
	id := uuid.NewString()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)`,
		id, cfg.AdminEmail, hash, now,
	)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO profile (user_id, email, full_name, role, is_blocked, email_notifications,
			onboarding_completed, onboarding_step, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, false, true, true, 0, $5, $5)`,
		id, cfg.AdminEmail, cfg.AdminName, profile.RoleSuperAdmin, now,
	)

	return err
}
