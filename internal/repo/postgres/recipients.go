package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/movepost/movepost/internal/domain/mover"
	"github.com/movepost/movepost/internal/observability"
)

var ErrRecipientNotFound = errors.New("recipient not found")

type RecipientsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRecipientsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RecipientsRepo {
	return &RecipientsRepo{pool: pool, prom: prom}
}

func (r *RecipientsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *RecipientsRepo) GetByID(ctx context.Context, id string) (mover.Recipient, error) {
	var rec mover.Recipient
	var fullName, phone, smartyKey, moveDate *string

	err := r.observe("recipients.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, full_name, street_address, city, state, zip, phone, smarty_key, move_date, created_at
			 FROM recipients
			 WHERE id = $1`,
			id,
		).Scan(
			&rec.ID,
			&fullName,
			&rec.StreetAddress,
			&rec.City,
			&rec.State,
			&rec.Zip,
			&phone,
			&smartyKey,
			&moveDate,
			&rec.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mover.Recipient{}, ErrRecipientNotFound
		}

		return mover.Recipient{}, err
	}

	if fullName != nil {
		rec.FullName = *fullName
	}

	if phone != nil {
		rec.Phone = *phone
	}

	if smartyKey != nil {
		rec.SmartyKey = *smartyKey
	}

	if moveDate != nil {
		rec.MoveDate = *moveDate
	}

	return rec, nil
}
