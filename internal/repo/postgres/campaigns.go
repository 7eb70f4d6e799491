package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/movepost/movepost/internal/domain/campaign"
	"github.com/movepost/movepost/internal/observability"
)

var ErrCampaignNotFound = errors.New("campaign not found")

type CampaignsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCampaignsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CampaignsRepo {
	return &CampaignsRepo{pool: pool, prom: prom}
}

func (r *CampaignsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CampaignsRepo) GetByID(ctx context.Context, id string) (campaign.Campaign, error) {
	var c campaign.Campaign

	err := r.observe("campaigns.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, user_id, design_url, created_at, updated_at
			 FROM campaigns
			 WHERE id = $1`,
			id,
		).Scan(
			&c.ID,
			&c.Name,
			&c.UserID,
			&c.DesignURL,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return campaign.Campaign{}, ErrCampaignNotFound
		}

		return campaign.Campaign{}, err
	}

	return c, nil
}
