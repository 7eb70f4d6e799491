package campaign

import "time"

// Campaign is send metadata only: the gateway stamps its id and owner onto
// outgoing postcards but never mutates it.
type Campaign struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	DesignURL string    `json:"designUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
