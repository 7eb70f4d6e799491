package mover

import "time"

// Recipient is a new-mover lead: the target address for a postcard send.
// SmartyKey and MoveDate are provenance carried from the address feed; they
// ride along as vendor metadata so a postcard can be traced back to its lead.
type Recipient struct {
	ID            string    `json:"id"`
	FullName      string    `json:"fullName"`
	StreetAddress string    `json:"streetAddress"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Zip           string    `json:"zip"`
	Phone         string    `json:"phone,omitempty"`
	SmartyKey     string    `json:"smartyKey,omitempty"`
	MoveDate      string    `json:"moveDate,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
