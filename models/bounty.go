package models

import "time"

// BountyStatus mirrors the on-chain enum (0=Open, 1=Completed, 2=Cancelled).
type BountyStatus int

const (
	StatusOpen BountyStatus = iota
	StatusCompleted
	StatusCancelled
)

func (s BountyStatus) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is allowed out of s.
func (s BountyStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Bounty is the off-chain mirror of a bounty posted on the ledger.
// The ID is the bytes32 hex string assigned on-chain ("0x" + 64 hex chars);
// the contract is the source of truth for funds and status; rows here only
// carry the metadata too expensive to store on-chain, reconciled by
// externally-confirmed transactions.
type Bounty struct {
	ID    string `gorm:"primaryKey;size:66" json:"id"`
	Slug  string `gorm:"size:220" json:"slug"`
	Title string `gorm:"size:200;not null" json:"title"`

	Description string `gorm:"type:text;not null" json:"description"`

	CreatorAddress string `gorm:"size:42;not null;index" json:"creator_address"`

	// Amount is the base-unit (wei) value as an exact decimal string, never
	// a float: uint256 values overflow every native numeric type.
	Amount string `gorm:"size:78;not null" json:"amount"`

	// AmountDisplay is a non-authoritative float projection for UIs.
	AmountDisplay float64 `gorm:"not null" json:"amount_display"`

	Status BountyStatus `gorm:"not null;default:0;index:idx_bounties_status_created" json:"status"`

	// Attachments holds comma-separated public URLs of reference materials.
	Attachments string `gorm:"type:text" json:"attachments,omitempty"`

	CreatedAt   time.Time  `gorm:"not null;index:idx_bounties_status_created" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// HunterAddress is set exactly when Status becomes Completed.
	HunterAddress *string `gorm:"size:42" json:"hunter_address,omitempty"`

	Submissions []Submission `gorm:"foreignKey:BountyID;constraint:OnDelete:CASCADE" json:"submissions,omitempty"`
}
