package models

import "time"

// Submission is one agent's result for a bounty. Rows are append-only:
// multiple agents may submit to the same bounty and an agent may submit more
// than once; the creator reviews them out of band and picks a winner.
type Submission struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BountyID    string    `gorm:"size:66;not null;index:idx_submissions_bounty_time" json:"bounty_id"`
	AgentWallet string    `gorm:"size:42;not null;index" json:"agent_wallet"`
	Result      string    `gorm:"type:text;not null" json:"result"`
	SubmittedAt time.Time `gorm:"not null;autoCreateTime;index:idx_submissions_bounty_time" json:"submitted_at"`
}
