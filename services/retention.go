// services/retention.go
package services

import (
	"log"
	"time"

	"bounty-board-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// SweepCancelled deletes bounties cancelled at least age ago, cascading to
// their submissions in the same transaction. Returns the number of bounties
// removed. This is the only path that ever deletes rows, and it is opt-in.
func (co *Coordinator) SweepCancelled(age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)

	var removed int64
	err := co.Bounties.DB.Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Bounty{}).
			Where("status = ? AND cancelled_at <= ?", models.StatusCancelled, cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		// Explicit cascade keeps the sweep portable across drivers that
		// don't enforce the FK constraint.
		if err := tx.Where("bounty_id IN ?", ids).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Bounty{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}

// StartRetentionScheduler runs SweepCancelled hourly.
func (co *Coordinator) StartRetentionScheduler(age time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			removed, err := co.SweepCancelled(age)
			if err != nil {
				log.Printf("[Retention] sweep failed: %v", err)
				return
			}
			if removed > 0 {
				log.Printf("[Retention] removed %d cancelled bounties older than %s", removed, age)
			}
		}),
	)
}
