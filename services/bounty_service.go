package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bounty-board-system/models"
	"bounty-board-system/utils"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BountyService is the authoritative off-chain mirror of bounty metadata.
// It enforces shape (codec validation), creation idempotency, and status
// transition legality; lifecycle policy above that lives in the Coordinator.
type BountyService struct {
	DB *gorm.DB
}

func NewBountyService(db *gorm.DB) *BountyService {
	return &BountyService{DB: db}
}

// CreateBountyInput carries the metadata registered after the on-chain
// creation transaction is confirmed. Amount is the base-unit decimal string.
type CreateBountyInput struct {
	ID             string
	Title          string
	Description    string
	CreatorAddress string
	Amount         string
}

func (in CreateBountyInput) validate() error {
	if !utils.IsValidBountyID(in.ID) {
		return fmt.Errorf("%w: invalid bounty ID format (expected 0x + 64 hex chars)", ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" || len(in.Title) > 200 {
		return fmt.Errorf("%w: title must be 1-200 characters", ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description must not be empty", ErrValidation)
	}
	if !utils.IsValidAddress(in.CreatorAddress) {
		return fmt.Errorf("%w: invalid creator address (expected 0x + 40 hex chars)", ErrValidation)
	}
	if !utils.IsValidAmount(in.Amount) {
		return fmt.Errorf("%w: amount must be a non-negative integer within uint256 range", ErrValidation)
	}
	return nil
}

// Create inserts a new bounty with status Open. The primary-key insert is
// the idempotency guard: a re-registered identifier fails with
// ErrDuplicateBounty instead of producing a second row.
func (s *BountyService) Create(in CreateBountyInput) (*models.Bounty, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	bounty := &models.Bounty{
		ID:             utils.NormalizeHex(in.ID),
		Slug:           slug.Make(in.Title),
		Title:          in.Title,
		Description:    in.Description,
		CreatorAddress: utils.NormalizeHex(in.CreatorAddress),
		Amount:         in.Amount,
		AmountDisplay:  utils.BaseUnitsToDisplay(in.Amount),
		Status:         models.StatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.DB.Create(bounty).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBounty, bounty.ID)
		}
		return nil, err
	}
	return bounty, nil
}

// GetByID looks a bounty up by its normalized identifier.
func (s *BountyService) GetByID(id string) (*models.Bounty, error) {
	var bounty models.Bounty
	if err := s.DB.First(&bounty, "id = ?", utils.NormalizeHex(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, utils.NormalizeHex(id))
		}
		return nil, err
	}
	return &bounty, nil
}

// ListOpenBefore returns Open bounties created before cutoff, newest first.
// This backs the public listing endpoint behind the visibility window.
func (s *BountyService) ListOpenBefore(cutoff time.Time) ([]models.Bounty, error) {
	var bounties []models.Bounty
	err := s.DB.Where("status = ? AND created_at < ?", models.StatusOpen, cutoff).
		Order("created_at DESC").
		Find(&bounties).Error
	return bounties, err
}

// ListByCreator returns a creator's bounties newest first, with no time
// filter: creators already know their identifiers, so the visibility
// window does not apply to them.
func (s *BountyService) ListByCreator(creatorAddress string, openOnly bool) ([]models.Bounty, error) {
	q := s.DB.Where("creator_address = ?", utils.NormalizeHex(creatorAddress))
	if openOnly {
		q = q.Where("status = ?", models.StatusOpen)
	}
	var bounties []models.Bounty
	err := q.Order("created_at DESC").Find(&bounties).Error
	return bounties, err
}

// UpdateStatus reconciles an externally-confirmed on-chain status change.
// The read-modify-write runs in one transaction with a row lock so two
// concurrent reconciliations of the same bounty cannot lose an update.
// Legal transitions are Open -> Completed (hunter required) and
// Open -> Cancelled only.
func (s *BountyService) UpdateStatus(id string, newStatus models.BountyStatus, hunterAddress string) (*models.Bounty, error) {
	id = utils.NormalizeHex(id)

	if newStatus != models.StatusOpen && newStatus != models.StatusCompleted && newStatus != models.StatusCancelled {
		return nil, fmt.Errorf("%w: unknown status %d", ErrValidation, newStatus)
	}
	if newStatus == models.StatusCompleted {
		if hunterAddress == "" {
			return nil, ErrMissingHunter
		}
		if !utils.IsValidAddress(hunterAddress) {
			return nil, fmt.Errorf("%w: invalid hunter address (expected 0x + 40 hex chars)", ErrValidation)
		}
	}

	var updated models.Bounty
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// SQLite (tests) serializes writers on its own and rejects FOR UPDATE.
		if tx.Dialector.Name() == "postgres" {
			tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var bounty models.Bounty
		if err := tx.First(&bounty, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return err
		}

		if bounty.Status != models.StatusOpen || newStatus == models.StatusOpen {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, bounty.Status, newStatus)
		}

		now := time.Now().UTC()
		bounty.Status = newStatus
		bounty.UpdatedAt = now
		switch newStatus {
		case models.StatusCompleted:
			hunter := utils.NormalizeHex(hunterAddress)
			bounty.HunterAddress = &hunter
			bounty.CompletedAt = &now
		case models.StatusCancelled:
			bounty.CancelledAt = &now
		}

		if err := tx.Save(&bounty).Error; err != nil {
			return err
		}
		updated = bounty
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AppendAttachment records an uploaded reference-material URL on the bounty.
func (s *BountyService) AppendAttachment(id, url string) (*models.Bounty, error) {
	id = utils.NormalizeHex(id)

	var updated models.Bounty
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var bounty models.Bounty
		if err := tx.First(&bounty, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return err
		}
		if bounty.Status != models.StatusOpen {
			return fmt.Errorf("%w: current status %s", ErrNotOpen, bounty.Status)
		}

		if bounty.Attachments == "" {
			bounty.Attachments = url
		} else {
			bounty.Attachments = bounty.Attachments + "," + url
		}
		bounty.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&bounty).Error; err != nil {
			return err
		}
		updated = bounty
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
