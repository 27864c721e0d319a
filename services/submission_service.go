package services

import (
	"fmt"
	"strings"
	"time"

	"bounty-board-system/models"
	"bounty-board-system/utils"

	"gorm.io/gorm"
)

// SubmissionService is the append-only store of agent results. It enforces
// shape only; whether the owning bounty exists and is Open is the
// Coordinator's call.
type SubmissionService struct {
	DB *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{DB: db}
}

// Create appends a submission. The result payload is opaque; no quality
// check happens here or anywhere else in this service.
func (s *SubmissionService) Create(bountyID, agentWallet, result string) (*models.Submission, error) {
	if !utils.IsValidAddress(agentWallet) {
		return nil, fmt.Errorf("%w: invalid wallet address (expected 0x + 40 hex chars)", ErrValidation)
	}
	if strings.TrimSpace(result) == "" {
		return nil, fmt.Errorf("%w: result must not be empty", ErrValidation)
	}

	sub := &models.Submission{
		BountyID:    utils.NormalizeHex(bountyID),
		AgentWallet: utils.NormalizeHex(agentWallet),
		Result:      result,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.DB.Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// ListByBounty returns a bounty's submissions oldest first, the order the
// creator reviews them in.
func (s *SubmissionService) ListByBounty(bountyID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.DB.Where("bounty_id = ?", utils.NormalizeHex(bountyID)).
		Order("submitted_at ASC, id ASC").
		Find(&subs).Error
	return subs, err
}

func (s *SubmissionService) CountByBounty(bountyID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Submission{}).
		Where("bounty_id = ?", utils.NormalizeHex(bountyID)).
		Count(&count).Error
	return count, err
}
