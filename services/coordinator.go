package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"bounty-board-system/models"
	"bounty-board-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Coordinator ties the stores together and owns the lifecycle rules:
// registration idempotency, open-only submission gating, and reconciliation
// of externally-confirmed status changes. It never touches the chain itself.
type Coordinator struct {
	Bounties    *BountyService
	Submissions *SubmissionService
	Window      utils.VisibilityWindow

	// MyBountiesOpenOnly hides completed/cancelled items from the creator's
	// dashboard view when set.
	MyBountiesOpenOnly bool
}

func NewCoordinator(db *gorm.DB, window utils.VisibilityWindow, myBountiesOpenOnly bool) *Coordinator {
	return &Coordinator{
		Bounties:           NewBountyService(db),
		Submissions:        NewSubmissionService(db),
		Window:             window,
		MyBountiesOpenOnly: myBountiesOpenOnly,
	}
}

// RegisterBounty stores metadata for a bounty whose on-chain creation has
// already been confirmed. Retried registrations (double-submitted creation
// calls, at-least-once event delivery) are absorbed by ErrDuplicateBounty.
func (co *Coordinator) RegisterBounty(in CreateBountyInput) (*models.Bounty, error) {
	return co.Bounties.Create(in)
}

// SubmitWork accepts an agent's result for an Open bounty. Multiple agents
// may each submit to the same bounty; the service never picks a winner,
// the creator does, out of band.
func (co *Coordinator) SubmitWork(bountyID, agentWallet, result string) (*models.Submission, error) {
	bounty, err := co.Bounties.GetByID(bountyID)
	if err != nil {
		return nil, err
	}
	if bounty.Status != models.StatusOpen {
		return nil, fmt.Errorf("%w: current status %s", ErrNotOpen, bounty.Status)
	}
	return co.Submissions.Create(bounty.ID, agentWallet, result)
}

// RecordExternalStatusChange is the single entry point by which observed
// on-chain truth is mirrored locally. Completion requires the hunter that
// the release transaction paid.
func (co *Coordinator) RecordExternalStatusChange(bountyID string, newStatus models.BountyStatus, hunterAddress string) (*models.Bounty, error) {
	return co.Bounties.UpdateStatus(bountyID, newStatus, hunterAddress)
}

// ListVisibleBounties returns the Open backlog past the visibility window,
// newest first.
func (co *Coordinator) ListVisibleBounties() ([]models.Bounty, error) {
	return co.Bounties.ListOpenBefore(co.Window.Cutoff(time.Now().UTC()))
}

// --- HTTP handlers ---

type createBountyRequest struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	CreatorAddress string `json:"creator_address"`
	Amount         string `json:"amount"`
}

type statusUpdateRequest struct {
	Status        int    `json:"status"`
	HunterAddress string `json:"hunter_address"`
}

type submitWorkRequest struct {
	WalletAddress string `json:"wallet_address"`
	Result        string `json:"result"`
}

// ListBounties handles GET /api/bounties: Open bounties older than the
// visibility cutoff. Fresh bounties are deliberately held back so agents
// discover them through the event feed instead of polling this endpoint.
func (co *Coordinator) ListBounties(c *fiber.Ctx) error {
	bounties, err := co.ListVisibleBounties()
	if err != nil {
		return co.respondError(c, err)
	}
	return c.JSON(bounties)
}

// GetMyBounties handles GET /api/my-bounties/:creatorAddress, the
// creator's own view, exempt from the visibility window.
func (co *Coordinator) GetMyBounties(c *fiber.Ctx) error {
	creatorAddress := c.Params("creatorAddress")
	if !utils.IsValidAddress(creatorAddress) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid creator address format"})
	}

	bounties, err := co.Bounties.ListByCreator(creatorAddress, co.MyBountiesOpenOnly)
	if err != nil {
		return co.respondError(c, err)
	}
	return c.JSON(bounties)
}

// GetBounty handles GET /api/bounty/:id. No time restriction here: agents
// call this to resolve metadata after event-based discovery.
func (co *Coordinator) GetBounty(c *fiber.Ctx) error {
	id := c.Params("id")
	if !utils.IsValidBountyID(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid bounty ID format (expected 0x + 64 hex chars)"})
	}

	bounty, err := co.Bounties.GetByID(id)
	if err != nil {
		return co.respondError(c, err)
	}
	return c.JSON(bounty)
}

// CreateBounty handles POST /api/bounty: metadata registration after a
// confirmed on-chain creation transaction.
func (co *Coordinator) CreateBounty(c *fiber.Ctx) error {
	var req createBountyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	bounty, err := co.RegisterBounty(CreateBountyInput{
		ID:             req.ID,
		Title:          req.Title,
		Description:    req.Description,
		CreatorAddress: req.CreatorAddress,
		Amount:         req.Amount,
	})
	if err != nil {
		return co.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      bounty.ID,
		"message": "bounty metadata created successfully",
	})
}

// UpdateBountyStatus handles PATCH /api/bounty/:id/status: reconciliation
// of an already-confirmed cancel/release transaction.
func (co *Coordinator) UpdateBountyStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if !utils.IsValidBountyID(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid bounty ID format (expected 0x + 64 hex chars)"})
	}

	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	bounty, err := co.RecordExternalStatusChange(id, models.BountyStatus(req.Status), req.HunterAddress)
	if err != nil {
		return co.respondError(c, err)
	}
	return c.JSON(bounty)
}

// CreateSubmission handles POST /api/bounty/:id/submit.
func (co *Coordinator) CreateSubmission(c *fiber.Ctx) error {
	id := c.Params("id")
	if !utils.IsValidBountyID(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid bounty ID format (expected 0x + 64 hex chars)"})
	}

	var req submitWorkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	sub, err := co.SubmitWork(id, req.WalletAddress, req.Result)
	if err != nil {
		return co.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"submission_id": sub.ID,
		"bounty_id":     sub.BountyID,
		"message":       "submission received successfully",
	})
}

// ListSubmissions handles GET /api/bounty/:id/submissions, chronological
// review order for the creator. Visible regardless of bounty status.
func (co *Coordinator) ListSubmissions(c *fiber.Ctx) error {
	id := c.Params("id")
	if !utils.IsValidBountyID(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid bounty ID format (expected 0x + 64 hex chars)"})
	}

	if _, err := co.Bounties.GetByID(id); err != nil {
		return co.respondError(c, err)
	}

	subs, err := co.Submissions.ListByBounty(id)
	if err != nil {
		return co.respondError(c, err)
	}
	return c.JSON(subs)
}

// UploadAttachments handles POST /api/bounty/:id/attachments: reference
// materials for agents, stored in the object store while the bounty is Open.
func (co *Coordinator) UploadAttachments(c *fiber.Ctx) error {
	id := c.Params("id")
	if !utils.IsValidBountyID(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid bounty ID format (expected 0x + 64 hex chars)"})
	}
	if !utils.ObjectStoreReady() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "attachment storage not configured"})
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at least one file is required (multipart field: files)"})
	}

	var bounty *models.Bounty
	for _, fileHeader := range form.File["files"] {
		url, err := utils.UploadAttachment(fileHeader)
		if err != nil {
			log.Printf("❌ Failed to upload attachment for %s: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload attachment"})
		}
		bounty, err = co.Bounties.AppendAttachment(id, url)
		if err != nil {
			return co.respondError(c, err)
		}
	}

	return c.JSON(bounty)
}

// respondError maps the lifecycle taxonomy onto HTTP statuses. Unexpected
// persistence failures stay opaque and are never reported as a client problem.
func (co *Coordinator) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicateBounty),
		errors.Is(err, ErrNotOpen),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrMissingHunter):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("❌ Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
