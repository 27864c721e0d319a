// workers/event_worker.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"bounty-board-system/models"
	"bounty-board-system/services"
)

// BountyCreatedEvent is one creation notification from the chain indexer.
// Delivery is at-least-once and unordered; duplicates are absorbed by the
// registration idempotency guard.
type BountyCreatedEvent struct {
	ID      string `json:"id"`
	Creator string `json:"creator"`
	Amount  string `json:"amount"`
}

type eventFeedResponse struct {
	Events []BountyCreatedEvent `json:"events"`
}

// bountyMetadata is the off-chain title/description resolved per event.
// Too expensive to carry on-chain, so the indexer serves it separately.
type bountyMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Registrar is the slice of the Coordinator the worker needs.
type Registrar interface {
	RegisterBounty(in services.CreateBountyInput) (*models.Bounty, error)
}

// BountyEventWorker polls the indexer feed for BountyCreated events,
// resolves metadata, and registers each bounty locally.
type BountyEventWorker struct {
	registrar    Registrar
	baseURL      string
	pollInterval time.Duration
	errorBackoff time.Duration
	httpClient   *http.Client
	lastSyncTime time.Time
}

func NewBountyEventWorker(registrar Registrar, baseURL string, pollInterval, errorBackoff time.Duration) *BountyEventWorker {
	return &BountyEventWorker{
		registrar:    registrar,
		baseURL:      baseURL,
		pollInterval: pollInterval,
		errorBackoff: errorBackoff,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		lastSyncTime: time.Now().UTC().Add(-24 * time.Hour),
	}
}

// Run polls until ctx is cancelled. A failed poll retries after the longer
// error backoff; cancellation stops before the next tick, never mid-fetch.
func (w *BountyEventWorker) Run(ctx context.Context) {
	log.Println("🔁 Starting bounty event worker…")

	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Bounty event worker stopped")
			return
		case <-timer.C:
		}

		if err := w.pollOnce(ctx); err != nil {
			log.Printf("❌ Event poll failed: %v", err)
			timer.Reset(w.errorBackoff)
			continue
		}
		timer.Reset(w.pollInterval)
	}
}

// pollOnce fetches events since the last successful sync and registers
// them. The sync cursor only advances when the whole batch lands, so a
// partial failure re-fetches the same window next tick.
func (w *BountyEventWorker) pollOnce(ctx context.Context) error {
	batchStart := time.Now().UTC()

	events, err := w.fetchEvents(ctx, w.lastSyncTime)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		w.lastSyncTime = batchStart
		return nil
	}

	log.Printf("📥 Received %d bounty creation event(s)", len(events))

	for _, ev := range events {
		meta, err := w.fetchMetadata(ctx, ev.ID)
		if err != nil {
			return fmt.Errorf("metadata fetch for %s: %w", ev.ID, err)
		}

		_, err = w.registrar.RegisterBounty(services.CreateBountyInput{
			ID:             ev.ID,
			Title:          meta.Title,
			Description:    meta.Description,
			CreatorAddress: ev.Creator,
			Amount:         ev.Amount,
		})
		switch {
		case errors.Is(err, services.ErrDuplicateBounty):
			// already registered — redelivery, not a failure
		case err != nil:
			return fmt.Errorf("register %s: %w", ev.ID, err)
		default:
			log.Printf("🎯 Registered bounty %s (%s)", ev.ID, meta.Title)
		}
	}

	w.lastSyncTime = batchStart
	return nil
}

func (w *BountyEventWorker) fetchEvents(ctx context.Context, since time.Time) ([]BountyCreatedEvent, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid event feed URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath("/events")
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call event feed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("event feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var response eventFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode event feed response: %w", err)
	}
	return response.Events, nil
}

func (w *BountyEventWorker) fetchMetadata(ctx context.Context, bountyID string) (*bountyMetadata, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid event feed URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath("/metadata", bountyID)

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("metadata endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var meta bountyMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata response: %w", err)
	}
	return &meta, nil
}
