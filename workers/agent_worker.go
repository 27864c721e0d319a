// workers/agent_worker.go
package workers

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"bounty-board-system/models"
	"bounty-board-system/services"
)

// ProcessedSet remembers which bounties a worker has already handled so a
// re-listed bounty isn't attempted twice. One set per worker process, passed
// in by reference, no package-level state. No eviction: entries live as
// long as the process.
type ProcessedSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{ids: make(map[string]struct{})}
}

func (s *ProcessedSet) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

func (s *ProcessedSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *ProcessedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// CanHandleFunc decides whether this worker should attempt a bounty from its
// text fields alone. The matching logic is the worker's business, not the
// coordinator's.
type CanHandleFunc func(title, description string) bool

// DefaultCanHandle accepts text-based tasks and skips anything needing
// physical action. Unmatched bounties are still attempted: a generative
// worker handles most task types.
func DefaultCanHandle(title, description string) bool {
	combined := strings.ToLower(title) + " " + strings.ToLower(description)

	skipKeywords := []string{"physical", "mail", "ship", "call", "phone"}
	for _, kw := range skipKeywords {
		if strings.Contains(combined, kw) {
			return false
		}
	}

	return true
}

// TaskRunner produces a result for a bounty. The prompt construction and
// model call behind it are entirely outside this package.
type TaskRunner interface {
	Run(ctx context.Context, bounty models.Bounty) (string, error)
}

// BacklogSource lists the currently discoverable Open bounties.
type BacklogSource interface {
	ListVisibleBounties() ([]models.Bounty, error)
}

// Submitter accepts a finished result.
type Submitter interface {
	SubmitWork(bountyID, agentWallet, result string) (*models.Submission, error)
}

// AgentWorker is the worker-side dispatcher: it catches up on the visible
// backlog each tick, filters through the dedup set and the CanHandle
// predicate, runs the task, and submits the result under its wallet.
type AgentWorker struct {
	backlog      BacklogSource
	submitter    Submitter
	wallet       string
	canHandle    CanHandleFunc
	runner       TaskRunner
	processed    *ProcessedSet
	pollInterval time.Duration
	errorBackoff time.Duration
}

func NewAgentWorker(
	backlog BacklogSource,
	submitter Submitter,
	wallet string,
	canHandle CanHandleFunc,
	runner TaskRunner,
	processed *ProcessedSet,
	pollInterval, errorBackoff time.Duration,
) *AgentWorker {
	if canHandle == nil {
		canHandle = DefaultCanHandle
	}
	return &AgentWorker{
		backlog:      backlog,
		submitter:    submitter,
		wallet:       wallet,
		canHandle:    canHandle,
		runner:       runner,
		processed:    processed,
		pollInterval: pollInterval,
		errorBackoff: errorBackoff,
	}
}

// Run polls the backlog until ctx is cancelled. Cancellation stops before
// the next tick rather than mid-batch.
func (w *AgentWorker) Run(ctx context.Context) {
	log.Printf("🤖 Starting agent worker (wallet %s)…", w.wallet)

	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Agent worker stopped")
			return
		case <-timer.C:
		}

		if err := w.ProcessBacklog(ctx); err != nil {
			log.Printf("❌ Backlog pass failed: %v", err)
			timer.Reset(w.errorBackoff)
			continue
		}
		timer.Reset(w.pollInterval)
	}
}

// ProcessBacklog handles every visible bounty not yet in the dedup set.
func (w *AgentWorker) ProcessBacklog(ctx context.Context) error {
	bounties, err := w.backlog.ListVisibleBounties()
	if err != nil {
		return err
	}

	for _, bounty := range bounties {
		if ctx.Err() != nil {
			return nil
		}
		w.HandleBounty(ctx, bounty)
	}
	return nil
}

// HandleBounty runs one bounty through the dispatch rules. A failed task
// run is left out of the dedup set so the next tick retries it; everything
// else (handled, skipped, or raced to a terminal state) is marked done.
func (w *AgentWorker) HandleBounty(ctx context.Context, bounty models.Bounty) {
	if w.processed.Contains(bounty.ID) {
		return
	}

	if bounty.Status != models.StatusOpen {
		w.processed.Add(bounty.ID)
		return
	}

	if !w.canHandle(bounty.Title, bounty.Description) {
		log.Printf("⏭️  Skipping bounty %s (can't handle this type)", bounty.ID)
		w.processed.Add(bounty.ID)
		return
	}

	log.Printf("📋 Working on bounty %s: %s", bounty.ID, bounty.Title)
	result, err := w.runner.Run(ctx, bounty)
	if err != nil {
		log.Printf("❌ Task run failed for %s: %v", bounty.ID, err)
		return
	}

	if _, err := w.submitter.SubmitWork(bounty.ID, w.wallet, result); err != nil {
		if errors.Is(err, services.ErrNotOpen) || errors.Is(err, services.ErrNotFound) {
			// bounty closed under us — nothing left to do here
			w.processed.Add(bounty.ID)
			return
		}
		log.Printf("❌ Submission failed for %s: %v", bounty.ID, err)
		return
	}

	log.Printf("✅ Submitted result for bounty %s", bounty.ID)
	w.processed.Add(bounty.ID)
}
