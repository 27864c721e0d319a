package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"bounty-board-system/models"
	"bounty-board-system/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBacklog struct {
	bounties []models.Bounty
	err      error
}

func (f *fakeBacklog) ListVisibleBounties() ([]models.Bounty, error) {
	return f.bounties, f.err
}

type submitCall struct {
	bountyID string
	wallet   string
	result   string
}

type fakeSubmitter struct {
	calls []submitCall
	err   error
}

func (f *fakeSubmitter) SubmitWork(bountyID, agentWallet, result string) (*models.Submission, error) {
	f.calls = append(f.calls, submitCall{bountyID, agentWallet, result})
	if f.err != nil {
		return nil, f.err
	}
	return &models.Submission{ID: uint(len(f.calls)), BountyID: bountyID, AgentWallet: agentWallet, Result: result}, nil
}

type fakeRunner struct {
	result string
	err    error
	runs   int
}

func (f *fakeRunner) Run(ctx context.Context, bounty models.Bounty) (string, error) {
	f.runs++
	return f.result, f.err
}

const testWallet = "0x1111111111111111111111111111111111111111"

func openBounty(id string) models.Bounty {
	return models.Bounty{
		ID:          id,
		Title:       "Summarize the whitepaper",
		Description: "Plain-language summary, one page.",
		Status:      models.StatusOpen,
	}
}

func newTestWorker(backlog *fakeBacklog, submitter *fakeSubmitter, runner *fakeRunner, canHandle CanHandleFunc) (*AgentWorker, *ProcessedSet) {
	processed := NewProcessedSet()
	w := NewAgentWorker(backlog, submitter, testWallet, canHandle, runner, processed, 10*time.Millisecond, 20*time.Millisecond)
	return w, processed
}

func TestProcessedSet(t *testing.T) {
	s := NewProcessedSet()
	assert.False(t, s.Contains("0xabc"))
	assert.Equal(t, 0, s.Len())

	s.Add("0xabc")
	s.Add("0xabc")
	assert.True(t, s.Contains("0xabc"))
	assert.Equal(t, 1, s.Len())
}

func TestDefaultCanHandle(t *testing.T) {
	assert.True(t, DefaultCanHandle("Summarize report", "Write a three paragraph summary"))
	assert.True(t, DefaultCanHandle("Odd job", "Nothing keyword-shaped here"), "versatile by default")

	assert.False(t, DefaultCanHandle("Mail a package", "Physical delivery required"))
	assert.False(t, DefaultCanHandle("Customer outreach", "Please phone every customer on the list"))
}

func TestHandleBountySubmitsAndDedups(t *testing.T) {
	submitter := &fakeSubmitter{}
	runner := &fakeRunner{result: "done"}
	w, processed := newTestWorker(&fakeBacklog{}, submitter, runner, nil)

	b := openBounty("0xaaa")
	w.HandleBounty(context.Background(), b)

	require.Len(t, submitter.calls, 1)
	assert.Equal(t, submitCall{"0xaaa", testWallet, "done"}, submitter.calls[0])
	assert.True(t, processed.Contains("0xaaa"))

	// Second sighting of the same bounty is a no-op.
	w.HandleBounty(context.Background(), b)
	assert.Len(t, submitter.calls, 1)
	assert.Equal(t, 1, runner.runs)
}

func TestHandleBountySkipsNonOpen(t *testing.T) {
	submitter := &fakeSubmitter{}
	runner := &fakeRunner{result: "done"}
	w, processed := newTestWorker(&fakeBacklog{}, submitter, runner, nil)

	b := openBounty("0xbbb")
	b.Status = models.StatusCancelled
	w.HandleBounty(context.Background(), b)

	assert.Empty(t, submitter.calls)
	assert.Equal(t, 0, runner.runs)
	assert.True(t, processed.Contains("0xbbb"), "terminal bounty never retried")
}

func TestHandleBountyRespectsPredicate(t *testing.T) {
	submitter := &fakeSubmitter{}
	runner := &fakeRunner{result: "done"}
	reject := func(title, description string) bool { return false }
	w, processed := newTestWorker(&fakeBacklog{}, submitter, runner, reject)

	w.HandleBounty(context.Background(), openBounty("0xccc"))

	assert.Empty(t, submitter.calls)
	assert.Equal(t, 0, runner.runs)
	assert.True(t, processed.Contains("0xccc"))
}

func TestHandleBountyRetriesFailedRun(t *testing.T) {
	submitter := &fakeSubmitter{}
	runner := &fakeRunner{err: errors.New("model unavailable")}
	w, processed := newTestWorker(&fakeBacklog{}, submitter, runner, nil)

	w.HandleBounty(context.Background(), openBounty("0xddd"))

	assert.Empty(t, submitter.calls)
	assert.False(t, processed.Contains("0xddd"), "failed run stays eligible for retry")

	// Next tick succeeds.
	runner.err = nil
	runner.result = "second attempt"
	w.HandleBounty(context.Background(), openBounty("0xddd"))
	require.Len(t, submitter.calls, 1)
	assert.True(t, processed.Contains("0xddd"))
}

func TestHandleBountyClosedUnderneath(t *testing.T) {
	submitter := &fakeSubmitter{err: services.ErrNotOpen}
	runner := &fakeRunner{result: "done"}
	w, processed := newTestWorker(&fakeBacklog{}, submitter, runner, nil)

	w.HandleBounty(context.Background(), openBounty("0xeee"))

	require.Len(t, submitter.calls, 1)
	assert.True(t, processed.Contains("0xeee"), "race with cancellation is final")
}

func TestProcessBacklog(t *testing.T) {
	backlog := &fakeBacklog{bounties: []models.Bounty{openBounty("0x01"), openBounty("0x02")}}
	submitter := &fakeSubmitter{}
	runner := &fakeRunner{result: "done"}
	w, _ := newTestWorker(backlog, submitter, runner, nil)

	require.NoError(t, w.ProcessBacklog(context.Background()))
	assert.Len(t, submitter.calls, 2)

	backlog.err = errors.New("db down")
	assert.Error(t, w.ProcessBacklog(context.Background()))
}

func TestRunStopsOnCancel(t *testing.T) {
	backlog := &fakeBacklog{}
	w, _ := newTestWorker(backlog, &fakeSubmitter{}, &fakeRunner{result: "done"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
