package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSubmission(t *testing.T) {
	svc := NewSubmissionService(newTestDB(t))

	wallet := "0x" + strings.ToUpper(testAddress(5)[2:])
	sub, err := svc.Create(testBountyID(1), wallet, "the result")
	require.NoError(t, err)

	assert.NotZero(t, sub.ID)
	assert.Equal(t, testBountyID(1), sub.BountyID)
	assert.Equal(t, strings.ToLower(wallet), sub.AgentWallet, "wallet stored normalized")
	assert.Equal(t, "the result", sub.Result)
	assert.False(t, sub.SubmittedAt.IsZero())
}

func TestCreateSubmissionValidation(t *testing.T) {
	svc := NewSubmissionService(newTestDB(t))

	_, err := svc.Create(testBountyID(1), "0xnope", "result")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(testBountyID(1), testAddress(5), "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListByBountyChronological(t *testing.T) {
	svc := NewSubmissionService(newTestDB(t))

	first, err := svc.Create(testBountyID(1), testAddress(1), "result A")
	require.NoError(t, err)
	second, err := svc.Create(testBountyID(1), testAddress(2), "result B")
	require.NoError(t, err)

	// Another bounty's submission must not leak in.
	_, err = svc.Create(testBountyID(2), testAddress(3), "other")
	require.NoError(t, err)

	subs, err := svc.ListByBounty(testBountyID(1))
	require.NoError(t, err)

	require.Len(t, subs, 2)
	assert.Equal(t, first.ID, subs[0].ID, "oldest first")
	assert.Equal(t, second.ID, subs[1].ID)

	count, err := svc.CountByBounty(testBountyID(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSubmissionsAllowRepeatAgents(t *testing.T) {
	svc := NewSubmissionService(newTestDB(t))

	// Same agent, same bounty, twice — append-only, no uniqueness rule.
	_, err := svc.Create(testBountyID(1), testAddress(1), "take one")
	require.NoError(t, err)
	_, err = svc.Create(testBountyID(1), testAddress(1), "take two")
	require.NoError(t, err)

	count, err := svc.CountByBounty(testBountyID(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
