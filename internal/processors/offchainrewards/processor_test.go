package offchainrewards

import (
	"database/sql"
	"testing"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/testutil"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/russross/meddler"
	"github.com/stretchr/testify/require"
)

var (
	rewardsContract = testutil.Contract(800)
	rewardContract  = testutil.Contract(801)
	rewardToken     = concordium.TokenID{0x05}

	account = testutil.Account(0x4a)
)

func newTestProcessor(t *testing.T) (*OffchainRewardsProcessor, *sql.DB) {
	t.Helper()

	database := testutil.NewTestDB(t)
	p, err := NewOffchainRewardsProcessor(config.ProcessorConfig{
		Type:         Type,
		Name:         "offchain",
		ModuleRef:    testutil.ModuleRef(7).String(),
		ContractName: "offchain_rewards",
	}, database, logger.NewNopLogger())
	require.NoError(t, err)

	return p.(*OffchainRewardsProcessor), database
}

func process(t *testing.T, p *OffchainRewardsProcessor, database *sql.DB, events ...[]byte) error {
	t.Helper()

	return testutil.InTx(t, database, func(tx *sql.Tx) error {
		_, err := p.ProcessEvents(t.Context(), tx, processor.CallContext{
			BlockHeight: 11,
			BlockTime:   testutil.GenesisTime,
			Contract:    rewardsContract,
		}, events)
		return err
	})
}

func claimed(nonce uint64, rewardID string, amount int64) []byte {
	return testutil.OffchainClaimed(account, nonce, []byte(rewardID), rewardContract, rewardToken, amount)
}

func storedNonce(t *testing.T, database *sql.DB) uint64 {
	t.Helper()

	var rewardee Rewardee
	require.NoError(t, meddler.QueryRow(database, &rewardee, "SELECT * FROM offchain_rewardees"))
	return rewardee.Nonce
}

func TestNonceStrictness(t *testing.T) {
	p, database := newTestProcessor(t)

	require.NoError(t, process(t, p, database, claimed(0, "r-1", 10), claimed(1, "r-2", 20)))
	require.Equal(t, uint64(2), storedNonce(t, database))

	tests := []struct {
		name  string
		nonce uint64
	}{
		{name: "replayed nonce", nonce: 1},
		{name: "skipped nonce", nonce: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := process(t, p, database, claimed(tt.nonce, "r-x", 1))
			require.ErrorIs(t, err, processor.ErrInvalidState)
			require.ErrorContains(t, err, "expected 2")
			require.Equal(t, uint64(2), storedNonce(t, database))
		})
	}

	require.NoError(t, process(t, p, database, claimed(2, "r-3", 30)))
	require.Equal(t, uint64(3), storedNonce(t, database))
	require.Equal(t, 3, testutil.Count(t, database, claimsTable, ""))
}

func TestFirstClaimNeedsNonceZero(t *testing.T) {
	p, database := newTestProcessor(t)

	err := process(t, p, database, claimed(1, "r-1", 10))
	require.ErrorIs(t, err, processor.ErrInvalidState)
	require.Zero(t, testutil.Count(t, database, rewardeesTable, ""))
}

func TestDuplicateRewardID(t *testing.T) {
	p, database := newTestProcessor(t)

	require.NoError(t, process(t, p, database, claimed(0, "reward", 10)))

	err := process(t, p, database, claimed(1, "reward", 10))
	require.ErrorIs(t, err, processor.ErrInvalidState)
	require.ErrorContains(t, err, "already claimed")
	require.Equal(t, uint64(1), storedNonce(t, database))
}

func TestClaimRecord(t *testing.T) {
	p, database := newTestProcessor(t)

	require.NoError(t, process(t, p, database,
		testutil.TreasuryUpdated(testutil.AccountAddr(0x01)),
		claimed(0, "\x01\x02", 99),
	))

	var claim RewardClaim
	require.NoError(t, meddler.QueryRow(database, &claim, "SELECT * FROM offchain_reward_claims"))
	require.Equal(t, "0102", claim.RewardID)
	require.Equal(t, account, claim.Account)
	require.Equal(t, rewardToken, claim.RewardTokenID)
	require.Equal(t, int64(99), claim.RewardAmount.IntPart())
	require.Len(t, claim.ClaimID, 36)

	page, err := p.QueryProjection(t.Context(), rewardsContract, "claims",
		processor.Query{Holder: account.String(), TokenID: rewardToken.String()})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	_, err = p.QueryProjection(t.Context(), rewardsContract, "claims", processor.Query{Holder: "not-an-address"})
	require.ErrorIs(t, err, processor.ErrInvalidQuery)
}
