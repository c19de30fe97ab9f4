package listener

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/goran-ethernal/RWAListener/internal/common"
	"github.com/goran-ethernal/RWAListener/internal/db"
	blockfetcher "github.com/goran-ethernal/RWAListener/internal/fetcher"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/processors/securitysft"
	"github.com/goran-ethernal/RWAListener/internal/testutil"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	pkglistener "github.com/goran-ethernal/RWAListener/pkg/listener"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

const (
	startHeight     = 10
	sftContractName = "rwa_security_sft"
)

var (
	sftModule   = testutil.ModuleRef(1)
	otherModule = testutil.ModuleRef(2)

	tokenA = concordium.TokenID{0x01}

	alice = testutil.Account(0xa1)
	bob   = testutil.Account(0xb0)
	carol = testutil.Account(0xc0)

	errBoom = errors.New("boom")
)

type env struct {
	t    *testing.T
	db   *sql.DB
	node *testutil.FakeNode
	sft  processor.Processor
	cfg  config.ListenerConfig
}

func newEnv(t *testing.T) *env {
	t.Helper()

	database := testutil.NewTestDB(t)
	sft, err := securitysft.NewSecurityTokenProcessor(config.ProcessorConfig{
		Type:         securitysft.Type,
		Name:         "sft",
		ModuleRef:    sftModule.String(),
		ContractName: sftContractName,
	}, database, logger.NewNopLogger())
	require.NoError(t, err)

	start := uint64(startHeight)
	return &env{
		t:    t,
		db:   database,
		node: testutil.NewFakeNode(startHeight),
		sft:  sft,
		cfg: config.ListenerConfig{
			PollInterval:      common.NewDuration(time.Millisecond),
			StartBlockHeight:  &start,
			RegistryCacheSize: 16,
			BlockRetry: &config.RetryConfig{
				MaxAttempts:       3,
				InitialBackoff:    common.NewDuration(time.Millisecond),
				MaxBackoff:        common.NewDuration(time.Millisecond),
				BackoffMultiplier: 1,
			},
		},
	}
}

func (e *env) listener(p processor.Processor, notifier pkglistener.Notifier) *Listener {
	e.t.Helper()

	if p == nil {
		p = e.sft
	}
	dispatch, err := processor.NewDispatchTable(p)
	require.NoError(e.t, err)

	fetcher := blockfetcher.NewBlockFetcher(e.node, e.cfg.PollInterval.Duration, logger.NewNopLogger())
	l, err := New(e.cfg, e.db, fetcher, dispatch, &db.NoOpMaintenance{}, notifier, logger.NewNopLogger())
	require.NoError(e.t, err)
	return l
}

// runUntil runs the listener until the checkpoint reaches height, then stops it.
func (e *env) runUntil(l *Listener, height uint64) {
	e.t.Helper()

	ctx, cancel := context.WithCancel(e.t.Context())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	require.Eventually(e.t, func() bool {
		select {
		case err := <-errCh:
			errCh <- err
			return true
		default:
		}
		cp, err := l.Checkpoints().Load(ctx)
		return err == nil && cp != nil && cp.BlockHeight >= height
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(e.t, <-errCh, context.Canceled)
	require.NoError(e.t, l.Close())
}

// runToError runs the listener until it stops on its own.
func (e *env) runToError(l *Listener) error {
	e.t.Helper()

	ctx, cancel := context.WithTimeout(e.t.Context(), 5*time.Second)
	defer cancel()

	err := l.Run(ctx)
	require.NotErrorIs(e.t, err, context.DeadlineExceeded)
	require.NoError(e.t, l.Close())
	return err
}

func (e *env) checkpoint() *Checkpoint {
	e.t.Helper()

	cp, err := NewCheckpointStore(e.db, logger.NewNopLogger(), nil).Load(e.t.Context())
	require.NoError(e.t, err)
	return cp
}

func (e *env) balance(contract concordium.ContractAddress, holder concordium.AccountAddress) string {
	e.t.Helper()

	var balance string
	err := e.db.QueryRow(`SELECT balance FROM cis2_token_holders WHERE contract = ? AND token_id = ? AND holder = ?`,
		contract.String(), tokenA.String(), holder.String()).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return "0"
	}
	require.NoError(e.t, err)
	return balance
}

func initSFT(contract concordium.ContractAddress, events ...[]byte) json.RawMessage {
	return testutil.InitEvent(sftModule, contract, sftContractName, events...)
}

func updateSFT(contract concordium.ContractAddress, sender concordium.AccountAddress, events ...[]byte) json.RawMessage {
	return testutil.UpdateEvent(contract, concordium.AccountAddr(sender), sftContractName+".transfer", 0, events...)
}

func transfer(value int64, from, to concordium.AccountAddress) []byte {
	return testutil.CIS2Transfer(tokenA, value, concordium.AccountAddr(from), concordium.AccountAddr(to))
}

// flakyProcessor fails the calls of one block after the wrapped processor applied them.
type flakyProcessor struct {
	processor.Processor

	failAt   uint64
	failures int
	err      error
	calls    int
}

func (f *flakyProcessor) ProcessEvents(ctx context.Context, tx *sql.Tx, call processor.CallContext,
	events [][]byte) (int, error) {
	f.calls++

	n, err := f.Processor.ProcessEvents(ctx, tx, call, events)
	if err != nil {
		return n, err
	}
	if call.BlockHeight == f.failAt && f.failures > 0 {
		f.failures--
		return 0, f.err
	}
	return n, nil
}

func TestListener_TracksAndApplies(t *testing.T) {
	e := newEnv(t)
	c := testutil.Contract(5)

	e.node.AddBlock(
		testutil.Tx(alice, initSFT(c, testutil.CIS2Mint(tokenA, 100, concordium.AccountAddr(alice)))),
		// unbound module and a foreign contract name inside the bound module
		testutil.Tx(bob, testutil.InitEvent(otherModule, testutil.Contract(6), sftContractName,
			testutil.CIS2Mint(tokenA, 1, concordium.AccountAddr(bob)))),
		testutil.Tx(bob, testutil.InitEvent(sftModule, testutil.Contract(7), "other_contract")),
	)
	e.node.AddBlock(
		testutil.Tx(alice, updateSFT(c, alice, transfer(40, alice, bob))),
		// events of untracked contracts are never parsed
		testutil.Tx(bob, testutil.UpdateEvent(testutil.Contract(6), concordium.AccountAddr(bob),
			"rwa_security_sft.transfer", 0, []byte{0xff, 0xff})),
		testutil.Tx(carol, updateSFT(c, carol)),
		testutil.RejectedTx(carol),
	)

	e.runUntil(e.listener(nil, nil), startHeight+1)

	require.Equal(t, "60", e.balance(c, alice))
	require.Equal(t, "40", e.balance(c, bob))

	cp := e.checkpoint()
	require.Equal(t, uint64(startHeight+1), cp.BlockHeight)
	require.Equal(t, testutil.BlockHash(startHeight+1), cp.BlockHash)

	contracts, err := NewRegistry(e.db, 4, logger.NewNopLogger()).List(t.Context())
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	require.Equal(t, c, contracts[0].Contract)
	require.Equal(t, "sft", contracts[0].Processor)
	require.Equal(t, alice, *contracts[0].Owner)
	require.Equal(t, uint64(startHeight), contracts[0].BlockHeight)

	require.Equal(t, 3, testutil.Count(t, e.db, "contract_calls", ""))
	require.Equal(t, 1, testutil.Count(t, e.db, "contract_calls", "call_type = 'init' AND events_count = 1"))
	require.Equal(t, 1, testutil.Count(t, e.db, "contract_calls",
		"entrypoint_name = 'transfer' AND events_count = 1 AND sender = ?", alice.String()))
	// a call without events is still recorded
	require.Equal(t, 1, testutil.Count(t, e.db, "contract_calls",
		"events_count = 0 AND sender = ?", carol.String()))
}

func TestListener_InterruptedGroups(t *testing.T) {
	e := newEnv(t)
	c := testutil.Contract(5)

	e.node.AddBlock(testutil.Tx(alice, initSFT(c, testutil.CIS2Mint(tokenA, 100, concordium.AccountAddr(alice)))))
	e.node.AddBlock(testutil.Tx(alice,
		testutil.InterruptedEvent(c, transfer(10, alice, bob)),
		testutil.ResumedEvent(c),
		updateSFT(c, alice, transfer(5, alice, bob)),
	))

	e.runUntil(e.listener(nil, nil), startHeight+1)

	require.Equal(t, "85", e.balance(c, alice))
	require.Equal(t, "15", e.balance(c, bob))
	require.Equal(t, 2, testutil.Count(t, e.db, "contract_calls", ""))
	require.Zero(t, testutil.Count(t, e.db, "contract_calls", "call_type = 'interrupted'"))
}

func TestListener_ResumesFromCheckpoint(t *testing.T) {
	e := newEnv(t)
	c := testutil.Contract(5)

	e.node.AddBlock(testutil.Tx(alice, initSFT(c, testutil.CIS2Mint(tokenA, 100, concordium.AccountAddr(alice)))))
	e.node.AddBlock(testutil.Tx(alice, updateSFT(c, alice, transfer(10, alice, bob))))

	e.runUntil(e.listener(nil, nil), startHeight+1)
	require.Equal(t, "10", e.balance(c, bob))

	e.node.AddEmptyBlocks(1)
	e.node.AddBlock(testutil.Tx(alice, updateSFT(c, alice, transfer(10, alice, bob))))

	// the configured start height is ignored once a checkpoint exists
	e.runUntil(e.listener(nil, nil), startHeight+3)

	require.Equal(t, uint64(startHeight+3), e.checkpoint().BlockHeight)
	require.Equal(t, "80", e.balance(c, alice))
	require.Equal(t, "20", e.balance(c, bob))
	require.Equal(t, 3, testutil.Count(t, e.db, "contract_calls", ""))
}

func TestListener_CrashReplay(t *testing.T) {
	e := newEnv(t)
	c := testutil.Contract(5)

	e.node.AddBlock(testutil.Tx(alice, initSFT(c, testutil.CIS2Mint(tokenA, 100, concordium.AccountAddr(alice)))))
	e.node.AddBlock(
		testutil.Tx(bob, initSFT(testutil.Contract(8))),
		testutil.Tx(alice, updateSFT(c, alice, transfer(30, alice, bob))),
	)

	flaky := &flakyProcessor{Processor: e.sft, failAt: startHeight + 1, failures: 1, err: errBoom}
	err := e.runToError(e.listener(flaky, nil))
	require.ErrorIs(t, err, errBoom)

	// nothing of the failed block is visible
	require.Equal(t, uint64(startHeight), e.checkpoint().BlockHeight)
	require.Equal(t, "100", e.balance(c, alice))
	require.Equal(t, "0", e.balance(c, bob))
	require.Equal(t, 1, testutil.Count(t, e.db, "tracked_contracts", ""))
	require.Equal(t, 1, testutil.Count(t, e.db, "contract_calls", ""))

	e.runUntil(e.listener(nil, nil), startHeight+1)

	require.Equal(t, "70", e.balance(c, alice))
	require.Equal(t, "30", e.balance(c, bob))
	require.Equal(t, 2, testutil.Count(t, e.db, "tracked_contracts", ""))
	require.Equal(t, 3, testutil.Count(t, e.db, "contract_calls", ""))
}

func TestListener_RetriesBusyBlock(t *testing.T) {
	e := newEnv(t)
	c := testutil.Contract(5)

	e.node.AddBlock(
		testutil.Tx(alice, initSFT(c, testutil.CIS2Mint(tokenA, 100, concordium.AccountAddr(alice)))),
		testutil.Tx(alice, updateSFT(c, alice, transfer(25, alice, bob))),
	)

	flaky := &flakyProcessor{
		Processor: e.sft,
		failAt:    startHeight,
		failures:  2,
		err:       fmt.Errorf("failed to update holder: %w", sqlite3.Error{Code: sqlite3.ErrBusy}),
	}
	e.runUntil(e.listener(flaky, nil), startHeight)

	// each failed attempt stops at the first call
	require.Equal(t, 4, flaky.calls)
	require.Equal(t, "75", e.balance(c, alice))
	require.Equal(t, "25", e.balance(c, bob))
	require.Equal(t, 1, testutil.Count(t, e.db, "tracked_contracts", ""))
	require.Equal(t, 2, testutil.Count(t, e.db, "contract_calls", ""))
}

func TestListener_BusyRetriesExhausted(t *testing.T) {
	e := newEnv(t)
	e.node.AddBlock(testutil.Tx(alice, initSFT(testutil.Contract(5))))

	flaky := &flakyProcessor{
		Processor: e.sft,
		failAt:    startHeight,
		failures:  10,
		err:       sqlite3.Error{Code: sqlite3.ErrLocked},
	}
	err := e.runToError(e.listener(flaky, nil))
	require.True(t, db.IsBusy(err))
	require.Equal(t, 3, flaky.calls)
	require.Nil(t, e.checkpoint())
}

func TestListener_ChainDiscontinuity(t *testing.T) {
	e := newEnv(t)
	e.node.AddEmptyBlocks(2)

	e.runUntil(e.listener(nil, nil), startHeight+1)

	e.node.AddEmptyBlocks(1)
	e.node.ReplaceParent(startHeight+2, testutil.BlockHash(999))

	err := e.runToError(e.listener(nil, nil))

	var discontinuity *ChainDiscontinuityError
	require.ErrorAs(t, err, &discontinuity)
	require.Equal(t, uint64(startHeight+2), discontinuity.Height)
	require.Equal(t, testutil.BlockHash(startHeight+1), discontinuity.ExpectedParent)
	require.Equal(t, testutil.BlockHash(999), discontinuity.ActualParent)
	require.Equal(t, uint64(startHeight+1), e.checkpoint().BlockHeight)
}

func TestListener_StartsAtLastFinalizedBlock(t *testing.T) {
	e := newEnv(t)
	e.cfg.StartBlockHeight = nil

	e.node.AddBlock(testutil.Tx(alice, initSFT(testutil.Contract(5))))
	e.node.AddEmptyBlocks(2)

	e.runUntil(e.listener(nil, nil), startHeight+2)

	require.Equal(t, uint64(startHeight+2), e.checkpoint().BlockHeight)
	require.Zero(t, testutil.Count(t, e.db, "tracked_contracts", ""))
}

func TestListener_ProcessorFailureStops(t *testing.T) {
	e := newEnv(t)
	c := testutil.Contract(5)

	e.node.AddBlock(testutil.Tx(alice, initSFT(c, testutil.CIS2Mint(tokenA, 10, concordium.AccountAddr(alice)))))
	e.node.AddBlock(testutil.Tx(alice, updateSFT(c, alice, transfer(11, alice, bob))))

	err := e.runToError(e.listener(nil, nil))
	require.ErrorIs(t, err, processor.ErrInsufficientFunds)
	require.Equal(t, uint64(startHeight), e.checkpoint().BlockHeight)
	require.Equal(t, "10", e.balance(c, alice))
}

func TestListener_Notifications(t *testing.T) {
	e := newEnv(t)
	c := testutil.Contract(5)

	e.node.AddBlock(testutil.Tx(alice, initSFT(c, testutil.CIS2Mint(tokenA, 10, concordium.AccountAddr(alice)))))
	e.node.AddBlock(testutil.Tx(alice, updateSFT(c, alice, transfer(1, alice, bob), transfer(2, alice, bob))))
	e.node.AddEmptyBlocks(1)

	var got []BlockNotification
	collect := func(val []byte) error {
		var n BlockNotification
		if err := json.Unmarshal(val, &n); err != nil {
			return err
		}
		got = append(got, n)
		return nil
	}

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(collect)
	// a failed publish does not stop the listener
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(collect)

	notifier := NewKafkaNotifierWithProducer(producer, "rwa.blocks", logger.NewNopLogger())
	e.runUntil(e.listener(nil, notifier), startHeight+2)

	require.Len(t, got, 2)
	require.Equal(t, uint64(startHeight), got[0].Height)
	require.Equal(t, 1, got[0].Calls)
	require.Equal(t, 1, got[0].Events)
	require.Equal(t, uint64(startHeight+2), got[1].Height)
	require.Zero(t, got[1].Calls)
	require.Equal(t, testutil.BlockHash(startHeight+2), got[1].Hash)
}

func TestNew_Validation(t *testing.T) {
	e := newEnv(t)
	dispatch, err := processor.NewDispatchTable(e.sft)
	require.NoError(t, err)
	fetcher := blockfetcher.NewBlockFetcher(e.node, time.Millisecond, logger.NewNopLogger())
	log := logger.NewNopLogger()

	_, err = New(e.cfg, nil, fetcher, dispatch, nil, nil, log)
	require.ErrorContains(t, err, "database")
	_, err = New(e.cfg, e.db, nil, dispatch, nil, nil, log)
	require.ErrorContains(t, err, "fetcher")
	_, err = New(e.cfg, e.db, fetcher, nil, nil, nil, log)
	require.ErrorContains(t, err, "dispatch")
	_, err = New(e.cfg, e.db, fetcher, dispatch, nil, nil, nil)
	require.ErrorContains(t, err, "logger")
}
