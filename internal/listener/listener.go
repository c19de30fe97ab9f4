// Package listener drives block processing: it fetches finalized blocks in
// order, hands the events of tracked contracts to their processors and commits
// every block together with the checkpoint in a single transaction.
package listener

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goran-ethernal/RWAListener/internal/common"
	"github.com/goran-ethernal/RWAListener/internal/db"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/metrics"
	"github.com/goran-ethernal/RWAListener/internal/retry"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/fetcher"
	pkglistener "github.com/goran-ethernal/RWAListener/pkg/listener"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/russross/meddler"
)

// Compile-time check to ensure Listener implements pkglistener.Listener interface.
var _ pkglistener.Listener = (*Listener)(nil)

const callRecordsTable = "contract_calls"

// CallRecord is a type alias for the public CallRecord type.
type CallRecord = pkglistener.CallRecord

// Listener is the block processing loop.
type Listener struct {
	cfg         config.ListenerConfig
	db          *sql.DB
	fetcher     fetcher.BlockFetcher
	checkpoints *CheckpointStore
	registry    *Registry
	dispatch    *processor.DispatchTable
	maintenance db.Maintenance
	notifier    pkglistener.Notifier
	log         *logger.Logger
}

// New creates a new Listener instance. The notifier is optional.
func New(
	cfg config.ListenerConfig,
	database *sql.DB,
	blockFetcher fetcher.BlockFetcher,
	dispatch *processor.DispatchTable,
	maintenance db.Maintenance,
	notifier pkglistener.Notifier,
	log *logger.Logger,
) (*Listener, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if blockFetcher == nil {
		return nil, errors.New("block fetcher is required")
	}
	if dispatch == nil {
		return nil, errors.New("dispatch table is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if maintenance == nil {
		maintenance = &db.NoOpMaintenance{}
	}

	l := &Listener{
		cfg:         cfg,
		db:          database,
		fetcher:     blockFetcher,
		checkpoints: NewCheckpointStore(database, log, maintenance),
		registry:    NewRegistry(database, cfg.RegistryCacheSize, log),
		dispatch:    dispatch,
		maintenance: maintenance,
		notifier:    notifier,
		log:         log.WithComponent(common.ComponentListener),
	}

	l.log.Info("listener initialized")

	return l, nil
}

// Checkpoints returns the checkpoint store of the listener.
func (l *Listener) Checkpoints() *CheckpointStore {
	return l.checkpoints
}

// Registry returns the tracked contract registry of the listener.
func (l *Listener) Registry() *Registry {
	return l.registry
}

// Run processes finalized blocks until the context is cancelled or an
// unrecoverable error occurs. Cancellation is only observed between blocks.
func (l *Listener) Run(ctx context.Context) error {
	l.log.Info("starting listener")
	metrics.ComponentHealthSet(common.ComponentListener, true)

	last, next, err := l.startPosition(ctx)
	if err != nil {
		metrics.ComponentHealthSet(common.ComponentListener, false)
		return err
	}

	for {
		select {
		case <-ctx.Done():
			l.log.Info("listener stopped")
			return ctx.Err()
		default:
		}

		block, err := l.fetcher.FetchBlock(ctx, next)
		if err != nil {
			if ctx.Err() != nil {
				l.log.Info("listener stopped")
				return ctx.Err()
			}
			return l.fail(fmt.Errorf("failed to fetch block %d: %w", next, err))
		}

		if last != nil && block.Parent != last.BlockHash {
			return l.fail(&ChainDiscontinuityError{
				Height:         block.Height,
				ExpectedParent: last.BlockHash,
				ActualParent:   block.Parent,
			})
		}

		var result *BlockNotification
		attempt := 0
		err = retry.Do(ctx, l.cfg.BlockRetry, "process_block", db.IsBusy, func() error {
			attempt++
			if attempt > 1 {
				metrics.BlockRetriesInc()
				l.log.Warnw("retrying block", "block", block.Height, "attempt", attempt)
			}

			// a started block runs to completion even if shutdown was requested
			var err error
			result, err = l.processBlock(context.WithoutCancel(ctx), block)
			return err
		})
		if err != nil {
			return l.fail(fmt.Errorf("failed to process block %d: %w", block.Height, err))
		}

		last = &Checkpoint{BlockHeight: block.Height, BlockHash: block.Hash, BlockSlotTime: block.SlotTime}
		next = block.Height + 1

		l.log.Infow("checkpoint saved",
			"block", block.Height,
			"block_hash", block.Hash.String(),
			"mode", l.fetcher.GetMode(),
			"calls", result.Calls,
			"events", result.Events,
		)

		l.notify(ctx, result)
	}
}

// startPosition returns the stored checkpoint and the height to fetch next.
// Without a checkpoint the configured start height is used, else the current
// last finalized block.
func (l *Listener) startPosition(ctx context.Context) (*Checkpoint, uint64, error) {
	cp, err := l.checkpoints.Load(ctx)
	if err != nil {
		return nil, 0, err
	}

	if cp != nil {
		l.log.Infow("resuming from checkpoint", "block", cp.BlockHeight, "block_hash", cp.BlockHash.String())
		return cp, cp.BlockHeight + 1, nil
	}

	if l.cfg.StartBlockHeight != nil {
		l.log.Infow("starting fresh from configured height", "block", *l.cfg.StartBlockHeight)
		return nil, *l.cfg.StartBlockHeight, nil
	}

	tip, err := l.fetcher.LastFinalizedHeight(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get last finalized block: %w", err)
	}

	l.log.Infow("starting fresh from last finalized block", "block", tip)
	return nil, tip, nil
}

// processBlock applies every call of the block and saves the checkpoint in one transaction.
func (l *Listener) processBlock(ctx context.Context, block *fetcher.Block) (result *BlockNotification, err error) {
	unlock := l.maintenance.AcquireOperationLock()
	defer unlock()

	start := time.Now()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				l.log.Errorw("failed to rollback block", "block", block.Height, "error", rbErr)
			}
			// the cache may hold contracts registered by the rolled back block
			l.registry.Purge()
		}
	}()

	result = &BlockNotification{Height: block.Height, Hash: block.Hash, SlotTime: block.SlotTime}

	for _, t := range block.Transactions {
		for _, call := range t.Calls {
			applied, handled, err := l.processCall(ctx, tx, block, t, call)
			if err != nil {
				return nil, fmt.Errorf("tx %s: call to %s: %w", t.Hash, call.Contract, err)
			}
			if handled {
				result.Calls++
				result.Events += applied
			}
		}
	}

	if err := l.checkpoints.Save(ctx, tx, &Checkpoint{
		BlockHeight:   block.Height,
		BlockHash:     block.Hash,
		BlockSlotTime: block.SlotTime,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit block: %w", err)
	}

	metrics.BlockProcessedInc(time.Since(start))
	metrics.LastProcessedBlockSet(block.Height)

	return result, nil
}

// processCall runs the processor of a tracked contract on one call group.
// Calls of untracked contracts are skipped and reported as not handled.
func (l *Listener) processCall(ctx context.Context, tx *sql.Tx, block *fetcher.Block,
	t fetcher.Transaction, call fetcher.Call) (int, bool, error) {
	p, err := l.resolve(ctx, tx, block, t, call)
	if err != nil || p == nil {
		return 0, false, err
	}

	cc := processor.CallContext{
		BlockHeight: block.Height,
		BlockHash:   block.Hash,
		BlockTime:   block.SlotTime,
		TxHash:      t.Hash,
		TxIndex:     t.Index,
		Sender:      t.Sender,
		Kind:        call.Kind,
		Contract:    call.Contract,
		Entrypoint:  call.Entrypoint,
		Amount:      call.Amount,
		Instigator:  call.Instigator,
	}

	applied, err := p.ProcessEvents(ctx, tx, cc, call.Events)
	if err != nil {
		return 0, false, fmt.Errorf("processor %s: %w", p.Name(), err)
	}

	if call.Kind != fetcher.CallInterrupted {
		record := &CallRecord{
			BlockHeight:   block.Height,
			BlockSlotTime: block.SlotTime,
			TxHash:        t.Hash,
			TxIndex:       t.Index,
			Contract:      call.Contract,
			Entrypoint:    call.Entrypoint,
			Amount:        call.Amount,
			Instigator:    call.Instigator,
			Sender:        t.Sender,
			EventsCount:   applied,
			CallType:      string(call.Kind),
		}
		if err := meddler.Insert(tx, callRecordsTable, record); err != nil {
			return 0, false, fmt.Errorf("failed to record call: %w", err)
		}
	}

	metrics.CallProcessedInc(p.Name(), string(call.Kind), applied)

	l.log.Debugw("call processed",
		"block", block.Height,
		"tx", t.Hash.String(),
		"contract", call.Contract.String(),
		"kind", call.Kind,
		"entrypoint", call.Entrypoint,
		"processor", p.Name(),
		"events", applied,
	)

	return applied, true, nil
}

// resolve returns the processor for a call, registering the contract first when
// the call initializes an instance of a bound module. It returns nil for calls
// of contracts nobody tracks.
func (l *Listener) resolve(ctx context.Context, tx *sql.Tx, block *fetcher.Block,
	t fetcher.Transaction, call fetcher.Call) (processor.Processor, error) {
	if call.Kind == fetcher.CallInit {
		if call.ModuleRef == nil {
			return nil, nil
		}
		p, ok := l.dispatch.Lookup(*call.ModuleRef)
		if !ok || p.ContractName() != call.ContractName {
			return nil, nil
		}

		if err := l.registry.Register(ctx, tx, &TrackedContract{
			Contract:     call.Contract,
			ModuleRef:    *call.ModuleRef,
			ContractName: call.ContractName,
			Owner:        t.Sender,
			Processor:    p.Name(),
			BlockHeight:  block.Height,
			TxHash:       t.Hash,
		}); err != nil {
			return nil, err
		}
		metrics.ContractRegisteredInc(p.Name())

		return p, nil
	}

	tracked, err := l.registry.Find(ctx, tx, call.Contract)
	if err != nil || tracked == nil {
		return nil, err
	}

	p, ok := l.dispatch.Lookup(tracked.ModuleRef)
	if !ok {
		// the module was unbound from the configuration after the contract was registered
		l.log.Debugw("no processor for tracked contract",
			"contract", tracked.Contract.String(),
			"module_ref", tracked.ModuleRef.String(),
		)
		return nil, nil
	}

	return p, nil
}

// notify publishes the block summary. Publishing happens after the commit, so
// failures are logged and do not stop the listener.
func (l *Listener) notify(ctx context.Context, result *BlockNotification) {
	if l.notifier == nil {
		return
	}

	if err := l.notifier.NotifyBlock(ctx, result); err != nil {
		metrics.NotificationInc(false)
		metrics.ErrorsInc(common.ComponentNotifier, "warning")
		l.log.Warnw("failed to publish block notification", "block", result.Height, "error", err)
		return
	}

	metrics.NotificationInc(true)
}

func (l *Listener) fail(err error) error {
	metrics.ComponentHealthSet(common.ComponentListener, false)
	metrics.ErrorsInc(common.ComponentListener, "fatal")
	l.log.Errorw("listener failed", "error", err)
	return err
}

// Close closes the listener and releases resources.
func (l *Listener) Close() error {
	l.log.Info("closing listener")

	l.registry.Close()

	if l.notifier != nil {
		if err := l.notifier.Close(); err != nil {
			l.log.Errorw("failed to close notifier", "error", err)
		}
	}

	return nil
}
