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
	pkglistener "github.com/goran-ethernal/RWAListener/pkg/listener"
	"github.com/russross/meddler"
)

// Compile-time check to ensure CheckpointStore implements pkglistener.CheckpointStore interface.
var _ pkglistener.CheckpointStore = (*CheckpointStore)(nil)

// ErrCheckpointRegression is returned when a checkpoint would not move forward.
var ErrCheckpointRegression = errors.New("checkpoint regression")

// Checkpoint is a type alias for the public Checkpoint type.
type Checkpoint = pkglistener.Checkpoint

// CheckpointStore keeps the single row checkpoint of the listener.
type CheckpointStore struct {
	db                     *sql.DB
	log                    *logger.Logger
	maintenanceCoordinator db.Maintenance
	now                    func() time.Time
}

// NewCheckpointStore creates a new CheckpointStore instance.
func NewCheckpointStore(database *sql.DB, log *logger.Logger, maintenanceCoordinator db.Maintenance) *CheckpointStore {
	return &CheckpointStore{
		db:                     database,
		log:                    log.WithComponent(common.ComponentCheckpoint),
		maintenanceCoordinator: maintenanceCoordinator,
		now:                    time.Now,
	}
}

// Load returns the stored checkpoint, or nil if no block was processed yet.
func (s *CheckpointStore) Load(ctx context.Context) (*Checkpoint, error) {
	if s.maintenanceCoordinator != nil {
		unlock := s.maintenanceCoordinator.AcquireOperationLock()
		defer unlock()
	}

	var cp Checkpoint
	err := meddler.QueryRow(s.db, &cp, `SELECT * FROM checkpoint WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	s.log.Debugf("loaded checkpoint: height=%d, hash=%s", cp.BlockHeight, cp.BlockHash)

	return &cp, nil
}

// Save upserts the checkpoint inside the block transaction. The caller holds
// the maintenance operation lock for the whole block.
// A height at or below the stored one is rejected with ErrCheckpointRegression.
func (s *CheckpointStore) Save(ctx context.Context, tx *sql.Tx, cp *Checkpoint) error {
	cp.ID = 1
	cp.UpdatedAt = s.now().UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO checkpoint (id, block_height, block_hash, block_slot_time, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			block_height    = excluded.block_height,
			block_hash      = excluded.block_hash,
			block_slot_time = excluded.block_slot_time,
			updated_at      = excluded.updated_at
		WHERE excluded.block_height > checkpoint.block_height`,
		cp.BlockHeight, cp.BlockHash.String(), cp.BlockSlotTime.UnixMilli(), cp.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: height %d is not above the stored checkpoint", ErrCheckpointRegression, cp.BlockHeight)
	}

	s.log.Debugf("saved checkpoint: height=%d, hash=%s", cp.BlockHeight, cp.BlockHash)

	return nil
}
