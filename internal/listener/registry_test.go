package listener

import (
	"database/sql"
	"testing"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/testutil"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/stretchr/testify/require"
)

func trackedContract(index uint64) *TrackedContract {
	owner := testutil.Account(0xa1)
	return &TrackedContract{
		Contract:     testutil.Contract(index),
		ModuleRef:    testutil.ModuleRef(1),
		ContractName: "rwa_market",
		Owner:        &owner,
		Processor:    "market",
		BlockHeight:  100 + index,
		TxHash:       testutil.BlockHash(index),
	}
}

func find(t *testing.T, r *Registry, database *sql.DB, contract concordium.ContractAddress) *TrackedContract {
	t.Helper()

	var found *TrackedContract
	require.NoError(t, testutil.InTx(t, database, func(tx *sql.Tx) error {
		var err error
		found, err = r.Find(t.Context(), tx, contract)
		return err
	}))
	return found
}

func TestRegistry_RegisterAndFind(t *testing.T) {
	database := testutil.NewTestDB(t)
	r := NewRegistry(database, 4, logger.NewNopLogger())
	defer r.Close()

	require.Nil(t, find(t, r, database, testutil.Contract(1)))

	for _, index := range []uint64{1, 2, 3} {
		require.NoError(t, testutil.InTx(t, database, func(tx *sql.Tx) error {
			return r.Register(t.Context(), tx, trackedContract(index))
		}))
	}

	// a fresh registry reads from the table, not from the cache
	fresh := NewRegistry(database, 4, logger.NewNopLogger())
	defer fresh.Close()

	found := find(t, fresh, database, testutil.Contract(2))
	require.NotNil(t, found)
	require.Equal(t, testutil.ModuleRef(1), found.ModuleRef)
	require.Equal(t, "rwa_market", found.ContractName)
	require.Equal(t, "market", found.Processor)
	require.Equal(t, uint64(102), found.BlockHeight)
	require.Equal(t, testutil.Account(0xa1), *found.Owner)

	list, err := fresh.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, c := range list {
		require.Equal(t, testutil.Contract(uint64(i+1)), c.Contract)
	}

	n, err := fresh.Count(t.Context())
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestRegistry_RegisterTwice(t *testing.T) {
	database := testutil.NewTestDB(t)
	r := NewRegistry(database, 4, logger.NewNopLogger())
	defer r.Close()

	register := func(reg *Registry) error {
		return testutil.InTx(t, database, func(tx *sql.Tx) error {
			return reg.Register(t.Context(), tx, trackedContract(9))
		})
	}

	require.NoError(t, register(r))
	require.ErrorIs(t, register(r), ErrAlreadyRegistered)

	fresh := NewRegistry(database, 4, logger.NewNopLogger())
	defer fresh.Close()
	require.ErrorIs(t, register(fresh), ErrAlreadyRegistered)

	require.Equal(t, 1, testutil.Count(t, database, "tracked_contracts", ""))
}

func TestRegistry_PurgeAfterRollback(t *testing.T) {
	database := testutil.NewTestDB(t)
	r := NewRegistry(database, 4, logger.NewNopLogger())
	defer r.Close()

	tx, err := database.BeginTx(t.Context(), nil)
	require.NoError(t, err)
	require.NoError(t, r.Register(t.Context(), tx, trackedContract(5)))
	require.NoError(t, tx.Rollback())

	// the cache still holds the rolled back registration
	require.NotNil(t, find(t, r, database, testutil.Contract(5)))

	r.Purge()
	require.Nil(t, find(t, r, database, testutil.Contract(5)))
	require.Zero(t, testutil.Count(t, database, "tracked_contracts", ""))
}
