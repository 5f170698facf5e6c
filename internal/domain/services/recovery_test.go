package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/mocks"
	"github.com/quizhub/curator/internal/domain/ports"
)

func TestRecovery_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("releases stale claims and records a ledger entry", func(t *testing.T) {
		queue := mocks.NewWorkQueue()
		ledger := mocks.NewLedger()
		// 1ns threshold so a just-claimed item already counts as stale.
		recovery := NewRecovery(queue, ledger, 1)

		ref := entities.ItemRef{ChannelID: "geo", RecordID: "q-1"}
		item, err := queue.Enqueue(ctx, ref, entities.ActionFixFormat, 1, "wrong-format")
		require.NoError(t, err)
		claimed, err := queue.ClaimNext(ctx, ports.ClaimFilter{})
		require.NoError(t, err)
		require.NotNil(t, claimed)

		released, err := recovery.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, released)
		assert.Equal(t, entities.StatusPending, queue.Get(item.ID).Status)

		entries := ledger.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, entities.ActorRecovery, entries[0].Actor)
		assert.Equal(t, entities.LedgerActionRecover, entries[0].Action)
		assert.Contains(t, entries[0].After, `"released":1`)
	})

	t.Run("no stale claims writes nothing", func(t *testing.T) {
		queue := mocks.NewWorkQueue()
		ledger := mocks.NewLedger()
		recovery := NewRecovery(queue, ledger, 1)

		released, err := recovery.Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, released)
		assert.Empty(t, ledger.Entries())
	})

	t.Run("attempts cap fails the item instead of releasing", func(t *testing.T) {
		queue := mocks.NewWorkQueue()
		ledger := mocks.NewLedger()
		recovery := NewRecovery(queue, ledger, 1)

		ref := entities.ItemRef{ChannelID: "geo", RecordID: "q-1"}
		item, err := queue.Enqueue(ctx, ref, entities.ActionFixFormat, 1, "wrong-format")
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			claimed, err := queue.ClaimNext(ctx, ports.ClaimFilter{})
			require.NoError(t, err)
			require.NotNil(t, claimed)
			require.NoError(t, queue.Release(ctx, item.ID))
		}
		claimed, err := queue.ClaimNext(ctx, ports.ClaimFilter{})
		require.NoError(t, err)
		require.NotNil(t, claimed)
		assert.Equal(t, 3, claimed.Attempts)

		released, err := recovery.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, released)
		assert.Equal(t, entities.StatusFailed, queue.Get(item.ID).Status)
	})
}
