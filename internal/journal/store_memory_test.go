package journal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	hash := "0xaabb"
	first := Entry{ID: uuid.New(), Kind: KindAttestation, Reference: hash, TxID: "0xtx1"}
	second := Entry{ID: uuid.New(), Kind: KindAttestation, Reference: hash, TxID: "0xtx2"}
	other := Entry{ID: uuid.New(), Kind: KindVote, Reference: "42", TxID: "0xtx3"}

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))
	require.NoError(t, store.Append(ctx, other))

	entries, err := store.ListByReference(ctx, hash)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0xtx1", entries[0].TxID)
	assert.Equal(t, "0xtx2", entries[1].TxID)
	assert.False(t, entries[0].RecordedAt.IsZero(), "recorded_at is stamped on append")

	entries, err = store.ListByReference(ctx, "42")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KindVote, entries[0].Kind)

	entries, err = store.ListByReference(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInMemoryStorePreservesExplicitRecordedAt(t *testing.T) {
	store := NewInMemoryStore()
	at := time.Unix(1700000000, 0)
	require.NoError(t, store.Append(context.Background(), Entry{
		ID: uuid.New(), Kind: KindFinalize, Reference: "7", RecordedAt: at,
	}))
	entries, err := store.ListByReference(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, at, entries[0].RecordedAt)
}
