package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{NumUsers: 50, NumTransactions: 200, Seed: 7}

	first, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	second, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Users, second.Users)
	assert.Equal(t, first.Transactions, second.Transactions)
}

func TestGenerateValidPayloads(t *testing.T) {
	ds, err := New(Config{NumUsers: 30, NumTransactions: 100, Seed: 3}).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Users, 30)
	require.Len(t, ds.Transactions, 100)

	ids := make(map[string]struct{}, len(ds.Users))
	for i := range ds.Users {
		u := ds.Users[i]
		require.NoError(t, u.Validate(), "user %s", u.ID)
		ids[u.ID] = struct{}{}
	}
	for i := range ds.Transactions {
		tx := ds.Transactions[i]
		require.NoError(t, tx.Validate(), "transaction %s", tx.ID)
		_, originKnown := ids[tx.OriginUserID]
		assert.True(t, originKnown, "origin %s not generated", tx.OriginUserID)
		assert.NotEqual(t, tx.OriginUserID, tx.DestinationUserID)
	}
}

func TestGenerateRingsShareInfrastructure(t *testing.T) {
	cfg := Config{NumUsers: 40, NumTransactions: 300, RingCount: 2, RingSize: 5, Seed: 11}
	ds, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	addresses := make(map[string]int)
	for _, u := range ds.Users {
		addresses[u.Address]++
	}
	shared := 0
	for _, n := range addresses {
		if n >= cfg.RingSize {
			shared++
		}
	}
	assert.GreaterOrEqual(t, shared, cfg.RingCount, "expected each ring to share one address")

	devices := make(map[string]int)
	for _, tx := range ds.Transactions {
		devices[tx.DeviceID]++
	}
	heavy := 0
	for _, n := range devices {
		if n >= 5 {
			heavy++
		}
	}
	assert.Greater(t, heavy, 0, "expected ring devices to repeat across transactions")
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{NumUsers: 10, NumTransactions: 10, Seed: 1}).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteDataset(t *testing.T) {
	dir := t.TempDir()
	ds, err := New(Config{NumUsers: 5, NumTransactions: 10, Seed: 2}).Generate(context.Background())
	require.NoError(t, err)

	require.NoError(t, WriteDataset(ds, dir))
	for _, name := range []string{"users.json", "transactions.json"} {
		info, statErr := os.Stat(filepath.Join(dir, name))
		require.NoError(t, statErr)
		assert.Greater(t, info.Size(), int64(0))
	}
}
