package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyag/fraudgraph/backend/internal/domain"
	"github.com/priyag/fraudgraph/backend/internal/graph"
)

func TestCalculateLimits(t *testing.T) {
	cases := []struct {
		name       string
		txCount    int
		totalValue float64
		want       Limits
	}{
		{"baseline", 3, 500, Limits{Transactions: 10, RelatedUsers: 5, Depth: 1}},
		{"count medium", 25, 500, Limits{Transactions: 15, RelatedUsers: 8, Depth: 1}},
		{"count high", 60, 500, Limits{Transactions: 20, RelatedUsers: 10, Depth: 2}},
		{"value medium", 3, 25000, Limits{Transactions: 18, RelatedUsers: 8, Depth: 1}},
		{"value high", 3, 80000, Limits{Transactions: 25, RelatedUsers: 12, Depth: 1}},
		{"count and value high", 60, 80000, Limits{Transactions: 25, RelatedUsers: 12, Depth: 2}},
		{"boundary not crossed", 20, 20000, Limits{Transactions: 10, RelatedUsers: 5, Depth: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateLimits(tc.txCount, tc.totalValue))
		})
	}
}

func activityResult(id string, txCount int, totalValue float64) graph.Result {
	return graph.Result{Records: []graph.Record{{
		"id":         id,
		"txCount":    int64(txCount),
		"totalValue": totalValue,
	}}}
}

func TestUserActivity(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(activityResult("u1", 12, 3400.5))
	engine := NewEngine(client, nil)

	txCount, totalValue, err := engine.UserActivity(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 12, txCount)
	assert.Equal(t, 3400.5, totalValue)
}

func TestUserActivityNotFound(t *testing.T) {
	engine := NewEngine(graph.NewMemoryClient(), nil)

	_, _, err := engine.UserActivity(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserNeighborhood(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(activityResult("u1", 3, 500))
	client.PushReadResult(graph.Result{Records: []graph.Record{{
		"user": map[string]any{"id": "u1", "name": "Priya Gupta"},
		"txs": []any{
			map[string]any{"id": "t1", "amount": 120.0, "type": "payment"},
		},
		"sentTo": []any{
			map[string]any{
				"user":          map[string]any{"id": "u2", "name": "Rahul"},
				"type":          "SENT_MONEY_TO",
				"amount":        120.0,
				"currency":      "USD",
				"transactionId": "t1",
				"timestamp":     "2026-01-05T10:00:00Z",
			},
		},
		"receivedFrom": []any{},
		"sharedLinks": []any{
			map[string]any{
				"user":        map[string]any{"id": "u3"},
				"type":        "SHARES_EMAIL",
				"sharedValue": "ring@fraud.test",
			},
		},
		"networkLinks": []any{
			map[string]any{
				"user":        map[string]any{"id": "u4"},
				"type":        "SAME_IP",
				"sharedValue": "203.0.113.7",
			},
		},
	}}})
	engine := NewEngine(client, nil)

	hood, err := engine.UserNeighborhood(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", hood.User.ID)
	require.Len(t, hood.Transactions, 1)
	assert.Equal(t, 120.0, hood.Transactions[0].Amount)

	require.Len(t, hood.MoneyLinks, 1)
	assert.Equal(t, domain.EdgeSentMoneyTo, hood.MoneyLinks[0].Type)
	assert.Equal(t, "u2", hood.MoneyLinks[0].Peer.ID)
	assert.Equal(t, "t1", hood.MoneyLinks[0].TransactionID)
	assert.Empty(t, hood.MoneyLinks[0].Via)

	require.Len(t, hood.SharedLinks, 1)
	assert.Equal(t, "ring@fraud.test", hood.SharedLinks[0].SharedValue)
	require.Len(t, hood.NetworkLinks, 1)
	assert.Equal(t, domain.EdgeSameIP, hood.NetworkLinks[0].Type)

	// Baseline activity means depth 1: no second-degree read is issued.
	calls := client.ReadCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, 10, calls[1].Params["txLimit"])
	assert.Equal(t, 5, calls[1].Params["relLimit"])
}

func TestUserNeighborhoodSecondDegree(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(activityResult("u1", 60, 80000))
	client.PushReadResult(graph.Result{Records: []graph.Record{{
		"user": map[string]any{"id": "u1"},
	}}})
	client.PushReadResult(graph.Result{Records: []graph.Record{{
		"links": []any{
			map[string]any{
				"user":   map[string]any{"id": "u9"},
				"type":   "SENT_MONEY_TO",
				"via":    "u5",
				"amount": 900.0,
			},
		},
	}}})
	engine := NewEngine(client, nil)

	hood, err := engine.UserNeighborhood(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, hood.MoneyLinks, 1)
	assert.Equal(t, "u9", hood.MoneyLinks[0].Peer.ID)
	assert.Equal(t, "u5", hood.MoneyLinks[0].Via)

	calls := client.ReadCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, 25, calls[1].Params["txLimit"])
	assert.Equal(t, 12, calls[1].Params["relLimit"])
	assert.Equal(t, 12, calls[2].Params["relLimit"])
}

func TestUserNeighborhoodSecondDegreeFailureIsPartial(t *testing.T) {
	client := graph.NewMemoryClient()
	client.FailQueriesContaining("mid:User", errors.New("timeout"))
	client.PushReadResult(activityResult("u1", 60, 80000))
	client.PushReadResult(graph.Result{Records: []graph.Record{{
		"user": map[string]any{"id": "u1"},
	}}})
	engine := NewEngine(client, nil)

	hood, err := engine.UserNeighborhood(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", hood.User.ID)
	assert.Empty(t, hood.MoneyLinks)
}

func TestUserNeighborhoodNotFound(t *testing.T) {
	engine := NewEngine(graph.NewMemoryClient(), nil)

	_, err := engine.UserNeighborhood(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserNeighborhoodStoreFailure(t *testing.T) {
	client := graph.NewMemoryClient().WithError(errors.New("connection refused"))
	engine := NewEngine(client, nil)

	_, err := engine.UserNeighborhood(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestTransactionNeighborhood(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{Records: []graph.Record{{
		"tx":     map[string]any{"id": "t1", "amount": 5000.0, "type": "transfer"},
		"origin": map[string]any{"id": "u1", "name": "Priya Gupta"},
		"dest":   map[string]any{"id": "u2"},
		"linked": []any{
			map[string]any{
				"tx":          map[string]any{"id": "t2", "amount": 4800.0},
				"type":        "AMOUNT_PATTERN",
				"sharedValue": "",
				"confidence":  0.96,
			},
		},
	}}})
	engine := NewEngine(client, nil)

	hood, err := engine.TransactionNeighborhood(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, "t1", hood.Transaction.ID)
	require.NotNil(t, hood.Origin)
	assert.Equal(t, "u1", hood.Origin.ID)
	require.NotNil(t, hood.Destination)
	require.Len(t, hood.Linked, 1)
	assert.Equal(t, domain.EdgeAmountPattern, hood.Linked[0].Type)
	assert.Equal(t, 0.96, hood.Linked[0].Confidence)

	calls := client.ReadCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, defaultLinkLimit, calls[0].Params["linkLimit"])
}

func TestTransactionNeighborhoodWithoutDestination(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{Records: []graph.Record{{
		"tx":     map[string]any{"id": "t1"},
		"origin": map[string]any{"id": "u1"},
		"dest":   nil,
		"linked": []any{},
	}}})
	engine := NewEngine(client, nil)

	hood, err := engine.TransactionNeighborhood(context.Background(), "t1")
	require.NoError(t, err)
	assert.Nil(t, hood.Destination)
}

func TestShortestPathFound(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{Records: []graph.Record{{
		"nodes": []any{
			map[string]any{"id": "u1", "kind": "user", "name": "Priya Gupta"},
			map[string]any{"id": "t1", "kind": "transaction", "name": ""},
			map[string]any{"id": "u2", "kind": "user", "name": "Rahul"},
		},
		"edges": []any{
			map[string]any{"start": "u1", "end": "t1", "type": "MADE_TRANSACTION"},
			map[string]any{"start": "u2", "end": "t1", "type": "RECEIVED_TRANSACTION"},
		},
		"hops": int64(2),
	}}})
	engine := NewEngine(client, nil)

	result, err := engine.ShortestPath(context.Background(), "u1", "u2")
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.Equal(t, 2, result.Hops)
	require.Len(t, result.Nodes, 3)
	assert.Equal(t, "transaction", result.Nodes[1].Kind)
	require.Len(t, result.Edges, 2)
	assert.Equal(t, domain.EdgeMadeTransaction, result.Edges[0].Type)
	// Hop count is edge count, one less than entity count.
	assert.Equal(t, len(result.Nodes)-1, result.Hops)
}

func TestShortestPathNotFound(t *testing.T) {
	engine := NewEngine(graph.NewMemoryClient(), nil)

	result, err := engine.ShortestPath(context.Background(), "u1", "u99")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, "u1", result.SourceUserID)
	assert.Equal(t, "u99", result.TargetUserID)
	assert.Empty(t, result.Nodes)
}
