package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyag/fraudgraph/backend/internal/domain"
)

func TestAddUserNeighborhood(t *testing.T) {
	b := NewBuilder()
	b.AddUserNeighborhood(&domain.UserNeighborhood{
		User: domain.User{ID: "u1", Name: "Priya Gupta"},
		Transactions: []domain.Transaction{
			{ID: "t1", Amount: 1500, Type: "transfer"},
		},
		MoneyLinks: []domain.MoneyLink{
			{Peer: domain.User{ID: "u2", Name: "Rahul"}, Type: domain.EdgeSentMoneyTo},
			{Peer: domain.User{ID: "u3"}, Type: domain.EdgeReceivedMoneyFrom},
		},
		SharedLinks: []domain.SharedLink{
			{Peer: domain.User{ID: "u2", Name: "Rahul"}, Type: domain.EdgeSharesEmail, SharedValue: "ring@fraud.test"},
		},
		NetworkLinks: []domain.NetworkLink{
			{Peer: domain.User{ID: "u4"}, Type: domain.EdgeSameIP, SharedValue: "203.0.113.7"},
		},
	})
	view := b.View()

	// u2 appears as money peer and shared peer but projects once.
	assert.Len(t, view.Nodes, 5)

	byID := map[string]GraphNode{}
	for _, n := range view.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, "Priya Gupta", byID["u1"].Label)
	assert.Equal(t, "$1500 transfer", byID["t1"].Label)
	assert.Equal(t, "transaction", byID["t1"].Type)
	assert.Equal(t, "u3", byID["u3"].Label)

	byEdgeID := map[string]GraphEdge{}
	for _, e := range view.Edges {
		byEdgeID[e.ID] = e
	}
	require.Len(t, view.Edges, 5)

	made := byEdgeID["u1-t1-MADE_TRANSACTION"]
	assert.Equal(t, "#0066ff", made.Color)
	assert.Equal(t, "Made Transaction", made.Label)

	// Incoming money edges point at the subject.
	received := byEdgeID["u3-u1-RECEIVED_MONEY_FROM"]
	assert.Equal(t, "u3", received.Source)
	assert.Equal(t, "#ff4500", received.Color)

	shared := byEdgeID["u1-u2-SHARES_EMAIL"]
	assert.Equal(t, "SHARES EMAIL (ring@fraud.test)", shared.Label)
	assert.Equal(t, "#ff0000", shared.Color)

	network := byEdgeID["u1-u4-SAME_IP"]
	assert.Equal(t, "Same IP (203.0.113.7)", network.Label)
}

func TestAddUserNeighborhoodSecondDegreeVia(t *testing.T) {
	b := NewBuilder()
	b.AddUserNeighborhood(&domain.UserNeighborhood{
		User: domain.User{ID: "u1"},
		MoneyLinks: []domain.MoneyLink{
			{Peer: domain.User{ID: "u9"}, Type: domain.EdgeSentMoneyTo, Via: "u5"},
		},
	})
	view := b.View()

	byID := map[string]GraphNode{}
	for _, n := range view.Nodes {
		byID[n.ID] = n
	}
	assert.Contains(t, byID, "u5")

	require.Len(t, view.Edges, 1)
	assert.Equal(t, "u5", view.Edges[0].Source)
	assert.Equal(t, "u9", view.Edges[0].Target)
}

func TestAddTransactionNeighborhood(t *testing.T) {
	origin := domain.User{ID: "u1", Name: "Priya Gupta"}
	dest := domain.User{ID: "u2"}
	b := NewBuilder()
	b.AddTransactionNeighborhood(&domain.TransactionNeighborhood{
		Transaction: domain.Transaction{ID: "t1", Amount: 5000, Type: "transfer"},
		Origin:      &origin,
		Destination: &dest,
		Linked: []domain.LinkedTransaction{
			{Transaction: domain.Transaction{ID: "t2", Amount: 4800}, Type: domain.EdgeAmountPattern},
		},
	})
	view := b.View()

	assert.Len(t, view.Nodes, 4)
	require.Len(t, view.Edges, 3)

	byEdgeID := map[string]GraphEdge{}
	for _, e := range view.Edges {
		byEdgeID[e.ID] = e
	}
	assert.Contains(t, byEdgeID, "u1-t1-MADE_TRANSACTION")
	assert.Contains(t, byEdgeID, "u2-t1-RECEIVED_TRANSACTION")

	pattern := byEdgeID["t1-t2-AMOUNT_PATTERN"]
	assert.Equal(t, "#dda0dd", pattern.Color)
	assert.Equal(t, "AMOUNT PATTERN", pattern.Label)
}

func TestAddPathFlagsMembers(t *testing.T) {
	b := NewBuilder()
	b.AddPath(domain.PathResult{
		Found: true,
		Hops:  2,
		Nodes: []domain.PathNode{
			{ID: "u1", Kind: "user", Name: "Priya Gupta"},
			{ID: "t1", Kind: "transaction"},
			{ID: "u2", Kind: "user"},
		},
		Edges: []domain.PathEdge{
			{Start: "u1", End: "t1", Type: domain.EdgeMadeTransaction},
			{Start: "u2", End: "t1", Type: domain.EdgeReceivedTransaction},
		},
	})
	view := b.View()

	require.Len(t, view.Nodes, 3)
	assert.Equal(t, "start", view.Nodes[0].PathRole)
	assert.Equal(t, "end", view.Nodes[2].PathRole)
	for _, n := range view.Nodes {
		assert.True(t, n.PathMember)
	}
	for _, e := range view.Edges {
		assert.True(t, e.PathMember)
	}
	// Absent names fall back to the id.
	assert.Equal(t, "t1", view.Nodes[1].Label)
}

func TestAddPathNotFoundAddsNothing(t *testing.T) {
	b := NewBuilder()
	b.AddPath(domain.PathResult{Found: false})
	view := b.View()
	assert.Empty(t, view.Nodes)
	assert.Empty(t, view.Edges)
}

func TestNodeMergeKeepsDisplayAttributes(t *testing.T) {
	b := NewBuilder()
	b.AddUserNeighborhood(&domain.UserNeighborhood{
		User: domain.User{ID: "u1", Name: "Priya Gupta", Email: "priya@fraud.test"},
	})
	// The same user reappears on a path with no name; the projected node
	// keeps its label and attributes.
	b.AddPath(domain.PathResult{
		Found: true,
		Nodes: []domain.PathNode{
			{ID: "u1", Kind: "user"},
			{ID: "u2", Kind: "user"},
		},
		Edges: []domain.PathEdge{
			{Start: "u1", End: "u2", Type: domain.EdgeSharesEmail},
		},
	})
	view := b.View()

	byID := map[string]GraphNode{}
	for _, n := range view.Nodes {
		byID[n.ID] = n
	}
	merged := byID["u1"]
	assert.Equal(t, "Priya Gupta", merged.Label)
	assert.Equal(t, "priya@fraud.test", merged.Attrs["email"])
	assert.True(t, merged.PathMember)
	assert.Equal(t, "start", merged.PathRole)
}

func TestEdgeDedupAcrossTraversals(t *testing.T) {
	b := NewBuilder()
	hood := &domain.UserNeighborhood{
		User: domain.User{ID: "u1"},
		SharedLinks: []domain.SharedLink{
			{Peer: domain.User{ID: "u2"}, Type: domain.EdgeSharesEmail, SharedValue: "x@y.test"},
		},
	}
	b.AddUserNeighborhood(hood)
	b.AddUserNeighborhood(hood)
	view := b.View()

	assert.Len(t, view.Edges, 1)
	assert.Len(t, view.Nodes, 2)
}

func TestEdgeColorDefault(t *testing.T) {
	assert.Equal(t, "#999999", EdgeColor(domain.EdgeUsesDevice))
	assert.Equal(t, "#32cd32", EdgeColor(domain.EdgeBusinessPartner))
}
