package projector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/priyag/fraudgraph/backend/internal/domain"
)

// GraphNode is a renderable entity. Type is the render category (user,
// transaction, other), not the entity's domain type field.
type GraphNode struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Attrs      map[string]any `json:"attrs,omitempty"`
	PathMember bool           `json:"pathMember,omitempty"`
	PathRole   string         `json:"pathRole,omitempty"`
}

// GraphEdge is a renderable relationship between two projected nodes.
type GraphEdge struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Target     string          `json:"target"`
	Type       domain.EdgeType `json:"type"`
	Label      string          `json:"label"`
	Color      string          `json:"color"`
	PathMember bool            `json:"pathMember,omitempty"`
}

// GraphView is the deduplicated node/edge set handed to consumers.
type GraphView struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Builder accumulates traversal results into one view. A node id is
// added at most once; later references merge into the existing node
// without blanking display attributes already set. Edge identity is
// (source, target, type), so the same logical edge seen in two
// traversals collapses to one.
type Builder struct {
	view      GraphView
	nodeIndex map[string]int
	edgeIndex map[string]int
}

// NewBuilder returns an empty view builder.
func NewBuilder() *Builder {
	return &Builder{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[string]int),
	}
}

// View returns the accumulated projection.
func (b *Builder) View() GraphView {
	return b.view
}

// AddUserNeighborhood projects a user's bounded neighborhood: the
// subject, its transactions, and every linked peer user with a typed,
// colored edge.
func (b *Builder) AddUserNeighborhood(hood *domain.UserNeighborhood) {
	subject := hood.User
	b.addNode(userNode(subject))

	for _, tx := range hood.Transactions {
		b.addNode(transactionNode(tx))
		b.addEdge(GraphEdge{
			Source: subject.ID,
			Target: tx.ID,
			Type:   domain.EdgeMadeTransaction,
		})
	}

	for _, link := range hood.MoneyLinks {
		b.addNode(userNode(link.Peer))
		source, target := subject.ID, link.Peer.ID
		if link.Type == domain.EdgeReceivedMoneyFrom {
			source, target = link.Peer.ID, subject.ID
		}
		if link.Via != "" {
			// Second-degree link: the edge belongs to the intermediate,
			// whose node may arrive as a bare id.
			b.addNode(GraphNode{ID: link.Via, Label: link.Via, Type: "user"})
			source = link.Via
		}
		b.addEdge(GraphEdge{
			Source: source,
			Target: target,
			Type:   link.Type,
		})
	}

	for _, link := range hood.SharedLinks {
		b.addNode(userNode(link.Peer))
		b.addEdge(GraphEdge{
			Source: subject.ID,
			Target: link.Peer.ID,
			Type:   link.Type,
			Label:  edgeLabel(link.Type, link.SharedValue),
		})
	}

	for _, link := range hood.NetworkLinks {
		b.addNode(userNode(link.Peer))
		b.addEdge(GraphEdge{
			Source: subject.ID,
			Target: link.Peer.ID,
			Type:   link.Type,
			Label:  edgeLabel(link.Type, link.SharedValue),
		})
	}
}

// AddTransactionNeighborhood projects a transaction, its origin and
// destination users, and its proximity-linked transactions.
func (b *Builder) AddTransactionNeighborhood(hood *domain.TransactionNeighborhood) {
	tx := hood.Transaction
	b.addNode(transactionNode(tx))

	if hood.Origin != nil {
		b.addNode(userNode(*hood.Origin))
		b.addEdge(GraphEdge{
			Source: hood.Origin.ID,
			Target: tx.ID,
			Type:   domain.EdgeMadeTransaction,
		})
	}
	if hood.Destination != nil {
		b.addNode(userNode(*hood.Destination))
		b.addEdge(GraphEdge{
			Source: hood.Destination.ID,
			Target: tx.ID,
			Type:   domain.EdgeReceivedTransaction,
		})
	}

	for _, link := range hood.Linked {
		b.addNode(transactionNode(link.Transaction))
		b.addEdge(GraphEdge{
			Source: tx.ID,
			Target: link.Transaction.ID,
			Type:   link.Type,
			Label:  edgeLabel(link.Type, link.SharedValue),
		})
	}
}

// AddPath projects a shortest-path result. Every node and edge on the
// path is flagged a path member, and the endpoints are tagged start and
// end, so a consumer can distinguish the path from ordinary context
// without a second query.
func (b *Builder) AddPath(path domain.PathResult) {
	if !path.Found {
		return
	}
	for i, n := range path.Nodes {
		label := n.Name
		if label == "" {
			label = n.ID
		}
		node := GraphNode{
			ID:         n.ID,
			Label:      label,
			Type:       n.Kind,
			PathMember: true,
		}
		switch i {
		case 0:
			node.PathRole = "start"
		case len(path.Nodes) - 1:
			node.PathRole = "end"
		}
		b.addNode(node)
	}
	for _, e := range path.Edges {
		b.addEdge(GraphEdge{
			Source:     e.Start,
			Target:     e.End,
			Type:       e.Type,
			PathMember: true,
		})
	}
}

func (b *Builder) addNode(node GraphNode) {
	if idx, ok := b.nodeIndex[node.ID]; ok {
		existing := &b.view.Nodes[idx]
		if existing.Label == "" || existing.Label == existing.ID {
			if node.Label != "" {
				existing.Label = node.Label
			}
		}
		if existing.Type == "" || existing.Type == "other" {
			if node.Type != "" {
				existing.Type = node.Type
			}
		}
		for k, v := range node.Attrs {
			if _, present := existing.Attrs[k]; !present {
				if existing.Attrs == nil {
					existing.Attrs = make(map[string]any)
				}
				existing.Attrs[k] = v
			}
		}
		existing.PathMember = existing.PathMember || node.PathMember
		if existing.PathRole == "" {
			existing.PathRole = node.PathRole
		}
		return
	}
	b.nodeIndex[node.ID] = len(b.view.Nodes)
	b.view.Nodes = append(b.view.Nodes, node)
}

func (b *Builder) addEdge(edge GraphEdge) {
	edge.ID = fmt.Sprintf("%s-%s-%s", edge.Source, edge.Target, edge.Type)
	if edge.Label == "" {
		edge.Label = edgeLabel(edge.Type, "")
	}
	if edge.Color == "" {
		edge.Color = EdgeColor(edge.Type)
	}
	if idx, ok := b.edgeIndex[edge.ID]; ok {
		existing := &b.view.Edges[idx]
		existing.PathMember = existing.PathMember || edge.PathMember
		return
	}
	b.edgeIndex[edge.ID] = len(b.view.Edges)
	b.view.Edges = append(b.view.Edges, edge)
}

func userNode(u domain.User) GraphNode {
	label := u.Name
	if label == "" {
		label = u.ID
	}
	attrs := map[string]any{}
	if u.Name != "" {
		attrs["name"] = u.Name
	}
	if u.Email != "" {
		attrs["email"] = u.Email
	}
	if u.RiskScore != 0 {
		attrs["riskScore"] = u.RiskScore
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	return GraphNode{ID: u.ID, Label: label, Type: "user", Attrs: attrs}
}

func transactionNode(tx domain.Transaction) GraphNode {
	attrs := map[string]any{
		"amount": tx.Amount,
	}
	if tx.Currency != "" {
		attrs["currency"] = tx.Currency
	}
	if tx.Status != "" {
		attrs["status"] = tx.Status
	}
	return GraphNode{
		ID:    tx.ID,
		Label: transactionLabel(tx),
		Type:  "transaction",
		Attrs: attrs,
	}
}

func transactionLabel(tx domain.Transaction) string {
	amount := strconv.FormatFloat(tx.Amount, 'f', -1, 64)
	if tx.Type == "" {
		return "$" + amount
	}
	return "$" + amount + " " + tx.Type
}

func edgeLabel(t domain.EdgeType, sharedValue string) string {
	switch t {
	case domain.EdgeMadeTransaction:
		return "Made Transaction"
	case domain.EdgeReceivedTransaction:
		return "Received Transaction"
	case domain.EdgeSentMoneyTo:
		return "Sent Money"
	case domain.EdgeReceivedMoneyFrom:
		return "Received Money"
	case domain.EdgeSameIP:
		if sharedValue != "" {
			return fmt.Sprintf("Same IP (%s)", sharedValue)
		}
		return "SAME IP"
	case domain.EdgeSameDevice:
		if sharedValue != "" {
			return fmt.Sprintf("Same Device (%s)", sharedValue)
		}
		return "SAME DEVICE"
	}
	label := strings.ReplaceAll(string(t), "_", " ")
	if sharedValue != "" {
		return fmt.Sprintf("%s (%s)", label, sharedValue)
	}
	return label
}
