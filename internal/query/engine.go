package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/priyag/fraudgraph/backend/internal/domain"
	"github.com/priyag/fraudgraph/backend/internal/graph"
)

// Transaction-to-transaction proximity links per subject.
const defaultLinkLimit = 20

// Engine runs bounded read-only traversals. Every traversal carries an
// explicit depth and count cap, so no query can walk an unbounded region
// of the graph.
type Engine struct {
	client graph.Client
	logger *zap.Logger
}

// NewEngine constructs a traversal engine.
func NewEngine(client graph.Client, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{client: client, logger: logger}
}

// UserActivity returns a user's transaction count and aggregate value,
// the inputs to the adaptive traversal bounds.
func (e *Engine) UserActivity(ctx context.Context, userID string) (int, float64, error) {
	res, err := e.client.ExecuteRead(ctx, userActivityCypher, map[string]any{"id": userID})
	if err != nil {
		return 0, 0, fmt.Errorf("user activity: %w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(res.Records) == 0 {
		return 0, 0, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	record := res.Records[0]
	return toInt(record["txCount"]), toFloat64(record["totalValue"]), nil
}

// UserNeighborhood returns the bounded relationship neighborhood of a
// user. Bounds come from CalculateLimits over the user's activity; at
// depth 2 second-degree money links are fetched as a separate facet whose
// failure yields a partial result instead of failing the request.
func (e *Engine) UserNeighborhood(ctx context.Context, userID string) (*domain.UserNeighborhood, error) {
	txCount, totalValue, err := e.UserActivity(ctx, userID)
	if err != nil {
		return nil, err
	}
	limits := CalculateLimits(txCount, totalValue)

	res, err := e.client.ExecuteRead(ctx, userNeighborhoodCypher, map[string]any{
		"id":       userID,
		"txLimit":  limits.Transactions,
		"relLimit": limits.RelatedUsers,
	})
	if err != nil {
		return nil, fmt.Errorf("user neighborhood: %w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	record := res.Records[0]
	hood := &domain.UserNeighborhood{User: userFromProps(asMap(record["user"]))}

	for _, raw := range asSlice(record["txs"]) {
		if props := asMap(raw); props != nil {
			hood.Transactions = append(hood.Transactions, transactionFromProps(props))
		}
	}
	hood.MoneyLinks = append(hood.MoneyLinks, moneyLinksFrom(record["sentTo"])...)
	hood.MoneyLinks = append(hood.MoneyLinks, moneyLinksFrom(record["receivedFrom"])...)

	for _, raw := range asSlice(record["sharedLinks"]) {
		entry := asMap(raw)
		peer := asMap(entry["user"])
		if peer == nil {
			continue
		}
		edgeType, ok := domain.ParseEdgeType(toString(entry["type"]))
		if !ok {
			continue
		}
		hood.SharedLinks = append(hood.SharedLinks, domain.SharedLink{
			Peer:        userFromProps(peer),
			Type:        edgeType,
			SharedValue: toString(entry["sharedValue"]),
		})
	}

	for _, raw := range asSlice(record["networkLinks"]) {
		entry := asMap(raw)
		peer := asMap(entry["user"])
		if peer == nil {
			continue
		}
		edgeType, ok := domain.ParseEdgeType(toString(entry["type"]))
		if !ok {
			continue
		}
		hood.NetworkLinks = append(hood.NetworkLinks, domain.NetworkLink{
			Peer:        userFromProps(peer),
			Type:        edgeType,
			SharedValue: toString(entry["sharedValue"]),
		})
	}

	if limits.Depth >= 2 {
		second, err := e.secondDegreeMoneyLinks(ctx, userID, limits.RelatedUsers)
		if err != nil {
			e.logger.Warn("second-degree traversal failed, returning partial result",
				zap.String("user", userID),
				zap.Error(err),
			)
		} else {
			hood.MoneyLinks = append(hood.MoneyLinks, second...)
		}
	}

	return hood, nil
}

func (e *Engine) secondDegreeMoneyLinks(ctx context.Context, userID string, relLimit int) ([]domain.MoneyLink, error) {
	res, err := e.client.ExecuteRead(ctx, secondDegreeMoneyCypher, map[string]any{
		"id":       userID,
		"relLimit": relLimit,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, nil
	}
	return moneyLinksFrom(res.Records[0]["links"]), nil
}

// TransactionNeighborhood returns a transaction, its origin and
// destination users, and the transactions linked to it through network,
// temporal, or amount proximity.
func (e *Engine) TransactionNeighborhood(ctx context.Context, txID string) (*domain.TransactionNeighborhood, error) {
	res, err := e.client.ExecuteRead(ctx, transactionNeighborhoodCypher, map[string]any{
		"id":        txID,
		"linkLimit": defaultLinkLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("transaction neighborhood: %w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("transaction %s: %w", txID, domain.ErrNotFound)
	}

	record := res.Records[0]
	hood := &domain.TransactionNeighborhood{Transaction: transactionFromProps(asMap(record["tx"]))}

	if props := asMap(record["origin"]); props != nil {
		origin := userFromProps(props)
		hood.Origin = &origin
	}
	if props := asMap(record["dest"]); props != nil {
		dest := userFromProps(props)
		hood.Destination = &dest
	}

	for _, raw := range asSlice(record["linked"]) {
		entry := asMap(raw)
		txProps := asMap(entry["tx"])
		if txProps == nil {
			continue
		}
		edgeType, ok := domain.ParseEdgeType(toString(entry["type"]))
		if !ok {
			continue
		}
		hood.Linked = append(hood.Linked, domain.LinkedTransaction{
			Transaction: transactionFromProps(txProps),
			Type:        edgeType,
			SharedValue: toString(entry["sharedValue"]),
			Confidence:  toFloat64(entry["confidence"]),
		})
	}

	return hood, nil
}

// ShortestPath finds the minimum-hop path between two users over the
// undirected union of all edge types, bounded at 6 hops. No path within
// the bound is a found=false result, not an error.
func (e *Engine) ShortestPath(ctx context.Context, sourceID, targetID string) (domain.PathResult, error) {
	result := domain.PathResult{SourceUserID: sourceID, TargetUserID: targetID}

	res, err := e.client.ExecuteRead(ctx, shortestPathCypher, map[string]any{
		"sourceId": sourceID,
		"targetId": targetID,
	})
	if err != nil {
		return result, fmt.Errorf("shortest path: %w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(res.Records) == 0 {
		return result, nil
	}

	record := res.Records[0]
	result.Found = true
	result.Hops = toInt(record["hops"])

	for _, raw := range asSlice(record["nodes"]) {
		entry := asMap(raw)
		result.Nodes = append(result.Nodes, domain.PathNode{
			ID:   toString(entry["id"]),
			Kind: toString(entry["kind"]),
			Name: toString(entry["name"]),
		})
	}
	for _, raw := range asSlice(record["edges"]) {
		entry := asMap(raw)
		result.Edges = append(result.Edges, domain.PathEdge{
			Start: toString(entry["start"]),
			End:   toString(entry["end"]),
			Type:  domain.EdgeType(toString(entry["type"])),
		})
	}
	return result, nil
}

func moneyLinksFrom(val any) []domain.MoneyLink {
	var links []domain.MoneyLink
	for _, raw := range asSlice(val) {
		entry := asMap(raw)
		peer := asMap(entry["user"])
		if peer == nil {
			continue
		}
		edgeType, ok := domain.ParseEdgeType(toString(entry["type"]))
		if !ok {
			continue
		}
		links = append(links, domain.MoneyLink{
			Peer:          userFromProps(peer),
			Type:          edgeType,
			Amount:        toFloat64(entry["amount"]),
			Currency:      toString(entry["currency"]),
			TransactionID: toString(entry["transactionId"]),
			Timestamp:     toTimePtr(entry["timestamp"]),
			Via:           toString(entry["via"]),
		})
	}
	return links
}
