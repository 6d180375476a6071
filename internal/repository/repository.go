package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/priyag/fraudgraph/backend/internal/domain"
	"github.com/priyag/fraudgraph/backend/internal/graph"
)

// ListUsersOptions defines filters and pagination for user listing.
type ListUsersOptions struct {
	Offset    int
	Limit     int
	Search    string
	Country   string
	SortField string
	SortOrder string
}

// ListTransactionsOptions defines filters and pagination for transaction listing.
type ListTransactionsOptions struct {
	Offset    int
	Limit     int
	UserID    string
	Status    string
	Type      string
	MinAmount float64
	MaxAmount float64
	Search    string
	SortField string
	SortOrder string
}

// Repository is the entity store: it owns user and transaction persistence
// and the delete cascade. Derived edges are written by the detector, never
// here; upserting a record does not trigger detection.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// UpsertUser ensures a user node exists with the latest attributes.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) error {
	if user.ID == "" {
		return domain.NewValidationError("id", "required")
	}

	params := map[string]any{
		"id":    user.ID,
		"props": userProperties(user),
	}

	if _, err := r.client.ExecuteWrite(ctx, upsertUserCypher, params); err != nil {
		return storeError(fmt.Sprintf("upsert user %s", user.ID), err)
	}
	return nil
}

// UpsertTransaction ensures a transaction node exists together with its
// ownership edges. The origin user must already exist; a destination user,
// when present, gains a RECEIVED_TRANSACTION edge.
func (r *Repository) UpsertTransaction(ctx context.Context, tx domain.Transaction) error {
	if tx.ID == "" {
		return domain.NewValidationError("id", "required")
	}
	if tx.OriginUserID == "" {
		return domain.NewValidationError("originUserId", "required")
	}

	params := map[string]any{
		"id":       tx.ID,
		"originId": tx.OriginUserID,
		"destId":   tx.DestinationUserID,
		"props":    transactionProperties(tx),
	}

	res, err := r.client.ExecuteWrite(ctx, upsertTransactionCypher, params)
	if err != nil {
		return storeError(fmt.Sprintf("upsert transaction %s", tx.ID), err)
	}
	if len(res.Records) == 0 {
		return domain.NewValidationError("originUserId", fmt.Sprintf("unknown user %s", tx.OriginUserID))
	}

	if tx.DestinationUserID != "" {
		if _, err := r.client.ExecuteWrite(ctx, linkDestinationCypher, params); err != nil {
			return storeError(fmt.Sprintf("link transaction %s destination", tx.ID), err)
		}
	}
	return nil
}

// GetUser returns a single user by id.
func (r *Repository) GetUser(ctx context.Context, id string) (domain.User, error) {
	res, err := r.client.ExecuteRead(ctx, getUserCypher, map[string]any{"id": id})
	if err != nil {
		return domain.User{}, storeError(fmt.Sprintf("get user %s", id), err)
	}
	if len(res.Records) == 0 {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return userFromRecord(res.Records[0]), nil
}

// GetTransaction returns a single transaction by id.
func (r *Repository) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	res, err := r.client.ExecuteRead(ctx, getTransactionCypher, map[string]any{"id": id})
	if err != nil {
		return domain.Transaction{}, storeError(fmt.Sprintf("get transaction %s", id), err)
	}
	if len(res.Records) == 0 {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	return transactionFromRecord(res.Records[0]), nil
}

// DeleteEntity removes a user or transaction together with every incident
// edge. Derived shared-attribute entities are only removed by full rebuild.
func (r *Repository) DeleteEntity(ctx context.Context, kind domain.EntityKind, id string) error {
	var cypher string
	switch kind {
	case domain.KindUser:
		cypher = deleteUserCypher
	case domain.KindTransaction:
		cypher = deleteTransactionCypher
	default:
		return domain.NewValidationError("kind", fmt.Sprintf("cannot delete entities of kind %q", kind))
	}

	res, err := r.client.ExecuteWrite(ctx, cypher, map[string]any{"id": id})
	if err != nil {
		return storeError(fmt.Sprintf("delete %s %s", kind, id), err)
	}
	if len(res.Records) > 0 && toInt(res.Records[0]["deleted"]) == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

// ListUsers returns paginated users matching provided filters.
func (r *Repository) ListUsers(ctx context.Context, opts ListUsersOptions) (domain.UserListResult, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)

	params := map[string]any{
		"search":  strings.ToLower(strings.TrimSpace(opts.Search)),
		"country": strings.TrimSpace(opts.Country),
		"skip":    offset,
		"limit":   limit,
	}

	query := fmt.Sprintf(listUsersCypherTemplate, userFilterClause, userOrderClause(opts.SortField, opts.SortOrder))
	res, err := r.client.ExecuteRead(ctx, query, params)
	if err != nil {
		return domain.UserListResult{}, storeError("list users", err)
	}

	var users []domain.User
	for _, record := range res.Records {
		users = append(users, userFromRecord(record))
	}

	countQuery := fmt.Sprintf(countUsersCypherTemplate, userFilterClause)
	total, err := r.count(ctx, countQuery, params)
	if err != nil {
		return domain.UserListResult{}, err
	}

	return domain.UserListResult{Items: users, Total: total}, nil
}

// ListTransactions returns paginated transactions matching provided filters.
func (r *Repository) ListTransactions(ctx context.Context, opts ListTransactionsOptions) (domain.TransactionListResult, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)

	params := map[string]any{
		"userId":    strings.TrimSpace(opts.UserID),
		"status":    strings.ToLower(strings.TrimSpace(opts.Status)),
		"type":      strings.ToLower(strings.TrimSpace(opts.Type)),
		"minAmount": opts.MinAmount,
		"maxAmount": opts.MaxAmount,
		"search":    strings.ToLower(strings.TrimSpace(opts.Search)),
		"skip":      offset,
		"limit":     limit,
	}

	query := fmt.Sprintf(listTransactionsCypherTemplate, transactionFilterClause, transactionOrderClause(opts.SortField, opts.SortOrder))
	res, err := r.client.ExecuteRead(ctx, query, params)
	if err != nil {
		return domain.TransactionListResult{}, storeError("list transactions", err)
	}

	var txs []domain.Transaction
	for _, record := range res.Records {
		txs = append(txs, transactionFromRecord(record))
	}

	countQuery := fmt.Sprintf(countTransactionsCypherTemplate, transactionFilterClause)
	total, err := r.count(ctx, countQuery, params)
	if err != nil {
		return domain.TransactionListResult{}, err
	}

	return domain.TransactionListResult{Items: txs, Total: total}, nil
}

// TransactionTypeCounts returns the distinct transaction types present in
// the store together with their counts.
func (r *Repository) TransactionTypeCounts(ctx context.Context) ([]domain.ValueCount, error) {
	return r.valueCounts(ctx, transactionTypeCountsCypher)
}

// TransactionStatusCounts returns the distinct transaction statuses present
// in the store together with their counts.
func (r *Repository) TransactionStatusCounts(ctx context.Context) ([]domain.ValueCount, error) {
	return r.valueCounts(ctx, transactionStatusCountsCypher)
}

// UpsertProviderLink writes a provider-asserted user-to-user edge. The
// edge type must be a member of the closed domain.EdgeType set; external
// type strings are rejected here, never interpolated.
func (r *Repository) UpsertProviderLink(ctx context.Context, sourceID, targetID string, edgeType domain.EdgeType, confidence float64) error {
	validated, ok := domain.ParseEdgeType(string(edgeType))
	if !ok {
		return domain.NewValidationError("type", fmt.Sprintf("unknown relationship type %q", edgeType))
	}
	if sourceID == "" || targetID == "" {
		return domain.NewValidationError("sourceId", "source and target ids are required")
	}

	cypher := fmt.Sprintf(upsertProviderLinkCypherTemplate, validated)
	params := map[string]any{
		"sourceId":   sourceID,
		"targetId":   targetID,
		"confidence": confidence,
	}
	res, err := r.client.ExecuteWrite(ctx, cypher, params)
	if err != nil {
		return storeError(fmt.Sprintf("upsert provider link %s", validated), err)
	}
	if len(res.Records) > 0 && toInt(res.Records[0]["edges"]) == 0 {
		return fmt.Errorf("provider link %s -> %s: %w", sourceID, targetID, domain.ErrNotFound)
	}
	return nil
}

// ExportUsers returns all users for export formatting at the edge.
func (r *Repository) ExportUsers(ctx context.Context) ([]domain.User, error) {
	res, err := r.client.ExecuteRead(ctx, exportUsersCypher, nil)
	if err != nil {
		return nil, storeError("export users", err)
	}
	users := make([]domain.User, 0, len(res.Records))
	for _, record := range res.Records {
		users = append(users, userFromRecord(record))
	}
	return users, nil
}

// ExportTransactions returns all transactions for export formatting at the edge.
func (r *Repository) ExportTransactions(ctx context.Context) ([]domain.Transaction, error) {
	res, err := r.client.ExecuteRead(ctx, exportTransactionsCypher, nil)
	if err != nil {
		return nil, storeError("export transactions", err)
	}
	txs := make([]domain.Transaction, 0, len(res.Records))
	for _, record := range res.Records {
		txs = append(txs, transactionFromRecord(record))
	}
	return txs, nil
}

func (r *Repository) valueCounts(ctx context.Context, cypher string) ([]domain.ValueCount, error) {
	res, err := r.client.ExecuteRead(ctx, cypher, nil)
	if err != nil {
		return nil, storeError("value counts", err)
	}
	counts := make([]domain.ValueCount, 0, len(res.Records))
	for _, record := range res.Records {
		counts = append(counts, domain.ValueCount{
			Value: toString(record["value"]),
			Count: int64(toInt(record["count"])),
		})
	}
	return counts, nil
}

func (r *Repository) count(ctx context.Context, cypher string, params map[string]any) (int64, error) {
	res, err := r.client.ExecuteRead(ctx, cypher, params)
	if err != nil {
		return 0, storeError("count query", err)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	return int64(toInt(res.Records[0]["total"])), nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func userProperties(u domain.User) map[string]any {
	props := map[string]any{
		"name":      u.Name,
		"email":     u.Email,
		"phone":     u.Phone,
		"address":   u.Address,
		"country":   u.Country,
		"kycStatus": u.KYCStatus,
		"riskScore": u.RiskScore,
		"updatedAt": formatTime(u.UpdatedAt),
	}
	if !u.CreatedAt.IsZero() {
		props["createdAt"] = formatTime(u.CreatedAt)
	}
	return props
}

func transactionProperties(tx domain.Transaction) map[string]any {
	props := map[string]any{
		"originUserId":      tx.OriginUserID,
		"destinationUserId": tx.DestinationUserID,
		"amount":            tx.Amount,
		"currency":          tx.Currency,
		"type":              tx.Type,
		"status":            tx.Status,
		"ipAddress":         tx.IPAddress,
		"deviceId":          tx.DeviceID,
		"riskScore":         tx.RiskScore,
		"riskLevel":         tx.RiskLevel,
		"timestamp":         formatTime(tx.Timestamp),
		"updatedAt":         formatTime(tx.UpdatedAt),
	}
	if len(tx.Metadata) > 0 {
		if serialized, err := serializeMetadata(tx.Metadata); err == nil {
			props["metadataJson"] = serialized
		}
	}
	if !tx.CreatedAt.IsZero() {
		props["createdAt"] = formatTime(tx.CreatedAt)
	}
	return props
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
