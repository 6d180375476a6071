package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/priyag/fraudgraph/backend/internal/domain"
	"github.com/priyag/fraudgraph/backend/internal/graph"
)

func TestRepository_UpsertUser(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	user := domain.User{
		ID:        "USR-001",
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Phone:     "+15551234567",
		Address:   "123 Market St, San Francisco",
		Country:   "US",
		KYCStatus: "verified",
		RiskScore: 0.23,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := repo.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}

	call := calls[0]
	if call.Query != upsertUserCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", upsertUserCypher, call.Query)
	}
	if call.Params["id"] != user.ID {
		t.Errorf("expected id %s, got %v", user.ID, call.Params["id"])
	}

	props, ok := call.Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", call.Params["props"])
	}
	if props["name"] != user.Name {
		t.Errorf("name mismatch: want %s got %v", user.Name, props["name"])
	}
	if props["kycStatus"] != user.KYCStatus {
		t.Errorf("kycStatus mismatch: want %s got %v", user.KYCStatus, props["kycStatus"])
	}
	if props["createdAt"] != "2026-03-01T10:00:00Z" {
		t.Errorf("createdAt mismatch: got %v", props["createdAt"])
	}
}

func TestRepository_UpsertUserRequiresID(t *testing.T) {
	repo := New(graph.NewMemoryClient())

	err := repo.UpsertUser(context.Background(), domain.User{Name: "No ID"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRepository_UpsertTransaction(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"id": "TXN-1"}}})
	repo := New(mem)

	tx := domain.Transaction{
		ID:                "TXN-1",
		OriginUserID:      "USR-001",
		DestinationUserID: "USR-002",
		Amount:            1250.0,
		Currency:          "USD",
		Type:              domain.TxTypeTransfer,
		Status:            domain.TxStatusCompleted,
		IPAddress:         "203.0.113.7",
		DeviceID:          "mobile-000123",
		Timestamp:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := repo.UpsertTransaction(context.Background(), tx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 2 {
		t.Fatalf("expected upsert plus destination link, got %d writes", len(calls))
	}
	if calls[0].Query != upsertTransactionCypher {
		t.Fatalf("unexpected first query:\n%s", calls[0].Query)
	}
	if calls[1].Query != linkDestinationCypher {
		t.Fatalf("unexpected second query:\n%s", calls[1].Query)
	}
	if calls[0].Params["originId"] != "USR-001" {
		t.Errorf("originId mismatch: got %v", calls[0].Params["originId"])
	}
	if calls[1].Params["destId"] != "USR-002" {
		t.Errorf("destId mismatch: got %v", calls[1].Params["destId"])
	}

	props, ok := calls[0].Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", calls[0].Params["props"])
	}
	if props["amount"] != 1250.0 {
		t.Errorf("amount mismatch: got %v", props["amount"])
	}
	if props["deviceId"] != "mobile-000123" {
		t.Errorf("deviceId mismatch: got %v", props["deviceId"])
	}
}

func TestRepository_UpsertTransactionWithoutDestination(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"id": "TXN-2"}}})
	repo := New(mem)

	tx := domain.Transaction{ID: "TXN-2", OriginUserID: "USR-001", Amount: 10}
	if err := repo.UpsertTransaction(context.Background(), tx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := len(mem.WriteCalls()); got != 1 {
		t.Fatalf("expected no destination link write, got %d writes", got)
	}
}

func TestRepository_UpsertTransactionUnknownOrigin(t *testing.T) {
	// No result pushed: the MATCH on the origin user produces no rows.
	repo := New(graph.NewMemoryClient())

	tx := domain.Transaction{ID: "TXN-3", OriginUserID: "USR-MISSING"}
	err := repo.UpsertTransaction(context.Background(), tx)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown origin, got %v", err)
	}
}

func TestRepository_GetUserNotFound(t *testing.T) {
	repo := New(graph.NewMemoryClient())

	_, err := repo.GetUser(context.Background(), "USR-404")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_GetUser(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{{
		"id":        "USR-001",
		"name":      "Jane Doe",
		"email":     "jane@example.com",
		"riskScore": 0.23,
		"createdAt": "2026-03-01T10:00:00Z",
	}}})
	repo := New(mem)

	user, err := repo.GetUser(context.Background(), "USR-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Name != "Jane Doe" || user.RiskScore != 0.23 {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to parse")
	}
}

func TestRepository_DeleteEntityNotFound(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"deleted": int64(0)}}})
	repo := New(mem)

	err := repo.DeleteEntity(context.Background(), domain.KindUser, "USR-404")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_DeleteEntityRejectsDerivedKinds(t *testing.T) {
	repo := New(graph.NewMemoryClient())

	err := repo.DeleteEntity(context.Background(), domain.KindDevice, "mobile-000123")
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRepository_ListUsersClampsPagination(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	_, err := repo.ListUsers(context.Background(), ListUsersOptions{Limit: 1000, Offset: -5, Search: "  Jane "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.ReadCalls()
	if len(calls) != 2 {
		t.Fatalf("expected list plus count query, got %d reads", len(calls))
	}
	if calls[0].Params["limit"] != 200 {
		t.Errorf("expected limit clamped to 200, got %v", calls[0].Params["limit"])
	}
	if calls[0].Params["skip"] != 0 {
		t.Errorf("expected negative offset clamped to 0, got %v", calls[0].Params["skip"])
	}
	if calls[0].Params["search"] != "jane" {
		t.Errorf("expected lowercased trimmed search, got %v", calls[0].Params["search"])
	}
}

func TestRepository_ListTransactionsFilters(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	_, err := repo.ListTransactions(context.Background(), ListTransactionsOptions{
		UserID:    "USR-001",
		Status:    "COMPLETED",
		Type:      "Transfer",
		MinAmount: 100,
		SortField: "amount",
		SortOrder: "asc",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	call := mem.ReadCalls()[0]
	if call.Params["status"] != "completed" {
		t.Errorf("expected lowercased status, got %v", call.Params["status"])
	}
	if call.Params["type"] != "transfer" {
		t.Errorf("expected lowercased type, got %v", call.Params["type"])
	}
	if !strings.Contains(call.Query, "coalesce(t.amount, 0.0) ASC") {
		t.Errorf("expected amount ascending order clause, got:\n%s", call.Query)
	}
}

func TestRepository_TransactionTypeCounts(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"value": "transfer", "count": int64(12)},
		{"value": "payment", "count": int64(3)},
	}})
	repo := New(mem)

	counts, err := repo.TransactionTypeCounts(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(counts) != 2 || counts[0].Value != "transfer" || counts[0].Count != 12 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestRepository_UpsertProviderLink(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"edges": int64(1)}}})
	repo := New(mem)

	err := repo.UpsertProviderLink(context.Background(), "USR-001", "USR-002", domain.EdgeFamilyMember, 0.9)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	call := mem.WriteCalls()[0]
	if !strings.Contains(call.Query, "MERGE (a)-[r:FAMILY_MEMBER]->(b)") {
		t.Fatalf("expected validated type in query, got:\n%s", call.Query)
	}
	if call.Params["confidence"] != 0.9 {
		t.Errorf("confidence mismatch: got %v", call.Params["confidence"])
	}
}

func TestRepository_UpsertProviderLinkRejectsUnknownType(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	err := repo.UpsertProviderLink(context.Background(), "USR-001", "USR-002", domain.EdgeType("KNOWS; DROP ALL"), 0.5)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(mem.WriteCalls()) != 0 {
		t.Fatal("expected no write for rejected link type")
	}
}

func TestRepository_UpsertProviderLinkMissingUsers(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"edges": int64(0)}}})
	repo := New(mem)

	err := repo.UpsertProviderLink(context.Background(), "USR-404", "USR-002", domain.EdgeSharesEmail, 0.5)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_StoreErrorWrapsUnavailable(t *testing.T) {
	mem := graph.NewMemoryClient().WithError(errors.New("connection reset"))
	repo := New(mem)

	_, err := repo.GetUser(context.Background(), "USR-001")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
