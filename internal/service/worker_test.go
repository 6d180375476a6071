package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyag/fraudgraph/backend/internal/graph"
)

func TestBulkIngest(t *testing.T) {
	client := graph.NewMemoryClient()
	for i := 0; i < 3; i++ {
		client.PushWriteResult(graph.Result{Records: []graph.Record{{"id": "tx"}}})
	}
	svc := newTestService(client)
	ingestor := NewBulkIngestor(svc, nil, 2)

	report, err := ingestor.Ingest(context.Background(), Dataset{
		Users: []UserInput{
			{ID: "u1", Name: "Priya Gupta"},
			{ID: "u2", Name: "Rahul"},
		},
		Transactions: []TransactionInput{
			{ID: "t1", OriginUserID: "u1", Amount: 100.0, Type: "payment"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.UsersIngested)
	assert.Equal(t, 1, report.TransactionsIngested)
	assert.Empty(t, report.Errors)
}

func TestBulkIngestRecordsBadItems(t *testing.T) {
	client := graph.NewMemoryClient()
	svc := newTestService(client)
	ingestor := NewBulkIngestor(svc, nil, 2)

	report, err := ingestor.Ingest(context.Background(), Dataset{
		Users: []UserInput{
			{ID: "u1", Name: "Priya Gupta"},
			{ID: "", Name: "Missing ID"},
		},
		Transactions: []TransactionInput{
			{ID: "t1", OriginUserID: "", Amount: 100.0, Type: "payment"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.UsersIngested)
	assert.Equal(t, 0, report.TransactionsIngested)
	require.Len(t, report.Errors, 2)

	kinds := map[string]bool{}
	for _, e := range report.Errors {
		kinds[e.Kind] = true
	}
	assert.True(t, kinds["user"])
	assert.True(t, kinds["transaction"])
}
