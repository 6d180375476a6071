package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dataset is a bulk ingestion payload, typically a generated or exported
// JSON document.
type Dataset struct {
	Users        []UserInput        `json:"users"`
	Transactions []TransactionInput `json:"transactions"`
}

// ItemError records one rejected dataset item.
type ItemError struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"`
	ID    string `json:"id"`
	Err   string `json:"error"`
}

// BulkReport aggregates the outcome of a bulk ingestion run.
type BulkReport struct {
	UsersIngested        int         `json:"usersIngested"`
	TransactionsIngested int         `json:"transactionsIngested"`
	Errors               []ItemError `json:"errors,omitempty"`
}

// BulkIngestor loads datasets with bounded concurrency. A bad record is
// recorded and skipped; it never aborts the batch. Users load before
// transactions because a transaction upsert requires its origin user.
type BulkIngestor struct {
	svc     *Service
	logger  *zap.Logger
	workers int
}

// NewBulkIngestor builds an ingestor running at most workers concurrent
// upserts.
func NewBulkIngestor(svc *Service, logger *zap.Logger, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkIngestor{svc: svc, logger: logger, workers: workers}
}

// Ingest loads the dataset and reports per-item failures.
func (b *BulkIngestor) Ingest(ctx context.Context, ds Dataset) (BulkReport, error) {
	report := BulkReport{}
	var mu sync.Mutex

	record := func(kind string, index int, id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		report.Errors = append(report.Errors, ItemError{
			Kind:  kind,
			Index: index,
			ID:    id,
			Err:   err.Error(),
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, in := range ds.Users {
		i, in := i, in
		g.Go(func() error {
			if _, err := b.svc.IngestUser(gctx, in); err != nil {
				record("user", i, in.ID, err)
			} else {
				mu.Lock()
				report.UsersIngested++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("bulk ingest users: %w", err)
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, in := range ds.Transactions {
		i, in := i, in
		g.Go(func() error {
			if _, err := b.svc.IngestTransaction(gctx, in); err != nil {
				record("transaction", i, in.ID, err)
			} else {
				mu.Lock()
				report.TransactionsIngested++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("bulk ingest transactions: %w", err)
	}

	b.logger.Info("bulk ingest finished",
		zap.Int("users", report.UsersIngested),
		zap.Int("transactions", report.TransactionsIngested),
		zap.Int("errors", len(report.Errors)),
	)
	return report, nil
}
