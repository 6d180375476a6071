package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/priyag/fraudgraph/backend/internal/detector"
	"github.com/priyag/fraudgraph/backend/internal/domain"
	"github.com/priyag/fraudgraph/backend/internal/projector"
	"github.com/priyag/fraudgraph/backend/internal/query"
	"github.com/priyag/fraudgraph/backend/internal/repository"
)

// PathView is a shortest-path response: the hop count plus the projected
// path subgraph. Found is false when no path exists within the traversal
// bound, which is a normal outcome, not an error.
type PathView struct {
	Found bool                `json:"found"`
	Hops  int                 `json:"pathLength"`
	View  projector.GraphView `json:"graph"`
}

// Service orchestrates the store, detector, traversal engine, and
// projector behind single-call operations for the transport layer.
type Service struct {
	repo     *repository.Repository
	detector *detector.Detector
	engine   *query.Engine
	logger   *zap.Logger
	now      func() time.Time
}

// New wires a Service from its components.
func New(repo *repository.Repository, det *detector.Detector, engine *query.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		detector: det,
		engine:   engine,
		logger:   logger,
		now:      time.Now,
	}
}

// IngestUser validates and upserts a user. Ingestion never triggers
// detection; derived edges appear on the next detection run.
func (s *Service) IngestUser(ctx context.Context, in UserInput) (domain.User, error) {
	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}
	user := in.ToUser(s.now().UTC())
	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// IngestTransaction validates and upserts a transaction under its origin
// user.
func (s *Service) IngestTransaction(ctx context.Context, in TransactionInput) (domain.Transaction, error) {
	if err := in.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	tx := in.ToTransaction(s.now().UTC())
	if err := s.repo.UpsertTransaction(ctx, tx); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// DeleteEntity removes a user or transaction and every edge attached to
// it.
func (s *Service) DeleteEntity(ctx context.Context, kind, id string) error {
	parsed, ok := domain.ParseEntityKind(kind)
	if !ok {
		return domain.NewValidationError("kind", "unknown entity kind")
	}
	return s.repo.DeleteEntity(ctx, parsed, id)
}

// RunDetection executes the rule set, optionally scoped to one subject
// id for an incremental pass.
func (s *Service) RunDetection(ctx context.Context, subjectID string) (detector.Report, error) {
	started := s.now()
	report, err := s.detector.Run(ctx, detector.Scope{SubjectID: subjectID})
	if err != nil {
		return report, err
	}
	total := 0
	for _, n := range report.EdgesCreated {
		total += n
	}
	s.logger.Info("detection run finished",
		zap.String("subject", subjectID),
		zap.Int("edges", total),
		zap.Int("failedRules", len(report.FailedRules)),
		zap.Duration("elapsed", s.now().Sub(started)),
	)
	return report, nil
}

// EntityGraph returns the projected relationship neighborhood for a user
// or transaction subject.
func (s *Service) EntityGraph(ctx context.Context, kind, id string) (projector.GraphView, error) {
	parsed, ok := domain.ParseEntityKind(kind)
	if !ok {
		return projector.GraphView{}, domain.NewValidationError("kind", "unknown entity kind")
	}
	switch parsed {
	case domain.KindUser:
		return s.UserGraph(ctx, id)
	case domain.KindTransaction:
		return s.TransactionGraph(ctx, id)
	default:
		return projector.GraphView{}, domain.NewValidationError("kind", "relationships are queryable for users and transactions only")
	}
}

// UserGraph traverses and projects a user's neighborhood.
func (s *Service) UserGraph(ctx context.Context, id string) (projector.GraphView, error) {
	hood, err := s.engine.UserNeighborhood(ctx, id)
	if err != nil {
		return projector.GraphView{}, err
	}
	b := projector.NewBuilder()
	b.AddUserNeighborhood(hood)
	return b.View(), nil
}

// TransactionGraph traverses and projects a transaction's neighborhood.
func (s *Service) TransactionGraph(ctx context.Context, id string) (projector.GraphView, error) {
	hood, err := s.engine.TransactionNeighborhood(ctx, id)
	if err != nil {
		return projector.GraphView{}, err
	}
	b := projector.NewBuilder()
	b.AddTransactionNeighborhood(hood)
	return b.View(), nil
}

// ShortestPath finds the minimum-hop connection between two users and
// projects it with path membership flags.
func (s *Service) ShortestPath(ctx context.Context, sourceID, targetID string) (PathView, error) {
	if sourceID == "" || targetID == "" {
		return PathView{}, domain.NewValidationError("userId", "both user ids are required")
	}
	if sourceID == targetID {
		return PathView{}, domain.NewValidationError("userId", "source and target must differ")
	}

	path, err := s.engine.ShortestPath(ctx, sourceID, targetID)
	if err != nil {
		return PathView{}, err
	}
	b := projector.NewBuilder()
	b.AddPath(path)
	return PathView{Found: path.Found, Hops: path.Hops, View: b.View()}, nil
}

// GetUser fetches a single user.
func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

// GetTransaction fetches a single transaction.
func (s *Service) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// ListUsers returns a filtered, paginated user page.
func (s *Service) ListUsers(ctx context.Context, opts repository.ListUsersOptions) (domain.UserListResult, error) {
	return s.repo.ListUsers(ctx, opts)
}

// ListTransactions returns a filtered, paginated transaction page.
func (s *Service) ListTransactions(ctx context.Context, opts repository.ListTransactionsOptions) (domain.TransactionListResult, error) {
	return s.repo.ListTransactions(ctx, opts)
}

// TransactionTypeCounts returns transaction counts grouped by type.
func (s *Service) TransactionTypeCounts(ctx context.Context) ([]domain.ValueCount, error) {
	return s.repo.TransactionTypeCounts(ctx)
}

// TransactionStatusCounts returns transaction counts grouped by status.
func (s *Service) TransactionStatusCounts(ctx context.Context) ([]domain.ValueCount, error) {
	return s.repo.TransactionStatusCounts(ctx)
}

// ExportUsers dumps every user for edge-side formatting.
func (s *Service) ExportUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ExportUsers(ctx)
}

// ExportTransactions dumps every transaction for edge-side formatting.
func (s *Service) ExportTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.repo.ExportTransactions(ctx)
}

// IngestProviderEvent handles one risk-provider webhook event: upsert the
// subject, then run an incremental detection pass for it when requested.
func (s *Service) IngestProviderEvent(ctx context.Context, event ProviderEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	var subjectID string
	switch {
	case event.User != nil:
		user, err := s.IngestUser(ctx, *event.User)
		if err != nil {
			return err
		}
		subjectID = user.ID
	case event.Transaction != nil:
		tx, err := s.IngestTransaction(ctx, *event.Transaction)
		if err != nil {
			return err
		}
		subjectID = tx.ID
	}

	for _, link := range event.Links {
		edgeType, ok := domain.ParseEdgeType(link.Type)
		if !ok {
			return domain.NewValidationError("links.type", fmt.Sprintf("unknown relationship type %q", link.Type))
		}
		if err := s.repo.UpsertProviderLink(ctx, link.SourceID, link.TargetID, edgeType, link.Confidence); err != nil {
			return err
		}
	}

	if !event.TriggerDetection {
		return nil
	}
	if _, err := s.RunDetection(ctx, subjectID); err != nil {
		return fmt.Errorf("incremental detection for %s: %w", subjectID, err)
	}
	return nil
}

// ProviderEvent is a risk-provider webhook payload carrying exactly one
// subject entity.
type ProviderEvent struct {
	EventType        string            `json:"eventType"`
	User             *UserInput        `json:"user,omitempty"`
	Transaction      *TransactionInput `json:"transaction,omitempty"`
	Links            []ProviderLink    `json:"links,omitempty"`
	TriggerDetection bool              `json:"triggerDetection"`
}

// ProviderLink is a provider-asserted user-to-user relationship. Its
// type is validated against the closed edge-type set before any write.
type ProviderLink struct {
	SourceID   string  `json:"sourceId"`
	TargetID   string  `json:"targetId"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Validate rejects events without exactly one subject.
func (e *ProviderEvent) Validate() error {
	if e.User == nil && e.Transaction == nil {
		return domain.NewValidationError("event", "user or transaction payload required")
	}
	if e.User != nil && e.Transaction != nil {
		return domain.NewValidationError("event", "only one of user or transaction allowed")
	}
	return nil
}
