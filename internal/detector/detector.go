package detector

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/priyag/fraudgraph/backend/internal/config"
	"github.com/priyag/fraudgraph/backend/internal/domain"
	"github.com/priyag/fraudgraph/backend/internal/graph"
)

// Detector applies the linkage rule set and upserts the derived edges.
// Every rule is idempotent: re-running detection merges into existing
// edges keyed by (pair, type) instead of appending duplicates, so the
// rules commute and a full re-run is always safe.
type Detector struct {
	client graph.Client
	logger *zap.Logger
	cfg    config.DetectorConfig
	groups [][]rule
}

// Scope limits a detection run. An empty SubjectID means full rebuild;
// otherwise rules only consider pairs involving the subject entity.
type Scope struct {
	SubjectID string
}

// Report summarises a detection run: edges upserted per rule, plus the
// names of rules that failed and were skipped.
type Report struct {
	EdgesCreated map[string]int
	FailedRules  []string
}

// New constructs a Detector with the configured pair-scan caps.
func New(client graph.Client, logger *zap.Logger, cfg config.DetectorConfig) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		client: client,
		logger: logger,
		cfg:    applyCapDefaults(cfg),
		groups: ruleGroups(),
	}
}

// Run executes every rule group in order (or concurrently when the groups
// write disjoint edge types and parallel execution is enabled). A failing
// rule is logged and skipped; remaining rules still run. Only a run where
// every rule failed is reported as a store failure.
func (d *Detector) Run(ctx context.Context, scope Scope) (Report, error) {
	report := Report{EdgesCreated: make(map[string]int)}
	var mu sync.Mutex
	total := 0
	for _, group := range d.groups {
		total += len(group)
	}

	runGroup := func(ctx context.Context, group []rule) error {
		for _, rl := range group {
			if err := ctx.Err(); err != nil {
				return err
			}
			created, err := d.runRule(ctx, rl, scope)
			mu.Lock()
			if err != nil {
				report.FailedRules = append(report.FailedRules, rl.name)
			} else {
				report.EdgesCreated[rl.name] = created
			}
			mu.Unlock()
			if err != nil {
				d.logger.Warn("detection rule failed, skipping",
					zap.String("rule", rl.name),
					zap.String("subject", scope.SubjectID),
					zap.Error(err),
				)
			}
		}
		return nil
	}

	if d.cfg.ParallelRuleGroups {
		g, gctx := errgroup.WithContext(ctx)
		for _, group := range d.groups {
			group := group
			g.Go(func() error { return runGroup(gctx, group) })
		}
		if err := g.Wait(); err != nil {
			return report, err
		}
	} else {
		for _, group := range d.groups {
			if err := runGroup(ctx, group); err != nil {
				return report, err
			}
		}
	}

	if len(report.FailedRules) == total {
		return report, fmt.Errorf("detection run: %w", domain.ErrStoreUnavailable)
	}
	return report, nil
}

func (d *Detector) runRule(ctx context.Context, rl rule, scope Scope) (int, error) {
	params := map[string]any{"subjectId": scope.SubjectID}
	for k, v := range rl.params(d.cfg) {
		params[k] = v
	}

	res, err := d.client.ExecuteWrite(ctx, rl.cypher, params)
	if err != nil {
		return 0, fmt.Errorf("rule %s: %w", rl.name, err)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	return toCount(res.Records[0]["edges"]), nil
}

func applyCapDefaults(cfg config.DetectorConfig) config.DetectorConfig {
	if cfg.SameIPPairLimit <= 0 {
		cfg.SameIPPairLimit = 50000
	}
	if cfg.SameDevicePairLimit <= 0 {
		cfg.SameDevicePairLimit = 50000
	}
	if cfg.TemporalPairLimit <= 0 {
		cfg.TemporalPairLimit = 30000
	}
	if cfg.AmountPatternLimit <= 0 {
		cfg.AmountPatternLimit = 20000
	}
	if cfg.TemporalWindowSeconds <= 0 {
		cfg.TemporalWindowSeconds = 3600
	}
	return cfg
}

func toCount(val any) int {
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
