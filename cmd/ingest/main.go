package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/priyag/fraudgraph/backend/internal/config"
	"github.com/priyag/fraudgraph/backend/internal/detector"
	"github.com/priyag/fraudgraph/backend/internal/graph"
	"github.com/priyag/fraudgraph/backend/internal/logging"
	"github.com/priyag/fraudgraph/backend/internal/query"
	"github.com/priyag/fraudgraph/backend/internal/repository"
	"github.com/priyag/fraudgraph/backend/internal/service"
)

var errMissingDataset = errors.New("dataset not found")

func main() {
	var (
		datasetDir   = flag.String("dataset-dir", "./seed-data", "Directory containing users.json and transactions.json")
		usersPath    = flag.String("users", "", "Path to users.json (overrides dataset-dir)")
		transactions = flag.String("transactions", "", "Path to transactions.json (overrides dataset-dir)")
		workers      = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
		runDetection = flag.Bool("detect", false, "Run a full detection pass after ingestion")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With(zap.String("component", "ingest"))
	defer func() { _ = logger.Sync() }()

	userFile, txFile, err := resolveDatasetPaths(*datasetDir, *usersPath, *transactions)
	if err != nil {
		logger.Error("dataset resolution failed", zap.Error(err))
		os.Exit(1)
	}

	dataset, err := loadDataset(userFile, txFile)
	if err != nil {
		logger.Error("failed to load dataset", zap.Error(err))
		os.Exit(1)
	}
	if len(dataset.Users) == 0 {
		logger.Error("users dataset empty", zap.String("path", userFile))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", zap.Error(err))
		}
	}()

	repo := repository.New(graphClient)
	det := detector.New(graphClient, logger, cfg.Detector)
	engine := query.NewEngine(graphClient, logger)
	svc := service.New(repo, det, engine, logger)
	ingestor := service.NewBulkIngestor(svc, logger, *workers)

	start := time.Now()
	logger.Info("ingesting dataset",
		zap.Int("users", len(dataset.Users)),
		zap.Int("transactions", len(dataset.Transactions)),
		zap.Int("workers", *workers),
	)

	report, err := ingestor.Ingest(ctx, dataset)
	if err != nil {
		logger.Error("ingestion failed", zap.Error(err))
		os.Exit(1)
	}
	for _, item := range report.Errors {
		logger.Warn("item rejected",
			zap.String("kind", item.Kind),
			zap.Int("index", item.Index),
			zap.String("id", item.ID),
			zap.String("error", item.Err),
		)
	}
	logger.Info("ingestion complete",
		zap.Duration("duration", time.Since(start)),
		zap.Int("usersIngested", report.UsersIngested),
		zap.Int("transactionsIngested", report.TransactionsIngested),
		zap.Int("rejected", len(report.Errors)),
	)

	if *runDetection {
		detStart := time.Now()
		detReport, err := svc.RunDetection(ctx, "")
		if err != nil {
			logger.Error("detection failed", zap.Error(err))
			os.Exit(1)
		}
		total := 0
		for _, n := range detReport.EdgesCreated {
			total += n
		}
		logger.Info("detection complete",
			zap.Duration("duration", time.Since(detStart)),
			zap.Int("edges", total),
			zap.Strings("failedRules", detReport.FailedRules),
		)
	}
}

func resolveDatasetPaths(baseDir, usersPath, transactionsPath string) (string, string, error) {
	resolve := func(explicitPath, fallbackFile string) (string, error) {
		if explicitPath != "" {
			if _, err := os.Stat(explicitPath); err != nil {
				return "", fmt.Errorf("stat %s: %w", explicitPath, err)
			}
			return explicitPath, nil
		}
		path := filepath.Join(baseDir, fallbackFile)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", errMissingDataset, path)
		}
		return path, nil
	}

	usersFile, err := resolve(usersPath, "users.json")
	if err != nil {
		return "", "", err
	}
	txsFile, err := resolve(transactionsPath, "transactions.json")
	if err != nil {
		return "", "", err
	}
	return usersFile, txsFile, nil
}

func loadDataset(usersPath, transactionsPath string) (service.Dataset, error) {
	var ds service.Dataset
	if err := loadJSON(usersPath, &ds.Users); err != nil {
		return service.Dataset{}, err
	}
	if err := loadJSON(transactionsPath, &ds.Transactions); err != nil {
		return service.Dataset{}, err
	}
	return ds, nil
}

func loadJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func buildGraphClient(ctx context.Context, logger *zap.Logger, cfg config.Config) (graph.Client, error) {
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph",
		zap.String("uri", cfg.Graph.URI),
		zap.String("database", cfg.Graph.Database),
	)
	return client, nil
}
