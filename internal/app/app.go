// Package app wires configuration to adapters and use cases.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"PropScanner/internal/config"
	"PropScanner/internal/extract"
	"PropScanner/internal/infrastructure/dashboard"
	"PropScanner/internal/infrastructure/ocr"
	"PropScanner/internal/infrastructure/review"
	"PropScanner/internal/infrastructure/statsfeed"
	"PropScanner/internal/infrastructure/storage"
	"PropScanner/internal/logging"
	"PropScanner/internal/usecase"
)

// Application owns the database handle and the assembled workflows.
type Application struct {
	cfg       config.Config
	db        *sql.DB
	scan      *usecase.Scan
	review    *usecase.Review
	resolve   *usecase.Resolve
	aggregate *usecase.Aggregate
	log       *slog.Logger
}

// New connects to the database, applies the schema, and assembles every
// workflow. The caller owns Close.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := storage.NewRepository(db)
	if err := repo.Init(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	registry := extract.NewRegistry()
	registry.Register(extract.NewPropSlip())
	format, err := registry.Resolve(cfg.Scan.SlipFormat)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reader := ocr.NewClient(cfg.OCR.Endpoint, cfg.OCR.APIKey)
	feed := statsfeed.NewFeed(cfg.Stats.BaseURL, nil, cfg.Stats.RequestsPerSecond)
	medium := review.NewCSVMedium(cfg.Review.Dir)
	dash := dashboard.NewClient(cfg.Dashboard.Endpoint, cfg.Dashboard.APIKey)

	scan := usecase.NewScan(usecase.ScanDeps{
		Reader:  reader,
		Bets:    repo,
		Players: repo,
		Roster:  feed,
		Format:  format,
		Year:    cfg.Scan.SeasonYear,
		Logger:  baseLogger.With("component", "scan"),
	})
	reviewLoop := usecase.NewReview(usecase.ReviewDeps{
		Bets:    repo,
		Players: repo,
		Medium:  medium,
		Logger:  baseLogger.With("component", "review"),
	})
	resolve := usecase.NewResolve(usecase.ResolveDeps{
		Bets:    repo,
		Cache:   repo,
		Stats:   feed,
		Results: repo,
		Audit:   repo,
		Logger:  baseLogger.With("component", "resolve"),
	})
	aggregate := usecase.NewAggregate(usecase.AggregateDeps{
		Results: repo,
		Target:  dash,
		Logger:  baseLogger.With("component", "aggregate"),
	})

	return &Application{
		cfg:       cfg,
		db:        db,
		scan:      scan,
		review:    reviewLoop,
		resolve:   resolve,
		aggregate: aggregate,
		log:       baseLogger.With("component", "app"),
	}, nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	return a.db.Close()
}

// Scan syncs the roster and ingests every image in the configured directory.
func (a *Application) Scan(ctx context.Context) error {
	if err := a.scan.SyncRoster(ctx); err != nil {
		return err
	}
	summary, err := a.scan.ProcessDir(ctx, a.cfg.Scan.ImagesDir)
	if err != nil {
		return err
	}
	a.log.Info("scan finished", "images", summary.Images, "skipped", summary.Skipped,
		"records", summary.Records, "flagged", summary.Flagged)
	return nil
}

// ExportReview writes the current review sheet and returns its path.
func (a *Application) ExportReview(ctx context.Context) (string, error) {
	path, count, err := a.review.Export(ctx)
	if err != nil {
		return "", err
	}
	if count == 0 {
		a.log.Info("nothing to review")
		return "", nil
	}
	return path, nil
}

// ApplyReview imports a corrected sheet.
func (a *Application) ApplyReview(ctx context.Context, path string) error {
	_, err := a.review.Apply(ctx, path)
	return err
}

// Resolve runs one outcome-resolution pass.
func (a *Application) Resolve(ctx context.Context) error {
	_, err := a.resolve.Run(ctx)
	return err
}

// Upload aggregates settled results and pushes the rollups. With dryRun
// the rollups are only logged.
func (a *Application) Upload(ctx context.Context, dryRun bool) error {
	_, err := a.aggregate.Upload(ctx, dryRun)
	return err
}

// RunOptions selects which pipeline stages a run executes.
type RunOptions struct {
	SkipScan    bool
	SkipResolve bool
	SkipUpload  bool
}

// Run executes the unattended part of the pipeline: scan new images,
// settle whatever is ready, and ship the rollups. The review loop stays a
// manual step.
func (a *Application) Run(ctx context.Context, opts RunOptions) error {
	if !opts.SkipScan {
		if err := a.Scan(ctx); err != nil {
			return err
		}
	}
	if !opts.SkipResolve {
		if err := a.Resolve(ctx); err != nil {
			return err
		}
	}
	if opts.SkipUpload {
		return nil
	}
	return a.Upload(ctx, false)
}
