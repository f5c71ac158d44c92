package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"PropScanner/internal/domain"
	"PropScanner/internal/ports"
)

// AggregateDeps wires the adapters used by rollup aggregation.
type AggregateDeps struct {
	Results ports.ResultStore
	Target  ports.DashboardTarget
	Logger  *slog.Logger
}

// Aggregate folds settled results into rollups and ships them.
type Aggregate struct {
	results ports.ResultStore
	target  ports.DashboardTarget
	log     *slog.Logger
}

// AggregateSummary reports what one upload pass did.
type AggregateSummary struct {
	Results int
	Groups  int
}

// NewAggregate constructs the aggregation workflow.
func NewAggregate(deps AggregateDeps) *Aggregate {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Aggregate{results: deps.Results, target: deps.Target, log: log}
}

// Upload groups every unconsumed result by (bet type, score bucket),
// pushes the batch, then folds it into the local rollup table and marks
// the results consumed in one store transaction. Any failure leaves the
// results unmarked and unfolded so the next pass retries the whole batch.
// With dryRun the rollups are only logged; nothing is pushed or consumed.
func (a *Aggregate) Upload(ctx context.Context, dryRun bool) (AggregateSummary, error) {
	results, err := a.results.UnuploadedResults(ctx)
	if err != nil {
		return AggregateSummary{}, fmt.Errorf("list unconsumed results: %w", err)
	}
	if len(results) == 0 {
		a.log.Debug("no results to upload")
		return AggregateSummary{}, nil
	}

	groups := groupResults(results)
	summary := AggregateSummary{Results: len(results), Groups: len(groups)}

	if dryRun {
		for _, group := range groups {
			a.log.Info("rollup preview",
				"bet_type", group.BetType, "bucket", group.Bucket,
				"return", group.Return, "volume", group.Volume,
				"through", group.UpdatedTo.Format(domain.DateLayout))
		}
		a.log.Info("dry run, nothing pushed", "results", summary.Results, "groups", summary.Groups)
		return summary, nil
	}

	if err := a.target.PushRollups(ctx, groups); err != nil {
		return AggregateSummary{}, fmt.Errorf("push rollups: %w", err)
	}

	ids := make([]int64, 0, len(results))
	for _, result := range results {
		ids = append(ids, result.ID)
	}
	if err := a.results.ConsumeBatch(ctx, ids, groups); err != nil {
		return AggregateSummary{}, fmt.Errorf("consume results: %w", err)
	}

	a.log.Info("rollups uploaded", "results", summary.Results, "groups", summary.Groups)
	return summary, nil
}

type groupKey struct {
	betType domain.StatCategory
	bucket  string
}

func groupResults(results []domain.BetResult) []domain.AggregatedGroup {
	grouped := map[groupKey]*domain.AggregatedGroup{}
	for _, result := range results {
		key := groupKey{betType: result.BetType, bucket: result.Bucket}
		group, ok := grouped[key]
		if !ok {
			group = &domain.AggregatedGroup{BetType: result.BetType, Bucket: result.Bucket}
			grouped[key] = group
		}
		group.Return += result.Delta
		group.Volume++
		if result.ResolvedAt.After(group.UpdatedTo) {
			group.UpdatedTo = result.ResolvedAt
		}
	}

	groups := make([]domain.AggregatedGroup, 0, len(grouped))
	for _, group := range grouped {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].BetType != groups[j].BetType {
			return groups[i].BetType < groups[j].BetType
		}
		return groups[i].Bucket < groups[j].Bucket
	})
	return groups
}
