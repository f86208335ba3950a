package collect

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
	"github.com/graf262-max/legal-update-monitor/internal/ports"
)

const defaultRunTimeout = 60 * time.Second

// Aggregator fans out over the enabled collectors, tolerates partial
// failures, and returns one sorted, deduplicated result. Collectors share no
// mutable state; each builds its own slice and results are merged only after
// all of them settle.
type Aggregator struct {
	collectors []ports.Collector
	skipped    []domain.Source
	timeout    time.Duration
	logger     *slog.Logger
}

// Option tweaks aggregator construction.
type Option func(*Aggregator)

// WithRunTimeout bounds one aggregation run. A collector still running at the
// deadline is recorded as a timeout error for that source only; completed
// siblings keep their results.
func WithRunTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithSkipped records sources that were not wired because their credential is
// missing. They show up in stats as the skip sentinel, never in errors.
func WithSkipped(sources []domain.Source) Option {
	return func(a *Aggregator) {
		a.skipped = sources
	}
}

// NewAggregator wires the enabled collectors. Enablement and credential
// checks happen at construction time in the app wiring, not here.
func NewAggregator(collectors []ports.Collector, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		collectors: collectors,
		timeout:    defaultRunTimeout,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type collectorOutcome struct {
	source domain.Source
	items  []domain.LegalUpdateItem
	err    error
}

// Aggregate runs all collectors concurrently and awaits every one regardless
// of individual outcome. The returned items are sorted by importance
// descending (stable, arrival order on ties) and then deduplicated by folded
// title, so among duplicate titles the highest-importance copy survives.
func (a *Aggregator) Aggregate(ctx context.Context) domain.AggregationResult {
	result := domain.AggregationResult{
		Stats: make(map[string]domain.SourceStat, len(a.collectors)+len(a.skipped)),
	}
	for _, src := range a.skipped {
		result.Stats[string(src)] = domain.SourceStat{Skipped: true}
	}

	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	outcomes := make([]collectorOutcome, len(a.collectors))
	var wg sync.WaitGroup
	for i, c := range a.collectors {
		wg.Add(1)
		go func(i int, c ports.Collector) {
			defer wg.Done()
			outcomes[i] = a.runOne(runCtx, c)
		}(i, c)
	}
	wg.Wait()

	var merged []domain.LegalUpdateItem
	for _, out := range outcomes {
		if out.err != nil {
			a.logger.Error("collector failed", "source", out.source, "error", out.err)
			result.Errors = append(result.Errors, toAdapterError(out.source, out.err))
			result.Stats[string(out.source)] = domain.SourceStat{}
			continue
		}
		a.logger.Info("collector done", "source", out.source, "items", len(out.items))
		result.Stats[string(out.source)] = domain.SourceStat{Count: len(out.items)}
		merged = append(merged, out.items...)
	}

	// Sort before dedup: among equal titles the highest-importance copy wins.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Importance > merged[j].Importance
	})

	seen := make(map[string]struct{}, len(merged))
	deduped := merged[:0]
	for _, item := range merged {
		key := item.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, item)
	}
	result.Items = deduped

	a.logger.Info("aggregation complete",
		"items", len(result.Items),
		"sources", len(a.collectors),
		"errors", len(result.Errors))
	return result
}

// runOne isolates a single collector: a panic or a deadline hit is converted
// into an outcome error and cannot abort sibling collectors.
func (a *Aggregator) runOne(ctx context.Context, c ports.Collector) (out collectorOutcome) {
	out.source = c.Source()
	defer func() {
		if r := recover(); r != nil {
			out.items = nil
			out.err = &domain.AdapterError{
				Source: out.source,
				Kind:   domain.KindPanic,
				Detail: fmt.Sprint(r),
			}
		}
	}()

	items, err := c.Collect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			out.err = &domain.AdapterError{
				Source: out.source,
				Kind:   domain.KindTimeout,
				Detail: ctx.Err().Error(),
			}
			return out
		}
		out.err = err
		return out
	}
	out.items = items
	return out
}

func toAdapterError(source domain.Source, err error) domain.AdapterError {
	if ae, ok := err.(*domain.AdapterError); ok {
		return *ae
	}
	return domain.AdapterError{Source: source, Kind: domain.KindFetch, Detail: err.Error()}
}
