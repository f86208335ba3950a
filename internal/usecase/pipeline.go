package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/graf262-max/legal-update-monitor/internal/briefing"
	"github.com/graf262-max/legal-update-monitor/internal/collect"
	"github.com/graf262-max/legal-update-monitor/internal/domain"
	"github.com/graf262-max/legal-update-monitor/internal/ports"
)

// PipelineDeps wires the aggregator and the optional delivery/persistence
// collaborators into the briefing pipeline.
type PipelineDeps struct {
	Aggregator *collect.Aggregator
	Store      ports.BriefingStore
	Mailer     ports.Mailer
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline runs one briefing: aggregate, persist, render, deliver.
type Pipeline struct {
	aggregator *collect.Aggregator
	store      ports.BriefingStore
	mailer     ports.Mailer
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		aggregator: deps.Aggregator,
		store:      deps.Store,
		mailer:     deps.Mailer,
		notifier:   deps.Notifier,
		logger:     logger,
	}
}

// Output is one rendered briefing.
type Output struct {
	RunID       string
	Format      briefing.Format
	Body        []byte
	ContentType string
	Result      domain.AggregationResult
}

// Run executes one aggregation and renders it in the requested format. A run
// with zero items and populated errors still succeeds; persistence and
// delivery failures are logged, never fatal. Only rendering itself can fail.
func (p *Pipeline) Run(ctx context.Context, briefingDate time.Time, format briefing.Format, deliver bool) (Output, error) {
	if p.aggregator == nil {
		return Output{}, fmt.Errorf("pipeline misconfigured: no aggregator")
	}

	runID := uuid.NewString()
	log := p.logger.With("run_id", runID)
	log.Info("briefing run started", "date", briefingDate.Format("2006-01-02"), "format", format)

	result := p.aggregator.Aggregate(ctx)

	if p.store != nil && len(result.Items) > 0 {
		if err := p.store.AppendUpdates(ctx, runID, briefingDate, result.Items); err != nil {
			log.Error("briefing rows not persisted", "error", err)
		} else {
			log.Info("briefing rows persisted", "rows", len(result.Items))
		}
	}

	out := Output{RunID: runID, Format: format, Result: result}
	switch format {
	case briefing.FormatJSON:
		body, err := briefing.RenderJSON(result, briefingDate)
		if err != nil {
			return Output{}, fmt.Errorf("render json: %w", err)
		}
		out.Body = body
		out.ContentType = "application/json"
	case briefing.FormatText:
		out.Body = []byte(briefing.RenderText(result, briefingDate))
		out.ContentType = "text/plain; charset=utf-8"
	default:
		html, err := briefing.RenderHTML(result, briefingDate)
		if err != nil {
			return Output{}, err
		}
		out.Body = []byte(html)
		out.ContentType = "text/html; charset=utf-8"
	}

	if deliver {
		p.deliver(ctx, briefingDate, result, log)
	}

	log.Info("briefing run finished", "items", len(result.Items), "errors", len(result.Errors))
	return out, nil
}

func (p *Pipeline) deliver(ctx context.Context, briefingDate time.Time, result domain.AggregationResult, log *slog.Logger) {
	if p.mailer == nil && p.notifier == nil {
		return
	}

	text := briefing.RenderText(result, briefingDate)

	if p.mailer != nil {
		html, err := briefing.RenderHTML(result, briefingDate)
		if err != nil {
			log.Error("briefing mail body not rendered", "error", err)
		} else if err := p.mailer.SendBriefing(ctx, briefing.Subject(briefingDate), html, text); err != nil {
			log.Error("briefing mail not sent", "error", err)
		} else {
			log.Info("briefing mail sent")
		}
	}

	if p.notifier != nil {
		if err := p.notifier.PublishBriefing(ctx, text); err != nil {
			log.Error("briefing notification not sent", "error", err)
		} else {
			log.Info("briefing notification sent")
		}
	}
}
